package analysis

import (
	"strings"

	"github.com/san-kum/rubble/internal/dynamo"
)

// PortraitToASCII plots points on a width x height character grid scaled to
// their bounds, with axes drawn where they cross the view.
func PortraitToASCII(points []dynamo.Vec2, width, height int) string {
	if len(points) == 0 || width <= 1 || height <= 1 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	toCell := func(x, y float64) (int, int) {
		col := int((x - minX) / rangeX * float64(width-1))
		row := height - 1 - int((y-minY)/rangeY*float64(height-1))
		return row, col
	}
	inside := func(row, col int) bool {
		return row >= 0 && row < height && col >= 0 && col < width
	}

	for _, p := range points {
		if row, col := toCell(p.X, p.Y); inside(row, col) {
			canvas[row][col] = '•'
		}
	}

	if minX <= 0 && maxX >= 0 {
		_, col := toCell(0, minY)
		for row := range height {
			if inside(row, col) && canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row, _ := toCell(minX, 0)
		for col := range width {
			if inside(row, col) && canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
