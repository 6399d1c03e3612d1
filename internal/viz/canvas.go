package viz

import (
	"math"
	"strings"

	"github.com/san-kum/rubble/internal/dynamo"
	"github.com/san-kum/rubble/internal/physics"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const brailleBlank = 0x2800

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// PixelWidth and PixelHeight give the canvas size in sub-pixels.
func (c *Canvas) PixelWidth() int  { return c.Width * 2 }
func (c *Canvas) PixelHeight() int { return c.Height * 4 }

// Set lights the sub-pixel (x, y). Out of range pixels are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&rune(pixelMap[y%4][x%2]) != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawCircle draws a circle outline with the midpoint algorithm. A radius
// below one sub-pixel draws a single dot.
func (c *Canvas) DrawCircle(cx, cy, r int) {
	if r < 1 {
		c.Set(cx, cy)
		return
	}
	x, y := r, 0
	d := 1 - r
	for x >= y {
		for _, p := range [8][2]int{
			{x, y}, {y, x}, {-y, x}, {-x, y},
			{-x, -y}, {-y, -x}, {y, -x}, {x, -y},
		} {
			c.Set(cx+p[0], cy+p[1])
		}
		y++
		if d < 0 {
			d += 2*y + 1
		} else {
			x--
			d += 2*(y-x) + 1
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Viewport maps world coordinates (y up) onto canvas sub-pixels (y down),
// preserving aspect ratio and centring the world.
type Viewport struct {
	Scale   float64
	OffsetX float64
	OffsetY float64
	height  int
}

func NewViewport(c *Canvas, worldWidth, worldHeight float64) Viewport {
	pw, ph := float64(c.PixelWidth()), float64(c.PixelHeight())
	scale := math.Min((pw-1)/worldWidth, (ph-1)/worldHeight)
	return Viewport{
		Scale:   scale,
		OffsetX: (pw - 1 - worldWidth*scale) / 2,
		OffsetY: (ph - 1 - worldHeight*scale) / 2,
		height:  c.PixelHeight(),
	}
}

func (v Viewport) Project(p dynamo.Vec2) (int, int) {
	x := v.OffsetX + p.X*v.Scale
	y := float64(v.height-1) - (v.OffsetY + p.Y*v.Scale)
	return int(math.Round(x)), int(math.Round(y))
}

func (v Viewport) Length(l float64) int {
	return int(math.Round(l * v.Scale))
}

// DrawWorld renders the world's walls, links and particles. Contacts are
// transient and skipped.
func DrawWorld(c *Canvas, v Viewport, w *physics.World) {
	x0, y0 := v.Project(dynamo.V(0, 0))
	x1, y1 := v.Project(dynamo.V(w.Width(), w.Height()))
	c.DrawLine(x0, y0, x1, y0)
	c.DrawLine(x0, y1, x1, y1)
	c.DrawLine(x0, y0, x0, y1)
	c.DrawLine(x1, y0, x1, y1)

	for _, con := range w.Constraints() {
		switch con.Kind {
		case physics.KindDistance:
			ax, ay := v.Project(con.A.Pos)
			bx, by := v.Project(con.B.Pos)
			c.DrawLine(ax, ay, bx, by)
		case physics.KindPoint:
			ax, ay := v.Project(con.A.Pos)
			bx, by := v.Project(con.Anchor)
			c.DrawLine(ax, ay, bx, by)
		}
	}
	for _, p := range w.Particles() {
		x, y := v.Project(p.Pos)
		if p.Fluid {
			c.Set(x, y)
			continue
		}
		c.DrawCircle(x, y, v.Length(p.Radius))
	}
}
