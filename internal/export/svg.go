package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/rubble/internal/dynamo"
	"github.com/san-kum/rubble/internal/physics"
	"github.com/san-kum/rubble/internal/viz"
)

const svgHeader = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`

// WorldToSVG writes a vector snapshot of the world at scale pixels per
// world unit. Breakable links are dashed and fluid particles are blue.
func WorldToSVG(out io.Writer, w *physics.World, scale float64) error {
	if !(scale > 0) {
		return fmt.Errorf("%w: scale must be positive, got %v", dynamo.ErrParameterBounds, scale)
	}
	pw, ph := w.Width()*scale, w.Height()*scale
	px := func(p dynamo.Vec2) (float64, float64) {
		return p.X * scale, ph - p.Y*scale
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, svgHeader, pw, ph, pw, ph)

	sb.WriteString(`<g stroke="#446688" stroke-width="1">` + "\n")
	for _, c := range w.Constraints() {
		var x1, y1, x2, y2 float64
		switch c.Kind {
		case physics.KindDistance:
			x1, y1 = px(c.A.Pos)
			x2, y2 = px(c.B.Pos)
		case physics.KindPoint:
			x1, y1 = px(c.A.Pos)
			x2, y2 = px(c.Anchor)
		default:
			continue
		}
		dash := ""
		if c.Breakable {
			dash = ` stroke-dasharray="3,2"`
		}
		fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"%s/>`+"\n", x1, y1, x2, y2, dash)
	}
	sb.WriteString("</g>\n")

	sb.WriteString(`<g fill="#00ff88">` + "\n")
	for _, p := range w.Particles() {
		x, y := px(p.Pos)
		r := max(p.Radius*scale, 0.5)
		fill := ""
		switch {
		case p.Fluid:
			fill = ` fill="#3399ff"`
		case p.Fixed:
			fill = ` fill="#ff4444"`
		}
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f"%s/>`+"\n", x, y, r, fill)
	}
	sb.WriteString("</g>\n</svg>\n")

	_, err := io.WriteString(out, sb.String())
	return err
}

// CanvasToSVG converts a Braille canvas to SVG dots.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}
	width := float64(canvas.PixelWidth()) * scale
	height := float64(canvas.PixelHeight()) * scale

	var sb strings.Builder
	fmt.Fprintf(&sb, svgHeader, width, height, width, height)
	sb.WriteString(`<g fill="#00ff00">` + "\n")

	dotRadius := scale * 0.4
	for y := range canvas.PixelHeight() {
		for x := range canvas.PixelWidth() {
			if !canvas.IsSet(x, y) {
				continue
			}
			cx := float64(x)*scale + scale/2
			cy := float64(y)*scale + scale/2
			fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f"/>`+"\n", cx, cy, dotRadius)
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// TrajectoryToSVG draws a path through the points scaled to fill the image.
func TrajectoryToSVG(points []dynamo.Vec2, width, height int, strokeColor string) string {
	if len(points) < 2 {
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

	var sb strings.Builder
	w, h := float64(width), float64(height)
	fmt.Fprintf(&sb, svgHeader, w, h, w, h)
	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor)

	for i, p := range points {
		x := (p.X - minX) / rangeX * w
		y := h - (p.Y-minY)/rangeY*h
		if i > 0 {
			sb.WriteString(" L")
		}
		fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
