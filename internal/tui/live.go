package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/san-kum/rubble/internal/physics"
	"github.com/san-kum/rubble/internal/viz"
)

const (
	width       = 70
	height      = 20
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// Renderer prints frames of a running world with plain ANSI codes. It is a
// sim.Observer for batch runs where no interactive terminal is wanted.
type Renderer struct {
	out       io.Writer
	name      string
	frame     time.Duration
	lastFrame time.Time
	now       func() time.Time
	canvas    *viz.Canvas
	view      *viz.Viewport
}

func NewRenderer(out io.Writer, name string, frameRate int) *Renderer {
	if frameRate <= 0 {
		frameRate = 30
	}
	return &Renderer{
		out:    out,
		name:   name,
		frame:  time.Second / time.Duration(frameRate),
		now:    time.Now,
		canvas: viz.NewCanvas(width, height),
	}
}

// OnStep draws the world when a frame is due.
func (r *Renderer) OnStep(w *physics.World) {
	now := r.now()
	if !r.lastFrame.IsZero() && now.Sub(r.lastFrame) < r.frame {
		return
	}
	r.lastFrame = now
	r.Render(w)
}

func (r *Renderer) Render(w *physics.World) {
	if r.view == nil {
		v := viz.NewViewport(r.canvas, w.Width(), w.Height())
		r.view = &v
	}
	r.canvas.Clear()
	viz.DrawWorld(r.canvas, *r.view, w)

	var b strings.Builder
	b.WriteString(clearScreen)
	fmt.Fprintf(&b, "  %s  t=%.2fs  step=%d\n", r.name, w.Time(), w.Steps())
	b.WriteString("  " + strings.Repeat("-", width) + "\n")
	for _, row := range r.canvas.Grid {
		b.WriteString("  ")
		b.WriteString(string(row))
		b.WriteString("\n")
	}
	b.WriteString("  " + strings.Repeat("-", width) + "\n")
	fmt.Fprintf(&b, "  particles=%d constraints=%d contacts=%d broken=%d\n",
		w.ParticleCount(), w.ConstraintCount(), len(w.Collisions()), w.BrokenLastStep())

	fmt.Fprint(r.out, b.String())
}

func (r *Renderer) Start() { fmt.Fprint(r.out, hideCursor) }
func (r *Renderer) Stop()  { fmt.Fprint(r.out, showCursor) }
