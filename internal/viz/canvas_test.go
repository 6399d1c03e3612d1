package viz

import (
	"strings"
	"testing"

	"github.com/san-kum/rubble/internal/dynamo"
	"github.com/san-kum/rubble/internal/physics"
)

func TestCanvasSet(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	c.Set(-1, 0)
	c.Set(4, 0)

	if c.Grid[0][0] != 0x2801 {
		t.Errorf("expected dot 1, got %U", c.Grid[0][0])
	}
	if c.Grid[0][1] != 0x2880 {
		t.Errorf("expected dot 8, got %U", c.Grid[0][1])
	}
	if !c.IsSet(3, 3) || c.IsSet(2, 3) || c.IsSet(-1, 0) {
		t.Error("IsSet disagrees with Set")
	}

	c.Clear()
	if c.String() != "⠀⠀\n" {
		t.Errorf("expected blank canvas, got %q", c.String())
	}
}

func TestDrawLine(t *testing.T) {
	c := NewCanvas(10, 5)
	c.DrawLine(0, 0, 19, 19)
	for i := range 20 {
		if !c.IsSet(i, i) {
			t.Errorf("diagonal pixel (%d, %d) not set", i, i)
		}
	}
}

func TestDrawCircle(t *testing.T) {
	c := NewCanvas(10, 5)
	c.DrawCircle(10, 10, 4)
	for _, p := range [][2]int{{14, 10}, {6, 10}, {10, 14}, {10, 6}} {
		if !c.IsSet(p[0], p[1]) {
			t.Errorf("expected %v on the circle", p)
		}
	}
	if c.IsSet(10, 10) {
		t.Error("circle outline should leave the centre empty")
	}

	c.Clear()
	c.DrawCircle(3, 3, 0)
	if !c.IsSet(3, 3) {
		t.Error("tiny circle should draw a dot")
	}
}

func TestViewport(t *testing.T) {
	c := NewCanvas(80, 24)
	v := NewViewport(c, 10, 10)

	if v.Scale != 9.5 {
		t.Errorf("expected scale 9.5, got %f", v.Scale)
	}
	tests := []struct {
		p    dynamo.Vec2
		x, y int
	}{
		{dynamo.V(0, 0), 32, 95},
		{dynamo.V(10, 10), 127, 0},
		{dynamo.V(5, 5), 80, 48},
	}
	for _, tt := range tests {
		x, y := v.Project(tt.p)
		if x != tt.x || y != tt.y {
			t.Errorf("%v: expected (%d, %d), got (%d, %d)", tt.p, tt.x, tt.y, x, y)
		}
	}
}

func TestDrawWorld(t *testing.T) {
	w, err := physics.NewWorld(10, 10, 0.02, 10)
	if err != nil {
		t.Fatal(err)
	}
	a, _ := w.AddParticle(physics.ParticleSpec{Pos: dynamo.V(2, 5), Mass: 1, Radius: 0.5})
	b, _ := w.AddParticle(physics.ParticleSpec{Pos: dynamo.V(8, 5), Mass: 1, Radius: 0.5})
	if _, err := w.AddDistanceConstraint(a, b); err != nil {
		t.Fatal(err)
	}

	c := NewCanvas(80, 24)
	v := NewViewport(c, 10, 10)
	DrawWorld(c, v, w)

	mid, y := v.Project(dynamo.V(5, 5))
	if !c.IsSet(mid, y) {
		t.Error("link between particles not drawn")
	}
	x0, y0 := v.Project(dynamo.V(0, 0))
	if !c.IsSet(x0, y0) {
		t.Error("wall corner not drawn")
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline(nil, 4); got != "────" {
		t.Errorf("expected flat line, got %q", got)
	}
	got := Sparkline([]float64{9, 0, 1, 2}, 3)
	if got != "▁▄█" {
		t.Errorf("expected last three values scaled, got %q", got)
	}
	if n := len([]rune(Sparkline(make([]float64, 50), 10))); n != 10 {
		t.Errorf("expected width 10, got %d", n)
	}
	if !strings.Contains(Sparkline([]float64{1, 1}, 2), "▁") {
		t.Error("constant series should render the lowest bar")
	}
}
