package export

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/san-kum/rubble/internal/dynamo"
	"github.com/san-kum/rubble/internal/physics"
	"github.com/san-kum/rubble/internal/viz"
)

func wellFormed(t *testing.T, doc string) {
	t.Helper()
	dec := xml.NewDecoder(strings.NewReader(doc))
	for {
		_, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			t.Fatalf("malformed svg: %v", err)
		}
	}
}

func TestWorldToSVG(t *testing.T) {
	w, err := physics.NewWorld(10, 5, 0.02, 10)
	if err != nil {
		t.Fatal(err)
	}
	a, _ := w.AddParticle(physics.ParticleSpec{Pos: dynamo.V(2, 1), Mass: 1, Radius: 0.5, Fixed: true})
	b, _ := w.AddParticle(physics.ParticleSpec{Pos: dynamo.V(4, 1), Mass: 1, Radius: 0.5})
	if _, err := w.AddDistanceConstraint(a, b, physics.WithBreakingStrain(1)); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WorldToSVG(&buf, w, 10); err != nil {
		t.Fatal(err)
	}
	doc := buf.String()
	wellFormed(t, doc)

	for _, want := range []string{
		`width="100" height="50"`,
		`<circle cx="20.0" cy="40.0" r="5.0" fill="#ff4444"/>`,
		`<line x1="20.0" y1="40.0" x2="40.0" y2="40.0" stroke-dasharray="3,2"/>`,
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("missing %q in\n%s", want, doc)
		}
	}

	if err := WorldToSVG(&buf, w, 0); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
}

func TestCanvasToSVG(t *testing.T) {
	c := viz.NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)

	doc := CanvasToSVG(c, 2)
	wellFormed(t, doc)
	if n := strings.Count(doc, "<circle"); n != 2 {
		t.Errorf("expected 2 dots, got %d", n)
	}
	if CanvasToSVG(nil, 1) != "" {
		t.Error("expected empty output for nil canvas")
	}
}

func TestTrajectoryToSVG(t *testing.T) {
	points := []dynamo.Vec2{dynamo.V(0, 0), dynamo.V(1, 1), dynamo.V(2, 0)}
	doc := TrajectoryToSVG(points, 120, 60, "#ffffff")
	wellFormed(t, doc)
	if strings.Count(doc, " L") != 2 {
		t.Errorf("expected 2 segments in %s", doc)
	}
	if TrajectoryToSVG(points[:1], 10, 10, "#fff") != "" {
		t.Error("expected empty output for a single point")
	}
}
