package tui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/san-kum/rubble/internal/dynamo"
	"github.com/san-kum/rubble/internal/physics"
)

func TestRendererThrottlesFrames(t *testing.T) {
	w, err := physics.NewWorld(10, 10, 0.02, 10)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.AddParticle(physics.ParticleSpec{Pos: dynamo.V(5, 5), Mass: 1, Radius: 0.3}); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	r := NewRenderer(&buf, "test", 10)
	clock := time.Unix(0, 0)
	r.now = func() time.Time { return clock }

	r.OnStep(w)
	clock = clock.Add(50 * time.Millisecond)
	r.OnStep(w)
	clock = clock.Add(60 * time.Millisecond)
	r.OnStep(w)

	if got := strings.Count(buf.String(), clearScreen); got != 2 {
		t.Errorf("expected 2 frames at 10 fps, got %d", got)
	}
	if !strings.Contains(buf.String(), "particles=1") {
		t.Errorf("missing world summary: %q", buf.String())
	}
}
