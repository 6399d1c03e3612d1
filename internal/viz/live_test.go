package viz

import (
	"image/gif"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/rubble/internal/scene"
)

func newLive(t *testing.T) LiveModel {
	t.Helper()
	sc, err := scene.NewRegistry().Get("rope-stiff")
	if err != nil {
		t.Fatal(err)
	}
	m, err := NewLiveModel(sc, 1, 60)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func send(t *testing.T, m LiveModel, msg tea.Msg) LiveModel {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(LiveModel)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestLiveTickPacesSteps(t *testing.T) {
	m := newLive(t)
	start := time.Now()

	m = send(t, m, TickMsg(start))
	if got := m.World().Steps(); got != 0 {
		t.Fatalf("first frame is shorter than dt, expected 0 steps, got %d", got)
	}
	m = send(t, m, TickMsg(start.Add(100*time.Millisecond)))
	if got := m.World().Steps(); got != 5 {
		t.Errorf("expected 5 steps after 116ms at dt=20ms, got %d", got)
	}

	m = send(t, m, TickMsg(start.Add(10*time.Second)))
	if got := m.World().Steps(); got != 5+maxStepsPerFrame {
		t.Errorf("expected catch-up capped at %d, got %d", maxStepsPerFrame, got-5)
	}
}

func TestLivePauseAndStep(t *testing.T) {
	m := newLive(t)
	m = send(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if !m.Paused() {
		t.Fatal("space should pause")
	}

	start := time.Now()
	m = send(t, m, TickMsg(start))
	m = send(t, m, TickMsg(start.Add(time.Second)))
	if m.World().Steps() != 0 {
		t.Errorf("paused world advanced %d steps", m.World().Steps())
	}

	m = send(t, m, runes("s"))
	if m.World().Steps() != 1 {
		t.Errorf("single step expected 1 step, got %d", m.World().Steps())
	}

	m = send(t, m, runes("r"))
	if m.World().Steps() != 0 {
		t.Errorf("reset should rebuild the world, got %d steps", m.World().Steps())
	}
	if !m.Paused() {
		t.Error("reset should keep the pause state")
	}
}

func TestLiveAdjustParam(t *testing.T) {
	m := newLive(t)
	if m.paramKeys[0] != "attraction" {
		t.Fatalf("expected sorted keys, got %v", m.paramKeys)
	}

	m = send(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if got := m.World().Params().AttractionCoefficient; math.Abs(got-31.5) > 1e-9 {
		t.Errorf("expected 31.5, got %f", got)
	}

	for m.paramKeys[m.selected] != "iterations" {
		m = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	}
	m = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if got := m.World().Params().SolverIterations; got != 9 {
		t.Errorf("expected 9 iterations, got %d", got)
	}

	for range 20 {
		m = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	}
	if got := m.World().Params().SolverIterations; got != 1 {
		t.Errorf("iterations should stop at 1, got %d", got)
	}
	if m.message == "" {
		t.Error("rejected value should leave a message")
	}
}

func TestLiveView(t *testing.T) {
	m := newLive(t)
	view := m.View()
	for _, want := range []string{"ROPE-STIFF", "RUNNING", "Particles", "Constraints", "PARAMETERS"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m = send(t, m, runes("d"))
	if strings.Contains(m.View(), "Particles") {
		t.Error("debug info should be hidden after toggling")
	}
}

func TestLiveRecording(t *testing.T) {
	m := newLive(t)
	m.gifPath = filepath.Join(t.TempDir(), "out.gif")

	m = send(t, m, runes("g"))
	start := time.Now()
	m = send(t, m, TickMsg(start))
	m = send(t, m, TickMsg(start.Add(50*time.Millisecond)))
	m = send(t, m, runes("g"))

	f, err := os.Open(m.gifPath)
	if err != nil {
		t.Fatalf("gif not written: %v", err)
	}
	defer f.Close()
	anim, err := gif.DecodeAll(f)
	if err != nil {
		t.Fatalf("invalid gif: %v", err)
	}
	if len(anim.Image) != 2 {
		t.Errorf("expected 2 frames, got %d", len(anim.Image))
	}
}

func TestPickerOpensScene(t *testing.T) {
	reg := scene.NewRegistry()
	p := NewPicker(reg, 1, 30)

	next, _ := p.Update(tea.KeyMsg{Type: tea.KeyDown})
	p = next.(Picker)
	if p.cursor != 1 {
		t.Fatalf("expected cursor 1, got %d", p.cursor)
	}

	next, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	p = next.(Picker)
	if p.live == nil || cmd == nil {
		t.Fatal("enter should open the live view")
	}
	if !strings.Contains(p.View(), strings.ToUpper(reg.List()[1])) {
		t.Error("live view should show the chosen scene")
	}

	next, _ = p.Update(tea.KeyMsg{Type: tea.KeyEscape})
	p = next.(Picker)
	if p.live != nil {
		t.Error("esc should return to the menu")
	}
}
