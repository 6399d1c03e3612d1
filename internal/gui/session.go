package gui

import (
	"math"
	"time"

	"github.com/san-kum/rubble/internal/dynamo"
	"github.com/san-kum/rubble/internal/physics"
	"github.com/san-kum/rubble/internal/scene"
	"github.com/san-kum/rubble/internal/sim"
)

// maxStepsPerFrame bounds catch-up after a stall, as in the terminal viewer.
const maxStepsPerFrame = 8

// Session is the window-independent half of the viewer: one scene, its
// world and the clock pacing it.
type Session struct {
	scene scene.Scene
	seed  uint64
	world *physics.World
	clock *sim.Clock
	// Halted is set when the world goes non-finite; stepping stops until reset.
	Halted bool
}

func NewSession(sc scene.Scene, seed uint64) (*Session, error) {
	s := &Session{scene: sc, seed: seed}
	if err := s.Reset(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reset rebuilds the scene. A paused session stays paused.
func (s *Session) Reset() error {
	w, err := s.scene.New(s.seed)
	if err != nil {
		return err
	}
	paused := s.clock != nil && s.clock.Paused()
	s.world = w
	s.clock = sim.NewClock(w.TimeStep(), maxStepsPerFrame)
	if paused {
		s.clock.Pause()
	}
	s.Halted = false
	return nil
}

func (s *Session) Scene() scene.Scene    { return s.scene }
func (s *Session) World() *physics.World { return s.world }
func (s *Session) Paused() bool          { return s.clock.Paused() }
func (s *Session) TogglePause()          { s.clock.Toggle() }

func (s *Session) advanceSteps(n int) int {
	taken := 0
	for range n {
		if s.Halted {
			break
		}
		s.world.Step()
		taken++
		if !s.world.Valid() {
			s.Halted = true
			s.clock.Pause()
		}
	}
	return taken
}

// Advance converts a frame's wall time into world steps and returns how
// many ran.
func (s *Session) Advance(elapsed time.Duration) int {
	return s.advanceSteps(s.clock.Advance(elapsed))
}

// StepOnce runs a single step while paused. It does nothing when running.
func (s *Session) StepOnce() bool {
	if !s.clock.Paused() {
		return false
	}
	return s.advanceSteps(1) == 1
}

// Screen maps world coordinates (y up) into a pixel rectangle (y down),
// keeping the aspect ratio and centring the world.
type Screen struct {
	Scale   float64
	OffsetX float64
	OffsetY float64
	Bottom  float64
}

// NewScreen fits a worldW x worldH world into a pixel rectangle at x, y of
// size pw x ph.
func NewScreen(x, y, pw, ph, worldW, worldH float64) Screen {
	scale := math.Min(pw/worldW, ph/worldH)
	return Screen{
		Scale:   scale,
		OffsetX: x + (pw-worldW*scale)/2,
		OffsetY: (ph - worldH*scale) / 2,
		Bottom:  y + ph,
	}
}

func (s Screen) Project(p dynamo.Vec2) (float32, float32) {
	x := s.OffsetX + p.X*s.Scale
	y := s.Bottom - (s.OffsetY + p.Y*s.Scale)
	return float32(x), float32(y)
}

func (s Screen) Length(l float64) float32 { return float32(l * s.Scale) }
