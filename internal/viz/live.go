package viz

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/rubble/internal/metrics"
	"github.com/san-kum/rubble/internal/physics"
	"github.com/san-kum/rubble/internal/scene"
	"github.com/san-kum/rubble/internal/sim"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	// maxStepsPerFrame bounds catch-up after a stall.
	maxStepsPerFrame = 8
)

type TickMsg time.Time

// LiveModel runs a scene in real time: each tick the elapsed wall time is
// converted into fixed world steps by a sim.Clock.
type LiveModel struct {
	scene     scene.Scene
	seed      uint64
	world     *physics.World
	clock     *sim.Clock
	canvas    *Canvas
	view      Viewport
	frame     time.Duration
	last      time.Time
	energy    []float64
	strain    []float64
	paramKeys []string
	selected  int
	theme     int
	showDebug bool
	showHelp  bool
	recorder  *Recorder
	gifPath   string
	message   string
}

// NewLiveModel builds sc with seed and renders at fps frames per second.
func NewLiveModel(sc scene.Scene, seed uint64, fps int) (LiveModel, error) {
	if fps <= 0 {
		fps = 60
	}
	m := LiveModel{
		scene:     sc,
		seed:      seed,
		canvas:    NewCanvas(width, height),
		frame:     time.Second / time.Duration(fps),
		showDebug: true,
		gifPath:   sc.Name + ".gif",
	}
	if err := m.reset(); err != nil {
		return LiveModel{}, err
	}
	keys := make([]string, 0)
	for k := range m.world.Params().GetParams() {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	m.paramKeys = keys
	return m, nil
}

func (m *LiveModel) reset() error {
	w, err := m.scene.New(m.seed)
	if err != nil {
		return err
	}
	paused := m.clock != nil && m.clock.Paused()
	m.world = w
	m.clock = sim.NewClock(w.TimeStep(), maxStepsPerFrame)
	if paused {
		m.clock.Pause()
	}
	m.view = NewViewport(m.canvas, w.Width(), w.Height())
	m.energy = m.energy[:0]
	m.strain = m.strain[:0]
	m.last = time.Time{}
	m.draw()
	return nil
}

func (m LiveModel) World() *physics.World { return m.world }
func (m LiveModel) Paused() bool          { return m.clock.Paused() }

func (m LiveModel) tick() tea.Cmd {
	return tea.Tick(m.frame, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m LiveModel) Init() tea.Cmd {
	return m.tick()
}

// Update handles input events and steps the simulation.
func (m LiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.message = ""
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.clock.Toggle()
			m.last = time.Time{}
		case "s":
			if m.clock.Paused() {
				m.advance(1)
				m.draw()
			}
		case "r":
			if err := m.reset(); err != nil {
				m.message = err.Error()
			}
		case "d":
			m.showDebug = !m.showDebug
		case "tab":
			if len(m.paramKeys) > 0 {
				m.selected = (m.selected + 1) % len(m.paramKeys)
			}
		case "up", "k":
			m.adjustParam(1)
		case "down", "j":
			m.adjustParam(-1)
		case "t":
			m.theme = (m.theme + 1) % len(Themes)
		case "g":
			m.toggleRecording()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		now := time.Time(msg)
		elapsed := m.frame
		if !m.last.IsZero() {
			elapsed = now.Sub(m.last)
		}
		m.last = now
		m.advance(m.clock.Advance(elapsed))
		m.draw()
		if m.recorder != nil {
			m.recorder.Capture(m.canvas)
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *LiveModel) advance(steps int) {
	for range steps {
		m.world.Step()
	}
	if steps == 0 {
		return
	}
	m.energy = appendCapped(m.energy, metrics.TotalEnergy(m.world))
	strain := 0.0
	for _, c := range m.world.Constraints() {
		if c.Kind != physics.KindContact {
			strain = math.Max(strain, c.Strain())
		}
	}
	m.strain = appendCapped(m.strain, strain)
}

func appendCapped(s []float64, v float64) []float64 {
	s = append(s, v)
	if len(s) > historyCapacity {
		s = s[1:]
	}
	return s
}

// adjustParam nudges the selected parameter by 5% in direction dir.
// Iterations move by one; zero values move by 0.05.
func (m *LiveModel) adjustParam(dir float64) {
	if len(m.paramKeys) == 0 {
		return
	}
	key := m.paramKeys[m.selected]
	p := m.world.Params()
	val := p.GetParams()[key]

	var next float64
	switch {
	case key == "iterations":
		next = val + dir
	case val == 0:
		next = 0.05 * dir
	default:
		next = val * (1 + 0.05*dir)
	}
	if err := p.SetParam(key, next); err != nil {
		m.message = err.Error()
		return
	}
	if err := m.world.SetParams(p); err != nil {
		m.message = err.Error()
	}
}

func (m *LiveModel) toggleRecording() {
	if m.recorder == nil {
		m.recorder = NewRecorder(int(m.frame / (10 * time.Millisecond)))
		m.message = "recording"
		return
	}
	if err := m.recorder.Save(m.gifPath); err != nil {
		m.message = err.Error()
	} else {
		m.message = "saved " + m.gifPath
	}
	m.recorder = nil
}

func (m *LiveModel) draw() {
	m.canvas.Clear()
	DrawWorld(m.canvas, m.view, m.world)
}

// View renders the TUI interface.
func (m LiveModel) View() string {
	theme := Themes[m.theme]
	canvasView := theme.canvas().Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(theme.header().Render(strings.ToUpper(m.scene.Name)) + "\n")
	status := "RUNNING"
	if m.clock.Paused() {
		status = "PAUSED"
	}
	if m.recorder != nil {
		status += fmt.Sprintf("  REC %d", m.recorder.Frames())
	}
	s.WriteString(theme.status(m.clock.Paused()).Render(status) + "\n\n")

	if len(m.energy) > 1 {
		chart := asciigraph.Plot(m.energy, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(chart + "\n\n")
	}
	s.WriteString(row("Max strain", Sparkline(m.strain, 24)))

	if m.showDebug {
		s.WriteString("\n")
		s.WriteString(row("Steps", fmt.Sprintf("%d", m.world.Steps())))
		s.WriteString(row("Time", fmt.Sprintf("%.2fs", m.world.Time())))
		s.WriteString(row("dt", fmt.Sprintf("%.4fs", m.world.TimeStep())))
		s.WriteString(row("Particles", fmt.Sprintf("%d", m.world.ParticleCount())))
		s.WriteString(row("Constraints", fmt.Sprintf("%d", m.world.ConstraintCount())))
		s.WriteString(row("Contacts", fmt.Sprintf("%d", len(m.world.Collisions()))))
	}

	s.WriteString("\nPARAMETERS\n")
	values := m.world.Params().GetParams()
	for i, k := range m.paramKeys {
		line := fmt.Sprintf("%-11s %10.4g", k, values[k])
		if i == m.selected {
			s.WriteString(theme.active().Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + valueStyle.Render(line) + "\n")
		}
	}
	if m.message != "" {
		s.WriteString("\n" + lipgloss.NewStyle().Foreground(theme.Warning).Render(m.message) + "\n")
	}
	s.WriteString(helpStyle.Render("SP:Pause S:Step R:Reset Q:Quit\nTab/↑↓:Tune D:Debug ?:Help"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		help := strings.Join([]string{
			"Space    pause / resume",
			"S        single step while paused",
			"R        rebuild the scene",
			"D        toggle debug information",
			"Tab      cycle parameters",
			"Up/K     increase parameter",
			"Down/J   decrease parameter",
			"T        cycle themes",
			"G        toggle GIF recording",
			"Q        quit",
		}, "\n")
		return overlay.Render(help) + "\n" + mainView
	}
	return mainView
}

func row(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value) + "\n"
}

// RunLive opens the viewer for one scene.
func RunLive(sc scene.Scene, seed uint64, fps int) error {
	m, err := NewLiveModel(sc, seed, fps)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
