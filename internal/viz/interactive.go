package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/rubble/internal/scene"
)

var (
	menuTitle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	menuSub      = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	menuCursor   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	menuSelected = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	menuDesc     = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	menuIdle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	menuKey      = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

// pageSize is the number of scenes shown at once in the menu.
const pageSize = 18

// Picker lists the registered scenes and opens the chosen one in a
// LiveModel.
type Picker struct {
	reg     *scene.Registry
	names   []string
	cursor  int
	seed    uint64
	fps     int
	live    *LiveModel
	message string
}

func NewPicker(reg *scene.Registry, seed uint64, fps int) Picker {
	return Picker{reg: reg, names: reg.List(), seed: seed, fps: fps}
}

func (p Picker) Init() tea.Cmd { return nil }

func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if p.live != nil {
		if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
			p.live = nil
			return p, nil
		}
		next, cmd := p.live.Update(msg)
		live := next.(LiveModel)
		p.live = &live
		return p, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return p, tea.Quit
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.names)-1 {
			p.cursor++
		}
	case "enter", " ":
		if len(p.names) == 0 {
			return p, nil
		}
		sc, err := p.reg.Get(p.names[p.cursor])
		if err != nil {
			p.message = err.Error()
			return p, nil
		}
		live, err := NewLiveModel(sc, p.seed, p.fps)
		if err != nil {
			p.message = err.Error()
			return p, nil
		}
		p.live = &live
		return p, live.Init()
	}
	return p, nil
}

func (p Picker) View() string {
	if p.live != nil {
		return p.live.View()
	}

	var b strings.Builder
	b.WriteString("\n\n    " + menuTitle.Render("RUBBLE") + "\n    " + menuSub.Render("particle and constraint playground") + "\n    " + menuSub.Render("─────────────────────────") + "\n\n")

	start := max(0, min(p.cursor-pageSize/2, len(p.names)-pageSize))
	end := min(len(p.names), start+pageSize)
	for i := start; i < end; i++ {
		name := p.names[i]
		sc, _ := p.reg.Get(name)
		desc := sc.Description
		if len(desc) > 40 {
			desc = desc[:37] + "..."
		}
		if i == p.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", menuCursor.Render("▸"), menuSelected.Render(fmt.Sprintf("%-38s", name)), menuDesc.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n", menuIdle.Render(fmt.Sprintf("%-38s", name)), menuSub.Render(desc)))
		}
	}
	if p.message != "" {
		b.WriteString("\n    " + menuDesc.Render(p.message) + "\n")
	}
	b.WriteString("\n    " + menuKey.Render("j/k") + menuIdle.Render(" navigate  ") + menuKey.Render("enter") + menuIdle.Render(" open  ") + menuKey.Render("esc") + menuIdle.Render(" back  ") + menuKey.Render("q") + menuIdle.Render(" quit") + "\n")
	return b.String()
}

// RunInteractive opens the scene picker.
func RunInteractive(reg *scene.Registry, seed uint64, fps int) error {
	_, err := tea.NewProgram(NewPicker(reg, seed, fps), tea.WithAltScreen()).Run()
	return err
}
