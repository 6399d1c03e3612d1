package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme colours the canvas and the side panel.
type Theme struct {
	Name    string
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Muted   lipgloss.Color
	Warning lipgloss.Color
}

var Themes = []Theme{
	{Name: "cyberpunk", Primary: "#00ffff", Accent: "#ff00ff", Muted: "#666688", Warning: "#ff8800"},
	{Name: "retro", Primary: "#00ff00", Accent: "#88ff88", Muted: "#005500", Warning: "#ffff00"},
	{Name: "minimal", Primary: "#ffffff", Accent: "#0088ff", Muted: "#888888", Warning: "#ffaa00"},
	{Name: "ocean", Primary: "#00a8cc", Accent: "#ffd700", Muted: "#4488aa", Warning: "#ffcc00"},
}

// ThemeByName falls back to the first theme.
func ThemeByName(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

var (
	statsStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2).
			Width(44)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(13)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
	overlay    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444466")).
			Padding(1, 2)
)

func (t Theme) canvas() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Primary).Padding(1, 2)
}

func (t Theme) header() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Primary).Bold(true).MarginBottom(1)
}

func (t Theme) active() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
}

func (t Theme) status(paused bool) lipgloss.Style {
	if paused {
		return lipgloss.NewStyle().Foreground(t.Warning).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
}

// Sparkline renders the last width values as block characters scaled to
// their range.
func Sparkline(values []float64, width int) string {
	if width <= 0 {
		return ""
	}
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = min(lo, v), max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	var b strings.Builder
	for _, v := range values {
		idx := int((v - lo) / rng * float64(len(chars)-1))
		b.WriteRune(chars[max(0, min(idx, len(chars)-1))])
	}
	return b.String()
}
