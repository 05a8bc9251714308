package picker

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wufe/govee-control/internal/color"
)

const (
	hueStep   = 10
	valueStep = 5

	preview = "████████"
)

type Status int

const (
	StatusPending Status = iota
	StatusDone
)

type keyMap struct {
	Left    key.Binding
	Right   key.Binding
	Up      key.Binding
	Down    key.Binding
	Confirm key.Binding
	Cancel  key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.Up, k.Down, k.Confirm, k.Cancel}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Left, k.Right}, {k.Up, k.Down}, {k.Confirm, k.Cancel}}
}

var defaultKeys = keyMap{
	Left:    key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "hue")),
	Right:   key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "hue")),
	Up:      key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "brighter")),
	Down:    key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "darker")),
	Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
	Cancel:  key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "back")),
}

var (
	questionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	doneStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// Model is a bubbletea model selecting a color by hue and brightness.
// Saturation stays at 100.
type Model struct {
	message    string
	hue        float64
	saturation float64
	value      float64
	rgb        color.RGB
	status     Status
	result     string

	keys keyMap
	help help.Model
}

var _ tea.Model = Model{}

func New(message string) Model {
	return Model{
		message:    message,
		saturation: 100,
		value:      100,
		rgb:        color.RGB{R: 255},
		keys:       defaultKeys,
		help:       help.New(),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.status == StatusDone {
		return m, nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Confirm):
		m.status = StatusDone
		m.result = m.rgb.Hex()
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Cancel):
		m.status = StatusDone
		m.result = ""
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Left):
		m.hue = color.NormalizeHue(m.hue - hueStep)
	case key.Matches(keyMsg, m.keys.Right):
		m.hue = color.NormalizeHue(m.hue + hueStep)
	case key.Matches(keyMsg, m.keys.Up):
		m.value = min(100, m.value+valueStep)
	case key.Matches(keyMsg, m.keys.Down):
		m.value = max(0, m.value-valueStep)
	default:
		return m, nil
	}

	if rgb, err := color.HSVToRGB(m.hue, m.saturation, m.value); err == nil {
		m.rgb = rgb
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	prefix := questionStyle.Render("?")
	if m.status == StatusDone {
		prefix = doneStyle.Render("✔")
	}
	hex := m.rgb.Hex()
	block := lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render(preview)

	fmt.Fprintf(&b, "%s %s\n", prefix, m.message)
	fmt.Fprintf(&b, "  Current color: %s (%s)\n", block, hex)
	if m.status == StatusPending {
		b.WriteString("\n  ")
		b.WriteString(m.help.View(m.keys))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) Hue() float64 {
	return m.hue
}

func (m Model) Saturation() float64 {
	return m.saturation
}

func (m Model) Value() float64 {
	return m.value
}

func (m Model) RGB() color.RGB {
	return m.rgb
}

func (m Model) Status() Status {
	return m.status
}

// Result is the confirmed "#rrggbb" color, or "" when the picker was
// cancelled or is still pending.
func (m Model) Result() string {
	return m.result
}

// Run shows the picker and blocks until a color is confirmed or the picker
// is cancelled. An empty result means no color was chosen.
func Run(message string) (string, error) {
	final, err := tea.NewProgram(New(message)).Run()
	if err != nil {
		return "", fmt.Errorf("error running color picker: %w", err)
	}
	return final.(Model).Result(), nil
}
