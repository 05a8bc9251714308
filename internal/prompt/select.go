package prompt

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type Choice struct {
	Label string
	Value string
}

type SelectModel struct {
	title     string
	choices   []Choice
	cursor    int
	done      bool
	cancelled bool
}

func NewSelect(title string, choices []Choice) SelectModel {
	return SelectModel{title: title, choices: choices}
}

func (m SelectModel) Init() tea.Cmd {
	return nil
}

func (m SelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.done {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, cancelKey):
		m.done, m.cancelled = true, true
		return m, tea.Quit
	case key.Matches(keyMsg, enterKey):
		if len(m.choices) == 0 {
			return m, nil
		}
		m.done = true
		return m, tea.Quit
	case key.Matches(keyMsg, upKey):
		if m.cursor > 0 {
			m.cursor--
		} else {
			m.cursor = len(m.choices) - 1
		}
	case key.Matches(keyMsg, downKey):
		if m.cursor < len(m.choices)-1 {
			m.cursor++
		} else {
			m.cursor = 0
		}
	}
	return m, nil
}

func (m SelectModel) View() string {
	var b strings.Builder

	if m.done {
		if m.cancelled {
			return ""
		}
		b.WriteString(answerStyle.Render("✔") + " " + titleStyle.Render(m.title) + " " + answerStyle.Render(m.choices[m.cursor].Label) + "\n")
		return b.String()
	}

	b.WriteString(questionStyle.Render("?") + " " + titleStyle.Render(m.title) + "\n")
	for i, choice := range m.choices {
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("> " + choice.Label))
		} else {
			b.WriteString("  " + choice.Label)
		}
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render("  ↑/↓ move • enter select • esc cancel") + "\n")
	return b.String()
}

// Selected returns the chosen entry; ok is false when the prompt was cancelled.
func (m SelectModel) Selected() (choice Choice, ok bool) {
	if !m.done || m.cancelled || len(m.choices) == 0 {
		return Choice{}, false
	}
	return m.choices[m.cursor], true
}

func Select(title string, choices []Choice) (Choice, bool, error) {
	m, err := run(NewSelect(title, choices))
	if err != nil {
		return Choice{}, false, err
	}
	choice, ok := m.Selected()
	return choice, ok, nil
}
