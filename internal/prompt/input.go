package prompt

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type InputModel struct {
	title     string
	input     textinput.Model
	validate  func(string) error
	err       error
	done      bool
	cancelled bool
}

// NewInput builds a text prompt. validate may be nil; while it returns an
// error the prompt cannot be submitted.
func NewInput(title, placeholder string, validate func(string) error) InputModel {
	input := textinput.New()
	input.Placeholder = placeholder
	input.Prompt = "> "
	input.Focus()

	return InputModel{
		title:    title,
		input:    input,
		validate: validate,
	}
}

func (m InputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m InputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.done {
		return m, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, cancelKey):
			m.done, m.cancelled = true, true
			return m, tea.Quit
		case key.Matches(keyMsg, enterKey):
			value := strings.TrimSpace(m.input.Value())
			if m.validate != nil {
				if err := m.validate(value); err != nil {
					m.err = err
					return m, nil
				}
			}
			m.done = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.err = nil
	return m, cmd
}

func (m InputModel) View() string {
	if m.done {
		if m.cancelled {
			return ""
		}
		return answerStyle.Render("✔") + " " + titleStyle.Render(m.title) + " " + answerStyle.Render(m.Value()) + "\n"
	}

	var b strings.Builder
	b.WriteString(questionStyle.Render("?") + " " + titleStyle.Render(m.title) + "\n")
	b.WriteString(m.input.View() + "\n")
	if m.err != nil {
		b.WriteString(errorStyle.Render("  "+m.err.Error()) + "\n")
	}
	return b.String()
}

func (m InputModel) Value() string {
	return strings.TrimSpace(m.input.Value())
}

func (m InputModel) Cancelled() bool {
	return m.cancelled
}

// Input asks for a line of text. ok is false when the prompt was cancelled.
func Input(title, placeholder string, validate func(string) error) (string, bool, error) {
	m, err := run(NewInput(title, placeholder, validate))
	if err != nil {
		return "", false, err
	}
	if m.cancelled {
		return "", false, nil
	}
	return m.Value(), true, nil
}
