package prompt

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

var (
	yesKey = key.NewBinding(key.WithKeys("y", "Y"))
	noKey  = key.NewBinding(key.WithKeys("n", "N"))
)

type ConfirmModel struct {
	title     string
	answer    bool
	done      bool
	cancelled bool
}

func NewConfirm(title string, defaultAnswer bool) ConfirmModel {
	return ConfirmModel{title: title, answer: defaultAnswer}
}

func (m ConfirmModel) Init() tea.Cmd {
	return nil
}

func (m ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.done {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, cancelKey):
		m.done, m.cancelled = true, true
	case key.Matches(keyMsg, yesKey):
		m.done, m.answer = true, true
	case key.Matches(keyMsg, noKey):
		m.done, m.answer = true, false
	case key.Matches(keyMsg, enterKey):
		m.done = true
	default:
		return m, nil
	}
	return m, tea.Quit
}

func (m ConfirmModel) View() string {
	if m.done {
		if m.cancelled {
			return ""
		}
		answer := "No"
		if m.answer {
			answer = "Yes"
		}
		return answerStyle.Render("✔") + " " + titleStyle.Render(m.title) + " " + answerStyle.Render(answer) + "\n"
	}

	hint := "(y/N)"
	if m.answer {
		hint = "(Y/n)"
	}
	return questionStyle.Render("?") + " " + titleStyle.Render(m.title) + " " + dimStyle.Render(hint) + "\n"
}

// Answer returns the answer; ok is false when the prompt was cancelled.
func (m ConfirmModel) Answer() (answer bool, ok bool) {
	if !m.done || m.cancelled {
		return false, false
	}
	return m.answer, true
}

func Confirm(title string, defaultAnswer bool) (bool, bool, error) {
	m, err := run(NewConfirm(title, defaultAnswer))
	if err != nil {
		return false, false, err
	}
	answer, ok := m.Answer()
	return answer, ok, nil
}
