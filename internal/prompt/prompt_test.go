package prompt

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func send[M tea.Model](t *testing.T, m M, msgs ...tea.Msg) M {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(M)
		require.True(t, ok)
	}
	return m
}

func keyOf(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var choices = []Choice{
	{Label: "Turn On", Value: "on"},
	{Label: "Turn Off", Value: "off"},
	{Label: "Set Brightness", Value: "brightness"},
}

func TestSelectMovesAndSelects(t *testing.T) {
	m := send(t, NewSelect("Select an operation:", choices), keyOf(tea.KeyDown), keyOf(tea.KeyDown))
	assert.Contains(t, m.View(), "> Set Brightness")

	_, ok := m.Selected()
	assert.False(t, ok, "nothing selected before enter")

	m = send(t, m, keyOf(tea.KeyEnter))
	choice, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "brightness", choice.Value)
}

func TestSelectWraps(t *testing.T) {
	m := send(t, NewSelect("Select", choices), keyOf(tea.KeyUp), keyOf(tea.KeyEnter))
	choice, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "brightness", choice.Value)

	m = send(t, NewSelect("Select", choices), keyOf(tea.KeyDown), keyOf(tea.KeyDown), keyOf(tea.KeyDown), keyOf(tea.KeyEnter))
	choice, _ = m.Selected()
	assert.Equal(t, "on", choice.Value)
}

func TestSelectCancel(t *testing.T) {
	m := send(t, NewSelect("Select", choices), keyOf(tea.KeyEsc), keyOf(tea.KeyEnter))
	_, ok := m.Selected()
	assert.False(t, ok)
}

func TestInputValidation(t *testing.T) {
	validate := func(s string) error {
		if s != "42" {
			return errors.New("Please enter 42")
		}
		return nil
	}

	m := send(t, NewInput("Enter a number:", "42", validate), runes("41"), keyOf(tea.KeyEnter))
	assert.False(t, m.done)
	assert.Contains(t, m.View(), "Please enter 42")

	m = send(t, m, keyOf(tea.KeyBackspace), runes("2"), keyOf(tea.KeyEnter))
	assert.True(t, m.done)
	assert.False(t, m.Cancelled())
	assert.Equal(t, "42", m.Value())
}

func TestInputCancel(t *testing.T) {
	m := send(t, NewInput("Enter hex:", "#ff0000", nil), runes("#12"), keyOf(tea.KeyEsc))
	assert.True(t, m.Cancelled())
}

func TestConfirm(t *testing.T) {
	answer, ok := send(t, NewConfirm("Again?", true), keyOf(tea.KeyEnter)).Answer()
	assert.True(t, ok)
	assert.True(t, answer)

	answer, ok = send(t, NewConfirm("Again?", true), runes("n")).Answer()
	assert.True(t, ok)
	assert.False(t, answer)

	answer, ok = send(t, NewConfirm("Again?", false), runes("y")).Answer()
	assert.True(t, ok)
	assert.True(t, answer)

	_, ok = send(t, NewConfirm("Again?", true), keyOf(tea.KeyEsc)).Answer()
	assert.False(t, ok)

	_, ok = send(t, NewConfirm("Again?", true), runes("x")).Answer()
	assert.False(t, ok, "unrelated keys do not answer")
}
