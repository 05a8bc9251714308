package picker

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wufe/govee-control/internal/color"
)

func press(t *testing.T, m Model, keys ...tea.KeyType) Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(tea.KeyMsg{Type: k})
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m
}

func TestStartsAtRed(t *testing.T) {
	m := New("Pick a color")
	assert.Equal(t, 0.0, m.Hue())
	assert.Equal(t, 100.0, m.Saturation())
	assert.Equal(t, 100.0, m.Value())
	assert.Equal(t, color.RGB{R: 255}, m.RGB())
	assert.Equal(t, StatusPending, m.Status())
	assert.Contains(t, m.View(), "#ff0000")
}

func TestRightRotatesHue(t *testing.T) {
	m := press(t, New("Pick"), tea.KeyRight)

	expected, err := color.HSVToRGB(10, 100, 100)
	require.NoError(t, err)
	assert.Equal(t, 10.0, m.Hue())
	assert.Equal(t, expected, m.RGB())
	assert.NotEqual(t, color.RGB{R: 255}, m.RGB())
}

func TestLeftWrapsHue(t *testing.T) {
	m := press(t, New("Pick"), tea.KeyLeft)
	assert.Equal(t, 350.0, m.Hue())

	m = press(t, m, tea.KeyRight, tea.KeyRight)
	assert.Equal(t, 10.0, m.Hue())
}

func TestValueClamps(t *testing.T) {
	m := press(t, New("Pick"), tea.KeyUp)
	assert.Equal(t, 100.0, m.Value())

	for i := 0; i < 25; i++ {
		m = press(t, m, tea.KeyDown)
	}
	assert.Equal(t, 0.0, m.Value())
	assert.Equal(t, color.Black, m.RGB())

	m = press(t, m, tea.KeyUp)
	assert.Equal(t, 5.0, m.Value())
}

func TestEnterConfirms(t *testing.T) {
	m := press(t, New("Pick"), tea.KeyRight, tea.KeyRight, tea.KeyRight, tea.KeyRight)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)

	assert.Equal(t, StatusDone, m.Status())
	assert.Equal(t, m.RGB().Hex(), m.Result())
	assert.NotNil(t, cmd)
	assert.Contains(t, m.View(), "✔")
}

func TestEscapeCancelsAndIgnoresFurtherKeys(t *testing.T) {
	m := press(t, New("Pick"), tea.KeyRight, tea.KeyEsc)
	assert.Equal(t, StatusDone, m.Status())
	assert.Empty(t, m.Result())

	before := m
	m = press(t, m, tea.KeyRight, tea.KeyUp, tea.KeyEnter)
	assert.Equal(t, before.Hue(), m.Hue())
	assert.Equal(t, before.Value(), m.Value())
	assert.Empty(t, m.Result())
}

func TestCtrlCCancels(t *testing.T) {
	m := press(t, New("Pick"), tea.KeyCtrlC)
	assert.Equal(t, StatusDone, m.Status())
	assert.Empty(t, m.Result())
}

func TestOtherMessagesIgnored(t *testing.T) {
	m := New("Pick")
	next, cmd := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	assert.Nil(t, cmd)
	assert.Equal(t, m.Hue(), next.(Model).Hue())

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	assert.Equal(t, color.RGB{R: 255}, next.(Model).RGB())
}
