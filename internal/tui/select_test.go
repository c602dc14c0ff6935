package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/bookdash/internal/dashboard"
)

var sampleMatches = []dashboard.Match{
	{BookIndex: 1, Name: "Dune", Author: "Frank Herbert"},
	{BookIndex: 3, Name: "Children of Dune", Author: "Frank Herbert"},
}

func withProgram(t *testing.T, run func(tea.Model) (tea.Model, error)) {
	t.Helper()
	orig := runProgram
	runProgram = run
	t.Cleanup(func() { runProgram = orig })
}

func keyMsg(key string) tea.KeyMsg {
	switch key {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
}

// press feeds keys to the model as the program loop would.
func press(keys ...string) func(tea.Model) (tea.Model, error) {
	return func(m tea.Model) (tea.Model, error) {
		for _, key := range keys {
			m, _ = m.Update(keyMsg(key))
		}
		return m, nil
	}
}

func TestSelect_ShortCircuits(t *testing.T) {
	withProgram(t, func(tea.Model) (tea.Model, error) {
		t.Fatal("program should not run")
		return nil, nil
	})

	result, err := Select("x", nil)
	require.NoError(t, err)
	assert.Equal(t, ActionSkipped, result.Action)

	result, err = Select("dune", sampleMatches[:1])
	require.NoError(t, err)
	assert.Equal(t, ActionSelected, result.Action)
	assert.Equal(t, 1, result.Selection.BookIndex)
}

func TestSelect_Keys(t *testing.T) {
	tests := []struct {
		name       string
		keys       []string
		wantAction SelectionAction
		wantIndex  int
	}{
		{"enter selects first", []string{"enter"}, ActionSelected, 1},
		{"down then enter", []string{"down", "enter"}, ActionSelected, 3},
		{"s skips", []string{"s"}, ActionSkipped, 0},
		{"esc skips", []string{"esc"}, ActionSkipped, 0},
		{"q stops", []string{"q"}, ActionStopped, 0},
		{"ctrl+c stops", []string{"ctrl+c"}, ActionStopped, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withProgram(t, press(tt.keys...))

			result, err := Select("dune", sampleMatches)
			require.NoError(t, err)
			assert.Equal(t, tt.wantAction, result.Action)
			if tt.wantIndex > 0 {
				require.NotNil(t, result.Selection)
				assert.Equal(t, tt.wantIndex, result.Selection.BookIndex)
			} else {
				assert.Nil(t, result.Selection)
			}
		})
	}
}

func TestSelect_ProgramError(t *testing.T) {
	withProgram(t, func(tea.Model) (tea.Model, error) {
		return nil, errors.New("no tty")
	})

	_, err := Select("dune", sampleMatches)
	require.Error(t, err)
}

func TestModelView(t *testing.T) {
	m := newModel("dune", sampleMatches)
	view := m.View()
	assert.Contains(t, view, "Books matching: dune")
	assert.Contains(t, view, "Children of Dune")
}

func TestPromptRating(t *testing.T) {
	tests := []struct {
		name       string
		initial    int
		keys       []string
		wantAction SelectionAction
		wantValue  int
	}{
		{"accept initial", 3, []string{"enter"}, ActionSelected, 3},
		{"arrows clamp", 5, []string{"right", "left", "left", "enter"}, ActionSelected, 3},
		{"digit", 1, []string{"4", "enter"}, ActionSelected, 4},
		{"initial clamped", 9, []string{"enter"}, ActionSelected, 5},
		{"skip", 3, []string{"s"}, ActionSkipped, 0},
		{"stop", 3, []string{"q"}, ActionStopped, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withProgram(t, press(tt.keys...))

			result, err := PromptRating("Dune", tt.initial)
			require.NoError(t, err)
			assert.Equal(t, tt.wantAction, result.Action)
			assert.Equal(t, tt.wantValue, result.Value)
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Dune", truncate("Dune", 10))
	assert.Equal(t, "The Fal...", truncate("The  Fall of Hyperion", 10))
	assert.Equal(t, "Th", truncate("The", 2))
}
