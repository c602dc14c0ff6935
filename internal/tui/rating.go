package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Rating bounds of the prompt.
const (
	minRating = 1
	maxRating = 5
)

// RatingResult holds the outcome of a rating prompt. Value is only set when
// Action is ActionSelected.
type RatingResult struct {
	Action SelectionAction
	Value  int
}

type ratingModel struct {
	title  string
	value  int
	result RatingResult
}

func newRatingModel(title string, initial int) *ratingModel {
	return &ratingModel{title: title, value: min(max(initial, minRating), maxRating)}
}

func (m *ratingModel) Init() tea.Cmd { return nil }

func (m *ratingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "left", "h", "-":
		m.value = max(minRating, m.value-1)
	case "right", "l", "+":
		m.value = min(maxRating, m.value+1)
	case "1", "2", "3", "4", "5":
		m.value = int(key.String()[0] - '0')
	case "enter":
		m.result = RatingResult{Action: ActionSelected, Value: m.value}
		return m, tea.Quit
	case "s", "esc":
		m.result = RatingResult{Action: ActionSkipped}
		return m, tea.Quit
	case "ctrl+c", "q":
		m.result = RatingResult{Action: ActionStopped}
		return m, tea.Quit
	}
	return m, nil
}

func (m *ratingModel) View() string {
	stars := strings.Repeat("*", m.value) + strings.Repeat(".", maxRating-m.value)
	return lipgloss.JoinVertical(lipgloss.Left,
		headerStyle.Render(fmt.Sprintf("Rate: %s", m.title)),
		starStyle.Render(fmt.Sprintf("[%s] %d/%d", stars, m.value, maxRating)),
		helpStyle.Render("Left/Right or 1-5 change | Enter submit | s skip | q stop"),
	)
}

var starStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("178"))

// PromptRating asks the user for a rating from 1 to 5, starting at initial.
func PromptRating(title string, initial int) (RatingResult, error) {
	finalModel, err := runProgram(newRatingModel(title, initial))
	if err != nil {
		return RatingResult{}, err
	}

	if typed, ok := finalModel.(*ratingModel); ok {
		return typed.result, nil
	}
	return RatingResult{}, fmt.Errorf("unexpected program result")
}
