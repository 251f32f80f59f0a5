// Package styles renders boards and cards for human-readable CLI output
package styles

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/thenoetrevino/tandem/internal/models"
)

// LaneWidth is the rendered width of one lane column
const LaneWidth = 30

var (
	accent  = lipgloss.Color("#7D56F4")
	subtle  = lipgloss.Color("#6C7086")
	normal  = lipgloss.Color("#CDD6F4")
	success = lipgloss.Color("#A6E3A1")
	warning = lipgloss.Color("#F9E2AF")
	danger  = lipgloss.Color("#F38BA8")

	// Text styles
	TitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(accent)
	SubtitleStyle = lipgloss.NewStyle().Foreground(subtle)
	LabelStyle    = lipgloss.NewStyle().Bold(true).Foreground(accent) // For field labels like "Status:"
	ValueStyle    = lipgloss.NewStyle().Foreground(normal)

	// Board styles
	LaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(subtle).
			Padding(0, 1).
			Width(LaneWidth)

	LaneHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(accent).MarginBottom(1)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(accent).
			PaddingLeft(1).
			MarginBottom(1)
)

var laneTitles = map[models.Status]string{
	models.StatusTodo:       "To Do",
	models.StatusInProgress: "In Progress",
	models.StatusDone:       "Done",
}

// LaneTitle returns the display name of a lane
func LaneTitle(s models.Status) string {
	if t, ok := laneTitles[s]; ok {
		return t
	}
	return string(s)
}

// PriorityText renders a priority in its color
func PriorityText(p models.Priority) string {
	c := normal
	switch p {
	case models.PriorityHigh:
		c = danger
	case models.PriorityMedium:
		c = warning
	case models.PriorityLow:
		c = success
	}
	return lipgloss.NewStyle().Foreground(c).Render(string(p))
}

// RenderCard renders one card as "#id title" with priority and assignee
func RenderCard(card *models.TaskCard) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(fmt.Sprintf("#%d", card.ID)))
	b.WriteString(" ")
	b.WriteString(ValueStyle.Render(card.Title))
	b.WriteString("\n")
	b.WriteString(PriorityText(card.Priority))
	if card.AssigneeName != "" {
		b.WriteString(SubtitleStyle.Render(" @" + card.AssigneeName))
	}
	return CardStyle.Render(b.String())
}

// RenderLane renders a lane header and its cards in position order
func RenderLane(status models.Status, cards []*models.TaskCard) string {
	parts := []string{LaneHeaderStyle.Render(fmt.Sprintf("%s (%d)", LaneTitle(status), len(cards)))}
	if len(cards) == 0 {
		parts = append(parts, SubtitleStyle.Render("empty"))
	}
	for _, c := range cards {
		parts = append(parts, RenderCard(c))
	}
	return LaneStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// RenderBoard lays the lanes out side by side in board order
func RenderBoard(board *models.Board) string {
	lanes := make([]string, 0, len(models.Statuses))
	for _, s := range models.Statuses {
		lanes = append(lanes, RenderLane(s, board.Lane(s)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, lanes...)
}
