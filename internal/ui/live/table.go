package live

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"surveyforge/internal/loi"
)

// tableStyles returns table styles for the UI.
func tableStyles(noColor bool) table.Styles {
	styles := table.DefaultStyles()
	if noColor {
		styles.Selected = styles.Selected.UnsetForeground().UnsetBackground().Bold(true)
		return styles
	}
	styles.Header = styles.Header.Foreground(lipgloss.Color("252"))
	return styles
}

func defaultColumns() []table.Column {
	return columnsForWidth(0)
}

// columnsForWidth gives the question text whatever the fixed columns leave.
func columnsForWidth(width int) []table.Column {
	columns := []table.Column{
		{Title: "ID", Width: 10},
		{Title: "Section", Width: 14},
		{Title: "Priority", Width: 11},
		{Title: "Rank", Width: 4},
		{Title: "Secs", Width: 4},
		{Title: "Shown", Width: 7},
		{Title: "Override", Width: 8},
	}
	fixed := 0
	for _, c := range columns {
		fixed += c.Width + 2
	}
	textWidth := 40
	if width > 0 {
		textWidth = max(width-fixed-2, 10)
	}
	return append(columns, table.Column{Title: "Question", Width: textWidth})
}

// rowsForState converts UI state into table rows.
func rowsForState(state State, noColor bool) []table.Row {
	rows := make([]table.Row, 0, len(state.Rows))
	for _, q := range state.Rows {
		rows = append(rows, table.Row{
			q.ID,
			q.Section,
			string(q.Priority),
			strconv.Itoa(q.Rank),
			strconv.Itoa(q.EstimatedSeconds),
			formatVisibility(q.Visibility, noColor),
			formatOverride(q.Override),
			formatQuestionText(q.Text),
		})
	}
	return rows
}

// formatQuestionText collapses whitespace and truncates question text.
func formatQuestionText(text string) string {
	normalized := strings.Join(strings.Fields(text), " ")
	const limit = 80
	if len(normalized) <= limit {
		return normalized
	}
	return normalized[:limit-3] + "..."
}

func formatOverride(o loi.Override) string {
	if o == loi.OverrideNone {
		return ""
	}
	return string(o)
}

func formatVisibility(visibility string, noColor bool) string {
	color := lipgloss.Color("42")
	if visibility == loi.Hidden {
		color = lipgloss.Color("244")
	}
	return stylize(visibility, noColor, color)
}
