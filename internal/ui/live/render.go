package live

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"surveyforge/internal/loi"
)

const sliderWidth = 40

// renderHeader renders the survey title line.
func renderHeader(state State, noColor bool) string {
	line := "LOI"
	if state.Title != "" {
		line += " | " + state.Title
	}
	return stylize(line, noColor, lipgloss.Color("33"))
}

// renderSlider draws the slider bar with the quick and standard boundaries.
func renderSlider(cfg loi.Config, noColor bool) string {
	filled := cfg.SliderPosition * sliderWidth / loi.DeepMax
	var b strings.Builder
	b.WriteString("[")
	for i := 0; i < sliderWidth; i++ {
		switch {
		case i < filled:
			b.WriteString("=")
		case i == loi.QuickMax*sliderWidth/loi.DeepMax, i == loi.StandardMax*sliderWidth/loi.DeepMax:
			b.WriteString("|")
		default:
			b.WriteString("-")
		}
	}
	b.WriteString("]")
	line := fmt.Sprintf("%s Position: %d (%s)", b.String(), cfg.SliderPosition, cfg.SnapPoint)
	return stylize(line, noColor, lipgloss.Color("39"))
}

// renderSummary renders the visibility counts line.
func renderSummary(cfg loi.Config, noColor bool) string {
	line := fmt.Sprintf("Estimated: %.1f min | Visible: %d/%d | Hidden: %d | Pinned: %d | Excluded: %d",
		cfg.EstimatedMinutes, cfg.VisibleQuestions, cfg.TotalQuestions, cfg.HiddenQuestions,
		cfg.PinnedCount, cfg.ExcludedCount)
	return stylize(line, noColor, lipgloss.Color("242"))
}

// renderFooter renders the last event and key help.
func renderFooter(state State, noColor bool) string {
	help := "left/right move | 1/2/3 quick/standard/deep | p pin | x exclude | r reset | q quit"
	if state.LastEvent != "" {
		help = "Last event: " + state.LastEvent + "\n" + help
	}
	return stylize(help, noColor, lipgloss.Color("244"))
}

// stylize applies optional color styling.
func stylize(text string, noColor bool, color lipgloss.Color) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}
