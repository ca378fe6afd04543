// Package live is the interactive LOI slider.
package live

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"surveyforge/internal/loi"
)

// Model renders the LOI slider using Bubble Tea.
type Model struct {
	calc    *loi.Calculator
	state   State
	table   table.Model
	noColor bool
}

// Options configures the slider model.
type Options struct {
	NoColor bool
	// Title is shown in the header, usually the survey path.
	Title string
	// Position is the starting slider position.
	Position int
}

// NewModel seeds LOI fields on the calculator's document and builds the model.
func NewModel(calc *loi.Calculator, opts Options) Model {
	cfg := calc.Apply(clamp(opts.Position))
	state := Snapshot(calc, opts.Title, cfg)
	t := table.New(
		table.WithColumns(defaultColumns()),
		table.WithRows(rowsForState(state, opts.NoColor)),
		table.WithFocused(true),
	)
	t.SetStyles(tableStyles(opts.NoColor))
	return Model{calc: calc, state: state, table: t, noColor: opts.NoColor}
}

// State returns the current state.
func (m Model) State() State {
	return m.state
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update maps keys to actions; anything else goes to the table.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetWidth(typed.Width)
		m.table.SetHeight(max(typed.Height-6, 1))
		m.table.SetColumns(columnsForWidth(typed.Width))
		return m, nil
	case tea.KeyMsg:
		if typed.String() == "q" || typed.String() == "ctrl+c" || typed.String() == "esc" {
			return m, tea.Quit
		}
		if action, ok := m.actionFor(typed.String()); ok {
			m = m.apply(action)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) actionFor(key string) (Action, bool) {
	switch key {
	case "left", "h":
		return Action{Kind: ActionMove, Delta: -sliderStep}, true
	case "right", "l":
		return Action{Kind: ActionMove, Delta: sliderStep}, true
	case "home":
		return Action{Kind: ActionSet, Position: 0}, true
	case "end":
		return Action{Kind: ActionSet, Position: loi.DeepMax}, true
	case "1":
		return Action{Kind: ActionSnap, Tier: loi.Quick}, true
	case "2":
		return Action{Kind: ActionSnap, Tier: loi.Standard}, true
	case "3":
		return Action{Kind: ActionSnap, Tier: loi.Deep}, true
	}
	id := m.selectedID()
	if id == "" {
		return Action{}, false
	}
	switch key {
	case "p":
		return Action{Kind: ActionPin, QuestionID: id}, true
	case "x":
		return Action{Kind: ActionExclude, QuestionID: id}, true
	case "r":
		return Action{Kind: ActionReset, QuestionID: id}, true
	}
	return Action{}, false
}

func (m Model) selectedID() string {
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(m.state.Rows) {
		return ""
	}
	return m.state.Rows[cursor].ID
}

func (m Model) apply(action Action) Model {
	m.state = Reduce(m.calc, m.state, action)
	m.table.SetRows(rowsForState(m.state, m.noColor))
	return m
}

// View renders the slider UI.
func (m Model) View() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		renderHeader(m.state, m.noColor),
		renderSlider(m.state.Config, m.noColor),
		renderSummary(m.state.Config, m.noColor),
		m.table.View(),
		renderFooter(m.state, m.noColor),
	)
}

// Run drives the slider until the user quits and returns the final
// configuration. The calculator's document holds the chosen visibility.
func Run(ctx context.Context, calc *loi.Calculator, in io.Reader, out io.Writer, opts Options) (loi.Config, error) {
	program := tea.NewProgram(NewModel(calc, opts),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
		tea.WithAltScreen(),
	)
	final, err := program.Run()
	if err != nil {
		return loi.Config{}, fmt.Errorf("live ui: %w", err)
	}
	model, ok := final.(Model)
	if !ok {
		return loi.Config{}, fmt.Errorf("live ui: unexpected model %T", final)
	}
	return model.state.Config, nil
}
