package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Styles for approval UI
var (
	approvalTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("5")).
				MarginBottom(1).
				Width(80)

	approvalSummaryStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("3")).
				MarginBottom(1).
				Width(80)

	yesButtonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("2")).
			Background(lipgloss.Color("0")).
			Padding(0, 1).
			MarginRight(1)

	noButtonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("1")).
			Background(lipgloss.Color("0")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true)
)

// ApprovalModel is a bubble tea model asking whether a commit should be
// applied. The rendered preview is shown above the prompt.
type ApprovalModel struct {
	Summary  string
	Preview  string
	Approved bool // true = apply, false = abort
	Done     bool // When true, the user has made a selection
}

// NewApprovalModel creates a new approval model
func NewApprovalModel(summary, preview string) ApprovalModel {
	return ApprovalModel{
		Summary:  summary,
		Preview:  preview,
		Approved: false, // Default to "no" for safety
	}
}

// Init initializes the model
func (m ApprovalModel) Init() tea.Cmd {
	return nil
}

// Update handles updates to the model
func (m ApprovalModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("esc", "q", "ctrl+c"))):
			m.Done = true
			m.Approved = false
			return m, tea.Quit
		case key.Matches(msg, key.NewBinding(key.WithKeys("left", "h"))):
			m.Approved = true
			return m, nil
		case key.Matches(msg, key.NewBinding(key.WithKeys("right", "l"))):
			m.Approved = false
			return m, nil
		case key.Matches(msg, key.NewBinding(key.WithKeys("y"))):
			m.Done = true
			m.Approved = true
			return m, tea.Quit
		case key.Matches(msg, key.NewBinding(key.WithKeys("n"))):
			m.Done = true
			m.Approved = false
			return m, tea.Quit
		case key.Matches(msg, key.NewBinding(key.WithKeys("enter"))):
			m.Done = true
			return m, tea.Quit
		}
	}

	return m, nil
}

// View renders the model
func (m ApprovalModel) View() string {
	var sb strings.Builder

	sb.WriteString(approvalTitleStyle.Render("Apply this patch?"))
	sb.WriteString("\n")

	sb.WriteString(approvalSummaryStyle.Render(m.Summary))
	sb.WriteString("\n")

	sb.WriteString(m.Preview)
	sb.WriteString("\n")

	yes := "Apply"
	no := "Abort"
	if m.Approved {
		yes = selectedStyle.Render(yes)
	} else {
		no = selectedStyle.Render(no)
	}

	sb.WriteString(fmt.Sprintf("%s %s", yesButtonStyle.Render(yes), noButtonStyle.Render(no)))
	sb.WriteString("\n\n")

	sb.WriteString("(Use arrow keys to select, Enter to confirm, Esc to cancel)")

	return sb.String()
}

// ConfirmApply runs the approval UI and returns the user's decision
func ConfirmApply(summary, preview string) (bool, error) {
	model := NewApprovalModel(summary, preview)

	p := tea.NewProgram(model)
	result, err := p.Run()
	if err != nil {
		return false, fmt.Errorf("error running approval UI: %w", err)
	}

	finalModel, ok := result.(ApprovalModel)
	if !ok {
		return false, fmt.Errorf("unexpected model type: %T", result)
	}

	return finalModel.Approved, nil
}
