package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/epuerta/applypatch/internal/patch"
)

// Styles for the change preview
var (
	fileHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("5"))

	diffAddedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("2"))

	diffRemovedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("1"))

	diffHunkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6"))

	diffContextStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("7"))
)

// RenderCommit renders a human-readable, colorized preview of every change
// in the commit, in apply order.
func RenderCommit(commit *patch.Commit) string {
	var sb strings.Builder

	for _, path := range commit.Order {
		change := commit.Changes[path]

		switch change.Type {
		case patch.ActionAdd:
			sb.WriteString(fileHeaderStyle.Render(fmt.Sprintf("add %s", path)))
			sb.WriteString("\n")
			for _, line := range strings.Split(change.NewContent, "\n") {
				sb.WriteString(diffAddedStyle.Render("+" + line))
				sb.WriteString("\n")
			}

		case patch.ActionDelete:
			sb.WriteString(fileHeaderStyle.Render(fmt.Sprintf("delete %s", path)))
			sb.WriteString("\n")
			for _, line := range strings.Split(change.OldContent, "\n") {
				sb.WriteString(diffRemovedStyle.Render("-" + line))
				sb.WriteString("\n")
			}

		case patch.ActionUpdate:
			header := fmt.Sprintf("update %s", path)
			if change.MovePath != "" && change.MovePath != path {
				header = fmt.Sprintf("update %s -> %s", path, change.MovePath)
			}
			sb.WriteString(fileHeaderStyle.Render(header))
			sb.WriteString("\n")
			sb.WriteString(renderUnifiedDiff(path, change))
		}

		sb.WriteString("\n")
	}

	return sb.String()
}

// renderUnifiedDiff produces a colorized unified diff between the old and new
// content of an update.
func renderUnifiedDiff(path string, change patch.FileChange) string {
	target := path
	if change.MovePath != "" {
		target = change.MovePath
	}

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(change.OldContent),
		B:        difflib.SplitLines(change.NewContent),
		FromFile: path,
		ToFile:   target,
		Context:  3,
	}

	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		// Fall back to an unstyled note rather than failing the preview.
		return fmt.Sprintf("(diff unavailable: %v)\n", err)
	}

	var sb strings.Builder
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+"):
			sb.WriteString(diffAddedStyle.Render(line))
		case strings.HasPrefix(line, "-"):
			sb.WriteString(diffRemovedStyle.Render(line))
		case strings.HasPrefix(line, "@@"):
			sb.WriteString(diffHunkStyle.Render(line))
		default:
			sb.WriteString(diffContextStyle.Render(line))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Summarize returns a one-line description of the commit for prompts and logs.
func Summarize(commit *patch.Commit) string {
	var adds, updates, deletes int
	for _, path := range commit.Order {
		switch commit.Changes[path].Type {
		case patch.ActionAdd:
			adds++
		case patch.ActionUpdate:
			updates++
		case patch.ActionDelete:
			deletes++
		}
	}
	return fmt.Sprintf("%d file(s): %d add, %d update, %d delete", len(commit.Order), adds, updates, deletes)
}
