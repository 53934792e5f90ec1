package tui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

const (
	minColumnWidth = 24
	columnPadding  = 2
)

func (m Model) View() tea.View {
	return tea.NewView(m.render())
}

func (m Model) render() string {
	if m.loadErr != nil {
		return fmt.Sprintf("Error loading board: %v\n\nPress %s to retry, %s to quit.\n",
			m.loadErr, m.keys.Refresh.Help().Key, m.keys.Quit.Help().Key)
	}
	if m.board == nil {
		return "Loading board...\n"
	}
	project := m.currentProject()
	if project == nil {
		return "No projects.\n"
	}

	var sections []string
	sections = append(sections, m.viewHeader(project.Title))
	sections = append(sections, m.viewColumns())
	if m.showHelp {
		sections = append(sections, m.viewHelp())
	}
	sections = append(sections, m.viewStatusBar())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) viewHeader(projectTitle string) string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(m.colors.Title)).
		Render(projectTitle)

	counter := ""
	if len(m.projects) > 1 {
		counter = lipgloss.NewStyle().
			Foreground(lipgloss.Color(m.colors.Subtle)).
			Render(fmt.Sprintf("  (%d/%d)", m.projIdx+1, len(m.projects)))
	}
	return title + counter
}

func (m Model) viewColumns() string {
	cols := m.columns()
	if len(cols) == 0 {
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color(m.colors.Subtle)).
			Render("No columns in this project.")
	}

	colWidth := minColumnWidth
	if m.width > 0 {
		if w := m.width/len(cols) - columnPadding; w > colWidth {
			colWidth = w
		}
	}

	rendered := make([]string, len(cols))
	for i, status := range cols {
		tasks, err := m.board.TasksInStatus(status.ID)
		if err != nil {
			// A broken chain renders as an error cell rather than
			// taking down the whole view.
			rendered[i] = m.renderColumn(status.Title, []string{"chain error"}, colWidth, i == m.colIdx, status.Color)
			continue
		}

		lines := make([]string, 0, len(tasks))
		for j, t := range tasks {
			line := truncate(t.Title, colWidth-4)
			if i == m.colIdx && j == m.taskIdx {
				line = lipgloss.NewStyle().
					Bold(true).
					Foreground(lipgloss.Color(m.colors.Accent)).
					Background(lipgloss.Color(m.colors.SelectedBg)).
					Render("▸ " + line)
			} else {
				line = "  " + line
			}
			lines = append(lines, line)
		}
		header := fmt.Sprintf("%s (%d)", status.Title, len(tasks))
		rendered[i] = m.renderColumn(header, lines, colWidth, i == m.colIdx, status.Color)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) renderColumn(header string, lines []string, width int, selected bool, accentColor string) string {
	borderColor := m.colors.ColumnBorder
	if selected {
		borderColor = m.colors.SelectedBorder
	}
	headerColor := m.colors.Title
	if accentColor != "" {
		headerColor = accentColor
	}

	headerLine := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(headerColor)).
		Render(truncate(header, width-2))

	body := headerLine
	if len(lines) > 0 {
		body += "\n\n" + strings.Join(lines, "\n")
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(borderColor)).
		Padding(0, 1).
		Width(width).
		Render(body)
}

func (m Model) viewHelp() string {
	bindings := []struct{ k, desc string }{
		{m.keys.PrevColumn.Help().Key + "/" + m.keys.NextColumn.Help().Key, "switch column"},
		{m.keys.PrevTask.Help().Key + "/" + m.keys.NextTask.Help().Key, "move selection"},
		{m.keys.PrevProject.Help().Key + "/" + m.keys.NextProject.Help().Key, "switch project"},
		{m.keys.Refresh.Help().Key, "refresh"},
		{m.keys.Quit.Help().Key, "quit"},
	}
	parts := make([]string, len(bindings))
	for i, b := range bindings {
		parts[i] = fmt.Sprintf("%s %s", b.k, b.desc)
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.colors.Subtle)).
		Render(strings.Join(parts, "  ·  "))
}

func (m Model) viewStatusBar() string {
	live := "offline"
	if m.eventCh != nil {
		live = "live"
	}
	text := fmt.Sprintf(" %s · %s", m.userID, live)
	if m.statusMsg != "" {
		text += " · " + m.statusMsg
	}
	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.colors.StatusBarText)).
		Background(lipgloss.Color(m.colors.StatusBarBg))
	if m.width > 0 {
		style = style.Width(m.width)
	}
	return style.Render(text)
}

func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	if max <= 1 {
		return s[:max]
	}
	return s[:max-1] + "…"
}
