// Package board renders the focused project's board: a one-shot snapshot
// by default, or the live viewer with --watch.
package board

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"
	"github.com/thenoetrevino/tablero/internal/cli"
	"github.com/thenoetrevino/tablero/internal/launcher"
)

// BoardCmd returns the board command
func BoardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show the board",
		Long: `Render the focused project's board.

Examples:
  # One-shot snapshot
  tablero board

  # Live view, updated as commits land
  tablero board --watch

  # JSON output for agents
  tablero board --json
`,
		RunE: runBoard,
	}

	cmd.Flags().Bool("watch", false, "Open the live board viewer")

	// Agent-friendly flags
	cmd.Flags().Bool("json", false, "Output in JSON format")
	cmd.Flags().Bool("quiet", false, "Minimal output (task IDs per column)")

	return cmd
}

func runBoard(cmd *cobra.Command, args []string) error {
	watch, _ := cmd.Flags().GetBool("watch")
	if watch {
		return launcher.Launch()
	}

	ctx := context.Background()

	jsonOutput, _ := cmd.Flags().GetBool("json")
	quietMode, _ := cmd.Flags().GetBool("quiet")

	formatter := &cli.OutputFormatter{JSON: jsonOutput, Quiet: quietMode}

	cliInstance, err := cli.NewCLI(ctx)
	if err != nil {
		if fmtErr := formatter.Error("INITIALIZATION_ERROR", err.Error()); fmtErr != nil {
			log.Printf("Error formatting error message: %v", fmtErr)
		}
		return err
	}
	defer func() {
		if err := cliInstance.Close(); err != nil {
			log.Printf("Error closing CLI: %v", err)
		}
	}()

	project, err := cliInstance.FocusedProject()
	if err != nil {
		if fmtErr := formatter.ErrorWithSuggestion("NO_PROJECT", err.Error(),
			"Use 'tablero project list' to see available projects"); fmtErr != nil {
			log.Printf("Error formatting error message: %v", fmtErr)
		}
		os.Exit(cli.ExitUsage)
	}

	statuses, err := cliInstance.Board.StatusesInProject(project.ID)
	if err != nil {
		if fmtErr := formatter.Error("COLUMN_FETCH_ERROR", err.Error()); fmtErr != nil {
			log.Printf("Error formatting error message: %v", fmtErr)
		}
		return err
	}

	if quietMode {
		for _, s := range statuses {
			tasks, err := cliInstance.Board.TasksInStatus(s.ID)
			if err != nil {
				return err
			}
			for _, t := range tasks {
				fmt.Printf("%s %s\n", s.ID, t.ID)
			}
		}
		return nil
	}

	if jsonOutput {
		columns := make([]map[string]interface{}, len(statuses))
		for i, s := range statuses {
			tasks, err := cliInstance.Board.TasksInStatus(s.ID)
			if err != nil {
				return err
			}
			columns[i] = map[string]interface{}{
				"column": map[string]interface{}{"id": s.ID, "title": s.Title, "color": s.Color},
				"tasks":  tasks,
			}
		}
		return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
			"success": true,
			"project": map[string]interface{}{"id": project.ID, "title": project.Title},
			"columns": columns,
		})
	}

	// Human-readable snapshot
	scheme := cliInstance.Config.ColorScheme
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(scheme.Title)).
		Render(project.Title)
	fmt.Println(title)

	rendered := make([]string, len(statuses))
	for i, s := range statuses {
		tasks, err := cliInstance.Board.TasksInStatus(s.ID)
		if err != nil {
			return err
		}
		headerColor := scheme.Title
		if s.Color != "" {
			headerColor = s.Color
		}
		body := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(headerColor)).
			Render(fmt.Sprintf("%s (%d)", s.Title, len(tasks)))
		for _, t := range tasks {
			body += fmt.Sprintf("\n[%s] %s", cli.ShortID(t.ID), t.Title)
		}
		rendered[i] = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(scheme.ColumnBorder)).
			Padding(0, 1).
			Width(28).
			Render(body)
	}
	fmt.Println(lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
	return nil
}
