package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/tablero/internal/cli"
	"github.com/thenoetrevino/tablero/internal/models"
)

// ListCmd returns the task list subcommand
func ListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Long: `List the focused project's tasks in board order.

Examples:
  # All tasks, grouped by column
  tablero task list

  # One column only
  tablero task list --column="In Progress"

  # Completed tasks
  tablero task list --completed

  # JSON output for agents
  tablero task list --json

  # Quiet mode (one ID per line)
  tablero task list --quiet
`,
		RunE: runList,
	}

	cmd.Flags().String("column", "", "Limit to one column (name or ID)")
	cmd.Flags().Bool("completed", false, "List completed tasks instead")

	// Agent-friendly flags
	cmd.Flags().Bool("json", false, "Output in JSON format")
	cmd.Flags().Bool("quiet", false, "Minimal output (IDs only)")

	return cmd
}

// columnListing pairs a column with its ordered tasks for output.
type columnListing struct {
	Status *models.Status
	Tasks  []*models.Task
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	taskColumn, _ := cmd.Flags().GetString("column")
	completed, _ := cmd.Flags().GetBool("completed")
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

	var listings []columnListing

	switch {
	case completed:
		tasks, err := cliInstance.Board.TasksInStatus(models.PartitionCompleted)
		if err != nil {
			if fmtErr := formatter.Error("TASK_FETCH_ERROR", err.Error()); fmtErr != nil {
				log.Printf("Error formatting error message: %v", fmtErr)
			}
			return err
		}
		listings = append(listings, columnListing{Tasks: tasks})

	case taskColumn != "":
		status, err := cliInstance.ResolveStatus(taskColumn, project.ID)
		if err != nil {
			if fmtErr := formatter.Error("COLUMN_NOT_FOUND", err.Error()); fmtErr != nil {
				log.Printf("Error formatting error message: %v", fmtErr)
			}
			os.Exit(cli.ExitNotFound)
		}
		tasks, err := cliInstance.Board.TasksInStatus(status.ID)
		if err != nil {
			if fmtErr := formatter.Error("TASK_FETCH_ERROR", err.Error()); fmtErr != nil {
				log.Printf("Error formatting error message: %v", fmtErr)
			}
			return err
		}
		listings = append(listings, columnListing{Status: status, Tasks: tasks})

	default:
		statuses, err := cliInstance.Board.StatusesInProject(project.ID)
		if err != nil {
			if fmtErr := formatter.Error("COLUMN_FETCH_ERROR", err.Error()); fmtErr != nil {
				log.Printf("Error formatting error message: %v", fmtErr)
			}
			return err
		}
		for _, status := range statuses {
			tasks, err := cliInstance.Board.TasksInStatus(status.ID)
			if err != nil {
				if fmtErr := formatter.Error("TASK_FETCH_ERROR", err.Error()); fmtErr != nil {
					log.Printf("Error formatting error message: %v", fmtErr)
				}
				return err
			}
			listings = append(listings, columnListing{Status: status, Tasks: tasks})
		}
	}

	if quietMode {
		for _, l := range listings {
			for _, t := range l.Tasks {
				fmt.Printf("%s\n", t.ID)
			}
		}
		return nil
	}

	if jsonOutput {
		columns := make([]map[string]interface{}, 0, len(listings))
		for _, l := range listings {
			entry := map[string]interface{}{"tasks": l.Tasks}
			if l.Status != nil {
				entry["column"] = map[string]interface{}{"id": l.Status.ID, "title": l.Status.Title}
			}
			columns = append(columns, entry)
		}
		return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
			"success": true,
			"project": map[string]interface{}{"id": project.ID, "title": project.Title},
			"columns": columns,
		})
	}

	// Human-readable output
	total := 0
	for _, l := range listings {
		total += len(l.Tasks)
	}
	if total == 0 {
		fmt.Println("No tasks found")
		return nil
	}

	for _, l := range listings {
		if l.Status != nil {
			fmt.Printf("%s:\n", l.Status.Title)
		} else {
			fmt.Println("Completed:")
		}
		for _, t := range l.Tasks {
			line := fmt.Sprintf("  [%s] %s", cli.ShortID(t.ID), t.Title)
			if t.DueDate != nil {
				line += fmt.Sprintf(" (due %s)", t.DueDate.Format("2006-01-02"))
			}
			fmt.Println(line)
		}
	}

	return nil
}
