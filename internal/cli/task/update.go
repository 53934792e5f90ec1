package task

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/tablero/internal/cli"
	syncpkg "github.com/thenoetrevino/tablero/internal/sync"
)

// UpdateCmd returns the task update subcommand
func UpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <task-id>",
		Short: "Update a task",
		Long: `Update a task's title, description, or due date. Ordering is
untouched; use 'tablero task move' to reposition.

Examples:
  # Rename
  tablero task update a1b2 --title="New title"

  # Set a due date
  tablero task update a1b2 --due=2026-09-01

  # Clear the due date
  tablero task update a1b2 --clear-due

  # Description from stdin
  cat notes.md | tablero task update a1b2 --description=-
`,
		Args: cobra.ExactArgs(1),
		RunE: runUpdate,
	}

	cmd.Flags().String("title", "", "New title")
	cmd.Flags().String("description", "", "New description (use - for stdin)")
	cmd.Flags().String("due", "", "New due date (YYYY-MM-DD)")
	cmd.Flags().Bool("clear-due", false, "Remove the due date")

	// Agent-friendly flags
	cmd.Flags().Bool("json", false, "Output in JSON format")
	cmd.Flags().Bool("quiet", false, "Minimal output")

	return cmd
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	newTitle, _ := cmd.Flags().GetString("title")
	newDescription, _ := cmd.Flags().GetString("description")
	newDue, _ := cmd.Flags().GetString("due")
	clearDue, _ := cmd.Flags().GetBool("clear-due")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	quietMode, _ := cmd.Flags().GetBool("quiet")

	formatter := &cli.OutputFormatter{JSON: jsonOutput, Quiet: quietMode}

	if newTitle == "" && !cmd.Flags().Changed("description") && newDue == "" && !clearDue {
		if fmtErr := formatter.ErrorWithSuggestion("NOTHING_TO_UPDATE",
			"no fields to update",
			"Pass at least one of --title, --description, --due, --clear-due"); fmtErr != nil {
			log.Printf("Error formatting error message: %v", fmtErr)
		}
		os.Exit(cli.ExitUsage)
	}

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

	task, err := cliInstance.ResolveTask(args[0])
	if err != nil {
		if fmtErr := formatter.Error("TASK_NOT_FOUND", err.Error()); fmtErr != nil {
			log.Printf("Error formatting error message: %v", fmtErr)
		}
		os.Exit(cli.ExitNotFound)
	}

	changes := syncpkg.TaskChanges{ClearDueDate: clearDue}
	if newTitle != "" {
		changes.Title = &newTitle
	}
	if cmd.Flags().Changed("description") {
		description := newDescription
		if description == "-" {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				if fmtErr := formatter.Error("STDIN_READ_ERROR", err.Error()); fmtErr != nil {
					log.Printf("Error formatting error message: %v", fmtErr)
				}
				return err
			}
			description = string(data)
		}
		changes.Description = &description
	}
	if newDue != "" {
		due, err := cli.ParseDueDate(newDue)
		if err != nil {
			if fmtErr := formatter.ErrorWithSuggestion("INVALID_DATE", err.Error(),
				"Use YYYY-MM-DD, e.g. --due=2026-09-01"); fmtErr != nil {
				log.Printf("Error formatting error message: %v", fmtErr)
			}
			os.Exit(cli.ExitValidation)
		}
		changes.DueDate = due
	}

	builder := cliInstance.Builder()
	if err := builder.UpdateTask(task.ID, changes); err != nil {
		if fmtErr := formatter.Error("TASK_UPDATE_ERROR", err.Error()); fmtErr != nil {
			log.Printf("Error formatting error message: %v", fmtErr)
		}
		os.Exit(cli.ExitValidation)
	}

	if err := cliInstance.Commit(ctx, builder.Transaction()); err != nil {
		if fmtErr := formatter.Error("COMMIT_ERROR", err.Error()); fmtErr != nil {
			log.Printf("Error formatting error message: %v", fmtErr)
		}
		return err
	}

	updated := cliInstance.Board.Tasks[task.ID]

	if quietMode {
		return nil
	}

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
			"success": true,
			"task":    updated,
		})
	}

	fmt.Printf("✓ Task %s updated successfully\n", cli.ShortID(task.ID))
	fmt.Printf("  Title: %s\n", updated.Title)
	if updated.DueDate != nil {
		fmt.Printf("  Due: %s\n", updated.DueDate.Format("2006-01-02"))
	}
	return nil
}
