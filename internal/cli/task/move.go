package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/tablero/internal/cli"
)

// MoveCmd returns the task move subcommand
func MoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move <task-id>",
		Short: "Move a task",
		Long: `Move a task to another column, or reposition it within its own.
Without --after or --index the task lands at the head of the target.

Examples:
  # Move to another column (head)
  tablero task move a1b2 --column="In Progress"

  # Drop directly after another task
  tablero task move a1b2 --column="In Progress" --after=c3d4

  # Drop at position 2 of the target column
  tablero task move a1b2 --column=Done --index=2

  # Reorder within the current column
  tablero task move a1b2 --after=c3d4
`,
		Args: cobra.ExactArgs(1),
		RunE: runMove,
	}

	cmd.Flags().String("column", "", "Target column (default: current column)")
	cmd.Flags().String("after", "", "Place directly after this task ID")
	cmd.Flags().Int("index", -1, "Place at this position in the target column (0 = head)")

	// Agent-friendly flags
	cmd.Flags().Bool("json", false, "Output in JSON format")
	cmd.Flags().Bool("quiet", false, "Minimal output")

	return cmd
}

func runMove(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	targetColumn, _ := cmd.Flags().GetString("column")
	afterRef, _ := cmd.Flags().GetString("after")
	index, _ := cmd.Flags().GetInt("index")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	quietMode, _ := cmd.Flags().GetBool("quiet")

	formatter := &cli.OutputFormatter{JSON: jsonOutput, Quiet: quietMode}

	if afterRef != "" && index >= 0 {
		if fmtErr := formatter.Error("CONFLICTING_FLAGS",
			"--after and --index cannot be combined"); fmtErr != nil {
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

	project, err := cliInstance.FocusedProject()
	if err != nil {
		if fmtErr := formatter.Error("NO_PROJECT", err.Error()); fmtErr != nil {
			log.Printf("Error formatting error message: %v", fmtErr)
		}
		os.Exit(cli.ExitUsage)
	}

	statusID := task.Status
	if targetColumn != "" {
		status, err := cliInstance.ResolveStatus(targetColumn, project.ID)
		if err != nil {
			if fmtErr := formatter.Error("COLUMN_NOT_FOUND", err.Error()); fmtErr != nil {
				log.Printf("Error formatting error message: %v", fmtErr)
			}
			os.Exit(cli.ExitNotFound)
		}
		statusID = status.ID
	}

	builder := cliInstance.Builder()

	switch {
	case index >= 0:
		err = builder.MoveTaskToIndex(task.ID, statusID, index)
	case afterRef != "":
		after, resolveErr := cliInstance.ResolveTask(afterRef)
		if resolveErr != nil {
			if fmtErr := formatter.Error("TASK_NOT_FOUND", resolveErr.Error()); fmtErr != nil {
				log.Printf("Error formatting error message: %v", fmtErr)
			}
			os.Exit(cli.ExitNotFound)
		}
		err = builder.MoveTask(task.ID, statusID, &after.ID)
	default:
		err = builder.MoveTask(task.ID, statusID, nil)
	}
	if err != nil {
		if fmtErr := formatter.Error("TASK_MOVE_ERROR", err.Error()); fmtErr != nil {
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

	moved := cliInstance.Board.Tasks[task.ID]

	if quietMode {
		return nil
	}

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
			"success": true,
			"task":    moved,
		})
	}

	columnName := moved.Status
	if s, ok := cliInstance.Board.Statuses[moved.Status]; ok {
		columnName = s.Title
	}
	fmt.Printf("✓ Task %s moved to '%s'\n", cli.ShortID(task.ID), columnName)
	return nil
}
