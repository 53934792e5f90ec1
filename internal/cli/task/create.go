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

// CreateCmd returns the task create subcommand
func CreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new task",
		Long: `Create a new task at the head of a column.

Examples:
  # Simple task in the focused project's first column
  tablero task create --title="Fix bug"

  # Target a column by name
  tablero task create --title="Fix bug" --column="In Progress"

  # JSON output for agents
  tablero task create --title="Fix bug" --json

  # Quiet mode for bash capture
  TASK_ID=$(tablero task create --title="Fix bug" --quiet)

  # Description from stdin
  cat notes.md | tablero task create --title="Fix bug" --description=-
`,
		RunE: runCreate,
	}

	// Required flags
	cmd.Flags().String("title", "", "Task title (required)")
	if err := cmd.MarkFlagRequired("title"); err != nil {
		log.Printf("Error marking flag as required: %v", err)
	}

	// Optional flags
	cmd.Flags().String("description", "", "Task description (use - for stdin)")
	cmd.Flags().String("due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().String("column", "", "Column name or ID (defaults to first column)")
	cmd.Flags().String("after", "", "Insert after this task ID (default: head of column)")

	// Agent-friendly flags (REQUIRED on all commands)
	cmd.Flags().Bool("json", false, "Output in JSON format")
	cmd.Flags().Bool("quiet", false, "Minimal output (ID only)")

	return cmd
}

func runCreate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	taskTitle, _ := cmd.Flags().GetString("title")
	taskDescription, _ := cmd.Flags().GetString("description")
	taskDue, _ := cmd.Flags().GetString("due")
	taskColumn, _ := cmd.Flags().GetString("column")
	taskAfter, _ := cmd.Flags().GetString("after")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	quietMode, _ := cmd.Flags().GetBool("quiet")

	formatter := &cli.OutputFormatter{JSON: jsonOutput, Quiet: quietMode}

	// Initialize CLI
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

	// Determine target column
	var statusID string
	if taskColumn == "" {
		statuses, err := cliInstance.Board.StatusesInProject(project.ID)
		if err != nil {
			if fmtErr := formatter.Error("COLUMN_FETCH_ERROR", err.Error()); fmtErr != nil {
				log.Printf("Error formatting error message: %v", fmtErr)
			}
			return err
		}
		if len(statuses) == 0 {
			if fmtErr := formatter.ErrorWithSuggestion("NO_COLUMNS",
				"project has no columns",
				"Create one with 'tablero status create --title=<name>'"); fmtErr != nil {
				log.Printf("Error formatting error message: %v", fmtErr)
			}
			return fmt.Errorf("project has no columns")
		}
		statusID = statuses[0].ID
	} else {
		status, err := cliInstance.ResolveStatus(taskColumn, project.ID)
		if err != nil {
			if fmtErr := formatter.Error("COLUMN_NOT_FOUND", err.Error()); fmtErr != nil {
				log.Printf("Error formatting error message: %v", fmtErr)
			}
			os.Exit(cli.ExitNotFound)
		}
		statusID = status.ID
	}

	// Handle description from stdin
	description := taskDescription
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

	req := syncpkg.AddTaskRequest{
		Title:       taskTitle,
		Description: description,
		Status:      statusID,
	}

	if taskDue != "" {
		due, err := cli.ParseDueDate(taskDue)
		if err != nil {
			if fmtErr := formatter.ErrorWithSuggestion("INVALID_DATE", err.Error(),
				"Use YYYY-MM-DD, e.g. --due=2026-09-01"); fmtErr != nil {
				log.Printf("Error formatting error message: %v", fmtErr)
			}
			os.Exit(cli.ExitValidation)
		}
		req.DueDate = due
	}

	if taskAfter != "" {
		after, err := cliInstance.ResolveTask(taskAfter)
		if err != nil {
			if fmtErr := formatter.Error("TASK_NOT_FOUND", err.Error()); fmtErr != nil {
				log.Printf("Error formatting error message: %v", fmtErr)
			}
			os.Exit(cli.ExitNotFound)
		}
		if after.Status != statusID {
			if fmtErr := formatter.Error("INVALID_NEIGHBOR",
				fmt.Sprintf("task %s is not in the target column", cli.ShortID(after.ID))); fmtErr != nil {
				log.Printf("Error formatting error message: %v", fmtErr)
			}
			os.Exit(cli.ExitValidation)
		}
		req.AfterID = &after.ID
	}

	builder := cliInstance.Builder()
	task, err := builder.AddTask(req)
	if err != nil {
		if fmtErr := formatter.Error("TASK_CREATE_ERROR", err.Error()); fmtErr != nil {
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

	// Output based on mode (JSON/Quiet/Human)
	if quietMode {
		fmt.Printf("%s\n", task.ID)
		return nil
	}

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
			"success": true,
			"task": map[string]interface{}{
				"id":          task.ID,
				"title":       task.Title,
				"description": task.Description,
				"status":      task.Status,
				"project":     map[string]interface{}{"id": project.ID, "title": project.Title},
				"created_at":  task.CreatedAt,
			},
		})
	}

	// Human-readable output
	fmt.Printf("✓ Task '%s' created successfully (ID: %s)\n", task.Title, cli.ShortID(task.ID))
	fmt.Printf("  Project: %s\n", project.Title)
	if s, ok := cliInstance.Board.Statuses[task.Status]; ok {
		fmt.Printf("  Column: %s\n", s.Title)
	}
	if task.DueDate != nil {
		fmt.Printf("  Due: %s\n", task.DueDate.Format("2006-01-02"))
	}

	return nil
}
