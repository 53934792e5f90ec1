package status

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/tablero/internal/cli"
	syncpkg "github.com/thenoetrevino/tablero/internal/sync"
)

// CreateCmd returns the status create subcommand
func CreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new column",
		Long: `Create a new column in the focused project.

Examples:
  # Create a column at the head of the board
  tablero status create --title="Review"

  # Insert after an existing column
  tablero status create --title="Review" --after="In Progress"

  # With a color
  tablero status create --title="Blocked" --color="#f7768e"

  # Quiet mode for bash capture
  COLUMN_ID=$(tablero status create --title="Review" --quiet)
`,
		RunE: runCreate,
	}

	// Required flags
	cmd.Flags().String("title", "", "Column title (required)")
	if err := cmd.MarkFlagRequired("title"); err != nil {
		log.Printf("Error marking flag as required: %v", err)
	}

	// Optional flags
	cmd.Flags().String("description", "", "Column description")
	cmd.Flags().String("color", "", "Column color (#RRGGBB)")
	cmd.Flags().String("after", "", "Insert after this column (name or ID)")

	// Agent-friendly flags
	cmd.Flags().Bool("json", false, "Output in JSON format")
	cmd.Flags().Bool("quiet", false, "Minimal output (ID only)")

	return cmd
}

func runCreate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	title, _ := cmd.Flags().GetString("title")
	description, _ := cmd.Flags().GetString("description")
	color, _ := cmd.Flags().GetString("color")
	after, _ := cmd.Flags().GetString("after")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	quietMode, _ := cmd.Flags().GetBool("quiet")

	formatter := &cli.OutputFormatter{JSON: jsonOutput, Quiet: quietMode}

	if color != "" {
		if err := cli.ValidateColorHex(color); err != nil {
			if fmtErr := formatter.Error("INVALID_COLOR", err.Error()); fmtErr != nil {
				log.Printf("Error formatting error message: %v", fmtErr)
			}
			os.Exit(cli.ExitValidation)
		}
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

	project, err := cliInstance.FocusedProject()
	if err != nil {
		if fmtErr := formatter.ErrorWithSuggestion("NO_PROJECT", err.Error(),
			"Use 'tablero project list' to see available projects"); fmtErr != nil {
			log.Printf("Error formatting error message: %v", fmtErr)
		}
		os.Exit(cli.ExitUsage)
	}

	req := syncpkg.AddStatusRequest{
		Title:       title,
		Description: description,
		Color:       color,
		ProjectID:   project.ID,
	}

	if after != "" {
		afterStatus, err := cliInstance.ResolveStatus(after, project.ID)
		if err != nil {
			if fmtErr := formatter.Error("COLUMN_NOT_FOUND", err.Error()); fmtErr != nil {
				log.Printf("Error formatting error message: %v", fmtErr)
			}
			os.Exit(cli.ExitNotFound)
		}
		req.AfterID = &afterStatus.ID
	}

	builder := cliInstance.Builder()
	status, err := builder.AddStatus(req)
	if err != nil {
		if fmtErr := formatter.Error("COLUMN_CREATE_ERROR", err.Error()); fmtErr != nil {
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

	if quietMode {
		fmt.Printf("%s\n", status.ID)
		return nil
	}

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
			"success": true,
			"column": map[string]interface{}{
				"id":         status.ID,
				"title":      status.Title,
				"color":      status.Color,
				"project_id": status.ProjectID,
			},
		})
	}

	fmt.Printf("✓ Column '%s' created successfully (ID: %s)\n", status.Title, cli.ShortID(status.ID))
	fmt.Printf("  Project: %s\n", project.Title)
	return nil
}
