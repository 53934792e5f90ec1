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

// UpdateCmd returns the status update subcommand
func UpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <column>",
		Short: "Update a column",
		Long: `Update a column's title, description, or color.

Examples:
  # Rename by current name
  tablero status update "To Do" --title="Backlog"

  # Change the color
  tablero status update Backlog --color="#7aa2f7"
`,
		Args: cobra.ExactArgs(1),
		RunE: runUpdate,
	}

	cmd.Flags().String("title", "", "New title")
	cmd.Flags().String("description", "", "New description")
	cmd.Flags().String("color", "", "New color (#RRGGBB)")

	// Agent-friendly flags
	cmd.Flags().Bool("json", false, "Output in JSON format")
	cmd.Flags().Bool("quiet", false, "Minimal output")

	return cmd
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	newTitle, _ := cmd.Flags().GetString("title")
	newDescription, _ := cmd.Flags().GetString("description")
	newColor, _ := cmd.Flags().GetString("color")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	quietMode, _ := cmd.Flags().GetBool("quiet")

	formatter := &cli.OutputFormatter{JSON: jsonOutput, Quiet: quietMode}

	if newTitle == "" && !cmd.Flags().Changed("description") && newColor == "" {
		if fmtErr := formatter.ErrorWithSuggestion("NOTHING_TO_UPDATE",
			"no fields to update",
			"Pass at least one of --title, --description, --color"); fmtErr != nil {
			log.Printf("Error formatting error message: %v", fmtErr)
		}
		os.Exit(cli.ExitUsage)
	}

	if newColor != "" {
		if err := cli.ValidateColorHex(newColor); err != nil {
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
		if fmtErr := formatter.Error("NO_PROJECT", err.Error()); fmtErr != nil {
			log.Printf("Error formatting error message: %v", fmtErr)
		}
		os.Exit(cli.ExitUsage)
	}

	status, err := cliInstance.ResolveStatus(args[0], project.ID)
	if err != nil {
		if fmtErr := formatter.Error("COLUMN_NOT_FOUND", err.Error()); fmtErr != nil {
			log.Printf("Error formatting error message: %v", fmtErr)
		}
		os.Exit(cli.ExitNotFound)
	}

	oldTitle := status.Title

	changes := syncpkg.StatusChanges{}
	if newTitle != "" {
		changes.Title = &newTitle
	}
	if cmd.Flags().Changed("description") {
		changes.Description = &newDescription
	}
	if newColor != "" {
		changes.Color = &newColor
	}

	builder := cliInstance.Builder()
	if err := builder.UpdateStatus(status.ID, changes); err != nil {
		if fmtErr := formatter.Error("COLUMN_UPDATE_ERROR", err.Error()); fmtErr != nil {
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

	updated := cliInstance.Board.Statuses[status.ID]

	if quietMode {
		return nil
	}

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
			"success": true,
			"column": map[string]interface{}{
				"id":        updated.ID,
				"title":     updated.Title,
				"color":     updated.Color,
				"old_title": oldTitle,
			},
		})
	}

	fmt.Printf("✓ Column %s updated successfully\n", cli.ShortID(status.ID))
	if newTitle != "" && newTitle != oldTitle {
		fmt.Printf("  '%s' → '%s'\n", oldTitle, newTitle)
	}
	return nil
}
