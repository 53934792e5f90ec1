package project

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

// UpdateCmd returns the project update subcommand
func UpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <project>",
		Short: "Update a project",
		Long: `Update a project's title or description.

Examples:
  tablero project update "Side Quest" --title="Main Quest"
`,
		Args: cobra.ExactArgs(1),
		RunE: runUpdate,
	}

	cmd.Flags().String("title", "", "New title")
	cmd.Flags().String("description", "", "New description")

	// Agent-friendly flags
	cmd.Flags().Bool("json", false, "Output in JSON format")
	cmd.Flags().Bool("quiet", false, "Minimal output")

	return cmd
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	newTitle, _ := cmd.Flags().GetString("title")
	newDescription, _ := cmd.Flags().GetString("description")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	quietMode, _ := cmd.Flags().GetBool("quiet")

	formatter := &cli.OutputFormatter{JSON: jsonOutput, Quiet: quietMode}

	if newTitle == "" && !cmd.Flags().Changed("description") {
		if fmtErr := formatter.ErrorWithSuggestion("NOTHING_TO_UPDATE",
			"no fields to update",
			"Pass --title or --description"); fmtErr != nil {
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

	project, err := cliInstance.ResolveProject(args[0])
	if err != nil {
		if fmtErr := formatter.Error("PROJECT_NOT_FOUND", err.Error()); fmtErr != nil {
			log.Printf("Error formatting error message: %v", fmtErr)
		}
		os.Exit(cli.ExitNotFound)
	}

	oldTitle := project.Title

	changes := syncpkg.ProjectChanges{}
	if newTitle != "" {
		changes.Title = &newTitle
	}
	if cmd.Flags().Changed("description") {
		changes.Description = &newDescription
	}

	builder := cliInstance.Builder()
	if err := builder.UpdateProject(project.ID, changes); err != nil {
		if fmtErr := formatter.Error("PROJECT_UPDATE_ERROR", err.Error()); fmtErr != nil {
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

	updated := cliInstance.Board.Projects[project.ID]

	if quietMode {
		return nil
	}

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
			"success": true,
			"project": map[string]interface{}{
				"id":        updated.ID,
				"title":     updated.Title,
				"old_title": oldTitle,
			},
		})
	}

	fmt.Printf("✓ Project %s updated successfully\n", cli.ShortID(project.ID))
	if newTitle != "" && newTitle != oldTitle {
		fmt.Printf("  '%s' → '%s'\n", oldTitle, newTitle)
	}
	return nil
}
