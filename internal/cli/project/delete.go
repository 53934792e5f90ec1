package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/tablero/internal/cli"
	syncpkg "github.com/thenoetrevino/tablero/internal/sync"
)

// DeleteCmd returns the project delete subcommand
func DeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <project>",
		Short: "Delete a project",
		Long: `Delete a project with no remaining columns (requires confirmation
unless --force or --quiet). Delete its columns first.

Examples:
  tablero project delete "Side Quest"
  tablero project delete "Side Quest" --force
`,
		Args: cobra.ExactArgs(1),
		RunE: runDelete,
	}

	cmd.Flags().Bool("force", false, "Skip confirmation")

	// Agent-friendly flags
	cmd.Flags().Bool("json", false, "Output in JSON format")
	cmd.Flags().Bool("quiet", false, "Minimal output")

	return cmd
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	force, _ := cmd.Flags().GetBool("force")
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

	project, err := cliInstance.ResolveProject(args[0])
	if err != nil {
		if fmtErr := formatter.Error("PROJECT_NOT_FOUND", err.Error()); fmtErr != nil {
			log.Printf("Error formatting error message: %v", fmtErr)
		}
		os.Exit(cli.ExitNotFound)
	}

	if !force && !quietMode && !jsonOutput {
		fmt.Printf("Delete project '%s'? (y/N): ", project.Title)
		var response string
		if _, err := fmt.Scanln(&response); err != nil {
			log.Printf("Error reading user input: %v", err)
		}
		if strings.ToLower(response) != "y" && strings.ToLower(response) != "yes" {
			fmt.Println("Cancelled")
			return nil
		}
	}

	builder := cliInstance.Builder()
	if err := builder.DeleteProject(project.ID); err != nil {
		if errors.Is(err, syncpkg.ErrProjectHasStatuses) {
			if fmtErr := formatter.ErrorWithSuggestion("PROJECT_NOT_EMPTY",
				fmt.Sprintf("project '%s' still has columns", project.Title),
				"Delete its columns first with 'tablero status delete'"); fmtErr != nil {
				log.Printf("Error formatting error message: %v", fmtErr)
			}
			os.Exit(cli.ExitValidation)
		}
		if fmtErr := formatter.Error("PROJECT_DELETE_ERROR", err.Error()); fmtErr != nil {
			log.Printf("Error formatting error message: %v", fmtErr)
		}
		return err
	}

	if err := cliInstance.Commit(ctx, builder.Transaction()); err != nil {
		if fmtErr := formatter.Error("COMMIT_ERROR", err.Error()); fmtErr != nil {
			log.Printf("Error formatting error message: %v", fmtErr)
		}
		return err
	}

	if quietMode {
		return nil
	}

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
			"success":    true,
			"project_id": project.ID,
		})
	}

	fmt.Printf("✓ Project '%s' deleted successfully\n", project.Title)
	return nil
}
