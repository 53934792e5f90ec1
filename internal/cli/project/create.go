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

// CreateCmd returns the project create subcommand
func CreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new project",
		Long: `Create a new project at the head of your project list. The new
project starts with no columns; add them with 'tablero status create'
after switching to it with 'tablero use'.

Examples:
  tablero project create --title="Side Quest"

  # Create and switch focus
  tablero project create --title="Side Quest" --use

  # Quiet mode for bash capture
  PROJECT_ID=$(tablero project create --title="Side Quest" --quiet)
`,
		RunE: runCreate,
	}

	// Required flags
	cmd.Flags().String("title", "", "Project title (required)")
	if err := cmd.MarkFlagRequired("title"); err != nil {
		log.Printf("Error marking flag as required: %v", err)
	}

	// Optional flags
	cmd.Flags().String("description", "", "Project description")
	cmd.Flags().Bool("use", false, "Switch focus to the new project")

	// Agent-friendly flags
	cmd.Flags().Bool("json", false, "Output in JSON format")
	cmd.Flags().Bool("quiet", false, "Minimal output (ID only)")

	return cmd
}

func runCreate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	title, _ := cmd.Flags().GetString("title")
	description, _ := cmd.Flags().GetString("description")
	useAfter, _ := cmd.Flags().GetBool("use")
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

	builder := cliInstance.Builder()
	project, err := builder.AddProject(syncpkg.AddProjectRequest{
		Title:       title,
		Description: description,
	})
	if err != nil {
		if fmtErr := formatter.Error("PROJECT_CREATE_ERROR", err.Error()); fmtErr != nil {
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

	// Focus switch is a second gesture; the project exists either way.
	if useAfter {
		focus := cliInstance.Builder()
		if err := focus.SwitchFocus(project.ID); err == nil {
			if err := cliInstance.Commit(ctx, focus.Transaction()); err != nil {
				log.Printf("Error switching focus to new project: %v", err)
			}
		}
	}

	if quietMode {
		fmt.Printf("%s\n", project.ID)
		return nil
	}

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
			"success": true,
			"project": map[string]interface{}{
				"id":          project.ID,
				"title":       project.Title,
				"description": project.Description,
			},
		})
	}

	fmt.Printf("✓ Project '%s' created successfully (ID: %s)\n", project.Title, cli.ShortID(project.ID))
	if useAfter {
		fmt.Printf("  Focused. New tasks and columns land here.\n")
	}
	return nil
}
