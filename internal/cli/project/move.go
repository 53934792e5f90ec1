package project

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/tablero/internal/cli"
)

// MoveCmd returns the project move subcommand
func MoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move <project>",
		Short: "Reorder a project",
		Long: `Reorder a project within your project list. Without --after the
project moves to the head.

Examples:
  tablero project move "Side Quest"
  tablero project move "Side Quest" --after="Main Quest"
`,
		Args: cobra.ExactArgs(1),
		RunE: runMove,
	}

	cmd.Flags().String("after", "", "Place directly after this project (name or ID)")

	// Agent-friendly flags
	cmd.Flags().Bool("json", false, "Output in JSON format")
	cmd.Flags().Bool("quiet", false, "Minimal output")

	return cmd
}

func runMove(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	afterRef, _ := cmd.Flags().GetString("after")
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

	var afterID *string
	if afterRef != "" {
		after, err := cliInstance.ResolveProject(afterRef)
		if err != nil {
			if fmtErr := formatter.Error("PROJECT_NOT_FOUND", err.Error()); fmtErr != nil {
				log.Printf("Error formatting error message: %v", fmtErr)
			}
			os.Exit(cli.ExitNotFound)
		}
		afterID = &after.ID
	}

	builder := cliInstance.Builder()
	if err := builder.MoveProject(project.ID, afterID); err != nil {
		if fmtErr := formatter.Error("PROJECT_MOVE_ERROR", err.Error()); fmtErr != nil {
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
		return nil
	}

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
			"success":    true,
			"project_id": project.ID,
		})
	}

	fmt.Printf("✓ Project '%s' moved\n", project.Title)
	return nil
}
