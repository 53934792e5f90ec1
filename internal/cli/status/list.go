package status

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/tablero/internal/cli"
)

// ListCmd returns the status list subcommand
func ListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List columns",
		Long: `List the focused project's columns in board order.

Examples:
  # Human-readable list
  tablero status list

  # JSON output for agents
  tablero status list --json

  # Quiet mode (one ID per line)
  tablero status list --quiet
`,
		RunE: runList,
	}

	// Agent-friendly flags
	cmd.Flags().Bool("json", false, "Output in JSON format")
	cmd.Flags().Bool("quiet", false, "Minimal output (IDs only)")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

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

	statuses, err := cliInstance.Board.StatusesInProject(project.ID)
	if err != nil {
		if fmtErr := formatter.Error("COLUMN_FETCH_ERROR", err.Error()); fmtErr != nil {
			log.Printf("Error formatting error message: %v", fmtErr)
		}
		return err
	}

	if quietMode {
		for _, s := range statuses {
			fmt.Printf("%s\n", s.ID)
		}
		return nil
	}

	if jsonOutput {
		columns := make([]map[string]interface{}, len(statuses))
		for i, s := range statuses {
			columns[i] = map[string]interface{}{
				"id":         s.ID,
				"title":      s.Title,
				"color":      s.Color,
				"project_id": s.ProjectID,
			}
		}
		return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
			"success": true,
			"columns": columns,
		})
	}

	if len(statuses) == 0 {
		fmt.Printf("No columns found in project '%s'\n", project.Title)
		return nil
	}

	fmt.Printf("Columns in project '%s':\n", project.Title)
	for i, s := range statuses {
		count := len(cliInstance.Board.TaskPartition(s.ID))
		fmt.Printf("  %d. %s (ID: %s, %d tasks)\n", i+1, s.Title, cli.ShortID(s.ID), count)
	}
	return nil
}
