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

// ListCmd returns the project list subcommand
func ListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		Long: `List your projects in order. The focused project is marked.

Examples:
  tablero project list
  tablero project list --json
  tablero project list --quiet
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

	projects, err := cliInstance.Board.ProjectsInOrder()
	if err != nil {
		if fmtErr := formatter.Error("PROJECT_FETCH_ERROR", err.Error()); fmtErr != nil {
			log.Printf("Error formatting error message: %v", fmtErr)
		}
		return err
	}

	focusedID := ""
	if cliInstance.Board.Profile != nil {
		focusedID = cliInstance.Board.Profile.LastProjectID
	}

	if quietMode {
		for _, p := range projects {
			fmt.Printf("%s\n", p.ID)
		}
		return nil
	}

	if jsonOutput {
		list := make([]map[string]interface{}, len(projects))
		for i, p := range projects {
			list[i] = map[string]interface{}{
				"id":          p.ID,
				"title":       p.Title,
				"description": p.Description,
				"focused":     p.ID == focusedID,
			}
		}
		return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
			"success":  true,
			"projects": list,
		})
	}

	if len(projects) == 0 {
		fmt.Println("No projects found")
		return nil
	}

	fmt.Printf("Found %d projects:\n", len(projects))
	for _, p := range projects {
		marker := " "
		if p.ID == focusedID {
			marker = "*"
		}
		fmt.Printf("  %s [%s] %s\n", marker, cli.ShortID(p.ID), p.Title)
	}
	return nil
}
