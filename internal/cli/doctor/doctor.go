// Package doctor checks the stored board against the chain invariants and
// reports every violation it finds.
package doctor

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/tablero/internal/cli"
)

// DoctorCmd returns the doctor command
func DoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check board integrity",
		Long: `Validate every ordering chain on your board: one head and tail per
column, consistent back-links, no cycles, no unreachable records, no
columns pointing at deleted parents.

Exit code 0 means a clean board; ` + fmt.Sprint(cli.ExitDataErr) + ` means violations were found.

Examples:
  tablero doctor
  tablero doctor --json
`,
		RunE: runDoctor,
	}

	// Agent-friendly flags
	cmd.Flags().Bool("json", false, "Output in JSON format")
	cmd.Flags().Bool("quiet", false, "Minimal output")

	return cmd
}

func runDoctor(cmd *cobra.Command, args []string) error {
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

	violations := cliInstance.Board.Validate()

	if jsonOutput {
		list := make([]map[string]interface{}, len(violations))
		for i, v := range violations {
			list[i] = map[string]interface{}{
				"kind":          string(v.Kind),
				"partition":     v.PartitionKey,
				"type":          string(v.Type),
				"offending_ids": v.OffendingIDs,
			}
		}
		if err := json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
			"success":    len(violations) == 0,
			"violations": list,
		}); err != nil {
			return err
		}
		if len(violations) > 0 {
			os.Exit(cli.ExitDataErr)
		}
		return nil
	}

	if len(violations) == 0 {
		if !quietMode {
			fmt.Println("✓ Board is healthy: all chains intact")
		}
		return nil
	}

	if !quietMode {
		fmt.Printf("Found %d violations:\n", len(violations))
		for _, v := range violations {
			ids := make([]string, len(v.OffendingIDs))
			for i, id := range v.OffendingIDs {
				ids[i] = cli.ShortID(id)
			}
			fmt.Printf("  %s/%s: %s (%s)\n",
				v.Kind, cli.ShortID(v.PartitionKey), v.Type, strings.Join(ids, ", "))
		}
	}
	os.Exit(cli.ExitDataErr)
	return nil
}
