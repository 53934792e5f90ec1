package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"github.com/thenoetrevino/tablero/internal/cli"
	"github.com/thenoetrevino/tablero/internal/cli/styles"
	"github.com/thenoetrevino/tablero/internal/models"
)

// ShowCmd returns the task show subcommand
func ShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show task details",
		Long: `Show a task's full details. The description is rendered as
markdown in human mode.

Examples:
  tablero task show a1b2
  tablero task show a1b2 --json
`,
		Args: cobra.ExactArgs(1),
		RunE: runShow,
	}

	// Agent-friendly flags
	cmd.Flags().Bool("json", false, "Output in JSON format")
	cmd.Flags().Bool("quiet", false, "Minimal output (ID only)")

	return cmd
}

func runShow(cmd *cobra.Command, args []string) error {
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

	task, err := cliInstance.ResolveTask(args[0])
	if err != nil {
		if fmtErr := formatter.Error("TASK_NOT_FOUND", err.Error()); fmtErr != nil {
			log.Printf("Error formatting error message: %v", fmtErr)
		}
		os.Exit(cli.ExitNotFound)
	}

	if quietMode {
		fmt.Printf("%s\n", task.ID)
		return nil
	}

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
			"success": true,
			"task":    task,
		})
	}

	styles.Init(cliInstance.Config.ColorScheme)

	var sb strings.Builder
	sb.WriteString(styles.TitleStyle.Render(task.Title))
	sb.WriteString("\n")
	sb.WriteString(styles.SubtitleStyle.Render(task.ID))
	sb.WriteString("\n\n")

	writeField := func(label, value string) {
		sb.WriteString(styles.LabelStyle.Render(label + ": "))
		sb.WriteString(styles.ValueStyle.Render(value))
		sb.WriteString("\n")
	}

	writeField("Column", columnLabel(cliInstance, task))
	if task.DueDate != nil {
		writeField("Due", task.DueDate.Format("2006-01-02"))
	}
	writeField("Created", task.CreatedAt.Format("2006-01-02 15:04"))
	writeField("Updated", task.UpdatedAt.Format("2006-01-02 15:04"))

	if task.Description != "" {
		sb.WriteString(styles.SectionStyle.Render("Description"))
		sb.WriteString("\n")
		sb.WriteString(renderMarkdown(task.Description))
	}

	fmt.Println(styles.RenderCard(strings.TrimRight(sb.String(), "\n")))
	return nil
}

func columnLabel(c *cli.CLI, task *models.Task) string {
	if models.IsPseudoPartition(task.Status) {
		return task.Status
	}
	if s, ok := c.Board.Statuses[task.Status]; ok {
		return s.Title
	}
	return cli.ShortID(task.Status)
}

// renderMarkdown renders a description through glamour, falling back to
// the raw text when the renderer cannot be built.
func renderMarkdown(description string) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(styles.CardWidth-6),
	)
	if err != nil {
		return description
	}
	out, err := renderer.Render(description)
	if err != nil {
		return description
	}
	return out
}
