package cmd

import (
	"github.com/spf13/cobra"

	boardcmd "github.com/thenoetrevino/tablero/internal/cli/board"
	"github.com/thenoetrevino/tablero/internal/cli/doctor"
	"github.com/thenoetrevino/tablero/internal/cli/profile"
	"github.com/thenoetrevino/tablero/internal/cli/project"
	"github.com/thenoetrevino/tablero/internal/cli/status"
	"github.com/thenoetrevino/tablero/internal/cli/task"
	"github.com/thenoetrevino/tablero/internal/cli/use"
)

var rootCmd = &cobra.Command{
	Use:   "tablero",
	Short: "Tablero - A terminal-based kanban board",
	Long: `Tablero is a terminal-based kanban board for managing tasks and
projects, with live synchronization across terminals through a local
daemon.`,
}

func init() {
	rootCmd.AddCommand(task.TaskCmd())
	rootCmd.AddCommand(status.StatusCmd())
	rootCmd.AddCommand(project.ProjectCmd())
	rootCmd.AddCommand(use.UseCmd())
	rootCmd.AddCommand(profile.ProfileCmd())
	rootCmd.AddCommand(boardcmd.BoardCmd())
	rootCmd.AddCommand(doctor.DoctorCmd())
}

func Execute() error {
	return rootCmd.Execute()
}
