package profile

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

// ProfileCmd returns the profile parent command
func ProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage your profile",
	}

	cmd.AddCommand(ShowCmd())
	cmd.AddCommand(UpdateCmd())

	return cmd
}

// ShowCmd returns the profile show subcommand
func ShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show your profile",
		RunE:  runShow,
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

	profile := cliInstance.Board.Profile
	if profile == nil {
		if fmtErr := formatter.Error("NO_PROFILE", "no profile found"); fmtErr != nil {
			log.Printf("Error formatting error message: %v", fmtErr)
		}
		os.Exit(cli.ExitNotFound)
	}

	if quietMode {
		fmt.Printf("%s\n", profile.ID)
		return nil
	}

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
			"success": true,
			"profile": profile,
		})
	}

	fmt.Printf("User: %s\n", profile.ID)
	fmt.Printf("Nickname: %s\n", profile.Nickname)
	if focused, ok := cliInstance.Board.Projects[profile.LastProjectID]; ok {
		fmt.Printf("Focused project: %s\n", focused.Title)
	}
	if profile.Language != "" {
		fmt.Printf("Language: %s\n", profile.Language)
	}
	return nil
}

// UpdateCmd returns the profile update subcommand
func UpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update your profile",
		Long: `Update profile fields.

Examples:
  tablero profile update --nickname="noe"
  tablero profile update --language=es
`,
		RunE: runUpdate,
	}

	cmd.Flags().String("nickname", "", "New nickname")
	cmd.Flags().String("avatar", "", "New avatar")
	cmd.Flags().String("language", "", "Preferred language code")

	// Agent-friendly flags
	cmd.Flags().Bool("json", false, "Output in JSON format")
	cmd.Flags().Bool("quiet", false, "Minimal output")

	return cmd
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	nickname, _ := cmd.Flags().GetString("nickname")
	avatar, _ := cmd.Flags().GetString("avatar")
	language, _ := cmd.Flags().GetString("language")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	quietMode, _ := cmd.Flags().GetBool("quiet")

	formatter := &cli.OutputFormatter{JSON: jsonOutput, Quiet: quietMode}

	if nickname == "" && avatar == "" && language == "" {
		if fmtErr := formatter.ErrorWithSuggestion("NOTHING_TO_UPDATE",
			"no fields to update",
			"Pass at least one of --nickname, --avatar, --language"); fmtErr != nil {
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

	changes := syncpkg.ProfileChanges{}
	if nickname != "" {
		changes.Nickname = &nickname
	}
	if avatar != "" {
		changes.Avatar = &avatar
	}
	if language != "" {
		changes.Language = &language
	}

	builder := cliInstance.Builder()
	if err := builder.UpdateProfile(changes); err != nil {
		if fmtErr := formatter.Error("PROFILE_UPDATE_ERROR", err.Error()); fmtErr != nil {
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
			"success": true,
			"profile": cliInstance.Board.Profile,
		})
	}

	fmt.Println("✓ Profile updated successfully")
	return nil
}
