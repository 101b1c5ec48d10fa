package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/9mada4/VoiceChatBot/internal/config"
	"github.com/9mada4/VoiceChatBot/internal/exitcode"
)

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "voicechatbot",
		Short: "Voice control for the ChatGPT desktop app",
		Long: `VoiceChatBot drives the macOS ChatGPT desktop app by voice: it types
prompts through native dictation, reads replies from the clipboard and
speaks them back.

Run "voicechatbot setup" once, fix anything "voicechatbot doctor" reports,
then start a session with "voicechatbot run".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.Dev, _ = cmd.Flags().GetBool("dev")
			config.LogPath, _ = cmd.Flags().GetString("log-path")

			path, _ := cmd.Flags().GetString("config")
			return config.Init(path)
		},
	}

	rootCmd.PersistentFlags().StringP("config", "c", config.DefaultFile, "Specify the configuration file")
	rootCmd.PersistentFlags().Bool("dev", false, "Enable the debug console and verbose logging")
	rootCmd.PersistentFlags().String("log-path", "", "Write logs to this file")

	rootCmd.AddCommand(NewSetupCommand())
	rootCmd.AddCommand(NewDoctorCommand())
	rootCmd.AddCommand(NewRunCommand())
	rootCmd.AddCommand(NewTestCommand())
	rootCmd.AddCommand(NewScrollCommand())

	return rootCmd
}

// Execute runs the CLI and turns failures into process exit codes. Fatal
// prerequisite errors and installer failures carry their own code.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)

		var xerr *exitcode.ExitError
		if errors.As(err, &xerr) {
			os.Exit(xerr.Code)
		}
		os.Exit(1)
	}
}
