package cmd

import (
	"github.com/spf13/cobra"

	"github.com/9mada4/VoiceChatBot/internal/config"
	"github.com/9mada4/VoiceChatBot/internal/execx"
	"github.com/9mada4/VoiceChatBot/internal/logger"
	"github.com/9mada4/VoiceChatBot/internal/setup"
)

func NewSetupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Check prerequisites and install the speech dependencies",
		Long: `Check that python3, Homebrew and the audio tools are present, install the
Python speech packages, then print the manual permission steps.

Missing audio tools are installed with Homebrew. A missing interpreter, or
a missing Homebrew when a tool needs installing, stops setup with exit
code 1. A failed install keeps the installer's own exit code.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger.InitLogger(config.Dev, config.LogPath, nil)

			cfg := *config.Current
			if manifest, _ := cmd.Flags().GetString("manifest"); manifest != "" {
				cfg.Setup.Manifest = manifest
			}

			return setup.New(execx.System(), cmd.OutOrStdout(), &cfg).Run()
		},
	}

	cmd.Flags().StringP("manifest", "m", "", "Dependency manifest handed to pip3 (defaults to requirements.txt)")

	return cmd
}
