package cmd

import (
	"github.com/spf13/cobra"

	"github.com/9mada4/VoiceChatBot/internal/config"
	"github.com/9mada4/VoiceChatBot/internal/doctor"
	"github.com/9mada4/VoiceChatBot/internal/execx"
	"github.com/9mada4/VoiceChatBot/internal/logger"
)

func NewDoctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Inspect the macOS dictation settings the bot depends on",
		Long: `Read the dictation configuration out of com.apple.HIToolbox, look for the
dictation processes and report the keyboard layout's right-command key
code. The report is advisory; doctor always exits 0.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger.InitLogger(config.Dev, config.LogPath, nil)

			report := doctor.New(execx.System()).Run(cmd.Context())
			doctor.Render(cmd.OutOrStdout(), report)
			return nil
		},
	}
}
