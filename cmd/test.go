package cmd

import (
	"github.com/spf13/cobra"

	"github.com/9mada4/VoiceChatBot/internal/config"
	"github.com/9mada4/VoiceChatBot/internal/execx"
	"github.com/9mada4/VoiceChatBot/internal/logger"
	"github.com/9mada4/VoiceChatBot/internal/selftest"
)

func NewTestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Record a short clip and run it through the speech pipeline",
		Long: `Record a few seconds from the microphone and report every stage: input
devices, signal level, voice detection, the WAV and FLAC encodes and the
transcription. Run this after setup to confirm the microphone and the
speech engine work before starting a session.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger.InitLogger(config.Dev, config.LogPath, nil)

			return selftest.NewAudio(execx.System(), cmd.OutOrStdout(), config.Current).Run(cmd.Context())
		},
	}
}
