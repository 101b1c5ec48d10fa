package cmd

import (
	"github.com/spf13/cobra"

	"github.com/9mada4/VoiceChatBot/internal/config"
	"github.com/9mada4/VoiceChatBot/internal/execx"
	"github.com/9mada4/VoiceChatBot/internal/logger"
	"github.com/9mada4/VoiceChatBot/internal/selftest"
)

func NewScrollCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "scroll",
		Short: "Verify screenshots and key injection against the frontmost window",
		Long: `Take a screenshot, check the startVoiceBtn.png asset and scroll the
frontmost window with injected Page Down and Page Up presses. Failures
point at the Screen Recording or Accessibility permission that is still
missing.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger.InitLogger(config.Dev, config.LogPath, nil)

			return selftest.NewScroll(execx.System(), cmd.OutOrStdout(), config.Current).Run(cmd.Context())
		},
	}
}
