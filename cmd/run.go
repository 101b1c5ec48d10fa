package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/9mada4/VoiceChatBot/internal/bot"
	"github.com/9mada4/VoiceChatBot/internal/config"
	"github.com/9mada4/VoiceChatBot/internal/execx"
	"github.com/9mada4/VoiceChatBot/internal/logger"
	"github.com/9mada4/VoiceChatBot/internal/macos"
	"github.com/9mada4/VoiceChatBot/internal/ui"
)

func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the voice chat session",
		Long: `Start the dictation driven chat loop against the ChatGPT desktop app.

By default the session runs inside a terminal UI with a conversation view
and a command box (/help lists the commands). --no-ui keeps the loop on
plain stdio, answering confirmations with y/n on the keyboard.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if noUI, _ := cmd.Flags().GetBool("no-ui"); noUI {
				logger.InitLogger(config.Dev, config.LogPath, nil)

				b, err := bot.New(config.Current, bot.NewStdConsole(cmd.OutOrStdout(), cmd.InOrStdin()))
				if err != nil {
					return err
				}
				return b.Run(ctx)
			}

			ui.Init()
			debugConsole, err := ui.GetDebugConsole()
			if err != nil {
				return err
			}
			logger.InitLogger(config.Dev, config.LogPath, debugConsole)

			b, err := bot.New(config.Current, ui.Console())
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			speak := macos.NewSpeaker(execx.System(), config.Current.Chat.Voice)
			ui.SetSpeaker(func(text string) {
				speak.Say(ctx, text)
			})
			ui.SetQuit(cancel)

			done := make(chan error, 1)
			go func() {
				done <- b.Run(ctx)
				ui.Stop()
			}()

			ui.Run()
			cancel()
			return <-done
		},
	}

	cmd.Flags().Bool("no-ui", false, "Run on plain stdio without the terminal UI")

	return cmd
}
