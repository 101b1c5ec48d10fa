// Package bot runs the voice chat loop: dictate a question into the
// ChatGPT desktop app, let the user copy the answer, then read it aloud.
// The bot never scrapes the app; dictation, the clipboard and the process
// table are the whole interface.
package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/9mada4/VoiceChatBot/internal/config"
	"github.com/9mada4/VoiceChatBot/internal/execx"
	"github.com/9mada4/VoiceChatBot/internal/logger"
	"github.com/9mada4/VoiceChatBot/internal/macos"
	"github.com/9mada4/VoiceChatBot/internal/speech"
	"github.com/9mada4/VoiceChatBot/internal/speech/engine"
)

// Spoken prompts. The voice is Japanese (Kyoko by default), so the
// prompts are too; console text stays English.
const (
	promptSetup    = "ChatGPTアプリのウィンドウを前面にして、チャット入力欄をクリックしてください。準備ができたら「はい」と言ってください。"
	promptSpeak    = "どうぞ、質問を話してください。"
	promptCopy     = "回答が完了したら、回答全体をコピーして「はい」と言ってください。"
	promptContinue = "次の質問をしますか?"
	promptRetry    = "もう一度試しますか?"
	promptBye      = "お疲れさまでした。終了します。"
)

const (
	dictationWaitTimeout = 60 * time.Second
	// Time given to ChatGPT before asking the user to copy the answer.
	defaultResponseGrace = 3 * time.Second
)

type dictationController interface {
	Active(ctx context.Context) bool
	Start(ctx context.Context) (bool, error)
	Stop(ctx context.Context) error
	WaitCompletion(ctx context.Context, timeout time.Duration) error
}

type keyPresser interface {
	PressKeyCode(ctx context.Context, code int) error
}

type speaker interface {
	Say(ctx context.Context, text string) error
}

type clipboardReader interface {
	Read(ctx context.Context) (string, error)
}

type recognizer interface {
	Recognize(ctx context.Context, d time.Duration) (engine.Result, error)
}

// Bot drives one chat session.
type Bot struct {
	cfg     *config.Settings
	console Console

	dict      dictationController
	keys      keyPresser
	speak     speaker
	clip      clipboardReader
	rec       recognizer
	frontmost func(ctx context.Context) (string, error)

	responseGrace time.Duration
	lastResponse  string
	log           *logger.Logger
}

// New wires the bot against the real system: dictation keystrokes, the
// pasteboard, say, and the configured speech pipeline.
func New(cfg *config.Settings, console Console) (*Bot, error) {
	runner := execx.System()
	pipeline, err := speech.NewPipeline(runner, cfg)
	if err != nil {
		return nil, err
	}

	return &Bot{
		cfg:     cfg,
		console: console,
		dict:    macos.NewDictation(runner, cfg.Chat.DictationKeyCode),
		keys:    macos.NewKeyboard(runner),
		speak:   macos.NewSpeaker(runner, cfg.Chat.Voice),
		clip:    macos.NewClipboard(runner),
		rec:     pipeline,
		frontmost: func(ctx context.Context) (string, error) {
			return macos.FrontmostBundleID(ctx, runner)
		},
		responseGrace: defaultResponseGrace,
		log:           logger.NewLogger("bot"),
	}, nil
}

// Run executes the session until the user declines to continue or ctx is
// canceled. Cancellation is a clean exit.
func (b *Bot) Run(ctx context.Context) error {
	defer b.cleanup()

	fmt.Fprintln(b.console, "VoiceChatBot session starting.")
	b.announce(ctx, promptSetup)
	if !b.askYesNo(ctx) {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprintln(b.console, "Setup not confirmed, exiting.")
		return nil
	}

	for ctx.Err() == nil {
		ok, err := b.chatCycle(ctx)
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			break
		}
		if ok {
			b.announce(ctx, promptContinue)
			if !b.askYesNo(ctx) {
				break
			}
			continue
		}
		b.announce(ctx, promptRetry)
		if !b.askYesNo(ctx) {
			break
		}
	}

	b.announce(ctx, promptBye)
	return nil
}

// chatCycle runs one question and answer round. A false result without
// error means the round came up empty and the user decides about a retry.
func (b *Bot) chatCycle(ctx context.Context) (bool, error) {
	if id, err := b.frontmost(ctx); err == nil && id != b.cfg.Chat.AppBundleID {
		fmt.Fprintf(b.console, "ChatGPT does not look frontmost (%s is). Click its input field.\n", id)
	}

	started, err := b.dict.Start(ctx)
	if err != nil {
		return false, fmt.Errorf("starting dictation (is Accessibility granted?): %w", err)
	}
	if !started {
		fmt.Fprintln(b.console, "Could not confirm dictation started; run voicechatbot doctor if this keeps happening.")
	}
	b.announce(ctx, promptSpeak)

	switch err := b.dict.WaitCompletion(ctx, dictationWaitTimeout); {
	case err == nil:
		fmt.Fprintln(b.console, "Dictation finished, sending the question.")
		if err := b.keys.PressKeyCode(ctx, macos.KeyCodeReturn); err != nil {
			return false, fmt.Errorf("sending the question: %w", err)
		}
	case errors.Is(err, macos.ErrDictationNotStarted):
		fmt.Fprintln(b.console, "No dictation input was detected.")
		return false, nil
	case errors.Is(err, macos.ErrDictationTimeout):
		fmt.Fprintln(b.console, "Dictation ran too long, stopping it.")
		if err := b.dict.Stop(ctx); err != nil {
			b.log.Warn("stopping overlong dictation: ", err)
		}
		return false, nil
	default:
		return false, err
	}

	b.pause(ctx, b.responseGrace)
	b.announce(ctx, promptCopy)
	if !b.askYesNo(ctx) {
		fmt.Fprintln(b.console, "Skipping this round.")
		return false, nil
	}

	response, err := b.clip.Read(ctx)
	if err != nil {
		if errors.Is(err, macos.ErrClipboardEmpty) {
			fmt.Fprintln(b.console, "The clipboard is empty. Copy the answer and try again.")
			return false, nil
		}
		return false, err
	}
	if response == b.lastResponse {
		fmt.Fprintln(b.console, "The clipboard still holds the previous answer. Copy the new one.")
		return false, nil
	}
	b.lastResponse = response

	fmt.Fprintf(b.console, "\nChatGPT: %s\n\n", response)
	if err := b.speak.Say(ctx, response); err != nil {
		fmt.Fprintln(b.console, "(voice output unavailable, answer shown above)")
	}
	return true, nil
}

// announce prints a prompt and speaks it.
func (b *Bot) announce(ctx context.Context, text string) {
	fmt.Fprintln(b.console, text)
	if err := b.speak.Say(ctx, text); err != nil {
		b.log.Warn("say failed, prompt shown only: ", err)
	}
}

func (b *Bot) pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

// cleanup closes the dictation session left behind by an interrupt so the
// microphone does not stay live.
func (b *Bot) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if b.dict.Active(ctx) {
		if err := b.dict.Stop(ctx); err != nil {
			b.log.Warn("stopping dictation: ", err)
		}
	}
	if closer, ok := b.rec.(interface{ Close() }); ok {
		closer.Close()
	}
}
