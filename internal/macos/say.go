package macos

import (
	"context"
	"fmt"
	"time"

	"github.com/9mada4/VoiceChatBot/internal/execx"
	"github.com/9mada4/VoiceChatBot/internal/logger"
)

const sayTimeout = 30 * time.Second

// Speaker reads text aloud with the say command.
type Speaker struct {
	runner  execx.Runner
	voice   string
	timeout time.Duration
	log     *logger.Logger
}

// NewSpeaker returns a Speaker using the given system voice (Kyoko for
// Japanese output).
func NewSpeaker(runner execx.Runner, voice string) *Speaker {
	return &Speaker{
		runner:  runner,
		voice:   voice,
		timeout: sayTimeout,
		log:     logger.NewLogger("speaker"),
	}
}

// Say speaks text and blocks until playback ends. Long texts are cut off
// by the timeout so a runaway response cannot stall the bot; the caller
// falls back to printing on error.
func (s *Speaker) Say(ctx context.Context, text string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.runner.OutputContext(ctx, "say", "-v", s.voice, text); err != nil {
		s.log.Warn("say failed: ", err)
		return fmt.Errorf("say: %w", err)
	}
	return nil
}
