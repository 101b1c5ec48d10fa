package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/9mada4/VoiceChatBot/internal/speech"
	"github.com/9mada4/VoiceChatBot/internal/speech/engine"
)

type Verdict int

const (
	VerdictUnknown Verdict = iota
	VerdictYes
	VerdictNo
)

// Classify matches a transcription against the yes and no word lists.
// Substring matching keeps fillers like 「はい、どうぞ」 working; yes wins
// when both appear.
func Classify(text string, yesWords, noWords []string) Verdict {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return VerdictUnknown
	}
	for _, w := range yesWords {
		if w != "" && strings.Contains(normalized, strings.ToLower(w)) {
			return VerdictYes
		}
	}
	for _, w := range noWords {
		if w != "" && strings.Contains(normalized, strings.ToLower(w)) {
			return VerdictNo
		}
	}
	return VerdictUnknown
}

// askYesNo listens for a spoken yes or no, retrying a few times before
// handing the question to the console.
func (b *Bot) askYesNo(ctx context.Context) bool {
	duration := time.Duration(b.cfg.Speech.RecordSeconds) * time.Second
	retries := b.cfg.Speech.MaxRetries

	for attempt := 1; attempt <= retries; attempt++ {
		if ctx.Err() != nil {
			return false
		}
		fmt.Fprintf(b.console, "Listening for はい / いいえ (%d/%d)...\n", attempt, retries)

		result, err := b.rec.Recognize(ctx, duration)
		if err != nil {
			if errors.Is(err, speech.ErrNoSpeech) || errors.Is(err, engine.ErrTranscriptionEmpty) {
				fmt.Fprintln(b.console, "Heard nothing.")
			} else {
				b.log.Warn("recognition failed: ", err)
				fmt.Fprintln(b.console, "Recognition failed.")
			}
			continue
		}

		fmt.Fprintf(b.console, "Heard: %s\n", result.Text)
		switch Classify(result.Text, b.cfg.Speech.YesWords, b.cfg.Speech.NoWords) {
		case VerdictYes:
			return true
		case VerdictNo:
			return false
		}
		fmt.Fprintln(b.console, "Could not tell yes from no.")
	}

	answer, err := b.console.Answer(ctx)
	if err != nil {
		b.log.Warn("manual answer unavailable: ", err)
		return false
	}
	return answer
}
