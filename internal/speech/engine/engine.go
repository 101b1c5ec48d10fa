// Package engine turns recorded clips into text. Two engines exist: the
// whisper CLI family installed by setup, and the speech endpoint the
// Chromium browser uses for the Web Speech API.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-audio/audio"

	"github.com/9mada4/VoiceChatBot/internal/config"
	"github.com/9mada4/VoiceChatBot/internal/execx"
)

var (
	// ErrEngineUnavailable means the selected engine cannot run at all.
	ErrEngineUnavailable = errors.New("no recognition engine available")
	// ErrTranscriptionEmpty means the engine ran but heard nothing.
	ErrTranscriptionEmpty = errors.New("transcription produced no text")
)

// Result is one transcription. Confidence is zero when the engine does
// not report one.
type Result struct {
	Text       string
	Confidence float64
}

// Recognizer converts a 16 kHz mono clip into text.
type Recognizer interface {
	Transcribe(ctx context.Context, clip *audio.IntBuffer) (Result, error)
}

// New picks the engine named in the config.
func New(runner execx.Runner, cfg *config.Settings) (Recognizer, error) {
	switch cfg.Engine {
	case "", "whisper":
		return NewWhisper(runner, cfg.Speech.WhisperModel, cfg.Speech.Language), nil
	case "google":
		if config.GoogleDisabled {
			return nil, fmt.Errorf("%w: the google engine needs API_KEY in .env", ErrEngineUnavailable)
		}
		return NewGoogle(config.APIKey, cfg.Speech.Locale), nil
	default:
		return nil, fmt.Errorf("%w: unknown engine %q", ErrEngineUnavailable, cfg.Engine)
	}
}
