package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"

	"github.com/9mada4/VoiceChatBot/internal/execx"
	"github.com/9mada4/VoiceChatBot/internal/logger"
	"github.com/9mada4/VoiceChatBot/internal/speech/convert"
)

// Whisper shells out to whatever whisper CLI is installed. The variants
// are tried in order: the standalone binary, the module run through the
// interpreter, then whisper.cpp.
type Whisper struct {
	runner   execx.Runner
	model    string
	language string
	log      *logger.Logger
}

func NewWhisper(runner execx.Runner, model, language string) *Whisper {
	return &Whisper{
		runner:   runner,
		model:    model,
		language: language,
		log:      logger.NewLogger("whisper"),
	}
}

func (w *Whisper) Transcribe(ctx context.Context, clip *audio.IntBuffer) (Result, error) {
	wavData, err := convert.EncodeWAV(clip)
	if err != nil {
		return Result{}, err
	}

	dir, err := os.MkdirTemp("", "voicechatbot-whisper-")
	if err != nil {
		return Result{}, fmt.Errorf("temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	wavPath := filepath.Join(dir, "clip.wav")
	if err := os.WriteFile(wavPath, wavData, 0o644); err != nil {
		return Result{}, fmt.Errorf("write clip: %w", err)
	}

	fileArgs := []string{
		wavPath,
		"--model", w.model,
		"--language", w.language,
		"--output_format", "txt",
		"--output_dir", dir,
		"--verbose", "False",
	}
	variants := [][]string{
		append([]string{"whisper"}, fileArgs...),
		append([]string{"python3", "-m", "whisper"}, fileArgs...),
		{"whisper-cpp", "-f", wavPath},
	}

	var lastErr error
	for _, argv := range variants {
		out, err := w.runner.OutputContext(ctx, argv[0], argv[1:]...)
		if err != nil {
			w.log.Info(argv[0], " failed: ", err)
			lastErr = fmt.Errorf("%s: %w", argv[0], err)
			continue
		}
		text := readTranscript(wavPath, out)
		if text == "" {
			return Result{}, ErrTranscriptionEmpty
		}
		w.log.Info("transcribed via ", argv[0])
		// The CLI reports no confidence.
		return Result{Text: text}, nil
	}
	return Result{}, fmt.Errorf("%w: %v", ErrEngineUnavailable, lastErr)
}

// readTranscript prefers the txt file the whisper CLI writes next to the
// clip; whisper.cpp answers on stdout instead.
func readTranscript(wavPath, stdout string) string {
	txtPath := strings.TrimSuffix(wavPath, ".wav") + ".txt"
	if data, err := os.ReadFile(txtPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return strings.TrimSpace(stdout)
}
