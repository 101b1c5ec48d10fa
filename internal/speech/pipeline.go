// Package speech glues capture, voice detection and recognition into the
// pipeline shared by the bot's confirmations and the self test.
package speech

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/9mada4/VoiceChatBot/internal/config"
	"github.com/9mada4/VoiceChatBot/internal/execx"
	"github.com/9mada4/VoiceChatBot/internal/logger"
	"github.com/9mada4/VoiceChatBot/internal/speech/capture"
	"github.com/9mada4/VoiceChatBot/internal/speech/engine"
	"github.com/9mada4/VoiceChatBot/internal/speech/vad"
)

// ErrNoSpeech means the clip contained no voice worth transcribing.
var ErrNoSpeech = errors.New("no speech detected")

type clipRecorder interface {
	Record(ctx context.Context, d time.Duration) (*capture.Recording, error)
}

// Pipeline is one configured capture, detect and transcribe chain.
type Pipeline struct {
	recorder clipRecorder
	detector vad.Detector
	engine   engine.Recognizer
	log      *logger.Logger
}

// NewPipeline wires the pipeline from the loaded config: the configured
// engine, and silero detection when the model file is installed.
func NewPipeline(runner execx.Runner, cfg *config.Settings) (*Pipeline, error) {
	recognizer, err := engine.New(runner, cfg)
	if err != nil {
		return nil, err
	}

	log := logger.NewLogger("speech")
	var detector vad.Detector
	if _, err := os.Stat(config.SileroModelPath); err == nil {
		silero, serr := vad.NewSileroDetector(config.SileroModelPath)
		if serr != nil {
			log.Warn("silero unavailable, falling back to RMS detection: ", serr)
			detector = vad.NewRMSDetector(vad.DefaultThreshold)
		} else {
			detector = silero
		}
	} else {
		log.Info(cfg.Speech.SileroModel, " not found, using RMS detection")
		detector = vad.NewRMSDetector(vad.DefaultThreshold)
	}

	return &Pipeline{
		recorder: capture.NewRecorder(runner),
		detector: detector,
		engine:   recognizer,
		log:      log,
	}, nil
}

// Recognize records one clip and transcribes it. Clips without voice
// return ErrNoSpeech without touching the engine.
func (p *Pipeline) Recognize(ctx context.Context, d time.Duration) (engine.Result, error) {
	clip, err := p.recorder.Record(ctx, d)
	if err != nil {
		return engine.Result{}, err
	}

	voiced, err := p.detector.DetectVoice(clip.Buffer)
	if err != nil {
		// Detection trouble must not block recognition.
		p.log.Warn("voice detection failed: ", err)
	} else if !voiced {
		p.log.Info("no voice in clip, RMS ", int(clip.RMS))
		return engine.Result{}, ErrNoSpeech
	}

	return p.engine.Transcribe(ctx, clip.Buffer)
}

// Close releases detector resources. Only the silero detector holds any.
func (p *Pipeline) Close() {
	if closer, ok := p.detector.(io.Closer); ok {
		closer.Close()
	}
}
