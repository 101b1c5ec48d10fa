// Package selftest holds the verification passes behind the test and
// scroll subcommands. Each pass prints a staged report and keeps going on
// soft failures so one broken stage does not hide the rest.
package selftest

import (
	"context"
	"fmt"
	"io"
	"math/cmplx"
	"os"
	"strings"
	"time"

	"github.com/mjibson/go-dsp/fft"

	"github.com/9mada4/VoiceChatBot/internal/bot"
	"github.com/9mada4/VoiceChatBot/internal/config"
	"github.com/9mada4/VoiceChatBot/internal/execx"
	"github.com/9mada4/VoiceChatBot/internal/logger"
	"github.com/9mada4/VoiceChatBot/internal/speech/capture"
	"github.com/9mada4/VoiceChatBot/internal/speech/convert"
	"github.com/9mada4/VoiceChatBot/internal/speech/engine"
	"github.com/9mada4/VoiceChatBot/internal/speech/vad"
)

const (
	recordSeconds = 5
	// Clips smaller than this cannot hold recordSeconds of real audio.
	minClipBytes = 1000
)

// Audio checks the whole microphone to transcription pipeline.
type Audio struct {
	runner execx.Runner
	out    io.Writer
	cfg    *config.Settings
	log    *logger.Logger
}

func NewAudio(runner execx.Runner, out io.Writer, cfg *config.Settings) *Audio {
	return &Audio{runner: runner, out: out, cfg: cfg, log: logger.NewLogger("selftest")}
}

func (a *Audio) Run(ctx context.Context) error {
	fmt.Fprintln(a.out, "Audio pipeline test")
	fmt.Fprintln(a.out, strings.Repeat("=", 50))

	a.reportDevices()

	fmt.Fprintf(a.out, "\nRecording %d seconds. Say \"テストです\" into the microphone.\n", recordSeconds)
	if err := a.countdown(ctx, 3); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Recording...")
	rec, err := capture.NewRecorder(a.runner).Record(ctx, recordSeconds*time.Second)
	if err != nil {
		fmt.Fprintf(a.out, "✗ recording failed: %v\n", err)
		return err
	}
	fmt.Fprintf(a.out, "✓ recorded %d samples at %d Hz\n", len(rec.Buffer.Data), rec.Buffer.Format.SampleRate)

	a.reportLevel(rec)
	a.reportVoice(rec)
	a.reportEncodings(rec)
	a.reportTranscription(ctx, rec)

	fmt.Fprintln(a.out, "\nTest finished.")
	return nil
}

func (a *Audio) reportDevices() {
	devices, err := capture.ListDevices()
	if err != nil {
		fmt.Fprintf(a.out, "! portaudio unavailable (%v), recording falls back to sox\n", err)
		return
	}
	if len(devices) == 0 {
		fmt.Fprintln(a.out, "✗ no audio input devices found")
		return
	}
	fmt.Fprintln(a.out, "Input devices:")
	for _, d := range devices {
		fmt.Fprintf(a.out, "  %s\n", d)
	}
}

func (a *Audio) countdown(ctx context.Context, from int) error {
	for i := from; i > 0; i-- {
		fmt.Fprintf(a.out, "%d...\n", i)
		select {
		case <-time.After(time.Second):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (a *Audio) reportLevel(rec *capture.Recording) {
	if rec.RMS < vad.DefaultThreshold {
		fmt.Fprintf(a.out, "! low input level (RMS %.0f); the microphone may be muted\n", rec.RMS)
	} else {
		fmt.Fprintf(a.out, "✓ input level RMS %.0f\n", rec.RMS)
	}

	freq := dominantFrequency(rec.Buffer.Data, rec.Buffer.Format.SampleRate)
	if freq < 20 {
		fmt.Fprintf(a.out, "! dominant frequency %.0f Hz; the signal looks like silence or a stuck offset\n", freq)
	} else {
		fmt.Fprintf(a.out, "✓ dominant frequency %.0f Hz\n", freq)
	}
}

func (a *Audio) reportVoice(rec *capture.Recording) {
	var detector vad.Detector = vad.NewRMSDetector(vad.DefaultThreshold)
	kind := "rms"
	if _, err := os.Stat(config.SileroModelPath); err == nil {
		if silero, err := vad.NewSileroDetector(config.SileroModelPath); err == nil {
			defer silero.Close()
			detector = silero
			kind = "silero"
		}
	}

	voiced, err := detector.DetectVoice(rec.Buffer)
	switch {
	case err != nil:
		fmt.Fprintf(a.out, "! voice detection failed: %v\n", err)
	case voiced:
		fmt.Fprintf(a.out, "✓ voice detected (%s)\n", kind)
	default:
		fmt.Fprintf(a.out, "✗ no voice detected (%s); speak during the recording\n", kind)
	}
}

func (a *Audio) reportEncodings(rec *capture.Recording) {
	wavData, err := convert.EncodeWAV(rec.Buffer)
	if err != nil {
		fmt.Fprintf(a.out, "✗ WAV encode failed: %v\n", err)
		return
	}
	if len(wavData) < minClipBytes {
		fmt.Fprintf(a.out, "! WAV clip is only %d bytes; the microphone may not be recording\n", len(wavData))
	} else {
		fmt.Fprintf(a.out, "✓ WAV encode: %d bytes\n", len(wavData))
	}

	flacData, err := convert.EncodeFLAC(rec.Buffer)
	if err != nil {
		fmt.Fprintf(a.out, "✗ FLAC encode failed: %v\n", err)
		return
	}
	fmt.Fprintf(a.out, "✓ FLAC encode: %d bytes\n", len(flacData))
}

func (a *Audio) reportTranscription(ctx context.Context, rec *capture.Recording) {
	recognizer, err := engine.New(a.runner, a.cfg)
	if err != nil {
		fmt.Fprintf(a.out, "✗ recognizer unavailable: %v\n", err)
		return
	}

	fmt.Fprintln(a.out, "Transcribing...")
	result, err := recognizer.Transcribe(ctx, rec.Buffer)
	if err != nil {
		fmt.Fprintf(a.out, "✗ transcription failed: %v\n", err)
		return
	}

	if result.Confidence > 0 {
		fmt.Fprintf(a.out, "✓ transcription: %q (confidence %.2f)\n", result.Text, result.Confidence)
	} else {
		fmt.Fprintf(a.out, "✓ transcription: %q\n", result.Text)
	}

	if bot.Classify(result.Text, a.cfg.Speech.YesWords, a.cfg.Speech.NoWords) == bot.VerdictYes {
		fmt.Fprintln(a.out, "✓ the clip would count as a yes answer")
	}
}

// dominantFrequency returns the strongest frequency in the clip. Near zero
// means silence or a DC offset rather than speech.
func dominantFrequency(samples []int, rate int) float64 {
	if len(samples) < 2 || rate <= 0 {
		return 0
	}

	signal := make([]float64, len(samples))
	for i, s := range samples {
		signal[i] = float64(s)
	}

	spectrum := fft.FFTReal(signal)

	best, bestPower := 0, 0.0
	for i := 1; i < len(spectrum)/2; i++ {
		if power := cmplx.Abs(spectrum[i]); power > bestPower {
			best, bestPower = i, power
		}
	}
	return float64(best) * float64(rate) / float64(len(signal))
}
