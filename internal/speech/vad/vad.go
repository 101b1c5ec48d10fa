// Package vad decides whether a captured clip actually contains speech.
// The silero-vad model does the real work; when its model file is not
// installed, a plain RMS threshold stands in so recognition still runs.
package vad

import (
	"fmt"

	"github.com/go-audio/audio"
	silerovad "github.com/streamer45/silero-vad-go/speech"

	"github.com/9mada4/VoiceChatBot/internal/logger"
	"github.com/9mada4/VoiceChatBot/internal/speech/sound"
)

// DefaultThreshold is the RMS level treated as voice by the fallback
// detector, on the int16 sample scale.
const DefaultThreshold = 450

// Detector reports whether a 16 kHz mono buffer contains voice.
type Detector interface {
	DetectVoice(buf *audio.IntBuffer) (bool, error)
}

// SileroDetector wraps the pre-trained silero-vad ONNX model. See:
// https://github.com/snakers4/silero-vad
type SileroDetector struct {
	detector *silerovad.Detector
	log      *logger.Logger
}

func NewSileroDetector(modelPath string) (*SileroDetector, error) {
	detector, err := silerovad.NewDetector(silerovad.DetectorConfig{
		ModelPath:            modelPath,
		SampleRate:           16000,
		WindowSize:           1536,
		Threshold:            0.5,
		MinSilenceDurationMs: 100,
		SpeechPadMs:          30,
	})
	if err != nil {
		return nil, fmt.Errorf("creating silero detector: %w", err)
	}
	return &SileroDetector{detector: detector, log: logger.NewLogger("vad")}, nil
}

func (s *SileroDetector) DetectVoice(buf *audio.IntBuffer) (bool, error) {
	samples := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = float32(v) / 32768
	}

	segments, err := s.detector.Detect(samples)
	if err != nil {
		return false, fmt.Errorf("detect voice: %w", err)
	}
	s.log.Info("silero found ", len(segments), " speech segments")
	return len(segments) > 0, nil
}

func (s *SileroDetector) Close() error {
	return s.detector.Destroy()
}

// RMSDetector treats anything louder than Threshold as voice. Crude, but
// it keeps the pipeline usable without the model file.
type RMSDetector struct {
	Threshold float64
}

func NewRMSDetector(threshold float64) *RMSDetector {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &RMSDetector{Threshold: threshold}
}

func (d *RMSDetector) DetectVoice(buf *audio.IntBuffer) (bool, error) {
	if buf == nil || len(buf.Data) == 0 {
		return false, nil
	}
	rms := sound.CalculateRMS16(sound.ConvertIntToInt16(buf.Data))
	return rms > d.Threshold, nil
}
