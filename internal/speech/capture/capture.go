// Package capture records microphone audio and normalizes it to the
// 16 kHz mono PCM the rest of the pipeline works on. PortAudio is the
// primary capture path; when it cannot deliver (no device, no library),
// recording falls back to the sox rec tool installed by setup.
package capture

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/gordonklaus/portaudio"

	"github.com/9mada4/VoiceChatBot/internal/execx"
	"github.com/9mada4/VoiceChatBot/internal/logger"
	"github.com/9mada4/VoiceChatBot/internal/speech/sound"
)

// TargetSampleRate is what silero and both recognition engines expect.
const TargetSampleRate = 16000

const framesPerBuffer = 512 * 9

// ErrNoAudioDevice means no usable input device was found.
var ErrNoAudioDevice = errors.New("no usable audio input device")

// Recording is one captured clip, already mono and resampled.
type Recording struct {
	Buffer *audio.IntBuffer
	// RMS is the level of the raw capture, on the int16 scale.
	RMS float64
}

// Recorder captures clips of a fixed duration.
type Recorder struct {
	runner execx.Runner
	log    *logger.Logger
}

func NewRecorder(runner execx.Runner) *Recorder {
	return &Recorder{runner: runner, log: logger.NewLogger("capture")}
}

// Record captures d worth of audio from the default input device.
func (r *Recorder) Record(ctx context.Context, d time.Duration) (*Recording, error) {
	rec, err := r.recordPortaudio(ctx, d)
	if err == nil {
		return rec, nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}
	r.log.Warn("portaudio capture failed, falling back to rec: ", err)
	return r.recordSox(ctx, d)
}

func (r *Recorder) recordPortaudio(ctx context.Context, d time.Duration) (*Recording, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio: %w", err)
	}
	defer portaudio.Terminate()

	device, err := portaudio.DefaultInputDevice()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoAudioDevice, err)
	}

	in := make([]int16, framesPerBuffer)
	stream, err := portaudio.OpenDefaultStream(1, 0, device.DefaultSampleRate, len(in), &in)
	if err != nil {
		return nil, fmt.Errorf("opening stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, fmt.Errorf("starting stream: %w", err)
	}
	defer stream.Stop()

	rate := int(device.DefaultSampleRate)
	samples := make([]int16, 0, rate*int(d.Seconds()+1))
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		if err := stream.Read(); err != nil {
			r.log.Warn("reading from stream: ", err)
			continue
		}
		samples = append(samples, in...)
	}
	return r.finish(samples, rate, 1)
}

// recordSox shells out to rec, which handles device selection and WAV
// writing on its own.
func (r *Recorder) recordSox(ctx context.Context, d time.Duration) (*Recording, error) {
	tmp, err := os.CreateTemp("", "voicechatbot-*.wav")
	if err != nil {
		return nil, fmt.Errorf("temp wav: %w", err)
	}
	tmp.Close()
	defer os.Remove(tmp.Name())

	seconds := strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
	if out, err := r.runner.OutputContext(ctx, "rec", tmp.Name(), "trim", "0", seconds); err != nil {
		return nil, fmt.Errorf("rec capture: %v: %s", err, strings.TrimSpace(out))
	}
	return r.decodeWAV(tmp.Name())
}

func (r *Recorder) decodeWAV(path string) (*Recording, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open wav: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode wav: %w", err)
	}
	return r.finish(sound.ConvertIntToInt16(buf.Data), buf.Format.SampleRate, buf.Format.NumChannels)
}

// finish normalizes raw capture to the pipeline format and measures its
// level before resampling.
func (r *Recorder) finish(samples []int16, rate, channels int) (*Recording, error) {
	mono := sound.DownmixInt16(samples, channels)
	if len(mono) == 0 {
		return nil, fmt.Errorf("%w: captured no samples", ErrNoAudioDevice)
	}
	rms := sound.CalculateRMS16(mono)
	r.log.Info("captured ", len(mono), " samples at ", rate, " Hz, RMS ", int(rms))

	resampled := sound.ResampleInt16(mono, rate, TargetSampleRate)
	return &Recording{
		Buffer: &audio.IntBuffer{
			Format:         &audio.Format{SampleRate: TargetSampleRate, NumChannels: 1},
			SourceBitDepth: 16,
			Data:           sound.ConvertInt16ToInt(resampled),
		},
		RMS: rms,
	}, nil
}

// ListDevices describes the available input devices, one line each.
func ListDevices() ([]string, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio: %w", err)
	}
	defer portaudio.Terminate()

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("portaudio devices: %w", err)
	}
	lines := make([]string, 0, len(devices))
	for i, device := range devices {
		if device.MaxInputChannels == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("ID: %d, Name: %s, MaxInputChannels: %d, Sample rate: %.0f",
			i, device.Name, device.MaxInputChannels, device.DefaultSampleRate))
	}
	return lines, nil
}
