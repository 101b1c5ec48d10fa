package capture

import (
	"context"
	"math"
	"os"
	"testing"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner plays the part of rec: it writes a WAV file to the path it
// was asked to record into.
type fakeRunner struct {
	rate     int
	channels int
	samples  []int
	err      error
	calls    [][]string
}

func (f *fakeRunner) LookPath(name string) (string, error) { return "/usr/bin/" + name, nil }

func (f *fakeRunner) Output(name string, args ...string) (string, error) {
	return f.OutputContext(context.Background(), name, args...)
}

func (f *fakeRunner) Run(name string, args ...string) error {
	_, err := f.OutputContext(context.Background(), name, args...)
	return err
}

func (f *fakeRunner) OutputContext(_ context.Context, name string, args ...string) (string, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.err != nil {
		return "", f.err
	}
	if name != "rec" {
		return "", nil
	}
	out, err := os.Create(args[0])
	if err != nil {
		return "", err
	}
	defer out.Close()

	enc := wav.NewEncoder(out, f.rate, 16, f.channels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{SampleRate: f.rate, NumChannels: f.channels},
		SourceBitDepth: 16,
		Data:           f.samples,
	}
	if err := enc.Write(buf); err != nil {
		return "", err
	}
	return "", enc.Close()
}

func (f *fakeRunner) RunContext(ctx context.Context, name string, args ...string) error {
	_, err := f.OutputContext(ctx, name, args...)
	return err
}

func sineInts(freq float64, rate, n int, amplitude float64, channels int) []int {
	data := make([]int, n*channels)
	for i := 0; i < n; i++ {
		v := int(amplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
		for c := 0; c < channels; c++ {
			data[i*channels+c] = v
		}
	}
	return data
}

func TestRecordSoxNormalizesToPipelineFormat(t *testing.T) {
	runner := &fakeRunner{rate: 44100, channels: 2, samples: sineInts(440, 44100, 44100, 8000, 2)}
	r := NewRecorder(runner)

	rec, err := r.recordSox(context.Background(), time.Second)
	require.NoError(t, err)

	assert.Equal(t, TargetSampleRate, rec.Buffer.Format.SampleRate)
	assert.Equal(t, 1, rec.Buffer.Format.NumChannels)
	assert.InDelta(t, TargetSampleRate, len(rec.Buffer.Data), TargetSampleRate/100)
	assert.Greater(t, rec.RMS, 1000.0)

	require.Len(t, runner.calls, 1)
	call := runner.calls[0]
	assert.Equal(t, "rec", call[0])
	assert.Equal(t, []string{"trim", "0", "1"}, call[2:])
}

func TestRecordSoxFailure(t *testing.T) {
	runner := &fakeRunner{err: os.ErrPermission}
	r := NewRecorder(runner)

	_, err := r.recordSox(context.Background(), time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rec capture")
}

func TestFinishRejectsEmptyCapture(t *testing.T) {
	r := NewRecorder(&fakeRunner{})
	_, err := r.finish(nil, 44100, 1)
	assert.ErrorIs(t, err, ErrNoAudioDevice)
}
