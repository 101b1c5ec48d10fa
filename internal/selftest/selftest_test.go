package selftest

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-audio/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/9mada4/VoiceChatBot/internal/config"
	"github.com/9mada4/VoiceChatBot/internal/speech/capture"
)

type fakeRunner struct {
	outputs map[string]string
	errs    map[string]error
	calls   []string
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{outputs: map[string]string{}, errs: map[string]error{}}
}

func (f *fakeRunner) key(name string, args []string) string {
	return strings.TrimSpace(name + " " + strings.Join(args, " "))
}

func (f *fakeRunner) LookPath(name string) (string, error) {
	return "/usr/bin/" + name, nil
}

func (f *fakeRunner) Output(name string, args ...string) (string, error) {
	return f.OutputContext(context.Background(), name, args...)
}

func (f *fakeRunner) Run(name string, args ...string) error {
	_, err := f.OutputContext(context.Background(), name, args...)
	return err
}

func (f *fakeRunner) OutputContext(_ context.Context, name string, args ...string) (string, error) {
	f.calls = append(f.calls, f.key(name, args))
	if err, ok := f.errs[name]; ok {
		return "", err
	}
	return f.outputs[f.key(name, args)], nil
}

func (f *fakeRunner) RunContext(ctx context.Context, name string, args ...string) error {
	_, err := f.OutputContext(ctx, name, args...)
	return err
}

func sineRecording(freq, amplitude float64, rate, n int) *capture.Recording {
	data := make([]int, n)
	var sum float64
	for i := range data {
		v := amplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
		data[i] = int(v)
		sum += v * v
	}
	return &capture.Recording{
		Buffer: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: 1, SampleRate: rate},
			Data:           data,
			SourceBitDepth: 16,
		},
		RMS: math.Sqrt(sum / float64(n)),
	}
}

func TestDominantFrequency(t *testing.T) {
	freq := dominantFrequency(sineRecording(440, 8000, 16000, 8192).Buffer.Data, 16000)
	assert.InDelta(t, 440, freq, 5)
}

func TestDominantFrequencySilence(t *testing.T) {
	assert.Zero(t, dominantFrequency(make([]int, 4096), 16000))
}

func TestAudioReportLevel(t *testing.T) {
	var out bytes.Buffer
	a := NewAudio(newFakeRunner(), &out, config.Defaults())

	a.reportLevel(sineRecording(440, 8000, 16000, 8192))
	assert.Contains(t, out.String(), "✓ input level")
	assert.Contains(t, out.String(), "✓ dominant frequency")

	out.Reset()
	a.reportLevel(sineRecording(440, 10, 16000, 8192))
	assert.Contains(t, out.String(), "! low input level")
}

func TestAudioReportVoice(t *testing.T) {
	old := config.SileroModelPath
	config.SileroModelPath = filepath.Join(t.TempDir(), "missing.onnx")
	defer func() { config.SileroModelPath = old }()

	var out bytes.Buffer
	a := NewAudio(newFakeRunner(), &out, config.Defaults())

	a.reportVoice(sineRecording(440, 8000, 16000, 8192))
	assert.Contains(t, out.String(), "✓ voice detected (rms)")

	out.Reset()
	a.reportVoice(sineRecording(440, 10, 16000, 8192))
	assert.Contains(t, out.String(), "✗ no voice detected")
}

func TestAudioReportEncodings(t *testing.T) {
	var out bytes.Buffer
	a := NewAudio(newFakeRunner(), &out, config.Defaults())

	a.reportEncodings(sineRecording(440, 8000, 16000, 16000))
	assert.Contains(t, out.String(), "✓ WAV encode")
	assert.Contains(t, out.String(), "✓ FLAC encode")
}

func TestScrollReportAsset(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer os.Chdir(wd)

	var out bytes.Buffer
	s := NewScroll(newFakeRunner(), &out, config.Defaults())

	s.reportAsset()
	assert.Contains(t, out.String(), "✗ startVoiceBtn.png not found")

	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	f, err := os.Create(assetName)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	out.Reset()
	s.reportAsset()
	assert.Contains(t, out.String(), "✓ startVoiceBtn.png present (4x2)")
}

func TestScrollReportFrontmost(t *testing.T) {
	runner := newFakeRunner()
	script := "tell application \"System Events\" to get bundle identifier of first application process whose frontmost is true"
	runner.outputs[runner.key("osascript", []string{"-e", script})] = "com.openai.chat\n"

	var out bytes.Buffer
	s := NewScroll(runner, &out, config.Defaults())

	s.reportFrontmost(context.Background())
	assert.Contains(t, out.String(), "✓ frontmost app is com.openai.chat")
}

func TestScrollKeyFailureSuggestsPermission(t *testing.T) {
	runner := newFakeRunner()
	runner.errs["osascript"] = errors.New("osascript is not allowed to send keystrokes (1002)")

	var out bytes.Buffer
	s := NewScroll(runner, &out, config.Defaults())

	require.NoError(t, s.scrollFrontmost(context.Background()))
	assert.Contains(t, out.String(), "✗ key injection failed")
	assert.Contains(t, out.String(), "Accessibility permission")
	assert.Len(t, runner.calls, 1)
}
