package engine

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/go-audio/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// funcRunner hands every invocation to one callback so tests can fail
// some whisper variants and serve others.
type funcRunner struct {
	onOutput func(name string, args []string) (string, error)
	calls    []string
}

func (f *funcRunner) record(name string, args []string) (string, error) {
	f.calls = append(f.calls, name)
	return f.onOutput(name, args)
}

func (f *funcRunner) LookPath(name string) (string, error) { return "/usr/bin/" + name, nil }

func (f *funcRunner) Output(name string, args ...string) (string, error) {
	return f.record(name, args)
}

func (f *funcRunner) Run(name string, args ...string) error {
	_, err := f.record(name, args)
	return err
}

func (f *funcRunner) OutputContext(_ context.Context, name string, args ...string) (string, error) {
	return f.record(name, args)
}

func (f *funcRunner) RunContext(_ context.Context, name string, args ...string) error {
	_, err := f.record(name, args)
	return err
}

func testClip() *audio.IntBuffer {
	buf := &audio.IntBuffer{
		Format:         &audio.Format{SampleRate: 16000, NumChannels: 1},
		SourceBitDepth: 16,
		Data:           make([]int, 1600),
	}
	for i := range buf.Data {
		buf.Data[i] = (i % 100) - 50
	}
	return buf
}

func wavArg(args []string) string {
	for _, a := range args {
		if strings.HasSuffix(a, ".wav") {
			return a
		}
	}
	return ""
}

func writeTranscript(t *testing.T, wavPath, text string) {
	t.Helper()
	txt := strings.TrimSuffix(wavPath, ".wav") + ".txt"
	require.NoError(t, os.WriteFile(txt, []byte(text), 0o644))
}

func TestWhisperFallsBackToInterpreter(t *testing.T) {
	runner := &funcRunner{}
	runner.onOutput = func(name string, args []string) (string, error) {
		switch name {
		case "whisper":
			return "", fmt.Errorf("executable file not found")
		case "python3":
			writeTranscript(t, wavArg(args), " こんにちは、テストです。\n")
			return "", nil
		}
		t.Fatalf("unexpected command %s", name)
		return "", nil
	}

	w := NewWhisper(runner, "tiny", "ja")
	result, err := w.Transcribe(context.Background(), testClip())
	require.NoError(t, err)
	assert.Equal(t, "こんにちは、テストです。", result.Text)
	assert.Equal(t, []string{"whisper", "python3"}, runner.calls)
}

func TestWhisperPassesModelAndLanguage(t *testing.T) {
	runner := &funcRunner{}
	var seen []string
	runner.onOutput = func(name string, args []string) (string, error) {
		seen = append([]string{name}, args...)
		writeTranscript(t, wavArg(args), "ok")
		return "", nil
	}

	w := NewWhisper(runner, "small", "ja")
	_, err := w.Transcribe(context.Background(), testClip())
	require.NoError(t, err)

	joined := strings.Join(seen, " ")
	assert.Contains(t, joined, "--model small")
	assert.Contains(t, joined, "--language ja")
	assert.Contains(t, joined, "--output_format txt")
}

func TestWhisperCppAnswersOnStdout(t *testing.T) {
	runner := &funcRunner{}
	runner.onOutput = func(name string, args []string) (string, error) {
		if name == "whisper-cpp" {
			return " 音声テスト \n", nil
		}
		return "", fmt.Errorf("not installed")
	}

	w := NewWhisper(runner, "tiny", "ja")
	result, err := w.Transcribe(context.Background(), testClip())
	require.NoError(t, err)
	assert.Equal(t, "音声テスト", result.Text)
	assert.Equal(t, []string{"whisper", "python3", "whisper-cpp"}, runner.calls)
}

func TestWhisperAllVariantsMissing(t *testing.T) {
	runner := &funcRunner{}
	runner.onOutput = func(string, []string) (string, error) {
		return "", fmt.Errorf("executable file not found")
	}

	w := NewWhisper(runner, "tiny", "ja")
	_, err := w.Transcribe(context.Background(), testClip())
	assert.ErrorIs(t, err, ErrEngineUnavailable)
}

func TestWhisperEmptyTranscript(t *testing.T) {
	runner := &funcRunner{}
	runner.onOutput = func(name string, args []string) (string, error) {
		writeTranscript(t, wavArg(args), "  \n")
		return "", nil
	}

	w := NewWhisper(runner, "tiny", "ja")
	_, err := w.Transcribe(context.Background(), testClip())
	assert.ErrorIs(t, err, ErrTranscriptionEmpty)
}
