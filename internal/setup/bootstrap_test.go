package setup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/9mada4/VoiceChatBot/internal/config"
	"github.com/9mada4/VoiceChatBot/internal/exitcode"
)

// fakeRunner scripts the command layer. Keys are the space-joined command
// line; calls records every invocation in order.
type fakeRunner struct {
	missing map[string]bool
	outputs map[string]string
	errs    map[string]error
	calls   []string
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		missing: map[string]bool{},
		outputs: map[string]string{},
		errs:    map[string]error{},
	}
}

func (f *fakeRunner) LookPath(name string) (string, error) {
	if f.missing[name] {
		return "", &exec.Error{Name: name, Err: exec.ErrNotFound}
	}
	return "/usr/local/bin/" + name, nil
}

func (f *fakeRunner) Output(name string, args ...string) (string, error) {
	key := strings.Join(append([]string{name}, args...), " ")
	f.calls = append(f.calls, key)
	if err, ok := f.errs[key]; ok {
		return "", err
	}
	return f.outputs[key], nil
}

func (f *fakeRunner) Run(name string, args ...string) error {
	key := strings.Join(append([]string{name}, args...), " ")
	f.calls = append(f.calls, key)
	return f.errs[key]
}

func (f *fakeRunner) OutputContext(_ context.Context, name string, args ...string) (string, error) {
	return f.Output(name, args...)
}

func (f *fakeRunner) RunContext(_ context.Context, name string, args ...string) error {
	return f.Run(name, args...)
}

func (f *fakeRunner) called(prefix string) bool {
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}

func preparedRunner() *fakeRunner {
	runner := newFakeRunner()
	runner.outputs["python3 --version"] = "Python 3.12.4\n"
	runner.outputs["brew --version"] = "Homebrew 4.3.9\n"
	runner.outputs["rec --version"] = "rec:      SoX v14.4.2\n"
	runner.outputs["ffmpeg -version"] = "ffmpeg version 6.1.1 Copyright (c) 2000-2023\n"
	return runner
}

func runBootstrap(runner *fakeRunner) (string, error) {
	var out bytes.Buffer
	b := New(runner, &out, config.Defaults())
	err := b.Run()
	return out.String(), err
}

func TestRunOnPreparedMachine(t *testing.T) {
	runner := preparedRunner()
	out, err := runBootstrap(runner)
	require.NoError(t, err)

	assert.Contains(t, out, "✓ python3 found: Python 3.12.4")
	assert.Contains(t, out, "✓ rec found: rec:      SoX v14.4.2")
	assert.Contains(t, out, "✓ ffmpeg found: ffmpeg version 6.1.1")
	assert.Contains(t, out, "Setup completed.")
	assert.True(t, runner.called("pip3 install -r requirements.txt"))
	assert.False(t, runner.called("brew install"), "nothing should be installed")
}

func TestRunEndsWithLaunchCommand(t *testing.T) {
	out, err := runBootstrap(preparedRunner())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Equal(t, "  voicechatbot run", lines[len(lines)-1])
	assert.Equal(t, 1, strings.Count(out, "Before first run:"), "checklist printed exactly once")
}

func TestRunIsIdempotent(t *testing.T) {
	first, err := runBootstrap(preparedRunner())
	require.NoError(t, err)
	second, err := runBootstrap(preparedRunner())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestMissingInterpreterIsFatal(t *testing.T) {
	runner := preparedRunner()
	runner.missing["python3"] = true

	out, err := runBootstrap(runner)
	require.Error(t, err)

	var xerr *exitcode.ExitError
	require.ErrorAs(t, err, &xerr)
	assert.Equal(t, exitcode.MissingPrerequisite, xerr.Code)

	assert.Contains(t, out, "✗ python3 not found")
	assert.NotContains(t, out, "Setup completed")
	assert.False(t, runner.called("pip3"), "no installation after a fatal probe")
	assert.False(t, runner.called("brew"))
}

func TestMissingToolInstalledViaBrew(t *testing.T) {
	runner := preparedRunner()
	runner.missing["rec"] = true

	out, err := runBootstrap(runner)
	require.NoError(t, err)

	assert.True(t, runner.called("brew install sox"))
	assert.Contains(t, out, "rec not found, installing sox")
	assert.Contains(t, out, "Setup completed.")
}

func TestMissingBrewIsFatalWhenInstallNeeded(t *testing.T) {
	runner := preparedRunner()
	runner.missing["brew"] = true
	runner.missing["ffmpeg"] = true

	out, err := runBootstrap(runner)
	require.Error(t, err)

	var xerr *exitcode.ExitError
	require.ErrorAs(t, err, &xerr)
	assert.NotEqual(t, exitcode.Success, xerr.Code)

	assert.Contains(t, out, "Homebrew is needed to install ffmpeg")
	assert.Contains(t, out, brewInstallCommand)
	assert.False(t, runner.called("brew install"), "no install attempted without brew")
	assert.NotContains(t, out, "Setup completed")
}

func TestMissingBrewIsOnlyAWarningWhenToolsPresent(t *testing.T) {
	runner := preparedRunner()
	runner.missing["brew"] = true

	out, err := runBootstrap(runner)
	require.NoError(t, err)

	assert.Contains(t, out, "! brew not found")
	assert.Contains(t, out, "Setup completed.")
}

func TestInstallerFailureStopsBeforeInstructions(t *testing.T) {
	runner := preparedRunner()
	runner.errs["pip3 install -r requirements.txt"] = fmt.Errorf("exit status 2")

	out, err := runBootstrap(runner)
	require.Error(t, err)

	var xerr *exitcode.ExitError
	require.True(t, errors.As(err, &xerr))
	assert.NotContains(t, out, "Setup completed")
	assert.NotContains(t, out, "voicechatbot run")
}

func TestToolInstallFailurePropagates(t *testing.T) {
	runner := preparedRunner()
	runner.missing["rec"] = true
	runner.errs["brew install sox"] = fmt.Errorf("exit status 1")

	out, err := runBootstrap(runner)
	require.Error(t, err)

	var xerr *exitcode.ExitError
	require.ErrorAs(t, err, &xerr)
	assert.False(t, runner.called("pip3"), "phase two never starts")
	assert.NotContains(t, out, "Setup completed")
}
