package setup

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandProbeAvailable(t *testing.T) {
	runner := newFakeRunner()
	runner.missing["rec"] = true

	assert.False(t, NewCommandProbe(runner, "rec").Available())
	assert.True(t, NewCommandProbe(runner, "ffmpeg").Available())
}

func TestCommandProbeVersionTakesFirstLine(t *testing.T) {
	runner := newFakeRunner()
	runner.outputs["ffmpeg -version"] = "ffmpeg version 6.1.1\nbuilt with Apple clang\n"

	version, err := NewCommandProbe(runner, "ffmpeg", "-version").Version()
	require.NoError(t, err)
	assert.Equal(t, "ffmpeg version 6.1.1", version)
}

func TestCommandProbeVersionFailure(t *testing.T) {
	runner := newFakeRunner()
	runner.errs["rec --version"] = fmt.Errorf("exit status 1")

	_, err := NewCommandProbe(runner, "rec", "--version").Version()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rec")
}

func TestVersionArgs(t *testing.T) {
	assert.Equal(t, []string{"-version"}, versionArgs("ffmpeg"))
	assert.Equal(t, []string{"--version"}, versionArgs("python3"))
}
