package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)

	assert.Equal(t, "voicechatbot", cmd.Use)
	assert.True(t, cmd.SilenceErrors)
	assert.True(t, cmd.SilenceUsage)

	for _, flag := range []string{"config", "dev", "log-path"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "missing persistent flag %s", flag)
	}

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	for _, want := range []string{"setup", "doctor", "run", "test", "scroll"} {
		assert.Contains(t, names, want)
	}
}

func TestSubcommandsAreRunnable(t *testing.T) {
	for _, cmd := range []struct {
		name string
		use  string
	}{
		{"setup", NewSetupCommand().Use},
		{"doctor", NewDoctorCommand().Use},
		{"run", NewRunCommand().Use},
		{"test", NewTestCommand().Use},
		{"scroll", NewScrollCommand().Use},
	} {
		assert.Equal(t, cmd.name, cmd.use)
	}

	assert.NotNil(t, NewSetupCommand().RunE)
	assert.NotNil(t, NewDoctorCommand().RunE)
	assert.NotNil(t, NewRunCommand().RunE)
	assert.NotNil(t, NewTestCommand().RunE)
	assert.NotNil(t, NewScrollCommand().RunE)
}

func TestSetupCommandFlags(t *testing.T) {
	cmd := NewSetupCommand()
	assert.NotNil(t, cmd.Flags().Lookup("manifest"))
}

func TestRunCommandFlags(t *testing.T) {
	cmd := NewRunCommand()
	assert.NotNil(t, cmd.Flags().Lookup("no-ui"))
}
