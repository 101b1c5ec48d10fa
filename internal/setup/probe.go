package setup

import (
	"fmt"
	"strings"

	"github.com/9mada4/VoiceChatBot/internal/execx"
)

// Probe reports the presence and version of one external tool.
type Probe interface {
	Name() string
	Available() bool
	Version() (string, error)
}

// CommandProbe checks for an executable on PATH and asks it for its
// version banner.
type CommandProbe struct {
	cmd    string
	args   []string
	runner execx.Runner
}

func NewCommandProbe(runner execx.Runner, cmd string, versionArgs ...string) *CommandProbe {
	return &CommandProbe{cmd: cmd, args: versionArgs, runner: runner}
}

func (p *CommandProbe) Name() string {
	return p.cmd
}

func (p *CommandProbe) Available() bool {
	_, err := p.runner.LookPath(p.cmd)
	return err == nil
}

// Version returns the first line the tool prints for its version query.
func (p *CommandProbe) Version() (string, error) {
	out, err := p.runner.Output(p.cmd, p.args...)
	if err != nil {
		return "", fmt.Errorf("%s version query: %w", p.cmd, err)
	}
	line := firstLine(out)
	if line == "" {
		return "", fmt.Errorf("%s reported no version", p.cmd)
	}
	return line, nil
}

// versionArgs maps a tool to its version query. Almost everything answers
// --version; ffmpeg only accepts the single-dash form.
func versionArgs(name string) []string {
	if name == "ffmpeg" {
		return []string{"-version"}
	}
	return []string{"--version"}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}
