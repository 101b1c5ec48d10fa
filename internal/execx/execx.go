// Package execx puts external command execution behind a small interface
// so the callers that shell out to macOS tools can be tested with fakes.
package execx

import (
	"context"
	"os"
	"os/exec"
)

// Runner executes external commands.
type Runner interface {
	// LookPath reports where name resolves on PATH.
	LookPath(name string) (string, error)
	// Output runs name with args and returns its combined stdout and
	// stderr. Version banners often land on stderr (sox does this), so
	// callers get both streams.
	Output(name string, args ...string) (string, error)
	// Run executes name with args wired to the process's own stdout and
	// stderr. Installers report progress this way.
	Run(name string, args ...string) error
	// OutputContext is Output bounded by ctx.
	OutputContext(ctx context.Context, name string, args ...string) (string, error)
	// RunContext is Run bounded by ctx.
	RunContext(ctx context.Context, name string, args ...string) error
}

type systemRunner struct{}

// System returns the Runner backed by os/exec.
func System() Runner {
	return systemRunner{}
}

func (systemRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func (systemRunner) Output(name string, args ...string) (string, error) {
	out, err := exec.Command(name, args...).CombinedOutput()
	return string(out), err
}

func (systemRunner) Run(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func (systemRunner) OutputContext(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	return string(out), err
}

func (systemRunner) RunContext(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
