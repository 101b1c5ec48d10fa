// Package setup implements the one-shot environment bootstrapper. It runs
// three phases in order: probe the required tools, install the Python
// dependencies, and print the manual first-run checklist. The workflow is
// idempotent, so rerunning it on a prepared machine only re-verifies.
package setup

import (
	"fmt"
	"io"

	"github.com/9mada4/VoiceChatBot/internal/config"
	"github.com/9mada4/VoiceChatBot/internal/execx"
	"github.com/9mada4/VoiceChatBot/internal/exitcode"
	"github.com/9mada4/VoiceChatBot/internal/logger"
)

const (
	interpreter    = "python3"
	packageManager = "brew"
	pipInstaller   = "pip3"

	brewInstallCommand = `/bin/bash -c "$(curl -fsSL https://raw.githubusercontent.com/Homebrew/install/HEAD/install.sh)"`
)

// Bootstrapper drives the three setup phases against a Runner. All
// user-facing text goes to out; stdout is the whole interface.
type Bootstrapper struct {
	runner   execx.Runner
	out      io.Writer
	manifest string
	tools    []config.Tool
	log      *logger.Logger
}

func New(runner execx.Runner, out io.Writer, cfg *config.Settings) *Bootstrapper {
	return &Bootstrapper{
		runner:   runner,
		out:      out,
		manifest: cfg.Setup.Manifest,
		tools:    cfg.Setup.Tools,
		log:      logger.NewLogger("setup"),
	}
}

// Run executes the phases in order and stops at the first failure. The
// returned error is an *exitcode.ExitError carrying the process status.
func (b *Bootstrapper) Run() error {
	if err := b.checkPrerequisites(); err != nil {
		return err
	}
	if err := b.installDependencies(); err != nil {
		return err
	}
	b.printInstructions()
	return nil
}

// checkPrerequisites probes the interpreter, the package manager and the
// audio tools. The interpreter is fatal when absent. The package manager
// is only fatal when a missing tool actually needs installing; otherwise
// its absence is a warning.
func (b *Bootstrapper) checkPrerequisites() error {
	fmt.Fprintln(b.out, "VoiceChatBot setup")
	fmt.Fprintln(b.out, "==================")
	fmt.Fprintln(b.out)
	fmt.Fprintln(b.out, "Checking prerequisites...")

	python := NewCommandProbe(b.runner, interpreter, versionArgs(interpreter)...)
	if !python.Available() {
		fmt.Fprintf(b.out, "✗ %s not found. Install Python 3 from https://www.python.org/ or with: brew install python3\n", interpreter)
		return exitcode.Missing(fmt.Errorf("%s not found", interpreter))
	}
	b.confirm(python)

	brew := NewCommandProbe(b.runner, packageManager, versionArgs(packageManager)...)
	brewAvailable := brew.Available()
	if brewAvailable {
		b.confirm(brew)
	} else {
		fmt.Fprintf(b.out, "! %s not found; automatic tool installation is unavailable\n", packageManager)
	}

	for _, tool := range b.tools {
		probe := NewCommandProbe(b.runner, tool.Name, versionArgs(tool.Name)...)
		if probe.Available() {
			b.confirm(probe)
			continue
		}
		if !brewAvailable {
			fmt.Fprintf(b.out, "✗ %s not found and Homebrew is needed to install %s.\n", tool.Name, tool.Package)
			fmt.Fprintf(b.out, "  Install Homebrew first: %s\n", brewInstallCommand)
			return exitcode.Missing(fmt.Errorf("%s required to install %s", packageManager, tool.Package))
		}
		fmt.Fprintf(b.out, "  %s not found, installing %s...\n", tool.Name, tool.Package)
		if err := b.runner.Run(packageManager, "install", tool.Package); err != nil {
			b.log.Error("brew install ", tool.Package, " failed: ", err)
			return exitcode.Propagate(fmt.Errorf("install %s: %w", tool.Package, err))
		}
		b.confirm(probe)
	}
	return nil
}

// installDependencies delegates to pip. pip reports its own errors and its
// exit status becomes ours.
func (b *Bootstrapper) installDependencies() error {
	fmt.Fprintln(b.out)
	fmt.Fprintf(b.out, "Installing Python dependencies from %s...\n", b.manifest)
	if err := b.runner.Run(pipInstaller, "install", "-r", b.manifest); err != nil {
		b.log.Error("pip install failed: ", err)
		return exitcode.Propagate(fmt.Errorf("%s install: %w", pipInstaller, err))
	}
	return nil
}

func (b *Bootstrapper) confirm(p Probe) {
	version, err := p.Version()
	if err != nil {
		// Present but not answering the version query still counts.
		b.log.Warn(p.Name(), ": ", err)
		fmt.Fprintf(b.out, "✓ %s found\n", p.Name())
		return
	}
	fmt.Fprintf(b.out, "✓ %s found: %s\n", p.Name(), version)
}

// printInstructions emits the fixed first-run checklist. The steps cover
// everything macOS will not let a process grant itself. The final line is
// the launch command.
func (b *Bootstrapper) printInstructions() {
	fmt.Fprintln(b.out)
	fmt.Fprintln(b.out, "Setup completed.")
	fmt.Fprintln(b.out)
	fmt.Fprintln(b.out, "Before first run:")
	fmt.Fprintln(b.out, "1. Grant Accessibility permission to your terminal:")
	fmt.Fprintln(b.out, "   System Settings > Privacy & Security > Accessibility")
	fmt.Fprintln(b.out, "2. Grant Screen Recording permission to your terminal:")
	fmt.Fprintln(b.out, "   System Settings > Privacy & Security > Screen Recording")
	fmt.Fprintln(b.out, "3. Enable Dictation under System Settings > Keyboard and set the")
	fmt.Fprintln(b.out, "   shortcut to \"Press Right Command Key Twice\", then press the")
	fmt.Fprintln(b.out, "   shortcut once in any text field to confirm it works.")
	fmt.Fprintln(b.out, "4. Launch the ChatGPT desktop app, sign in, and click the chat")
	fmt.Fprintln(b.out, "   input field.")
	fmt.Fprintln(b.out, "5. Place startVoiceBtn.png next to the voicechatbot binary so")
	fmt.Fprintln(b.out, "   on-screen matching can find the voice button.")
	fmt.Fprintln(b.out)
	fmt.Fprintln(b.out, "Verify the pipeline:")
	fmt.Fprintln(b.out, "  voicechatbot test    audio recording and recognition check")
	fmt.Fprintln(b.out, "  voicechatbot scroll  screen capture and scrolling check")
	fmt.Fprintln(b.out)
	fmt.Fprintln(b.out, "Start the bot:")
	fmt.Fprintln(b.out, "  voicechatbot run")
}
