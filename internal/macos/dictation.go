package macos

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/9mada4/VoiceChatBot/internal/execx"
	"github.com/9mada4/VoiceChatBot/internal/logger"
)

var (
	// ErrDictationNotStarted means no dictation process appeared after
	// the shortcut was sent.
	ErrDictationNotStarted = errors.New("dictation did not start")
	// ErrDictationTimeout means dictation was still running when the
	// caller's deadline passed.
	ErrDictationTimeout = errors.New("dictation did not finish in time")
)

// Names of the processes macOS launches while dictation listens. Any of
// them in the process table means the microphone is live.
var dictationProcesses = []string{
	"DictationIM",
	"SpeechRecognitionServer",
	"speechrecognitiond",
	"corespeechd",
}

const (
	shortcutGap         = 100 * time.Millisecond
	startupGrace        = 2 * time.Second
	activateTimeout     = 10 * time.Second
	processPollInterval = 500 * time.Millisecond
)

// Dictation starts and stops the macOS dictation session and watches the
// process table to tell when the user finished speaking.
type Dictation struct {
	runner       execx.Runner
	keys         *Keyboard
	keyCode      int
	pollEvery    time.Duration
	activateWait time.Duration
	log          *logger.Logger
}

// NewDictation returns a controller using keyCode as the dictation
// shortcut key (right command: 54 on JIS, 55 on US).
func NewDictation(runner execx.Runner, keyCode int) *Dictation {
	return &Dictation{
		runner:       runner,
		keys:         NewKeyboard(runner),
		keyCode:      keyCode,
		pollEvery:    processPollInterval,
		activateWait: activateTimeout,
		log:          logger.NewLogger("dictation"),
	}
}

// DictationProcessRunning scans the process table for the dictation
// services.
func DictationProcessRunning(ctx context.Context, runner execx.Runner) (bool, error) {
	out, err := runner.OutputContext(ctx, "ps", "aux")
	if err != nil {
		return false, fmt.Errorf("ps aux: %w", err)
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "grep") {
			continue
		}
		for _, name := range dictationProcesses {
			if strings.Contains(line, name) {
				return true, nil
			}
		}
	}
	return false, nil
}

// Active reports whether a dictation process is currently running.
func (d *Dictation) Active(ctx context.Context) bool {
	running, err := DictationProcessRunning(ctx, d.runner)
	if err != nil {
		d.log.Error(err)
		return false
	}
	return running
}

// Start sends the dictation shortcut and reports whether a dictation
// process came up. A false result with nil error means the keys went out
// but the session could not be confirmed.
func (d *Dictation) Start(ctx context.Context) (bool, error) {
	d.log.Info("starting dictation with key code ", d.keyCode)
	if err := d.keys.PressTwice(ctx, d.keyCode, shortcutGap); err != nil {
		return false, err
	}
	time.Sleep(startupGrace)
	return d.Active(ctx), nil
}

// Stop ends the dictation session with Escape.
func (d *Dictation) Stop(ctx context.Context) error {
	d.log.Info("stopping dictation")
	return d.keys.PressKeyCode(ctx, KeyCodeEscape)
}

// WaitCompletion blocks until the dictation session the user is speaking
// into disappears from the process table. It first waits for the session
// to show up at all, then polls until it ends or timeout elapses.
func (d *Dictation) WaitCompletion(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(d.pollEvery)
	defer ticker.Stop()

	activateDeadline := time.Now().Add(d.activateWait)
	for !d.Active(ctx) {
		if time.Now().After(activateDeadline) {
			return ErrDictationNotStarted
		}
		select {
		case <-ctx.Done():
			return d.waitErr(ctx)
		case <-ticker.C:
		}
	}

	d.log.Info("dictation input detected, waiting for completion")
	for d.Active(ctx) {
		select {
		case <-ctx.Done():
			return d.waitErr(ctx)
		case <-ticker.C:
		}
	}
	return nil
}

func (d *Dictation) waitErr(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return ctx.Err()
	}
	return ErrDictationTimeout
}
