// Package macos wraps the system tools the bot drives: System Events
// keystroke injection, dictation process tracking, the clipboard, speech
// synthesis and screen capture. Everything shells out, so the package
// works without cgo and the callers can be tested with fake runners.
package macos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/9mada4/VoiceChatBot/internal/execx"
	"github.com/9mada4/VoiceChatBot/internal/logger"
)

// Virtual key codes used by the bot. The right command key differs
// between JIS and US keyboards.
const (
	KeyCodeReturn          = 36
	KeyCodeEscape          = 53
	KeyCodeRightCommandJIS = 54
	KeyCodeRightCommandUS  = 55
	KeyCodePageUp          = 116
	KeyCodePageDown        = 121
)

// RightCommandKeyCode maps a keyboard layout input source id to the key
// code of its right command key.
func RightCommandKeyCode(layout string) int {
	if strings.Contains(layout, "JIS") || strings.Contains(layout, "Japanese") {
		return KeyCodeRightCommandJIS
	}
	return KeyCodeRightCommandUS
}

// Keyboard injects key presses through System Events. Requires the
// Accessibility permission; without it osascript reports error 1002.
type Keyboard struct {
	runner execx.Runner
	log    *logger.Logger
}

func NewKeyboard(runner execx.Runner) *Keyboard {
	return &Keyboard{runner: runner, log: logger.NewLogger("macos")}
}

func (k *Keyboard) PressKeyCode(ctx context.Context, code int) error {
	script := fmt.Sprintf("tell application \"System Events\" to key code %d", code)
	out, err := k.runner.OutputContext(ctx, "osascript", "-e", script)
	if err != nil {
		return fmt.Errorf("key code %d: %v: %s", code, err, strings.TrimSpace(out))
	}
	k.log.Info("sent key code ", code)
	return nil
}

// PressTwice sends the same key twice with a short gap, the gesture
// macOS uses for the dictation shortcut.
func (k *Keyboard) PressTwice(ctx context.Context, code int, gap time.Duration) error {
	if err := k.PressKeyCode(ctx, code); err != nil {
		return err
	}
	time.Sleep(gap)
	return k.PressKeyCode(ctx, code)
}
