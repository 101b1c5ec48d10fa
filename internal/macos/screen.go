package macos

import (
	"context"
	"fmt"
	"strings"

	"github.com/9mada4/VoiceChatBot/internal/execx"
)

// Screen captures the display. screencapture silently writes an empty or
// desktop-only image when the Screen Recording permission is missing, so
// callers should inspect the produced file.
type Screen struct {
	runner execx.Runner
}

func NewScreen(runner execx.Runner) *Screen {
	return &Screen{runner: runner}
}

// Capture writes a silent full-screen capture to path.
func (s *Screen) Capture(ctx context.Context, path string) error {
	if out, err := s.runner.OutputContext(ctx, "screencapture", "-x", path); err != nil {
		return fmt.Errorf("screencapture: %v: %s", err, strings.TrimSpace(out))
	}
	return nil
}

// FrontmostBundleID returns the bundle identifier of the application the
// user is currently working in.
func FrontmostBundleID(ctx context.Context, runner execx.Runner) (string, error) {
	script := "tell application \"System Events\" to get bundle identifier of first application process whose frontmost is true"
	out, err := runner.OutputContext(ctx, "osascript", "-e", script)
	if err != nil {
		return "", fmt.Errorf("frontmost app: %v: %s", err, strings.TrimSpace(out))
	}
	return strings.TrimSpace(out), nil
}
