package macos

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/9mada4/VoiceChatBot/internal/execx"
)

// ErrClipboardEmpty means pbpaste returned nothing usable.
var ErrClipboardEmpty = errors.New("clipboard is empty")

// Clipboard reads the system pasteboard.
type Clipboard struct {
	runner execx.Runner
}

func NewClipboard(runner execx.Runner) *Clipboard {
	return &Clipboard{runner: runner}
}

// Read returns the current pasteboard text, trimmed. Empty content is an
// error so callers can tell "nothing copied yet" from a real response.
func (c *Clipboard) Read(ctx context.Context) (string, error) {
	out, err := c.runner.OutputContext(ctx, "pbpaste")
	if err != nil {
		return "", fmt.Errorf("pbpaste: %w", err)
	}
	text := strings.TrimSpace(out)
	if text == "" {
		return "", ErrClipboardEmpty
	}
	return text, nil
}
