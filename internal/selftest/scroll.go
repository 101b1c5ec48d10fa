package selftest

import (
	"context"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/9mada4/VoiceChatBot/internal/config"
	"github.com/9mada4/VoiceChatBot/internal/execx"
	"github.com/9mada4/VoiceChatBot/internal/logger"
	"github.com/9mada4/VoiceChatBot/internal/macos"
)

// assetName is the on-screen matching image the bot looks for. Setup tells
// the user to place it next to the binary.
const assetName = "startVoiceBtn.png"

// Scroll checks the screen permissions: a screenshot, the matching asset
// and key injection into the frontmost window.
type Scroll struct {
	runner execx.Runner
	out    io.Writer
	cfg    *config.Settings
	log    *logger.Logger
}

func NewScroll(runner execx.Runner, out io.Writer, cfg *config.Settings) *Scroll {
	return &Scroll{runner: runner, out: out, cfg: cfg, log: logger.NewLogger("selftest")}
}

func (s *Scroll) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, "Screen interaction test")
	fmt.Fprintln(s.out, strings.Repeat("=", 50))

	s.reportScreenshot(ctx)
	s.reportAsset()
	s.reportFrontmost(ctx)

	if err := s.scrollFrontmost(ctx); err != nil {
		return err
	}

	fmt.Fprintln(s.out, "\nTest finished.")
	return nil
}

func (s *Scroll) reportScreenshot(ctx context.Context) {
	path := filepath.Join(os.TempDir(), "voicechatbot-screen.png")
	defer os.Remove(path)

	if err := macos.NewScreen(s.runner).Capture(ctx, path); err != nil {
		fmt.Fprintf(s.out, "✗ screenshot failed: %v\n", err)
		fmt.Fprintln(s.out, "  Grant Screen Recording permission to the terminal.")
		return
	}

	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		fmt.Fprintln(s.out, "✗ screenshot file is empty")
		return
	}
	fmt.Fprintf(s.out, "✓ screenshot captured (%d bytes)\n", info.Size())
}

func (s *Scroll) reportAsset() {
	f, err := os.Open(assetName)
	if err != nil {
		fmt.Fprintf(s.out, "✗ %s not found next to the binary\n", assetName)
		return
	}
	defer f.Close()

	img, err := png.DecodeConfig(f)
	if err != nil {
		fmt.Fprintf(s.out, "✗ %s is not a readable PNG: %v\n", assetName, err)
		return
	}
	fmt.Fprintf(s.out, "✓ %s present (%dx%d)\n", assetName, img.Width, img.Height)
}

func (s *Scroll) reportFrontmost(ctx context.Context) {
	bundleID, err := macos.FrontmostBundleID(ctx, s.runner)
	if err != nil {
		fmt.Fprintf(s.out, "! frontmost app unknown: %v\n", err)
		return
	}
	if bundleID == s.cfg.Chat.AppBundleID {
		fmt.Fprintf(s.out, "✓ frontmost app is %s\n", bundleID)
	} else {
		fmt.Fprintf(s.out, "! frontmost app is %s, not %s; scrolling will move that window\n", bundleID, s.cfg.Chat.AppBundleID)
	}
}

func (s *Scroll) scrollFrontmost(ctx context.Context) error {
	keys := macos.NewKeyboard(s.runner)

	fmt.Fprintln(s.out, "Scrolling down, then back up...")
	codes := []int{macos.KeyCodePageDown, macos.KeyCodePageDown, macos.KeyCodePageUp, macos.KeyCodePageUp}
	for _, code := range codes {
		if err := keys.PressKeyCode(ctx, code); err != nil {
			fmt.Fprintf(s.out, "✗ key injection failed: %v\n", err)
			fmt.Fprintln(s.out, "  Grant Accessibility permission to the terminal.")
			return nil
		}
		select {
		case <-time.After(500 * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	fmt.Fprintln(s.out, "✓ scroll keys sent; the frontmost window should have moved")
	return nil
}
