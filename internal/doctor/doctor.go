package doctor

import (
	"context"
	"fmt"
	"strings"

	"github.com/9mada4/VoiceChatBot/internal/execx"
	"github.com/9mada4/VoiceChatBot/internal/logger"
	"github.com/9mada4/VoiceChatBot/internal/macos"
)

const hiToolboxDomain = "com.apple.HIToolbox"

// Checker runs the dictation diagnostics.
type Checker struct {
	runner execx.Runner
	log    *logger.Logger
}

func New(runner execx.Runner) *Checker {
	return &Checker{runner: runner, log: logger.NewLogger("doctor")}
}

// Run executes every check and returns the collected report. Checks never
// abort each other; a broken defaults database still yields a full list.
func (c *Checker) Run(ctx context.Context) *Report {
	report := &Report{}
	c.checkDictationEnabled(ctx, report)
	c.checkDictationShortcut(ctx, report)
	c.checkDictationProcesses(ctx, report)
	c.checkKeyboardLayout(ctx, report)
	return report
}

// checkDictationEnabled reads AppleDictationAutoEnable. The key does not
// exist until dictation has been switched on at least once.
func (c *Checker) checkDictationEnabled(ctx context.Context, report *Report) {
	const name = "dictation enabled"
	out, err := c.runner.OutputContext(ctx, "defaults", "read", hiToolboxDomain, "AppleDictationAutoEnable")
	if err != nil {
		c.log.Warn("defaults read AppleDictationAutoEnable: ", err)
		report.add(name, StatusFail, "AppleDictationAutoEnable is not set",
			"turn Dictation on under System Settings > Keyboard")
		return
	}
	switch strings.TrimSpace(out) {
	case "1":
		report.add(name, StatusPass, "AppleDictationAutoEnable = 1", "")
	case "0":
		report.add(name, StatusFail, "dictation is switched off",
			"turn Dictation on under System Settings > Keyboard")
	default:
		report.add(name, StatusWarn, fmt.Sprintf("unexpected value %q", strings.TrimSpace(out)),
			"toggle Dictation off and on again")
	}
}

// checkDictationShortcut scans the HIToolbox domain for dictation keys.
// A fresh machine has none, which usually means the shortcut was never
// configured.
func (c *Checker) checkDictationShortcut(ctx context.Context, report *Report) {
	const name = "dictation shortcut"
	out, err := c.runner.OutputContext(ctx, "defaults", "read", hiToolboxDomain)
	if err != nil {
		report.add(name, StatusWarn, "could not read the keyboard settings domain",
			"open System Settings > Keyboard once and retry")
		return
	}
	count := 0
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "Dictation") {
			count++
		}
	}
	if count == 0 {
		report.add(name, StatusWarn, "no dictation settings recorded yet",
			"set the shortcut to \"Press Right Command Key Twice\"")
		return
	}
	report.add(name, StatusPass, fmt.Sprintf("%d dictation settings present", count), "")
}

func (c *Checker) checkDictationProcesses(ctx context.Context, report *Report) {
	const name = "dictation processes"
	running, err := macos.DictationProcessRunning(ctx, c.runner)
	if err != nil {
		report.add(name, StatusWarn, "could not scan the process table", "")
		return
	}
	if running {
		report.add(name, StatusPass, "a dictation service is running", "")
		return
	}
	report.add(name, StatusFail, "no dictation process is running",
		"press the shortcut once in a text field to warm the services up")
}

// checkKeyboardLayout resolves which right command key code the shortcut
// needs. JIS keyboards report 54, everything else 55.
func (c *Checker) checkKeyboardLayout(ctx context.Context, report *Report) {
	const name = "keyboard layout"
	out, err := c.runner.OutputContext(ctx, "defaults", "read", hiToolboxDomain, "AppleCurrentKeyboardLayoutInputSourceID")
	if err != nil {
		report.add(name, StatusWarn, "could not read the current keyboard layout",
			"assume key code 55 (US) unless you use a JIS keyboard")
		return
	}
	layout := strings.TrimSpace(out)
	code := macos.RightCommandKeyCode(layout)
	kind := "US"
	if code == macos.KeyCodeRightCommandJIS {
		kind = "JIS"
	}
	report.add(name, StatusPass,
		fmt.Sprintf("%s (%s layout, right command is key code %d)", layout, kind, code), "")
}
