// Package doctor inspects the dictation configuration the bot depends on
// and reports what is wrong and how to fix it. It diagnoses only; the
// command always exits zero so it can run in any state.
package doctor

import (
	"fmt"
	"io"
)

type Status string

const (
	StatusPass Status = "pass"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// Item is one diagnostic result. Hint tells the user what to do when the
// status is not a pass.
type Item struct {
	Name    string
	Status  Status
	Message string
	Hint    string
}

// Report collects the diagnostics of one doctor run.
type Report struct {
	Items []Item
}

func (r *Report) add(name string, status Status, message, hint string) {
	r.Items = append(r.Items, Item{Name: name, Status: status, Message: message, Hint: hint})
}

// HasFailures reports whether any check failed outright.
func (r *Report) HasFailures() bool {
	for _, item := range r.Items {
		if item.Status == StatusFail {
			return true
		}
	}
	return false
}

func (s Status) mark() string {
	switch s {
	case StatusPass:
		return "✓"
	case StatusWarn:
		return "!"
	default:
		return "✗"
	}
}

// fixSteps is the manual walkthrough printed under every report. These
// are the settings macOS keeps behind System Settings.
var fixSteps = []string{
	"Open System Settings > Keyboard and scroll to Dictation",
	"Turn Dictation on",
	"Set Shortcut to \"Press Right Command Key Twice\"",
	"Pick Japanese as the dictation language",
	"Press the shortcut once in any text field so macOS finishes provisioning",
}

// Render writes the report in the check-mark list format.
func Render(w io.Writer, r *Report) {
	fmt.Fprintln(w, "Dictation diagnostics")
	fmt.Fprintln(w, "---------------------")
	for _, item := range r.Items {
		fmt.Fprintf(w, "%s %s: %s\n", item.Status.mark(), item.Name, item.Message)
		if item.Hint != "" && item.Status != StatusPass {
			fmt.Fprintf(w, "  hint: %s\n", item.Hint)
		}
	}

	fmt.Fprintln(w)
	if r.HasFailures() {
		fmt.Fprintln(w, "Some checks failed. To fix dictation:")
	} else {
		fmt.Fprintln(w, "If dictation still misbehaves:")
	}
	for i, step := range fixSteps {
		fmt.Fprintf(w, "%d. %s\n", i+1, step)
	}
}
