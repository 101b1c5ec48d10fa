// Package exitcode defines the process exit codes. These form the
// contract with wrapper scripts and CI, so they keep stable values.
package exitcode

import (
	"errors"
	"fmt"
	"os/exec"
)

const (
	// Success means all phases completed.
	Success = 0
	// MissingPrerequisite means a hard prerequisite was absent.
	MissingPrerequisite = 1
)

// ExitError carries the exit code the process should terminate with.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Missing wraps err as a fatal missing-prerequisite failure.
func Missing(err error) *ExitError {
	return &ExitError{Code: MissingPrerequisite, Err: err}
}

// Propagate forwards the exit status of a failed external command. The
// installer and package manager report their own errors; their status
// becomes ours without translation.
func Propagate(err error) *ExitError {
	var xerr *ExitError
	if errors.As(err, &xerr) {
		return xerr
	}
	var execErr *exec.ExitError
	if errors.As(err, &execErr) {
		return &ExitError{Code: execErr.ExitCode(), Err: err}
	}
	return &ExitError{Code: 1, Err: err}
}
