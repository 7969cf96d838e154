package cli

import (
	"errors"
	"fmt"
)

// Process exit codes.
const (
	ExitCompatible   = 0
	ExitIncompatible = 1
	ExitSetupError   = 2
)

// ExitError carries the exit code a command wants the process to end with.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode maps the error returned by a command to a process exit code. Any
// error that does not carry its own code is a setup problem.
func ExitCode(err error) int {
	if err == nil {
		return ExitCompatible
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitSetupError
}
