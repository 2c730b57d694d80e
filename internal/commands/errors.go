package commands

import "fmt"

const (
	exitFailure     = 1
	exitUnavailable = 2
)

// ExitError carries the process exit code for a failed command.
type ExitError interface {
	error
	ExitCode() int
}

type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return fmt.Sprintf("exit code %d", e.code)
}

func (e *exitError) Unwrap() error {
	return e.err
}

func (e *exitError) ExitCode() int {
	return e.code
}

func newExitError(code int, err error) ExitError {
	if code == 0 {
		code = 1
	}
	return &exitError{code: code, err: err}
}
