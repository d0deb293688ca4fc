package model

import (
	"errors"
	"fmt"
	"strings"
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}

// ExitCodeOf returns the exit code carried by err. Errors without a
// CLIError in their chain map to ExitGeneralError; nil maps to ExitSuccess.
func ExitCodeOf(err error) ExitCode {
	if err == nil {
		return ExitSuccess
	}
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr.Code
	}
	return ExitGeneralError
}

// CommandError records a failed external process invocation together with
// the output it produced. Output is empty when the process output was
// streamed to the terminal (verbose mode).
type CommandError struct {
	// Name is the executable that was run.
	Name string

	// Args are the arguments the executable was run with.
	Args []string

	// Output is the combined stdout/stderr of the process.
	Output string

	// Err is the error returned by os/exec.
	Err error
}

// CommandLine renders the invocation as a shell-like string.
func (e *CommandError) CommandLine() string {
	return strings.TrimSpace(e.Name + " " + strings.Join(e.Args, " "))
}

// Error includes the trimmed output when there is any, since that is
// usually where the actual reason (e.g. "pathspec did not match") lives.
func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s failed", e.CommandLine())
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if out := strings.TrimSpace(e.Output); out != "" {
		msg = fmt.Sprintf("%s\n%s", msg, out)
	}
	return msg
}

// Unwrap returns the underlying exec error.
func (e *CommandError) Unwrap() error {
	return e.Err
}
