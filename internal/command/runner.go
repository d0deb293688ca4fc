// Package command runs external processes for gitdup.
//
// Every git and package-manager invocation goes through a Runner, so the
// duplication workflow can be exercised in tests with a fake that records
// what would have been spawned.
package command

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"

	"go.uber.org/zap"

	"github.com/shinji-kodama/gitdup/internal/logger"
	"github.com/shinji-kodama/gitdup/internal/model"
)

// Runner executes external commands in a working directory.
type Runner interface {
	// Run executes the command. Implementations may stream output to the
	// terminal instead of capturing it (verbose mode), in which case the
	// returned output is empty.
	Run(ctx context.Context, dir, name string, args ...string) (string, error)

	// Capture executes the command and always returns its combined output,
	// for commands whose output is parsed or only used as a probe.
	Capture(ctx context.Context, dir, name string, args ...string) (string, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	// Verbose streams Run output to Stdout/Stderr instead of capturing it.
	Verbose bool

	// Stdout and Stderr receive streamed output. Nil means os.Stderr for
	// both, keeping stdout free for the machine-readable result.
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecRunner creates an ExecRunner.
func NewExecRunner(verbose bool) *ExecRunner {
	return &ExecRunner{Verbose: verbose}
}

// Run executes name with args in dir. On failure the error is a
// *model.CommandError carrying the captured output.
func (r *ExecRunner) Run(ctx context.Context, dir, name string, args ...string) (string, error) {
	if !r.Verbose {
		return r.Capture(ctx, dir, name, args...)
	}

	logger.Log.Debug("exec (streaming)", zap.String("dir", dir), zap.String("cmd", name), zap.Strings("args", args))

	// #nosec G204 -- name and args are built internally, never from a shell string
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = r.stdout()
	cmd.Stderr = r.stderr()

	if err := cmd.Run(); err != nil {
		return "", &model.CommandError{Name: name, Args: args, Err: err}
	}
	return "", nil
}

// Capture executes name with args in dir and returns the combined output.
func (r *ExecRunner) Capture(ctx context.Context, dir, name string, args ...string) (string, error) {
	logger.Log.Debug("exec", zap.String("dir", dir), zap.String("cmd", name), zap.Strings("args", args))

	// #nosec G204 -- name and args are built internally, never from a shell string
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return out.String(), &model.CommandError{Name: name, Args: args, Output: out.String(), Err: err}
	}
	return out.String(), nil
}

func (r *ExecRunner) stdout() io.Writer {
	if r.Stdout != nil {
		return r.Stdout
	}
	return os.Stderr
}

func (r *ExecRunner) stderr() io.Writer {
	if r.Stderr != nil {
		return r.Stderr
	}
	return os.Stderr
}

// Available reports whether name can be invoked, by running
// `<name> --version`. A missing binary and a binary that fails the probe
// are treated the same.
func Available(ctx context.Context, r Runner, dir, name string) bool {
	_, err := r.Capture(ctx, dir, name, "--version")
	if err != nil {
		logger.Log.Debug("executable not available", zap.String("cmd", name), zap.Error(err))
		return false
	}
	return true
}
