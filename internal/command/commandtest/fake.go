// Package commandtest provides a scripted command.Runner for tests.
package commandtest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/shinji-kodama/gitdup/internal/command"
	"github.com/shinji-kodama/gitdup/internal/model"
)

// Call is one recorded invocation of a FakeRunner.
type Call struct {
	Dir     string
	Name    string
	Args    []string
	Capture bool
}

// String renders the call as "name arg1 arg2".
func (c Call) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// FakeRunner records invocations and answers them from a table instead of
// spawning processes. Commands are matched on their rendered command line
// ("npm --version"); a command line not in Outputs or Failures succeeds
// with empty output unless Missing lists its executable.
type FakeRunner struct {
	mu sync.Mutex

	// Outputs maps a command line to the output it returns.
	Outputs map[string]string

	// Failures maps a command line to the output it returns with an error.
	Failures map[string]string

	// Missing lists executables that behave as if not installed.
	Missing map[string]bool

	// Fallback, when set, handles every call not answered by the tables.
	// Tests use it to delegate git commands to a real ExecRunner.
	Fallback command.Runner

	Calls []Call
}

var _ command.Runner = (*FakeRunner)(nil)

// NewFakeRunner creates an empty FakeRunner.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		Outputs:  make(map[string]string),
		Failures: make(map[string]string),
		Missing:  make(map[string]bool),
	}
}

// Run implements command.Runner.
func (f *FakeRunner) Run(ctx context.Context, dir, name string, args ...string) (string, error) {
	return f.do(ctx, false, dir, name, args)
}

// Capture implements command.Runner.
func (f *FakeRunner) Capture(ctx context.Context, dir, name string, args ...string) (string, error) {
	return f.do(ctx, true, dir, name, args)
}

func (f *FakeRunner) do(ctx context.Context, capture bool, dir, name string, args []string) (string, error) {
	call := Call{Dir: dir, Name: name, Args: append([]string(nil), args...), Capture: capture}

	f.mu.Lock()
	f.Calls = append(f.Calls, call)
	f.mu.Unlock()

	line := call.String()
	if f.Missing[name] {
		return "", &model.CommandError{Name: name, Args: args, Err: fmt.Errorf("exec: %q: executable file not found in $PATH", name)}
	}
	if out, ok := f.Failures[line]; ok {
		return out, &model.CommandError{Name: name, Args: args, Output: out, Err: fmt.Errorf("exit status 1")}
	}
	if out, ok := f.Outputs[line]; ok {
		return out, nil
	}
	if f.Fallback != nil {
		if capture {
			return f.Fallback.Capture(ctx, dir, name, args...)
		}
		return f.Fallback.Run(ctx, dir, name, args...)
	}
	return "", nil
}

// CallsTo returns the recorded calls of executable name.
func (f *FakeRunner) CallsTo(name string) []Call {
	f.mu.Lock()
	defer f.mu.Unlock()

	var calls []Call
	for _, c := range f.Calls {
		if c.Name == name {
			calls = append(calls, c)
		}
	}
	return calls
}

// CommandLines returns every recorded call rendered as a command line.
func (f *FakeRunner) CommandLines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	lines := make([]string, 0, len(f.Calls))
	for _, c := range f.Calls {
		lines = append(lines, c.String())
	}
	return lines
}
