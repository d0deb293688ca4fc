package model

import (
	"fmt"
	"strconv"
)

// DefaultRemote is the remote used for pull request fetches when the
// request does not name one.
const DefaultRemote = "origin"

// Request describes a single duplication run. It is the structured options
// object the CLI layer builds from flags and configuration.
//
// Branch and PR are mutually exclusive in effect: when both are set the
// branch is checked out and the PR number is ignored.
type Request struct {
	// Source is the directory being duplicated. The CLI sets it to the
	// current working directory.
	Source string `json:"source" yaml:"source"`

	// Destination is the target directory. Empty means "pick a sibling
	// directory named <source>-dup".
	Destination string `json:"destination,omitempty" yaml:"destination,omitempty"`

	// Branch is checked out in the destination after the reset.
	Branch string `json:"branch,omitempty" yaml:"branch,omitempty"`

	// PR is a pull request number fetched via pull/<n>/head. Zero means none.
	PR int `json:"pr,omitempty" yaml:"pr,omitempty"`

	// Remote is the remote the pull request is fetched from.
	Remote string `json:"remote" yaml:"remote"`

	// Clean removes untracked (but not ignored) files from the destination.
	Clean bool `json:"clean" yaml:"clean"`

	// Verbose streams child process output instead of capturing it.
	Verbose bool `json:"verbose" yaml:"verbose"`

	// Install re-installs dependencies for package-based projects.
	Install bool `json:"install" yaml:"install"`
}

// NewRequest returns a Request for the given source with the defaults
// applied: remote "origin" and install enabled.
func NewRequest(source string) Request {
	return Request{
		Source:  source,
		Remote:  DefaultRemote,
		Install: true,
	}
}

// Validate checks the fields that can be rejected before touching the
// filesystem.
func (r *Request) Validate() error {
	if r.Source == "" {
		return fmt.Errorf("source directory must not be empty")
	}
	if r.PR < 0 {
		return fmt.Errorf("invalid pull request number %d: must be positive", r.PR)
	}
	if r.Remote == "" {
		r.Remote = DefaultRemote
	}
	return nil
}

// PRBranchName returns the local reference a pull request is fetched into.
func PRBranchName(pr int) string {
	return "pr-" + strconv.Itoa(pr)
}

// Result is the outcome of a successful duplication run.
type Result struct {
	// Source is the absolute path of the duplicated directory.
	Source string `json:"source" yaml:"source"`

	// Destination is the absolute path of the new copy.
	Destination string `json:"destination" yaml:"destination"`

	// CheckedOut is the branch name or the synthesized pr-<n> reference
	// that was checked out. Empty when neither was requested.
	CheckedOut string `json:"checkedOut,omitempty" yaml:"checkedOut,omitempty"`

	// PackageManager is the name of the manager dependencies were
	// installed with. Empty when no install ran.
	PackageManager string `json:"packageManager,omitempty" yaml:"packageManager,omitempty"`
}

// PackageManagerChoice is the installer selected for a package-based
// project. It is computed once per run and never cached.
type PackageManagerChoice struct {
	// Name is the manager name (npm, pnpm, yarn, bun).
	Name string `json:"name" yaml:"name"`

	// Command is the executable to invoke.
	Command string `json:"command" yaml:"command"`

	// Args is the install subcommand and its flags.
	Args []string `json:"args" yaml:"args"`

	// Rule names the detection rule that selected this manager.
	Rule string `json:"rule" yaml:"rule"`
}

// String renders the choice as a command line.
func (c PackageManagerChoice) String() string {
	s := c.Command
	for _, a := range c.Args {
		s += " " + a
	}
	return s
}

// ExitCode defines the CLI exit codes. Each error class of the duplication
// workflow maps to its own code so scripts can tell them apart.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitNotARepository indicates the source has no .git directory.
	ExitNotARepository ExitCode = 2

	// ExitInvalidDestination covers same-path, nested, non-directory and
	// non-empty destinations.
	ExitInvalidDestination ExitCode = 3

	// ExitCopyFailed indicates an I/O error while copying the tree.
	ExitCopyFailed ExitCode = 4

	// ExitCommandFailed indicates an external command (git or a package
	// manager) exited with an error.
	ExitCommandFailed ExitCode = 5
)

// String returns the error class name for the exit code.
func (c ExitCode) String() string {
	switch c {
	case ExitSuccess:
		return "Success"
	case ExitNotARepository:
		return "NotARepository"
	case ExitInvalidDestination:
		return "InvalidDestination"
	case ExitCopyFailed:
		return "CopyFailure"
	case ExitCommandFailed:
		return "CommandFailure"
	default:
		return "GeneralError"
	}
}
