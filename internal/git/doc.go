// Package git provides the version-control operations gitdup performs
// inside a duplicated working copy.
//
// All Git operations are performed via os/exec calls to the git binary,
// rather than using a Git library like go-git. This approach:
//   - Avoids CGO dependencies (libgit2)
//   - Uses the exact same Git behavior the user sees in their terminal,
//     including their credential helpers for fetches
//   - Keeps ignore-rule semantics of `git clean` identical to the CLI
//
// Every command is run as `git -C <dir> ...` so the process working
// directory never changes, and goes through a command.Runner, which
// captures output for error reporting or streams it in verbose mode.
// Failures are returned as *model.CommandError; the caller decides which
// stage message and exit code to attach.
package git
