// Package model defines the domain types and value objects for the
// gitdup CLI.
//
// This package contains pure data structures with no external dependencies.
// All entities (Request, Result, Event, PackageManagerChoice) are created
// fresh for each invocation and discarded when it completes. The only state
// that outlives a run is the duplicated directory itself.
//
// The package also defines exit codes (ExitCode) and the error types
// (CLIError, CommandError) that carry exit codes and captured process
// output up to the CLI layer.
package model
