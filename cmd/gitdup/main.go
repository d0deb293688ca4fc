// Package main is the entry point for the gitdup CLI.
//
// It delegates all functionality to the internal/cli package. Build-time
// variables (version, commit, date) are injected via ldflags by GoReleaser
// and default to "dev", "none" and "unknown" during development.
package main

import (
	"github.com/shinji-kodama/gitdup/internal/cli"
)

// version, commit, and date are set by GoReleaser at build time
// via ldflags (see .goreleaser.yml).
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	cli.Execute(cli.NewRootCommand())
}
