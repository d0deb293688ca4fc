// Package cli implements the cobra-based command line for gitdup.
//
// gitdup has no subcommands: the root command itself performs the
// duplication. This file defines the root command, its flags, the merge of
// flags over the user configuration, and the error to exit code mapping.
// Progress rendering lives in progress.go and result output in output.go.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/shinji-kodama/gitdup/internal/config"
	"github.com/shinji-kodama/gitdup/internal/duplicate"
	"github.com/shinji-kodama/gitdup/internal/logger"
	"github.com/shinji-kodama/gitdup/internal/model"
)

// Global flag variables. They are package-level so Execute and VerboseLog
// can see them after cobra has parsed the command line.
var (
	// outputFormat selects how the final result and errors are printed:
	// "text" (default), "json" or "yaml".
	outputFormat string

	// verbose streams git and package manager output and prints
	// [verbose] trace lines to stderr.
	verbose bool

	// debug enables debug-level structured logging.
	debug bool
)

// version, commit, and date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// dupFlags holds the flag values of the root command.
type dupFlags struct {
	branch    string // --branch: branch to check out in the duplicate
	pr        int    // --pr: pull request number to fetch and check out
	remote    string // --remote: remote the pull request is fetched from
	clean     bool   // --clean: remove untracked files in the duplicate
	noInstall bool   // --no-install: skip dependency installation
}

// NewRootCommand creates and configures the root cobra command.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&dupFlags{})
}

func newRootCommand(flags *dupFlags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gitdup [destination]",
		Short: "Duplicate a git working directory into a fresh, independent copy",
		Long: `gitdup copies the current git working directory, including ignored
local files such as .env, into a new directory and turns it into a clean,
independent workspace:

  - tracked changes are reset to the last commit
  - untracked files are optionally removed (--clean), ignored files are kept
  - a branch (--branch) or a pull request (--pr) is optionally checked out
  - dependencies of package.json projects are re-installed

When no destination is given, a sibling directory named <name>-dup
(or <name>-dup-1, <name>-dup-2, ...) is used.

Examples:
  gitdup
  gitdup ../review-copy
  gitdup --branch feature/login
  gitdup --pr 42 --remote upstream
  gitdup --clean --no-install -o json`,

		Args: cobra.MaximumNArgs(1),

		// SilenceUsage prevents cobra from printing usage on every error.
		// We handle error output ourselves for cleaner UX.
		SilenceUsage: true,

		// SilenceErrors prevents cobra from printing errors automatically.
		// We format errors ourselves (text, JSON or YAML).
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger.Init(debug)
			return nil
		},

		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return model.WrapCLIError(model.ExitGeneralError, "failed to load configuration", err)
			}

			cwd, err := os.Getwd()
			if err != nil {
				return model.WrapCLIError(model.ExitGeneralError, "failed to get current directory", err)
			}

			req, err := buildRequest(cmd.Flags(), cfg, flags, args, cwd)
			if err != nil {
				return err
			}

			return runDuplicate(cmd.Context(), duplicate.New(nil), req, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", config.Default.Output, "Output format: text, json or yaml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Stream git and package manager output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.Flags().StringVarP(&flags.branch, "branch", "b", "", "Branch to check out in the duplicate")
	rootCmd.Flags().IntVar(&flags.pr, "pr", 0, "Pull request number to fetch and check out as pr-<number>")
	rootCmd.Flags().StringVarP(&flags.remote, "remote", "r", config.Default.Remote, "Remote to fetch the pull request from")
	rootCmd.Flags().BoolVar(&flags.clean, "clean", false, "Remove untracked files (ignored files are kept)")
	rootCmd.Flags().BoolVar(&flags.noInstall, "no-install", false, "Skip dependency installation")

	return rootCmd
}

// buildRequest merges the command line over the loaded configuration.
// A flag only overrides its config key when it was set explicitly.
func buildRequest(fs *pflag.FlagSet, cfg *config.Config, flags *dupFlags, args []string, cwd string) (model.Request, error) {
	req := model.NewRequest(cwd)
	req.Remote = cfg.Remote
	req.Clean = cfg.Clean
	req.Install = cfg.Install
	req.Verbose = cfg.Verbose

	if len(args) > 0 {
		req.Destination = args[0]
	}
	req.Branch = strings.TrimSpace(flags.branch)
	req.PR = flags.pr

	if fs.Changed("remote") {
		req.Remote = flags.remote
	}
	if fs.Changed("clean") {
		req.Clean = flags.clean
	}
	if fs.Changed("no-install") {
		req.Install = !flags.noInstall
	}
	if fs.Changed("verbose") {
		req.Verbose = verbose
	} else {
		verbose = req.Verbose
	}
	if !fs.Changed("output") {
		outputFormat = cfg.Output
	}

	if err := validateOutputFormat(outputFormat); err != nil {
		return req, model.WrapCLIError(model.ExitGeneralError, "invalid --output value", err)
	}
	if err := req.Validate(); err != nil {
		return req, model.WrapCLIError(model.ExitGeneralError, "invalid arguments", err)
	}

	VerboseLog("Source: %s", req.Source)
	if req.Branch != "" && req.PR > 0 {
		VerboseLog("Both --branch and --pr given; checking out branch %q", req.Branch)
	}
	return req, nil
}

// runDuplicate runs d with progress rendered to stderr and prints the
// result to stdout.
func runDuplicate(ctx context.Context, d *duplicate.Duplicator, req model.Request, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	progress := newProgressPrinter(stderr)
	result, err := d.Run(ctx, req, progress.Handle)
	if err != nil {
		return err
	}

	VerboseLog("Destination: %s", result.Destination)
	return printResult(stdout, result)
}

// Execute runs the root command and handles exit codes.
// This is the main entry point called from main.go.
//
// CLIError types carry their own exit codes; other errors default to
// exit code 1.
func Execute(rootCmd *cobra.Command) {
	err := rootCmd.Execute()
	logger.Sync()
	if err == nil {
		return
	}

	var cliErr *model.CLIError
	if errors.As(err, &cliErr) {
		printError(os.Stderr, cliErr.Code, cliErr.Message, cliErr.Err)
		os.Exit(int(cliErr.Code))
	}

	printError(os.Stderr, model.ExitGeneralError, err.Error(), nil)
	os.Exit(int(model.ExitGeneralError))
}

// errorOutput is the structured error document printed in json and yaml
// modes.
type errorOutput struct {
	Error errorDetail `json:"error" yaml:"error"`
}

type errorDetail struct {
	Class    string `json:"class" yaml:"class"`
	ExitCode int    `json:"exitCode" yaml:"exitCode"`
	Message  string `json:"message" yaml:"message"`
	Detail   string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// printError writes an error in the format selected by --output. Errors
// always go to stderr, even in json/yaml mode, because stdout is reserved
// for successful command output.
func printError(w io.Writer, code model.ExitCode, message string, underlying error) {
	doc := errorOutput{Error: errorDetail{
		Class:    code.String(),
		ExitCode: int(code),
		Message:  message,
	}}
	if underlying != nil {
		doc.Error.Detail = underlying.Error()
	}

	switch outputFormat {
	case "json":
		data, _ := json.MarshalIndent(doc, "", "  ")
		_, _ = fmt.Fprintln(w, string(data))
	case "yaml":
		data, _ := yaml.Marshal(doc)
		_, _ = w.Write(data)
	default:
		if underlying != nil {
			_, _ = fmt.Fprintf(w, "Error: %s: %v\n", message, underlying)
		} else {
			_, _ = fmt.Fprintf(w, "Error: %s\n", message)
		}
	}
}

// VerboseLog prints a message to stderr only when verbose mode is enabled.
func VerboseLog(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[verbose] "+format+"\n", args...)
	}
}

func validateOutputFormat(format string) error {
	switch format {
	case "text", "json", "yaml":
		return nil
	}
	return fmt.Errorf("unknown output format %q (valid: text, json, yaml)", format)
}
