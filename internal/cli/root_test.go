package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/shinji-kodama/gitdup/internal/command"
	"github.com/shinji-kodama/gitdup/internal/command/commandtest"
	"github.com/shinji-kodama/gitdup/internal/config"
	"github.com/shinji-kodama/gitdup/internal/duplicate"
	"github.com/shinji-kodama/gitdup/internal/model"
)

// resetGlobals restores the package-level flag variables after a test.
func resetGlobals(t *testing.T) {
	t.Helper()
	saved := []any{outputFormat, verbose, debug}
	t.Cleanup(func() {
		outputFormat = saved[0].(string)
		verbose = saved[1].(bool)
		debug = saved[2].(bool)
	})
}

// parse creates a root command and parses args into its flag set.
func parse(t *testing.T, args ...string) (*dupFlags, func(cfg *config.Config) (model.Request, error)) {
	t.Helper()
	resetGlobals(t)

	flags := &dupFlags{}
	cmd := newRootCommand(flags)
	require.NoError(t, cmd.ParseFlags(args))
	fs := cmd.Flags()

	return flags, func(cfg *config.Config) (model.Request, error) {
		return buildRequest(fs, cfg, flags, fs.Args(), "/work/app")
	}
}

func TestBuildRequest_Defaults(t *testing.T) {
	_, build := parse(t)
	cfg := config.Default

	req, err := build(&cfg)
	require.NoError(t, err)

	assert.Equal(t, "/work/app", req.Source)
	assert.Empty(t, req.Destination)
	assert.Equal(t, "origin", req.Remote)
	assert.True(t, req.Install)
	assert.False(t, req.Clean)
	assert.Equal(t, "text", outputFormat)
}

func TestBuildRequest_Flags(t *testing.T) {
	_, build := parse(t, "--branch", "feature/x", "--pr", "12", "-r", "upstream", "--clean", "--no-install", "-o", "json", "../copy")
	cfg := config.Default

	req, err := build(&cfg)
	require.NoError(t, err)

	assert.Equal(t, "../copy", req.Destination)
	assert.Equal(t, "feature/x", req.Branch)
	assert.Equal(t, 12, req.PR)
	assert.Equal(t, "upstream", req.Remote)
	assert.True(t, req.Clean)
	assert.False(t, req.Install)
	assert.Equal(t, "json", outputFormat)
}

// TestBuildRequest_ConfigUsedWhenFlagsUnset verifies that config values
// apply unless the corresponding flag was given explicitly.
func TestBuildRequest_ConfigUsedWhenFlagsUnset(t *testing.T) {
	cfg := config.Config{Remote: "upstream", Clean: true, Install: false, Verbose: true, Output: "yaml"}

	_, build := parse(t)
	req, err := build(&cfg)
	require.NoError(t, err)
	assert.Equal(t, "upstream", req.Remote)
	assert.True(t, req.Clean)
	assert.False(t, req.Install)
	assert.True(t, req.Verbose)
	assert.Equal(t, "yaml", outputFormat)

	_, build = parse(t, "--remote", "origin", "--clean=false", "-o", "text")
	req, err = build(&cfg)
	require.NoError(t, err)
	assert.Equal(t, "origin", req.Remote)
	assert.False(t, req.Clean)
	assert.Equal(t, "text", outputFormat)
}

func TestBuildRequest_Invalid(t *testing.T) {
	cfg := config.Default

	_, build := parse(t, "--pr=-4")
	_, err := build(&cfg)
	require.Error(t, err)
	assert.Equal(t, model.ExitGeneralError, model.ExitCodeOf(err))

	_, build = parse(t, "-o", "xml")
	_, err = build(&cfg)
	assert.Error(t, err)
}

func TestRootCommand_TooManyArgs(t *testing.T) {
	resetGlobals(t)
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"a", "b"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	assert.Error(t, cmd.Execute())
}

func TestPrintError_Text(t *testing.T) {
	resetGlobals(t)
	outputFormat = "text"

	var buf bytes.Buffer
	printError(&buf, model.ExitInvalidDestination, "destination directory is not empty: /x", nil)
	assert.Equal(t, "Error: destination directory is not empty: /x\n", buf.String())

	buf.Reset()
	printError(&buf, model.ExitCommandFailed, "failed to check out branch", errors.New("exit status 1"))
	assert.Equal(t, "Error: failed to check out branch: exit status 1\n", buf.String())
}

func TestPrintError_Structured(t *testing.T) {
	resetGlobals(t)

	outputFormat = "json"
	var buf bytes.Buffer
	printError(&buf, model.ExitNotARepository, "not a git repository", errors.New("no .git"))

	var doc errorOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "NotARepository", doc.Error.Class)
	assert.Equal(t, 2, doc.Error.ExitCode)
	assert.Equal(t, "no .git", doc.Error.Detail)

	outputFormat = "yaml"
	buf.Reset()
	printError(&buf, model.ExitCopyFailed, "failed to copy working directory", nil)

	doc = errorOutput{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "CopyFailure", doc.Error.Class)
	assert.Equal(t, 4, doc.Error.ExitCode)
	assert.Empty(t, doc.Error.Detail)
}

// setupTestRepo creates <tmp>/project as a git repository with one commit.
func setupTestRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	dir := filepath.Join(t.TempDir(), "project")
	require.NoError(t, os.Mkdir(dir, 0o755))

	for _, args := range [][]string{
		{"init"},
		{"config", "user.email", "test@example.com"},
		{"config", "user.name", "Test User"},
		{"config", "commit.gpgsign", "false"},
	} {
		runTestGit(t, dir, args...)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# Test Repo\n"), 0o644))
	runTestGit(t, dir, "add", ".")
	runTestGit(t, dir, "commit", "-m", "initial commit")
	return dir
}

func runTestGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	out, err := exec.Command("git", append([]string{"-C", dir}, args...)...).CombinedOutput()
	require.NoError(t, err, "git %v failed: %s", args, string(out))
}

// TestRunDuplicate runs a full duplication through the CLI layer and
// checks that progress goes to stderr and the result to stdout.
func TestRunDuplicate(t *testing.T) {
	resetGlobals(t)
	outputFormat = "json"

	repo := setupTestRepo(t)
	req := model.NewRequest(repo)

	runner := commandtest.NewFakeRunner()
	runner.Fallback = command.NewExecRunner(false)

	var stdout, stderr bytes.Buffer
	err := runDuplicate(context.Background(), duplicate.New(runner), req, &stdout, &stderr)
	require.NoError(t, err)

	var res model.Result
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &res))
	assert.Equal(t, filepath.Join(filepath.Dir(repo), "project-dup"), res.Destination)
	assert.FileExists(t, filepath.Join(res.Destination, "README.md"))

	assert.Contains(t, stderr.String(), "Copying files to")
	assert.Contains(t, stderr.String(), "Duplicate ready at")
}

func TestRunDuplicate_Error(t *testing.T) {
	resetGlobals(t)

	req := model.NewRequest(t.TempDir())
	var stdout, stderr bytes.Buffer
	err := runDuplicate(context.Background(), duplicate.New(commandtest.NewFakeRunner()), req, &stdout, &stderr)

	require.Error(t, err)
	assert.Equal(t, model.ExitNotARepository, model.ExitCodeOf(err))
	assert.Empty(t, stdout.String())
}
