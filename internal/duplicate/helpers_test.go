package duplicate

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/gitdup/internal/command"
	"github.com/shinji-kodama/gitdup/internal/command/commandtest"
	"github.com/shinji-kodama/gitdup/internal/model"
)

// setupTestRepo creates <tmp>/project as a git repository with one commit
// containing README.md and a .gitignore that ignores .env, and returns its
// path. Placing it one level down keeps default destinations
// (<tmp>/project-dup) inside the test's temp dir.
func setupTestRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	dir := filepath.Join(t.TempDir(), "project")
	require.NoError(t, os.Mkdir(dir, 0o755))

	runTestGit(t, dir, "init")
	runTestGit(t, dir, "config", "user.email", "test@example.com")
	runTestGit(t, dir, "config", "user.name", "Test User")
	runTestGit(t, dir, "config", "commit.gpgsign", "false")

	writeFile(t, filepath.Join(dir, "README.md"), "# Test Repo\n")
	writeFile(t, filepath.Join(dir, ".gitignore"), ".env\n")

	runTestGit(t, dir, "add", ".")
	runTestGit(t, dir, "commit", "-m", "initial commit")

	return dir
}

// runTestGit runs a git command in dir and fails the test immediately if
// it exits with a non-zero status.
func runTestGit(t *testing.T, dir string, args ...string) string {
	t.Helper()

	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v failed: %s", args, string(output))
	return string(output)
}

// commitFiles writes files into repo and commits them.
func commitFiles(t *testing.T, repo string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		writeFile(t, filepath.Join(repo, filepath.FromSlash(rel)), content)
	}
	runTestGit(t, repo, "add", ".")
	runTestGit(t, repo, "commit", "-m", "add files")
}

// setupRemote creates a bare repository, registers it as remote name of
// repo and pushes HEAD to it as main.
func setupRemote(t *testing.T, repo, name string) string {
	t.Helper()

	bare := filepath.Join(t.TempDir(), name+".git")
	runTestGit(t, filepath.Dir(bare), "init", "--bare", bare)
	runTestGit(t, repo, "remote", "add", name, bare)
	runTestGit(t, repo, "push", name, "HEAD:refs/heads/main")
	return bare
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func currentBranch(t *testing.T, dir string) string {
	t.Helper()
	return strings.TrimSpace(runTestGit(t, dir, "rev-parse", "--abbrev-ref", "HEAD"))
}

// newRunner returns a FakeRunner that delegates git to the real executable
// and reports every package manager as not installed. Tests opt managers
// back in by deleting them from Missing and scripting their commands.
func newRunner() *commandtest.FakeRunner {
	f := commandtest.NewFakeRunner()
	f.Fallback = command.NewExecRunner(false)
	for _, name := range []string{"npm", "pnpm", "yarn", "bun"} {
		f.Missing[name] = true
	}
	return f
}

// recorder collects emitted events.
type recorder struct {
	events []model.Event
}

func (r *recorder) emit(e model.Event) {
	r.events = append(r.events, e)
}

func (r *recorder) kinds() []model.EventKind {
	kinds := make([]model.EventKind, 0, len(r.events))
	for _, e := range r.events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

func (r *recorder) find(kind model.EventKind) (model.Event, bool) {
	for _, e := range r.events {
		if e.Kind == kind {
			return e, true
		}
	}
	return model.Event{}, false
}

// gitSubcommands returns the git subcommands (the argument after -C dir)
// recorded by f, e.g. "reset --hard".
func gitSubcommands(f *commandtest.FakeRunner) []string {
	var subs []string
	for _, c := range f.CallsTo("git") {
		if len(c.Args) >= 2 && c.Args[0] == "-C" {
			subs = append(subs, strings.Join(c.Args[2:], " "))
		}
	}
	return subs
}

// dirEntries lists the names directly inside dir.
func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
