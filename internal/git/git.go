package git

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/shinji-kodama/gitdup/internal/command"
	"github.com/shinji-kodama/gitdup/internal/logger"
	"github.com/shinji-kodama/gitdup/internal/model"
)

// MetadataDir is the name of the git metadata directory at a repository root.
const MetadataDir = ".git"

// Manager runs git operations through a command.Runner.
type Manager struct {
	runner command.Runner
}

// NewManager creates a Manager. A nil runner means a non-verbose
// command.ExecRunner.
func NewManager(runner command.Runner) *Manager {
	if runner == nil {
		runner = command.NewExecRunner(false)
	}
	return &Manager{runner: runner}
}

// IsRepository reports whether path has a .git DIRECTORY at its root.
//
// A .git file (linked worktree or submodule) does not count: copying it
// would produce a second working copy pointing at the same git directory,
// which is exactly what a duplicate must not be.
func (m *Manager) IsRepository(path string) bool {
	info, err := os.Lstat(filepath.Join(path, MetadataDir))
	if err != nil {
		return false
	}
	return info.IsDir()
}

// IsWorktree checks whether the given path is a linked Git worktree (as
// opposed to a main repository working directory).
//
// Git worktrees are identified by having a .git FILE (not directory) that
// contains a "gitdir:" pointer to the main repository's .git/worktrees/<name>
// directory. The validator uses this to give a precise error message.
func (m *Manager) IsWorktree(path string) bool {
	gitPath := filepath.Join(path, MetadataDir)

	// Lstat, not Stat: a symlinked .git is neither a worktree file nor a
	// metadata directory we can copy.
	info, err := os.Lstat(gitPath)
	if err != nil || info.IsDir() {
		return false
	}

	content, err := os.ReadFile(gitPath)
	if err != nil {
		return false
	}

	return strings.HasPrefix(string(content), "gitdir:")
}

// ResetHard forces tracked files back to HEAD with `git reset --hard`.
// Untracked files are left alone.
func (m *Manager) ResetHard(ctx context.Context, dir string) error {
	return m.run(ctx, dir, "reset", "--hard")
}

// Clean removes untracked files and directories with `git clean -fd`.
//
// -x is deliberately absent: ignored files such as .env are the local-only
// artifacts a duplicate exists to preserve.
func (m *Manager) Clean(ctx context.Context, dir string) error {
	return m.run(ctx, dir, "clean", "-fd")
}

// Remotes returns the names of the configured remotes, one per line of
// `git remote`. The output is always captured since it is parsed.
func (m *Manager) Remotes(ctx context.Context, dir string) ([]string, error) {
	out, err := m.runner.Capture(ctx, dir, "git", "-C", dir, "remote")
	if err != nil {
		return nil, err
	}
	return parseRemotes(out), nil
}

// FetchAll fetches every remote and prunes stale remote-tracking refs.
func (m *Manager) FetchAll(ctx context.Context, dir string) error {
	return m.run(ctx, dir, "fetch", "--all", "--prune")
}

// FetchPullRequest fetches pull/<pr>/head from remote into the local
// branch pr-<pr> and returns that branch name.
//
// The refspec follows the GitHub convention; other hosts that publish the
// same ref layout work too.
func (m *Manager) FetchPullRequest(ctx context.Context, dir, remote string, pr int) (string, error) {
	local := model.PRBranchName(pr)
	refspec := "pull/" + strconv.Itoa(pr) + "/head:" + local

	if err := m.run(ctx, dir, "fetch", remote, refspec); err != nil {
		return "", err
	}
	return local, nil
}

// Checkout switches the working copy to ref.
func (m *Manager) Checkout(ctx context.Context, dir, ref string) error {
	return m.run(ctx, dir, "checkout", ref)
}

// run executes `git -C dir args...` through the runner.
func (m *Manager) run(ctx context.Context, dir string, args ...string) error {
	fullArgs := append([]string{"-C", dir}, args...)
	if _, err := m.runner.Run(ctx, dir, "git", fullArgs...); err != nil {
		logger.Log.Debug("git command failed", zap.Strings("args", args), zap.Error(err))
		return err
	}
	return nil
}

// parseRemotes splits `git remote` output into names, skipping blank lines.
func parseRemotes(output string) []string {
	var remotes []string
	for _, line := range strings.Split(output, "\n") {
		if name := strings.TrimSpace(line); name != "" {
			remotes = append(remotes, name)
		}
	}
	return remotes
}
