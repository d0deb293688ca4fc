package duplicate

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shinji-kodama/gitdup/internal/git"
	"github.com/shinji-kodama/gitdup/internal/model"
)

// validateSource checks that source is the root of a git working copy with
// its own .git directory.
func validateSource(g *git.Manager, source string) error {
	info, err := os.Stat(source)
	if err != nil {
		return model.WrapCLIError(model.ExitNotARepository, "cannot access source directory", err)
	}
	if !info.IsDir() {
		return model.NewCLIError(model.ExitNotARepository, fmt.Sprintf("source is not a directory: %s", source))
	}

	if g.IsWorktree(source) {
		return model.NewCLIError(model.ExitNotARepository,
			fmt.Sprintf("%s is a linked worktree or submodule; run gitdup from the main working copy", source))
	}
	if !g.IsRepository(source) {
		return model.NewCLIError(model.ExitNotARepository,
			fmt.Sprintf("not a git repository (no %s directory): %s", git.MetadataDir, source))
	}
	return nil
}

// validateDestination checks that dest may receive a copy of source. It
// never modifies the filesystem.
//
// dest is rejected when it is the source itself, lies inside the source,
// exists as anything other than a directory, or is a non-empty directory.
func validateDestination(source, dest string) error {
	src, err := resolvePath(source)
	if err != nil {
		return model.WrapCLIError(model.ExitInvalidDestination, "cannot resolve source path", err)
	}
	dst, err := resolvePath(dest)
	if err != nil {
		return model.WrapCLIError(model.ExitInvalidDestination, "cannot resolve destination path", err)
	}

	if src == dst {
		return model.NewCLIError(model.ExitInvalidDestination,
			fmt.Sprintf("destination is the source directory: %s", dest))
	}
	if isWithin(src, dst) {
		return model.NewCLIError(model.ExitInvalidDestination,
			fmt.Sprintf("destination %s is inside the source directory %s", dest, source))
	}

	info, err := os.Stat(dest)
	switch {
	case os.IsNotExist(err):
		return nil
	case err != nil:
		return model.WrapCLIError(model.ExitInvalidDestination, "cannot access destination", err)
	case !info.IsDir():
		return model.NewCLIError(model.ExitInvalidDestination,
			fmt.Sprintf("destination exists and is not a directory: %s", dest))
	}

	empty, err := isEmptyDir(dest)
	if err != nil {
		return model.WrapCLIError(model.ExitInvalidDestination, "cannot read destination", err)
	}
	if !empty {
		return model.NewCLIError(model.ExitInvalidDestination,
			fmt.Sprintf("destination directory is not empty: %s", dest))
	}
	return nil
}

// prepareDestination creates dest (and any missing parents).
func prepareDestination(dest string) error {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return model.WrapCLIError(model.ExitInvalidDestination, "failed to create destination directory", err)
	}
	return nil
}

// resolvePath returns the absolute form of path with symlinks resolved in
// its longest existing prefix. The missing tail is appended unchanged, so
// paths that do not exist yet still compare correctly against real ones.
func resolvePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	var missing []string
	cur := abs
	for {
		resolved, err := filepath.EvalSymlinks(cur)
		if err == nil {
			return filepath.Join(append([]string{resolved}, missing...)...), nil
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return abs, nil
		}
		missing = append([]string{filepath.Base(cur)}, missing...)
		cur = parent
	}
}

// isWithin reports whether child lies strictly below parent. Both paths
// must be absolute and clean. Containment is decided on the relative path,
// so "/a/repo-dup" is not considered inside "/a/repo".
func isWithin(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	if rel == "." || rel == ".." || filepath.IsAbs(rel) {
		return false
	}
	return !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func isEmptyDir(dir string) (bool, error) {
	f, err := os.Open(dir)
	if err != nil {
		return false, err
	}
	defer func() { _ = f.Close() }()

	_, err = f.Readdirnames(1)
	if err == io.EOF {
		return true, nil
	}
	return false, err
}
