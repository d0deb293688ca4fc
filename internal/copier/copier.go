// Package copier performs the one-shot recursive copy of a working copy
// into its duplicate.
//
// Everything is copied, including dotfiles and the .git directory, because
// ignored local files (.env and friends) must survive duplication. Two
// kinds of exclusion exist:
//   - exact relative paths (the git index, which is rebuilt by
//     `git reset --hard` and would otherwise carry stale stat data)
//   - directory names excluded at any depth (node_modules for
//     package-based projects)
package copier

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/shinji-kodama/gitdup/internal/logger"
)

// GitIndexPaths are the transient git index artifacts that are never
// copied, relative to the repository root in slash form.
var GitIndexPaths = []string{".git/index", ".git/index.lock"}

// Options controls which entries CopyTree skips.
type Options struct {
	// ExcludePaths are relative paths (slash-separated) skipped exactly.
	ExcludePaths []string

	// ExcludeDirNames skips any entry with a path component equal to one
	// of these names, at any depth.
	ExcludeDirNames []string
}

// Stats summarizes a completed copy.
type Stats struct {
	Files    int
	Dirs     int
	Symlinks int
	Bytes    int64
	Skipped  int
}

// CopyTree copies the contents of srcDir into dstDir, which must already
// exist. Existing destination files are never overwritten: files are
// created with O_EXCL, so a collision is an error rather than a silent
// replacement.
//
// A symlinked srcDir is followed to its target. Symbolic links inside the
// tree are recreated as links (not followed). Sockets, pipes and device
// files cannot be meaningfully copied and are skipped with a warning. Any
// other error aborts the copy immediately.
func CopyTree(srcDir, dstDir string, opts Options) (Stats, error) {
	var stats Stats

	// filepath.Walk does not descend into a root that is a symlink.
	root, err := filepath.EvalSymlinks(srcDir)
	if err != nil {
		return stats, fmt.Errorf("failed to resolve source directory %s: %w", srcDir, err)
	}
	srcDir = root

	excludedPaths := make(map[string]bool, len(opts.ExcludePaths))
	for _, p := range opts.ExcludePaths {
		excludedPaths[filepath.FromSlash(p)] = true
	}

	err = filepath.Walk(srcDir, func(path string, info os.FileInfo, walkErr error) error {
		// If the Walk function itself encountered an error accessing a path
		// (e.g., permission denied), propagate it immediately.
		if walkErr != nil {
			return fmt.Errorf("error walking source directory at %s: %w", path, walkErr)
		}

		relPath, err := filepath.Rel(srcDir, path)
		if err != nil {
			return fmt.Errorf("failed to compute relative path for %s: %w", path, err)
		}

		// The root itself maps onto dstDir, which the caller created.
		if relPath == "." {
			return nil
		}

		if excludedPaths[relPath] || hasExcludedComponent(relPath, opts.ExcludeDirNames) {
			stats.Skipped++
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		dstPath := filepath.Join(dstDir, relPath)
		mode := info.Mode()

		switch {
		case mode&os.ModeSymlink != 0:
			if err := copySymlink(path, dstPath); err != nil {
				return err
			}
			stats.Symlinks++

		case mode.IsDir():
			// Owner rwx is forced so read-only source directories can still
			// be populated.
			if err := os.Mkdir(dstPath, mode.Perm()|0o700); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dstPath, err)
			}
			stats.Dirs++

		case mode.IsRegular():
			n, err := copyFile(path, dstPath, mode.Perm())
			if err != nil {
				return err
			}
			stats.Files++
			stats.Bytes += n

		default:
			logger.Log.Warn("skipping special file", zap.String("path", path), zap.String("mode", mode.String()))
			stats.Skipped++
		}

		return nil
	})

	return stats, err
}

// hasExcludedComponent reports whether any component of relPath equals one
// of names. Matching whole components (not prefixes) keeps "node_modules2"
// or "my_node_modules" from being excluded by "node_modules".
func hasExcludedComponent(relPath string, names []string) bool {
	if len(names) == 0 {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(relPath), "/") {
		for _, name := range names {
			if part == name {
				return true
			}
		}
	}
	return false
}

// copyFile streams src into a new file dst with the given permissions.
// It refuses to overwrite an existing dst.
func copyFile(src, dst string, perm fs.FileMode) (int64, error) {
	srcFile, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("failed to open source file %s: %w", src, err)
	}
	defer func() { _ = srcFile.Close() }()

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, perm)
	if err != nil {
		return 0, fmt.Errorf("failed to create destination file %s: %w", dst, err)
	}

	n, err := io.Copy(dstFile, srcFile)
	if err != nil {
		_ = dstFile.Close()
		return n, fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}

	// Some filesystems only report a failed flush at close.
	if err := dstFile.Close(); err != nil {
		return n, fmt.Errorf("failed to close %s: %w", dst, err)
	}
	return n, nil
}

// copySymlink recreates the link at src as dst with the same target.
func copySymlink(src, dst string) error {
	target, err := os.Readlink(src)
	if err != nil {
		return fmt.Errorf("failed to read symlink %s: %w", src, err)
	}
	if err := os.Symlink(target, dst); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("refusing to overwrite %s: %w", dst, err)
		}
		return fmt.Errorf("failed to create symlink %s: %w", dst, err)
	}
	return nil
}
