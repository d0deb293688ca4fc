package duplicate

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/gitdup/internal/model"
)

func TestIsWithin(t *testing.T) {
	root := filepath.FromSlash("/a/repo")

	tests := []struct {
		child string
		want  bool
	}{
		{"/a/repo/sub", true},
		{"/a/repo/sub/deeper", true},
		{"/a/repo", false},
		{"/a/repo-dup", false},
		{"/a/repo2/sub", false},
		{"/a", false},
		{"/a/repo/..foo", true},
	}

	for _, tt := range tests {
		t.Run(tt.child, func(t *testing.T) {
			assert.Equal(t, tt.want, isWithin(root, filepath.FromSlash(tt.child)))
		})
	}
}

func TestValidateDestination(t *testing.T) {
	src := t.TempDir()
	parent := t.TempDir()

	empty := filepath.Join(parent, "empty")
	require.NoError(t, os.Mkdir(empty, 0o755))
	full := filepath.Join(parent, "full")
	writeFile(t, filepath.Join(full, ".hidden"), "x")
	file := filepath.Join(parent, "file")
	writeFile(t, file, "x")

	tests := []struct {
		name    string
		dest    string
		wantErr bool
	}{
		{"missing", filepath.Join(parent, "new", "deep"), false},
		{"empty dir", empty, false},
		{"dir with only a dotfile", full, true},
		{"regular file", file, true},
		{"same as source", src, true},
		{"same as source, unclean", src + string(filepath.Separator) + ".", true},
		{"inside source", filepath.Join(src, "copy"), true},
		{"parent of source", filepath.Dir(src), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateDestination(src, tt.dest)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, model.ExitInvalidDestination, model.ExitCodeOf(err))
		})
	}

	assert.NoDirExists(t, filepath.Join(parent, "new"), "validation must not create anything")
}

// TestValidateDestination_SymlinkIntoSource verifies that nesting is
// detected through a symlink pointing into the source.
func TestValidateDestination_SymlinkIntoSource(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require elevated privileges on Windows")
	}
	src := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(src, "inner"), 0o755))

	link := filepath.Join(t.TempDir(), "link")
	require.NoError(t, os.Symlink(filepath.Join(src, "inner"), link))

	err := validateDestination(src, filepath.Join(link, "copy"))
	require.Error(t, err)
	assert.Equal(t, model.ExitInvalidDestination, model.ExitCodeOf(err))
}

func TestResolvePath_MissingTail(t *testing.T) {
	base := t.TempDir()
	resolved, err := filepath.EvalSymlinks(base)
	require.NoError(t, err)

	got, err := resolvePath(filepath.Join(base, "a", "b"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(resolved, "a", "b"), got)
}
