package duplicate

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// maxSuffixAttempts bounds the numbered candidates tried before falling
// back to a timestamped name.
const maxSuffixAttempts = 1000

// timestampLayout formats the fallback suffix, e.g. 20240501-134501.
const timestampLayout = "20060102-150405"

// Resolver picks a default destination next to the source directory.
//
// The result is advisory: another process may create the directory between
// Resolve and validation, which then rejects it.
type Resolver struct {
	// Exists reports whether a path is taken. Defaults to an os.Lstat probe.
	Exists func(path string) bool

	// Now supplies the clock for the timestamp fallback.
	Now func() time.Time
}

// NewResolver creates a Resolver backed by the real filesystem and clock.
func NewResolver() *Resolver {
	return &Resolver{
		Exists: func(path string) bool {
			_, err := os.Lstat(path)
			return err == nil
		},
		Now: time.Now,
	}
}

// Resolve returns the first free sibling of source among
//
//	<base>-dup, <base>-dup-1, ..., <base>-dup-1000
//
// and <base>-dup-<timestamp> when all of those are taken.
func (r *Resolver) Resolve(source string) string {
	parent := filepath.Dir(source)
	prefix := filepath.Base(source) + "-dup"

	candidate := filepath.Join(parent, prefix)
	if !r.Exists(candidate) {
		return candidate
	}

	for i := 1; i <= maxSuffixAttempts; i++ {
		candidate = filepath.Join(parent, prefix+"-"+strconv.Itoa(i))
		if !r.Exists(candidate) {
			return candidate
		}
	}

	return filepath.Join(parent, prefix+"-"+r.Now().Format(timestampLayout))
}
