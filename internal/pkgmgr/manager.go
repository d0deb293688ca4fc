package pkgmgr

import (
	"os"
	"path/filepath"

	"github.com/shinji-kodama/gitdup/internal/model"
)

// Manager describes a supported package manager.
type Manager struct {
	// Name is the manager name, also used as its executable.
	Name string

	// LockFiles are the lock files this manager writes, most specific first.
	LockFiles []string

	// FrozenArgs install exactly what the lock file pins.
	FrozenArgs []string

	// InstallArgs install (and possibly resolve) without a lock file.
	InstallArgs []string
}

var (
	npm = Manager{
		Name:        "npm",
		LockFiles:   []string{"package-lock.json", "npm-shrinkwrap.json"},
		FrozenArgs:  []string{"ci"},
		InstallArgs: []string{"install"},
	}
	pnpm = Manager{
		Name:        "pnpm",
		LockFiles:   []string{"pnpm-lock.yaml"},
		FrozenArgs:  []string{"install", "--frozen-lockfile"},
		InstallArgs: []string{"install"},
	}
	yarn = Manager{
		Name:        "yarn",
		LockFiles:   []string{"yarn.lock"},
		FrozenArgs:  []string{"install", "--frozen-lockfile"},
		InstallArgs: []string{"install"},
	}
	bun = Manager{
		Name:        "bun",
		LockFiles:   []string{"bun.lockb", "bun.lock"},
		FrozenArgs:  []string{"install", "--frozen-lockfile"},
		InstallArgs: []string{"install"},
	}
)

// Managers returns the supported managers in lock-file probe order:
// the binary-lock manager first, then the text-lock managers.
func Managers() []Manager {
	return []Manager{bun, pnpm, yarn, npm}
}

// Lookup returns the manager with the given name.
func Lookup(name string) (Manager, bool) {
	for _, m := range Managers() {
		if m.Name == name {
			return m, true
		}
	}
	return Manager{}, false
}

// LockFileIn returns the first of m's lock files present in dir.
func (m Manager) LockFileIn(dir string) (string, bool) {
	for _, lf := range m.LockFiles {
		if info, err := os.Stat(filepath.Join(dir, lf)); err == nil && !info.IsDir() {
			return lf, true
		}
	}
	return "", false
}

// Choice builds the install command for dir. The frozen form is used when
// one of m's lock files is present so duplication never silently upgrades
// dependencies.
func (m Manager) Choice(dir, rule string) model.PackageManagerChoice {
	args := m.InstallArgs
	if _, ok := m.LockFileIn(dir); ok {
		args = m.FrozenArgs
	}
	return model.PackageManagerChoice{
		Name:    m.Name,
		Command: m.Name,
		Args:    append([]string(nil), args...),
		Rule:    rule,
	}
}
