// Package pkgmgr detects the package manager of a package-based project
// and builds its install command.
//
// A project is package-based when a package.json manifest sits at its
// root. Its installed dependencies live in node_modules, which is never
// copied into a duplicate and is re-created by running the install
// command there instead.
//
// package.json is parsed with github.com/tidwall/jsonc so that manifests
// with comments or trailing commas (accepted by several tools) still yield
// their packageManager field.
package pkgmgr

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
)

// ManifestFile is the manifest whose presence makes a project package-based.
const ManifestFile = "package.json"

// DependencyDir is the installed-dependency directory excluded from copies.
const DependencyDir = "node_modules"

// Manifest holds the package.json fields gitdup cares about. Other fields
// are silently ignored during parsing.
type Manifest struct {
	// Name is the package name.
	Name string `json:"name,omitempty"`

	// PackageManager is the Corepack declaration, e.g. "pnpm@9.1.0" or
	// "yarn@4.1.0+sha512.abc".
	PackageManager string `json:"packageManager,omitempty"`
}

// IsPackageProject reports whether dir has a package.json at its root.
func IsPackageProject(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, ManifestFile))
	return err == nil && !info.IsDir()
}

// LoadManifest reads and parses dir/package.json.
func LoadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, ManifestFile)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var m Manifest
	if err := json.Unmarshal(jsonc.ToJSON(data), &m); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &m, nil
}

// DeclaredManager splits the packageManager field into name and version.
// ok is false when the field is empty or has no name before the "@".
func (m *Manifest) DeclaredManager() (name, version string, ok bool) {
	decl := strings.TrimSpace(m.PackageManager)
	if decl == "" {
		return "", "", false
	}

	name, version, _ = strings.Cut(decl, "@")
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", false
	}

	// Drop the "+sha512..." integrity suffix Corepack allows.
	version, _, _ = strings.Cut(version, "+")
	return name, version, true
}
