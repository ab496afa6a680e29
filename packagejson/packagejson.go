/*
Copyright © 2026 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/
// Package packagejson provides parsing of the package.json fields skipworthy
// needs: the package name, workspace patterns, dependency maps, and the
// per-package skipworthy configuration block.
package packagejson

import (
	"encoding/json"

	"bennypowers.dev/skipworthy/fs"
)

// workspacesObjectFormat represents the object format for workspaces field.
// Used by yarn classic with nohoist: {"packages": [...], "nohoist": [...]}
type workspacesObjectFormat struct {
	Packages []string `json:"packages"`
}

// Config is the per-package "skipworthy" block.
type Config struct {
	// Ignore lists glob patterns, relative to the package directory, for
	// paths that never mark this package as affected (e.g. generated docs).
	Ignore []string `json:"ignore,omitempty"`
}

// PackageJSON represents the subset of package.json relevant for
// change-impact decisions.
type PackageJSON struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Dependencies    map[string]string `json:"dependencies,omitempty"`
	DevDependencies map[string]string `json:"devDependencies,omitempty"`
	RawWorkspaces   json.RawMessage   `json:"workspaces,omitempty"`
	Skipworthy      *Config           `json:"skipworthy,omitempty"`
}

// WorkspacePatterns returns the workspace glob patterns from the workspaces field.
// Handles both array format ["packages/*"] and object format {"packages": ["libs/*"]}.
func (pkg *PackageJSON) WorkspacePatterns() []string {
	if len(pkg.RawWorkspaces) == 0 {
		return nil
	}

	// Try array format first (most common)
	var patterns []string
	if err := json.Unmarshal(pkg.RawWorkspaces, &patterns); err == nil {
		return patterns
	}

	// Try object format with "packages" key (yarn classic with nohoist)
	var obj workspacesObjectFormat
	if err := json.Unmarshal(pkg.RawWorkspaces, &obj); err == nil {
		return obj.Packages
	}

	return nil
}

// HasWorkspaces returns true if the package has workspace patterns defined.
func (pkg *PackageJSON) HasWorkspaces() bool {
	return len(pkg.WorkspacePatterns()) > 0
}

// IgnoreGlobs returns the ignore patterns from the skipworthy config block,
// or nil when the block is absent.
func (pkg *PackageJSON) IgnoreGlobs() []string {
	if pkg.Skipworthy == nil {
		return nil
	}
	return pkg.Skipworthy.Ignore
}

// DeclaredDependencies returns the names of all packages this package
// declares in dependencies or devDependencies. devDependencies count because
// a change in a dev-only sibling (test utils, build tooling) can still change
// this package's build output.
func (pkg *PackageJSON) DeclaredDependencies() []string {
	names := make([]string, 0, len(pkg.Dependencies)+len(pkg.DevDependencies))
	for name := range pkg.Dependencies {
		names = append(names, name)
	}
	for name := range pkg.DevDependencies {
		if _, dup := pkg.Dependencies[name]; !dup {
			names = append(names, name)
		}
	}
	return names
}

// Parse parses package.json data.
func Parse(data []byte) (*PackageJSON, error) {
	var pkg PackageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, err
	}
	return &pkg, nil
}

// ParseFile parses a package.json file.
func ParseFile(fs fs.FileSystem, path string) (*PackageJSON, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}
