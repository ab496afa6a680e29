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
// Package workspace models the monorepo's packages and their declared
// internal dependency graph.
package workspace

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"bennypowers.dev/skipworthy/fs"
	"bennypowers.dev/skipworthy/packagejson"
)

// Workspace describes one independently buildable package in the monorepo.
type Workspace struct {
	// Name is the unique package name from its package.json.
	Name string

	// Dir is the package root directory, relative to the repository root,
	// slash-separated.
	Dir string

	// Dependencies lists the names of sibling workspaces this package
	// declares in dependencies or devDependencies.
	Dependencies []string

	// IgnoreGlobs lists doublestar patterns, relative to Dir, for paths
	// that never mark this workspace as affected.
	IgnoreGlobs []string
}

// Discover finds all workspaces based on the workspaces field in the root
// package.json. Dependency lists are filtered to names of sibling
// workspaces; external packages are not part of the graph.
// Returns nil if no workspaces are defined.
func Discover(fsys fs.FileSystem, rootDir string) ([]Workspace, error) {
	rootPkgPath := filepath.Join(rootDir, "package.json")
	rootPkg, err := packagejson.ParseFile(fsys, rootPkgPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", rootPkgPath, err)
	}

	patterns := rootPkg.WorkspacePatterns()
	if len(patterns) == 0 {
		return nil, nil
	}

	type member struct {
		ws       Workspace
		declared []string
	}
	var members []member

	for _, pattern := range patterns {
		dirs, err := expandWorkspacePattern(fsys, rootDir, pattern)
		if err != nil {
			continue // skip patterns that can't be expanded
		}

		for _, dir := range dirs {
			pkg, err := packagejson.ParseFile(fsys, filepath.Join(dir, "package.json"))
			if err != nil {
				continue // skip directories without valid package.json
			}
			if pkg.Name == "" {
				return nil, &ConfigError{Reason: fmt.Sprintf("package at %s has no name", dir)}
			}

			rel, err := filepath.Rel(rootDir, dir)
			if err != nil {
				return nil, err
			}

			members = append(members, member{
				ws: Workspace{
					Name:        pkg.Name,
					Dir:         filepath.ToSlash(rel),
					IgnoreGlobs: pkg.IgnoreGlobs(),
				},
				declared: pkg.DeclaredDependencies(),
			})
		}
	}

	names := make(map[string]bool, len(members))
	for _, m := range members {
		names[m.ws.Name] = true
	}

	workspaces := make([]Workspace, 0, len(members))
	for _, m := range members {
		for _, dep := range m.declared {
			if names[dep] && dep != m.ws.Name {
				m.ws.Dependencies = append(m.ws.Dependencies, dep)
			}
		}
		sort.Strings(m.ws.Dependencies)
		workspaces = append(workspaces, m.ws)
	}

	return workspaces, nil
}

// expandWorkspacePattern expands a workspace glob to the matching directories
// under rootDir. Literal entries resolve directly; anything else is matched
// with doublestar against the root-relative path of every directory, so the
// multi-level forms yarn and pnpm accept ("packages/**", "apps/*/plugins/*")
// work too.
func expandWorkspacePattern(fsys fs.FileSystem, rootDir, pattern string) ([]string, error) {
	pattern = strings.TrimSuffix(pattern, "/")

	if !strings.ContainsAny(pattern, "*?[{") {
		fullPath := filepath.Join(rootDir, pattern)
		if fsys.Exists(fullPath) {
			return []string{fullPath}, nil
		}
		return nil, nil
	}

	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("workspace pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}

	var dirs []string
	var walk func(rel string) error
	walk = func(rel string) error {
		entries, err := fsys.ReadDir(filepath.Join(rootDir, rel))
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") || entry.Name() == "node_modules" {
				continue
			}
			child := entry.Name()
			if rel != "" {
				child = rel + "/" + entry.Name()
			}
			if ok, _ := doublestar.Match(pattern, child); ok {
				dirs = append(dirs, filepath.Join(rootDir, child))
			}
			if err := walk(child); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(""); err != nil {
		return nil, err
	}
	return dirs, nil
}
