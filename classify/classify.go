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
// Package classify maps changed file paths to the workspaces they affect,
// honoring per-workspace ignore globs and a global ignore list.
package classify

import (
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"bennypowers.dev/skipworthy/vcs"
	"bennypowers.dev/skipworthy/workspace"
)

// RootBucket is the sentinel classification key for changed paths outside
// every workspace root (root-level tooling, lockfiles, CI config). Paths in
// this bucket affect every workspace. The name cannot collide with a
// package name: npm forbids angle brackets.
const RootBucket = "<root>"

// Options configures classification. The manifest set is injected rather
// than hard-coded because the "never ignorable" filenames are a package
// ecosystem convention, not a property of this engine.
type Options struct {
	// Manifests lists basenames of package manifests and lockfiles. Paths
	// with these basenames are never dropped by ignore globs: a dependency
	// version bump must never be silently skipped.
	Manifests []string

	// GlobalIgnores lists doublestar patterns for root-bucket paths that
	// affect nothing (e.g. "*.md" for root docs).
	GlobalIgnores []string
}

// Classification maps a workspace name (or RootBucket) to the changed
// paths that fell under it, repo-root-relative, in change-set order.
type Classification map[string][]string

// Classify buckets each changed path under the workspace whose root is its
// longest prefix. Paths matching a workspace's ignore globs are dropped
// unless their basename is a manifest; paths outside every workspace land
// in RootBucket unless a global ignore covers them. Ambiguity always
// resolves toward marking more workspaces affected, never fewer.
func Classify(cs vcs.ChangeSet, workspaces []workspace.Workspace, opts Options) (Classification, error) {
	result := make(Classification)

	for _, p := range cs.Paths {
		ws, matched := longestRootMatch(p, workspaces)
		if !matched {
			ignored, err := matchAny(opts.GlobalIgnores, p)
			if err != nil {
				return nil, err
			}
			if !ignored || IsManifest(p, opts.Manifests) {
				result[RootBucket] = append(result[RootBucket], p)
			}
			continue
		}

		rel := strings.TrimPrefix(p, ws.Dir+"/")
		ignored, err := matchAny(ws.IgnoreGlobs, rel)
		if err != nil {
			return nil, fmt.Errorf("workspace %s: %w", ws.Name, err)
		}
		if ignored && !IsManifest(p, opts.Manifests) {
			continue
		}
		result[ws.Name] = append(result[ws.Name], p)
	}

	return result, nil
}

// IsManifest reports whether the path's basename is in the injected
// manifest/lockfile set.
func IsManifest(p string, manifests []string) bool {
	base := path.Base(p)
	for _, m := range manifests {
		if base == m {
			return true
		}
	}
	return false
}

// longestRootMatch finds the workspace whose root dir is the longest prefix
// of the path. Roots are validated as non-overlapping at graph load, so at
// most one can match; the longest-prefix scan keeps the result correct even
// for roots that share a leading directory (packages/app vs packages/app-ui).
func longestRootMatch(p string, workspaces []workspace.Workspace) (workspace.Workspace, bool) {
	var best workspace.Workspace
	found := false
	for _, ws := range workspaces {
		if p != ws.Dir && !strings.HasPrefix(p, ws.Dir+"/") {
			continue
		}
		if !found || len(ws.Dir) > len(best.Dir) {
			best = ws
			found = true
		}
	}
	return best, found
}

// matchAny reports whether any doublestar pattern matches the path.
func matchAny(patterns []string, p string) (bool, error) {
	for _, pattern := range patterns {
		ok, err := doublestar.Match(pattern, p)
		if err != nil {
			return false, fmt.Errorf("ignore pattern %q: %w", pattern, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
