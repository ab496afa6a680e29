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
// Package vcs resolves a git ref range into the set of changed file paths,
// with fallback policies for shallow clones and unreachable refs.
package vcs

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

// Provenance records how a ChangeSet's path list was derived. The decision
// engine uses it to decide how conservative the verdict must be.
type Provenance int

const (
	// ProvenanceDiffRange means the paths came from a diff between two
	// resolvable commits.
	ProvenanceDiffRange Provenance = iota
	// ProvenanceFallbackFull means the base ref was unreachable and the
	// paths came from a fallback ref, or no paths at all; verdicts derived
	// from it must not assert safety.
	ProvenanceFallbackFull
	// ProvenanceFallbackUncommitted means working-tree modifications were
	// merged into the path list.
	ProvenanceFallbackUncommitted
)

// String returns the provenance tag.
func (p Provenance) String() string {
	switch p {
	case ProvenanceDiffRange:
		return "diff-range"
	case ProvenanceFallbackFull:
		return "fallback-full"
	case ProvenanceFallbackUncommitted:
		return "fallback-uncommitted"
	default:
		return "unknown"
	}
}

// ChangeSet is a deduplicated, repository-root-relative list of changed
// file paths, slash-separated, plus the provenance of the list.
type ChangeSet struct {
	Paths      []string
	Provenance Provenance
}

// ErrUnresolvableRange signals that a diff range cannot be resolved in the
// local history (missing ref, shallow clone, no common ancestor). It is a
// soft condition: callers fall back rather than abort.
var ErrUnresolvableRange = errors.New("diff range not resolvable")

// Error is a fatal version-control failure: the repository cannot be
// queried at all.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("version control: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// DiffClient is the version-control collaborator. Implementations signal an
// unresolvable range with ErrUnresolvableRange and any total failure with
// *Error.
type DiffClient interface {
	// ChangedPaths lists paths changed between baseRef and headRef.
	ChangedPaths(ctx context.Context, baseRef, headRef string) ([]string, error)
	// UncommittedPaths lists working-tree modifications and untracked files.
	UncommittedPaths(ctx context.Context) ([]string, error)
}

// ResolveOptions configures change-set resolution.
type ResolveOptions struct {
	// BaseRef is the ref to diff against, typically the last successful
	// build ref or the main branch. Empty means no usable base.
	BaseRef string
	// HeadRef is the ref being built. Defaults to "HEAD".
	HeadRef string
	// FallbackRef is tried as a base when BaseRef is unresolvable, before
	// giving up on path-level knowledge.
	FallbackRef string
	// IncludeUncommitted merges working-tree modifications into the set.
	IncludeUncommitted bool
}

// Resolve converts a ref range into a ChangeSet.
//
// An unresolvable base degrades to FallbackRef, and failing that to an
// empty path list tagged ProvenanceFallbackFull: with no reliable history
// there is no credible changed-path list, and the provenance tag itself is
// what keeps the verdict conservative. Only a total version-control failure
// is returned as an error. An empty diff is valid.
func Resolve(ctx context.Context, client DiffClient, opts ResolveOptions) (ChangeSet, error) {
	headRef := opts.HeadRef
	if headRef == "" {
		headRef = "HEAD"
	}

	paths, provenance, err := rangePaths(ctx, client, opts.BaseRef, headRef, opts.FallbackRef)
	if err != nil {
		return ChangeSet{}, err
	}

	if opts.IncludeUncommitted {
		uncommitted, err := client.UncommittedPaths(ctx)
		if err != nil {
			return ChangeSet{}, err
		}
		if len(uncommitted) > 0 {
			paths = append(paths, uncommitted...)
			// fallback-full stays: it is the more conservative tag.
			if provenance == ProvenanceDiffRange {
				provenance = ProvenanceFallbackUncommitted
			}
		}
	}

	normalized, err := normalizePaths(paths)
	if err != nil {
		return ChangeSet{}, err
	}

	return ChangeSet{Paths: normalized, Provenance: provenance}, nil
}

// rangePaths tries the base...head diff, then the fallback ref, then gives
// up on path-level knowledge entirely.
func rangePaths(ctx context.Context, client DiffClient, baseRef, headRef, fallbackRef string) ([]string, Provenance, error) {
	if baseRef != "" {
		paths, err := client.ChangedPaths(ctx, baseRef, headRef)
		if err == nil {
			return paths, ProvenanceDiffRange, nil
		}
		if !errors.Is(err, ErrUnresolvableRange) {
			return nil, 0, err
		}
	}

	if fallbackRef != "" {
		paths, err := client.ChangedPaths(ctx, fallbackRef, headRef)
		if err == nil {
			return paths, ProvenanceFallbackFull, nil
		}
		if !errors.Is(err, ErrUnresolvableRange) {
			return nil, 0, err
		}
	}

	return nil, ProvenanceFallbackFull, nil
}

// normalizePaths cleans, slash-normalizes, and deduplicates paths,
// preserving first-seen order. A path escaping the repository root is a
// hard error: classification cannot be trusted with it.
func normalizePaths(paths []string) ([]string, error) {
	seen := make(map[string]bool, len(paths))
	result := make([]string, 0, len(paths))

	for _, p := range paths {
		cleaned := path.Clean(strings.ReplaceAll(p, "\\", "/"))
		if cleaned == "." || cleaned == "" {
			continue
		}
		if cleaned == ".." || strings.HasPrefix(cleaned, "../") || strings.HasPrefix(cleaned, "/") {
			return nil, fmt.Errorf("changed path %q escapes the repository root", p)
		}
		if !seen[cleaned] {
			seen[cleaned] = true
			result = append(result, cleaned)
		}
	}

	return result, nil
}
