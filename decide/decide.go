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
// Package decide combines the workspace graph's transitive closure with the
// path classification to produce the build-or-skip verdict for one target.
//
// The ordering of checks encodes the engine's one non-negotiable policy:
// unneeded builds are an acceptable cost, skipped-but-needed builds are the
// failure this tool exists to prevent. Every uncertain branch resolves to
// build.
package decide

import (
	"fmt"
	"slices"
	"strings"

	"bennypowers.dev/skipworthy/classify"
	"bennypowers.dev/skipworthy/vcs"
	"bennypowers.dev/skipworthy/workspace"
)

// Action is the verdict's build-or-skip outcome.
type Action int

const (
	// ActionBuild means the change set can affect the target workspace.
	ActionBuild Action = iota
	// ActionSkip means no relevant change reaches the target workspace.
	ActionSkip
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case ActionBuild:
		return "build"
	case ActionSkip:
		return "skip"
	default:
		return "unknown"
	}
}

// Reason classifies why a verdict was reached.
type Reason int

const (
	// DirectChange: a changed path falls under the target's root, or a
	// root-level path affects every workspace.
	DirectChange Reason = iota
	// TransitiveChange: a changed path falls under a workspace the target
	// transitively depends on.
	TransitiveChange
	// LockfileChange: a manifest or lockfile under the target's root changed.
	LockfileChange
	// NoRelevantChange: nothing in the change set reaches the target.
	NoRelevantChange
	// ForcedBuild: the caller requested a build regardless of changes.
	ForcedBuild
	// InsufficientHistory: the change set came from a history fallback, so
	// the engine refuses to assert safety.
	InsufficientHistory
)

// String returns the reason code.
func (r Reason) String() string {
	switch r {
	case DirectChange:
		return "direct-change"
	case TransitiveChange:
		return "transitive-change"
	case LockfileChange:
		return "lockfile-change"
	case NoRelevantChange:
		return "no-relevant-change"
	case ForcedBuild:
		return "forced-build"
	case InsufficientHistory:
		return "insufficient-history"
	default:
		return "unknown"
	}
}

// Options configures the decision.
type Options struct {
	// ForceBuild short-circuits to ActionBuild, the escape hatch for manual
	// CI reruns.
	ForceBuild bool

	// Manifests is the same injected manifest/lockfile basename set the
	// classifier used.
	Manifests []string
}

// Verdict is the engine's final decision for one target workspace, produced
// fresh per invocation.
type Verdict struct {
	Target string
	Action Action
	Reason Reason
	// Paths lists the changed paths that triggered the verdict, if any.
	Paths []string
}

// Decide computes the verdict for the target workspace. It is a pure
// function of its inputs: no hidden state, identical inputs yield identical
// verdicts, and adding changed paths can never flip a build into a skip.
func Decide(target string, cs vcs.ChangeSet, cls classify.Classification, g *workspace.Graph, opts Options) (Verdict, error) {
	if _, ok := g.Workspace(target); !ok {
		return Verdict{}, &workspace.ConfigError{Workspace: target, Reason: "unknown workspace"}
	}

	if opts.ForceBuild {
		return Verdict{Target: target, Action: ActionBuild, Reason: ForcedBuild}, nil
	}

	if rootPaths := cls[classify.RootBucket]; len(rootPaths) > 0 {
		return Verdict{Target: target, Action: ActionBuild, Reason: DirectChange, Paths: rootPaths}, nil
	}

	if matched := cls[target]; len(matched) > 0 {
		reason := DirectChange
		for _, p := range matched {
			if classify.IsManifest(p, opts.Manifests) {
				reason = LockfileChange
				break
			}
		}
		return Verdict{Target: target, Action: ActionBuild, Reason: reason, Paths: matched}, nil
	}

	var viaDeps []string
	for _, dep := range g.TransitiveDependencies(target) {
		viaDeps = append(viaDeps, cls[dep]...)
	}
	if len(viaDeps) > 0 {
		slices.Sort(viaDeps)
		return Verdict{Target: target, Action: ActionBuild, Reason: TransitiveChange, Paths: viaDeps}, nil
	}

	if cs.Provenance == vcs.ProvenanceFallbackFull {
		return Verdict{Target: target, Action: ActionBuild, Reason: InsufficientHistory}, nil
	}

	return Verdict{Target: target, Action: ActionSkip, Reason: NoRelevantChange}, nil
}

// Explain returns the single human-readable status line for a verdict.
func (v Verdict) Explain() string {
	switch {
	case len(v.Paths) == 0:
		return fmt.Sprintf("%s %s: %s", v.Action, v.Target, v.Reason)
	case len(v.Paths) <= 3:
		return fmt.Sprintf("%s %s: %s (%s)", v.Action, v.Target, v.Reason, strings.Join(v.Paths, ", "))
	default:
		return fmt.Sprintf("%s %s: %s (%s and %d more)", v.Action, v.Target, v.Reason, strings.Join(v.Paths[:3], ", "), len(v.Paths)-3)
	}
}
