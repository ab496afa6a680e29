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
package decide_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"bennypowers.dev/skipworthy/classify"
	"bennypowers.dev/skipworthy/decide"
	"bennypowers.dev/skipworthy/vcs"
	"bennypowers.dev/skipworthy/workspace"
)

var manifests = []string{"package.json", "package-lock.json", "yarn.lock"}

// appLibGraph builds the canonical app -> lib graph plus an unrelated
// workspace.
func appLibGraph(t *testing.T) *workspace.Graph {
	t.Helper()
	g, err := workspace.NewGraph([]workspace.Workspace{
		{Name: "app", Dir: "packages/app", Dependencies: []string{"lib"}},
		{Name: "lib", Dir: "packages/lib"},
		{Name: "other", Dir: "packages/other"},
	})
	if err != nil {
		t.Fatalf("NewGraph() error: %v", err)
	}
	return g
}

// classifyPaths runs the real classifier so decide tests exercise the same
// pipeline the CLI does.
func classifyPaths(t *testing.T, paths []string, g *workspace.Graph) classify.Classification {
	t.Helper()
	cls, err := classify.Classify(vcs.ChangeSet{Paths: paths}, g.Workspaces(), classify.Options{Manifests: manifests})
	if err != nil {
		t.Fatalf("Classify() error: %v", err)
	}
	return cls
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		paths      []string
		provenance vcs.Provenance
		opts       decide.Options
		wantAction decide.Action
		wantReason decide.Reason
	}{
		{
			name:       "force build wins over everything",
			target:     "app",
			paths:      nil,
			opts:       decide.Options{ForceBuild: true, Manifests: manifests},
			wantAction: decide.ActionBuild,
			wantReason: decide.ForcedBuild,
		},
		{
			name:       "empty change set skips",
			target:     "app",
			paths:      nil,
			opts:       decide.Options{Manifests: manifests},
			wantAction: decide.ActionSkip,
			wantReason: decide.NoRelevantChange,
		},
		{
			name:       "direct change in target",
			target:     "app",
			paths:      []string{"packages/app/src/index.ts"},
			opts:       decide.Options{Manifests: manifests},
			wantAction: decide.ActionBuild,
			wantReason: decide.DirectChange,
		},
		{
			name:       "lockfile change in target",
			target:     "app",
			paths:      []string{"packages/app/package.json"},
			opts:       decide.Options{Manifests: manifests},
			wantAction: decide.ActionBuild,
			wantReason: decide.LockfileChange,
		},
		{
			name:       "transitive change through dependency",
			target:     "app",
			paths:      []string{"packages/lib/src/index.ts"},
			opts:       decide.Options{Manifests: manifests},
			wantAction: decide.ActionBuild,
			wantReason: decide.TransitiveChange,
		},
		{
			name:       "unrelated workspace change skips",
			target:     "app",
			paths:      []string{"packages/other/README.md"},
			opts:       decide.Options{Manifests: manifests},
			wantAction: decide.ActionSkip,
			wantReason: decide.NoRelevantChange,
		},
		{
			name:       "root lockfile affects everyone",
			target:     "app",
			paths:      []string{"package-lock.json"},
			opts:       decide.Options{Manifests: manifests},
			wantAction: decide.ActionBuild,
			wantReason: decide.DirectChange,
		},
		{
			name:       "fallback-full provenance builds with no matches",
			target:     "app",
			paths:      nil,
			provenance: vcs.ProvenanceFallbackFull,
			opts:       decide.Options{Manifests: manifests},
			wantAction: decide.ActionBuild,
			wantReason: decide.InsufficientHistory,
		},
		{
			name:       "dependency is unaffected by its dependents",
			target:     "lib",
			paths:      []string{"packages/app/src/index.ts"},
			opts:       decide.Options{Manifests: manifests},
			wantAction: decide.ActionSkip,
			wantReason: decide.NoRelevantChange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := appLibGraph(t)
			cs := vcs.ChangeSet{Paths: tt.paths, Provenance: tt.provenance}
			cls := classifyPaths(t, tt.paths, g)

			verdict, err := decide.Decide(tt.target, cs, cls, g, tt.opts)
			if err != nil {
				t.Fatalf("Decide() error: %v", err)
			}
			if verdict.Action != tt.wantAction {
				t.Errorf("Action = %v, want %v", verdict.Action, tt.wantAction)
			}
			if verdict.Reason != tt.wantReason {
				t.Errorf("Reason = %v, want %v", verdict.Reason, tt.wantReason)
			}
		})
	}
}

func TestDecideUnknownTarget(t *testing.T) {
	g := appLibGraph(t)

	_, err := decide.Decide("missing", vcs.ChangeSet{}, classify.Classification{}, g, decide.Options{})

	var configErr *workspace.ConfigError
	if !errors.As(err, &configErr) {
		t.Errorf("Decide() error = %v, want *ConfigError", err)
	}
}

func TestDecideIdempotent(t *testing.T) {
	g := appLibGraph(t)
	paths := []string{"packages/lib/src/index.ts"}
	cs := vcs.ChangeSet{Paths: paths}
	cls := classifyPaths(t, paths, g)
	opts := decide.Options{Manifests: manifests}

	first, err := decide.Decide("app", cs, cls, g, opts)
	if err != nil {
		t.Fatalf("Decide() error: %v", err)
	}
	second, err := decide.Decide("app", cs, cls, g, opts)
	if err != nil {
		t.Fatalf("Decide() error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Decide() not idempotent: %+v vs %+v", first, second)
	}
}

// TestDecideMonotonic checks that adding changed paths never turns a build
// verdict into a skip.
func TestDecideMonotonic(t *testing.T) {
	g := appLibGraph(t)
	opts := decide.Options{Manifests: manifests}

	base := []string{"packages/lib/src/index.ts"}
	extra := [][]string{
		{"packages/other/src/x.ts"},
		{"README.md"},
		{"packages/app/package.json"},
	}

	baseVerdict, err := decide.Decide("app", vcs.ChangeSet{Paths: base}, classifyPaths(t, base, g), g, opts)
	if err != nil {
		t.Fatalf("Decide() error: %v", err)
	}
	if baseVerdict.Action != decide.ActionBuild {
		t.Fatalf("base verdict = %v, want build", baseVerdict.Action)
	}

	grown := base
	for _, add := range extra {
		grown = append(grown, add...)
		verdict, err := decide.Decide("app", vcs.ChangeSet{Paths: grown}, classifyPaths(t, grown, g), g, opts)
		if err != nil {
			t.Fatalf("Decide() error: %v", err)
		}
		if verdict.Action != decide.ActionBuild {
			t.Errorf("adding %v flipped build to skip", add)
		}
	}
}

func TestVerdictExplain(t *testing.T) {
	tests := []struct {
		name     string
		verdict  decide.Verdict
		contains []string
	}{
		{
			name:     "no paths",
			verdict:  decide.Verdict{Target: "app", Action: decide.ActionSkip, Reason: decide.NoRelevantChange},
			contains: []string{"skip", "app", "no-relevant-change"},
		},
		{
			name: "few paths listed",
			verdict: decide.Verdict{
				Target: "app",
				Action: decide.ActionBuild,
				Reason: decide.DirectChange,
				Paths:  []string{"packages/app/a.ts", "packages/app/b.ts"},
			},
			contains: []string{"build", "direct-change", "packages/app/a.ts", "packages/app/b.ts"},
		},
		{
			name: "many paths elided",
			verdict: decide.Verdict{
				Target: "app",
				Action: decide.ActionBuild,
				Reason: decide.DirectChange,
				Paths:  []string{"a", "b", "c", "d", "e"},
			},
			contains: []string{"and 2 more"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.verdict.Explain()
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("Explain() = %q, want it to contain %q", got, want)
				}
			}
		})
	}
}
