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
package workspace_test

import (
	"reflect"
	"testing"

	"bennypowers.dev/skipworthy/internal/mapfs"
	"bennypowers.dev/skipworthy/testutil"
	"bennypowers.dev/skipworthy/workspace"
)

func TestDiscover(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(mfs *mapfs.MapFileSystem)
		rootDir  string
		expected []workspace.Workspace
		wantErr  bool
	}{
		{
			name: "simple packages/* pattern with internal deps",
			setup: func(mfs *mapfs.MapFileSystem) {
				mfs.AddFile("/repo/package.json", `{"workspaces": ["packages/*"]}`, 0644)
				mfs.AddFile("/repo/packages/app/package.json", `{
					"name": "@myorg/app",
					"dependencies": {"@myorg/lib": "workspace:*", "lit": "^3.0.0"}
				}`, 0644)
				mfs.AddFile("/repo/packages/lib/package.json", `{"name": "@myorg/lib"}`, 0644)
			},
			rootDir: "/repo",
			expected: []workspace.Workspace{
				{Name: "@myorg/app", Dir: "packages/app", Dependencies: []string{"@myorg/lib"}},
				{Name: "@myorg/lib", Dir: "packages/lib"},
			},
		},
		{
			name: "external dependencies are not graph edges",
			setup: func(mfs *mapfs.MapFileSystem) {
				mfs.AddFile("/repo/package.json", `{"workspaces": ["packages/*"]}`, 0644)
				mfs.AddFile("/repo/packages/app/package.json", `{
					"name": "app",
					"dependencies": {"lit": "^3.0.0", "react": "^18.0.0"}
				}`, 0644)
			},
			rootDir: "/repo",
			expected: []workspace.Workspace{
				{Name: "app", Dir: "packages/app"},
			},
		},
		{
			name: "ignore globs from skipworthy block",
			setup: func(mfs *mapfs.MapFileSystem) {
				mfs.AddFile("/repo/package.json", `{"workspaces": ["packages/*"]}`, 0644)
				mfs.AddFile("/repo/packages/lib/package.json", `{
					"name": "lib",
					"skipworthy": {"ignore": ["docs/**"]}
				}`, 0644)
			},
			rootDir: "/repo",
			expected: []workspace.Workspace{
				{Name: "lib", Dir: "packages/lib", IgnoreGlobs: []string{"docs/**"}},
			},
		},
		{
			name: "multi-level double-star pattern",
			setup: func(mfs *mapfs.MapFileSystem) {
				mfs.AddFile("/repo/package.json", `{"workspaces": ["packages/**"]}`, 0644)
				mfs.AddFile("/repo/packages/app/package.json", `{"name": "app"}`, 0644)
				mfs.AddFile("/repo/packages/group/nested/package.json", `{"name": "nested"}`, 0644)
				mfs.AddFile("/repo/packages/app/node_modules/dep/package.json", `{"name": "dep"}`, 0644)
			},
			rootDir: "/repo",
			expected: []workspace.Workspace{
				{Name: "app", Dir: "packages/app"},
				{Name: "nested", Dir: "packages/group/nested"},
			},
		},
		{
			name: "wildcard in the middle of a pattern",
			setup: func(mfs *mapfs.MapFileSystem) {
				mfs.AddFile("/repo/package.json", `{"workspaces": ["apps/*/plugins/*"]}`, 0644)
				mfs.AddFile("/repo/apps/site/package.json", `{"name": "site"}`, 0644)
				mfs.AddFile("/repo/apps/site/plugins/auth/package.json", `{"name": "auth"}`, 0644)
			},
			rootDir: "/repo",
			expected: []workspace.Workspace{
				{Name: "auth", Dir: "apps/site/plugins/auth"},
			},
		},
		{
			name: "literal directory pattern",
			setup: func(mfs *mapfs.MapFileSystem) {
				mfs.AddFile("/repo/package.json", `{"workspaces": ["tools/cli"]}`, 0644)
				mfs.AddFile("/repo/tools/cli/package.json", `{"name": "cli"}`, 0644)
			},
			rootDir: "/repo",
			expected: []workspace.Workspace{
				{Name: "cli", Dir: "tools/cli"},
			},
		},
		{
			name: "directories without package.json are skipped",
			setup: func(mfs *mapfs.MapFileSystem) {
				mfs.AddFile("/repo/package.json", `{"workspaces": ["packages/*"]}`, 0644)
				mfs.AddFile("/repo/packages/app/package.json", `{"name": "app"}`, 0644)
				mfs.AddDir("/repo/packages/empty", 0755)
			},
			rootDir: "/repo",
			expected: []workspace.Workspace{
				{Name: "app", Dir: "packages/app"},
			},
		},
		{
			name: "no workspaces field",
			setup: func(mfs *mapfs.MapFileSystem) {
				mfs.AddFile("/repo/package.json", `{"name": "single"}`, 0644)
			},
			rootDir:  "/repo",
			expected: nil,
		},
		{
			name: "nameless workspace is a config error",
			setup: func(mfs *mapfs.MapFileSystem) {
				mfs.AddFile("/repo/package.json", `{"workspaces": ["packages/*"]}`, 0644)
				mfs.AddFile("/repo/packages/app/package.json", `{"version": "1.0.0"}`, 0644)
			},
			rootDir: "/repo",
			wantErr: true,
		},
		{
			name:    "missing root package.json",
			setup:   func(mfs *mapfs.MapFileSystem) {},
			rootDir: "/repo",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mfs := mapfs.New()
			tt.setup(mfs)

			got, err := workspace.Discover(mfs, tt.rootDir)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Discover() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Discover() error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Discover() = %+v, want %+v", got, tt.expected)
			}
		})
	}
}

func TestDiscoverFixture(t *testing.T) {
	mfs := testutil.NewFixtureFS(t, "monorepo", "/repo")

	workspaces, err := workspace.Discover(mfs, "/repo")
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}
	if len(workspaces) != 3 {
		t.Fatalf("Discover() found %d workspaces, want 3", len(workspaces))
	}

	g, err := workspace.NewGraph(workspaces)
	if err != nil {
		t.Fatalf("NewGraph() error on discovered workspaces: %v", err)
	}

	deps := g.TransitiveDependencies("@fixture/app")
	if !reflect.DeepEqual(deps, []string{"@fixture/lib"}) {
		t.Errorf("TransitiveDependencies(@fixture/app) = %v, want [@fixture/lib]", deps)
	}
}
