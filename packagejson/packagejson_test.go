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
package packagejson_test

import (
	"slices"
	"testing"

	"bennypowers.dev/skipworthy/internal/mapfs"
	"bennypowers.dev/skipworthy/packagejson"
)

func TestWorkspacePatterns(t *testing.T) {
	tests := []struct {
		name     string
		json     string
		expected []string
	}{
		{
			name:     "array format",
			json:     `{"name": "root", "workspaces": ["packages/*", "tools/cli"]}`,
			expected: []string{"packages/*", "tools/cli"},
		},
		{
			name:     "object format (yarn classic)",
			json:     `{"name": "root", "workspaces": {"packages": ["libs/*"], "nohoist": ["**/react"]}}`,
			expected: []string{"libs/*"},
		},
		{
			name:     "no workspaces",
			json:     `{"name": "root"}`,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkg, err := packagejson.Parse([]byte(tt.json))
			if err != nil {
				t.Fatalf("Parse() error: %v", err)
			}
			got := pkg.WorkspacePatterns()
			if !slices.Equal(got, tt.expected) {
				t.Errorf("WorkspacePatterns() = %v, want %v", got, tt.expected)
			}
			if pkg.HasWorkspaces() != (len(tt.expected) > 0) {
				t.Errorf("HasWorkspaces() = %v, want %v", pkg.HasWorkspaces(), len(tt.expected) > 0)
			}
		})
	}
}

func TestIgnoreGlobs(t *testing.T) {
	pkg, err := packagejson.Parse([]byte(`{
		"name": "@myorg/lib",
		"skipworthy": {"ignore": ["docs/**", "*.stories.ts"]}
	}`))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	expected := []string{"docs/**", "*.stories.ts"}
	if !slices.Equal(pkg.IgnoreGlobs(), expected) {
		t.Errorf("IgnoreGlobs() = %v, want %v", pkg.IgnoreGlobs(), expected)
	}
}

func TestIgnoreGlobsAbsent(t *testing.T) {
	pkg, err := packagejson.Parse([]byte(`{"name": "@myorg/lib"}`))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if got := pkg.IgnoreGlobs(); got != nil {
		t.Errorf("IgnoreGlobs() = %v, want nil", got)
	}
}

func TestDeclaredDependencies(t *testing.T) {
	pkg, err := packagejson.Parse([]byte(`{
		"name": "@myorg/app",
		"dependencies": {"@myorg/lib": "workspace:*", "lit": "^3.0.0"},
		"devDependencies": {"@myorg/test-utils": "workspace:*", "@myorg/lib": "workspace:*"}
	}`))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	got := pkg.DeclaredDependencies()
	slices.Sort(got)
	expected := []string{"@myorg/lib", "@myorg/test-utils", "lit"}
	if !slices.Equal(got, expected) {
		t.Errorf("DeclaredDependencies() = %v, want %v", got, expected)
	}
}

func TestParseFile(t *testing.T) {
	mfs := mapfs.New()
	mfs.AddFile("/repo/package.json", `{"name": "root", "workspaces": ["packages/*"]}`, 0644)

	pkg, err := packagejson.ParseFile(mfs, "/repo/package.json")
	if err != nil {
		t.Fatalf("ParseFile() error: %v", err)
	}
	if pkg.Name != "root" {
		t.Errorf("Name = %q, want %q", pkg.Name, "root")
	}
}

func TestParseInvalidJSON(t *testing.T) {
	if _, err := packagejson.Parse([]byte(`{not json`)); err == nil {
		t.Error("Parse() expected error for invalid JSON")
	}
}
