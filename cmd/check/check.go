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

// Package check provides the check command for skipworthy.
package check

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bennypowers.dev/skipworthy/classify"
	"bennypowers.dev/skipworthy/decide"
	"bennypowers.dev/skipworthy/fs"
	"bennypowers.dev/skipworthy/internal/exitcode"
	"bennypowers.dev/skipworthy/internal/output"
	"bennypowers.dev/skipworthy/vcs"
	"bennypowers.dev/skipworthy/workspace"
)

// defaultManifests is the npm-ecosystem set of manifest and lockfile
// basenames that ignore globs can never drop. Extend with --manifest.
var defaultManifests = []string{
	"package.json",
	"package-lock.json",
	"yarn.lock",
	"pnpm-lock.yaml",
	"bun.lockb",
	"turbo.json",
}

// Cmd is the check cobra command that decides whether a workspace build can
// be skipped for the current change range.
var Cmd = &cobra.Command{
	Use:   "check <workspace>",
	Short: "Decide whether a workspace build can be skipped",
	Long: `Decide whether a workspace's build can be skipped because the current
change range cannot affect it.

Exit codes: 0 = build needed, 1 = build can be skipped, 2 = fatal error.`,
	Example: `  # Compare HEAD against the default branch
  skipworthy check @myorg/app

  # Compare against the last successful build ref instead
  skipworthy check @myorg/app --base $LAST_GREEN_SHA

  # Count uncommitted changes too
  skipworthy check @myorg/app --base origin/main --include-uncommitted

  # Force a build regardless of changes (manual rerun escape hatch)
  skipworthy check @myorg/app --force

  # Root-level markdown never triggers builds
  skipworthy check @myorg/app --base origin/main --global-ignore "*.md"`,
	Args: cobra.ExactArgs(1),
	RunE: run,
}

func init() {
	Cmd.Flags().String("base", "main", "Base ref to diff against (last green commit or default branch)")
	Cmd.Flags().String("head", "HEAD", "Head ref being built")
	Cmd.Flags().String("fallback-ref", "", "Ref to try when the base is unresolvable")
	Cmd.Flags().Bool("force", false, "Always report build needed")
	Cmd.Flags().Bool("include-uncommitted", false, "Count uncommitted working-tree changes")
	Cmd.Flags().StringArray("global-ignore", nil, "Root-level glob that affects nothing (can be repeated)")
	Cmd.Flags().StringArray("manifest", nil, "Additional never-ignorable manifest basename (can be repeated)")
	Cmd.Flags().StringP("format", "f", "text", "Output format (text, json)")

	_ = viper.BindPFlag("base", Cmd.Flags().Lookup("base"))
	_ = viper.BindPFlag("head", Cmd.Flags().Lookup("head"))
	_ = viper.BindPFlag("fallback-ref", Cmd.Flags().Lookup("fallback-ref"))
	_ = viper.BindPFlag("force", Cmd.Flags().Lookup("force"))
	_ = viper.BindPFlag("include-uncommitted", Cmd.Flags().Lookup("include-uncommitted"))
	_ = viper.BindPFlag("global-ignore", Cmd.Flags().Lookup("global-ignore"))
	_ = viper.BindPFlag("manifest", Cmd.Flags().Lookup("manifest"))
	_ = viper.BindPFlag("format", Cmd.Flags().Lookup("format"))
}

func run(cmd *cobra.Command, args []string) error {
	target := args[0]
	osfs := fs.NewOSFileSystem()

	absRoot, err := filepath.Abs(viper.GetString("repo"))
	if err != nil {
		return fmt.Errorf("invalid repo directory: %w", err)
	}

	format := viper.GetString("format")
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid format %q: must be 'text' or 'json'", format)
	}

	workspaces, err := workspace.Discover(osfs, absRoot)
	if err != nil {
		return fmt.Errorf("discovering workspaces: %w", err)
	}
	graph, err := workspace.NewGraph(workspaces)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	git := vcs.NewGitClient(absRoot)
	if !git.IsRepo(ctx) {
		return &vcs.Error{Op: "open", Err: fmt.Errorf("%s is not a git repository", absRoot)}
	}

	changeSet, err := vcs.Resolve(ctx, git, vcs.ResolveOptions{
		BaseRef:            viper.GetString("base"),
		HeadRef:            viper.GetString("head"),
		FallbackRef:        viper.GetString("fallback-ref"),
		IncludeUncommitted: viper.GetBool("include-uncommitted"),
	})
	if err != nil {
		return err
	}

	manifests := append([]string{}, defaultManifests...)
	manifests = append(manifests, viper.GetStringSlice("manifest")...)

	classification, err := classify.Classify(changeSet, workspaces, classify.Options{
		Manifests:     manifests,
		GlobalIgnores: viper.GetStringSlice("global-ignore"),
	})
	if err != nil {
		return err
	}

	verdict, err := decide.Decide(target, changeSet, classification, graph, decide.Options{
		ForceBuild: viper.GetBool("force"),
		Manifests:  manifests,
	})
	if err != nil {
		return err
	}

	if err := output.Verdict(osfs, verdict, format); err != nil {
		return err
	}

	if verdict.Action == decide.ActionSkip {
		return &exitcode.Error{Code: exitcode.Skip}
	}
	return nil
}
