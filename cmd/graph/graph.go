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

// Package graph provides the graph diagnostics command for skipworthy.
package graph

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bennypowers.dev/skipworthy/fs"
	"bennypowers.dev/skipworthy/internal/output"
	"bennypowers.dev/skipworthy/workspace"
)

// Cmd is the graph command. It prints a workspace's transitive dependency
// closure, or with --dependents everything that would rebuild if the
// workspace changed.
var Cmd = &cobra.Command{
	Use:   "graph <workspace>",
	Short: "Print a workspace's transitive dependency closure",
	Example: `  # What does the app's build depend on?
  skipworthy graph @myorg/app

  # What rebuilds when the design system changes?
  skipworthy graph @myorg/tokens --dependents`,
	Args: cobra.ExactArgs(1),
	RunE: run,
}

func init() {
	Cmd.Flags().Bool("dependents", false, "Print transitive dependents instead of dependencies")
	Cmd.Flags().StringP("format", "f", "text", "Output format (text, json)")
}

func run(cmd *cobra.Command, args []string) error {
	target := args[0]
	osfs := fs.NewOSFileSystem()

	absRoot, err := filepath.Abs(viper.GetString("repo"))
	if err != nil {
		return fmt.Errorf("invalid repo directory: %w", err)
	}

	dependents, err := cmd.Flags().GetBool("dependents")
	if err != nil {
		return err
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}

	workspaces, err := workspace.Discover(osfs, absRoot)
	if err != nil {
		return fmt.Errorf("discovering workspaces: %w", err)
	}
	g, err := workspace.NewGraph(workspaces)
	if err != nil {
		return err
	}

	if _, ok := g.Workspace(target); !ok {
		return &workspace.ConfigError{Workspace: target, Reason: "unknown workspace"}
	}

	names := g.TransitiveDependencies(target)
	if dependents {
		names = g.TransitiveDependents(target)
	}

	return output.Names(osfs, names, format)
}
