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
package workspace

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
)

// Graph is the monorepo's workspace dependency graph: adjacency in both
// directions plus memoized transitive closures. It is built once per
// invocation and immutable thereafter.
type Graph struct {
	workspaces map[string]Workspace

	// dependsOn maps workspace name -> set of workspace names it depends on
	dependsOn map[string]map[string]bool

	// dependents maps workspace name -> set of workspaces that depend on it
	dependents map[string]map[string]bool

	// closure memoization; guarded because cobra commands may in principle
	// share a graph, and memoizing must not change observable results
	mu                sync.Mutex
	depClosure        map[string][]string
	dependentsClosure map[string][]string
}

// NewGraph builds a Graph from discovered workspaces. It fails with
// *ConfigError on a duplicate name, a dependency on an unknown workspace,
// or overlapping workspace roots, and with *CycleError if the dependency
// relation is cyclic.
func NewGraph(workspaces []Workspace) (*Graph, error) {
	g := &Graph{
		workspaces:        make(map[string]Workspace, len(workspaces)),
		dependsOn:         make(map[string]map[string]bool, len(workspaces)),
		dependents:        make(map[string]map[string]bool, len(workspaces)),
		depClosure:        make(map[string][]string),
		dependentsClosure: make(map[string][]string),
	}

	for _, ws := range workspaces {
		if ws.Name == "" {
			return nil, &ConfigError{Reason: fmt.Sprintf("workspace at %q has no name", ws.Dir)}
		}
		if _, dup := g.workspaces[ws.Name]; dup {
			return nil, &ConfigError{Workspace: ws.Name, Reason: "duplicate workspace name"}
		}
		g.workspaces[ws.Name] = ws
	}

	if err := validateRoots(workspaces); err != nil {
		return nil, err
	}

	for _, ws := range workspaces {
		for _, dep := range ws.Dependencies {
			if _, known := g.workspaces[dep]; !known {
				return nil, &ConfigError{
					Workspace: ws.Name,
					Reason:    fmt.Sprintf("depends on unknown workspace %q", dep),
				}
			}
			if g.dependsOn[ws.Name] == nil {
				g.dependsOn[ws.Name] = make(map[string]bool)
			}
			g.dependsOn[ws.Name][dep] = true

			if g.dependents[dep] == nil {
				g.dependents[dep] = make(map[string]bool)
			}
			g.dependents[dep][ws.Name] = true
		}
	}

	if cycle := g.findCycle(); cycle != nil {
		return nil, &CycleError{Cycle: cycle}
	}

	return g, nil
}

// validateRoots rejects nested or duplicate workspace roots. Longest-prefix
// path classification is only unambiguous when roots don't overlap.
func validateRoots(workspaces []Workspace) error {
	dirs := make([]Workspace, len(workspaces))
	copy(dirs, workspaces)
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Dir < dirs[j].Dir })

	for i := 1; i < len(dirs); i++ {
		prev, cur := dirs[i-1], dirs[i]
		if prev.Dir == cur.Dir {
			return &ConfigError{
				Workspace: cur.Name,
				Reason:    fmt.Sprintf("root %q is also the root of %q", cur.Dir, prev.Name),
			}
		}
		if prev.Dir == "." || strings.HasPrefix(cur.Dir, prev.Dir+"/") {
			return &ConfigError{
				Workspace: cur.Name,
				Reason:    fmt.Sprintf("root %q is nested inside %q (workspace %q)", cur.Dir, prev.Dir, prev.Name),
			}
		}
	}
	return nil
}

// findCycle runs a three-color depth-first traversal over the dependency
// relation and returns the first cycle found, or nil.
func (g *Graph) findCycle() []string {
	const (
		white = iota // unvisited
		gray         // on the current DFS path
		black        // fully explored
	)

	color := make(map[string]int, len(g.workspaces))
	var stack []string

	var visit func(name string) []string
	visit = func(name string) []string {
		color[name] = gray
		stack = append(stack, name)

		deps := make([]string, 0, len(g.dependsOn[name]))
		for dep := range g.dependsOn[name] {
			deps = append(deps, dep)
		}
		slices.Sort(deps) // deterministic error messages

		for _, dep := range deps {
			switch color[dep] {
			case gray:
				// Found a back edge: slice the stack from dep onward.
				start := slices.Index(stack, dep)
				cycle := append(slices.Clone(stack[start:]), dep)
				return cycle
			case white:
				if cycle := visit(dep); cycle != nil {
					return cycle
				}
			}
		}

		stack = stack[:len(stack)-1]
		color[name] = black
		return nil
	}

	names := make([]string, 0, len(g.workspaces))
	for name := range g.workspaces {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		if color[name] == white {
			if cycle := visit(name); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

// Workspace returns the workspace with the given name.
func (g *Graph) Workspace(name string) (Workspace, bool) {
	ws, ok := g.workspaces[name]
	return ws, ok
}

// Workspaces returns all workspaces sorted by name.
func (g *Graph) Workspaces() []Workspace {
	result := make([]Workspace, 0, len(g.workspaces))
	for _, ws := range g.workspaces {
		result = append(result, ws)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// TransitiveDependencies returns all workspaces the named workspace depends
// on, directly or indirectly. A change in any of them can change this
// workspace's build output.
func (g *Graph) TransitiveDependencies(name string) []string {
	return g.closure(name, g.dependsOn, g.depClosure)
}

// TransitiveDependents returns all workspaces that directly or indirectly
// depend on the named workspace: everything that would need rebuilding if it
// changes.
func (g *Graph) TransitiveDependents(name string) []string {
	return g.closure(name, g.dependents, g.dependentsClosure)
}

// closure computes a breadth-first reachability set over the given adjacency,
// memoized per graph instance since the graph is immutable.
func (g *Graph) closure(name string, adjacency map[string]map[string]bool, memo map[string][]string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if cached, ok := memo[name]; ok {
		return slices.Clone(cached)
	}

	visited := make(map[string]bool)
	queue := []string{name}
	var result []string

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for next := range adjacency[current] {
			if !visited[next] {
				visited[next] = true
				result = append(result, next)
				queue = append(queue, next)
			}
		}
	}

	slices.Sort(result)
	memo[name] = result
	return slices.Clone(result)
}
