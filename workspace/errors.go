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
	"strings"
)

// ConfigError reports malformed or inconsistent workspace metadata:
// duplicate names, unknown dependency references, or overlapping roots.
// It is fatal; no verdict can be computed from a bad graph.
type ConfigError struct {
	Workspace string // offending workspace name, if known
	Reason    string
}

func (e *ConfigError) Error() string {
	if e.Workspace == "" {
		return "workspace config: " + e.Reason
	}
	return fmt.Sprintf("workspace config: %s: %s", e.Workspace, e.Reason)
}

// CycleError reports a cycle in the declared dependency relation.
// Cycle holds the workspace names along the cycle, with the first
// name repeated at the end.
type CycleError struct {
	Cycle []string
}

func (e *CycleError) Error() string {
	return "workspace dependency cycle: " + strings.Join(e.Cycle, " -> ")
}
