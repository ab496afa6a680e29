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

// Package exitcode defines the process exit codes CI scripting branches on.
package exitcode

import "fmt"

const (
	// Build means the target workspace must be built.
	Build = 0
	// Skip means the build can be skipped. Reserved for exactly this case
	// so CI can distinguish "skip" from a failure.
	Skip = 1
	// Fatal means a configuration or version-control error; no verdict was
	// produced.
	Fatal = 2
)

// Error carries a specific exit code out through cobra's error return.
type Error struct {
	Code int
}

func (e *Error) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}
