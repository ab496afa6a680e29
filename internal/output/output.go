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

// Package output provides shared output utilities for skipworthy CLI commands.
package output

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"bennypowers.dev/skipworthy/decide"
	"bennypowers.dev/skipworthy/fs"
)

// Verdict formats and outputs a verdict to stdout or a file.
// If viper's "output" flag is set, writes to that file; otherwise prints to stdout.
func Verdict(osfs fs.FileSystem, v decide.Verdict, format string) error {
	var rendered string
	switch format {
	case "json":
		data, err := json.Marshal(map[string]any{
			"target": v.Target,
			"action": v.Action.String(),
			"reason": v.Reason.String(),
			"paths":  v.Paths,
		})
		if err != nil {
			return fmt.Errorf("marshaling verdict: %w", err)
		}
		rendered = string(data)
	default:
		rendered = v.Explain()
	}
	return write(osfs, rendered)
}

// Names formats and outputs a list of workspace names, one per line in text
// format or as a JSON array.
func Names(osfs fs.FileSystem, names []string, format string) error {
	var rendered string
	switch format {
	case "json":
		data, err := json.Marshal(names)
		if err != nil {
			return fmt.Errorf("marshaling names: %w", err)
		}
		rendered = string(data)
	default:
		rendered = strings.Join(names, "\n")
	}
	return write(osfs, rendered)
}

func write(osfs fs.FileSystem, rendered string) error {
	if outputPath := viper.GetString("output"); outputPath != "" {
		return osfs.WriteFile(outputPath, []byte(rendered+"\n"), 0644)
	}
	fmt.Println(rendered)
	return nil
}
