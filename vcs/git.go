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
package vcs

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// GitClient implements DiffClient using the git CLI.
type GitClient struct {
	dir string
}

// NewGitClient creates a GitClient rooted at the given repository directory.
func NewGitClient(dir string) *GitClient {
	return &GitClient{dir: dir}
}

// IsRepo reports whether the directory is inside a git work tree.
func (g *GitClient) IsRepo(ctx context.Context) bool {
	if _, err := exec.LookPath("git"); err != nil {
		return false
	}
	cmd := exec.CommandContext(ctx, "git", "-C", g.dir, "rev-parse", "--git-dir")
	return cmd.Run() == nil
}

// ChangedPaths lists paths changed between baseRef and headRef using a
// three-dot diff (changes on headRef's side since the merge base).
// Returns ErrUnresolvableRange when either ref or their merge base cannot
// be resolved, which happens on shallow clones and after squash merges.
func (g *GitClient) ChangedPaths(ctx context.Context, baseRef, headRef string) ([]string, error) {
	if baseRef == "" {
		return nil, ErrUnresolvableRange
	}

	for _, ref := range []string{baseRef, headRef} {
		if _, err := g.run(ctx, "rev-parse", "--verify", "--quiet", ref+"^{commit}"); err != nil {
			return nil, fmt.Errorf("ref %q: %w", ref, ErrUnresolvableRange)
		}
	}

	// A verifiable pair can still lack a common ancestor in a shallow clone.
	if _, err := g.run(ctx, "merge-base", baseRef, headRef); err != nil {
		return nil, fmt.Errorf("no merge base for %s...%s: %w", baseRef, headRef, ErrUnresolvableRange)
	}

	out, err := g.run(ctx, "diff", "--name-only", baseRef+"..."+headRef)
	if err != nil {
		return nil, &Error{Op: fmt.Sprintf("diff %s...%s", baseRef, headRef), Err: err}
	}
	return splitLines(out), nil
}

// UncommittedPaths lists modified tracked files plus untracked files not
// covered by gitignore.
func (g *GitClient) UncommittedPaths(ctx context.Context) ([]string, error) {
	var paths []string

	// An unborn branch has no HEAD commit and nothing tracked to modify.
	// Once HEAD resolves, a failed diff is fatal: swallowing it would drop
	// tracked modifications from the change set.
	if _, err := g.run(ctx, "rev-parse", "--verify", "--quiet", "HEAD^{commit}"); err == nil {
		out, err := g.run(ctx, "diff", "--name-only", "HEAD")
		if err != nil {
			return nil, &Error{Op: "diff HEAD", Err: err}
		}
		paths = append(paths, splitLines(out)...)
	}

	out, err := g.run(ctx, "ls-files", "--others", "--exclude-standard")
	if err != nil {
		return nil, &Error{Op: "ls-files --others", Err: err}
	}
	return append(paths, splitLines(out)...), nil
}

// run executes a git subcommand in the client's directory and returns its
// stdout. Errors include git's stderr for diagnosis.
func (g *GitClient) run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", g.dir}, args...)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
		}
		return nil, fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, msg)
	}
	return stdout.Bytes(), nil
}

// splitLines splits command output into non-empty trimmed lines.
func splitLines(out []byte) []string {
	var lines []string
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
