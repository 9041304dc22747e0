package impact

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/framekit/framekit/internal/messages"
)

// GitRunner runs a git subcommand in a directory and returns its stdout.
// Tests substitute a fake to avoid depending on a real repository.
type GitRunner func(ctx context.Context, dir string, args ...string) ([]byte, error)

// RunGit is the default GitRunner backed by the git binary.
func RunGit(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("%s: %w", msg, err)
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}

// ChangedPaths returns the ordered, deduplicated list of paths that differ
// between baseRef and the working tree of dir.
func ChangedPaths(ctx context.Context, run GitRunner, dir string, baseRef string) ([]string, error) {
	if strings.TrimSpace(baseRef) == "" {
		return nil, fmt.Errorf(messages.ImpactBaseRefRequired)
	}
	out, err := run(ctx, dir, "diff", "--name-only", baseRef)
	if err != nil {
		return nil, fmt.Errorf(messages.ImpactGitDiffFailedFmt, baseRef, err)
	}
	seen := make(map[string]struct{})
	var paths []string
	for _, line := range strings.Split(string(out), "\n") {
		path := strings.TrimSpace(line)
		if path == "" {
			continue
		}
		if _, ok := seen[path]; ok {
			continue
		}
		seen[path] = struct{}{}
		paths = append(paths, path)
	}
	return paths, nil
}

// FileAtRef returns the content of a file at a git reference, e.g. the base
// version marker during a gate check.
func FileAtRef(ctx context.Context, run GitRunner, dir string, ref string, path string) (string, error) {
	spec := ref + ":" + path
	out, err := run(ctx, dir, "show", spec)
	if err != nil {
		return "", fmt.Errorf(messages.ImpactGitShowFailedFmt, spec, err)
	}
	return string(out), nil
}
