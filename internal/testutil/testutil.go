// Package testutil provides helpers for building framework source trees and
// inspecting target roots in tests.
package testutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes content at path, creating parent directories.
// t is the active test; path is absolute.
func WriteFile(t *testing.T, path string, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteSourceTree builds a minimal framework source tree and returns its
// root. version is the marker content; agents and scripts map relative
// artifact names to content.
func WriteSourceTree(t *testing.T, version string, agents map[string]string, scripts map[string]string) string {
	t.Helper()
	root := t.TempDir()
	WriteFile(t, filepath.Join(root, "framework", "VERSION"), version+"\n")
	for name, content := range agents {
		WriteFile(t, filepath.Join(root, "framework", "agents", name), content)
	}
	for name, content := range scripts {
		WriteFile(t, filepath.Join(root, "framework", "scripts", name), content)
	}
	return root
}

// SnapshotTree returns a map of slash-relative path to file content for
// every regular file under root. Directories appear with a trailing slash
// and empty content so structural differences are visible too.
func SnapshotTree(t *testing.T, root string) map[string]string {
	t.Helper()
	snapshot := make(map[string]string)
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if entry.IsDir() {
			snapshot[rel+"/"] = ""
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		snapshot[rel] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("snapshot %s: %v", root, err)
	}
	return snapshot
}

// RequireTreesEqual fails the test when two tree snapshots differ.
func RequireTreesEqual(t *testing.T, want map[string]string, got map[string]string) {
	t.Helper()
	for path, content := range want {
		gotContent, ok := got[path]
		if !ok {
			t.Fatalf("missing path %s", path)
		}
		if gotContent != content {
			t.Fatalf("content mismatch at %s:\nwant %q\ngot  %q", path, content, gotContent)
		}
	}
	for path := range got {
		if _, ok := want[path]; !ok {
			t.Fatalf("unexpected path %s", path)
		}
	}
}
