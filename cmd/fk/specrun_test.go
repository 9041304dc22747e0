package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSpecRunFirstApply(t *testing.T) {
	root := t.TempDir()

	var out, errOut bytes.Buffer
	if err := execute([]string{"fk", "specrun", "apply", "--root", root}, &out, &errOut); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !strings.Contains(out.String(), "Initialized spec-run structure") {
		t.Fatalf("unexpected output %q", out.String())
	}
	if _, err := os.Stat(filepath.Join(root, "work")); err != nil {
		t.Fatalf("work directory missing: %v", err)
	}
}

func TestSpecRunModeThenApply(t *testing.T) {
	root := t.TempDir()

	var out, errOut bytes.Buffer
	if err := execute([]string{"fk", "specrun", "apply", "--root", root}, &out, &errOut); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "spec.md"), []byte("# Run\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out.Reset()
	if err := execute([]string{"fk", "specrun", "mode", "new", "--root", root}, &out, &errOut); err != nil {
		t.Fatalf("mode: %v", err)
	}
	if !strings.Contains(out.String(), "Next transition: new") {
		t.Fatalf("unexpected output %q", out.String())
	}

	out.Reset()
	if err := execute([]string{"fk", "specrun", "apply", "--root", root}, &out, &errOut); err != nil {
		t.Fatalf("second apply: %v", err)
	}
	if !strings.Contains(out.String(), "Archived current run as ") {
		t.Fatalf("unexpected output %q", out.String())
	}
	entries, err := os.ReadDir(filepath.Join(root, "archive"))
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one archive entry, got %v (%v)", entries, err)
	}
}

func TestSpecRunModeRejectsUnknown(t *testing.T) {
	root := t.TempDir()

	var out, errOut bytes.Buffer
	if err := execute([]string{"fk", "specrun", "mode", "sideways", "--root", root}, &out, &errOut); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}
