package deploy

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/framekit/framekit/internal/messages"
	"github.com/framekit/framekit/internal/testutil"
)

func installFixture(t *testing.T, root string) {
	t.Helper()
	source := testutil.WriteSourceTree(t, "1.0.0", agentsFixture(), scriptsFixture())
	if _, err := Install(context.Background(), root, source, InstallOptions{System: RealSystem{}, WarnWriter: discard()}); err != nil {
		t.Fatalf("install fixture: %v", err)
	}
}

func TestUpdateOverwritesInPlace(t *testing.T) {
	root := t.TempDir()
	installFixture(t, root)

	// User content inside the deployed tree that the package does not ship.
	userNote := filepath.Join(root, ".framework", "agents", "my-notes.md")
	testutil.WriteFile(t, userNote, "mine\n")

	agents := agentsFixture()
	agents["core.md"] = "# core agent v2\n"
	source := testutil.WriteSourceTree(t, "1.1.0", agents, scriptsFixture())

	result, err := Update(context.Background(), root, source, UpdateOptions{System: RealSystem{}, WarnWriter: discard()})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if result.Installed {
		t.Fatal("expected in-place update, not degraded install")
	}
	if result.FromVersion.String() != "1.0.0" || result.ToVersion.String() != "1.1.0" {
		t.Fatalf("versions = %s -> %s", result.FromVersion, result.ToVersion)
	}
	if result.Written != 1 {
		t.Fatalf("written = %d, want 1 (only core.md changed)", result.Written)
	}

	data, err := os.ReadFile(filepath.Join(root, ".framework", "agents", "core.md"))
	if err != nil || string(data) != "# core agent v2\n" {
		t.Fatalf("core.md = %q, %v", data, err)
	}
	if _, err := os.Stat(userNote); err != nil {
		t.Fatalf("user content was not preserved: %v", err)
	}

	v, err := ReadMarker(RealSystem{}, root)
	if err != nil || v.String() != "1.1.0" {
		t.Fatalf("marker = %v, %v", v, err)
	}
}

func TestUpdateDegradesToInstall(t *testing.T) {
	root := t.TempDir()
	source := testutil.WriteSourceTree(t, "1.0.0", agentsFixture(), nil)

	result, err := Update(context.Background(), root, source, UpdateOptions{System: RealSystem{}, WarnWriter: discard()})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if !result.Installed {
		t.Fatal("expected degraded install")
	}
	if installed, _ := Detect(RealSystem{}, root); !installed {
		t.Fatal("deployment marker missing after degraded install")
	}
}

func TestUpdateFailureRestoresBackup(t *testing.T) {
	root := t.TempDir()
	installFixture(t, root)
	before := testutil.SnapshotTree(t, root)

	agents := agentsFixture()
	agents["core.md"] = "# changed\n"
	agents["review.md"] = "# changed\n"
	source := testutil.WriteSourceTree(t, "1.1.0", agents, scriptsFixture())

	// The backup itself copies several files before the destructive phase;
	// fail a copy late enough to land inside the overwrite step.
	for failAt := 7; failAt <= 9; failAt++ {
		sys := &failingSystem{failCopyAt: failAt}
		_, err := Update(context.Background(), root, source, UpdateOptions{System: sys, WarnWriter: discard()})
		if err == nil {
			// Update applied; restore the fixture for the next probe.
			t.Fatalf("failAt=%d: expected update failure", failAt)
		}
		if errors.Is(err, ErrUpdateFailed) {
			after := testutil.SnapshotTree(t, root)
			for path, content := range before {
				if strings.HasPrefix(path, ".framework/meta/backups/") {
					continue
				}
				got, ok := after[path]
				if !ok || got != content {
					t.Fatalf("failAt=%d: %s not restored (got %q, ok=%v)", failAt, path, got, ok)
				}
			}
			return
		}
		// Failure happened while writing the backup; the deployment must be
		// untouched in that case too.
		after := testutil.SnapshotTree(t, root)
		for path, content := range before {
			if got, ok := after[path]; !ok || got != content {
				t.Fatalf("failAt=%d: %s changed during backup failure", failAt, path)
			}
		}
	}
	t.Fatal("no probe reached the overwrite step")
}

func TestUpdateInterruptRestores(t *testing.T) {
	root := t.TempDir()
	installFixture(t, root)
	before := testutil.SnapshotTree(t, root)

	agents := agentsFixture()
	agents["core.md"] = "# changed\n"
	source := testutil.WriteSourceTree(t, "2.0.0", agents, scriptsFixture())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Update(ctx, root, source, UpdateOptions{System: RealSystem{}, WarnWriter: discard()})
	if err == nil {
		t.Fatal("expected cancellation failure")
	}
	if !errors.Is(err, ErrUpdateFailed) {
		t.Fatalf("error %v does not wrap ErrUpdateFailed", err)
	}
	if !strings.Contains(err.Error(), messages.UpdateInterrupted) {
		t.Fatalf("error %v does not report the interrupt", err)
	}
	after := testutil.SnapshotTree(t, root)
	for path, content := range before {
		if strings.HasPrefix(path, ".framework/meta/backups/") {
			continue
		}
		if got, ok := after[path]; !ok || got != content {
			t.Fatalf("%s not restored after interrupt", path)
		}
	}
}

func TestUpdatePrunesOldBackups(t *testing.T) {
	root := t.TempDir()
	installFixture(t, root)

	for i := 0; i < 4; i++ {
		agents := agentsFixture()
		agents["core.md"] = strings.Repeat("x", i+1) + "\n"
		source := testutil.WriteSourceTree(t, "1.0.0", agents, scriptsFixture())
		if _, err := Update(context.Background(), root, source, UpdateOptions{System: RealSystem{}, WarnWriter: discard(), Retain: 2}); err != nil {
			t.Fatalf("update %d: %v", i, err)
		}
		// Snapshot ids embed a nanosecond component; spacing keeps name
		// order equal to creation order on coarse filesystems.
		time.Sleep(2 * time.Millisecond)
	}

	backups, err := ListBackups(RealSystem{}, root)
	if err != nil {
		t.Fatalf("ListBackups error: %v", err)
	}
	if len(backups) != 2 {
		t.Fatalf("retained %d backups, want 2", len(backups))
	}
	// Newest first.
	if backups[0].ID <= backups[1].ID {
		t.Fatalf("listing not newest first: %s, %s", backups[0].ID, backups[1].ID)
	}
	for _, b := range backups {
		if b.Status != string(backupStatusApplied) {
			t.Fatalf("backup %s status = %s, want applied", b.ID, b.Status)
		}
	}
}

func TestUpdateDiffPreview(t *testing.T) {
	root := t.TempDir()
	installFixture(t, root)

	agents := agentsFixture()
	agents["core.md"] = "# core agent revised\n"
	source := testutil.WriteSourceTree(t, "1.0.1", agents, scriptsFixture())

	var diffs bytes.Buffer
	if _, err := Update(context.Background(), root, source, UpdateOptions{System: RealSystem{}, WarnWriter: discard(), DiffWriter: &diffs}); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	out := diffs.String()
	if !strings.Contains(out, "core.md") {
		t.Fatalf("diff preview missing changed file: %q", out)
	}
	if !strings.Contains(out, "-# core agent") || !strings.Contains(out, "+# core agent revised") {
		t.Fatalf("diff preview missing hunk lines: %q", out)
	}
}

func TestCapDiffLines(t *testing.T) {
	diff := strings.Repeat("line\n", 50)
	capped := capDiffLines(diff, 10)
	if !strings.Contains(capped, "more lines") {
		t.Fatalf("expected truncation note, got %q", capped)
	}
	if got := strings.Count(capped, "\n"); got > 12 {
		t.Fatalf("capped diff has %d lines", got)
	}
}
