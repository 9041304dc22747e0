package specdir

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestApplyFirstIdempotent(t *testing.T) {
	m := Manager{Root: t.TempDir()}
	for i := 0; i < 3; i++ {
		transition, err := m.Apply()
		if err != nil {
			t.Fatalf("Apply %d error: %v", i, err)
		}
		if transition.Mode != ModeFirst {
			t.Fatalf("mode = %s, want first", transition.Mode)
		}
		if _, err := os.Stat(m.WorkDir()); err != nil {
			t.Fatalf("work dir missing after Apply: %v", err)
		}
	}
}

func TestApplyUpdateBacksUpPrimaryAndClearsWork(t *testing.T) {
	m := Manager{Root: t.TempDir()}
	if _, err := m.Apply(); err != nil {
		t.Fatalf("first Apply: %v", err)
	}
	if err := os.WriteFile(m.PrimaryPath(), []byte("spec v1\n"), 0o644); err != nil {
		t.Fatalf("write primary: %v", err)
	}
	if err := os.WriteFile(filepath.Join(m.WorkDir(), "scratch.md"), []byte("wip\n"), 0o644); err != nil {
		t.Fatalf("write scratch: %v", err)
	}

	if err := m.SetMode(ModeUpdate); err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	transition, err := m.Apply()
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if transition.Mode != ModeUpdate {
		t.Fatalf("mode = %s, want update", transition.Mode)
	}
	if transition.BackupPath == "" {
		t.Fatal("expected a primary backup path")
	}
	data, err := os.ReadFile(transition.BackupPath)
	if err != nil || string(data) != "spec v1\n" {
		t.Fatalf("backup content = %q, %v", data, err)
	}
	// Primary stays for regeneration; working dir is cleared but recreated.
	if _, err := os.Stat(m.PrimaryPath()); err != nil {
		t.Fatalf("primary removed: %v", err)
	}
	entries, err := os.ReadDir(m.WorkDir())
	if err != nil {
		t.Fatalf("work dir missing: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("work dir not cleared: %v", entries)
	}
}

func TestApplyNewArchivesAndRedirectsPointer(t *testing.T) {
	m := Manager{Root: t.TempDir()}
	if _, err := m.Apply(); err != nil {
		t.Fatalf("first Apply: %v", err)
	}
	if err := os.WriteFile(m.PrimaryPath(), []byte("spec v1\n"), 0o644); err != nil {
		t.Fatalf("write primary: %v", err)
	}
	if err := os.WriteFile(filepath.Join(m.WorkDir(), "scratch.md"), []byte("wip\n"), 0o644); err != nil {
		t.Fatalf("write scratch: %v", err)
	}

	if err := m.SetMode(ModeNew); err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	transition, err := m.Apply()
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if transition.ArchiveID == "" {
		t.Fatal("expected archive id")
	}

	current, err := m.CurrentRun()
	if err != nil {
		t.Fatalf("CurrentRun error: %v", err)
	}
	if current != transition.ArchiveID {
		t.Fatalf("pointer = %s, want %s", current, transition.ArchiveID)
	}

	archived := filepath.Join(m.ArchiveDir(), transition.ArchiveID)
	data, err := os.ReadFile(filepath.Join(archived, "spec.md"))
	if err != nil || string(data) != "spec v1\n" {
		t.Fatalf("archived primary = %q, %v", data, err)
	}
	if _, err := os.Stat(filepath.Join(archived, "work", "scratch.md")); err != nil {
		t.Fatalf("archived work content missing: %v", err)
	}
	if _, err := os.Stat(m.PrimaryPath()); !os.IsNotExist(err) {
		t.Fatal("primary should be moved into the archive")
	}
	if _, err := os.Stat(m.WorkDir()); err != nil {
		t.Fatal("fresh work dir missing after archive")
	}
}

func TestArchiveIDsSortChronologically(t *testing.T) {
	m := Manager{Root: t.TempDir()}
	var ids []string
	for i := 0; i < 3; i++ {
		if _, err := m.Apply(); err != nil {
			t.Fatalf("Apply: %v", err)
		}
		if err := os.WriteFile(m.PrimaryPath(), []byte("spec\n"), 0o644); err != nil {
			t.Fatalf("write primary: %v", err)
		}
		if err := m.SetMode(ModeNew); err != nil {
			t.Fatalf("SetMode: %v", err)
		}
		transition, err := m.Apply()
		if err != nil {
			t.Fatalf("Apply new: %v", err)
		}
		ids = append(ids, transition.ArchiveID)
		time.Sleep(2 * time.Millisecond)
	}
	for i := 1; i < len(ids); i++ {
		if !(ids[i-1] < ids[i]) {
			t.Fatalf("ids not sortable by creation order: %v", ids)
		}
	}
}

func TestModeFlagConsumedOnce(t *testing.T) {
	m := Manager{Root: t.TempDir()}
	if _, err := m.Apply(); err != nil {
		t.Fatalf("first Apply: %v", err)
	}
	if err := os.WriteFile(m.PrimaryPath(), []byte("spec\n"), 0o644); err != nil {
		t.Fatalf("write primary: %v", err)
	}
	if err := m.SetMode(ModeNew); err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	if _, err := m.Apply(); err != nil {
		t.Fatalf("Apply new: %v", err)
	}
	// The flag is cleared, so the next Apply is a plain first transition.
	transition, err := m.Apply()
	if err != nil {
		t.Fatalf("Apply after new: %v", err)
	}
	if transition.Mode != ModeFirst {
		t.Fatalf("mode flag not consumed: %s", transition.Mode)
	}
}

func TestSetModeRejectsUnknown(t *testing.T) {
	m := Manager{Root: t.TempDir()}
	if err := m.SetMode(Mode("reset")); err == nil {
		t.Fatal("expected invalid mode error")
	}
}

func TestApplyRejectsCorruptModeFlag(t *testing.T) {
	m := Manager{Root: t.TempDir()}
	if err := os.MkdirAll(m.Root, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(m.Root, ".mode"), []byte("destroy\n"), 0o644); err != nil {
		t.Fatalf("write mode: %v", err)
	}
	if _, err := m.Apply(); err == nil || !strings.Contains(err.Error(), "invalid spec-run mode") {
		t.Fatalf("expected invalid mode error, got %v", err)
	}
}

func TestApplyNewPointerWriteFailureRestoresRun(t *testing.T) {
	var warnBuf bytes.Buffer
	m := Manager{Root: t.TempDir(), Warn: &warnBuf}
	if _, err := m.Apply(); err != nil {
		t.Fatalf("first Apply: %v", err)
	}
	if err := os.WriteFile(m.PrimaryPath(), []byte("spec v1\n"), 0o644); err != nil {
		t.Fatalf("write primary: %v", err)
	}
	if err := os.WriteFile(filepath.Join(m.WorkDir(), "scratch.md"), []byte("wip\n"), 0o644); err != nil {
		t.Fatalf("write scratch: %v", err)
	}
	// A directory squatting on the pointer path makes the atomic rename fail
	// after both moves into the archive entry have succeeded.
	if err := os.MkdirAll(m.PointerPath(), 0o755); err != nil {
		t.Fatalf("mkdir pointer: %v", err)
	}

	if err := m.SetMode(ModeNew); err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	if _, err := m.Apply(); err == nil {
		t.Fatal("expected pointer write failure")
	}

	data, err := os.ReadFile(m.PrimaryPath())
	if err != nil {
		t.Fatalf("primary artifact lost from root after failed transition: %v", err)
	}
	if string(data) != "spec v1\n" {
		t.Fatalf("primary content = %q", data)
	}
	if _, err := os.Stat(filepath.Join(m.WorkDir(), "scratch.md")); err != nil {
		t.Fatalf("working directory lost after failed transition: %v", err)
	}
	entries, err := os.ReadDir(m.ArchiveDir())
	if err != nil {
		t.Fatalf("read archive: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("partial archive entry left behind: %v", entries)
	}
	if !strings.Contains(warnBuf.String(), "partial archive entry") {
		t.Fatalf("expected cleanup notice, got %q", warnBuf.String())
	}
}
