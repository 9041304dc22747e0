package deploy

import (
	"strings"
	"testing"
)

func TestAppendManagedBlockToEmpty(t *testing.T) {
	out := appendManagedBlock("")
	if !strings.HasPrefix(out, blockStart) || !strings.Contains(out, blockEnd) {
		t.Fatalf("block malformed: %q", out)
	}
}

func TestAppendManagedBlockPreservesContent(t *testing.T) {
	out := appendManagedBlock("vendor/\n")
	if !strings.HasPrefix(out, "vendor/\n") {
		t.Fatalf("existing content lost: %q", out)
	}
	if strings.Count(out, blockStart) != 1 {
		t.Fatalf("expected one block: %q", out)
	}
}

func TestAppendManagedBlockIdempotent(t *testing.T) {
	once := appendManagedBlock("vendor/\n")
	twice := appendManagedBlock(once)
	if once != twice {
		t.Fatalf("append not idempotent:\n%q\n%q", once, twice)
	}
}

func TestExciseManagedBlock(t *testing.T) {
	content := "vendor/\n\n" + managedBlock()
	out, err := exciseManagedBlock(content, "x")
	if err != nil {
		t.Fatalf("excise error: %v", err)
	}
	if out != "vendor/\n" {
		t.Fatalf("excise = %q, want %q", out, "vendor/\n")
	}
}

func TestExciseManagedBlockOnlyBlock(t *testing.T) {
	out, err := exciseManagedBlock(managedBlock(), "x")
	if err != nil {
		t.Fatalf("excise error: %v", err)
	}
	if out != "" {
		t.Fatalf("expected empty remainder, got %q", out)
	}
}

func TestExciseManagedBlockNoBlock(t *testing.T) {
	out, err := exciseManagedBlock("vendor/\n", "x")
	if err != nil {
		t.Fatalf("excise error: %v", err)
	}
	if out != "vendor/\n" {
		t.Fatalf("content without block must pass through, got %q", out)
	}
}

func TestExciseManagedBlockDuplicateStart(t *testing.T) {
	content := managedBlock() + managedBlock()
	if _, err := exciseManagedBlock(content, "x"); err == nil {
		t.Fatal("expected duplicate marker error")
	}
}

func TestExciseManagedBlockUnpairedMarker(t *testing.T) {
	if _, err := exciseManagedBlock(blockStart+"\nstray\n", "x"); err == nil {
		t.Fatal("expected unpaired marker error")
	}
	if _, err := exciseManagedBlock("stray\n"+blockEnd+"\n", "x"); err == nil {
		t.Fatal("expected unpaired marker error")
	}
}
