package semver

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseValid(t *testing.T) {
	cases := []struct {
		text string
		want Version
	}{
		{"0.0.0", Version{0, 0, 0}},
		{"1.2.3", Version{1, 2, 3}},
		{"10.20.30", Version{10, 20, 30}},
		{"01.2.3", Version{1, 2, 3}},
	}
	for _, tc := range cases {
		got, err := Parse(tc.text)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", tc.text, err)
		}
		if got != tc.want {
			t.Fatalf("Parse(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestParseInvalid(t *testing.T) {
	cases := []string{
		"", "1", "1.2", "1.2.3.4", "1.2.x", "v1.2.3", "1.2.3-rc1",
		"1.2.3+build", " 1.2.3", "1.2.3 ", "1..3", "-1.2.3",
	}
	for _, text := range cases {
		if _, err := Parse(text); err == nil {
			t.Fatalf("Parse(%q) succeeded, want FormatError", text)
		} else {
			var formatErr *FormatError
			if !errors.As(err, &formatErr) {
				t.Fatalf("Parse(%q) error type %T, want *FormatError", text, err)
			}
		}
	}
}

func TestRoundTrip(t *testing.T) {
	versions := []Version{{0, 0, 0}, {1, 2, 3}, {12, 0, 7}, {100, 200, 300}}
	for _, v := range versions {
		got, err := Parse(v.String())
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", v.String(), err)
		}
		if got != v {
			t.Fatalf("round trip %v -> %v", v, got)
		}
	}
}

func TestCompareTotalOrder(t *testing.T) {
	ordered := []Version{{0, 0, 0}, {0, 0, 1}, {0, 1, 0}, {0, 1, 2}, {1, 0, 0}, {1, 0, 10}, {2, 0, 0}}
	for i, a := range ordered {
		if Compare(a, a) != 0 {
			t.Fatalf("Compare(%v, %v) != 0", a, a)
		}
		for j := i + 1; j < len(ordered); j++ {
			b := ordered[j]
			if Compare(a, b) != -1 {
				t.Fatalf("Compare(%v, %v) != -1", a, b)
			}
			if Compare(b, a) != 1 {
				t.Fatalf("Compare(%v, %v) != 1", b, a)
			}
		}
	}
}

func TestIncrement(t *testing.T) {
	base := Version{1, 2, 3}
	cases := []struct {
		field string
		want  Version
	}{
		{FieldMajor, Version{2, 0, 0}},
		{FieldMinor, Version{1, 3, 0}},
		{FieldPatch, Version{1, 2, 4}},
	}
	for _, tc := range cases {
		got, err := Increment(base, tc.field)
		if err != nil {
			t.Fatalf("Increment(%v, %s) error: %v", base, tc.field, err)
		}
		if got != tc.want {
			t.Fatalf("Increment(%v, %s) = %v, want %v", base, tc.field, got, tc.want)
		}
		if Compare(got, base) != 1 {
			t.Fatalf("Increment(%v, %s) = %v is not strictly greater", base, tc.field, got)
		}
	}
}

func TestIncrementMonotonic(t *testing.T) {
	v := Version{0, 9, 9}
	for _, field := range []string{FieldPatch, FieldMinor, FieldPatch, FieldMajor, FieldPatch} {
		next, err := Increment(v, field)
		if err != nil {
			t.Fatalf("Increment(%v, %s) error: %v", v, field, err)
		}
		if Compare(next, v) != 1 {
			t.Fatalf("Increment(%v, %s) = %v is not strictly greater", v, field, next)
		}
		v = next
	}
}

func TestIncrementInvalidField(t *testing.T) {
	if _, err := Increment(Version{1, 0, 0}, "build"); err == nil {
		t.Fatal("Increment with invalid field succeeded")
	} else {
		var fieldErr *InvalidFieldError
		if !errors.As(err, &fieldErr) {
			t.Fatalf("error type %T, want *InvalidFieldError", err)
		}
	}
}

func TestReadMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "VERSION")
	if _, err := Read(path); err == nil {
		t.Fatal("Read of missing file succeeded")
	} else {
		var missing *MissingFileError
		if !errors.As(err, &missing) {
			t.Fatalf("error type %T, want *MissingFileError", err)
		}
	}
}

func TestReadEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "VERSION")
	if err := os.WriteFile(path, []byte("  \n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Read(path); err == nil {
		t.Fatal("Read of empty file succeeded")
	} else {
		var empty *EmptyFileError
		if !errors.As(err, &empty) {
			t.Fatalf("error type %T, want *EmptyFileError", err)
		}
	}
}

func TestReadTrimsLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "VERSION")
	if err := os.WriteFile(path, []byte("1.4.2\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if got != (Version{1, 4, 2}) {
		t.Fatalf("Read = %v, want 1.4.2", got)
	}
}

func TestWriteBacksUpExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "VERSION")
	if err := Write(path, Version{1, 0, 0}); err != nil {
		t.Fatalf("first Write error: %v", err)
	}
	if err := Write(path, Version{1, 1, 0}); err != nil {
		t.Fatalf("second Write error: %v", err)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if got != (Version{1, 1, 0}) {
		t.Fatalf("Read = %v, want 1.1.0", got)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	backups := 0
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), "VERSION.bak.") {
			backups++
			data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
			if err != nil {
				t.Fatalf("read backup: %v", err)
			}
			if strings.TrimSpace(string(data)) != "1.0.0" {
				t.Fatalf("backup content = %q, want 1.0.0", data)
			}
		}
	}
	if backups != 1 {
		t.Fatalf("expected 1 backup, found %d", backups)
	}
}
