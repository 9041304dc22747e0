// Package semver implements the restricted semantic version scheme used by
// the framework version marker: exactly MAJOR.MINOR.PATCH with no pre-release
// or build suffixes.
package semver

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/framekit/framekit/internal/fsutil"
	"github.com/framekit/framekit/internal/messages"
)

// Version is a parsed MAJOR.MINOR.PATCH triple.
type Version struct {
	Major int
	Minor int
	Patch int
}

// Field names accepted by Increment.
const (
	FieldMajor = "major"
	FieldMinor = "minor"
	FieldPatch = "patch"
)

// FormatError reports version text that is not a valid MAJOR.MINOR.PATCH triple.
type FormatError struct {
	Text    string
	Segment string
}

func (e *FormatError) Error() string {
	if e.Segment != "" {
		return fmt.Sprintf(messages.VersionInvalidSegmentFmt, e.Text, e.Segment)
	}
	return fmt.Sprintf(messages.VersionInvalidFormatFmt, e.Text)
}

// InvalidFieldError reports an unknown increment field.
type InvalidFieldError struct {
	Field string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf(messages.VersionInvalidFieldFmt, e.Field)
}

// MissingFileError reports an absent version marker file.
type MissingFileError struct {
	Path string
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf(messages.VersionMarkerMissingFmt, e.Path)
}

// EmptyFileError reports a version marker file with no content.
type EmptyFileError struct {
	Path string
}

func (e *EmptyFileError) Error() string {
	return fmt.Sprintf(messages.VersionMarkerEmptyFmt, e.Path)
}

// WriteError reports a failure while backing up or writing a marker file.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write version marker %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Parse converts text into a Version. The text must be exactly three
// dot-separated base-10 non-negative integers with no surrounding characters.
func Parse(text string) (Version, error) {
	parts := strings.Split(text, ".")
	if len(parts) != 3 {
		return Version{}, &FormatError{Text: text}
	}
	nums := make([]int, 3)
	for i, part := range parts {
		if part == "" || strings.TrimLeft(part, "0123456789") != "" {
			return Version{}, &FormatError{Text: text, Segment: part}
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return Version{}, &FormatError{Text: text, Segment: part}
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// String returns the canonical MAJOR.MINOR.PATCH text.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0, or +1 as a is less than, equal to, or greater than
// b. The order is lexicographic over (major, minor, patch).
func Compare(a Version, b Version) int {
	if c := compareInt(a.Major, b.Major); c != 0 {
		return c
	}
	if c := compareInt(a.Minor, b.Minor); c != 0 {
		return c
	}
	return compareInt(a.Patch, b.Patch)
}

func compareInt(a int, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Increment returns v bumped in the given field. Bumping major zeroes minor
// and patch; bumping minor zeroes patch.
func Increment(v Version, field string) (Version, error) {
	switch field {
	case FieldMajor:
		return Version{Major: v.Major + 1}, nil
	case FieldMinor:
		return Version{Major: v.Major, Minor: v.Minor + 1}, nil
	case FieldPatch:
		return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}, nil
	default:
		return Version{}, &InvalidFieldError{Field: field}
	}
}

// Read loads and parses the version marker at path. The marker is a single
// trimmed line of canonical version text.
func Read(path string) (Version, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Version{}, &MissingFileError{Path: path}
		}
		return Version{}, fmt.Errorf(messages.VersionMarkerReadFmt, path, err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return Version{}, &EmptyFileError{Path: path}
	}
	return Parse(text)
}

// Write stores v at path as a single line. Any existing marker is first
// copied to a timestamped backup beside it, then the new content is written
// atomically.
func Write(path string, v Version) error {
	return writeAt(path, v, time.Now())
}

func writeAt(path string, v Version, now time.Time) error {
	if _, err := os.Stat(path); err == nil {
		backup := fmt.Sprintf("%s.bak.%s", path, now.UTC().Format("20060102-150405"))
		if err := fsutil.CopyFile(path, backup); err != nil {
			return &WriteError{Path: path, Err: fmt.Errorf(messages.VersionMarkerBackupFmt, backup, err)}
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return &WriteError{Path: path, Err: err}
	}
	if err := fsutil.WriteFileAtomic(path, []byte(v.String()+"\n"), 0o644); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}
