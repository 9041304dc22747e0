package deploy

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/framekit/framekit/internal/messages"
	"github.com/framekit/framekit/internal/semver"
)

// ErrNotInstalled indicates no deployment marker exists at the target.
var ErrNotInstalled = errors.New(messages.UpdateNotInstalled)

// Detect reports whether a deployment marker exists under root.
func Detect(sys System, root string) (bool, error) {
	layout := Layout{Root: root}
	if _, err := sys.Stat(layout.MarkerPath()); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf(messages.DeployFailedStatFmt, layout.MarkerPath(), err)
	}
	return true, nil
}

// ReadMarker returns the deployed version recorded at root.
func ReadMarker(sys System, root string) (semver.Version, error) {
	layout := Layout{Root: root}
	data, err := sys.ReadFile(layout.MarkerPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return semver.Version{}, ErrNotInstalled
		}
		return semver.Version{}, fmt.Errorf(messages.VersionMarkerReadFmt, layout.MarkerPath(), err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return semver.Version{}, &semver.EmptyFileError{Path: layout.MarkerPath()}
	}
	return semver.Parse(text)
}

// ReadInstalledAt returns the recorded install timestamp, if parseable.
func ReadInstalledAt(sys System, root string) (time.Time, error) {
	layout := Layout{Root: root}
	data, err := sys.ReadFile(layout.InstalledAtPath())
	if err != nil {
		return time.Time{}, fmt.Errorf(messages.DeployFailedReadFmt, layout.InstalledAtPath(), err)
	}
	return time.Parse(time.RFC3339, strings.TrimSpace(string(data)))
}

func writeMarker(sys System, layout Layout, v semver.Version, now time.Time) error {
	if err := sys.WriteFileAtomic(layout.MarkerPath(), []byte(v.String()+"\n"), 0o644); err != nil {
		return fmt.Errorf(messages.VersionMarkerWriteFmt, layout.MarkerPath(), err)
	}
	stamp := now.UTC().Format(time.RFC3339) + "\n"
	if err := sys.WriteFileAtomic(layout.InstalledAtPath(), []byte(stamp), 0o644); err != nil {
		return fmt.Errorf(messages.DeployFailedWriteFmt, layout.InstalledAtPath(), err)
	}
	return nil
}
