// Package specdir manages the "current" versus "archived" state of a spec
// working directory. A mode flag selects the next transition and is consumed
// exactly once; the current pointer is an explicit record file rather than a
// symlink so the layout works on any filesystem.
package specdir

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/framekit/framekit/internal/fsutil"
	"github.com/framekit/framekit/internal/messages"
)

// Mode selects the lifecycle transition applied by Apply.
type Mode string

// Supported transition modes.
const (
	ModeFirst  Mode = "first"
	ModeUpdate Mode = "update"
	ModeNew    Mode = "new"
)

const (
	primaryFileName = "spec.md"
	workDirName     = "work"
	archiveDirName  = "archive"
	pointerFileName = "current.run"
	modeFileName    = ".mode"
)

// Manager applies lifecycle transitions under a root directory. Warn, when
// set, receives notices about compensated partial failures.
type Manager struct {
	Root string
	Warn io.Writer
}

func (m Manager) warnWriter() io.Writer {
	if m.Warn == nil {
		return io.Discard
	}
	return m.Warn
}

// Transition reports what Apply did.
type Transition struct {
	Mode       Mode
	ArchiveID  string
	BackupPath string
}

// PrimaryPath is the current primary artifact.
func (m Manager) PrimaryPath() string {
	return filepath.Join(m.Root, primaryFileName)
}

// WorkDir is the working subdirectory.
func (m Manager) WorkDir() string {
	return filepath.Join(m.Root, workDirName)
}

// ArchiveDir holds archived runs named by sortable timestamp ids.
func (m Manager) ArchiveDir() string {
	return filepath.Join(m.Root, archiveDirName)
}

// PointerPath is the record naming the active archived run.
func (m Manager) PointerPath() string {
	return filepath.Join(m.Root, pointerFileName)
}

func (m Manager) modePath() string {
	return filepath.Join(m.Root, modeFileName)
}

// SetMode records the transition for the next Apply call.
func (m Manager) SetMode(mode Mode) error {
	switch mode {
	case ModeFirst, ModeUpdate, ModeNew:
	default:
		return fmt.Errorf(messages.SpecRunInvalidModeFmt, string(mode))
	}
	if err := os.MkdirAll(m.Root, 0o755); err != nil {
		return fmt.Errorf(messages.DeployCreateDirFailedFmt, m.Root, err)
	}
	return fsutil.WriteFileAtomic(m.modePath(), []byte(string(mode)+"\n"), 0o644)
}

// CurrentRun returns the archive id named by the pointer record, or empty
// when no run has been archived yet.
func (m Manager) CurrentRun() (string, error) {
	data, err := os.ReadFile(m.PointerPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf(messages.DeployFailedReadFmt, m.PointerPath(), err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Apply consumes the mode flag and runs the matching transition. A missing
// or blank flag behaves like first, so a bare re-invocation is idempotent.
// Every transition ends by ensuring the working subdirectory exists and
// clearing the flag.
func (m Manager) Apply() (*Transition, error) {
	if m.Root == "" {
		return nil, fmt.Errorf(messages.SpecRunRootRequired)
	}
	mode, err := m.readMode()
	if err != nil {
		return nil, err
	}

	var transition *Transition
	switch mode {
	case ModeFirst:
		transition = &Transition{Mode: ModeFirst}
	case ModeUpdate:
		transition, err = m.applyUpdate()
	case ModeNew:
		transition, err = m.applyNew(time.Now())
	}
	if err != nil {
		return nil, err
	}
	if err := m.finish(); err != nil {
		return nil, err
	}
	return transition, nil
}

func (m Manager) readMode() (Mode, error) {
	data, err := os.ReadFile(m.modePath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ModeFirst, nil
		}
		return "", fmt.Errorf(messages.DeployFailedReadFmt, m.modePath(), err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return ModeFirst, nil
	}
	mode := Mode(text)
	switch mode {
	case ModeFirst, ModeUpdate, ModeNew:
		return mode, nil
	default:
		return "", fmt.Errorf(messages.SpecRunInvalidModeFmt, text)
	}
}

// applyUpdate backs up the primary artifact and clears the working
// directory, leaving the primary in place for regeneration.
func (m Manager) applyUpdate() (*Transition, error) {
	transition := &Transition{Mode: ModeUpdate}
	if _, err := os.Stat(m.PrimaryPath()); err == nil {
		backup := filepath.Join(m.Root, fmt.Sprintf("spec.%s.bak.md", time.Now().UTC().Format("20060102-150405")))
		if err := fsutil.CopyFile(m.PrimaryPath(), backup); err != nil {
			return nil, err
		}
		transition.BackupPath = backup
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf(messages.DeployFailedStatFmt, m.PrimaryPath(), err)
	}
	if err := os.RemoveAll(m.WorkDir()); err != nil {
		return nil, fmt.Errorf(messages.DeployFailedRemoveFmt, m.WorkDir(), err)
	}
	return transition, nil
}

// applyNew moves the current primary artifact and working directory into a
// fresh archive entry and redirects the pointer record to it. On partial
// failure the entry is removed so the pointer never names an inconsistent
// run.
func (m Manager) applyNew(now time.Time) (*Transition, error) {
	id := fmt.Sprintf("%s-%d", now.UTC().Format("20060102-150405"), now.UTC().UnixNano())
	entry := filepath.Join(m.ArchiveDir(), id)
	if err := os.MkdirAll(entry, 0o755); err != nil {
		return nil, fmt.Errorf(messages.DeployCreateDirFailedFmt, entry, err)
	}

	move := func(src string, dst string) error {
		if _, err := os.Stat(src); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return fmt.Errorf(messages.DeployFailedStatFmt, src, err)
		}
		return os.Rename(src, dst)
	}
	if err := move(m.PrimaryPath(), filepath.Join(entry, primaryFileName)); err != nil {
		m.discardEntry(entry)
		return nil, fmt.Errorf(messages.SpecRunArchiveFailedFmt, entry, err)
	}
	if err := move(m.WorkDir(), filepath.Join(entry, workDirName)); err != nil {
		// Undo the primary move before discarding the partial entry.
		_ = os.Rename(filepath.Join(entry, primaryFileName), m.PrimaryPath())
		m.discardEntry(entry)
		return nil, fmt.Errorf(messages.SpecRunArchiveFailedFmt, entry, err)
	}
	if err := fsutil.WriteFileAtomic(m.PointerPath(), []byte(id+"\n"), 0o644); err != nil {
		// The pointer never named this entry, so move everything back and
		// discard it rather than leave an orphaned archive run.
		_ = os.Rename(filepath.Join(entry, workDirName), m.WorkDir())
		_ = os.Rename(filepath.Join(entry, primaryFileName), m.PrimaryPath())
		m.discardEntry(entry)
		return nil, fmt.Errorf(messages.SpecRunArchiveFailedFmt, entry, err)
	}
	return &Transition{Mode: ModeNew, ArchiveID: id}, nil
}

// discardEntry removes a partially built archive entry after compensation.
func (m Manager) discardEntry(entry string) {
	if err := os.RemoveAll(entry); err != nil {
		return
	}
	_, _ = fmt.Fprintf(m.warnWriter(), messages.SpecRunArchiveCleanedFmt, entry)
}

// finish ensures the working directory exists and clears the mode flag.
func (m Manager) finish() error {
	if err := os.MkdirAll(m.WorkDir(), 0o755); err != nil {
		return fmt.Errorf(messages.DeployCreateDirFailedFmt, m.WorkDir(), err)
	}
	if err := os.Remove(m.modePath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf(messages.DeployFailedRemoveFmt, m.modePath(), err)
	}
	return nil
}
