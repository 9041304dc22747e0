package deploy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aymanbagabas/go-udiff"

	"github.com/framekit/framekit/internal/messages"
	"github.com/framekit/framekit/internal/semver"
)

// ErrUpdateFailed wraps any update error surfaced after the backup was
// restored.
var ErrUpdateFailed = errors.New("update failed")

// DefaultDiffMaxLines caps the per-file diff preview length.
const DefaultDiffMaxLines = 40

// UpdateOptions controls the update transaction.
type UpdateOptions struct {
	System     System
	WarnWriter io.Writer

	// DiffWriter, when set, receives unified diff previews of files about to
	// change before they are overwritten.
	DiffWriter   io.Writer
	DiffMaxLines int

	// Retain overrides the backup retention count; zero means
	// DefaultBackupRetention.
	Retain int
}

// UpdateResult reports what an update (or degraded install) did.
type UpdateResult struct {
	Installed   bool
	FromVersion semver.Version
	ToVersion   semver.Version
	Written     int
	BackupID    string
}

// Update applies the source tree over an existing deployment in place. The
// previous state of every subtree about to be overwritten is snapshotted
// into a timestamped backup first; on any failure the backup is restored
// before the error surfaces. When no deployment marker exists the operation
// degrades to a clean install.
func Update(ctx context.Context, root string, source string, opts UpdateOptions) (*UpdateResult, error) {
	if root == "" {
		return nil, fmt.Errorf(messages.DeployRootRequired)
	}
	if source == "" {
		return nil, fmt.Errorf(messages.DeploySourceRequired)
	}
	if opts.System == nil {
		return nil, fmt.Errorf(messages.DeploySystemRequired)
	}
	warn := opts.WarnWriter
	if warn == nil {
		warn = os.Stderr
	}
	sys := opts.System
	layout := Layout{Root: root}
	src := SourceLayout{Root: source}

	installed, err := Detect(sys, root)
	if err != nil {
		return nil, err
	}
	if !installed {
		result, err := Install(ctx, root, source, InstallOptions{System: sys, WarnWriter: warn})
		if err != nil {
			return nil, err
		}
		return &UpdateResult{
			Installed: true,
			ToVersion: result.Version,
			Written:   result.Agents + result.Scripts,
		}, nil
	}

	fromVersion, err := ReadMarker(sys, root)
	if err != nil {
		return nil, err
	}
	toVersion, err := semver.Read(src.VersionPath())
	if err != nil {
		return nil, err
	}

	backupID, err := createBackup(sys, layout, fromVersion.String(), time.Now())
	if err != nil {
		return nil, err
	}
	_, _ = fmt.Fprintf(warn, messages.UpdateBackupCreatedFmt, backupID, filepath.Join(layout.BackupsDir(), backupID))

	tx := &updateTx{
		sys:          sys,
		layout:       layout,
		source:       src,
		diffWriter:   opts.DiffWriter,
		diffMaxLines: normalizeDiffMaxLines(opts.DiffMaxLines),
	}
	steps := []struct {
		name string
		run  func(context.Context) error
	}{
		{"overwriteAgents", func(ctx context.Context) error {
			return tx.overwriteCategory(ctx, src.AgentsDir(), layout.AgentsDir())
		}},
		{"overwriteScripts", func(ctx context.Context) error {
			return tx.overwriteCategory(ctx, src.ScriptsDir(), layout.ScriptsDir())
		}},
		{"updateSharedFile", tx.ensureSharedBlock},
		{"writeMarker", func(context.Context) error {
			return writeMarker(sys, layout, toVersion, time.Now())
		}},
	}
	for _, step := range steps {
		err := step.run(ctx)
		if err == nil {
			err = ctx.Err()
		}
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				err = errors.New(messages.UpdateInterrupted)
			}
			if restoreErr := restoreBackup(sys, layout, backupID); restoreErr != nil {
				_, _ = fmt.Fprintf(warn, messages.UpdateRestoreFailedFmt, step.name, backupID, restoreErr)
				return nil, fmt.Errorf("%w: step %s: %v; restore failed: %v", ErrUpdateFailed, step.name, err, restoreErr)
			}
			_ = setBackupStatus(sys, layout, backupID, backupStatusRestored)
			_, _ = fmt.Fprintf(warn, messages.UpdateRestoredFmt, step.name, backupID)
			return nil, fmt.Errorf("%w: step %s: %v", ErrUpdateFailed, step.name, err)
		}
	}

	if err := setBackupStatus(sys, layout, backupID, backupStatusApplied); err != nil {
		return nil, err
	}
	retain := opts.Retain
	if retain == 0 {
		retain = DefaultBackupRetention
	}
	if err := pruneBackups(sys, layout, retain); err != nil {
		return nil, err
	}

	return &UpdateResult{
		FromVersion: fromVersion,
		ToVersion:   toVersion,
		Written:     tx.written,
		BackupID:    backupID,
	}, nil
}

type updateTx struct {
	sys          System
	layout       Layout
	source       SourceLayout
	diffWriter   io.Writer
	diffMaxLines int
	written      int
}

// overwriteCategory copies source artifacts over the deployed subtree in
// place. Files are overwritten, never deleted first, so user content not
// owned by the package survives an interrupted copy.
func (tx *updateTx) overwriteCategory(ctx context.Context, srcDir string, dstDir string) error {
	if _, err := tx.sys.Stat(srcDir); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf(messages.DeployFailedStatFmt, srcDir, err)
	}
	return tx.sys.WalkDir(srcDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		dst := filepath.Join(dstDir, rel)
		if entry.IsDir() {
			if err := tx.sys.MkdirAll(dst, 0o755); err != nil {
				return fmt.Errorf(messages.DeployCreateDirFailedFmt, dst, err)
			}
			return nil
		}
		changed, err := tx.previewDiff(path, dst)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
		if err := tx.sys.CopyFile(path, dst); err != nil {
			return fmt.Errorf(messages.DeployFailedCopyFmt, path, dst, err)
		}
		tx.written++
		return nil
	})
}

// previewDiff reports whether dst needs writing and, when a diff writer is
// configured, prints a capped unified diff of the pending change.
func (tx *updateTx) previewDiff(src string, dst string) (bool, error) {
	srcData, err := tx.sys.ReadFile(src)
	if err != nil {
		return false, fmt.Errorf(messages.DeployFailedReadFmt, src, err)
	}
	dstData, err := tx.sys.ReadFile(dst)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return true, nil
		}
		return false, fmt.Errorf(messages.DeployFailedReadFmt, dst, err)
	}
	if bytes.Equal(srcData, dstData) {
		return false, nil
	}
	if tx.diffWriter == nil {
		return true, nil
	}
	rel, err := filepath.Rel(tx.layout.Root, dst)
	if err != nil {
		rel = dst
	}
	unified := udiff.Unified(rel+" (deployed)", rel+" (new)", string(dstData), string(srcData))
	_, _ = fmt.Fprintf(tx.diffWriter, messages.UpdateDiffHeaderFmt, rel)
	_, _ = fmt.Fprint(tx.diffWriter, capDiffLines(unified, tx.diffMaxLines))
	return true, nil
}

func (tx *updateTx) ensureSharedBlock(context.Context) error {
	shared := tx.layout.SharedFilePath()
	existing, err := tx.sys.ReadFile(shared)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf(messages.DeployFailedReadFmt, shared, err)
	}
	content := appendManagedBlock(string(existing))
	if content == string(existing) {
		return nil
	}
	if err := tx.sys.WriteFileAtomic(shared, []byte(content), 0o644); err != nil {
		return fmt.Errorf(messages.DeployFailedWriteFmt, shared, err)
	}
	return nil
}

func normalizeDiffMaxLines(value int) int {
	if value <= 0 {
		return DefaultDiffMaxLines
	}
	return value
}

func capDiffLines(diff string, maxLines int) string {
	lines := strings.Split(strings.TrimRight(diff, "\n"), "\n")
	if len(lines) <= maxLines {
		return diff
	}
	kept := lines[:maxLines]
	return strings.Join(kept, "\n") + fmt.Sprintf("\n... (%d more lines)\n", len(lines)-maxLines)
}
