package deploy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/framekit/framekit/internal/messages"
	"github.com/framekit/framekit/internal/semver"
)

// ErrInstallFailed wraps any install error surfaced after rollback.
var ErrInstallFailed = errors.New("install failed")

// InstallOptions controls the install transaction.
type InstallOptions struct {
	System     System
	WarnWriter io.Writer
}

// InstallResult reports what a successful install created.
type InstallResult struct {
	Version semver.Version
	Agents  int
	Scripts int
}

type ledgerEntryKind int

const (
	ledgerCreated ledgerEntryKind = iota
	ledgerReplaced
)

// ledgerEntry records one mutation so rollback can undo it exactly. Created
// paths are deleted; replaced paths are restored from their backup copy.
type ledgerEntry struct {
	kind       ledgerEntryKind
	path       string
	backupPath string
}

type installTx struct {
	root   string
	source SourceLayout
	layout Layout
	sys    System
	warn   io.Writer
	ledger []ledgerEntry
	agents int
	script int
}

// Install performs a clean install of the source tree into root. Every
// created path is recorded in an ordered ledger; on any failure (including
// cancellation of ctx) the ledger is replayed in reverse so the target ends
// exactly as found.
func Install(ctx context.Context, root string, source string, opts InstallOptions) (*InstallResult, error) {
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
	tx := &installTx{
		root:   root,
		source: SourceLayout{Root: source},
		layout: Layout{Root: root},
		sys:    opts.System,
		warn:   warn,
	}

	version, err := semver.Read(tx.source.VersionPath())
	if err != nil {
		return nil, err
	}
	if _, err := tx.sys.Stat(tx.source.FrameworkDir()); err != nil {
		return nil, fmt.Errorf(messages.InstallSourceMissingFmt, source)
	}

	steps := []struct {
		name string
		run  func(context.Context) error
	}{
		{"createDirs", tx.createDirs},
		{"copyAgents", tx.copyAgents},
		{"copyScripts", tx.copyScripts},
		{"updateSharedFile", tx.updateSharedFile},
		{"writeMarker", func(context.Context) error {
			return tx.writeMarker(version)
		}},
	}
	for _, step := range steps {
		err := step.run(ctx)
		if err == nil {
			err = ctx.Err()
		}
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				err = errors.New(messages.InstallInterrupted)
			}
			if rollbackErr := tx.rollback(); rollbackErr != nil {
				_, _ = fmt.Fprintf(tx.warn, messages.InstallRollbackFailedFmt, step.name, rollbackErr)
				return nil, fmt.Errorf("%w: step %s: %v; rollback failed: %v", ErrInstallFailed, step.name, err, rollbackErr)
			}
			_, _ = fmt.Fprintf(tx.warn, messages.InstallRolledBackFmt, step.name)
			return nil, fmt.Errorf("%w: step %s: %v", ErrInstallFailed, step.name, err)
		}
	}

	return &InstallResult{Version: version, Agents: tx.agents, Scripts: tx.script}, nil
}

func (tx *installTx) record(entry ledgerEntry) {
	tx.ledger = append(tx.ledger, entry)
}

// rollback walks the ledger in reverse, deleting created paths and restoring
// replaced ones. The first failure aborts: the ledger must exactly reflect
// progress, so a path that cannot be undone is a hard error.
func (tx *installTx) rollback() error {
	for i := len(tx.ledger) - 1; i >= 0; i-- {
		entry := tx.ledger[i]
		switch entry.kind {
		case ledgerCreated:
			if err := tx.sys.RemoveAll(entry.path); err != nil {
				return fmt.Errorf(messages.InstallLedgerRollbackFmt, entry.path, err)
			}
		case ledgerReplaced:
			if err := tx.sys.CopyFile(entry.backupPath, entry.path); err != nil {
				return fmt.Errorf(messages.InstallLedgerRollbackFmt, entry.path, err)
			}
		}
	}
	tx.ledger = nil
	return nil
}

func (tx *installTx) createDirs(context.Context) error {
	dirs := []string{
		tx.layout.DeployDir(),
		tx.layout.AgentsDir(),
		tx.layout.ScriptsDir(),
		tx.layout.MetaDir(),
	}
	for _, dir := range dirs {
		if _, err := tx.sys.Stat(dir); err == nil {
			continue
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf(messages.DeployFailedStatFmt, dir, err)
		}
		if err := tx.sys.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf(messages.DeployCreateDirFailedFmt, dir, err)
		}
		tx.record(ledgerEntry{kind: ledgerCreated, path: dir})
	}
	return nil
}

func (tx *installTx) copyAgents(ctx context.Context) error {
	n, err := tx.copyCategory(ctx, tx.source.AgentsDir(), tx.layout.AgentsDir())
	tx.agents = n
	return err
}

func (tx *installTx) copyScripts(ctx context.Context) error {
	n, err := tx.copyCategory(ctx, tx.source.ScriptsDir(), tx.layout.ScriptsDir())
	tx.script = n
	return err
}

// copyCategory copies one artifact subtree, recording every created path. A
// missing source category is not an error; packages may ship without
// utilities.
func (tx *installTx) copyCategory(ctx context.Context, srcDir string, dstDir string) (int, error) {
	if _, err := tx.sys.Stat(srcDir); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf(messages.DeployFailedStatFmt, srcDir, err)
	}
	count := 0
	err := tx.sys.WalkDir(srcDir, func(path string, entry fs.DirEntry, err error) error {
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
			tx.record(ledgerEntry{kind: ledgerCreated, path: dst})
			return nil
		}
		if err := tx.sys.CopyFile(path, dst); err != nil {
			return fmt.Errorf(messages.DeployFailedCopyFmt, path, dst, err)
		}
		tx.record(ledgerEntry{kind: ledgerCreated, path: dst})
		count++
		return nil
	})
	return count, err
}

// updateSharedFile appends the managed block to the host-owned shared file.
// A pre-existing file is first copied into meta so both install rollback and
// a later uninstall can restore it byte for byte.
func (tx *installTx) updateSharedFile(context.Context) error {
	shared := tx.layout.SharedFilePath()
	existing, err := tx.sys.ReadFile(shared)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf(messages.DeployFailedReadFmt, shared, err)
		}
		content := appendManagedBlock("")
		if err := tx.sys.WriteFileAtomic(shared, []byte(content), 0o644); err != nil {
			return fmt.Errorf(messages.DeployFailedWriteFmt, shared, err)
		}
		tx.record(ledgerEntry{kind: ledgerCreated, path: shared})
		return nil
	}

	backup := tx.layout.SharedBackupPath()
	if err := tx.sys.CopyFile(shared, backup); err != nil {
		return fmt.Errorf(messages.DeployFailedCopyFmt, shared, backup, err)
	}
	tx.record(ledgerEntry{kind: ledgerCreated, path: backup})

	content := appendManagedBlock(string(existing))
	if err := tx.sys.WriteFileAtomic(shared, []byte(content), 0o644); err != nil {
		return fmt.Errorf(messages.DeployFailedWriteFmt, shared, err)
	}
	tx.record(ledgerEntry{kind: ledgerReplaced, path: shared, backupPath: backup})
	return nil
}

func (tx *installTx) writeMarker(version semver.Version) error {
	// Marker files are recorded before writing: a partial write still needs
	// removal on rollback.
	tx.record(ledgerEntry{kind: ledgerCreated, path: tx.layout.MarkerPath()})
	tx.record(ledgerEntry{kind: ledgerCreated, path: tx.layout.InstalledAtPath()})
	return writeMarker(tx.sys, tx.layout, version, time.Now())
}
