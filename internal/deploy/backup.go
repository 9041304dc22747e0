package deploy

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/framekit/framekit/internal/messages"
)

const (
	backupSchemaVersion = 1

	// DefaultBackupRetention is how many backup snapshots are kept; older
	// ones are pruned after a successful update.
	DefaultBackupRetention = 5
)

type backupStatus string

const (
	backupStatusCreated  backupStatus = "created"
	backupStatusApplied  backupStatus = "applied"
	backupStatusRestored backupStatus = "restored"
)

type backupMetadata struct {
	SchemaVersion int          `json:"schema_version"`
	ID            string       `json:"id"`
	CreatedAtUTC  string       `json:"created_at_utc"`
	Status        backupStatus `json:"status"`
	Version       string       `json:"version,omitempty"`
}

// BackupInfo is the lightweight listing entry for one backup snapshot.
type BackupInfo struct {
	ID           string
	CreatedAtUTC string
	Status       string
	Version      string
}

func newBackupID(now time.Time) string {
	return fmt.Sprintf("%s-%d", now.UTC().Format("20060102-150405"), now.UTC().UnixNano())
}

// createBackup snapshots the subtrees about to be overwritten into a fresh
// timestamped directory under meta/backups. The snapshot and its metadata
// sidecar are fully written before the caller proceeds to any destructive
// step.
func createBackup(sys System, layout Layout, deployed string, now time.Time) (string, error) {
	id := newBackupID(now)
	dir := filepath.Join(layout.BackupsDir(), id)
	if err := sys.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf(messages.DeployCreateDirFailedFmt, dir, err)
	}

	targets := backupTargets(layout)
	for _, target := range targets {
		if err := copyIntoBackup(sys, layout, target, dir); err != nil {
			_ = sys.RemoveAll(dir)
			return "", err
		}
	}

	meta := backupMetadata{
		SchemaVersion: backupSchemaVersion,
		ID:            id,
		CreatedAtUTC:  now.UTC().Format(time.RFC3339),
		Status:        backupStatusCreated,
		Version:       deployed,
	}
	if err := writeBackupMetadata(sys, layout, meta); err != nil {
		_ = sys.RemoveAll(dir)
		return "", err
	}
	return id, nil
}

// backupTargets lists the deployment paths an update may overwrite.
func backupTargets(layout Layout) []string {
	return []string{
		layout.AgentsDir(),
		layout.ScriptsDir(),
		layout.MarkerPath(),
		layout.InstalledAtPath(),
		layout.SharedFilePath(),
	}
}

func copyIntoBackup(sys System, layout Layout, target string, backupDir string) error {
	info, err := sys.Stat(target)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf(messages.DeployFailedStatFmt, target, err)
	}
	rel, err := filepath.Rel(layout.Root, target)
	if err != nil {
		return err
	}
	dst := filepath.Join(backupDir, rel)
	if info.IsDir() {
		return copyTreeWithSystem(sys, target, dst)
	}
	if err := sys.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf(messages.DeployCreateDirFailedFmt, filepath.Dir(dst), err)
	}
	if err := sys.CopyFile(target, dst); err != nil {
		return fmt.Errorf(messages.DeployFailedCopyFmt, target, dst, err)
	}
	return nil
}

func copyTreeWithSystem(sys System, src string, dst string) error {
	return sys.WalkDir(src, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if entry.IsDir() {
			if err := sys.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf(messages.DeployCreateDirFailedFmt, target, err)
			}
			return nil
		}
		if err := sys.CopyFile(path, target); err != nil {
			return fmt.Errorf(messages.DeployFailedCopyFmt, path, target, err)
		}
		return nil
	})
}

// restoreBackup copies the snapshot back over the deployment, replacing the
// partially-updated subtrees with their pre-update state.
func restoreBackup(sys System, layout Layout, id string) error {
	dir := filepath.Join(layout.BackupsDir(), id)
	if _, err := sys.Stat(dir); err != nil {
		return fmt.Errorf(messages.BackupNotFoundFmt, id, layout.BackupsDir())
	}
	for _, target := range backupTargets(layout) {
		rel, err := filepath.Rel(layout.Root, target)
		if err != nil {
			return err
		}
		src := filepath.Join(dir, rel)
		info, err := sys.Stat(src)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				// The target did not exist pre-update; remove whatever the
				// failed update left behind.
				if err := sys.RemoveAll(target); err != nil {
					return fmt.Errorf(messages.DeployFailedRemoveFmt, target, err)
				}
				continue
			}
			return fmt.Errorf(messages.DeployFailedStatFmt, src, err)
		}
		if err := sys.RemoveAll(target); err != nil {
			return fmt.Errorf(messages.DeployFailedRemoveFmt, target, err)
		}
		if info.IsDir() {
			if err := copyTreeWithSystem(sys, src, target); err != nil {
				return err
			}
			continue
		}
		if err := sys.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf(messages.DeployCreateDirFailedFmt, filepath.Dir(target), err)
		}
		if err := sys.CopyFile(src, target); err != nil {
			return fmt.Errorf(messages.DeployFailedCopyFmt, src, target, err)
		}
	}
	return nil
}

func writeBackupMetadata(sys System, layout Layout, meta backupMetadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal backup metadata: %w", err)
	}
	data = append(data, '\n')
	path := filepath.Join(layout.BackupsDir(), meta.ID+".json")
	if err := sys.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf(messages.DeployFailedWriteFmt, path, err)
	}
	return nil
}

func setBackupStatus(sys System, layout Layout, id string, status backupStatus) error {
	meta, err := readBackupMetadata(sys, layout, id)
	if err != nil {
		return err
	}
	meta.Status = status
	return writeBackupMetadata(sys, layout, meta)
}

func readBackupMetadata(sys System, layout Layout, id string) (backupMetadata, error) {
	path := filepath.Join(layout.BackupsDir(), id+".json")
	data, err := sys.ReadFile(path)
	if err != nil {
		return backupMetadata{}, fmt.Errorf(messages.DeployFailedReadFmt, path, err)
	}
	var meta backupMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return backupMetadata{}, fmt.Errorf(messages.BackupMetadataInvalidFmt, path, err)
	}
	if meta.SchemaVersion != backupSchemaVersion || strings.TrimSpace(meta.ID) == "" {
		return backupMetadata{}, fmt.Errorf(messages.BackupMetadataInvalidFmt, path, errors.New("missing id or unsupported schema_version"))
	}
	return meta, nil
}

// listBackupIDs returns backup ids oldest first. Snapshot ids are sortable
// timestamps, so name order is creation order. Entries without a readable
// metadata sidecar are skipped rather than aborting the listing.
func listBackupIDs(sys System, layout Layout) ([]string, error) {
	entries, err := sys.ReadDir(layout.BackupsDir())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf(messages.DeployFailedReadFmt, layout.BackupsDir(), err)
	}
	var ids []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := readBackupMetadata(sys, layout, entry.Name()); err != nil {
			continue
		}
		ids = append(ids, entry.Name())
	}
	sort.Strings(ids)
	return ids, nil
}

// ListBackups returns backup metadata newest first for CLI display.
func ListBackups(sys System, root string) ([]BackupInfo, error) {
	layout := Layout{Root: root}
	ids, err := listBackupIDs(sys, layout)
	if err != nil {
		return nil, err
	}
	out := make([]BackupInfo, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		meta, err := readBackupMetadata(sys, layout, ids[i])
		if err != nil {
			continue
		}
		out = append(out, BackupInfo{
			ID:           meta.ID,
			CreatedAtUTC: meta.CreatedAtUTC,
			Status:       string(meta.Status),
			Version:      meta.Version,
		})
	}
	return out, nil
}

// pruneBackups removes the oldest backups beyond retain.
func pruneBackups(sys System, layout Layout, retain int) error {
	if retain < 0 {
		return fmt.Errorf("retain must be non-negative, got %d", retain)
	}
	ids, err := listBackupIDs(sys, layout)
	if err != nil {
		return err
	}
	if len(ids) <= retain {
		return nil
	}
	for _, id := range ids[:len(ids)-retain] {
		dir := filepath.Join(layout.BackupsDir(), id)
		if err := sys.RemoveAll(dir); err != nil {
			return fmt.Errorf(messages.BackupPruneFailedFmt, dir, err)
		}
		if err := sys.RemoveAll(dir + ".json"); err != nil {
			return fmt.Errorf(messages.BackupPruneFailedFmt, dir+".json", err)
		}
	}
	return nil
}
