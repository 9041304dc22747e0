package deploy

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/framekit/framekit/internal/messages"
	"github.com/framekit/framekit/internal/semver"
)

// UninstallOptions controls the uninstall transaction. Interactive
// confirmation happens in the caller before Uninstall runs; by the time this
// transaction starts the destructive action is approved.
type UninstallOptions struct {
	System     System
	WarnWriter io.Writer
}

// UninstallResult reports what was removed and what could not be.
type UninstallResult struct {
	Version semver.Version
	Removed []string
	Failed  []string
}

// PartialFailure reports whether some owned paths could not be removed.
func (r *UninstallResult) PartialFailure() bool {
	return len(r.Failed) > 0
}

// Uninstall removes exactly the package-owned artifacts under root. The
// shared file is restored from its pre-install backup when one exists;
// otherwise only the delimited managed section is excised. Already-removed
// paths stay removed on partial failure.
func Uninstall(root string, opts UninstallOptions) (*UninstallResult, error) {
	if root == "" {
		return nil, fmt.Errorf(messages.DeployRootRequired)
	}
	if opts.System == nil {
		return nil, fmt.Errorf(messages.DeploySystemRequired)
	}
	sys := opts.System
	layout := Layout{Root: root}

	if _, err := sys.Stat(layout.DeployDir()); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf(messages.UninstallNothingInstalled)
		}
		return nil, fmt.Errorf(messages.DeployFailedStatFmt, layout.DeployDir(), err)
	}

	result := &UninstallResult{}
	if v, err := ReadMarker(sys, root); err == nil {
		result.Version = v
	}

	if err := restoreSharedFile(sys, layout, result); err != nil {
		return nil, err
	}

	removeOwnedTree(sys, layout, result)
	pruneEmptyDirs(sys, layout, result)

	sort.Strings(result.Removed)
	if result.PartialFailure() {
		sort.Strings(result.Failed)
		return result, fmt.Errorf(messages.UninstallPartialFmt, len(result.Failed))
	}
	return result, nil
}

// restoreSharedFile undoes the package's modification of the host-owned
// shared file. Excision errors (duplicated markers) abort before anything
// else is removed.
func restoreSharedFile(sys System, layout Layout, result *UninstallResult) error {
	shared := layout.SharedFilePath()
	backup := layout.SharedBackupPath()

	if _, err := sys.Stat(backup); err == nil {
		if err := sys.CopyFile(backup, shared); err != nil {
			return fmt.Errorf(messages.DeployFailedCopyFmt, backup, shared, err)
		}
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf(messages.DeployFailedStatFmt, backup, err)
	}

	existing, err := sys.ReadFile(shared)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf(messages.DeployFailedReadFmt, shared, err)
	}
	remainder, err := exciseManagedBlock(string(existing), shared)
	if err != nil {
		return err
	}
	if remainder == string(existing) {
		return nil
	}
	if remainder == "" {
		if err := sys.Remove(shared); err != nil {
			result.Failed = append(result.Failed, shared)
			return nil
		}
		result.Removed = append(result.Removed, shared)
		return nil
	}
	if err := sys.WriteFileAtomic(shared, []byte(remainder), 0o644); err != nil {
		return fmt.Errorf(messages.DeployFailedWriteFmt, shared, err)
	}
	return nil
}

// removeOwnedTree deletes every file under the deployment directory,
// collecting failures instead of aborting so the result lists everything
// that remains.
func removeOwnedTree(sys System, layout Layout, result *UninstallResult) {
	var files []string
	var dirs []string
	walkErr := sys.WalkDir(layout.DeployDir(), func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			dirs = append(dirs, path)
			return nil
		}
		files = append(files, path)
		return nil
	})
	if walkErr != nil {
		result.Failed = append(result.Failed, layout.DeployDir())
		return
	}

	for _, path := range files {
		if err := sys.Remove(path); err != nil {
			result.Failed = append(result.Failed, path)
			continue
		}
		result.Removed = append(result.Removed, path)
	}

	// Deepest directories first so empty parents can be removed too.
	sort.Slice(dirs, func(i, j int) bool { return len(dirs[i]) > len(dirs[j]) })
	for _, dir := range dirs {
		if err := sys.Remove(dir); err != nil {
			// A directory that still has content holds non-owned files or
			// paths that failed to remove above; leave it in place.
			continue
		}
		result.Removed = append(result.Removed, dir)
	}
}

// pruneEmptyDirs reports the deployment directory as failed when it still
// exists after removal, which means it contains paths the package does not
// own or could not delete.
func pruneEmptyDirs(sys System, layout Layout, result *UninstallResult) {
	if _, err := sys.Stat(layout.DeployDir()); err == nil {
		if !containsPath(result.Failed, layout.DeployDir()) {
			result.Failed = append(result.Failed, layout.DeployDir())
		}
	}
}

func containsPath(paths []string, target string) bool {
	target = filepath.Clean(target)
	for _, path := range paths {
		if filepath.Clean(path) == target {
			return true
		}
	}
	return false
}
