package deploy

import "path/filepath"

// On-disk layout. The deployment is namespaced under .framework so it never
// collides with unrelated content at the target root.
const (
	deployDirName  = ".framework"
	agentsDirName  = "agents"
	scriptsDirName = "scripts"
	metaDirName    = "meta"
	backupsDirName = "backups"

	versionFileName     = "VERSION"
	installedAtFileName = "installed_at"
	sharedFileName      = ".gitignore"
	sharedBackupName    = "gitignore.pre-install"

	sourceRootName      = "framework"
	sourceChangelogName = "CHANGELOG.md"
)

// Layout resolves deployment paths under a target root.
type Layout struct {
	Root string
}

// DeployDir is the namespaced directory owning all package artifacts.
func (l Layout) DeployDir() string {
	return filepath.Join(l.Root, deployDirName)
}

// AgentsDir holds the copied definition artifacts.
func (l Layout) AgentsDir() string {
	return filepath.Join(l.DeployDir(), agentsDirName)
}

// ScriptsDir holds the copied utility artifacts.
func (l Layout) ScriptsDir() string {
	return filepath.Join(l.DeployDir(), scriptsDirName)
}

// MetaDir holds the marker, install timestamp, and backups.
func (l Layout) MetaDir() string {
	return filepath.Join(l.DeployDir(), metaDirName)
}

// MarkerPath is the deployed version marker file.
func (l Layout) MarkerPath() string {
	return filepath.Join(l.MetaDir(), versionFileName)
}

// InstalledAtPath records the install timestamp.
func (l Layout) InstalledAtPath() string {
	return filepath.Join(l.MetaDir(), installedAtFileName)
}

// BackupsDir holds timestamped backup snapshots.
func (l Layout) BackupsDir() string {
	return filepath.Join(l.MetaDir(), backupsDirName)
}

// SharedFilePath is the host-owned file the package appends its managed
// block to.
func (l Layout) SharedFilePath() string {
	return filepath.Join(l.Root, sharedFileName)
}

// SharedBackupPath is the pre-install copy of the shared file, taken before
// the package first touches it.
func (l Layout) SharedBackupPath() string {
	return filepath.Join(l.MetaDir(), sharedBackupName)
}

// SourceLayout resolves paths inside a framework source tree.
type SourceLayout struct {
	Root string
}

// FrameworkDir is the package payload directory inside the source tree.
func (s SourceLayout) FrameworkDir() string {
	return filepath.Join(s.Root, sourceRootName)
}

// AgentsDir holds the definition artifacts to deploy.
func (s SourceLayout) AgentsDir() string {
	return filepath.Join(s.FrameworkDir(), agentsDirName)
}

// ScriptsDir holds the utility artifacts to deploy.
func (s SourceLayout) ScriptsDir() string {
	return filepath.Join(s.FrameworkDir(), scriptsDirName)
}

// VersionPath is the build-time version marker of the source tree.
func (s SourceLayout) VersionPath() string {
	return filepath.Join(s.FrameworkDir(), versionFileName)
}

// ChangelogPath is the source changelog document.
func (s SourceLayout) ChangelogPath() string {
	return filepath.Join(s.FrameworkDir(), sourceChangelogName)
}
