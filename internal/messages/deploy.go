package messages

// Install, update, and uninstall messages.
const (
	DeployRootRequired   = "target root is required"
	DeploySourceRequired = "source tree is required"
	DeploySystemRequired = "deploy system is required"

	DeployCreateDirFailedFmt = "failed to create directory %s: %w"
	DeployFailedReadFmt      = "failed to read %s: %w"
	DeployFailedWriteFmt     = "failed to write %s: %w"
	DeployFailedStatFmt      = "failed to stat %s: %w"
	DeployFailedCopyFmt      = "failed to copy %s to %s: %w"
	DeployFailedRemoveFmt    = "failed to remove %s: %w"

	InstallSourceMissingFmt   = "source tree %s does not contain a framework directory"
	InstallRolledBackFmt      = "Install failed during %s. All created paths were removed.\n"
	InstallRollbackFailedFmt  = "Install failed during %s. Cleanup of created paths also failed: %v\n"
	InstallInterrupted        = "install interrupted"
	InstallSummaryFmt         = "Installed framework %s to %s (%d agents, %d scripts)\n"
	InstallFreshSummaryFmt    = "Installed framework %s to %s\n"
	InstallLedgerRollbackFmt  = "failed to roll back created path %s: %w"
	InstallAlreadyPresentHint = "existing deployment detected; switching to update"

	UpdateNotInstalled       = "no deployment marker found at target"
	UpdateConfirmPrompt      = "Apply the update?"
	UpdateBackupCreatedFmt   = "Created backup %s. Restore manually from %s if needed.\n"
	UpdateRestoredFmt        = "Update failed during %s. The previous deployment was restored from backup %s.\n"
	UpdateRestoreFailedFmt   = "Update failed during %s. Restore from backup %s also failed: %v\n"
	UpdateInterrupted        = "update interrupted"
	UpdateSummaryFmt         = "Updated framework %s -> %s at %s (%d files written)\n"
	UpdateDiffHeaderFmt      = "Changes for %s:\n"
	UpdateNoChanges          = "Deployment already matches the source tree.\n"
	BackupPruneFailedFmt     = "failed to prune old backup %s: %w"
	BackupMetadataInvalidFmt = "invalid backup metadata %s: %w"
	BackupNotFoundFmt        = "backup %s not found under %s"

	UninstallNothingInstalled  = "no framework artifacts found at target"
	UninstallConfirmPrompt     = "Remove the deployed framework and its metadata?"
	UninstallDeclined          = "Uninstall cancelled; nothing was removed.\n"
	UninstallPartialFmt        = "uninstall incomplete: %d path(s) could not be removed"
	UninstallUnremovableHeader = "The following paths could not be removed:"
	UninstallSummaryFmt        = "Removed framework %s from %s (%d paths)\n"
	UninstallMarkerDupFmt      = "managed marker %q appears %d times in %s; refusing to excise"
	UninstallMarkerMissingFmt  = "managed marker %q missing in %s"
)
