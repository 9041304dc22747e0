package messages

// Spec-run directory lifecycle messages.
const (
	SpecRunRootRequired      = "spec-run root is required"
	SpecRunInvalidModeFmt    = "invalid spec-run mode %q: expected first, update, or new"
	SpecRunArchiveFailedFmt  = "failed to archive spec run into %s: %w"
	SpecRunArchiveCleanedFmt = "Archiving failed; partial archive entry %s was removed.\n"
	SpecRunFirstSummary      = "Initialized spec-run structure.\n"
	SpecRunUpdateSummaryFmt  = "Backed up %s and cleared the working directory.\n"
	SpecRunNewSummaryFmt     = "Archived current run as %s.\n"
	SpecRunModeSetFmt        = "Next transition: %s.\n"
)
