package messages

// Version utility messages.
const (
	VersionInvalidFormatFmt   = "invalid version %q: expected MAJOR.MINOR.PATCH"
	VersionInvalidSegmentFmt  = "invalid version %q: segment %q is not a non-negative integer"
	VersionInvalidFieldFmt    = "invalid increment field %q: expected major, minor, or patch"
	VersionMarkerMissingFmt   = "version marker %s not found"
	VersionMarkerEmptyFmt     = "version marker %s is empty"
	VersionMarkerReadFmt      = "failed to read version marker %s: %w"
	VersionMarkerWriteFmt     = "failed to write version marker %s: %w"
	VersionMarkerBackupFmt    = "failed to back up version marker %s: %w"
	VersionCompareEqual       = "equal"
	VersionCompareGreater     = "greater"
	VersionCompareLess        = "less"
	VersionValidOutputFmt     = "%s is a valid version\n"
	VersionSetOutputFmt       = "version set to %s\n"
	VersionIncrementOutputFmt = "%s -> %s\n"
)
