package messages

// CLI command descriptions and shared prompt strings.
const (
	RootUse   = "fk"
	RootShort = "Manage the framework configuration package lifecycle"

	// VersionCommitFmt formats the commit hash for version display.
	VersionCommitFmt = "commit %s"
	VersionBuildFmt  = "built %s"
	VersionFullFmt   = "%s (%s)"
	VersionTemplate  = "{{.Version}}\n"

	InstallUse          = "install"
	InstallShort        = "Install the framework into a target root (updates if already installed)"
	UpdateUse           = "update"
	UpdateShort         = "Update an existing deployment, backing up the previous state"
	UninstallUse        = "uninstall"
	UninstallShort      = "Remove the deployed framework from a target root"
	VersionUse          = "version"
	VersionShort        = "Read and manipulate the framework version marker"
	ImpactUse           = "impact"
	ImpactShort         = "Classify changed paths and gate version bumps"
	ImpactCheckUse      = "check <base-ref>"
	ImpactCheckShort    = "Check whether changes since base-ref require a version bump"
	SpecRunUse          = "specrun"
	SpecRunShort        = "Apply the pending spec-run directory transition"
	SpecRunModeUse      = "mode <first|update|new>"
	SpecRunModeShort    = "Set the spec-run mode flag for the next transition"
	BackupsUse          = "backups"
	BackupsShort        = "Inspect deployment backups"
	BackupsListUse      = "list"
	BackupsListShort    = "List deployment backups, newest first"
	FlagSource          = "path to the framework source tree"
	FlagTarget          = "target root to deploy into (overrides FK_TARGET_ROOT)"
	FlagYes             = "skip interactive confirmation"
	FlagDiff            = "print unified diffs of files that will change"
	FlagDiffLines       = "maximum diff lines shown per file"
	FlagVerbose         = "print per-path classification detail"
	FlagMachineReadable = "emit key=value lines for automation"
	FlagPolicy          = "path to a TOML policy file overriding the default table"
	FlagSpecRoot        = "spec-run root directory"

	PromptYesDefaultFmt = "%s [Y/n]: "
	PromptNoDefaultFmt  = "%s [y/N]: "

	RequiresTerminalFmt = "%s requires an interactive terminal; pass --yes to proceed non-interactively"
	TargetNotDirFmt     = "target root %s exists but is not a directory"
	PathLineFmt         = "  - %s\n"
)
