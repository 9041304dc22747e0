package messages

// Change impact and changelog validation messages.
const (
	ImpactBaseRefRequired    = "base reference is required"
	ImpactGitDiffFailedFmt   = "git diff against %s failed: %w"
	ImpactGitShowFailedFmt   = "git show %s failed: %w"
	ImpactPolicyReadFmt      = "failed to read policy file %s: %w"
	ImpactPolicyParseFmt     = "failed to parse policy file %s: %w"
	ImpactPolicyRuleFmt      = "policy file %s: rule %d: %s"
	ImpactUnclassifiedHeader = "Warning: the following changed paths are not covered by the policy table:"

	ChangelogMissingTitle          = "changelog has no title line"
	ChangelogMissingVersionHeaders = "changelog has no version section headers"
	ChangelogMissingCurrentFmt     = "changelog has no section for version %s"
	ChangelogMissingCategoriesFmt  = "changelog section for %s has no category subsections"

	GateBumpRequiredFmt    = "Version bump required: %d protected path(s) changed.\n"
	GateBumpNotRequired    = "No version bump required.\n"
	GateSatisfiedFmt       = "Version bumped %s -> %s with changelog entry.\n"
	GateUnsatisfiedFmt     = "Requirement unsatisfied: version is still %s.\n"
	GateChangelogIssuesFmt = "Changelog problems for %s:\n"
)
