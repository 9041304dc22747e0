// Package gate combines the change-impact classifier, version utility, and
// changelog validator into the continuous-integration policy check: protected
// changes must carry a version bump and a changelog entry.
package gate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/framekit/framekit/internal/changelog"
	"github.com/framekit/framekit/internal/impact"
	"github.com/framekit/framekit/internal/messages"
	"github.com/framekit/framekit/internal/semver"
)

// Status is the gate outcome for automation.
type Status string

// Gate outcomes.
const (
	StatusSatisfied   Status = "satisfied"
	StatusUnsatisfied Status = "unsatisfied"
	StatusNotRequired Status = "not_required"
)

// Relative marker and changelog locations inside the source repository.
const (
	versionRelPath   = "framework/VERSION"
	changelogRelPath = "framework/CHANGELOG.md"
)

// CheckOptions configures one gate run.
type CheckOptions struct {
	// Dir is the repository root the check runs in.
	Dir string
	// BaseRef is the git reference the working tree is compared against.
	BaseRef string
	// Table is the rule table; zero value means impact.DefaultTable().
	Table *impact.Table
	// Git runs git subcommands; nil means impact.RunGit.
	Git impact.GitRunner
}

// Report is the gate result.
type Report struct {
	Changed         []string
	Classification  impact.Classification
	BumpRequired    bool
	BaseVersion     string
	CurrentVersion  string
	Status          Status
	ChangelogIssues []changelog.Issue
}

// Passed reports whether the gate allows the change set through.
func (r *Report) Passed() bool {
	return r.Status != StatusUnsatisfied
}

// Check classifies the changes since BaseRef and, when a bump is required,
// verifies the version moved forward and the changelog documents it.
func Check(ctx context.Context, opts CheckOptions) (*Report, error) {
	run := opts.Git
	if run == nil {
		run = impact.RunGit
	}
	table := impact.DefaultTable()
	if opts.Table != nil {
		table = *opts.Table
	}

	changed, err := impact.ChangedPaths(ctx, run, opts.Dir, opts.BaseRef)
	if err != nil {
		return nil, err
	}
	classification := table.Classify(changed)
	report := &Report{
		Changed:        changed,
		Classification: classification,
		BumpRequired:   table.BumpRequired(classification),
	}

	current, err := semver.Read(filepath.Join(opts.Dir, filepath.FromSlash(versionRelPath)))
	if err != nil {
		return nil, err
	}
	report.CurrentVersion = current.String()

	baseText, baseErr := impact.FileAtRef(ctx, run, opts.Dir, opts.BaseRef, versionRelPath)
	if baseErr == nil {
		base, parseErr := semver.Parse(strings.TrimSpace(baseText))
		if parseErr != nil {
			return nil, parseErr
		}
		report.BaseVersion = base.String()
	}

	if !report.BumpRequired {
		report.Status = StatusNotRequired
		return report, nil
	}
	if baseErr != nil {
		// The marker does not exist at the base ref; a first release cannot
		// be compared, so the requirement is unsatisfiable until the marker
		// lands.
		return nil, baseErr
	}

	base, err := semver.Parse(report.BaseVersion)
	if err != nil {
		return nil, err
	}
	if semver.Compare(current, base) != 1 {
		report.Status = StatusUnsatisfied
		return report, nil
	}

	doc, err := os.ReadFile(filepath.Join(opts.Dir, filepath.FromSlash(changelogRelPath)))
	if err != nil {
		report.Status = StatusUnsatisfied
		report.ChangelogIssues = []changelog.Issue{{
			Code:    changelog.CodeMissingVersionHeaders,
			Message: fmt.Sprintf("failed to read %s: %v", changelogRelPath, err),
		}}
		return report, nil
	}
	if err := changelog.Validate(string(doc), current); err != nil {
		var valErr *changelog.ValidationError
		if errors.As(err, &valErr) {
			report.Status = StatusUnsatisfied
			report.ChangelogIssues = valErr.Issues
			return report, nil
		}
		return nil, err
	}

	report.Status = StatusSatisfied
	return report, nil
}

// WriteMachineReadable emits the key=value lines consumed by automation
// pipelines.
func (r *Report) WriteMachineReadable(w io.Writer) error {
	lines := []string{
		fmt.Sprintf("version_required=%t", r.BumpRequired),
		fmt.Sprintf("base_version=%s", r.BaseVersion),
		fmt.Sprintf("current_version=%s", r.CurrentVersion),
		fmt.Sprintf("requirement_status=%s", r.Status),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// WriteText renders the human-readable report. verbose adds per-path
// classification detail.
func (r *Report) WriteText(w io.Writer, verbose bool) {
	if r.BumpRequired {
		_, _ = fmt.Fprintf(w, messages.GateBumpRequiredFmt, len(r.Classification.Protected))
	} else {
		_, _ = fmt.Fprint(w, messages.GateBumpNotRequired)
	}
	switch r.Status {
	case StatusSatisfied:
		_, _ = fmt.Fprintf(w, messages.GateSatisfiedFmt, r.BaseVersion, r.CurrentVersion)
	case StatusUnsatisfied:
		_, _ = fmt.Fprintf(w, messages.GateUnsatisfiedFmt, r.CurrentVersion)
	}
	if len(r.ChangelogIssues) > 0 {
		_, _ = fmt.Fprintf(w, messages.GateChangelogIssuesFmt, r.CurrentVersion)
		for _, issue := range r.ChangelogIssues {
			_, _ = fmt.Fprintf(w, messages.PathLineFmt, issue.Code+": "+issue.Message)
		}
	}
	if len(r.Classification.Unclassified) > 0 {
		_, _ = fmt.Fprintln(w, messages.ImpactUnclassifiedHeader)
		for _, path := range r.Classification.Unclassified {
			_, _ = fmt.Fprintf(w, messages.PathLineFmt, path)
		}
	}
	if !verbose {
		return
	}
	writePathSection(w, "Protected:", r.Classification.Protected)
	writePathSection(w, "Exempt:", r.Classification.Exempt)
}

func writePathSection(w io.Writer, header string, paths []string) {
	if len(paths) == 0 {
		return
	}
	_, _ = fmt.Fprintln(w, header)
	for _, path := range paths {
		_, _ = fmt.Fprintf(w, messages.PathLineFmt, path)
	}
}
