// Package changelog validates the framework changelog document: a title
// line followed by version sections of the form "## [X.Y.Z] - DATE", each
// containing "### <category>" subsections.
package changelog

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/framekit/framekit/internal/messages"
	"github.com/framekit/framekit/internal/semver"
)

// Issue codes reported by Validate.
const (
	CodeMissingTitle          = "missing-title"
	CodeMissingVersionHeaders = "missing-version-headers"
	CodeMissingCurrentVersion = "missing-current-version"
	CodeMissingCategories     = "missing-categories"
)

// Issue is a single validation failure.
type Issue struct {
	Code    string
	Message string
}

// ValidationError accumulates every failed check; Validate never stops at
// the first problem.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	codes := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		codes[i] = issue.Code
	}
	return fmt.Sprintf("changelog validation failed: %s", strings.Join(codes, ", "))
}

var versionHeaderRe = regexp.MustCompile(`^## \[(\d+\.\d+\.\d+)\] - \d{4}-\d{2}-\d{2}\s*$`)

// Validate checks doc for structural validity and for a populated section
// matching target. All failures are accumulated into a *ValidationError.
func Validate(doc string, target semver.Version) error {
	lines := strings.Split(doc, "\n")
	var issues []Issue

	if !hasTitle(lines) {
		issues = append(issues, Issue{Code: CodeMissingTitle, Message: messages.ChangelogMissingTitle})
	}

	sections := parseSections(lines)
	if len(sections) == 0 {
		issues = append(issues, Issue{Code: CodeMissingVersionHeaders, Message: messages.ChangelogMissingVersionHeaders})
	}

	section, found := findSection(sections, target)
	switch {
	case !found:
		issues = append(issues, Issue{
			Code:    CodeMissingCurrentVersion,
			Message: fmt.Sprintf(messages.ChangelogMissingCurrentFmt, target),
		})
	case section.categories == 0:
		issues = append(issues, Issue{
			Code:    CodeMissingCategories,
			Message: fmt.Sprintf(messages.ChangelogMissingCategoriesFmt, target),
		})
	}

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}

type section struct {
	version    string
	categories int
}

func hasTitle(lines []string) bool {
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		return strings.HasPrefix(trimmed, "# ")
	}
	return false
}

func parseSections(lines []string) []section {
	var sections []section
	for _, line := range lines {
		if match := versionHeaderRe.FindStringSubmatch(line); match != nil {
			sections = append(sections, section{version: match[1]})
			continue
		}
		if len(sections) > 0 && strings.HasPrefix(line, "### ") && strings.TrimSpace(line[4:]) != "" {
			sections[len(sections)-1].categories++
		}
	}
	return sections
}

func findSection(sections []section, target semver.Version) (section, bool) {
	for _, s := range sections {
		v, err := semver.Parse(s.version)
		if err != nil {
			continue
		}
		if semver.Compare(v, target) == 0 {
			return s, true
		}
	}
	return section{}, false
}
