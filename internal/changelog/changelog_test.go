package changelog

import (
	"errors"
	"testing"

	"github.com/framekit/framekit/internal/semver"
)

const validDoc = `# Changelog

## [0.2.0] - 2026-08-30

### Added
- New agent definitions.

## [0.1.0] - 2026-08-01

### Added
- Initial release.
`

func issueCodes(t *testing.T, err error) []string {
	t.Helper()
	if err == nil {
		t.Fatal("expected validation error")
	}
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("error type %T, want *ValidationError", err)
	}
	codes := make([]string, len(valErr.Issues))
	for i, issue := range valErr.Issues {
		codes[i] = issue.Code
	}
	return codes
}

func TestValidateOK(t *testing.T) {
	if err := Validate(validDoc, semver.Version{Minor: 2}); err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if err := Validate(validDoc, semver.Version{Minor: 1}); err != nil {
		t.Fatalf("Validate error for older section: %v", err)
	}
}

func TestValidateMissingTargetSection(t *testing.T) {
	codes := issueCodes(t, Validate(validDoc, semver.Version{Minor: 3}))
	if len(codes) != 1 || codes[0] != CodeMissingCurrentVersion {
		t.Fatalf("codes = %v, want [missing-current-version]", codes)
	}
}

func TestValidateMissingCategories(t *testing.T) {
	doc := "# Changelog\n\n## [0.2.0] - 2026-08-30\n\nno subsections here\n"
	codes := issueCodes(t, Validate(doc, semver.Version{Minor: 2}))
	if len(codes) != 1 || codes[0] != CodeMissingCategories {
		t.Fatalf("codes = %v, want [missing-categories]", codes)
	}
}

func TestValidateAccumulatesAllFailures(t *testing.T) {
	codes := issueCodes(t, Validate("just prose, no structure\n", semver.Version{Minor: 2}))
	want := map[string]bool{
		CodeMissingTitle:          true,
		CodeMissingVersionHeaders: true,
		CodeMissingCurrentVersion: true,
	}
	if len(codes) != len(want) {
		t.Fatalf("codes = %v, want all of %v", codes, want)
	}
	for _, code := range codes {
		if !want[code] {
			t.Fatalf("unexpected code %q in %v", code, codes)
		}
	}
}

func TestValidateEmptyDoc(t *testing.T) {
	codes := issueCodes(t, Validate("", semver.Version{Major: 1}))
	if len(codes) < 3 {
		t.Fatalf("empty doc should fail multiple checks, got %v", codes)
	}
}

func TestValidateHeaderFormatStrict(t *testing.T) {
	// Headers missing the date or brackets are not version sections.
	doc := "# Changelog\n\n## 0.2.0\n\n### Added\n- x\n"
	codes := issueCodes(t, Validate(doc, semver.Version{Minor: 2}))
	found := false
	for _, code := range codes {
		if code == CodeMissingVersionHeaders {
			found = true
		}
	}
	if !found {
		t.Fatalf("codes = %v, want missing-version-headers", codes)
	}
}

func TestValidateCategoryNameUnchecked(t *testing.T) {
	doc := "# Changelog\n\n## [1.0.0] - 2026-01-01\n\n### Whatever Heading\n- entry\n"
	if err := Validate(doc, semver.Version{Major: 1}); err != nil {
		t.Fatalf("category names are unvalidated beyond presence: %v", err)
	}
}
