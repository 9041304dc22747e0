// Package impact classifies changed paths against an ordered rule table to
// decide whether a change set requires a semantic version bump.
package impact

import (
	"fmt"
	"strings"
)

// MatchKind selects how a rule pattern is applied to a path.
type MatchKind string

// Supported rule match kinds.
const (
	MatchExact  MatchKind = "exact"
	MatchPrefix MatchKind = "prefix"
	MatchSuffix MatchKind = "suffix"
)

// Rule is one entry in an ordered rule list.
type Rule struct {
	Kind    MatchKind
	Pattern string
}

// Matches reports whether path matches the rule. Paths are compared with
// forward slashes, as produced by git.
func (r Rule) Matches(path string) bool {
	switch r.Kind {
	case MatchExact:
		return path == r.Pattern
	case MatchPrefix:
		return strings.HasPrefix(path, r.Pattern)
	case MatchSuffix:
		return strings.HasSuffix(path, r.Pattern)
	default:
		return false
	}
}

// Validate reports whether the rule is usable.
func (r Rule) Validate() error {
	switch r.Kind {
	case MatchExact, MatchPrefix, MatchSuffix:
	default:
		return fmt.Errorf("unknown match kind %q", r.Kind)
	}
	if strings.TrimSpace(r.Pattern) == "" {
		return fmt.Errorf("pattern is required")
	}
	return nil
}

// Table holds the ordered protected and exempt rule lists. Protected rules
// are always evaluated before exempt rules; the first matching rule decides.
type Table struct {
	Protected []Rule
	Exempt    []Rule

	// RequireBumpOnAnyProtected makes a single protected-path change
	// sufficient to require a bump regardless of how many exempt paths
	// changed. When false, protected changes must outnumber exempt ones.
	RequireBumpOnAnyProtected bool
}

// Classification partitions a change set. Order within each bucket follows
// the input order.
type Classification struct {
	Protected    []string
	Exempt       []string
	Unclassified []string
}

// DefaultTable returns the built-in policy table for the framework source
// tree.
func DefaultTable() Table {
	return Table{
		Protected: []Rule{
			{Kind: MatchPrefix, Pattern: "framework/agents/"},
			{Kind: MatchPrefix, Pattern: "framework/scripts/"},
			{Kind: MatchExact, Pattern: "framework/VERSION"},
		},
		Exempt: []Rule{
			{Kind: MatchExact, Pattern: "README.md"},
			{Kind: MatchExact, Pattern: "framework/CHANGELOG.md"},
			{Kind: MatchPrefix, Pattern: ".github/"},
			{Kind: MatchPrefix, Pattern: "docs/"},
			{Kind: MatchSuffix, Pattern: ".example.md"},
		},
		RequireBumpOnAnyProtected: true,
	}
}

// Classify partitions paths into protected, exempt, and unclassified
// buckets. Classification is deterministic and total: every path lands in
// exactly one bucket, so classifying the union of two disjoint change sets
// merges their individual classifications.
func (t Table) Classify(paths []string) Classification {
	var out Classification
	for _, path := range paths {
		switch {
		case matchAny(t.Protected, path):
			out.Protected = append(out.Protected, path)
		case matchAny(t.Exempt, path):
			out.Exempt = append(out.Exempt, path)
		default:
			out.Unclassified = append(out.Unclassified, path)
		}
	}
	return out
}

func matchAny(rules []Rule, path string) bool {
	for _, rule := range rules {
		if rule.Matches(path) {
			return true
		}
	}
	return false
}

// BumpRequired applies the table's policy to a classification. Unclassified
// paths never influence the decision; they are reported as warnings only.
func (t Table) BumpRequired(c Classification) bool {
	if t.RequireBumpOnAnyProtected {
		return len(c.Protected) > 0
	}
	return len(c.Protected) > len(c.Exempt)
}
