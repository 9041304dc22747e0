package impact

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/framekit/framekit/internal/messages"
)

// policyFile is the TOML shape of an on-disk policy table.
type policyFile struct {
	RequireBumpOnAnyProtected *bool        `toml:"require_bump_on_any_protected"`
	Protected                 []policyRule `toml:"protected"`
	Exempt                    []policyRule `toml:"exempt"`
}

type policyRule struct {
	Kind    string `toml:"kind"`
	Pattern string `toml:"pattern"`
}

// LoadTable reads a TOML policy file. A missing file yields the default
// table; a present but invalid file is an error, never silently ignored.
func LoadTable(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultTable(), nil
		}
		return Table{}, fmt.Errorf(messages.ImpactPolicyReadFmt, path, err)
	}
	var file policyFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return Table{}, fmt.Errorf(messages.ImpactPolicyParseFmt, path, err)
	}

	table := Table{RequireBumpOnAnyProtected: true}
	if file.RequireBumpOnAnyProtected != nil {
		table.RequireBumpOnAnyProtected = *file.RequireBumpOnAnyProtected
	}
	var convErr error
	table.Protected, convErr = convertRules(path, "protected", file.Protected)
	if convErr != nil {
		return Table{}, convErr
	}
	table.Exempt, convErr = convertRules(path, "exempt", file.Exempt)
	if convErr != nil {
		return Table{}, convErr
	}
	return table, nil
}

func convertRules(path string, list string, in []policyRule) ([]Rule, error) {
	out := make([]Rule, 0, len(in))
	for i, raw := range in {
		rule := Rule{Kind: MatchKind(raw.Kind), Pattern: raw.Pattern}
		if err := rule.Validate(); err != nil {
			return nil, fmt.Errorf(messages.ImpactPolicyRuleFmt, path, i, fmt.Sprintf("%s list: %v", list, err))
		}
		out = append(out, rule)
	}
	return out, nil
}
