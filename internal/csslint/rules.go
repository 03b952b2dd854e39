package csslint

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Rule names
const (
	RuleNoImportant           = "no-important"
	RuleNoEmptyRulesets       = "no-empty-rulesets"
	RuleNoDuplicateProperties = "no-duplicate-properties"
	RuleNoIDs                 = "no-ids"
	RuleBraceBalance          = "brace-balance"
)

// Severities follow the 0 (off), 1 (warning), 2 (error) convention.
const (
	SeverityOff = iota
	SeverityWarning
	SeverityError
)

// Rules maps rule names to severities.
type Rules map[string]int

// DefaultRules returns the rule set used when no config file exists.
func DefaultRules() Rules {
	return Rules{
		RuleNoImportant:           SeverityWarning,
		RuleNoEmptyRulesets:       SeverityWarning,
		RuleNoDuplicateProperties: SeverityWarning,
		RuleNoIDs:                 SeverityWarning,
		RuleBraceBalance:          SeverityError,
	}
}

// Enabled reports whether a rule is switched on.
func (r Rules) Enabled(rule string) bool {
	return r[rule] > SeverityOff
}

// LoadRules reads a YAML rule file:
//
//	options:
//	  merge-default-rules: true
//	rules:
//	  no-important: 2
//	  no-ids: [0]
//
// A missing file yields DefaultRules.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()
	if path == "" {
		return rules, nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return rules, nil
		}
		return nil, fmt.Errorf("lint config %s: %w", path, err)
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("loading lint config %s: %w", path, err)
	}

	if k.Exists("options.merge-default-rules") && !k.Bool("options.merge-default-rules") {
		rules = Rules{}
	}

	for _, name := range k.MapKeys("rules") {
		if _, known := DefaultRules()[name]; !known {
			return nil, fmt.Errorf("lint config %s: unknown rule %q", path, name)
		}
		severity, err := parseSeverity(k.Get("rules." + name))
		if err != nil {
			return nil, fmt.Errorf("lint config %s: rule %s: %w", path, name, err)
		}
		rules[name] = severity
	}
	return rules, nil
}

// parseSeverity accepts 1, "1" or [1, {...}].
func parseSeverity(v any) (int, error) {
	var n int
	switch val := v.(type) {
	case int:
		n = val
	case int64:
		n = int(val)
	case float64:
		n = int(val)
	case string:
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return 0, fmt.Errorf("invalid severity %q", val)
		}
		n = parsed
	case []any:
		if len(val) == 0 {
			return 0, errors.New("empty severity list")
		}
		return parseSeverity(val[0])
	default:
		return 0, fmt.Errorf("invalid severity %v", v)
	}
	if n < SeverityOff || n > SeverityError {
		return 0, fmt.Errorf("severity %d out of range 0-2", n)
	}
	return n, nil
}
