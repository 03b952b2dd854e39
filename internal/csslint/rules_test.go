package csslint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".csslint.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadRules_MissingFileUsesDefaults(t *testing.T) {
	rules, err := LoadRules(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultRules(), rules)

	rules, err = LoadRules("")
	require.NoError(t, err)
	assert.Equal(t, DefaultRules(), rules)
}

func TestLoadRules_MergesWithDefaults(t *testing.T) {
	path := writeConfig(t, `
rules:
  no-important: 2
  no-ids: [0, {allow-leading-underscore: true}]
  no-empty-rulesets: "0"
`)
	rules, err := LoadRules(path)
	require.NoError(t, err)

	assert.Equal(t, SeverityError, rules[RuleNoImportant])
	assert.Equal(t, SeverityOff, rules[RuleNoIDs])
	assert.Equal(t, SeverityOff, rules[RuleNoEmptyRulesets])
	assert.Equal(t, SeverityError, rules[RuleBraceBalance])
	assert.False(t, rules.Enabled(RuleNoIDs))
	assert.True(t, rules.Enabled(RuleNoDuplicateProperties))
}

func TestLoadRules_WithoutDefaults(t *testing.T) {
	path := writeConfig(t, `
options:
  merge-default-rules: false
rules:
  no-ids: 2
`)
	rules, err := LoadRules(path)
	require.NoError(t, err)
	assert.Equal(t, Rules{RuleNoIDs: SeverityError}, rules)
}

func TestLoadRules_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "unknown rule", content: "rules:\n  no-color-names: 1\n", want: `unknown rule "no-color-names"`},
		{name: "out of range", content: "rules:\n  no-ids: 3\n", want: "out of range"},
		{name: "not a number", content: "rules:\n  no-ids: high\n", want: "invalid severity"},
		{name: "bad yaml", content: "rules: [\n", want: "loading lint config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadRules(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
