package csslint

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yacobolo/cssbuild"
)

func TestLinter_Lint(t *testing.T) {
	l := New(logr.Discard())
	file := cssbuild.NewFile("/project/b.scss", "/project", []byte(".a {\n  color: red;\n  color: blue;\n"))

	result, err := l.Lint(context.Background(), file, "")
	require.NoError(t, err)

	assert.Equal(t, "/project/b.scss", result.FilePath)
	assert.Equal(t, 1, result.ErrorCount)
	assert.Equal(t, 1, result.WarningCount)
	require.Len(t, result.Issues, 2)
	assert.Equal(t, RuleBraceBalance, result.Issues[0].Rule)
}

func TestLinter_ReloadsChangedConfig(t *testing.T) {
	path := writeConfig(t, "rules:\n  no-ids: 2\n")
	l := New(logr.Discard())
	file := cssbuild.NewFile("/p/a.css", "/p", []byte("#a { color: red }"))

	result, err := l.Lint(context.Background(), file, path)
	require.NoError(t, err)
	assert.Equal(t, 1, result.ErrorCount)

	require.NoError(t, os.WriteFile(path, []byte("rules:\n  no-ids: 0\n"), 0o644))
	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, later, later))

	result, err = l.Lint(context.Background(), file, path)
	require.NoError(t, err)
	assert.Zero(t, result.ErrorCount)
	assert.Zero(t, result.WarningCount)
}

func TestLinter_ConfigError(t *testing.T) {
	path := writeConfig(t, "rules:\n  nope: 1\n")
	l := New(logr.Discard())

	_, err := l.Lint(context.Background(), cssbuild.NewFile("/p/a.css", "/p", nil), path)
	require.Error(t, err)
	assert.Empty(t, l.Results())
}

func TestLinter_ResultsAndReset(t *testing.T) {
	l := New(logr.Discard())
	ctx := context.Background()

	_, err := l.Lint(ctx, cssbuild.NewFile("/p/z.css", "/p", []byte(".z{}")), "")
	require.NoError(t, err)
	_, err = l.Lint(ctx, cssbuild.NewFile("/p/a.css", "/p", []byte(".a{color:red}")), "")
	require.NoError(t, err)

	results := l.Results()
	require.Len(t, results, 2)
	assert.Equal(t, "/p/a.css", results[0].FilePath)
	assert.Equal(t, 1, results[1].WarningCount)

	l.Reset()
	assert.Empty(t, l.Results())
}

func TestLinter_KeepsLatestResultPerFile(t *testing.T) {
	l := New(logr.Discard())
	ctx := context.Background()

	_, err := l.Lint(ctx, cssbuild.NewFile("/p/a.css", "/p", []byte(".a{}")), "")
	require.NoError(t, err)
	_, err = l.Lint(ctx, cssbuild.NewFile("/p/a.css", "/p", []byte(".a{color:red}")), "")
	require.NoError(t, err)

	results := l.Results()
	require.Len(t, results, 1)
	assert.Zero(t, results[0].WarningCount, "the earlier empty-ruleset warning is replaced")
	assert.Empty(t, results[0].Issues)
}

func TestLinter_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(logr.Discard()).Lint(ctx, cssbuild.NewFile("/p/a.css", "/p", nil), "")
	require.ErrorIs(t, err, context.Canceled)
}
