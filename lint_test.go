package cssbuild

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLint_CleanSetPasses(t *testing.T) {
	h := newHarness(t, []sourceEntry{
		{name: "a.scss", content: ".a{}"},
		{name: "b.scss", content: ".b{}"},
	}, map[string][2]int{"b.scss": {0, 3}}, AppConfig{})

	err := h.task.Lint(context.Background(), NewInvocation("app:lint"))
	require.NoError(t, err)

	assert.False(t, h.task.LintFailed())
	assert.Empty(t, h.notifier.messages, "reporter must not run for a clean set")
	assert.Empty(t, h.out.String())
	assert.Equal(t, []string{"a.scss", "b.scss"}, h.linter.linted)
}

func TestLint_BatchKeepsSourceOrder(t *testing.T) {
	h := newHarness(t, []sourceEntry{
		{name: "c.scss"},
		{name: "a.scss"},
		{name: "ok.scss"},
		{name: "b.scss"},
	}, map[string][2]int{
		"c.scss": {1, 0},
		"a.scss": {4, 2},
		"b.scss": {2, 1},
	}, AppConfig{})

	err := h.task.Lint(context.Background(), NewInvocation())
	require.NoError(t, err, "incidental lint failures are advisory")
	assert.True(t, h.task.LintFailed())

	require.Len(t, h.notifier.messages, 1)
	assert.Equal(t, []string{
		"1 error, 0 warnings  c.scss",
		"4 errors, 2 warnings  a.scss",
		"2 errors, 1 warning  b.scss",
	}, h.notifier.messages[0])
	assert.Equal(t, []string{"app:lint"}, h.notifier.labels)
}

func TestLint_ScenarioFatalWhenRequested(t *testing.T) {
	h := newHarness(t, []sourceEntry{
		{name: "a.scss"},
		{name: "b.scss"},
	}, map[string][2]int{"b.scss": {2, 1}}, AppConfig{})

	err := h.task.Lint(context.Background(), NewInvocation("app:lint"))
	require.Error(t, err)

	var pluginErr *PluginError
	require.True(t, errors.As(err, &pluginErr))
	assert.Equal(t, LinterName, pluginErr.Plugin)
	assert.Equal(t, "\n2 errors, 1 warning  b.scss\n", pluginErr.Message)
	assert.True(t, h.task.LintFailed())
	assert.Empty(t, h.out.String(), "fatal reports are not duplicated as advisories")

	out, err := h.task.Nest(context.Background(), NewInvocation("app:lint"))
	require.NoError(t, err)
	assert.Empty(t, out.Files)
	assert.Zero(t, h.rec.count("compile"))
	assert.Zero(t, h.rec.count("write"))
	assert.Zero(t, h.rec.count("sync"))
}

func TestLint_FatalWhenParentRequested(t *testing.T) {
	h := newHarness(t, []sourceEntry{{name: "b.scss"}}, map[string][2]int{"b.scss": {1, 0}}, AppConfig{})

	inv := NewInvocation("app:nest").Call("app:nest")
	err := h.task.Lint(context.Background(), inv)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 error, 0 warnings  b.scss")
}

func TestLint_AdvisoryWhenIncidental(t *testing.T) {
	h := newHarness(t, []sourceEntry{{name: "b.scss"}}, map[string][2]int{"b.scss": {2, 1}}, AppConfig{})

	err := h.task.Lint(context.Background(), NewInvocation("theme:lint").Call("watch"))
	require.NoError(t, err)
	assert.True(t, h.task.LintFailed())
	assert.Contains(t, h.out.String(), "[app:lint]")
	assert.Contains(t, h.out.String(), "Error:\n2 errors, 1 warning  b.scss")
}

func TestLint_EmptyFilesSkipped(t *testing.T) {
	h := newHarness(t, []sourceEntry{
		{name: "partials", empty: true},
		{name: "a.scss"},
	}, map[string][2]int{"partials": {9, 9}}, AppConfig{})

	require.NoError(t, h.task.Lint(context.Background(), NewInvocation("app:lint")))
	assert.False(t, h.task.LintFailed())
	assert.Equal(t, []string{"a.scss"}, h.linter.linted)
}

func TestLint_StreamedFileIsFatal(t *testing.T) {
	h := newHarness(t, []sourceEntry{
		{name: "a.scss"},
		{name: "stream.scss", streamed: true},
		{name: "b.scss"},
	}, map[string][2]int{"a.scss": {1, 0}, "stream.scss": {5, 0}}, AppConfig{})

	err := h.task.Lint(context.Background(), NewInvocation())
	require.Error(t, err)

	var pluginErr *PluginError
	require.True(t, errors.As(err, &pluginErr))
	assert.Equal(t, "Streams are not supported!", pluginErr.Message)
	assert.Equal(t, []string{"a.scss"}, h.linter.linted)
	assert.False(t, h.task.LintFailed(), "a partial pass never sets the gate")
	assert.Empty(t, h.notifier.messages)
}

func TestLint_ResetsGateEachPass(t *testing.T) {
	h := newHarness(t, []sourceEntry{{name: "b.scss"}}, map[string][2]int{"b.scss": {2, 0}}, AppConfig{})
	ctx := context.Background()

	require.NoError(t, h.task.Lint(ctx, NewInvocation()))
	assert.True(t, h.task.LintFailed())

	h.linter.counts = map[string][2]int{}
	require.NoError(t, h.task.Lint(ctx, NewInvocation()))
	assert.False(t, h.task.LintFailed())
}

func TestLint_CollaboratorErrors(t *testing.T) {
	t.Run("source", func(t *testing.T) {
		h := newHarness(t, nil, nil, AppConfig{})
		h.source.err = errBoom
		err := h.task.Lint(context.Background(), NewInvocation())
		require.ErrorIs(t, err, errBoom)
		assert.Contains(t, err.Error(), "app:lint")
	})

	t.Run("linter", func(t *testing.T) {
		h := newHarness(t, []sourceEntry{{name: "a.scss"}}, nil, AppConfig{})
		h.linter.err = errBoom
		err := h.task.Lint(context.Background(), NewInvocation())
		require.ErrorIs(t, err, errBoom)
		assert.False(t, h.task.LintFailed())
	})
}

func TestLint_ConfigPath(t *testing.T) {
	h := newHarness(t, []sourceEntry{{name: "a.scss"}}, nil, AppConfig{})
	require.NoError(t, h.task.Lint(context.Background(), NewInvocation()))
	assert.Equal(t, []string{filepath.Join(testCwd, ".csslint.yml")}, h.linter.configs)
}

func TestLint_ResultAttachedOnce(t *testing.T) {
	h := newHarness(t, []sourceEntry{{name: "a.scss"}}, map[string][2]int{"a.scss": {0, 2}}, AppConfig{})
	files, err := h.source.Read(context.Background(), SourceSpec{Cwd: testCwd})
	require.NoError(t, err)

	run := NewRun(context.Background())
	_, err = h.task.lintFiles(run, files)
	require.NoError(t, err)

	_, err = h.task.lintFiles(run, files)
	require.ErrorIs(t, err, ErrLintAttached)

	result, ok := files[0].LintResult()
	require.True(t, ok)
	assert.Equal(t, 2, result.WarningCount)
}
