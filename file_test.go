package cssbuild

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFile_Variants(t *testing.T) {
	buffered := NewFile("/p/a.scss", "/p", []byte(".a{}"))
	assert.False(t, buffered.IsEmpty())
	assert.False(t, buffered.IsStreamed())
	assert.Equal(t, []byte(".a{}"), buffered.Bytes())

	empty := &File{Path: "/p/dir", Contents: Empty{}}
	assert.True(t, empty.IsEmpty())
	assert.Nil(t, empty.Bytes())

	zero := &File{Path: "/p/zero"}
	assert.True(t, zero.IsEmpty())

	streamed := &File{Path: "/p/s.scss", Contents: Streamed{Reader: strings.NewReader("x")}}
	assert.True(t, streamed.IsStreamed())
	assert.False(t, streamed.IsEmpty())
	assert.Nil(t, streamed.Bytes())
}

func TestFile_Relative(t *testing.T) {
	assert.Equal(t, "nested/a.css", NewFile("/p/src/nested/a.css", "/p/src", nil).Relative())
	assert.Equal(t, "a.css", NewFile("/p/a.css", "", nil).Relative())
	assert.Equal(t, "a.css", NewFile("/elsewhere/a.css", "/p/src", nil).Relative())
}

func TestFile_LintResultIsImmutable(t *testing.T) {
	f := NewFile("/p/a.scss", "/p", nil)
	issues := []Issue{{Rule: "no-ids", Severity: SeverityWarning}}
	require.NoError(t, f.AttachLint(NewLintResult("/p/a.scss", issues)))

	issues[0].Rule = "mutated"
	got, ok := f.LintResult()
	require.True(t, ok)
	got.Issues[0].Severity = SeverityError
	got.ErrorCount = 10

	again, _ := f.LintResult()
	assert.Equal(t, "no-ids", again.Issues[0].Rule)
	assert.Equal(t, SeverityWarning, again.Issues[0].Severity)
	assert.Zero(t, again.ErrorCount)
	assert.Equal(t, 1, again.WarningCount)

	assert.True(t, errors.Is(f.AttachLint(LintResult{ErrorCount: 3}), ErrLintAttached))
}

func TestRun_FirstFailureWins(t *testing.T) {
	run := NewRun(context.Background())
	first := errors.New("first")
	run.Fail(first)
	run.Fail(errors.New("second"))
	run.Fail(nil)

	assert.Equal(t, first, run.Err())
	assert.Equal(t, first, context.Cause(run.Context()))
	assert.False(t, run.Ended())

	run.End()
	assert.True(t, run.Ended())
}

func TestInvocation(t *testing.T) {
	inv := NewInvocation("app:build")
	child := inv.Call("app:build").Call("app:nest")

	assert.Empty(t, inv.Stack)
	assert.Equal(t, []string{"app:build", "app:nest"}, child.Stack)
	assert.True(t, child.Targets("app:lint"))
	assert.True(t, inv.Targets("app:build"))
	assert.False(t, inv.Targets("app:lint"))
	assert.False(t, NewInvocation().Call("watch").Targets("app:lint"))
	assert.Equal(t, "app:lint", Label("app", "lint"))
}
