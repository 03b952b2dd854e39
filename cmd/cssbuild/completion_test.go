package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTargetCandidates(t *testing.T) {
	tasks := []string{"app", "theme"}

	t.Run("tasks only", func(t *testing.T) {
		assert.Equal(t, []string{"app", "theme"}, targetCandidates(tasks, false, ""))
	})

	t.Run("labels by prefix", func(t *testing.T) {
		assert.Equal(t, []string{
			"app", "app:build", "app:compress", "app:lint", "app:nest",
		}, targetCandidates(tasks, true, "ap"))
	})

	t.Run("bare functions", func(t *testing.T) {
		assert.Equal(t, []string{"nest"}, targetCandidates(tasks, true, "ne"))
	})

	t.Run("no match", func(t *testing.T) {
		assert.Empty(t, targetCandidates(tasks, true, "zzz"))
	})
}

func TestVersionString(t *testing.T) {
	assert.True(t, strings.HasPrefix(versionString(), "cssbuild "))
}
