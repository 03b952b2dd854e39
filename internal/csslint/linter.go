// Package csslint is the built-in stylesheet lint engine. It walks the
// tdewolff CSS token stream and reports rule violations as cssbuild issues.
package csslint

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/yacobolo/cssbuild"
)

// Linter implements cssbuild.Linter. Rule files are cached per path and
// reloaded when their modification time changes. Only the latest result per
// file is kept.
type Linter struct {
	log logr.Logger

	mu      sync.Mutex
	cache   map[string]cachedRules
	results map[string]cssbuild.LintResult
}

type cachedRules struct {
	modTime time.Time
	rules   Rules
}

// New creates a linter.
func New(log logr.Logger) *Linter {
	return &Linter{
		log:     log,
		cache:   make(map[string]cachedRules),
		results: make(map[string]cssbuild.LintResult),
	}
}

// Lint checks one buffered file.
func (l *Linter) Lint(ctx context.Context, file *cssbuild.File, configPath string) (cssbuild.LintResult, error) {
	if err := ctx.Err(); err != nil {
		return cssbuild.LintResult{}, err
	}
	rules, err := l.rules(configPath)
	if err != nil {
		return cssbuild.LintResult{}, err
	}

	issues := Check(file.Bytes(), file.Path, rules)
	result := cssbuild.NewLintResult(file.Path, issues)
	l.log.V(2).Info("linted", "file", file.Path, "errors", result.ErrorCount, "warnings", result.WarningCount)

	l.mu.Lock()
	l.results[file.Path] = result
	l.mu.Unlock()
	return result, nil
}

// Results returns the results recorded since the last Reset, by path.
func (l *Linter) Results() []cssbuild.LintResult {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]cssbuild.LintResult, 0, len(l.results))
	for _, r := range l.results {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FilePath < out[j].FilePath })
	return out
}

// Reset drops recorded results.
func (l *Linter) Reset() {
	l.mu.Lock()
	clear(l.results)
	l.mu.Unlock()
}

func (l *Linter) rules(path string) (Rules, error) {
	var modTime time.Time
	if path != "" {
		info, err := os.Stat(path)
		switch {
		case err == nil:
			modTime = info.ModTime()
		case !errors.Is(err, fs.ErrNotExist):
			return nil, err
		}
	}

	l.mu.Lock()
	cached, ok := l.cache[path]
	l.mu.Unlock()
	if ok && cached.modTime.Equal(modTime) {
		return cached.rules, nil
	}

	rules, err := LoadRules(path)
	if err != nil {
		return nil, err
	}
	if modTime.IsZero() {
		l.log.V(1).Info("no lint config, using default rules", "path", path)
	}

	l.mu.Lock()
	l.cache[path] = cachedRules{modTime: modTime, rules: rules}
	l.mu.Unlock()
	return rules, nil
}
