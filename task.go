package cssbuild

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/go-logr/logr"
)

// Task function names
const (
	FuncLint     = "lint"
	FuncNest     = "nest"
	FuncCompress = "compress"
	FuncBuild    = "build"
)

// DefaultLintConfig is the rule file looked up under the task cwd.
const DefaultLintConfig = ".csslint.yml"

// AppConfig holds the application-wide settings shared by every task.
type AppConfig struct {
	Cwd        string         // Project root
	SourceMaps bool           // Emit source maps for nested builds
	Settings   map[string]any // Base settings layer, e.g. {"sass": {"precision": 5}}
}

// Options configure one task. They are not modified after NewTask.
type Options struct {
	Src          []string       // ["src/scss/**/*.scss"]
	Dst          string         // "dist/css"
	Cwd          string         // Defaults to AppConfig.Cwd
	Settings     map[string]any // Task settings layer
	Autoprefixer map[string]any // Prefixer options
	LintConfig   string         // Defaults to <cwd>/.csslint.yml
}

// Task is one logical stylesheet pipeline. A Task must not run overlapping
// lint/compile cycles; the Runner serializes them.
type Task struct {
	name        string
	opts        Options
	app         AppConfig
	cwd         string
	c           Collaborators
	reporter    *Reporter
	log         logr.Logger
	concurrency int

	mu         sync.Mutex
	lintFailed bool
}

// TaskOption customizes a Task.
type TaskOption func(*Task)

// WithReporter replaces the default reporter (stderr, no colors).
func WithReporter(r *Reporter) TaskOption {
	return func(t *Task) {
		t.reporter = r
	}
}

// WithLogger sets the task logger.
func WithLogger(log logr.Logger) TaskOption {
	return func(t *Task) {
		t.log = log
	}
}

// WithConcurrency bounds how many files are transformed at once.
func WithConcurrency(n int) TaskOption {
	return func(t *Task) {
		if n > 0 {
			t.concurrency = n
		}
	}
}

// NewTask validates options and collaborators and creates a task.
func NewTask(name string, opts Options, app AppConfig, c Collaborators, options ...TaskOption) (*Task, error) {
	if name == "" {
		return nil, errors.New("task name is required")
	}
	if len(opts.Src) == 0 {
		return nil, fmt.Errorf("task %s: src is required", name)
	}
	if opts.Dst == "" {
		return nil, fmt.Errorf("task %s: dst is required", name)
	}
	switch {
	case c.Source == nil:
		return nil, fmt.Errorf("task %s: source reader is required", name)
	case c.Linter == nil:
		return nil, fmt.Errorf("task %s: linter is required", name)
	case c.Compiler == nil:
		return nil, fmt.Errorf("task %s: compiler is required", name)
	case c.Writer == nil:
		return nil, fmt.Errorf("task %s: writer is required", name)
	}

	cwd := opts.Cwd
	if cwd == "" {
		cwd = app.Cwd
	}
	if cwd == "" {
		cwd = "."
	}
	abs, err := filepath.Abs(cwd)
	if err != nil {
		return nil, fmt.Errorf("task %s: resolving cwd %s: %w", name, cwd, err)
	}

	t := &Task{
		name:        name,
		opts:        opts,
		app:         app,
		cwd:         abs,
		c:           c,
		log:         logr.Discard(),
		concurrency: runtime.GOMAXPROCS(0),
	}
	for _, opt := range options {
		opt(t)
	}
	if t.reporter == nil {
		t.reporter = NewReporter(os.Stderr, abs, c.Notifier, false, t.log)
	}
	t.log = t.log.WithValues("task", name)
	return t, nil
}

// Name returns the task name.
func (t *Task) Name() string {
	return t.name
}

// Cwd returns the absolute working directory of the task.
func (t *Task) Cwd() string {
	return t.cwd
}

// Options returns the task options.
func (t *Task) Options() Options {
	return t.opts
}

// LintFailed reports the outcome of the latest complete lint pass.
func (t *Task) LintFailed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lintFailed
}

func (t *Task) setLintFailed(failed bool) {
	t.mu.Lock()
	t.lintFailed = failed
	t.mu.Unlock()
}

func (t *Task) lintConfigPath() string {
	if t.opts.LintConfig == "" {
		return filepath.Join(t.cwd, DefaultLintConfig)
	}
	if filepath.IsAbs(t.opts.LintConfig) {
		return t.opts.LintConfig
	}
	return filepath.Join(t.cwd, t.opts.LintConfig)
}
