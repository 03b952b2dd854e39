package cssbuild

import (
	"context"
)

// SourceSpec describes a source set: glob patterns evaluated under Cwd.
type SourceSpec struct {
	Patterns   []string // ["src/scss/**/*.scss", "!src/scss/vendor/**"]
	Cwd        string
	SourceMaps bool // Initialize an empty source map on every buffered file
}

// SourceReader expands a source set into files, in enumeration order.
type SourceReader interface {
	Read(ctx context.Context, spec SourceSpec) ([]*File, error)
}

// Linter lints one buffered file using the rule config at configPath.
type Linter interface {
	Lint(ctx context.Context, file *File, configPath string) (LintResult, error)
}

// CompilerOptions are the "sass" section of the effective settings.
type CompilerOptions map[string]any

// OutputStyle returns the requested output style ("nested" when unset).
func (o CompilerOptions) OutputStyle() string {
	if s, ok := o[KeyOutputStyle].(string); ok && s != "" {
		return s
	}
	return OutputNested
}

// Precision returns the numeric "precision" option; 0 keeps all digits.
func (o CompilerOptions) Precision() int {
	switch v := o["precision"].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// Compiler turns a stylesheet source into CSS in place. Syntax failures
// should be reported as *CompileError.
type Compiler interface {
	Compile(ctx context.Context, file *File, opts CompilerOptions) error
}

// Processor is one postprocessing step. Processors are order-sensitive.
type Processor interface {
	Name() string
	Process(ctx context.Context, file *File) error
}

// Postprocessors supplies the postprocessor steps the pipeline composes.
// MQPacker is only used for minified builds.
type Postprocessors struct {
	Assets    Processor
	Fallbacks Processor
	MQPacker  Processor
}

// List returns the processors for a build mode.
func (p Postprocessors) List(minified bool) []Processor {
	list := make([]Processor, 0, 3)
	for _, proc := range []Processor{p.Assets, p.Fallbacks} {
		if proc != nil {
			list = append(list, proc)
		}
	}
	if minified && p.MQPacker != nil {
		list = append(list, p.MQPacker)
	}
	return list
}

// Prefixer adds vendor prefixes using task-level options.
type Prefixer interface {
	Prefix(ctx context.Context, file *File, opts map[string]any) error
}

// MinifyOptions controls the minifier. Core enables structural minification;
// Precision rounds numbers like the compiler does.
type MinifyOptions struct {
	Core      bool
	Precision int
}

// Minifier minifies CSS content in place.
type Minifier interface {
	Minify(ctx context.Context, file *File, opts MinifyOptions) error
}

// Writer writes a file under dst (resolved against cwd) and returns the
// written path.
type Writer interface {
	Write(ctx context.Context, file *File, dst, cwd string) (string, error)
}

// SyncOptions restricts live-reload notifications to matching paths.
type SyncOptions struct {
	Match string // "**/*.css"
}

// Syncer notifies live-reload clients about a written path.
type Syncer interface {
	Sync(ctx context.Context, opts SyncOptions, path string) error
}

// Notifier delivers fire-and-forget alerts.
type Notifier interface {
	Notify(messages []string, label string)
	OnError(err error, label string)
}

// Collaborators bundles every external service a Task uses.
type Collaborators struct {
	Source     SourceReader
	Linter     Linter
	Compiler   Compiler
	Processors Postprocessors
	Prefixer   Prefixer
	Minifier   Minifier
	Writer     Writer
	Syncer     Syncer
	Notifier   Notifier
}
