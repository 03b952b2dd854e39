package cssbuild

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Pipeline constants
const (
	MinSuffix   = ".min"
	SyncPattern = "**/*.css"
)

// Output is the result of one compile run.
type Output struct {
	Files   []*File  // Source files after transformation, in source order
	Written []string // Written paths, in source order
	Err     error    // Error caught by the pipeline boundary
	Ended   bool     // The run was terminated by the boundary
}

// Nest compiles with outputStyle=nested.
func (t *Task) Nest(ctx context.Context, inv Invocation) (*Output, error) {
	return t.Compile(ctx, false, inv)
}

// Compress compiles with outputStyle=compressed into *.min.css files.
func (t *Task) Compress(ctx context.Context, inv Invocation) (*Output, error) {
	return t.Compile(ctx, true, inv)
}

// compileRun carries the per-run decisions every file shares.
type compileRun struct {
	minified   bool
	compiler   CompilerOptions
	processors []Processor
	prefixer   map[string]any
}

// Compile runs the transform pipeline unless the latest lint failed.
// Pipeline errors are caught: they are reported when display is active and
// logged otherwise, and the run is ended. Only an escalated failure is
// returned as error.
func (t *Task) Compile(ctx context.Context, minified bool, inv Invocation) (*Output, error) {
	fn := FuncNest
	if minified {
		fn = FuncCompress
	}
	label := Label(t.name, fn)

	if t.LintFailed() {
		t.log.Info("lint failed, skipping compile", "invocation", label)
		return &Output{}, nil
	}

	settings, err := MergeSettings(t.app.Settings, t.opts.Settings, ForcedSettings(minified))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}

	displayErrors := minified || inv.IsRequested(label)

	prefixer := t.opts.Autoprefixer
	if prefixer == nil {
		prefixer = map[string]any{}
	}
	cr := compileRun{
		minified:   minified,
		compiler:   settings.Compiler(),
		processors: t.c.Processors.List(minified),
		prefixer:   prefixer,
	}

	run := NewRun(ctx)
	out := &Output{}

	files, err := t.c.Source.Read(run.Context(), SourceSpec{
		Patterns:   t.opts.Src,
		Cwd:        t.cwd,
		SourceMaps: t.app.SourceMaps && !minified,
	})
	if err == nil {
		out.Files = files
		out.Written, err = t.transform(run, files, cr)
	}
	if err == nil {
		t.log.V(1).Info("compile complete", "invocation", label, "written", len(out.Written))
		return out, nil
	}

	out.Err = err
	var fatal error
	if displayErrors {
		fatal = t.reporter.ReportError(run, err, label, inv)
	} else {
		t.reporter.Advise(label, err.Error())
	}
	run.End()
	out.Ended = true
	return out, fatal
}

// transform runs every file through the stages. Files are processed
// concurrently; the first error cancels the rest.
func (t *Task) transform(run *Run, files []*File, cr compileRun) ([]string, error) {
	written := make([]string, len(files))

	g, ctx := errgroup.WithContext(run.Context())
	g.SetLimit(t.concurrency)
	for i, file := range files {
		g.Go(func() error {
			path, err := t.process(ctx, file, cr)
			written[i] = path
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(written))
	for _, p := range written {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths, nil
}

// process runs one file through compiler, postprocessors, prefixer,
// minifier, renamer, writer and sync, strictly in that order.
func (t *Task) process(ctx context.Context, file *File, cr compileRun) (string, error) {
	if file.IsEmpty() {
		return "", nil
	}
	if file.IsStreamed() {
		return "", &PluginError{Plugin: "compiler", Message: msgStreamsUnsupported}
	}

	if err := t.c.Compiler.Compile(ctx, file, cr.compiler); err != nil {
		return "", err
	}
	file.Path = replaceExt(file.Path, ".css")

	for _, proc := range cr.processors {
		if err := proc.Process(ctx, file); err != nil {
			return "", fmt.Errorf("%s: %w", proc.Name(), err)
		}
	}

	if t.c.Prefixer != nil {
		if err := t.c.Prefixer.Prefix(ctx, file, cr.prefixer); err != nil {
			return "", fmt.Errorf("autoprefixer: %w", err)
		}
	}

	if t.c.Minifier != nil {
		if err := t.c.Minifier.Minify(ctx, file, MinifyOptions{Core: cr.minified, Precision: cr.compiler.Precision()}); err != nil {
			return "", fmt.Errorf("minify: %w", err)
		}
	}

	if cr.minified {
		file.Path = RenameSuffix(file.Path, MinSuffix)
		if file.SourceMap != nil {
			file.SourceMap.File = filepath.Base(file.Path)
		}
	}

	written, err := t.c.Writer.Write(ctx, file, t.opts.Dst, t.cwd)
	if err != nil {
		return "", fmt.Errorf("writing %s: %w", file.Relative(), err)
	}

	if t.c.Syncer != nil {
		if err := t.c.Syncer.Sync(ctx, SyncOptions{Match: SyncPattern}, written); err != nil {
			return "", fmt.Errorf("sync %s: %w", written, err)
		}
	}

	return written, nil
}

func replaceExt(path, ext string) string {
	old := filepath.Ext(path)
	if old == ext {
		return path
	}
	return strings.TrimSuffix(path, old) + ext
}
