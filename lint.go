package cssbuild

import (
	"context"
	"fmt"
)

// msgStreamsUnsupported is raised for streamed file contents.
const msgStreamsUnsupported = "Streams are not supported!"

// Lint runs the linter over the whole source set and gates compilation on
// the result. The returned error is non-nil only for fatal failures: a
// targeted lint failure, streamed input, or a collaborator error.
func (t *Task) Lint(ctx context.Context, inv Invocation) error {
	label := Label(t.name, FuncLint)
	t.setLintFailed(false)

	run := NewRun(ctx)
	files, err := t.c.Source.Read(run.Context(), SourceSpec{Patterns: t.opts.Src, Cwd: t.cwd})
	if err != nil {
		return fmt.Errorf("%s: reading sources: %w", label, err)
	}

	batch, err := t.lintFiles(run, files)
	if err != nil {
		return err
	}
	t.log.V(1).Info("lint pass complete", "files", len(files), "failed", len(batch))

	if len(batch) == 0 {
		return nil
	}
	t.setLintFailed(true)
	return t.reporter.ReportLint(run, batch, label, inv)
}

// lintFiles attaches a LintResult to every buffered file and returns the
// files with errors in source order.
func (t *Task) lintFiles(run *Run, files []*File) ([]*File, error) {
	configPath := t.lintConfigPath()
	var batch []*File

	for _, file := range files {
		if err := run.Context().Err(); err != nil {
			return nil, err
		}
		if file.IsEmpty() {
			continue
		}
		if file.IsStreamed() {
			err := &PluginError{Plugin: LinterName, Message: msgStreamsUnsupported}
			run.Fail(err)
			return nil, err
		}

		result, err := t.c.Linter.Lint(run.Context(), file, configPath)
		if err != nil {
			return nil, fmt.Errorf("linting %s: %w", file.Path, err)
		}
		if result.FilePath == "" {
			result.FilePath = file.Path
		}
		if err := file.AttachLint(result); err != nil {
			return nil, fmt.Errorf("%s: %w", file.Path, err)
		}

		if result.ErrorCount > 0 {
			batch = append(batch, file)
		}
	}

	return batch, nil
}
