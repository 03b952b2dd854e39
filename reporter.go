package cssbuild

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"
)

// LinterName identifies the lint gate in errors and notifications.
const LinterName = "csslint"

// Reporter formats lint and compile failures and decides whether they are
// fatal for the current run or only advisory.
type Reporter struct {
	w         io.Writer
	cwd       string
	notifier  Notifier
	useColors bool
	log       logr.Logger
}

// NewReporter creates a reporter. Display paths are made relative to cwd.
func NewReporter(w io.Writer, cwd string, notifier Notifier, useColors bool, log logr.Logger) *Reporter {
	return &Reporter{
		w:         w,
		cwd:       cwd,
		notifier:  notifier,
		useColors: useColors,
		log:       log,
	}
}

// FormatErrorInformation renders one line of a lint report.
func FormatErrorInformation(errors, warnings int, path string) string {
	return fmt.Sprintf("%s, %s  %s",
		pluralizeCount(errors, "error", "errors"),
		pluralizeCount(warnings, "warning", "warnings"),
		path)
}

// FormatLint renders one line per file of the batch, in batch order.
func (r *Reporter) FormatLint(batch []*File) []string {
	lines := make([]string, 0, len(batch))
	for _, file := range batch {
		result, ok := file.LintResult()
		if !ok {
			continue
		}
		path := result.FilePath
		if path == "" {
			path = file.Path
		}
		lines = append(lines, FormatErrorInformation(result.ErrorCount, result.WarningCount, r.displayPath(path)))
	}
	return lines
}

// ReportLint reports an error batch produced by a lint pass. It returns the
// fatal error when the invocation is targeted, nil when the report was only
// logged.
func (r *Reporter) ReportLint(run *Run, batch []*File, label string, inv Invocation) error {
	lines := r.FormatLint(batch)
	if r.notifier != nil {
		r.notifier.Notify(lines, label)
	}
	message := strings.Join(lines, "\n")

	if inv.Targets(label) {
		err := &PluginError{Plugin: LinterName, Message: "\n" + message + "\n"}
		run.Fail(err)
		return err
	}
	r.advise(label, message)
	return nil
}

// ReportError reports a compile or postprocess failure.
func (r *Reporter) ReportError(run *Run, cause error, label string, inv Invocation) error {
	if r.notifier != nil {
		r.notifier.OnError(cause, label)
	}

	if inv.Targets(label) {
		err := &PluginError{Plugin: label, Message: cause.Error(), Err: cause}
		run.Fail(err)
		return err
	}
	r.advise(label, cause.Error())
	return nil
}

// Advise writes a non-fatal message.
func (r *Reporter) Advise(label, message string) {
	r.advise(label, message)
}

func (r *Reporter) advise(label, message string) {
	r.log.V(1).Info("demoted failure to advisory", "invocation", label)
	if r.w == nil {
		return
	}
	fmt.Fprintf(r.w, "%s %s\n",
		RenderStyle(StyleCyan, "["+label+"]", r.useColors),
		RenderStyle(StyleRed, "Error:\n"+message, r.useColors))
}

func (r *Reporter) displayPath(path string) string {
	if r.cwd == "" {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(r.cwd, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// pluralizeCount returns a formatted string with count and singular/plural form
func pluralizeCount(count int, singular, plural string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, singular)
	}
	return fmt.Sprintf("%d %s", count, plural)
}
