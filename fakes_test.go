package cssbuild

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/require"
)

const testCwd = "/project"

// sourceEntry describes one file served by fakeSource.
type sourceEntry struct {
	name     string
	content  string
	empty    bool
	streamed bool
}

type fakeSource struct {
	mu      sync.Mutex
	entries []sourceEntry
	specs   []SourceSpec
	err     error
}

func (s *fakeSource) Read(_ context.Context, spec SourceSpec) ([]*File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.specs = append(s.specs, spec)
	if s.err != nil {
		return nil, s.err
	}
	files := make([]*File, 0, len(s.entries))
	for _, e := range s.entries {
		path := filepath.Join(spec.Cwd, e.name)
		f := &File{Path: path, Base: spec.Cwd}
		switch {
		case e.empty:
			f.Contents = Empty{}
		case e.streamed:
			f.Contents = Streamed{Reader: strings.NewReader(e.content)}
		default:
			f.Contents = Buffered{Data: []byte(e.content)}
			if spec.SourceMaps {
				f.SourceMap = &SourceMap{Version: 3, File: filepath.Base(path)}
			}
		}
		files = append(files, f)
	}
	return files, nil
}

func (s *fakeSource) reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.specs)
}

func (s *fakeSource) lastSpec() SourceSpec {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.specs[len(s.specs)-1]
}

// fakeLinter returns preset counts keyed by file base name.
type fakeLinter struct {
	mu      sync.Mutex
	counts  map[string][2]int
	linted  []string
	configs []string
	err     error
}

func (l *fakeLinter) Lint(_ context.Context, file *File, configPath string) (LintResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return LintResult{}, l.err
	}
	name := filepath.Base(file.Path)
	l.linted = append(l.linted, name)
	l.configs = append(l.configs, configPath)
	c := l.counts[name]
	return LintResult{FilePath: file.Path, ErrorCount: c[0], WarningCount: c[1]}, nil
}

// recorder collects stage calls from every pipeline collaborator.
type recorder struct {
	mu    sync.Mutex
	calls []string
	syncs []SyncOptions

	compilerOpts []CompilerOptions
	prefixOpts   []map[string]any
	minifyOpts   []MinifyOptions
	written      map[string][]byte

	compileErr error
	processErr error
}

func newRecorder() *recorder {
	return &recorder{written: make(map[string][]byte)}
}

func (r *recorder) record(call string) {
	r.mu.Lock()
	r.calls = append(r.calls, call)
	r.mu.Unlock()
}

// stagesFor returns, in call order, the stages that saw a file with the
// given stem. Files are renamed on their way through the pipeline
// (a.scss, a.css, a.min.css), so the stem is the stable key.
func (r *recorder) stagesFor(stem string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, c := range r.calls {
		stage, name, _ := strings.Cut(c, " ")
		if strings.HasPrefix(name, stem+".") {
			out = append(out, stage)
		}
	}
	return out
}

func (r *recorder) count(stage string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if strings.HasPrefix(c, stage+" ") {
			n++
		}
	}
	return n
}

func (r *recorder) Compile(_ context.Context, file *File, opts CompilerOptions) error {
	r.record("compile " + filepath.Base(file.Path))
	r.mu.Lock()
	r.compilerOpts = append(r.compilerOpts, opts)
	r.mu.Unlock()
	if r.compileErr != nil {
		return r.compileErr
	}
	file.SetBytes(bytes.ToUpper(file.Bytes()))
	return nil
}

func (r *recorder) Prefix(_ context.Context, file *File, opts map[string]any) error {
	r.record("prefix " + filepath.Base(file.Path))
	r.mu.Lock()
	r.prefixOpts = append(r.prefixOpts, opts)
	r.mu.Unlock()
	return nil
}

func (r *recorder) Minify(_ context.Context, file *File, opts MinifyOptions) error {
	r.record("minify " + filepath.Base(file.Path))
	r.mu.Lock()
	r.minifyOpts = append(r.minifyOpts, opts)
	r.mu.Unlock()
	return nil
}

func (r *recorder) Write(_ context.Context, file *File, dst, cwd string) (string, error) {
	path := filepath.Join(cwd, dst, file.Relative())
	r.record("write " + filepath.Base(file.Path))
	r.mu.Lock()
	r.written[path] = file.Bytes()
	r.mu.Unlock()
	return path, nil
}

func (r *recorder) Sync(_ context.Context, opts SyncOptions, path string) error {
	r.record("sync " + filepath.Base(path))
	r.mu.Lock()
	r.syncs = append(r.syncs, opts)
	r.mu.Unlock()
	return nil
}

// namedProcessor records calls under its own name.
type namedProcessor struct {
	name string
	rec  *recorder
}

func (p namedProcessor) Name() string { return p.name }

func (p namedProcessor) Process(_ context.Context, file *File) error {
	p.rec.record(p.name + " " + filepath.Base(file.Path))
	if p.rec.processErr != nil && p.name == "fallbacks" {
		return p.rec.processErr
	}
	return nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages [][]string
	labels   []string
	errs     []error
}

func (n *fakeNotifier) Notify(messages []string, label string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, messages)
	n.labels = append(n.labels, label)
}

func (n *fakeNotifier) OnError(err error, label string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errs = append(n.errs, err)
	n.labels = append(n.labels, label)
}

// harness wires a task to fakes.
type harness struct {
	task     *Task
	source   *fakeSource
	linter   *fakeLinter
	rec      *recorder
	notifier *fakeNotifier
	out      *bytes.Buffer
}

func newHarness(t *testing.T, entries []sourceEntry, counts map[string][2]int, app AppConfig) *harness {
	t.Helper()
	h := &harness{
		source:   &fakeSource{entries: entries},
		linter:   &fakeLinter{counts: counts},
		rec:      newRecorder(),
		notifier: &fakeNotifier{},
		out:      &bytes.Buffer{},
	}
	if app.Cwd == "" {
		app.Cwd = testCwd
	}
	c := Collaborators{
		Source:   h.source,
		Linter:   h.linter,
		Compiler: h.rec,
		Processors: Postprocessors{
			Assets:    namedProcessor{name: "assets", rec: h.rec},
			Fallbacks: namedProcessor{name: "fallbacks", rec: h.rec},
			MQPacker:  namedProcessor{name: "mqpacker", rec: h.rec},
		},
		Prefixer: h.rec,
		Minifier: h.rec,
		Writer:   h.rec,
		Syncer:   h.rec,
		Notifier: h.notifier,
	}
	reporter := NewReporter(h.out, testCwd, h.notifier, false, logr.Discard())
	task, err := NewTask("app", Options{
		Src:          []string{"**/*.scss"},
		Dst:          "dist",
		Autoprefixer: map[string]any{"browsers": []any{"last 2 versions"}},
	}, app, c, WithReporter(reporter))
	require.NoError(t, err)
	h.task = task
	return h
}

var errBoom = errors.New("boom")
