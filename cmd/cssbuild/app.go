package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/go-logr/logr"

	"github.com/yacobolo/cssbuild"
	"github.com/yacobolo/cssbuild/internal/csslint"
	"github.com/yacobolo/cssbuild/internal/livereload"
	"github.com/yacobolo/cssbuild/internal/notify"
	"github.com/yacobolo/cssbuild/internal/source"
	"github.com/yacobolo/cssbuild/internal/transform"
)

// application is the wired runner plus the collaborators commands need
// direct access to.
type application struct {
	cfg    cssbuild.AppConfig
	tasks  []*cssbuild.Task
	runner *cssbuild.Runner
	linter *csslint.Linter
	reload *livereload.Server
	log    logr.Logger
}

// appOptions carry the command-level switches that shape the wiring.
type appOptions struct {
	out        io.Writer
	useColors  bool
	livereload bool
	log        logr.Logger
}

// newApplication wires tasks from koanf state.
func newApplication(opts appOptions) (*application, error) {
	cfg := buildAppConfig()
	cwd, err := filepath.Abs(cfg.Cwd)
	if err != nil {
		return nil, fmt.Errorf("resolving cwd %s: %w", cfg.Cwd, err)
	}
	cfg.Cwd = cwd

	taskConfigs, err := buildTaskConfigs()
	if err != nil {
		return nil, err
	}

	a := &application{
		cfg:    cfg,
		linter: csslint.New(opts.log.WithName("csslint")),
		log:    opts.log,
	}

	notifier := notify.NewTerminal(opts.out, opts.useColors)
	collab, err := buildCollaborators(cwd, a.linter, notifier, opts.log)
	if err != nil {
		return nil, err
	}
	if opts.livereload {
		a.reload = livereload.New(getString("livereload.listen", livereload.DefaultAddr), cwd, opts.log.WithName("livereload"))
		collab.Syncer = a.reload
	}

	reporter := cssbuild.NewReporter(opts.out, cwd, notifier, opts.useColors, opts.log)
	concurrency := getInt("concurrency", 0)
	for _, tc := range taskConfigs {
		task, err := cssbuild.NewTask(tc.Name, tc.Options, cfg, collab,
			cssbuild.WithReporter(reporter),
			cssbuild.WithLogger(opts.log),
			cssbuild.WithConcurrency(concurrency),
		)
		if err != nil {
			return nil, err
		}
		a.tasks = append(a.tasks, task)
	}

	a.runner, err = cssbuild.NewRunner(opts.log, a.tasks...)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// buildCollaborators picks built-in or external implementations per stage.
func buildCollaborators(cwd string, linter cssbuild.Linter, notifier cssbuild.Notifier, log logr.Logger) (cssbuild.Collaborators, error) {
	c := cssbuild.Collaborators{
		Source:   source.NewReader(log.WithName("source")),
		Linter:   linter,
		Minifier: transform.NewMinifier(),
		Writer:   source.NewWriter(),
		Syncer:   livereload.Nop{},
		Notifier: notifier,
	}

	if command := k.String("compiler.command"); command != "" {
		compiler, err := transform.NewExecCompiler(command, cwd)
		if err != nil {
			return c, fmt.Errorf("compiler: %w", err)
		}
		c.Compiler = compiler
	} else {
		c.Compiler = transform.NewCSSCompiler()
	}

	fallbacks, err := execOrPassthrough("fallbacks", cwd)
	if err != nil {
		return c, err
	}
	mqpacker, err := execOrPassthrough("mqpacker", cwd)
	if err != nil {
		return c, err
	}
	c.Processors = cssbuild.Postprocessors{
		Assets:    transform.NewAssets(cwd, k.Strings("processors.assets.load-paths")),
		Fallbacks: fallbacks,
		MQPacker:  mqpacker,
	}

	if command := k.String("processors.autoprefixer.command"); command != "" {
		prefixer, err := transform.NewExecPrefixer(command, cwd)
		if err != nil {
			return c, fmt.Errorf("autoprefixer: %w", err)
		}
		c.Prefixer = prefixer
	} else {
		c.Prefixer = transform.NopPrefixer{}
	}
	return c, nil
}

func execOrPassthrough(name, cwd string) (cssbuild.Processor, error) {
	command := k.String("processors." + name + ".command")
	if command == "" {
		return transform.Passthrough{Label: name}, nil
	}
	return transform.NewExecProcessor(name, command, cwd)
}
