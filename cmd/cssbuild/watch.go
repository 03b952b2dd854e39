package main

import (
	"context"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/yacobolo/cssbuild"
	"github.com/yacobolo/cssbuild/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Build every task, then rebuild tasks whose sources change",
	Long: `Build every task once and rebuild on change. Watch builds are
incidental: lint failures are reported but never stop the watcher.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := setup(appOptions{
			livereload: getBool("livereload.enabled", false),
		})
		if err != nil {
			return err
		}
		return a.watch(cmd.Context())
	},
}

func init() {
	f := watchCmd.Flags()
	f.Bool("livereload", false, "Serve LiveReload on --livereload-listen")
	f.String("livereload-listen", "", "LiveReload listen address (default :35729)")
}

func (a *application) watch(ctx context.Context) error {
	a.linter.Reset()
	if err := a.runner.Run(ctx); err != nil {
		a.log.Error(err, "initial build failed")
	}

	targets := make([]watch.Target, 0, len(a.tasks))
	for _, task := range a.tasks {
		opts := task.Options()
		targets = append(targets, watch.Target{
			Name:     task.Name(),
			Cwd:      task.Cwd(),
			Patterns: opts.Src,
			Dst:      opts.Dst,
		})
	}
	w, err := watch.New(targets, watch.DefaultDebounce, a.log.WithName("watch"))
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	if a.reload != nil {
		g.Go(func() error { return a.reload.Run(ctx) })
	}
	g.Go(func() error {
		return w.Run(ctx, a.rebuild)
	})
	a.log.Info("watching", "tasks", len(targets))
	return g.Wait()
}

// rebuild builds the named tasks as incidental invocations. Lint results of
// earlier passes are dropped first.
func (a *application) rebuild(ctx context.Context, names []string) error {
	a.linter.Reset()
	labels := make([]string, len(names))
	for i, name := range names {
		labels[i] = cssbuild.Label(name, cssbuild.FuncBuild)
	}
	return a.runner.Invoke(ctx, cssbuild.NewInvocation(), labels...)
}
