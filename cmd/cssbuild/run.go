package main

import (
	"github.com/spf13/cobra"

	"github.com/yacobolo/cssbuild"
)

var runCmd = &cobra.Command{
	Use:   "run [task|task:function|function]...",
	Short: "Run tasks and their dependencies",
	Long: `Run named invocations. A task name builds that task ("app" is
"app:build"), a function name runs it for every task ("nest"), and
"task:function" runs one invocation. Without arguments every task is built
and lint failures are advisory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTargets(cmd, args, appOptions{})
	},
}

var nestCmd = &cobra.Command{
	Use:   "nest [task]...",
	Short: "Compile nested CSS with source maps",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTargets(cmd, functionTargets(cssbuild.FuncNest, args), appOptions{})
	},
}

var compressCmd = &cobra.Command{
	Use:   "compress [task]...",
	Short: "Compile minified *.min.css files",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTargets(cmd, functionTargets(cssbuild.FuncCompress, args), appOptions{})
	},
}

// functionTargets maps task names to task:function labels, or to the bare
// function (all tasks) when no task is named.
func functionTargets(fn string, tasks []string) []string {
	if len(tasks) == 0 {
		return []string{fn}
	}
	targets := make([]string, len(tasks))
	for i, task := range tasks {
		targets[i] = cssbuild.Label(task, fn)
	}
	return targets
}

func runTargets(cmd *cobra.Command, targets []string, opts appOptions) error {
	a, err := setup(opts)
	if err != nil {
		return err
	}
	return a.runner.Run(cmd.Context(), targets...)
}
