package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/yacobolo/cssbuild"
	"github.com/yacobolo/cssbuild/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "cssbuild",
	Short: "Lint-gated stylesheet build pipeline",
	Long: `Lint stylesheet sources, then compile them into nested and
compressed CSS. Compilation is skipped while the latest lint pass failed.`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return loadConfig(cmd)
	},
	// Default behavior: build every task.
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runTargets(cmd, nil, appOptions{})
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Global persistent flags (inherited by all subcommands)
	f := rootCmd.PersistentFlags()
	f.String("config", defaultConfigPath, "Config file path")
	f.String("cwd", "", "Project root (default: current directory)")
	f.String("log-level", "info", "Log level: debug|info|warn|error")
	f.Bool("color", false, "Force color output")
	f.Bool("sourcemaps", true, "Emit source maps for nested builds")
	f.Int("concurrency", 0, "Files transformed in parallel (0 = GOMAXPROCS)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(lintCmd)
	rootCmd.AddCommand(nestCmd)
	rootCmd.AddCommand(compressCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup builds the logger and the wired application.
func setup(opts appOptions) (*application, error) {
	log, err := logging.New(getString("log-level", "info"))
	if err != nil {
		return nil, err
	}
	opts.log = log
	if opts.out == nil {
		opts.out = os.Stderr
	}
	opts.useColors = cssbuild.ShouldUseColors(getBool("color", false))
	return newApplication(opts)
}
