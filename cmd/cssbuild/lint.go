package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yacobolo/cssbuild"
	"github.com/yacobolo/cssbuild/internal/csslint"
)

var lintCmd = &cobra.Command{
	Use:   "lint [task]...",
	Short: "Lint stylesheet sources",
	Long: `Lint the sources of the named tasks (all tasks by default). Files with
errors fail the command; warnings are only counted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format := getString("lint.format", "text")
		if format != "text" && format != "json" {
			return fmt.Errorf("unknown lint format %q (expected text or json)", format)
		}

		a, err := setup(appOptions{})
		if err != nil {
			return err
		}
		runErr := a.runner.Run(cmd.Context(), functionTargets(cssbuild.FuncLint, args)...)

		if format == "json" {
			if err := csslint.WriteJSON(os.Stdout, a.linter.Results()); err != nil {
				return fmt.Errorf("writing lint report: %w", err)
			}
		}
		return runErr
	},
}

func init() {
	lintCmd.Flags().String("format", "", "Report format: text|json (default text)")
}
