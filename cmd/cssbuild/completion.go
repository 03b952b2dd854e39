package main

import (
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yacobolo/cssbuild"
)

var completionCmd = &cobra.Command{
	Use:       "completion [bash|zsh|fish|powershell]",
	Short:     "Generate shell completion scripts",
	Long:      `Generate shell completion scripts. Task names are completed from the config file.`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, out := cmd.Root(), cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return root.GenBashCompletionV2(out, true)
		case "zsh":
			return root.GenZshCompletion(out)
		case "fish":
			return root.GenFishCompletion(out, true)
		case "powershell":
			return root.GenPowerShellCompletionWithDesc(out)
		}
		return nil
	},
}

func init() {
	runCmd.ValidArgsFunction = completeTargets(true)
	nestCmd.ValidArgsFunction = completeTargets(false)
	compressCmd.ValidArgsFunction = completeTargets(false)
}

// completeTargets completes configured task names. With functions set,
// bare function names and task:function labels are offered too.
func completeTargets(functions bool) cobra.CompletionFunc {
	return func(cmd *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if err := loadConfig(cmd); err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		tasks, err := buildTaskConfigs()
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		names := make([]string, len(tasks))
		for i, t := range tasks {
			names[i] = t.Name
		}
		return targetCandidates(names, functions, toComplete), cobra.ShellCompDirectiveNoFileComp
	}
}

var taskFunctions = []string{cssbuild.FuncBuild, cssbuild.FuncCompress, cssbuild.FuncLint, cssbuild.FuncNest}

func targetCandidates(tasks []string, functions bool, prefix string) []string {
	var out []string
	add := func(s string) {
		if strings.HasPrefix(s, prefix) {
			out = append(out, s)
		}
	}
	for _, task := range tasks {
		add(task)
		if functions {
			for _, fn := range taskFunctions {
				add(cssbuild.Label(task, fn))
			}
		}
	}
	if functions {
		for _, fn := range taskFunctions {
			add(fn)
		}
	}
	sort.Strings(out)
	return out
}
