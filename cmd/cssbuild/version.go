package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0" ./cmd/cssbuild
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the cssbuild version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), versionString())
	},
}

// versionString falls back to the module version for go install builds.
func versionString() string {
	v := version
	if info, ok := debug.ReadBuildInfo(); ok {
		if v == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			v = info.Main.Version
		}
		return fmt.Sprintf("cssbuild %s (%s)", v, info.GoVersion)
	}
	return "cssbuild " + v
}
