package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/yacobolo/cssbuild"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate default .cssbuild.yaml and .csslint.yml files",
	Long:  `Create build and lint configuration files in the current directory with sensible defaults.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		force, _ := cmd.Flags().GetBool("force")
		useColors := cssbuild.ShouldUseColors(getBool("color", false))
		return writeStarterFiles(cmd.OutOrStdout(), force, useColors)
	},
}

// writeStarterFiles writes the default build and lint configs into the
// current directory. Existing files are kept unless force is set.
func writeStarterFiles(w io.Writer, force, useColors bool) error {
	files := []struct {
		path    string
		content string
	}{
		{defaultConfigPath, defaultConfig},
		{cssbuild.DefaultLintConfig, defaultLintConfig},
	}
	for _, f := range files {
		if _, err := os.Stat(f.path); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", f.path)
		}
	}
	for _, f := range files {
		if err := os.WriteFile(f.path, []byte(f.content), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", f.path, err)
		}
		fmt.Fprintln(w, cssbuild.RenderStyle(cssbuild.StyleGreen, "Created", useColors)+" "+f.path)
	}
	fmt.Fprintln(w, cssbuild.RenderStyle(cssbuild.StyleGray, "Run `cssbuild` to build every task.", useColors))
	return nil
}

const defaultConfig = `# cssbuild configuration
# Precedence: flags > CSSBUILD_* env > this file > defaults

cwd: .
sourcemaps: true
log-level: info
concurrency: 0             # 0 = GOMAXPROCS

# Base compiler settings shared by every task
sass:
  settings:
    precision: 5

tasks:
  app:
    src:
      - "src/scss/**/*.scss"
    dst: dist/css
    lint-config: .csslint.yml
    settings:
      sass:
        includePaths:
          - src/scss
    autoprefixer:
      browsers:
        - "last 2 versions"

compiler:
  command: ""              # e.g. "sass"; empty = built-in CSS compiler

processors:
  assets:
    load-paths:
      - images
  fallbacks:
    command: ""            # e.g. "postcss --use pixrem"
  mqpacker:
    command: ""            # e.g. "postcss --use css-mqpacker"
  autoprefixer:
    command: ""            # e.g. "postcss --use autoprefixer"

livereload:
  enabled: false
  listen: ":35729"
`

const defaultLintConfig = `# csslint rules: 0 = off, 1 = warning, 2 = error
options:
  merge-default-rules: true
rules:
  no-important: 1
  no-empty-rulesets: 1
  no-duplicate-properties: 1
  no-ids: 1
  brace-balance: 2
`

func init() {
	initCmd.Flags().Bool("force", false, "Overwrite existing config files")
}
