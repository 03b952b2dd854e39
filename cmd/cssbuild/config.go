package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/yacobolo/cssbuild"
)

const defaultConfigPath = ".cssbuild.yaml"

var k = koanf.New(".")

// flagKeys maps flags to config keys where the names differ.
var flagKeys = map[string]string{
	"livereload":        "livereload.enabled",
	"livereload-listen": "livereload.listen",
	"format":            "lint.format",
}

// loadConfig loads configuration with precedence: flags > env > file > defaults.
// It must be called after cobra parses flags (in PreRunE or RunE).
func loadConfig(cmd *cobra.Command) error {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	if err := loadConfigFromPath(configPath); err != nil {
		return err
	}

	// Set flags always win; defaults only fill keys no other source provided.
	flags := cmd.Flags()
	provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
		key := f.Name
		if mapped, ok := flagKeys[key]; ok {
			key = mapped
		}
		return key, posflag.FlagVal(flags, f)
	})
	if err := k.Load(provider, nil); err != nil {
		return fmt.Errorf("loading command flags: %w", err)
	}
	return nil
}

// loadConfigFromPath loads configuration from a file and environment variables.
// This is separated from loadConfig to allow testing without a cobra command.
func loadConfigFromPath(configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return fmt.Errorf("loading config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("CSSBUILD_", ".", envKey), nil); err != nil {
		return fmt.Errorf("loading environment variables: %w", err)
	}
	return nil
}

// envKey maps environment names to config keys:
//
//	CSSBUILD_LOG_LEVEL          -> log-level
//	CSSBUILD_LIVERELOAD__LISTEN -> livereload.listen
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, "CSSBUILD_"))
	parts := strings.Split(s, "__")
	for i, p := range parts {
		parts[i] = strings.ReplaceAll(p, "_", "-")
	}
	return strings.Join(parts, ".")
}

// taskConfig is one entry of the "tasks" section.
type taskConfig struct {
	Name    string
	Options cssbuild.Options
}

// defaultTask is used when the config declares no tasks.
var defaultTask = taskConfig{
	Name: "app",
	Options: cssbuild.Options{
		Src: []string{"src/scss/**/*.scss"},
		Dst: "dist/css",
	},
}

// buildAppConfig constructs the shared application config from koanf state.
func buildAppConfig() cssbuild.AppConfig {
	app := cssbuild.AppConfig{
		Cwd:        getString("cwd", "."),
		SourceMaps: getBool("sourcemaps", true),
	}
	if k.Exists("sass.settings") {
		app.Settings = map[string]any{
			cssbuild.KeyCompiler: k.Cut("sass.settings").Raw(),
		}
	}
	return app
}

// buildTaskConfigs reads the "tasks" section in name order.
func buildTaskConfigs() ([]taskConfig, error) {
	names := k.MapKeys("tasks")
	if len(names) == 0 {
		return []taskConfig{defaultTask}, nil
	}

	tasks := make([]taskConfig, 0, len(names))
	for _, name := range names {
		prefix := "tasks." + name + "."
		opts := cssbuild.Options{
			Src:        k.Strings(prefix + "src"),
			Dst:        k.String(prefix + "dst"),
			Cwd:        k.String(prefix + "cwd"),
			LintConfig: k.String(prefix + "lint-config"),
		}
		if len(opts.Src) == 0 {
			if s := k.String(prefix + "src"); s != "" {
				opts.Src = []string{s}
			}
		}
		if len(opts.Src) == 0 {
			return nil, fmt.Errorf("task %s: src is required", name)
		}
		if opts.Dst == "" {
			return nil, fmt.Errorf("task %s: dst is required", name)
		}
		if k.Exists(prefix + "settings") {
			opts.Settings = k.Cut(prefix + "settings").Raw()
		}
		if k.Exists(prefix + "autoprefixer") {
			opts.Autoprefixer = k.Cut(prefix + "autoprefixer").Raw()
		}
		tasks = append(tasks, taskConfig{Name: name, Options: opts})
	}
	return tasks, nil
}

// getString returns the value at key, or defaultVal when unset or empty.
func getString(key, defaultVal string) string {
	if v := k.String(key); v != "" {
		return v
	}
	return defaultVal
}

// getBool returns the value at key, or defaultVal when unset.
func getBool(key string, defaultVal bool) bool {
	if k.Exists(key) {
		return k.Bool(key)
	}
	return defaultVal
}

// getInt returns the value at key, or defaultVal when unset.
func getInt(key string, defaultVal int) int {
	if k.Exists(key) {
		return k.Int(key)
	}
	return defaultVal
}
