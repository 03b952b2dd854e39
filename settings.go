package cssbuild

import (
	"fmt"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"
)

// Settings keys and output styles
const (
	KeyCompiler    = "sass"
	KeyOutputStyle = "outputStyle"

	OutputNested     = "nested"
	OutputCompressed = "compressed"
)

// EffectiveSettings is the merged settings object for one compile run.
type EffectiveSettings struct {
	k *koanf.Koanf
}

// ForcedSettings returns the mode-forced layer. Its outputStyle always wins.
func ForcedSettings(minified bool) map[string]any {
	style := OutputNested
	if minified {
		style = OutputCompressed
	}
	return map[string]any{
		KeyCompiler: map[string]any{KeyOutputStyle: style},
	}
}

// MergeSettings deep-merges base, task and forced settings. Later layers win
// key by key, nested maps merge recursively and slices are replaced wholesale.
func MergeSettings(base, task, forced map[string]any) (*EffectiveSettings, error) {
	k := koanf.New(".")
	layers := []struct {
		name string
		mp   map[string]any
	}{
		{"base", base},
		{"task", task},
		{"forced", forced},
	}
	for _, layer := range layers {
		if len(layer.mp) == 0 {
			continue
		}
		if err := k.Load(confmap.Provider(layer.mp, ""), nil); err != nil {
			return nil, fmt.Errorf("merging %s settings: %w", layer.name, err)
		}
	}
	return &EffectiveSettings{k: k}, nil
}

// Compiler returns the compiler options (the "sass" section).
func (s *EffectiveSettings) Compiler() CompilerOptions {
	opts := CompilerOptions(s.k.Cut(KeyCompiler).Raw())
	if opts == nil {
		opts = CompilerOptions{}
	}
	return opts
}

// OutputStyle returns sass.outputStyle.
func (s *EffectiveSettings) OutputStyle() string {
	return s.k.String(KeyCompiler + "." + KeyOutputStyle)
}

// Map returns a copy of the merged settings.
func (s *EffectiveSettings) Map() map[string]any {
	return s.k.Raw()
}
