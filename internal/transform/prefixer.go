package transform

import (
	"context"
	"strings"

	"github.com/yacobolo/cssbuild"
)

// ExecPrefixer runs an external autoprefixer (e.g. "postcss --use
// autoprefixer"). The "browsers" option is passed as BROWSERSLIST.
type ExecPrefixer struct {
	argv []string
	dir  string
}

// NewExecPrefixer parses the command line.
func NewExecPrefixer(command, dir string) (*ExecPrefixer, error) {
	argv, err := parseCommand(command)
	if err != nil {
		return nil, err
	}
	return &ExecPrefixer{argv: argv, dir: dir}, nil
}

// Prefix pipes file contents through the prefixer.
func (p *ExecPrefixer) Prefix(ctx context.Context, file *cssbuild.File, opts map[string]any) error {
	out, err := runFilter(ctx, p.argv, p.dir, prefixerEnv(opts), file.Bytes())
	if err != nil {
		return err
	}
	file.SetBytes(out)
	return nil
}

func prefixerEnv(opts map[string]any) []string {
	browsers := stringList(opts["browsers"])
	if len(browsers) == 0 {
		return nil
	}
	return []string{"BROWSERSLIST=" + strings.Join(browsers, ", ")}
}

// NopPrefixer leaves files untouched.
type NopPrefixer struct{}

// Prefix does nothing.
func (NopPrefixer) Prefix(context.Context, *cssbuild.File, map[string]any) error {
	return nil
}
