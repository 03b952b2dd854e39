package transform

import (
	"context"

	"github.com/yacobolo/cssbuild"
)

// Minifier applies core minification to compressed builds.
type Minifier struct{}

// NewMinifier creates a minifier.
func NewMinifier() *Minifier {
	return &Minifier{}
}

// Minify rewrites file contents when opts.Core is set.
func (m *Minifier) Minify(ctx context.Context, file *cssbuild.File, opts cssbuild.MinifyOptions) error {
	if !opts.Core {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	out, err := minifyCSS(file.Bytes(), opts.Precision)
	if err != nil {
		return err
	}
	file.SetBytes(out)
	return nil
}
