// Package transform holds the default compile and post-processing
// collaborators: the built-in CSS compiler, external command adapters,
// the assets processor, the prefixer and the minifier.
package transform

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/tdewolff/minify/v2"
	mincss "github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"

	"github.com/yacobolo/cssbuild"
)

const mediaTypeCSS = "text/css"

// CSSCompiler compiles plain CSS sources. It validates the stylesheet
// grammar and, for the compressed style, minifies the result. Sass syntax
// needs ExecCompiler.
type CSSCompiler struct{}

// NewCSSCompiler returns the built-in compiler.
func NewCSSCompiler() *CSSCompiler {
	return &CSSCompiler{}
}

// Compile validates file contents and applies the output style.
func (c *CSSCompiler) Compile(ctx context.Context, file *cssbuild.File, opts cssbuild.CompilerOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data := file.Bytes()
	if err := validate(file.Path, data); err != nil {
		return err
	}

	if opts.OutputStyle() != cssbuild.OutputCompressed {
		return nil
	}
	out, err := minifyCSS(data, opts.Precision())
	if err != nil {
		return &cssbuild.CompileError{FilePath: file.Path, Message: err.Error()}
	}
	file.SetBytes(out)
	return nil
}

// validate walks the grammar and reports the first parse error.
func validate(path string, data []byte) error {
	p := css.NewParser(parse.NewInputBytes(data), false)
	for {
		gt, _, _ := p.Next()
		if gt != css.ErrorGrammar {
			continue
		}
		if p.HasParseError() {
			var perr *parse.Error
			if errors.As(p.Err(), &perr) {
				return &cssbuild.CompileError{
					FilePath: path,
					Line:     perr.Line,
					Column:   perr.Column,
					Message:  perr.Message,
				}
			}
			return &cssbuild.CompileError{FilePath: path, Message: p.Err().Error()}
		}
		if err := p.Err(); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	}
}

// minifyCSS runs the tdewolff CSS minifier.
func minifyCSS(data []byte, prec int) ([]byte, error) {
	m := minify.New()
	m.Add(mediaTypeCSS, &mincss.Minifier{Precision: prec})

	var buf bytes.Buffer
	if err := m.Minify(mediaTypeCSS, &buf, bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
