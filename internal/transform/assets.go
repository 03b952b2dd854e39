package transform

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"

	"github.com/yacobolo/cssbuild"
)

// Assets rewrites resolve('logo.png') into url('/images/logo.png'),
// searching the load paths and then the project root.
type Assets struct {
	cwd       string
	loadPaths []string
}

// NewAssets creates the processor; load paths are relative to cwd.
func NewAssets(cwd string, loadPaths []string) *Assets {
	return &Assets{cwd: cwd, loadPaths: loadPaths}
}

// Name returns "assets".
func (a *Assets) Name() string {
	return "assets"
}

// Process rewrites every resolve() call in the file.
func (a *Assets) Process(ctx context.Context, file *cssbuild.File) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data := file.Bytes()
	if !bytes.Contains(data, []byte("resolve(")) {
		return nil
	}

	var out bytes.Buffer
	lexer := css.NewLexer(parse.NewInputBytes(data))
	for {
		tt, text := lexer.Next()
		if tt == css.ErrorToken {
			break
		}
		if tt != css.FunctionToken || !strings.EqualFold(string(text), "resolve(") {
			out.Write(text)
			continue
		}

		arg, err := readArgument(lexer)
		if err != nil {
			return fmt.Errorf("%s: %w", file.Relative(), err)
		}
		url, err := a.resolve(arg)
		if err != nil {
			return fmt.Errorf("%s: %w", file.Relative(), err)
		}
		out.WriteString("url('" + url + "')")
	}
	file.SetBytes(out.Bytes())
	return nil
}

var errUnterminated = errors.New("unterminated string in resolve()")

// readArgument consumes tokens up to the closing parenthesis. The lexer
// returns a string cut off at EOF as a StringToken without closing quote.
func readArgument(lexer *css.Lexer) (string, error) {
	var arg strings.Builder
	depth := 0
	for {
		tt, text := lexer.Next()
		switch tt {
		case css.ErrorToken:
			return arg.String(), nil
		case css.WhitespaceToken, css.CommentToken:
			continue
		case css.BadStringToken:
			return "", errUnterminated
		case css.StringToken:
			if len(text) < 2 || text[len(text)-1] != text[0] {
				return "", errUnterminated
			}
			arg.Write(text[1 : len(text)-1])
			continue
		case css.FunctionToken, css.LeftParenthesisToken:
			depth++
		case css.RightParenthesisToken:
			if depth == 0 {
				return arg.String(), nil
			}
			depth--
		}
		arg.Write(text)
	}
}

func (a *Assets) resolve(ref string) (string, error) {
	path, suffix := ref, ""
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		path, suffix = ref[:i], ref[i:]
	}
	if path == "" {
		return "", fmt.Errorf("empty asset reference")
	}

	dirs := append(append([]string{}, a.loadPaths...), ".")
	for _, dir := range dirs {
		candidate := filepath.Join(a.cwd, dir, filepath.FromSlash(path))
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			rel, err := filepath.Rel(a.cwd, candidate)
			if err != nil {
				return "", err
			}
			return "/" + filepath.ToSlash(rel) + suffix, nil
		}
	}
	return "", fmt.Errorf("asset not found or unreadable: %s", path)
}
