package transform

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/mattn/go-shellwords"

	"github.com/yacobolo/cssbuild"
)

// parseCommand splits a configured command line into argv.
func parseCommand(raw string) ([]string, error) {
	args, err := shellwords.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse command %q: %w", raw, err)
	}
	if len(args) == 0 {
		return nil, errors.New("command must contain at least one argument")
	}
	return args, nil
}

// runFilter pipes input through argv and returns stdout. A failing command
// returns its trimmed stderr as the error text.
func runFilter(ctx context.Context, argv []string, dir string, env []string, input []byte) ([]byte, error) {
	// #nosec G204 - command comes from trusted configuration
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}
	cmd.Stdin = bytes.NewReader(input)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %s", argv[0], msg)
		}
		return nil, fmt.Errorf("%s: %w", argv[0], err)
	}
	return stdout.Bytes(), nil
}

// ExecCompiler compiles through an external Sass binary reading stdin:
//
//	sass --stdin --style=compressed --load-path=src/scss
type ExecCompiler struct {
	argv []string
	dir  string
}

// NewExecCompiler parses the command line, e.g. "sass" or "npx sass".
func NewExecCompiler(command, dir string) (*ExecCompiler, error) {
	argv, err := parseCommand(command)
	if err != nil {
		return nil, err
	}
	return &ExecCompiler{argv: argv, dir: dir}, nil
}

// Compile runs the external compiler on file contents.
func (c *ExecCompiler) Compile(ctx context.Context, file *cssbuild.File, opts cssbuild.CompilerOptions) error {
	argv := append(append([]string{}, c.argv...), compilerArgs(file, opts)...)
	out, err := runFilter(ctx, argv, c.dir, nil, file.Bytes())
	if err != nil {
		return parseCompileError(file.Path, err)
	}
	file.SetBytes(out)
	return nil
}

// compilerArgs maps settings to Dart Sass flags.
func compilerArgs(file *cssbuild.File, opts cssbuild.CompilerOptions) []string {
	style := "expanded"
	if opts.OutputStyle() == cssbuild.OutputCompressed {
		style = "compressed"
	}
	args := []string{"--stdin", "--style=" + style, "--no-source-map"}
	if strings.HasSuffix(file.Path, ".sass") {
		args = append(args, "--indented")
	}
	for _, p := range stringList(opts["includePaths"]) {
		args = append(args, "--load-path="+p)
	}
	return args
}

// sassLocation matches the "  - 3:7  root stylesheet" trailer.
var sassLocation = regexp.MustCompile(`(?m)^\s*-\s+(\d+):(\d+)\s`)

// parseCompileError extracts line and column from Sass stderr.
func parseCompileError(path string, err error) error {
	msg := err.Error()
	ce := &cssbuild.CompileError{FilePath: path, Message: firstLine(msg)}
	if m := sassLocation.FindStringSubmatch(msg); m != nil {
		ce.Line, _ = strconv.Atoi(m[1])
		ce.Column, _ = strconv.Atoi(m[2])
	}
	return ce
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}

// ExecProcessor pipes compiled CSS through an external command.
type ExecProcessor struct {
	name string
	argv []string
	dir  string
}

// NewExecProcessor creates a named processor, e.g. ("mqpacker", "postcss --use css-mqpacker").
func NewExecProcessor(name, command, dir string) (*ExecProcessor, error) {
	argv, err := parseCommand(command)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &ExecProcessor{name: name, argv: argv, dir: dir}, nil
}

// Name returns the processor name.
func (p *ExecProcessor) Name() string {
	return p.name
}

// Process replaces file contents with the command output.
func (p *ExecProcessor) Process(ctx context.Context, file *cssbuild.File) error {
	out, err := runFilter(ctx, p.argv, p.dir, nil, file.Bytes())
	if err != nil {
		return err
	}
	file.SetBytes(out)
	return nil
}

// Passthrough is a processor that leaves files untouched.
type Passthrough struct {
	Label string
}

// Name returns the processor name.
func (p Passthrough) Name() string {
	return p.Label
}

// Process does nothing.
func (p Passthrough) Process(context.Context, *cssbuild.File) error {
	return nil
}

func stringList(v any) []string {
	switch val := v.(type) {
	case string:
		return []string{val}
	case []string:
		return val
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
