package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yacobolo/cssbuild"
)

// Writer writes transformed files below a destination directory, keeping
// their path relative to the glob base. Source maps are written next to the
// file as <name>.map and linked with a sourceMappingURL comment.
type Writer struct {
	Perm os.FileMode
}

// NewWriter creates a writer using 0644 for files.
func NewWriter() *Writer {
	return &Writer{Perm: 0o644}
}

// Write implements cssbuild.Writer.
func (w *Writer) Write(ctx context.Context, file *cssbuild.File, dst, cwd string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if file.IsEmpty() {
		return "", nil
	}
	if file.IsStreamed() {
		return "", fmt.Errorf("%s: streamed content cannot be written", file.Path)
	}

	dir := dst
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(cwd, dst)
	}
	target := filepath.Join(dir, filepath.FromSlash(file.Relative()))

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", filepath.Dir(target), err)
	}

	data := file.Bytes()
	if file.SourceMap != nil {
		mapPath := target + ".map"
		sm := *file.SourceMap
		sm.File = filepath.Base(target)
		encoded, err := json.Marshal(sm)
		if err != nil {
			return "", fmt.Errorf("encoding source map: %w", err)
		}
		if err := os.WriteFile(mapPath, encoded, w.perm()); err != nil {
			return "", fmt.Errorf("write source map: %w", err)
		}
		data = appendSourceMappingURL(data, filepath.Base(mapPath))
	}

	if err := os.WriteFile(target, data, w.perm()); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return target, nil
}

func (w *Writer) perm() os.FileMode {
	if w.Perm == 0 {
		return 0o644
	}
	return w.Perm
}

func appendSourceMappingURL(data []byte, name string) []byte {
	out := make([]byte, 0, len(data)+len(name)+32)
	out = append(out, data...)
	if len(out) > 0 && out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}
	return append(out, fmt.Sprintf("/*# sourceMappingURL=%s */\n", name)...)
}
