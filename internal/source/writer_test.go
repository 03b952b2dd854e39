package source

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yacobolo/cssbuild"
)

func TestWriter_WritesRelativeToBase(t *testing.T) {
	dir := t.TempDir()
	file := cssbuild.NewFile(filepath.Join(dir, "src", "components", "btn.min.css"), filepath.Join(dir, "src"), []byte(".btn{}"))

	w := NewWriter()
	path, err := w.Write(context.Background(), file, "dist/css", dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "dist", "css", "components", "btn.min.css"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, ".btn{}", string(data))
}

func TestWriter_SourceMap(t *testing.T) {
	dir := t.TempDir()
	file := cssbuild.NewFile(filepath.Join(dir, "src", "app.css"), filepath.Join(dir, "src"), []byte(".a {}"))
	file.SourceMap = &cssbuild.SourceMap{Version: 3, File: "app.scss", Sources: []string{"app.scss"}}

	path, err := NewWriter().Write(context.Background(), file, "dist", dir)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(data), "/*# sourceMappingURL=app.css.map */\n"))

	raw, err := os.ReadFile(path + ".map")
	require.NoError(t, err)
	var sm cssbuild.SourceMap
	require.NoError(t, json.Unmarshal(raw, &sm))
	assert.Equal(t, "app.css", sm.File)
	assert.Equal(t, []string{"app.scss"}, sm.Sources)
}

func TestWriter_EmptyAndStreamed(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter()

	path, err := w.Write(context.Background(), &cssbuild.File{Path: filepath.Join(dir, "x"), Contents: cssbuild.Empty{}}, "dist", dir)
	require.NoError(t, err)
	assert.Empty(t, path)
	_, statErr := os.Stat(filepath.Join(dir, "dist"))
	assert.True(t, os.IsNotExist(statErr))

	_, err = w.Write(context.Background(), &cssbuild.File{Path: filepath.Join(dir, "s.css"), Contents: cssbuild.Streamed{Reader: strings.NewReader("")}}, "dist", dir)
	require.Error(t, err)
}

func TestWriter_AbsoluteDestination(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	file := cssbuild.NewFile(filepath.Join(dir, "a.css"), dir, []byte("a"))

	path, err := NewWriter().Write(context.Background(), file, out, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "a.css"), path)
}
