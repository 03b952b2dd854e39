package cssbuild

import (
	"errors"
	"io"
	"path/filepath"
	"strings"
	"sync"
)

// Contents is the tagged payload of a File: Empty, Buffered or Streamed.
type Contents interface {
	contents()
}

// Empty marks a metadata-only record (directories, placeholders).
// Empty files pass through every stage untouched.
type Empty struct{}

// Buffered holds the complete content of a file in memory.
type Buffered struct {
	Data []byte
}

// Streamed wraps a continuous data stream. The pipeline only accepts
// buffered content, so a Streamed file is always rejected.
type Streamed struct {
	Reader io.Reader
}

func (Empty) contents()    {}
func (Buffered) contents() {}
func (Streamed) contents() {}

// ErrLintAttached is returned when a second LintResult is attached to a file.
var ErrLintAttached = errors.New("lint result already attached")

// SourceMap is a version 3 source map carried alongside a compiled file.
type SourceMap struct {
	Version  int      `json:"version"`
	File     string   `json:"file"`
	Sources  []string `json:"sources"`
	Names    []string `json:"names"`
	Mappings string   `json:"mappings"`
}

// File is one unit flowing through the pipeline.
type File struct {
	Path      string     // "/project/src/scss/app.scss"
	Base      string     // "/project/src/scss" (glob base, output paths are relative to it)
	Contents  Contents   // Empty, Buffered or Streamed
	SourceMap *SourceMap // Set by the source reader when source maps are enabled

	mu   sync.Mutex
	lint *LintResult
}

// NewFile creates a buffered file.
func NewFile(path, base string, data []byte) *File {
	return &File{Path: path, Base: base, Contents: Buffered{Data: data}}
}

// IsEmpty reports whether the file carries no content.
func (f *File) IsEmpty() bool {
	switch f.Contents.(type) {
	case nil, Empty:
		return true
	}
	return false
}

// IsStreamed reports whether the file content is a stream.
func (f *File) IsStreamed() bool {
	_, ok := f.Contents.(Streamed)
	return ok
}

// Bytes returns the buffered content, or nil for any other variant.
func (f *File) Bytes() []byte {
	if b, ok := f.Contents.(Buffered); ok {
		return b.Data
	}
	return nil
}

// SetBytes replaces the file content with a buffer.
func (f *File) SetBytes(data []byte) {
	f.Contents = Buffered{Data: data}
}

// Relative returns the path relative to the glob base, using forward slashes.
func (f *File) Relative() string {
	if f.Base == "" {
		return filepath.ToSlash(filepath.Base(f.Path))
	}
	rel, err := filepath.Rel(f.Base, f.Path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(filepath.Base(f.Path))
	}
	return filepath.ToSlash(rel)
}

// AttachLint attaches the lint result. It can only succeed once.
func (f *File) AttachLint(result LintResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lint != nil {
		return ErrLintAttached
	}
	r := result
	r.Issues = append([]Issue(nil), result.Issues...)
	f.lint = &r
	return nil
}

// LintResult returns a copy of the attached lint result.
func (f *File) LintResult() (LintResult, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lint == nil {
		return LintResult{}, false
	}
	r := *f.lint
	r.Issues = append([]Issue(nil), f.lint.Issues...)
	return r, true
}

// RenameSuffix inserts suffix between the file stem and its extension:
// "app.css" + ".min" becomes "app.min.css". An empty suffix is a no-op.
func RenameSuffix(path, suffix string) string {
	if suffix == "" {
		return path
	}
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + suffix + ext
}
