// Package source reads stylesheet source sets from disk and writes
// transformed files back.
package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-logr/logr"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/yacobolo/cssbuild"
)

// readStats tracks source set expansion statistics
type readStats struct {
	FilesDiscovered int // Total paths matched by positive patterns
	FilesRead       int // Files returned (after filtering)
	FilesSkipped    int // Paths removed by negated patterns or .gitignore
}

// Reader expands glob patterns under a working directory into files.
//
// Patterns are evaluated in order; a pattern starting with "!" removes
// matching paths from the set. Paths ignored by the .gitignore in the working
// directory are skipped. Matched directories become Empty records.
type Reader struct {
	log logr.Logger

	mu      sync.Mutex
	ignores map[string]*ignore.GitIgnore
	last    readStats
}

// NewReader creates a reader.
func NewReader(log logr.Logger) *Reader {
	return &Reader{
		log:     log,
		ignores: make(map[string]*ignore.GitIgnore),
	}
}

// Read implements cssbuild.SourceReader.
func (r *Reader) Read(ctx context.Context, spec cssbuild.SourceSpec) ([]*cssbuild.File, error) {
	cwd := spec.Cwd
	if cwd == "" {
		cwd = "."
	}
	cwd, err := filepath.Abs(cwd)
	if err != nil {
		return nil, fmt.Errorf("resolving cwd: %w", err)
	}

	include, exclude := splitPatterns(spec.Patterns)
	gi := r.gitIgnore(cwd)

	var files []*cssbuild.File
	seen := make(map[string]bool)
	stats := readStats{}

	for _, pattern := range include {
		base, _ := doublestar.SplitPattern(filepath.ToSlash(pattern))
		fullPattern := pattern
		if !filepath.IsAbs(pattern) {
			fullPattern = filepath.Join(cwd, pattern)
			base = filepath.Join(cwd, filepath.FromSlash(base))
		}

		// Use doublestar for ** glob support
		matches, err := doublestar.FilepathGlob(fullPattern)
		if err != nil {
			return nil, fmt.Errorf("glob pattern %q: %w", pattern, err)
		}

		for _, match := range matches {
			if seen[match] {
				continue
			}
			seen[match] = true
			stats.FilesDiscovered++

			rel, err := filepath.Rel(cwd, match)
			if err != nil {
				rel = match
			}
			rel = filepath.ToSlash(rel)
			if excluded(rel, exclude) || (gi != nil && !strings.HasPrefix(rel, "..") && gi.MatchesPath(rel)) {
				stats.FilesSkipped++
				continue
			}

			if err := ctx.Err(); err != nil {
				return nil, err
			}
			file, err := readFile(match, base, spec.SourceMaps)
			if err != nil {
				return nil, err
			}
			files = append(files, file)
			stats.FilesRead++
		}
	}

	r.mu.Lock()
	r.last = stats
	r.mu.Unlock()
	r.log.V(1).Info("read source set", "cwd", cwd, "discovered", stats.FilesDiscovered, "files", stats.FilesRead, "skipped", stats.FilesSkipped)
	return files, nil
}

func (r *Reader) lastStats() readStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func readFile(path, base string, sourceMaps bool) (*cssbuild.File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return &cssbuild.File{Path: path, Base: base, Contents: cssbuild.Empty{}}, nil
	}

	// #nosec G304 - path comes from the configured source globs
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	file := cssbuild.NewFile(path, base, data)
	if sourceMaps {
		file.SourceMap = &cssbuild.SourceMap{
			Version: 3,
			File:    filepath.Base(path),
			Sources: []string{file.Relative()},
			Names:   []string{},
		}
	}
	return file, nil
}

// gitIgnore loads <cwd>/.gitignore once per directory.
// Gracefully degrades if .gitignore doesn't exist
func (r *Reader) gitIgnore(cwd string) *ignore.GitIgnore {
	r.mu.Lock()
	defer r.mu.Unlock()
	if gi, ok := r.ignores[cwd]; ok {
		return gi
	}
	gi, err := ignore.CompileIgnoreFile(filepath.Join(cwd, ".gitignore"))
	if err != nil {
		gi = nil
	}
	r.ignores[cwd] = gi
	return gi
}

func splitPatterns(patterns []string) (include, exclude []string) {
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		switch {
		case p == "":
		case strings.HasPrefix(p, "!"):
			exclude = append(exclude, filepath.ToSlash(strings.TrimPrefix(p, "!")))
		default:
			include = append(include, p)
		}
	}
	return include, exclude
}

func excluded(rel string, exclude []string) bool {
	for _, pattern := range exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
