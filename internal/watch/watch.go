// Package watch rebuilds tasks when their source files change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/go-logr/logr"
)

// DefaultDebounce groups bursts of editor writes into one rebuild.
const DefaultDebounce = 150 * time.Millisecond

// Target is the watched source set of one task.
type Target struct {
	Name     string
	Cwd      string   // Absolute task root
	Patterns []string // Source globs relative to Cwd, "!" negates
	Dst      string   // Output directory, never triggers a rebuild
}

// Roots returns the directories to watch: the static prefix of every
// include pattern.
func (t Target) Roots() []string {
	seen := make(map[string]bool)
	var roots []string
	for _, pattern := range t.Patterns {
		if strings.HasPrefix(pattern, "!") {
			continue
		}
		base, _ := doublestar.SplitPattern(filepath.ToSlash(pattern))
		root := filepath.Join(t.Cwd, filepath.FromSlash(base))
		if !seen[root] {
			seen[root] = true
			roots = append(roots, root)
		}
	}
	return roots
}

// Matches reports whether path belongs to the source set.
func (t Target) Matches(path string) bool {
	rel, err := filepath.Rel(t.Cwd, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	rel = filepath.ToSlash(rel)

	if t.Dst != "" {
		dst := filepath.ToSlash(filepath.Clean(t.Dst))
		if rel == dst || strings.HasPrefix(rel, dst+"/") {
			return false
		}
	}

	matched := false
	for _, pattern := range t.Patterns {
		negated := strings.HasPrefix(pattern, "!")
		ok, _ := doublestar.Match(filepath.ToSlash(strings.TrimPrefix(pattern, "!")), rel)
		if !ok {
			continue
		}
		if negated {
			return false
		}
		matched = true
	}
	return matched
}

// Watcher maps file system events to task names.
type Watcher struct {
	fsw      *fsnotify.Watcher
	targets  []Target
	debounce time.Duration
	log      logr.Logger
}

// New watches the roots of every target recursively.
func New(targets []Target, debounce time.Duration, log logr.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w := &Watcher{fsw: fsw, targets: targets, debounce: debounce, log: log}

	for _, t := range targets {
		for _, root := range t.Roots() {
			if err := w.addRecursive(root); err != nil {
				_ = fsw.Close()
				return nil, err
			}
		}
	}
	return w, nil
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == root {
				w.log.Info("watch root does not exist", "path", root)
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// affected returns the names of targets matching path.
func (w *Watcher) affected(path string) []string {
	var names []string
	for _, t := range w.targets {
		if t.Matches(path) {
			names = append(names, t.Name)
		}
	}
	return names
}

// Run calls rebuild with the sorted names of changed tasks until ctx is done.
// Rebuild errors are logged and watching continues.
func (w *Watcher) Run(ctx context.Context, rebuild func(context.Context, []string) error) error {
	defer w.fsw.Close()

	var (
		mu      sync.Mutex
		pending = make(map[string]bool)
		fire    = make(chan struct{}, 1)
		timer   *time.Timer
	)
	schedule := func(names []string) {
		mu.Lock()
		defer mu.Unlock()
		for _, n := range names {
			pending[n] = true
		}
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(w.debounce, func() {
			select {
			case fire <- struct{}{}:
			default:
			}
		})
	}
	drain := func() []string {
		mu.Lock()
		defer mu.Unlock()
		names := make([]string, 0, len(pending))
		for n := range pending {
			names = append(names, n)
		}
		clear(pending)
		sort.Strings(names)
		return names
	}

	for {
		select {
		case <-ctx.Done():
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			mu.Unlock()
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addRecursive(event.Name); err != nil {
						w.log.Error(err, "watch new directory", "path", event.Name)
					}
					continue
				}
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if names := w.affected(event.Name); len(names) > 0 {
				w.log.V(1).Info("change detected", "path", event.Name, "tasks", names)
				schedule(names)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Error(err, "watcher error")

		case <-fire:
			names := drain()
			if len(names) == 0 {
				continue
			}
			if err := rebuild(ctx, names); err != nil {
				w.log.Error(err, "rebuild failed", "tasks", names)
			}
		}
	}
}
