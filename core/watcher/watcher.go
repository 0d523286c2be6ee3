package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/tristendillon/forge/core/logger"
	"github.com/tristendillon/forge/core/models"
)

// Dotfiles and dot-directories never trigger a pass.
var defaultIgnores = []string{
	"**/.*",
	"**/.*/**",
}

type FileWatcher interface {
	Start(ctx context.Context) error
	Watch(ctx context.Context) error
	Close() error
	State() models.WatchState
}

// FileWatcherImpl watches a directory tree and runs OnChange for every file
// add, file remove and directory remove. Passes are not serialized: two
// events in quick succession run two concurrent passes.
type FileWatcherImpl struct {
	FileWatcher *models.FileWatcher

	ignores  []string
	state    atomic.Int32
	inflight atomic.Int32
	started  atomic.Bool

	// passesMu orders passes.Add in trigger against the Stopped store and
	// passes.Wait in Close.
	passesMu sync.Mutex
	passes   sync.WaitGroup

	dirsMu sync.Mutex
	dirs   map[string]struct{}

	closeOnce sync.Once
	closeErr  error
	done      chan error
}

func NewFileWatcher(rootDir string, ignore []string) (*FileWatcherImpl, error) {
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve watch root %s: %w", rootDir, err)
	}

	for _, pat := range ignore {
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("invalid watch ignore pattern %q", pat)
		}
	}

	fw, err := models.NewFileWatcher(absRoot, ignore)
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	ignores := make([]string, 0, len(defaultIgnores)+len(ignore))
	ignores = append(ignores, defaultIgnores...)
	ignores = append(ignores, ignore...)

	return &FileWatcherImpl{
		FileWatcher: fw,
		ignores:     ignores,
		dirs:        make(map[string]struct{}),
		done:        make(chan error, 1),
	}, nil
}

func (fw *FileWatcherImpl) State() models.WatchState {
	return models.WatchState(fw.state.Load())
}

// Start registers the tree and returns; events are processed in the
// background until ctx is cancelled or Close is called.
func (fw *FileWatcherImpl) Start(ctx context.Context) error {
	if !fw.started.CompareAndSwap(false, true) {
		return fmt.Errorf("watcher already started")
	}

	if err := fw.addWatchersRecursively(fw.FileWatcher.RootDir); err != nil {
		fw.Close()
		return fmt.Errorf("failed to add watchers: %w", err)
	}

	fw.state.Store(int32(models.WatchWatching))
	logger.Debug("Watching %s", fw.FileWatcher.RootDir)

	if err := fw.FileWatcher.OnStart(); err != nil {
		logger.Error("Watcher.OnStart failed: %v", err)
	}

	go func() {
		fw.done <- fw.loop(ctx)
	}()
	return nil
}

// Watch is Start followed by blocking until the watcher stops.
func (fw *FileWatcherImpl) Watch(ctx context.Context) error {
	if err := fw.Start(ctx); err != nil {
		return err
	}
	return <-fw.done
}

func (fw *FileWatcherImpl) loop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return fw.Close()

		case event, ok := <-fw.FileWatcher.Watcher.Events:
			if !ok {
				if fw.State() == models.WatchStopped {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			fw.handle(ctx, event)

		case err, ok := <-fw.FileWatcher.Watcher.Errors:
			if !ok {
				if fw.State() == models.WatchStopped {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			logger.Error("Watcher error: %v", err)
		}
	}
}

func (fw *FileWatcherImpl) handle(ctx context.Context, event fsnotify.Event) {
	if fw.shouldIgnore(event.Name) {
		return
	}

	logger.Debug("File event: %s %s", event.Op, event.Name)

	switch {
	case event.Has(fsnotify.Create):
		stat, err := os.Stat(event.Name)
		if err != nil {
			// Gone again before we looked; the matching remove event follows.
			return
		}
		if !stat.IsDir() {
			fw.trigger(ctx, models.WatchEvent{Kind: models.WatchAdd, Path: event.Name})
			return
		}
		logger.Debug("Adding watcher for new directory: %s", event.Name)
		if err := fw.addWatchersRecursively(event.Name); err != nil {
			logger.Error("Failed to watch new directory %s: %v", event.Name, err)
		}
		if fw.containsFiles(event.Name) {
			fw.trigger(ctx, models.WatchEvent{Kind: models.WatchAdd, Path: event.Name})
		}

	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		kind := models.WatchUnlink
		if fw.forgetDir(event.Name) {
			kind = models.WatchUnlinkDir
		}
		fw.trigger(ctx, models.WatchEvent{Kind: kind, Path: event.Name})
	}
}

// trigger runs one pass without waiting for earlier passes to finish.
func (fw *FileWatcherImpl) trigger(ctx context.Context, event models.WatchEvent) {
	fw.passesMu.Lock()
	if fw.State() == models.WatchStopped {
		fw.passesMu.Unlock()
		return
	}
	fw.inflight.Add(1)
	fw.state.CompareAndSwap(int32(models.WatchWatching), int32(models.WatchReanalyzing))
	fw.passes.Add(1)
	fw.passesMu.Unlock()

	go func() {
		defer fw.passes.Done()
		if err := fw.FileWatcher.OnChange(ctx, event); err != nil {
			logger.Error("Watcher.OnChange failed for %s %s: %v", event.Kind, event.Path, err)
		}
		if fw.inflight.Add(-1) == 0 {
			fw.state.CompareAndSwap(int32(models.WatchReanalyzing), int32(models.WatchWatching))
		}
	}()
}

// Close stops the watcher and waits for in-flight passes.
func (fw *FileWatcherImpl) Close() error {
	fw.closeOnce.Do(func() {
		fw.passesMu.Lock()
		fw.state.Store(int32(models.WatchStopped))
		fw.passesMu.Unlock()

		if err := fw.FileWatcher.Watcher.Close(); err != nil {
			fw.closeErr = fmt.Errorf("failed to close watcher: %w", err)
		}
		fw.passes.Wait()

		if err := fw.FileWatcher.OnClose(); err != nil {
			logger.Error("Watcher.OnClose failed: %v", err)
		}
	})
	return fw.closeErr
}

func (fw *FileWatcherImpl) relPath(path string) (string, bool) {
	rel, err := filepath.Rel(fw.FileWatcher.RootDir, path)
	if err != nil {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (fw *FileWatcherImpl) shouldIgnore(path string) bool {
	rel, ok := fw.relPath(path)
	if !ok || rel == "." {
		return false
	}
	for _, pat := range fw.ignores {
		if matched, err := doublestar.Match(pat, rel); err == nil && matched {
			return true
		}
	}
	return false
}

func (fw *FileWatcherImpl) addWatchersRecursively(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path != root {
				return nil
			}
			return err
		}

		if !d.IsDir() {
			return nil
		}

		if fw.shouldIgnore(path) {
			logger.Debug("Excluding directory: %s", path)
			return filepath.SkipDir
		}

		if err := fw.FileWatcher.Watcher.Add(path); err != nil {
			return fmt.Errorf("failed to add watcher for %s: %w", path, err)
		}

		fw.dirsMu.Lock()
		fw.dirs[path] = struct{}{}
		fw.dirsMu.Unlock()
		return nil
	})
}

// forgetDir drops path and its children from the watched set and reports
// whether path was a watched directory.
func (fw *FileWatcherImpl) forgetDir(path string) bool {
	fw.dirsMu.Lock()
	defer fw.dirsMu.Unlock()

	_, ok := fw.dirs[path]
	if !ok {
		return false
	}
	prefix := path + string(filepath.Separator)
	for dir := range fw.dirs {
		if dir == path || len(dir) > len(prefix) && dir[:len(prefix)] == prefix {
			delete(fw.dirs, dir)
		}
	}
	return true
}

func (fw *FileWatcherImpl) containsFiles(dir string) bool {
	found := false
	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || found {
			return filepath.SkipAll
		}
		if fw.shouldIgnore(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			found = true
			return filepath.SkipAll
		}
		return nil
	})
	return found
}
