package models

import (
	"context"
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"
)

type WatchState int

const (
	WatchIdle WatchState = iota
	WatchWatching
	WatchReanalyzing
	WatchStopped
)

func (s WatchState) String() string {
	switch s {
	case WatchIdle:
		return "Idle"
	case WatchWatching:
		return "Watching"
	case WatchReanalyzing:
		return "Reanalyzing"
	case WatchStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

type WatchEventKind string

const (
	WatchAdd       WatchEventKind = "add"
	WatchUnlink    WatchEventKind = "unlink"
	WatchUnlinkDir WatchEventKind = "unlinkDir"
)

type WatchEvent struct {
	Kind WatchEventKind
	Path string
}

type FileWatcher struct {
	Watcher *fsnotify.Watcher
	RootDir string
	Ignore  []string
	Mutex   sync.Mutex
	OnStart func() error
	// OnChange runs in its own goroutine for every structural change.
	OnChange func(ctx context.Context, event WatchEvent) error
	OnClose  func() error
}

func NewFileWatcher(rootDir string, ignore []string) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &FileWatcher{
		Watcher:  watcher,
		RootDir:  rootDir,
		Ignore:   ignore,
		OnStart:  func() error { return nil },
		OnChange: func(context.Context, WatchEvent) error { return fmt.Errorf("OnChange not set") },
		OnClose:  func() error { return nil },
	}, nil
}

func (fw *FileWatcher) AddOnStartFunc(onStart func() error) {
	fw.OnStart = onStart
}

func (fw *FileWatcher) AddOnChangeFunc(onChange func(ctx context.Context, event WatchEvent) error) {
	fw.OnChange = onChange
}

func (fw *FileWatcher) AddOnCloseFunc(onClose func() error) {
	fw.OnClose = onClose
}
