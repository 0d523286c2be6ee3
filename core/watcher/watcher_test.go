package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/tristendillon/forge/core/models"
)

type recorder struct {
	mu     sync.Mutex
	events []models.WatchEvent
	ch     chan models.WatchEvent
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan models.WatchEvent, 64)}
}

func (r *recorder) onChange(_ context.Context, event models.WatchEvent) error {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
	r.ch <- event
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func (r *recorder) next(t *testing.T) models.WatchEvent {
	t.Helper()
	select {
	case ev := <-r.ch:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watch event")
		return models.WatchEvent{}
	}
}

func startWatcher(t *testing.T, root string, ignore []string) (*FileWatcherImpl, *recorder) {
	t.Helper()

	fw, err := NewFileWatcher(root, ignore)
	if err != nil {
		t.Fatalf("NewFileWatcher() error: %v", err)
	}
	rec := newRecorder()
	fw.FileWatcher.AddOnChangeFunc(rec.onChange)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		fw.Close()
	})

	if err := fw.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	return fw, rec
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestPreexistingFilesDoNotTrigger(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.tsx"), "a")
	writeFile(t, filepath.Join(root, "guide", "b.tsx"), "b")

	fw, rec := startWatcher(t, root, nil)
	if fw.State() != models.WatchWatching {
		t.Errorf("State() = %s, want Watching", fw.State())
	}

	time.Sleep(200 * time.Millisecond)
	if n := rec.count(); n != 0 {
		t.Errorf("got %d passes at startup, want 0", n)
	}
}

func TestAddTriggersExactlyOnePass(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	_, rec := startWatcher(t, root, nil)

	path := filepath.Join(root, "c.tsx")
	writeFile(t, path, "export default () => null\n")

	ev := rec.next(t)
	if ev.Kind != models.WatchAdd || ev.Path != path {
		t.Errorf("event = %+v, want add %s", ev, path)
	}

	time.Sleep(200 * time.Millisecond)
	if n := rec.count(); n != 1 {
		t.Errorf("got %d passes, want 1", n)
	}
}

func TestWriteDoesNotTrigger(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := filepath.Join(root, "a.tsx")
	writeFile(t, path, "v1")

	_, rec := startWatcher(t, root, nil)
	if err := os.WriteFile(path, []byte("v2"), 0o644); err != nil {
		t.Fatal(err)
	}

	time.Sleep(200 * time.Millisecond)
	if n := rec.count(); n != 0 {
		t.Errorf("got %d passes for a content change, want 0", n)
	}
}

func TestRemoveTriggersUnlink(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := filepath.Join(root, "a.tsx")
	writeFile(t, path, "a")

	_, rec := startWatcher(t, root, nil)
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	ev := rec.next(t)
	if ev.Kind != models.WatchUnlink || ev.Path != path {
		t.Errorf("event = %+v, want unlink %s", ev, path)
	}
}

func TestRemoveDirTriggersUnlinkDir(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	dir := filepath.Join(root, "guide")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}

	_, rec := startWatcher(t, root, nil)
	if err := os.Remove(dir); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev := <-rec.ch:
			if ev.Path == dir && ev.Kind == models.WatchUnlinkDir {
				return
			}
		case <-deadline:
			t.Fatal("no unlinkDir event for removed directory")
		}
	}
}

func TestNewDirectoryIsWatched(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	_, rec := startWatcher(t, root, nil)

	dir := filepath.Join(root, "guide")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	// Give the watcher a moment to register the new directory.
	time.Sleep(200 * time.Millisecond)

	path := filepath.Join(dir, "b.tsx")
	writeFile(t, path, "b")

	ev := rec.next(t)
	if ev.Kind != models.WatchAdd || ev.Path != path {
		t.Errorf("event = %+v, want add %s", ev, path)
	}
}

func TestIgnoredPaths(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	_, rec := startWatcher(t, root, []string{"**/*.snap"})

	writeFile(t, filepath.Join(root, ".DS_Store"), "x")
	writeFile(t, filepath.Join(root, "a.snap"), "x")

	time.Sleep(200 * time.Millisecond)
	if n := rec.count(); n != 0 {
		t.Errorf("got %d passes for ignored files, want 0", n)
	}
}

func TestCallbackErrorKeepsWatching(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	fw, err := NewFileWatcher(root, nil)
	if err != nil {
		t.Fatal(err)
	}

	calls := make(chan struct{}, 8)
	fw.FileWatcher.AddOnChangeFunc(func(context.Context, models.WatchEvent) error {
		calls <- struct{}{}
		return os.ErrPermission
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := fw.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer fw.Close()

	for _, name := range []string{"a.tsx", "b.tsx"} {
		writeFile(t, filepath.Join(root, name), "x")
		select {
		case <-calls:
		case <-time.After(5 * time.Second):
			t.Fatalf("no pass for %s", name)
		}
	}
}

func TestWatchReturnsOnCancel(t *testing.T) {
	t.Parallel()

	fw, err := NewFileWatcher(t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- fw.Watch(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch() did not return after cancel")
	}
	if fw.State() != models.WatchStopped {
		t.Errorf("State() = %s, want Stopped", fw.State())
	}
}

func TestInvalidIgnorePattern(t *testing.T) {
	t.Parallel()

	if _, err := NewFileWatcher(t.TempDir(), []string{"[unclosed"}); err == nil {
		t.Error("expected error for invalid pattern")
	}
}

func TestStartTwice(t *testing.T) {
	t.Parallel()

	fw, _ := startWatcher(t, t.TempDir(), nil)
	if err := fw.Start(context.Background()); err == nil {
		t.Error("expected error on second Start")
	}
}

func TestCloseWaitsForConcurrentPasses(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	fw, rec := startWatcher(t, root, nil)
	// Drain so onChange never blocks on the buffered channel.
	go func() {
		for range rec.ch {
		}
	}()

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				fw.trigger(ctx, models.WatchEvent{Kind: models.WatchAdd, Path: filepath.Join(root, "x.tsx")})
			}
		}()
	}

	time.Sleep(5 * time.Millisecond)
	if err := fw.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	atClose := rec.count()
	wg.Wait()

	if got := rec.count(); got != atClose {
		t.Errorf("%d passes ran after Close returned", got-atClose)
	}
	if fw.State() != models.WatchStopped {
		t.Errorf("State() = %s, want Stopped", fw.State())
	}
}

func TestTriggerAfterCloseIsDropped(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	fw, rec := startWatcher(t, root, nil)
	if err := fw.Close(); err != nil {
		t.Fatal(err)
	}

	fw.trigger(context.Background(), models.WatchEvent{Kind: models.WatchAdd, Path: filepath.Join(root, "late.tsx")})
	time.Sleep(50 * time.Millisecond)
	if n := rec.count(); n != 0 {
		t.Errorf("OnChange ran %d times after Close", n)
	}
}
