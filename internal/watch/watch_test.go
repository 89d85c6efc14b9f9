package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/orizon-lang/derivcheck/internal/assert"
)

func TestWatcherDebouncesChanges(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "mp.proof")
	other := filepath.Join(dir, "other.proof")
	assert.NoError(t, os.WriteFile(watched, []byte("1. P :: P\n"), 0o644))

	w, err := New(50*time.Millisecond, watched)
	if err != nil {
		t.Skip("fsnotify not supported: ", err)
	}
	defer w.Close()

	var mu sync.Mutex
	var batches [][]string
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(paths []string) {
			mu.Lock()
			defer mu.Unlock()
			batches = append(batches, paths)
		})
	}()

	for i := 0; i < 3; i++ {
		assert.NoError(t, os.WriteFile(watched, []byte("1. Q :: P\n"), 0o644))
	}
	assert.NoError(t, os.WriteFile(other, []byte("ignored"), 0o644))

	ok := assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(batches) > 0
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)

	if ok {
		mu.Lock()
		defer mu.Unlock()
		abs, _ := filepath.Abs(watched)
		assert.DeepEqual(t, batches[0], []string{abs})
	}
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()
	b := filepath.Join(dir, "b.yaml")
	a := filepath.Join(dir, "a.yaml")
	w, err := New(time.Millisecond, b, a)
	if err != nil {
		t.Skip("fsnotify not supported: ", err)
	}
	defer w.Close()
	assert.DeepEqual(t, w.Files(), []string{a, b})
}

func TestNewFailsForMissingDirectory(t *testing.T) {
	_, err := New(time.Millisecond, filepath.Join(t.TempDir(), "nope", "x.proof"))
	assert.Error(t, err)
}
