package cli

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWatcher_RegeneratesOnChange(t *testing.T) {
	t.Parallel()
	dir, specPath := writeSpec(t)

	var runs, forced atomic.Int32
	w := &watcher{
		path:     specPath,
		debounce: 50 * time.Millisecond,
		log:      zap.NewNop(),
		run: func(ctx context.Context, first bool) error {
			runs.Add(1)
			if first {
				return errors.New("first run fails")
			}
			forced.Add(1)
			return nil
		},
	}

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return runs.Load() == 1 }, 5*time.Second, 10*time.Millisecond)

	// a failed run does not stop the loop
	require.NoError(t, os.WriteFile(specPath, []byte(minimalSpecYAML+"\n"), 0o600))
	require.Eventually(t, func() bool { return forced.Load() >= 1 }, 5*time.Second, 10*time.Millisecond)

	time.Sleep(300 * time.Millisecond)
	settled := runs.Load()

	// other files in the directory are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o600))
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, settled, runs.Load())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcher_MissingDirectory(t *testing.T) {
	t.Parallel()
	w := &watcher{
		path:     filepath.Join(t.TempDir(), "gone", "spec.yaml"),
		debounce: time.Millisecond,
		log:      zap.NewNop(),
		run:      func(context.Context, bool) error { return nil },
	}
	require.Error(t, w.Run(t.Context()))
}
