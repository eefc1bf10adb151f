package cli

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultWatchDebounce = 250 * time.Millisecond

// watcher reruns generation when the input document changes. Editors often
// save through a rename, so the parent directory is watched and events are
// filtered by name.
type watcher struct {
	path     string
	debounce time.Duration
	log      *zap.Logger
	// run is called once up front with first set, then after every burst of changes.
	run func(ctx context.Context, first bool) error
}

// Run blocks until ctx is done. Generation failures are logged and do not stop
// the loop.
func (w *watcher) Run(ctx context.Context) error {
	target := filepath.Clean(absPath(w.path))

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create watcher")
	}
	defer fw.Close()
	if err := fw.Add(filepath.Dir(target)); err != nil {
		return errors.Wrapf(err, "watch %s", filepath.Dir(target))
	}

	w.regenerate(ctx, true)
	w.log.Info("watching for changes", zap.String("path", target))

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return errors.New("watcher event channel closed")
			}
			if filepath.Clean(ev.Name) != target || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)) {
				continue
			}
			w.log.Debug("input changed", zap.String("op", ev.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			w.regenerate(ctx, false)
		case err, ok := <-fw.Errors:
			if !ok {
				return errors.New("watcher error channel closed")
			}
			w.log.Warn("watcher error", zap.Error(err))
		}
	}
}

func (w *watcher) regenerate(ctx context.Context, first bool) {
	if err := w.run(ctx, first); err != nil {
		if ctx.Err() != nil {
			return
		}
		w.log.Error("generation failed", zap.String("error", withHints(err)))
	}
}

func signalContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}
