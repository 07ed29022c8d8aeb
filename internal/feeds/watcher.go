package feeds

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/feedship/pkg/log"
)

// DefaultDebounce is how long the watcher waits after the last change event.
const DefaultDebounce = 200 * time.Millisecond

// Watcher re-validates the feeds file whenever it changes so that a broken
// edit is reported before the next scheduled run picks it up.
type Watcher struct {
	loader   *Loader
	logger   log.Logger
	debounce time.Duration

	// OnReload is called after every validation attempt. Optional.
	OnReload func(feeds int, err error)

	mu    sync.Mutex
	timer *time.Timer
	wg    sync.WaitGroup
}

// NewWatcher creates a watcher for the loader's file.
func NewWatcher(loader *Loader, logger log.Logger, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		loader:   loader,
		logger:   logger,
		debounce: debounce,
	}
}

// Run watches until ctx is cancelled.
// The parent directory is watched so editors that replace the file are seen.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	path, err := filepath.Abs(w.loader.Path())
	if err != nil {
		return err
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		return err
	}
	w.logger.Debug("watching feeds file", log.Path(path))

	defer w.stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.schedule(ctx)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("feeds watcher error", log.Err(err))
		}
	}
}

func (w *Watcher) schedule(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil && w.timer.Stop() {
		w.wg.Done()
	}
	w.wg.Add(1)
	w.timer = time.AfterFunc(w.debounce, func() {
		defer w.wg.Done()
		if ctx.Err() != nil {
			return
		}
		w.validate(ctx)
	})
}

func (w *Watcher) stop() {
	w.mu.Lock()
	if w.timer != nil && w.timer.Stop() {
		w.wg.Done()
	}
	w.mu.Unlock()
	w.wg.Wait()
}

func (w *Watcher) validate(ctx context.Context) {
	feeds, err := w.loader.Load(ctx)
	if err != nil {
		w.logger.Error("feeds file changed but is invalid; the next run will fail until it is fixed",
			log.Path(w.loader.Path()),
			log.Err(err))
	} else {
		w.logger.Info("feeds file reloaded",
			log.Path(w.loader.Path()),
			log.Int("feeds", len(feeds)))
	}
	if w.OnReload != nil {
		w.OnReload(len(feeds), err)
	}
}
