package datasource

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/golammostafa13/chartstudio/chart"
	"github.com/golammostafa13/chartstudio/errors"
	"github.com/golammostafa13/chartstudio/logger"
)

// ChangeCallback receives the reloaded dataset, or the error that prevented it.
type ChangeCallback func(chart.Dataset, error)

// FileWatcher reloads a JSON file source whenever the file changes.
// Rapid successive writes are coalesced by a debounce timer.
type FileWatcher struct {
	source         *FileSource
	watcher        *fsnotify.Watcher
	callback       ChangeCallback
	debouncePeriod time.Duration
	log            *zap.SugaredLogger

	mu            sync.Mutex
	debounceTimer *time.Timer
	done          chan struct{}
}

// NewFileWatcher watches the directory containing source.Path so that
// editors which replace the file by rename are still observed.
func NewFileWatcher(source *FileSource, debounce time.Duration, callback ChangeCallback) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}
	dir := filepath.Dir(source.Path)
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, errors.Wrapf(err, "failed to watch %s", dir)
	}

	return &FileWatcher{
		source:         source,
		watcher:        w,
		callback:       callback,
		debouncePeriod: debounce,
		log:            logger.ComponentLogger("datasource.watch"),
		done:           make(chan struct{}),
	}, nil
}

// Start begins watching in a background goroutine.
func (fw *FileWatcher) Start() {
	go fw.watchLoop()
}

func (fw *FileWatcher) watchLoop() {
	target := filepath.Clean(fw.source.Path)
	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				fw.log.Debugw("Data file changed", logger.FieldPath, event.Name, "op", event.Op.String())
				fw.scheduleReload()
			}
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.log.Warnw("Data file watcher error", logger.FieldError, err)
		case <-fw.done:
			return
		}
	}
}

func (fw *FileWatcher) scheduleReload() {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
	}
	fw.debounceTimer = time.AfterFunc(fw.debouncePeriod, func() {
		ds, err := fw.source.Fetch(context.Background())
		if err != nil {
			fw.log.Warnw("Data file reload failed", logger.FieldPath, fw.source.Path, logger.FieldError, err)
		}
		fw.callback(ds, err)
	})
}

// Stop stops watching and cancels any pending reload.
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
	}
	fw.mu.Unlock()

	select {
	case <-fw.done:
	default:
		close(fw.done)
	}
	return fw.watcher.Close()
}
