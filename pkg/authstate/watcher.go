package authstate

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/harun/walet/internal/observability"
)

// DefaultDebounce is the quiet window before changed records are reported.
const DefaultDebounce = 500 * time.Millisecond

// DirWatcher reports external changes to record files in a session
// directory, such as another process syncing the same session. Events are
// debounced and delivered as a sorted batch of record file names.
type DirWatcher struct {
	watcher  *fsnotify.Watcher
	logger   zerolog.Logger
	onChange func(records []string)
	stopCh   chan struct{}

	mu       sync.Mutex
	debounce time.Duration
	timer    *time.Timer
	pending  map[string]struct{}
	stopped  bool
}

// NewDirWatcher watches dir and calls onChange with the names of changed
// record files after each quiet window.
func NewDirWatcher(dir string, logger zerolog.Logger, onChange func(records []string)) (*DirWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	dw := &DirWatcher{
		watcher:  watcher,
		logger:   logger,
		onChange: onChange,
		debounce: DefaultDebounce,
		stopCh:   make(chan struct{}),
		pending:  make(map[string]struct{}),
	}

	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}

	go dw.run()

	return dw, nil
}

// SetDebounce adjusts the quiet window. Call it before events start flowing.
func (dw *DirWatcher) SetDebounce(d time.Duration) {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	dw.debounce = d
}

// Stop stops the watcher. Stopping twice is a no-op.
func (dw *DirWatcher) Stop() error {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	if dw.stopped {
		return nil
	}
	dw.stopped = true
	close(dw.stopCh)
	return dw.watcher.Close()
}

// run processes file system events
func (dw *DirWatcher) run() {
	for {
		select {
		case event, ok := <-dw.watcher.Events:
			if !ok {
				return
			}

			// Only record files count; temp files churn during saves
			name := filepath.Base(event.Name)
			if !strings.HasSuffix(name, ".json") {
				continue
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) {
				observability.RecordWatcherEvent(event.Op.String())
				dw.logger.Debug().
					Str("record", name).
					Str("op", event.Op.String()).
					Msg("Record change detected")

				dw.schedule(name)
			}

		case err, ok := <-dw.watcher.Errors:
			if !ok {
				return
			}
			dw.logger.Error().Err(err).Msg("Directory watcher error")

		case <-dw.stopCh:
			return
		}
	}
}

// schedule adds the record to the pending batch and restarts the debounce
// timer.
func (dw *DirWatcher) schedule(record string) {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	dw.pending[record] = struct{}{}
	if dw.timer != nil {
		dw.timer.Stop()
	}
	dw.timer = time.AfterFunc(dw.debounce, dw.flush)
}

// flush delivers the pending batch.
func (dw *DirWatcher) flush() {
	dw.mu.Lock()
	records := make([]string, 0, len(dw.pending))
	for record := range dw.pending {
		records = append(records, record)
	}
	dw.pending = make(map[string]struct{})
	dw.mu.Unlock()

	if len(records) == 0 {
		return
	}
	sort.Strings(records)
	dw.onChange(records)
}
