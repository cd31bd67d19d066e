package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/JonMunkholm/dataview/internal/logging"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
)

// DefaultWatchDebounce groups the burst of events editors emit on save.
const DefaultWatchDebounce = 300 * time.Millisecond

// fileChangedMsg reports that the watched file was written.
type fileChangedMsg struct{}

// Watcher reports writes to a single file. The directory is watched
// rather than the file so editors that save by rename are seen too.
type Watcher struct {
	w        *fsnotify.Watcher
	path     string
	debounce time.Duration
	changes  chan struct{}
	done     <-chan struct{}
	cancel   context.CancelFunc
	once     sync.Once
}

// NewWatcher starts watching path.
func NewWatcher(ctx context.Context, path string, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	ctx, cancel := context.WithCancel(ctx)
	w := &Watcher{
		w:        fw,
		path:     abs,
		debounce: debounce,
		changes:  make(chan struct{}, 1),
		done:     ctx.Done(),
		cancel:   cancel,
	}
	go w.run(ctx)
	return w, nil
}

func (w *Watcher) run(ctx context.Context) {
	logger := logging.WithFields(ctx, "file", w.path)

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.w.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if abs, _ := filepath.Abs(event.Name); abs != w.path {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, w.notify)

		case err, ok := <-w.w.Errors:
			if !ok {
				return
			}
			logger.Warn("watcher error", "error", err)
		}
	}
}

// notify never blocks; one pending change is enough to trigger a reload.
func (w *Watcher) notify() {
	select {
	case w.changes <- struct{}{}:
	default:
	}
}

// Changes receives a value after each debounced write.
func (w *Watcher) Changes() <-chan struct{} { return w.changes }

// Close stops watching. Safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		w.cancel()
		err = w.w.Close()
	})
	return err
}

// waitForChange blocks until the next change. It is re-issued after every
// fileChangedMsg so exactly one wait is pending at a time.
func waitForChange(w *Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case <-w.changes:
			return fileChangedMsg{}
		case <-w.done:
			return nil
		}
	}
}
