package watcher

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Job is a source file that was created or rewritten and has been quiet for
// the settle period.
type Job struct {
	FilePath string
}

type Watcher struct {
	path    string
	settle  time.Duration
	logger  *slog.Logger
	watcher *fsnotify.Watcher

	mu      sync.Mutex
	timers  map[string]*time.Timer
	pending sync.WaitGroup
	done    chan struct{}
	once    sync.Once
}

func New(path string, settle time.Duration, logger *slog.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := fsWatcher.Add(path); err != nil {
		fsWatcher.Close()
		return nil, err
	}

	return &Watcher{
		path:    path,
		settle:  settle,
		logger:  logger,
		watcher: fsWatcher,
		timers:  make(map[string]*time.Timer),
		done:    make(chan struct{}),
	}, nil
}

// Start emits jobs until ctx is cancelled, then closes the watcher. Jobs
// still settling at that point are dropped; no job is sent after Start
// returns, so the caller may close jobs.
func (w *Watcher) Start(ctx context.Context, jobs chan<- Job) {
	defer w.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.logger.Debug("file created or modified", "path", event.Name)
				w.schedule(ctx, event.Name, jobs)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watch error", "path", w.path, "error", err)
		}
	}
}

// schedule (re)arms the settle timer for path so a burst of writes yields a
// single job.
func (w *Watcher) schedule(ctx context.Context, path string, jobs chan<- Job) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.arm(ctx, path, jobs)
}

// arm must be called with w.mu held.
func (w *Watcher) arm(ctx context.Context, path string, jobs chan<- Job) {
	if t, ok := w.timers[path]; ok && t.Stop() {
		t.Reset(w.settle)
		return
	}

	// Either no timer or its callback already fired. A fired callback that
	// finds a newer timer in the map leaves the job to it.
	var t *time.Timer
	w.pending.Add(1)
	t = time.AfterFunc(w.settle, func() {
		defer w.pending.Done()

		w.mu.Lock()
		current := w.timers[path] == t
		if current {
			delete(w.timers, path)
		}
		w.mu.Unlock()
		if !current {
			return
		}

		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			return
		}

		select {
		case jobs <- Job{FilePath: path}:
		case <-ctx.Done():
		case <-w.done:
		}
	})
	w.timers[path] = t
}

// Close stops the watcher and waits for settle callbacks in flight. It is
// safe to call more than once.
func (w *Watcher) Close() {
	w.once.Do(func() {
		close(w.done)

		w.mu.Lock()
		for path, t := range w.timers {
			if t.Stop() {
				w.pending.Done()
			}
			delete(w.timers, path)
		}
		w.mu.Unlock()

		w.pending.Wait()

		if err := w.watcher.Close(); err != nil {
			w.logger.Error("closing watcher", "error", err)
		}
	})
}
