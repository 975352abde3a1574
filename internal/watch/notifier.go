package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

type Event struct {
	Path string
	Time time.Time
}

type Options struct {
	Paths    []string      // files to report changes for
	Debounce time.Duration // collapse bursts within this window (0 = no debounce)
}

// Notifier reports filesystem changes to a fixed set of files. It watches the
// parent directories so that editors replacing a file by rename are still seen.
// Events are hints only; callers still decide by modification time.
type Notifier struct {
	opts  Options
	paths map[string]struct{}
	dirs  []string

	mu      sync.Mutex
	w       *fsnotify.Watcher
	cancel  context.CancelFunc
	started bool
	closed  bool
}

// NewNotifier creates a Notifier for the given options.
func NewNotifier(opts Options) (*Notifier, error) {
	if len(opts.Paths) == 0 {
		return nil, errors.New("notifier needs at least one path")
	}
	n := &Notifier{opts: opts, paths: make(map[string]struct{}, len(opts.Paths))}
	seenDir := map[string]struct{}{}
	for _, p := range opts.Paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("abs %s: %w", p, err)
		}
		n.paths[abs] = struct{}{}
		dir := filepath.Dir(abs)
		if _, ok := seenDir[dir]; !ok {
			seenDir[dir] = struct{}{}
			n.dirs = append(n.dirs, dir)
		}
	}
	return n, nil
}

// Start begins watching and returns a channel of change events.
// Cancel the provided context to stop the notifier.
func (n *Notifier) Start(ctx context.Context) (<-chan Event, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.started {
		return nil, errors.New("notifier already started")
	}
	if n.closed {
		return nil, errors.New("notifier closed")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	for _, dir := range n.dirs {
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("add watch %s: %w", dir, err)
		}
	}

	n.w = fsw
	ctx, cancel := context.WithCancel(ctx)
	n.cancel = cancel
	n.started = true

	out := make(chan Event, 16)
	go n.run(ctx, out)
	return out, nil
}

func (n *Notifier) run(ctx context.Context, out chan<- Event) {
	defer func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		_ = n.w.Close()
		close(out)
		n.closed = true
	}()

	pending := make(map[string]time.Time)

	var tick <-chan time.Time
	if n.opts.Debounce > 0 {
		t := time.NewTicker(n.opts.Debounce)
		defer t.Stop()
		tick = t.C
	}

	// A full channel already holds a wake-up; dropping is fine.
	emit := func(p string) {
		select {
		case out <- Event{Path: p, Time: time.Now()}:
		default:
		}
	}

	flush := func() {
		now := time.Now()
		for p, t := range pending {
			if now.Sub(t) >= n.opts.Debounce {
				delete(pending, p)
				emit(p)
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-n.w.Events:
			if !ok {
				return
			}
			if !(ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) || ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Chmod)) {
				continue
			}
			path := filepath.Clean(ev.Name)
			if _, ok := n.paths[path]; !ok {
				continue
			}
			if n.opts.Debounce > 0 {
				pending[path] = time.Now()
			} else {
				emit(path)
			}

		case _, ok := <-n.w.Errors:
			if !ok {
				return
			}

		case <-tick:
			flush()
		}
	}
}

// Close stops the notifier if running.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.cancel != nil {
		n.cancel()
	}
}
