package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Roelanb/imagewatcher/internal/events"
	"github.com/Roelanb/imagewatcher/internal/jobs"
	"github.com/Roelanb/imagewatcher/internal/pipeline"
	"github.com/Roelanb/imagewatcher/internal/watch"
)

// DefaultPollInterval is the pause between watch-mode sweeps.
const DefaultPollInterval = time.Second

// observabilityLogger is minimal interface from zap.SugaredLogger we use.
type observabilityLogger interface {
	Infow(msg string, keysAndValues ...any)
	Errorw(msg string, keysAndValues ...any)
	Debugw(msg string, keysAndValues ...any)
	Warnw(msg string, keysAndValues ...any)
}

type executor interface {
	Execute(ctx context.Context, f *pipeline.WatchedFile) pipeline.Outcome
}

type publisher interface {
	Publish(ctx context.Context, ev events.Processed) error
}

// FatalError stops a run: an output could not be written or a watched
// file's metadata could not be read.
type FatalError struct {
	Path   string
	Reason string
	Err    error
}

func (e *FatalError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Reason, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

// Report summarizes a compile run by source path.
type Report struct {
	Completed []string
	Retryable []string
	Fatal     []string
}

// Runner drives change detection and the pipeline over the watched files.
// It is single-threaded: files are processed one at a time, in order.
type Runner struct {
	log      observabilityLogger
	files    []*pipeline.WatchedFile
	states   []watch.State
	exec     executor
	stat     func(path string) (time.Time, error)
	interval time.Duration
	wake     <-chan watch.Event
	store    StateStore
	pub      publisher
	board    *Board
}

// Option configures a Runner.
type Option func(*Runner)

// WithStat replaces the modification-time lookup.
func WithStat(fn func(string) (time.Time, error)) Option {
	return func(r *Runner) { r.stat = fn }
}

// WithPollInterval sets the pause between sweeps; non-positive keeps the default.
func WithPollInterval(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithWake ends the pause between sweeps early whenever ch delivers.
func WithWake(ch <-chan watch.Event) Option {
	return func(r *Runner) { r.wake = ch }
}

// WithStore records per-file processing history.
func WithStore(s StateStore) Option {
	return func(r *Runner) { r.store = s }
}

// WithPublisher announces completed files.
func WithPublisher(p publisher) Option {
	return func(r *Runner) { r.pub = p }
}

// WithBoard publishes progress snapshots to b.
func WithBoard(b *Board) Option {
	return func(r *Runner) { r.board = b }
}

// New creates a Runner for files, processed by exec.
func New(log observabilityLogger, files []*pipeline.WatchedFile, exec executor, opts ...Option) *Runner {
	r := &Runner{
		log:      log,
		files:    files,
		states:   make([]watch.State, len(files)),
		exec:     exec,
		stat:     watch.Stat,
		interval: DefaultPollInterval,
	}
	for _, o := range opts {
		o(r)
	}
	if r.board == nil {
		r.board = NewBoard(files)
	}
	r.loadHistory()
	return r
}

// Board returns the progress board the runner updates.
func (r *Runner) Board() *Board { return r.board }

// Run dispatches to Compile or Watch.
func (r *Runner) Run(ctx context.Context, mode Mode) error {
	r.board.setMode(mode)
	if mode == ModeCompile {
		_, err := r.Compile(ctx)
		return err
	}
	return r.Watch(ctx)
}

// Compile processes every file once regardless of change state. Failures are
// reported per file and do not stop the pass; the returned error is non-nil
// when any file failed fatally.
func (r *Runner) Compile(ctx context.Context) (Report, error) {
	var rep Report
	runID := uuid.NewString()
	r.log.Infow("compiling files", "files", len(r.files), "run", runID)

	for i, f := range r.files {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		// Only informational here; a missing file surfaces as a load failure.
		mod, _ := r.stat(f.Path)

		o := r.process(ctx, i, mod, runID)
		switch o.Kind {
		case pipeline.Completed:
			r.states[i].RecordProcessed(mod)
			rep.Completed = append(rep.Completed, f.Path)
		case pipeline.Retryable:
			rep.Retryable = append(rep.Retryable, f.Path)
		case pipeline.Fatal:
			rep.Fatal = append(rep.Fatal, f.Path)
		}
	}
	r.board.sweepDone()

	r.log.Infow("compile finished",
		"completed", len(rep.Completed), "retryable", len(rep.Retryable), "fatal", len(rep.Fatal))
	if len(rep.Fatal) > 0 {
		return rep, fmt.Errorf("%d of %d files failed: %v", len(rep.Fatal), len(r.files), rep.Fatal)
	}
	return rep, nil
}

// Watch sweeps until ctx is cancelled (returning nil) or a fatal condition
// occurs (returning a *FatalError).
func (r *Runner) Watch(ctx context.Context) error {
	r.log.Infow("watching files", "files", len(r.files), "interval", r.interval.String())
	for {
		if ctx.Err() != nil {
			return nil
		}
		if err := r.Sweep(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if !r.wait(ctx) {
			return nil
		}
	}
}

// Sweep visits every file once, processing those whose modification time
// changed. A retryable failure leaves the file's state untouched so the next
// sweep tries again.
func (r *Runner) Sweep(ctx context.Context) error {
	runID := uuid.NewString()
	for i, f := range r.files {
		if err := ctx.Err(); err != nil {
			return err
		}
		mod, err := r.stat(f.Path)
		if err != nil {
			r.log.Errorw("cannot read file metadata", "path", f.Path, "error", err)
			r.mark(i, Mark{Output: f.Output, Status: StatusFailed, LastError: err.Error(), RunID: runID})
			return &FatalError{Path: f.Path, Reason: "cannot read modification time", Err: err}
		}
		if !r.states[i].ShouldProcess(mod) {
			continue
		}

		o := r.process(ctx, i, mod, runID)
		switch o.Kind {
		case pipeline.Completed:
			r.states[i].RecordProcessed(mod)
		case pipeline.Retryable:
			r.log.Warnw("will retry on next sweep", "path", f.Path)
		case pipeline.Fatal:
			return &FatalError{Path: f.Path, Reason: o.Reason, Err: o.Err}
		}
	}
	r.board.sweepDone()
	return nil
}

func (r *Runner) wait(ctx context.Context) bool {
	t := time.NewTimer(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return false
		case <-t.C:
			return true
		case ev, ok := <-r.wake:
			if !ok {
				r.wake = nil
				continue
			}
			r.log.Debugw("change notification", "path", ev.Path)
			return true
		}
	}
}

// process runs the pipeline for file i and records the outcome everywhere
// except the watch state, which callers own.
func (r *Runner) process(ctx context.Context, i int, mod time.Time, runID string) pipeline.Outcome {
	f := r.files[i]
	start := time.Now()
	o := r.exec.Execute(ctx, f)

	switch o.Kind {
	case pipeline.Completed:
		r.log.Infow("image written", "path", f.Path, "output", f.Output,
			"steps", len(f.Chain), "elapsed", time.Since(start).String(), "run", runID)
		r.mark(i, Mark{Output: f.Output, Status: StatusDone, Modified: mod, RunID: runID})
		r.board.update(i, func(v *FileView) {
			v.Status = string(StatusDone)
			v.LastModified = mod
			v.LastRun = time.Now()
			v.LastError = ""
			v.Runs++
		})
		r.publish(ctx, f, mod, runID)
	case pipeline.Retryable:
		r.log.Warnw(o.Reason, "path", f.Path, "error", o.Err, "run", runID)
		r.mark(i, Mark{Output: f.Output, Status: StatusRetrying, LastError: errText(o), RunID: runID})
		r.board.update(i, func(v *FileView) {
			v.Status = string(StatusRetrying)
			v.LastError = errText(o)
		})
	case pipeline.Fatal:
		r.log.Errorw(o.Reason, "path", f.Path, "output", f.Output, "error", o.Err, "run", runID)
		r.mark(i, Mark{Output: f.Output, Status: StatusFailed, LastError: errText(o), RunID: runID})
		r.board.update(i, func(v *FileView) {
			v.Status = string(StatusFailed)
			v.LastError = errText(o)
		})
	}
	return o
}

func (r *Runner) mark(i int, m Mark) {
	if r.store == nil {
		return
	}
	if err := r.store.Mark(r.files[i].Path, m); err != nil {
		r.log.Warnw("failed to record history", "path", r.files[i].Path, "error", err)
	}
}

func (r *Runner) publish(ctx context.Context, f *pipeline.WatchedFile, mod time.Time, runID string) {
	if r.pub == nil {
		return
	}
	steps := make([]string, 0, len(f.Chain))
	for _, k := range jobs.Kinds(f.Chain) {
		steps = append(steps, string(k))
	}
	ev := events.Processed{
		ID:          uuid.New(),
		RunID:       runID,
		Path:        f.Path,
		Output:      f.Output,
		Modified:    mod,
		Steps:       steps,
		ProcessedAt: time.Now().UTC(),
	}
	if err := r.pub.Publish(ctx, ev); err != nil {
		r.log.Warnw("failed to publish event", "path", f.Path, "error", err)
	}
}

// loadHistory seeds the board from the store so status survives restarts.
func (r *Runner) loadHistory() {
	if r.store == nil {
		return
	}
	for i, f := range r.files {
		rec, err := r.store.Get(f.Path)
		if err != nil {
			r.log.Warnw("failed to read history", "path", f.Path, "error", err)
			continue
		}
		if rec == nil {
			continue
		}
		r.board.update(i, func(v *FileView) {
			v.Runs = rec.Runs
			v.LastRun = rec.UpdatedAt
			v.LastModified = rec.Modified
			v.LastError = rec.LastError
		})
	}
}

func errText(o pipeline.Outcome) string {
	if o.Err != nil {
		return o.Reason + ": " + o.Err.Error()
	}
	return o.Reason
}
