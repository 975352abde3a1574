package pipeline

import (
	"context"
	"fmt"

	"github.com/Roelanb/imagewatcher/internal/jobs"
)

// WatchedFile is one configured source image with its effective settings.
type WatchedFile struct {
	Path     string
	Output   string
	Settings jobs.Settings
	Chain    []jobs.Step
}

// NewWatchedFile builds the transform chain for settings once.
func NewWatchedFile(path, output string, settings jobs.Settings) *WatchedFile {
	return &WatchedFile{
		Path:     path,
		Output:   output,
		Settings: settings,
		Chain:    jobs.Build(settings),
	}
}

// Uploader copies a written output to a secondary destination.
type Uploader interface {
	Upload(ctx context.Context, localPath string) (string, error)
}

// logger is the subset of zap.SugaredLogger the executor uses.
type logger interface {
	Infow(msg string, keysAndValues ...any)
}

// Executor loads a file, applies its chain and writes the result.
type Executor struct {
	log    logger
	codec  Codec
	mirror Uploader
}

// Option configures an Executor.
type Option func(*Executor)

// WithMirror uploads every written output through u.
func WithMirror(u Uploader) Option {
	return func(e *Executor) { e.mirror = u }
}

// NewExecutor creates an Executor using codec for image I/O.
func NewExecutor(log logger, codec Codec, opts ...Option) *Executor {
	e := &Executor{log: log, codec: codec}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Execute runs the full pipeline for f. A load failure is Retryable since the
// source may still be being written; save and mirror failures are Fatal.
func (e *Executor) Execute(ctx context.Context, f *WatchedFile) Outcome {
	e.log.Infow("updating image file", "path", f.Path)

	img, err := e.codec.Load(f.Path)
	if err != nil {
		return retryable(fmt.Sprintf("failed to open file %s", f.Path), err)
	}

	for _, step := range f.Chain {
		kv := append([]any{"path", f.Path, "step", string(step.Kind)}, step.Fields...)
		e.log.Infow(step.Description, kv...)
		img = step.Apply(img)
	}

	e.log.Infow("saving image", "path", f.Path, "output", f.Output)
	if err := e.codec.Save(img, f.Output); err != nil {
		return fatal(fmt.Sprintf("failed to save %s to %s", f.Path, f.Output), err)
	}

	if e.mirror != nil {
		obj, err := e.mirror.Upload(ctx, f.Output)
		if err != nil {
			return fatal(fmt.Sprintf("failed to mirror %s", f.Output), err)
		}
		e.log.Infow("mirrored output", "output", f.Output, "object", obj)
	}
	return completed()
}
