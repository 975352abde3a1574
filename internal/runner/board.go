package runner

import (
	"sync"
	"time"

	"github.com/Roelanb/imagewatcher/internal/jobs"
	"github.com/Roelanb/imagewatcher/internal/pipeline"
)

// FileView is the externally visible status of one watched file.
type FileView struct {
	Path         string    `json:"path"`
	Output       string    `json:"output"`
	Steps        []string  `json:"steps"`
	Status       string    `json:"status"`
	LastModified time.Time `json:"last_modified"`
	LastRun      time.Time `json:"last_run"`
	LastError    string    `json:"last_error,omitempty"`
	Runs         int       `json:"runs"`
}

// Board publishes copies of the runner's progress for readers on other
// goroutines. The runner's own watch state is never shared.
type Board struct {
	mu     sync.RWMutex
	mode   string
	sweeps int
	files  []FileView
}

func NewBoard(files []*pipeline.WatchedFile) *Board {
	b := &Board{files: make([]FileView, len(files))}
	for i, f := range files {
		steps := make([]string, 0, len(f.Chain))
		for _, k := range jobs.Kinds(f.Chain) {
			steps = append(steps, string(k))
		}
		b.files[i] = FileView{Path: f.Path, Output: f.Output, Steps: steps, Status: "pending"}
	}
	return b
}

// FilesSnapshot returns a copy of every file's status, in configuration order.
func (b *Board) FilesSnapshot() any {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]FileView, len(b.files))
	copy(out, b.files)
	return out
}

// Summary returns the mode and number of completed sweeps.
func (b *Board) Summary() (string, int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.mode, b.sweeps
}

func (b *Board) setMode(m Mode) {
	b.mu.Lock()
	b.mode = m.String()
	b.mu.Unlock()
}

func (b *Board) sweepDone() {
	b.mu.Lock()
	b.sweeps++
	b.mu.Unlock()
}

func (b *Board) update(i int, fn func(*FileView)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i >= 0 && i < len(b.files) {
		fn(&b.files[i])
	}
}
