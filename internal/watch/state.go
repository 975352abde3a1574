package watch

import (
	"fmt"
	"os"
	"time"
)

// State tracks the modification time a file was last processed at.
// The zero value is Unseen.
type State struct {
	seen         bool
	lastModified time.Time
}

// ShouldProcess reports whether a file with modification time mod needs
// processing: always when unseen, otherwise on any difference, including
// timestamps that moved backwards.
func (s *State) ShouldProcess(mod time.Time) bool {
	if !s.seen {
		return true
	}
	return !mod.Equal(s.lastModified)
}

// RecordProcessed marks the file as processed at modification time mod.
func (s *State) RecordProcessed(mod time.Time) {
	s.seen = true
	s.lastModified = mod
}

// LastModified returns the recorded modification time and whether one exists.
func (s *State) LastModified() (time.Time, bool) {
	return s.lastModified, s.seen
}

// Stat returns the modification time of path.
func Stat(path string) (time.Time, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return time.Time{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if !fi.Mode().IsRegular() {
		return time.Time{}, fmt.Errorf("stat %s: not a regular file", path)
	}
	return fi.ModTime(), nil
}
