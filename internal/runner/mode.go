package runner

import (
	"fmt"
	"strings"
)

// Mode selects between a single pass and continuous polling.
type Mode int

const (
	ModeCompile Mode = iota
	ModeWatch
)

func (m Mode) String() string {
	if m == ModeCompile {
		return "compile"
	}
	return "watch"
}

// ParseMode accepts "compile"/"watch" and their short and dashed spellings
// ("c", "-c", "--compile", "W", ...).
func ParseMode(s string) (Mode, error) {
	v := strings.TrimLeft(strings.TrimSpace(s), "-")
	switch v {
	case "c", "C", "compile", "Compile":
		return ModeCompile, nil
	case "w", "W", "watch", "Watch":
		return ModeWatch, nil
	}
	return 0, fmt.Errorf("unknown mode %q: input the word compile or the word watch", s)
}
