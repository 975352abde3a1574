package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Roelanb/imagewatcher/internal/runner"
)

const modePrompt = "Do you want to run in compile or watch mode?: "

// resolveMode picks the mode from the flags, then env, then by asking on in.
func resolveMode(watch, compile bool, env string, in io.Reader, out io.Writer) (runner.Mode, error) {
	switch {
	case watch && compile:
		return 0, errors.New("-watch and -compile cannot be used together")
	case watch:
		return runner.ModeWatch, nil
	case compile:
		return runner.ModeCompile, nil
	}
	if env = strings.TrimSpace(env); env != "" {
		m, err := runner.ParseMode(env)
		if err != nil {
			return 0, fmt.Errorf("IMAGE_WATCHER_MODE: %w", err)
		}
		return m, nil
	}
	return promptMode(in, out), nil
}

// promptMode asks until it gets a valid answer. Empty input or EOF selects
// watch mode.
func promptMode(in io.Reader, out io.Writer) runner.Mode {
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, modePrompt)
		if !sc.Scan() {
			fmt.Fprintln(out)
			return runner.ModeWatch
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			return runner.ModeWatch
		}
		m, err := runner.ParseMode(line)
		if err == nil {
			return m
		}
		fmt.Fprintln(out, "Input the word compile or the word watch.")
	}
}
