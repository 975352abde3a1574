package main

import (
	"bytes"
	"flag"
	"strings"
	"testing"

	"github.com/Roelanb/imagewatcher/internal/config"
	"github.com/Roelanb/imagewatcher/internal/runner"
)

func TestResolveMode_Flags(t *testing.T) {
	m, err := resolveMode(true, false, "compile", nil, nil)
	if err != nil || m != runner.ModeWatch {
		t.Fatalf("got %v, %v", m, err)
	}
	m, err = resolveMode(false, true, "", nil, nil)
	if err != nil || m != runner.ModeCompile {
		t.Fatalf("got %v, %v", m, err)
	}
	if _, err := resolveMode(true, true, "", nil, nil); err == nil {
		t.Fatal("expected error when both flags are set")
	}
}

func TestResolveMode_Env(t *testing.T) {
	m, err := resolveMode(false, false, " --Compile ", nil, nil)
	if err != nil || m != runner.ModeCompile {
		t.Fatalf("got %v, %v", m, err)
	}
	if _, err := resolveMode(false, false, "sometimes", nil, nil); err == nil {
		t.Fatal("expected error for bad env value")
	}
}

func TestResolveMode_Prompt(t *testing.T) {
	var out bytes.Buffer
	m, err := resolveMode(false, false, "", strings.NewReader("maybe\nc\n"), &out)
	if err != nil || m != runner.ModeCompile {
		t.Fatalf("got %v, %v", m, err)
	}
	if strings.Count(out.String(), modePrompt) != 2 {
		t.Fatalf("expected the prompt to repeat after bad input, got %q", out.String())
	}
	if !strings.Contains(out.String(), "Input the word compile or the word watch.") {
		t.Fatalf("missing hint in %q", out.String())
	}

	for _, in := range []string{"\n", ""} {
		out.Reset()
		m, _ := resolveMode(false, false, "", strings.NewReader(in), &out)
		if m != runner.ModeWatch {
			t.Fatalf("input %q: got %v, want watch", in, m)
		}
	}
}

func TestRegisterFlags_ShortForms(t *testing.T) {
	cases := []struct {
		args           []string
		watch, compile bool
	}{
		{[]string{"-w"}, true, false},
		{[]string{"-watch"}, true, false},
		{[]string{"--watch"}, true, false},
		{[]string{"-c"}, false, true},
		{[]string{"--compile"}, false, true},
		{nil, false, false},
	}
	for _, tc := range cases {
		fs := flag.NewFlagSet("imagewatcher", flag.ContinueOnError)
		o := registerFlags(fs)
		if err := fs.Parse(tc.args); err != nil {
			t.Fatalf("%v: %v", tc.args, err)
		}
		if o.watch != tc.watch || o.compile != tc.compile {
			t.Fatalf("%v: watch=%v compile=%v", tc.args, o.watch, o.compile)
		}
		if o.configPath != config.DefaultPath {
			t.Fatalf("%v: config = %q", tc.args, o.configPath)
		}
	}

	fs := flag.NewFlagSet("imagewatcher", flag.ContinueOnError)
	o := registerFlags(fs)
	if err := fs.Parse([]string{"-w", "-c"}); err != nil {
		t.Fatal(err)
	}
	if _, err := resolveMode(o.watch, o.compile, "", nil, nil); err == nil {
		t.Fatal("expected error when both short flags are set")
	}
}
