package cli

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestParseArgs_URL(t *testing.T) {
	t.Parallel()
	got, err := ParseArgs([]string{"-u", "example.com/page", "--json"}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if got.URL != "example.com/page" || !got.JSON || got.SearchTerms != nil {
		t.Errorf("unexpected args: %+v", got)
	}
	if got.CacheBackend != "fs" || got.Backend != "rawsocket" {
		t.Errorf("defaults not applied: %+v", got)
	}
}

func TestParseArgs_LongFlags(t *testing.T) {
	t.Parallel()
	got, err := ParseArgs([]string{
		"--url=http://x.test", "--no-cache", "--cache-dir", "/tmp/c",
		"--cache-backend", "sqlite", "--backend", "nethttp", "--log-level", "info", "-v",
	}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	want := &CLIArgs{
		URL:          "http://x.test",
		NoCache:      true,
		CacheDir:     "/tmp/c",
		CacheBackend: "sqlite",
		Backend:      "nethttp",
		LogLevel:     "info",
		Verbose:      true,
	}
	got.RawArgs = nil
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestParseArgs_SearchJoinsTrailingWords(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"single", []string{"-s", "golang"}, []string{"golang"}},
		{"several", []string{"-s", "golang", "raw", "sockets"}, []string{"golang", "raw", "sockets"}},
		{"long flag", []string{"--search", "a,b", "c"}, []string{"a,b", "c"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseArgs(tt.args, &bytes.Buffer{})
			if err != nil {
				t.Fatalf("ParseArgs: %v", err)
			}
			if !reflect.DeepEqual(got.SearchTerms, tt.want) {
				t.Errorf("SearchTerms = %q, want %q", got.SearchTerms, tt.want)
			}
		})
	}
}

func TestParseArgs_NoArgsPrintsUsage(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	got, err := ParseArgs(nil, &out)
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if !got.ShowHelp {
		t.Error("expected ShowHelp")
	}
	for _, want := range []string{"go2web", "--url", "--search", "--json"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("usage missing %q:\n%s", want, out.String())
		}
	}
	if strings.Contains(out.String(), "--backend") {
		t.Error("hidden --backend flag should not be listed")
	}
}

func TestParseArgs_HelpFlag(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	got, err := ParseArgs([]string{"-h"}, &out)
	if err != nil || !got.ShowHelp {
		t.Fatalf("got %+v, %v", got, err)
	}
	if out.Len() == 0 {
		t.Error("expected help output")
	}
}

func TestParseArgs_UsageErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"--bogus"}},
		{"missing url value", []string{"-u"}},
		{"url and search", []string{"-u", "a.test", "-s", "b"}},
		{"stray positional", []string{"hello"}},
		{"url with stray word", []string{"-u", "a.test", "extra"}},
		{"only modifiers", []string{"--json"}},
		{"bad cache backend", []string{"-u", "a.test", "--cache-backend", "redis"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseArgs(tt.args, &bytes.Buffer{})
			if !errors.Is(err, ErrUsage) {
				t.Fatalf("expected ErrUsage, got %v", err)
			}
		})
	}
}

func TestPrintUsage(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	PrintUsage(&out)
	if !strings.Contains(out.String(), "Usage:") {
		t.Errorf("unexpected usage text:\n%s", out.String())
	}
}
