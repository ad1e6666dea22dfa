// file: internal/calibre/version_test.go
// version: 1.0.0
// guid: e7b951dd-64d7-4ba4-861c-4b831e59b37d

package calibre

import (
	"errors"
	"testing"
)

func TestParseVersionOutput(t *testing.T) {
	tests := []struct {
		name   string
		stdout string
		want   string
	}{
		{
			name:   "parenthesized shape",
			stdout: "calibre (calibre 7.21.0)",
			want:   "7.21.0",
		},
		{
			name:   "parenthesized shape with banner",
			stdout: "calibre (calibre 6.27.0)\nCreated by: Kovid Goyal <kovid@kovidgoyal.net>",
			want:   "6.27.0",
		},
		{
			name:   "bare prefix shape",
			stdout: "calibre 7.21.0",
			want:   "7.21.0",
		},
		{
			name:   "unrecognized output falls back to raw",
			stdout: "some unexpected banner",
			want:   "some unexpected banner",
		},
		{
			name:   "parenthesis without inner calibre falls back to raw",
			stdout: "calibre (unknown)",
			want:   "calibre (unknown)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseVersionOutput(tt.stdout)
			if got != tt.want {
				t.Errorf("parseVersionOutput(%q) = %q, want %q", tt.stdout, got, tt.want)
			}
		})
	}
}

func TestVersion(t *testing.T) {
	fake := NewFakeRunner(FakeResponse{Result: Result{Stdout: "calibre (calibre 7.21.0)"}})
	tools := NewTools(Options{Runner: fake})

	info, err := tools.Version()
	if err != nil {
		t.Fatalf("Version failed: %v", err)
	}
	if info.Version != "7.21.0" {
		t.Errorf("expected version 7.21.0, got %q", info.Version)
	}
	if info.Raw != "calibre (calibre 7.21.0)" {
		t.Errorf("raw output not preserved: %q", info.Raw)
	}

	call := fake.LastCall()
	if call == nil {
		t.Fatal("no command was run")
	}
	if call.Argv[0] != BinCalibre || call.Argv[1] != "--version" {
		t.Errorf("unexpected argv: %v", call.Argv)
	}
}

func TestVersion_NonZeroExit(t *testing.T) {
	fake := NewFakeRunner(FakeResponse{Result: Result{Stderr: "broken install", ExitCode: 1}})
	tools := NewTools(Options{Runner: fake})

	_, err := tools.Version()
	var toolErr *ToolError
	if !errors.As(err, &toolErr) {
		t.Fatalf("expected ToolError, got %v", err)
	}
	if toolErr.ExitCode != 1 {
		t.Errorf("expected exit code 1, got %d", toolErr.ExitCode)
	}
	if toolErr.Stderr != "broken install" {
		t.Errorf("stderr not carried: %q", toolErr.Stderr)
	}
}
