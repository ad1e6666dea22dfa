// file: internal/calibre/doctor_test.go
// version: 1.0.0
// guid: 797228c2-f0fc-4d83-8f35-8617cdeaccd4

package calibre

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestDoctor_PartialInstall(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("stub executables need a POSIX exec bit")
	}

	binDir := t.TempDir()
	stub := filepath.Join(binDir, BinCalibre)
	if err := os.WriteFile(stub, []byte("#!/bin/sh\nexit 0\n"), 0755); err != nil {
		t.Fatalf("failed to write stub: %v", err)
	}

	fake := NewFakeRunner(FakeResponse{Result: Result{Stdout: "calibre (calibre 7.21.0)"}})
	tools := NewTools(Options{Runner: fake, BinDir: binDir})

	report := tools.Doctor()
	if report.AllFound {
		t.Error("expected AllFound=false with only calibre present")
	}
	if len(report.Binaries) != len(Binaries()) {
		t.Fatalf("expected %d binary entries, got %d", len(Binaries()), len(report.Binaries))
	}

	for _, status := range report.Binaries {
		if status.Binary == BinCalibre {
			if !status.Found || status.Path != stub {
				t.Errorf("calibre should resolve to the stub: %#v", status)
			}
		} else if status.Found {
			t.Errorf("%s should not be found in an empty BinDir", status.Binary)
		}
	}

	// The main binary resolved, so the version probe runs.
	if report.CalibreVersion != "7.21.0" {
		t.Errorf("expected version 7.21.0, got %q", report.CalibreVersion)
	}
}

func TestDoctor_NothingInstalled(t *testing.T) {
	fake := NewFakeRunner()
	tools := NewTools(Options{Runner: fake, BinDir: t.TempDir()})

	report := tools.Doctor()
	if report.AllFound {
		t.Error("expected AllFound=false")
	}
	if report.CalibreVersion != "" {
		t.Errorf("no version probe should run, got %q", report.CalibreVersion)
	}
	if len(fake.Calls()) != 0 {
		t.Error("version probe must be skipped when calibre is missing")
	}
}
