// file: internal/calibre/debug.go
// version: 1.0.0
// guid: b45bac5d-963d-49a9-850d-03d3bb7b15ed

package calibre

import "log"

// TestBuild runs `calibre-debug --test-build`, Calibre's own build and startup
// self-test. Only the exit code decides success; the raw stdout (which usually
// ends with an "All tests passed" marker) is returned for the caller to
// inspect either way.
func (t *Tools) TestBuild() (string, error) {
	res, err := t.runner.Run([]string{BinCalibreDebug, "--test-build"}, t.timeouts.Debug)
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", &ToolError{
			Message:  "calibre-debug --test-build failed.",
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
			ExitCode: res.ExitCode,
		}
	}

	log.Printf("[INFO] calibre-debug --test-build completed.")
	return res.Stdout, nil
}
