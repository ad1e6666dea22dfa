// file: internal/calibre/check.go
// version: 1.0.0
// guid: 6422a2ff-12d6-44f3-84aa-9aad608d539a

package calibre

import (
	"encoding/json"
	"log"
	"os"
)

// CheckBook runs `ebook-edit --check-book` on an EPUB or AZW3 and returns the
// text report. The tool exits 0 whether or not it found problems; a non-zero
// exit means the check itself could not run.
func (t *Tools) CheckBook(path string) (string, error) {
	res, err := t.runCheck(path, false)
	if err != nil {
		return "", err
	}
	return res.Stdout, nil
}

// CheckBookJSON runs the same check with `--output-format=json` and decodes
// the report: a JSON object mapping the book path to its list of problem
// entries (empty list when the book is clean).
func (t *Tools) CheckBookJSON(path string) (map[string]any, error) {
	res, err := t.runCheck(path, true)
	if err != nil {
		return nil, err
	}

	if res.Stdout == "" {
		// The tool normally prints at least {"<path>": []}.
		log.Printf("[WARN] ebook-edit --check-book with JSON output returned empty stdout for %s.", path)
		return map[string]any{}, nil
	}

	var report map[string]any
	if err := json.Unmarshal([]byte(res.Stdout), &report); err != nil {
		return nil, &ToolError{
			Message:  "Failed to parse JSON output from ebook-edit --check-book for " + path + ": " + err.Error(),
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
			ExitCode: res.ExitCode,
		}
	}
	return report, nil
}

func (t *Tools) runCheck(path string, asJSON bool) (Result, error) {
	if _, err := os.Stat(path); err != nil {
		return Result{}, inputErrorf("e-book file not found: %s", path)
	}

	argv := []string{BinEbookEdit, "--check-book"}
	if asJSON {
		argv = append(argv, "--output-format=json")
	}
	argv = append(argv, path)

	res, err := t.runner.Run(argv, t.timeouts.Check)
	if err != nil {
		return Result{}, err
	}
	if res.ExitCode != 0 {
		return Result{}, &ToolError{
			Message:  "ebook-edit --check-book command failed for " + path + ".",
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
			ExitCode: res.ExitCode,
		}
	}
	return res, nil
}
