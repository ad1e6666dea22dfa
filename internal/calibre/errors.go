// file: internal/calibre/errors.go
// version: 1.0.0
// guid: 25122aad-10f7-4c6e-aa35-5ce0ee5e0323

package calibre

import (
	"fmt"
	"strings"
)

// Sentinel exit codes used when no real child exit code exists.
const (
	ExitCodeTimeout    = -1
	ExitCodeSpawnError = -2
)

// ToolError reports a failed Calibre tool invocation. It keeps the captured
// stdout, stderr and exit code so callers can surface the tool's own
// diagnostics instead of just a synthesized message.
type ToolError struct {
	Message  string
	Stdout   string
	Stderr   string
	ExitCode int
}

func (e *ToolError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (exit code: %d)", e.Message, e.ExitCode)
	if e.Stderr != "" {
		fmt.Fprintf(&b, "\nstderr: %s", e.Stderr)
	}
	if e.Stdout != "" {
		fmt.Fprintf(&b, "\nstdout: %s", e.Stdout)
	}
	return b.String()
}

// Timeout reports whether the invocation was killed for exceeding its timeout.
func (e *ToolError) Timeout() bool {
	return e.ExitCode == ExitCodeTimeout
}

// BinaryNotFoundError indicates that a Calibre executable could not be located
// on the search path. The HTTP layer maps this to 503.
type BinaryNotFoundError struct {
	Binary string
}

func (e *BinaryNotFoundError) Error() string {
	return fmt.Sprintf("%s command not found. Ensure Calibre is installed and in your PATH.", e.Binary)
}

// InputError indicates a caller-supplied input failed a local check before any
// process was spawned. The HTTP layer maps this to 400.
type InputError struct {
	Message string
}

func (e *InputError) Error() string {
	return e.Message
}

func inputErrorf(format string, args ...any) *InputError {
	return &InputError{Message: fmt.Sprintf(format, args...)}
}
