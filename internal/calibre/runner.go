// file: internal/calibre/runner.go
// version: 1.1.0
// guid: ee133c62-1118-4799-a02a-8b9eb2b88b1f

package calibre

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/jdfalk/calibre-api/internal/metrics"
)

// DefaultTimeout applies when a caller passes a non-positive timeout.
const DefaultTimeout = 60 * time.Second

// Result captures one finished tool invocation. Stdout and Stderr are
// whitespace-trimmed. A non-zero ExitCode is not an error at this layer; each
// adapter decides what it means for its tool.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes an argument vector and reports the captured result. Runner
// implementations own their timeout handling: a started command runs to
// completion or to its timeout, it is not cancelled when an HTTP client
// disconnects.
type Runner interface {
	Run(argv []string, timeout time.Duration) (Result, error)
}

// ExecRunner runs commands via os/exec with PATH resolution. BinDir, when set,
// resolves tool names against that directory instead of PATH.
type ExecRunner struct {
	BinDir string
}

// NewExecRunner returns a Runner that spawns real processes.
func NewExecRunner(binDir string) *ExecRunner {
	return &ExecRunner{BinDir: binDir}
}

// Run spawns argv[0] with the remaining elements as arguments and waits for it
// to exit. Error cases:
//   - empty argv: *InputError, nothing is spawned
//   - executable not found: *BinaryNotFoundError
//   - timeout: *ToolError with ExitCodeTimeout
//   - any other spawn failure: *ToolError with ExitCodeSpawnError
//
// A process that runs and exits non-zero returns a normal Result.
func (r *ExecRunner) Run(argv []string, timeout time.Duration) (Result, error) {
	if len(argv) == 0 {
		return Result{}, inputErrorf("command list cannot be empty")
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	tool := filepath.Base(argv[0])
	path, err := r.lookPath(argv[0])
	if err != nil {
		log.Printf("[ERROR] %s command not found. Ensure Calibre is installed and in your PATH.", tool)
		metrics.IncToolInvocation(tool, metrics.OutcomeNotFound)
		return Result{}, &BinaryNotFoundError{Binary: tool}
	}

	log.Printf("[INFO] Running Calibre command: %s", strings.Join(redactArgs(argv), " "))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, path, argv[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	metrics.IncActiveProcesses()
	start := time.Now()
	runErr := cmd.Run()
	metrics.DecActiveProcesses()
	metrics.ObserveToolDuration(tool, time.Since(start))

	if ctx.Err() == context.DeadlineExceeded {
		log.Printf("[ERROR] %s command timed out after %s. Command: %s", tool, timeout, strings.Join(redactArgs(argv), " "))
		metrics.IncToolInvocation(tool, metrics.OutcomeTimeout)
		return Result{}, &ToolError{
			Message:  tool + " command timed out.",
			Stderr:   "Timeout after " + timeout.String(),
			ExitCode: ExitCodeTimeout,
		}
	}

	res := Result{
		Stdout: strings.TrimSpace(stdout.String()),
		Stderr: strings.TrimSpace(stderr.String()),
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			log.Printf("[ERROR] Unexpected error running %s: %v", tool, runErr)
			metrics.IncToolInvocation(tool, metrics.OutcomeError)
			return Result{}, &ToolError{
				Message:  "An unexpected error occurred while running " + tool + ": " + runErr.Error(),
				ExitCode: ExitCodeSpawnError,
			}
		}
		res.ExitCode = exitErr.ExitCode()
	}

	if res.ExitCode != 0 {
		log.Printf("[WARN] %s exited with code %d.\nStderr: %s\nStdout: %s", tool, res.ExitCode, res.Stderr, res.Stdout)
		metrics.IncToolInvocation(tool, metrics.OutcomeNonZero)
	} else {
		metrics.IncToolInvocation(tool, metrics.OutcomeOK)
	}

	return res, nil
}

func (r *ExecRunner) lookPath(name string) (string, error) {
	if r.BinDir != "" {
		return exec.LookPath(filepath.Join(r.BinDir, name))
	}
	return exec.LookPath(name)
}

// redactArgs masks values that follow secret-bearing flags so command logging
// never leaks credentials.
func redactArgs(argv []string) []string {
	out := make([]string, len(argv))
	copy(out, argv)
	for i := 0; i < len(out)-1; i++ {
		if out[i] == "--password" {
			out[i+1] = "********"
		}
	}
	return out
}
