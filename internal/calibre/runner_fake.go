// file: internal/calibre/runner_fake.go
// version: 1.0.0
// guid: 86bf6e6b-2776-488e-ada2-3cfc2ce53d0b

package calibre

import (
	"sync"
	"time"
)

// FakeCall records one invocation handed to a FakeRunner.
type FakeCall struct {
	Argv    []string
	Timeout time.Duration
}

// FakeResponse is one scripted answer a FakeRunner hands back.
type FakeResponse struct {
	Result Result
	Err    error
}

// FakeRunner replays scripted responses in order, recording every call. Tests
// use it to exercise adapters without real Calibre binaries. When the script
// runs out it keeps returning the last response.
type FakeRunner struct {
	mu        sync.Mutex
	responses []FakeResponse
	calls     []FakeCall
}

// NewFakeRunner returns a FakeRunner that will reply with the given responses
// in order.
func NewFakeRunner(responses ...FakeResponse) *FakeRunner {
	return &FakeRunner{responses: responses}
}

// Enqueue appends another scripted response.
func (f *FakeRunner) Enqueue(res Result, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, FakeResponse{Result: res, Err: err})
}

// Run records the call and replays the next scripted response.
func (f *FakeRunner) Run(argv []string, timeout time.Duration) (Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	call := FakeCall{Argv: append([]string(nil), argv...), Timeout: timeout}
	f.calls = append(f.calls, call)

	if len(f.responses) == 0 {
		return Result{}, nil
	}
	idx := len(f.calls) - 1
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	resp := f.responses[idx]
	return resp.Result, resp.Err
}

// Calls returns a copy of every recorded invocation.
func (f *FakeRunner) Calls() []FakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]FakeCall(nil), f.calls...)
}

// LastCall returns the most recent invocation, or nil when none happened.
func (f *FakeRunner) LastCall() *FakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return nil
	}
	call := f.calls[len(f.calls)-1]
	return &call
}
