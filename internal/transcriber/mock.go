package transcriber

import (
	"context"
	"os"
	"sync"
)

// Mock is a test engine that writes a canned transcript JSON instead of
// invoking a real binary. It records every request it receives.
type Mock struct {
	// Output is the JSON written to each request's OutputPath.
	Output string

	// Err, when set, is returned without writing anything.
	Err error

	mu       sync.Mutex
	requests []Request
}

func (m *Mock) Transcribe(_ context.Context, req Request) error {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	return os.WriteFile(req.OutputPath, []byte(m.Output), 0o644)
}

// Requests returns a copy of all requests seen so far.
func (m *Mock) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Calls returns how many times Transcribe was invoked.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}
