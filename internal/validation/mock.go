package validation

import (
	"context"
	"sync"
)

// MockValidator is a test implementation of Validator.
type MockValidator struct {
	ValidateFunc func(ctx context.Context, addr Address) Outcome

	mu    sync.Mutex
	calls int
}

// Validate delegates to the configured function and counts the call.
// Without a configured function it reports a generic failure.
func (m *MockValidator) Validate(ctx context.Context, addr Address) Outcome {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.ValidateFunc != nil {
		return m.ValidateFunc(ctx, addr)
	}
	return Failed("mock: no validate func configured")
}

// Calls returns how many times Validate was invoked.
func (m *MockValidator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockRecorder is a test implementation of Recorder that keeps the last
// outcome written per street address.
type MockRecorder struct {
	RecordFunc func(ctx context.Context, addr Address, outcome Outcome) error

	mu      sync.Mutex
	Records map[string]Outcome
}

// Record stores the outcome under the street address key, then delegates
// to the configured function if any.
func (m *MockRecorder) Record(ctx context.Context, addr Address, outcome Outcome) error {
	m.mu.Lock()
	if m.Records == nil {
		m.Records = make(map[string]Outcome)
	}
	m.Records[addr.StreetAddress] = outcome
	m.mu.Unlock()

	if m.RecordFunc != nil {
		return m.RecordFunc(ctx, addr, outcome)
	}
	return nil
}

// Last returns the most recent outcome written for a street address.
func (m *MockRecorder) Last(street string) (Outcome, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out, ok := m.Records[street]
	return out, ok
}
