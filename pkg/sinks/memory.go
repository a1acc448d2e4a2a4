package sinks

import (
	"sync"

	"logpipe/pkg/errors"
	"logpipe/pkg/record"
	"logpipe/pkg/writer"
)

// Memory is an in-process sink that appends every accepted record to a
// slice, used throughout the repository's tests to observe dispatch
// behavior without touching a real file.
type Memory struct {
	mu      sync.Mutex
	records []record.Record
	failing bool
}

// NewMemory constructs an empty memory sink.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Write(r record.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return errors.IoError("memory", "write", "sink marked failing")
	}
	m.records = append(m.records, r)
	return nil
}

func (m *Memory) Flush() error { return nil }

func (m *Memory) Healthy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.failing
}

func (m *Memory) Name() string { return "memory" }

// SetFailing toggles whether Write returns an error, for exercising the
// async decorator's failure/unhealthy-after-N-failures path in tests.
func (m *Memory) SetFailing(failing bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failing = failing
}

// Records returns a snapshot of accepted records in delivery order.
func (m *Memory) Records() []record.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]record.Record, len(m.records))
	copy(out, m.records)
	return out
}

var _ writer.Writer = (*Memory)(nil)
