package signals

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingFlusher struct {
	called bool
	err    error
}

func (f *recordingFlusher) FlushCritical() error {
	f.called = true
	return f.err
}

type panickingFlusher struct{}

func (panickingFlusher) FlushCritical() error {
	panic("flush exploded")
}

func TestRegistryRegisterUnregister(t *testing.T) {
	r := NewRegistry()
	f := &recordingFlusher{}
	r.Register("main", f)

	snap := r.snapshot()
	assert.Len(t, snap, 1)
	assert.Same(t, f, snap["main"])

	r.Unregister("main")
	assert.Empty(t, r.snapshot())
}

// TestEmergencyFlushCallsEveryRegisteredFlusher exercises the best-effort
// crash path in isolation, without installing a real OS signal handler:
// every registered flusher is invoked, a failing flusher does not stop
// others from being called, and a panicking flusher is recovered rather
// than taking the handler goroutine down with it.
func TestEmergencyFlushCallsEveryRegisteredFlusher(t *testing.T) {
	r := NewRegistry()
	ok := &recordingFlusher{}
	failing := &recordingFlusher{err: errors.New("disk full")}
	r.Register("ok", ok)
	r.Register("failing", failing)
	r.Register("panicking", panickingFlusher{})

	a := NewAdapter(r, nil)
	assert.NotPanics(t, func() { a.emergencyFlush() })

	assert.True(t, ok.called)
	assert.True(t, failing.called)
}
