package decorator_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logpipe/pkg/decorator"
	"logpipe/pkg/record"
	"logpipe/pkg/sinks"
	"logpipe/pkg/writer"
)

// TestAsyncPreservesOrderUnderBlock writes 1000 records from a single
// producer to an async decorator in block-on-full mode and checks they
// arrive at the inner sink in the exact order written.
func TestAsyncPreservesOrderUnderBlock(t *testing.T) {
	mem := sinks.NewMemory()
	a, err := decorator.NewAsync(mem, decorator.AsyncConfig{
		QueueCapacity:  16,
		OverflowPolicy: decorator.PolicyBlock,
	}, nil, nil)
	require.NoError(t, err)
	require.NoError(t, a.Start())

	for i := 0; i < 1000; i++ {
		require.NoError(t, a.Write(record.New(record.Info, fmt.Sprintf("msg-%d", i), time.Now())))
	}
	require.NoError(t, a.Flush())
	require.NoError(t, a.Stop())

	recs := mem.Records()
	require.Len(t, recs, 1000)
	for i, r := range recs {
		assert.Equal(t, fmt.Sprintf("msg-%d", i), r.Message)
	}
}

// TestAsyncDropOldestEvictsFront covers scenario 2: with the queue full and
// drop-oldest selected, writing one more record evicts the oldest queued
// entry rather than rejecting the new one, and the dropped counter advances.
func TestAsyncDropOldestEvictsFront(t *testing.T) {
	mem := sinks.NewMemory()
	blockCh := make(chan struct{})
	mem.SetFailing(false)

	a, err := decorator.NewAsync(&blockingWriter{inner: mem, release: blockCh}, decorator.AsyncConfig{
		QueueCapacity:  3,
		OverflowPolicy: decorator.PolicyDropOldest,
	}, nil, nil)
	require.NoError(t, err)
	require.NoError(t, a.Start())

	// The worker immediately pops entry 0 and blocks on blockingWriter until
	// released, so entries 1..3 accumulate in the queue (capacity 3); entry
	// 4 forces out entry 1 under drop-oldest.
	require.NoError(t, a.Write(record.New(record.Info, "e0", time.Now())))
	time.Sleep(20 * time.Millisecond) // let the worker claim e0 and block

	require.NoError(t, a.Write(record.New(record.Info, "e1", time.Now())))
	require.NoError(t, a.Write(record.New(record.Info, "e2", time.Now())))
	require.NoError(t, a.Write(record.New(record.Info, "e3", time.Now())))
	require.NoError(t, a.Write(record.New(record.Info, "e4", time.Now())))

	assert.Equal(t, int64(1), a.Dropped())

	close(blockCh)
	require.NoError(t, a.Flush())
	require.NoError(t, a.Stop())

	var messages []string
	for _, r := range mem.Records() {
		messages = append(messages, r.Message)
	}
	assert.Equal(t, []string{"e0", "e2", "e3", "e4"}, messages)
}

// blockingWriter wraps a writer.Writer and blocks the first Write call until
// release is closed, giving the test a deterministic window in which to fill
// the async queue behind it.
type blockingWriter struct {
	inner   writer.Writer
	release chan struct{}
	first   bool
}

func (w *blockingWriter) Write(r record.Record) error {
	if !w.first {
		w.first = true
		<-w.release
	}
	return w.inner.Write(r)
}
func (w *blockingWriter) Flush() error   { return w.inner.Flush() }
func (w *blockingWriter) Healthy() bool  { return w.inner.Healthy() }
func (w *blockingWriter) Name() string   { return w.inner.Name() }
