package decorator_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logpipe/pkg/decorator"
	"logpipe/pkg/record"
	"logpipe/pkg/sinks"
)

func TestBufferedDrainsAtMaxEntries(t *testing.T) {
	mem := sinks.NewMemory()
	buf, err := decorator.NewBuffered(mem, decorator.BufferedConfig{MaxEntries: 3}, nil)
	require.NoError(t, err)

	require.NoError(t, buf.Write(record.New(record.Info, "a", time.Now())))
	require.NoError(t, buf.Write(record.New(record.Info, "b", time.Now())))
	assert.Empty(t, mem.Records(), "buffer must not drain before MaxEntries is reached")

	require.NoError(t, buf.Write(record.New(record.Info, "c", time.Now())))
	require.Len(t, mem.Records(), 3)
}

func TestBufferedDrainsAtFlushInterval(t *testing.T) {
	mem := sinks.NewMemory()
	buf, err := decorator.NewBuffered(mem, decorator.BufferedConfig{
		MaxEntries:    1000,
		FlushInterval: 20 * time.Millisecond,
	}, nil)
	require.NoError(t, err)

	require.NoError(t, buf.Write(record.New(record.Info, "a", time.Now())))
	assert.Empty(t, mem.Records())

	time.Sleep(30 * time.Millisecond)
	require.NoError(t, buf.Write(record.New(record.Info, "b", time.Now())))
	require.Len(t, mem.Records(), 2)
}

func TestBufferedFlushDrainsUnconditionally(t *testing.T) {
	mem := sinks.NewMemory()
	buf, err := decorator.NewBuffered(mem, decorator.BufferedConfig{MaxEntries: 1000}, nil)
	require.NoError(t, err)

	require.NoError(t, buf.Write(record.New(record.Info, "a", time.Now())))
	require.NoError(t, buf.Write(record.New(record.Info, "b", time.Now())))
	assert.Empty(t, mem.Records())

	require.NoError(t, buf.Flush())
	require.Len(t, mem.Records(), 2)
}
