package critical_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logpipe/pkg/critical"
	"logpipe/pkg/record"
	"logpipe/pkg/sinks"
)

// TestCriticalWriterSplitsBySeverity checks records below the configured
// threshold go to the normal path only, and at-or-above ones go to the main
// sink synchronously.
func TestCriticalWriterSplitsBySeverity(t *testing.T) {
	normal := sinks.NewMemory()
	main := sinks.NewMemory()
	cfg := critical.Config{CriticalThreshold: record.Critical}
	w, err := critical.New(normal, main, cfg)
	require.NoError(t, err)

	require.NoError(t, w.Write(record.New(record.Info, "routine", time.Now())))
	require.NoError(t, w.Write(record.New(record.Critical, "meltdown", time.Now())))

	assert.Len(t, normal.Records(), 1)
	assert.Equal(t, "routine", normal.Records()[0].Message)
	assert.Len(t, main.Records(), 1)
	assert.Equal(t, "meltdown", main.Records()[0].Message)
}

// TestCriticalWriterDoesNotReplayConfirmedFrame covers: a critical record
// is written with the write-ahead log enabled, the main sink is replaced to
// simulate the process restarting with a fresh (unwritten) sink, and
// Recover() replays nothing, because the successful write already advanced
// the watermark past the frame.
func TestCriticalWriterDoesNotReplayConfirmedFrame(t *testing.T) {
	dir := t.TempDir()
	walPath := filepath.Join(dir, "critical.wal")

	normal := sinks.NewMemory()
	main := sinks.NewMemory()
	cfg := critical.Config{
		CriticalThreshold: record.Critical,
		WriteAheadLog:     true,
		WALPath:           walPath,
		SyncOnCritical:    true,
	}
	w, err := critical.New(normal, main, cfg)
	require.NoError(t, err)

	r := record.New(record.Critical, "disk failure", time.Now())
	r.Fields = record.Fields{record.String("device", "/dev/sda1")}
	require.NoError(t, w.Write(r))
	require.Len(t, main.Records(), 1, "the write already reached the main sink synchronously")
	require.NoError(t, w.Close())

	// Simulate a restart: reopen the same WAL path against a fresh critical
	// writer and main sink standing in for the post-crash process.
	freshMain := sinks.NewMemory()
	w2, err := critical.New(normal, freshMain, cfg)
	require.NoError(t, err)
	defer w2.Close()

	n, err := w2.Recover()
	require.NoError(t, err)
	assert.Equal(t, 0, n, "Advance() already moved the watermark past the one durable record")
	assert.Empty(t, freshMain.Records())
}

// TestCriticalWriterRecoversUnconfirmedFrame covers the actual crash case:
// a frame appended to the WAL but never confirmed via Advance (because the
// process died between Append and Advance) is replayed by Recover into the
// main sink exactly once.
func TestCriticalWriterRecoversUnconfirmedFrame(t *testing.T) {
	dir := t.TempDir()
	walPath := filepath.Join(dir, "critical.wal")

	r := record.New(record.Critical, "power loss", time.Now())
	r.Fields = record.Fields{record.String("node", "db-3")}
	frame, err := critical.EncodeFrame(r)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(walPath, frame, 0o644))

	normal := sinks.NewMemory()
	main := sinks.NewMemory()
	cfg := critical.Config{
		CriticalThreshold: record.Critical,
		WriteAheadLog:     true,
		WALPath:           walPath,
	}
	w, err := critical.New(normal, main, cfg)
	require.NoError(t, err)
	defer w.Close()

	n, err := w.Recover()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, main.Records(), 1)
	assert.Equal(t, "power loss", main.Records()[0].Message)
	assert.Equal(t, r.Fields, main.Records()[0].Fields)

	// A second Recover call after Advance must be a no-op: the watermark
	// now covers the whole file.
	n2, err := w.Recover()
	require.NoError(t, err)
	assert.Equal(t, 0, n2)
}
