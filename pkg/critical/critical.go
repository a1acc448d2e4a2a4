package critical

import (
	"time"

	"logpipe/pkg/errors"
	"logpipe/pkg/record"
	"logpipe/pkg/writer"
)

// Config configures the critical writer (C12).
type Config struct {
	CriticalThreshold     record.Level
	ForceFlushOnCritical  bool
	ForceFlushOnError     bool
	EnableSignalHandlers  bool
	WriteAheadLog         bool
	WALPath               string
	SyncOnCritical        bool
	// CriticalWriteTimeoutMs bounds the entire critical write path: WAL
	// append+fsync, the synchronous main-sink write, and the
	// sync-on-critical fsync combined, not just one sub-step. Zero
	// disables the bound.
	CriticalWriteTimeoutMs uint32
}

// DefaultConfig returns the documented defaults for Config.
func DefaultConfig() Config {
	return Config{
		CriticalThreshold:      record.Critical,
		ForceFlushOnCritical:   true,
		ForceFlushOnError:      false,
		EnableSignalHandlers:   true,
		WriteAheadLog:          false,
		SyncOnCritical:         true,
		CriticalWriteTimeoutMs: 5000,
	}
}

// Writer is the hybrid severity-split router of C12: records below
// CriticalThreshold delegate to the normal (typically async) path;
// records at or above it take the synchronous WAL+fsync path.
//
// Unlike the single-inner decorators in pkg/decorator, Writer owns two
// downstream writers (normal path and main sink) and so implements
// writer.Writer directly rather than embedding the decorator base.
type Writer struct {
	cfg      Config
	normal   writer.Writer
	mainSink writer.Writer
	wal      *WAL
}

// New constructs a critical writer. If cfg.WriteAheadLog is true,
// cfg.WALPath must be set and the WAL file is opened eagerly.
func New(normal, mainSink writer.Writer, cfg Config) (*Writer, error) {
	if normal == nil || mainSink == nil {
		return nil, errors.InvalidArgument("critical", "new", "normal and main_sink writers must not be nil")
	}
	w := &Writer{cfg: cfg, normal: normal, mainSink: mainSink}
	if cfg.WriteAheadLog {
		if cfg.WALPath == "" {
			return nil, errors.InvalidArgument("critical", "new", "wal_path is required when write_ahead_log is enabled")
		}
		wal, err := OpenWAL(cfg.WALPath)
		if err != nil {
			return nil, err
		}
		w.wal = wal
	}
	return w, nil
}

// Recover replays any WAL frames beyond the persisted watermark into the
// main sink, then advances the watermark once all of them have been
// written; if one write fails the watermark is left where it was. Call
// this once at startup before Start()ing the logger.
func (w *Writer) Recover() (int, error) {
	if w.wal == nil {
		return 0, nil
	}
	pending, err := w.wal.Pending()
	if err != nil {
		return 0, err
	}
	for _, r := range pending {
		if err := w.mainSink.Write(r); err != nil {
			return 0, errors.IoError("critical", "recover", err.Error()).Wrap(err)
		}
	}
	if len(pending) > 0 {
		if err := w.wal.Advance(); err != nil {
			return 0, err
		}
	}
	return len(pending), nil
}

// Write routes r to the normal path or the critical path depending on
// CriticalThreshold.
func (w *Writer) Write(r record.Record) error {
	if r.Level < w.cfg.CriticalThreshold {
		return w.normal.Write(r)
	}

	if w.cfg.CriticalWriteTimeoutMs == 0 {
		return w.writeCriticalPath(r)
	}

	done := make(chan error, 1)
	go func() { done <- w.writeCriticalPath(r) }()
	select {
	case err := <-done:
		return err
	case <-time.After(time.Duration(w.cfg.CriticalWriteTimeoutMs) * time.Millisecond):
		return errors.IoError("critical", "write", "critical write path exceeded critical_write_timeout_ms")
	}
}

func (w *Writer) writeCriticalPath(r record.Record) error {
	if w.wal != nil {
		if err := w.wal.Append(r); err != nil {
			return err
		}
	}
	if err := w.mainSink.Write(r); err != nil {
		return err
	}
	if w.cfg.SyncOnCritical {
		if err := w.mainSink.Flush(); err != nil {
			return err
		}
	}
	if w.wal != nil {
		if err := w.wal.Advance(); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes both the normal path and the main sink, returning the
// first error encountered.
func (w *Writer) Flush() error {
	var firstErr error
	if err := w.normal.Flush(); err != nil {
		firstErr = err
	}
	if err := w.mainSink.Flush(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Healthy requires both paths to be healthy.
func (w *Writer) Healthy() bool {
	return w.normal.Healthy() && w.mainSink.Healthy()
}

func (w *Writer) Name() string {
	return "critical_" + w.mainSink.Name()
}

// FlushCritical is the async-signal-adjacent best-effort hook the signal
// adapter (pkg/signals) invokes on abnormal termination: it attempts the
// main sink's flush only, skipping the normal path (which may be mid-drain
// on a worker goroutine that the handler cannot safely join).
func (w *Writer) FlushCritical() error {
	return w.mainSink.Flush()
}

// Close releases the WAL file handle, if one is open.
func (w *Writer) Close() error {
	if w.wal == nil {
		return nil
	}
	return w.wal.Close()
}

var _ writer.Writer = (*Writer)(nil)
