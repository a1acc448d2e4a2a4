// Package logger implements the front-door logger (C14): the level gate,
// context-merge, and dispatch entry point every producer calls, plus the
// Initialized -> Running -> Stopping -> Stopped lifecycle that owns every
// registered writer chain.
//
// Grounded on _examples/mdzesseis-log_capturer_go/internal/dispatcher/dispatcher.go's
// Start/Stop/Handle shape (an orchestrator holding named sinks behind a
// mutex, gating on a running flag before accepting work) and
// _examples/original_source/include/kcenon/logger/core/logger.h's state
// machine, adapted to a four-state lifecycle and explicit level-gate
// contract.
package logger

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"logpipe/pkg/errors"
	"logpipe/pkg/logcontext"
	"logpipe/pkg/record"
	"logpipe/pkg/router"
	"logpipe/pkg/writer"
)

// State is the front-door lifecycle state machine of C14.
type State int32

const (
	StateInitialized State = iota
	StateRunning
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateInitialized:
		return "initialized"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// starter is implemented by chain heads that own a background worker (the
// async decorator); Logger.Start calls Start on every such chain when the
// logger transitions to Running, and AddWriter calls it on a chain added
// while the logger is already Running.
type starter interface {
	Start() error
}

// Config configures the front-door logger.
type Config struct {
	// MinLevel gates every Log call: records below this level never reach
	// the router. record.Off disables logging entirely.
	MinLevel record.Level
	// CaptureSource, when true, attaches the caller's (file, line,
	// function) to every record via runtime.Caller.
	CaptureSource bool
}

// Logger is the C14 front door: level gate, context merge, router dispatch,
// and lifecycle for every writer chain registered with it.
type Logger struct {
	router *router.Router
	log    *logrus.Logger

	minLevel      atomic.Int32
	state         atomic.Int32
	captureSource bool

	global *logcontext.Store

	mu     sync.RWMutex
	chains map[string]writer.Writer
}

// New constructs a logger in the Initialized state. rt may be nil, in
// which case every Log call resolves to no chains and every record is
// accepted and dropped; routers are not attached post-construction, so
// pass a real *router.Router, even an empty one, up front if routing will
// be needed later.
func New(cfg Config, rt *router.Router, log *logrus.Logger) *Logger {
	if log == nil {
		log = logrus.StandardLogger()
	}
	l := &Logger{
		router:        rt,
		log:           log,
		global:        logcontext.NewStore(),
		chains:        make(map[string]writer.Writer),
		captureSource: cfg.CaptureSource,
	}
	l.minLevel.Store(int32(cfg.MinLevel))
	l.state.Store(int32(StateInitialized))
	return l
}

// AddWriter registers a named writer chain. Chains may only be added
// before the logger reaches a terminal Stopped state; the chain itself is
// sealed by its constructor and never reconfigured here. If the logger is
// already Running and the chain implements Start() error (e.g. an async
// decorator), it is started immediately so a chain can be added
// dynamically without a restart.
func (l *Logger) AddWriter(name string, w writer.Writer) error {
	if w == nil {
		return errors.InvalidArgument("logger", "add_writer", "writer must not be nil")
	}
	l.mu.Lock()
	if State(l.state.Load()) == StateStopped {
		l.mu.Unlock()
		return errors.NotRunning("logger", "add_writer", "logger is stopped")
	}
	l.chains[name] = w
	running := State(l.state.Load()) == StateRunning
	l.mu.Unlock()

	if running {
		if s, ok := w.(starter); ok {
			if err := s.Start(); err != nil {
				return err
			}
		}
	}
	l.log.WithField("writer", name).Info("writer added")
	return nil
}

// RemoveWriter unregisters a chain by name. It does not stop the chain;
// callers that own the chain's lifecycle independently of the logger are
// responsible for that.
func (l *Logger) RemoveWriter(name string) {
	l.mu.Lock()
	delete(l.chains, name)
	l.mu.Unlock()
	l.log.WithField("writer", name).Info("writer removed")
}

// Start transitions Initialized -> Running, starting the worker of every
// registered chain that owns one. Calling Start from any other state is a
// no-op.
func (l *Logger) Start() error {
	if !l.state.CompareAndSwap(int32(StateInitialized), int32(StateRunning)) {
		return nil
	}
	l.mu.RLock()
	chains := make(map[string]writer.Writer, len(l.chains))
	for k, v := range l.chains {
		chains[k] = v
	}
	l.mu.RUnlock()

	for name, w := range chains {
		if s, ok := w.(starter); ok {
			if err := s.Start(); err != nil {
				return errors.IoError("logger", "start", err.Error()).Wrap(err).WithMetadata("writer", name)
			}
		}
	}
	l.log.Info("logger started")
	return nil
}

// stopper is implemented by any chain that owns a resource needing an
// explicit shutdown (the async decorator joins its worker; most other
// decorators have nothing beyond Flush to do on stop).
type stopper interface {
	Stop() error
}

// Stop transitions Running or Initialized -> Stopping -> Stopped: every
// chain is flushed synchronously and any chain owning a worker (async
// decorators) is joined. Records logged while Stopping are still
// dispatched best-effort; once Stopped, Log is a no-op. Calling Stop twice
// is a no-op returning success.
func (l *Logger) Stop() error {
	prev := State(l.state.Load())
	if prev == StateStopping || prev == StateStopped {
		return nil
	}
	l.state.Store(int32(StateStopping))

	l.mu.RLock()
	chains := make(map[string]writer.Writer, len(l.chains))
	for k, v := range l.chains {
		chains[k] = v
	}
	l.mu.RUnlock()

	var firstErr error
	for name, w := range chains {
		if err := w.Flush(); err != nil && firstErr == nil {
			firstErr = err
			l.log.WithError(err).WithField("writer", name).Warn("flush failed during stop")
		}
	}
	for name, w := range chains {
		if s, ok := w.(stopper); ok {
			if err := s.Stop(); err != nil && firstErr == nil {
				firstErr = err
				l.log.WithError(err).WithField("writer", name).Warn("stop failed")
			}
		}
	}

	l.state.Store(int32(StateStopped))
	l.log.Info("logger stopped")
	return firstErr
}

// State reports the current lifecycle state.
func (l *Logger) State() State { return State(l.state.Load()) }

// SetMinLevel atomically updates the gate threshold.
func (l *Logger) SetMinLevel(level record.Level) { l.minLevel.Store(int32(level)) }

// GetMinLevel atomically reads the gate threshold.
func (l *Logger) GetMinLevel() record.Level { return record.Level(l.minLevel.Load()) }

// SetContext installs a logger-global context field.
func (l *Logger) SetContext(f record.Field) { l.global.Set(f) }

// RemoveContext deletes a logger-global context field.
func (l *Logger) RemoveContext(key string) { l.global.Remove(key) }

// ClearContext removes every logger-global context field.
func (l *Logger) ClearContext() { l.global.Clear() }

// HasContext reports whether key is currently set in the logger-global
// store (not accounting for any scope active on a particular context.Context).
func (l *Logger) HasContext(key string) bool { return l.global.Has(key) }

// GetContext returns the current logger-global value of key, if set.
func (l *Logger) GetContext(key string) (record.Field, bool) { return l.global.Get(key) }

// Log is the single entry point every producer call funnels through: a
// level check, record construction, context merge, and router dispatch.
//
// State-machine contract: while Stopped, Log is a no-op returning nil.
// While Initialized or Stopping, the call is accepted
// best-effort — chains that are purely synchronous write immediately;
// chains fronted by an unstarted async decorator simply enqueue (the
// worker drains once Start is called) or, during Stopping, may return
// QueueStopped, which Log does not propagate since draining is already
// underway.
func (l *Logger) Log(ctx context.Context, level record.Level, message string, fields ...record.Field) error {
	if State(l.state.Load()) == StateStopped {
		return nil
	}
	min := record.Level(l.minLevel.Load())
	if level < min {
		return nil
	}

	b := record.NewBuilder(level, message, time.Now())
	if l.captureSource {
		if _, file, line, ok := runtime.Caller(1); ok {
			b.WithSource(record.SourceLocation{File: file, Line: line})
		}
	}
	merged := logcontext.MergeAll(l.global, ctx, record.Fields(fields))
	for _, f := range merged {
		b.AddField(f)
	}
	r := b.Emit()

	err := l.dispatch(r)
	if err != nil && errors.Is(err, errors.KindQueueStopped) && State(l.state.Load()) >= StateStopping {
		return nil
	}
	return err
}

func (l *Logger) dispatch(r record.Record) error {
	var names []string
	if l.router != nil {
		names = l.router.Resolve(r)
	}
	if len(names) == 0 {
		return nil
	}

	l.mu.RLock()
	targets := make([]writer.Writer, 0, len(names))
	for _, name := range names {
		if w, ok := l.chains[name]; ok {
			targets = append(targets, w)
		}
	}
	l.mu.RUnlock()
	if len(targets) == 0 {
		return nil
	}

	succeeded := false
	var firstErr error
	for _, w := range targets {
		if err := w.Write(r); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			l.log.WithError(err).WithField("writer", w.Name()).Debug("chain write failed")
			continue
		}
		succeeded = true
	}
	if succeeded || len(targets) == 0 {
		return nil
	}
	return firstErr
}

// Flush blocks until every registered chain's Flush has returned,
// returning the first error encountered. Every call flushes every chain:
// two calls with no intervening writes flush each chain twice, the second
// time with nothing left in its buffers or queue to drain.
func (l *Logger) Flush() error {
	l.mu.RLock()
	chains := make([]writer.Writer, 0, len(l.chains))
	for _, w := range l.chains {
		chains = append(chains, w)
	}
	l.mu.RUnlock()

	var firstErr error
	for _, w := range chains {
		if err := w.Flush(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Healthy aggregates the health of every registered chain with AND: one
// unhealthy chain makes the whole logger report unhealthy.
func (l *Logger) Healthy() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, w := range l.chains {
		if !w.Healthy() {
			return false
		}
	}
	return true
}
