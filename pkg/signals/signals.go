// Package signals implements the process-level crash adapter (C15): a
// registry of critical-capable writers and a handler that, on abnormal
// termination, best-effort flushes them before the process exits.
//
// Grounded on _examples/original_source/include/kcenon/logger/safety/crash_safe_logger.h
// (sigaction-based handler chaining to an emergency flush) and
// _examples/original_source/src/core/signal_manager_context.cpp (a single
// mutex-guarded registry). Go has no equivalent of installing a raw
// sigaction handler that runs in async-signal-safe context with arbitrary
// user code: os/signal delivers notifications over a channel to an
// ordinary goroutine, so allocation and locking inside the handler are
// safe by construction, unlike the source's async-signal-safety
// constraint. The registry keeps the reader/writer discipline the source
// specifies anyway, since it is still accessed concurrently by
// registration/removal and by the notification goroutine.
package signals

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/sirupsen/logrus"
)

// CrashFlusher is the narrow contract a critical writer exposes to the
// signal adapter: a best-effort, non-blocking-as-possible flush of
// whatever has already reached stable storage promises.
type CrashFlusher interface {
	FlushCritical() error
}

// Registry tracks critical-capable writers under a reader/writer
// discipline. Registration/removal is RAII-style at the call site:
// Register returns nothing to hold, callers call Unregister with the same
// name on teardown, matching the logger's own lifecycle rather than
// relying on Go finalizers.
type Registry struct {
	mu       sync.RWMutex
	flushers map[string]CrashFlusher
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{flushers: make(map[string]CrashFlusher)}
}

func (r *Registry) Register(name string, f CrashFlusher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flushers[name] = f
}

func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.flushers, name)
}

func (r *Registry) snapshot() map[string]CrashFlusher {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]CrashFlusher, len(r.flushers))
	for k, v := range r.flushers {
		out[k] = v
	}
	return out
}

// Adapter installs process-termination handlers that best-effort flush
// every writer in a Registry before letting the signal take effect.
type Adapter struct {
	registry *Registry
	log      *logrus.Logger

	mu      sync.Mutex
	ch      chan os.Signal
	stopped chan struct{}
}

// NewAdapter builds an adapter over registry. log may be nil.
func NewAdapter(registry *Registry, log *logrus.Logger) *Adapter {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Adapter{registry: registry, log: log}
}

// defaultSignals mirrors the common terminate/abort/interrupt set most
// crash-flush integrations care about.
var defaultSignals = []os.Signal{syscall.SIGTERM, syscall.SIGINT, syscall.SIGABRT, syscall.SIGQUIT}

// Install registers OS signal handling. Calling Install twice is a no-op
// until Uninstall is called.
func (a *Adapter) Install() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ch != nil {
		return
	}
	a.ch = make(chan os.Signal, 1)
	a.stopped = make(chan struct{})
	signal.Notify(a.ch, defaultSignals...)

	go a.run(a.ch, a.stopped)
}

func (a *Adapter) run(ch chan os.Signal, stopped chan struct{}) {
	for {
		select {
		case sig, ok := <-ch:
			if !ok {
				return
			}
			a.emergencyFlush()
			a.chain(sig)
			return
		case <-stopped:
			return
		}
	}
}

func (a *Adapter) emergencyFlush() {
	for name, f := range a.registry.snapshot() {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					a.log.WithField("writer", name).Error("signal handler: flush panicked")
				}
			}()
			if err := f.FlushCritical(); err != nil {
				a.log.WithError(err).WithField("writer", name).Warn("signal handler: emergency flush failed")
			}
		}()
	}
}

// chain releases our handler and re-delivers the signal to the process so
// the default OS disposition (terminate, core dump, ...) still applies —
// the Go-idiomatic stand-in for the source's sigaction chaining to a
// previously installed handler.
func (a *Adapter) chain(sig os.Signal) {
	signal.Stop(a.ch)
	if s, ok := sig.(syscall.Signal); ok {
		syscall.Kill(os.Getpid(), s)
		return
	}
	os.Exit(1)
}

// Uninstall stops signal delivery without re-raising.
func (a *Adapter) Uninstall() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ch == nil {
		return
	}
	signal.Stop(a.ch)
	close(a.stopped)
	a.ch = nil
}
