package decorator

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"logpipe/pkg/errors"
	"logpipe/pkg/record"
	"logpipe/pkg/writer"
)

// OverflowPolicy selects what happens when the async queue is full.
type OverflowPolicy int

const (
	PolicyBlock OverflowPolicy = iota
	PolicyDropNewest
	PolicyDropOldest
)

// Instrumentation receives point-in-time gauge updates from the async
// decorator. pkg/metrics supplies a Prometheus-backed implementation; nil
// is a legal no-op default.
type Instrumentation interface {
	SetPending(writerName string, n int64)
	AddDropped(writerName string, n int64)
}

// AsyncConfig configures the async decorator (C8), the concurrency hub of
// the pipeline.
type AsyncConfig struct {
	QueueCapacity int
	OverflowPolicy OverflowPolicy
	// BatchLimit bounds how many queued records the worker pops per
	// iteration before handing control back to the scheduler. Defaults to
	// 32 if unset.
	BatchLimit int
	// UnhealthyAfter is the number of consecutive inner-write failures
	// after which Healthy() reports false. Defaults to 5 if unset.
	UnhealthyAfter int
}

type queueEntry struct {
	rec        record.Record
	enqueuedAt time.Time
}

// Async decouples producers from a slow inner writer via a bounded FIFO
// queue served by a single dedicated worker goroutine. Grounded on the
// bounded-queue-plus-worker shape of
// _examples/mdzesseis-log_capturer_go/pkg/workerpool/worker_pool.go, but
// Stop() always joins the worker with no timeout (that worker pool instead
// races wg.Wait() against a ShutdownTimeout, which this decorator
// deliberately does not copy) and the queue supports drop-oldest, which a
// channel cannot express, so it is a mutex+condition-variable slice queue
// instead of workerpool's buffered channel.
type Async struct {
	base
	cfg AsyncConfig

	mu       sync.Mutex
	cond     *sync.Cond
	queue    []queueEntry
	inFlight int
	started  bool
	stopped  bool

	pending             atomic.Int64
	dropped             atomic.Int64
	consecutiveFailures atomic.Int64
	unhealthy           atomic.Bool

	wg   sync.WaitGroup
	inst Instrumentation
	log  *logrus.Logger
}

// NewAsync constructs an async decorator over inner. inst may be nil.
func NewAsync(inner writer.Writer, cfg AsyncConfig, inst Instrumentation, log *logrus.Logger) (*Async, error) {
	b, err := newBase("async", inner)
	if err != nil {
		return nil, err
	}
	if cfg.QueueCapacity < 1 {
		return nil, errors.InvalidArgument("async", "new", "queue_capacity must be >= 1")
	}
	if cfg.BatchLimit <= 0 {
		cfg.BatchLimit = 32
	}
	if cfg.UnhealthyAfter <= 0 {
		cfg.UnhealthyAfter = 5
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	a := &Async{base: b, cfg: cfg, inst: inst, log: log}
	a.cond = sync.NewCond(&a.mu)
	return a, nil
}

// Start launches the single worker goroutine. Calling Start twice is a
// no-op.
func (a *Async) Start() error {
	a.mu.Lock()
	if a.started {
		a.mu.Unlock()
		return nil
	}
	a.started = true
	a.mu.Unlock()

	a.wg.Add(1)
	go a.workerLoop()
	return nil
}

// Write enqueues r, applying the configured overflow policy when the queue
// is full. Blocked writers (policy block) are released with QueueStopped
// when Stop is called.
func (a *Async) Write(r record.Record) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for {
		if a.stopped {
			return errors.QueueStopped("async", "write", "decorator is shutting down")
		}
		if len(a.queue) < a.cfg.QueueCapacity {
			break
		}
		switch a.cfg.OverflowPolicy {
		case PolicyBlock:
			a.cond.Wait()
			continue
		case PolicyDropNewest:
			a.dropped.Add(1)
			if a.inst != nil {
				a.inst.AddDropped(a.Name(), 1)
			}
			return nil
		case PolicyDropOldest:
			a.queue = a.queue[1:]
			a.pending.Add(-1)
			a.dropped.Add(1)
			if a.inst != nil {
				a.inst.AddDropped(a.Name(), 1)
			}
		}
		break
	}

	a.queue = append(a.queue, queueEntry{rec: r, enqueuedAt: time.Now()})
	a.pending.Add(1)
	if a.inst != nil {
		a.inst.SetPending(a.Name(), int64(len(a.queue)))
	}
	a.cond.Broadcast()
	return nil
}

func (a *Async) workerLoop() {
	defer a.wg.Done()

	for {
		a.mu.Lock()
		for len(a.queue) == 0 && !a.stopped {
			a.cond.Wait()
		}
		if len(a.queue) == 0 && a.stopped {
			a.mu.Unlock()
			return
		}
		n := len(a.queue)
		if n > a.cfg.BatchLimit {
			n = a.cfg.BatchLimit
		}
		batch := make([]queueEntry, n)
		copy(batch, a.queue[:n])
		a.queue = a.queue[n:]
		a.inFlight += n
		if a.inst != nil {
			a.inst.SetPending(a.Name(), int64(len(a.queue)))
		}
		a.mu.Unlock()

		for _, e := range batch {
			err := a.Inner().Write(e.rec)
			a.pending.Add(-1)
			if err != nil {
				failures := a.consecutiveFailures.Add(1)
				if int(failures) >= a.cfg.UnhealthyAfter {
					a.unhealthy.Store(true)
				}
				a.log.WithError(err).WithField("writer", a.Name()).Warn("async worker write failed")
			} else {
				a.consecutiveFailures.Store(0)
				a.unhealthy.Store(false)
			}
		}

		a.mu.Lock()
		a.inFlight -= n
		if len(a.queue) == 0 && a.inFlight == 0 {
			a.cond.Broadcast()
		}
		a.mu.Unlock()
	}
}

// Flush parks the caller until the queue has drained and all in-flight
// writes have completed, then flushes the inner writer.
func (a *Async) Flush() error {
	a.mu.Lock()
	for len(a.queue) > 0 || a.inFlight > 0 {
		a.cond.Wait()
	}
	a.mu.Unlock()
	return a.base.Flush()
}

// Stop transitions to draining, lets the worker process the remaining
// queue in order, then joins it. This blocks with no timeout; unlike
// workerpool.WorkerPool.Stop it never races the join against a deadline.
func (a *Async) Stop() error {
	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		return nil
	}
	a.stopped = true
	a.cond.Broadcast()
	a.mu.Unlock()

	a.wg.Wait()
	return nil
}

// Healthy combines local failure-streak health with the inner writer's.
func (a *Async) Healthy() bool {
	return !a.unhealthy.Load() && a.base.Healthy()
}

// Pending reports how many accepted records have not yet been handed to
// the inner writer: those still queued plus those the worker is writing.
func (a *Async) Pending() int64 { return a.pending.Load() }

// Dropped reports the cumulative number of records discarded by the
// overflow policy.
func (a *Async) Dropped() int64 { return a.dropped.Load() }

var _ writer.Writer = (*Async)(nil)
