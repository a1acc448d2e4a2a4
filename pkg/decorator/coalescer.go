package decorator

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"logpipe/pkg/record"
	"logpipe/pkg/writer"
)

// coalescer is the shared size-or-age drain logic behind both the buffered
// decorator (C7) and the batch decorator (C9): the batch decorator has an
// identical drain contract to the buffered one, just positioned
// downstream of the async decorator, so both share this implementation
// rather than duplicating the drain loop.
type coalescer struct {
	inner writer.Writer
	log   *logrus.Logger

	maxEntries    int
	flushInterval time.Duration

	mu      sync.Mutex
	entries []record.Record
	oldest  time.Time
}

func newCoalescer(inner writer.Writer, maxEntries int, flushInterval time.Duration, log *logrus.Logger) *coalescer {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &coalescer{inner: inner, log: log, maxEntries: maxEntries, flushInterval: flushInterval}
}

func (c *coalescer) write(r record.Record) error {
	c.mu.Lock()
	if len(c.entries) == 0 {
		c.oldest = time.Now()
	}
	c.entries = append(c.entries, r)
	due := len(c.entries) >= c.maxEntries ||
		(c.flushInterval > 0 && time.Since(c.oldest) >= c.flushInterval)
	var toDrain []record.Record
	if due {
		toDrain = c.entries
		c.entries = nil
	}
	c.mu.Unlock()

	if toDrain != nil {
		return c.drain(toDrain)
	}
	return nil
}

func (c *coalescer) drain(entries []record.Record) error {
	var firstErr error
	for _, e := range entries {
		if err := c.inner.Write(e); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			c.log.WithError(err).WithField("writer", c.inner.Name()).Warn("coalescer drain write failed")
		}
	}
	return firstErr
}

func (c *coalescer) flush() error {
	c.mu.Lock()
	toDrain := c.entries
	c.entries = nil
	c.mu.Unlock()

	if len(toDrain) > 0 {
		if err := c.drain(toDrain); err != nil {
			return err
		}
	}
	return c.inner.Flush()
}
