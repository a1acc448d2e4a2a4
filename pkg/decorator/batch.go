package decorator

import (
	"time"

	"github.com/sirupsen/logrus"

	"logpipe/pkg/record"
	"logpipe/pkg/writer"
)

// BatchConfig configures the batch decorator (C9).
type BatchConfig struct {
	MaxEntries    int
	FlushInterval time.Duration
}

// Batch has the identical size-or-age drain contract as Buffered but is
// meant to sit downstream of an Async decorator, letting the dedicated
// worker thread coalesce records into batched sink I/O without blocking
// producers (the async decorator already absorbed that concern upstream).
type Batch struct {
	base
	c *coalescer
}

// NewBatch constructs a batch decorator over inner.
func NewBatch(inner writer.Writer, cfg BatchConfig, log *logrus.Logger) (*Batch, error) {
	b, err := newBase("batch", inner)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Batch{base: b, c: newCoalescer(inner, cfg.MaxEntries, cfg.FlushInterval, log)}, nil
}

func (w *Batch) Write(r record.Record) error {
	return w.c.write(r)
}

func (w *Batch) Flush() error {
	return w.c.flush()
}

var _ writer.Writer = (*Batch)(nil)
