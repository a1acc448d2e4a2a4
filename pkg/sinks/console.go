package sinks

import (
	"fmt"
	"io"
	"sync"

	"logpipe/pkg/errors"
	"logpipe/pkg/record"
	"logpipe/pkg/writer"
)

// Console writes formatted records to an io.Writer (typically os.Stdout or
// os.Stderr). Internally synchronized, so it may be shared by multiple
// decorator chains.
type Console struct {
	mu        sync.Mutex
	out       io.Writer
	formatter writer.Formatter
	name      string
}

// NewConsole constructs a console sink. A nil formatter defaults to
// DefaultFormatter.
func NewConsole(out io.Writer, formatter writer.Formatter, name string) *Console {
	if formatter == nil {
		formatter = DefaultFormatter{}
	}
	if name == "" {
		name = "console"
	}
	return &Console{out: out, formatter: formatter, name: name}
}

func (c *Console) Write(r record.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	payload := c.formatter.Format(r)
	if _, err := fmt.Fprintln(c.out, string(payload)); err != nil {
		return errors.IoError("console", "write", err.Error()).Wrap(err)
	}
	return nil
}

func (c *Console) Flush() error { return nil }

func (c *Console) Healthy() bool { return true }

func (c *Console) Name() string { return c.name }

var _ writer.Writer = (*Console)(nil)
