package decorator

import (
	"logpipe/pkg/record"
	"logpipe/pkg/writer"
)

// Filtered applies a Filter in-chain: a rejected record is dropped without
// invoking the inner writer, and dropping is not itself an error.
type Filtered struct {
	base
	filter writer.Filter
}

// NewFiltered constructs a filtered decorator over inner.
func NewFiltered(inner writer.Writer, filter writer.Filter) (*Filtered, error) {
	b, err := newBase("filtered", inner)
	if err != nil {
		return nil, err
	}
	return &Filtered{base: b, filter: filter}, nil
}

func (w *Filtered) Write(r record.Record) error {
	if !w.filter.Accept(r) {
		return nil
	}
	return w.Inner().Write(r)
}

var _ writer.Writer = (*Filtered)(nil)

// Formatted produces a derived record whose Message is the formatter's
// output of the original record; all other fields are preserved.
type Formatted struct {
	base
	formatter writer.Formatter
}

// NewFormatted constructs a formatted decorator over inner.
func NewFormatted(inner writer.Writer, formatter writer.Formatter) (*Formatted, error) {
	b, err := newBase("formatted", inner)
	if err != nil {
		return nil, err
	}
	return &Formatted{base: b, formatter: formatter}, nil
}

func (w *Formatted) Write(r record.Record) error {
	derived := r.WithMessage(string(w.formatter.Format(r)))
	return w.Inner().Write(derived)
}

var _ writer.Writer = (*Formatted)(nil)
