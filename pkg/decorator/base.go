// Package decorator implements the composable writer-decorator family:
// a base contract (C6) plus buffered (C7), async (C8), batch (C9), and
// filtered/formatted (C10) decorators, each wrapping exactly one inner
// writer.
//
// Grounded on _examples/original_source/src/impl/writers/decorator_writer_base.cpp:
// a decorator owns its inner writer exclusively, its Name() chains the
// inner's name behind its own tag, and flush/healthy delegate to the inner
// unless overridden.
package decorator

import (
	"logpipe/pkg/errors"
	"logpipe/pkg/writer"
)

// base gives every decorator the identity-chaining and delegation behavior
// required by C6. Concrete decorators embed base and override Write (and,
// where needed, Flush/Healthy).
type base struct {
	tag   string
	inner writer.Writer
}

// newBase validates and constructs the shared decorator state. A nil inner
// is rejected with InvalidArgument, per C6's construction contract.
func newBase(tag string, inner writer.Writer) (base, error) {
	if inner == nil {
		return base{}, errors.InvalidArgument("decorator", "new_"+tag, "inner writer must not be nil")
	}
	return base{tag: tag, inner: inner}, nil
}

func (b *base) Name() string {
	return b.tag + "_" + b.inner.Name()
}

func (b *base) Flush() error {
	return b.inner.Flush()
}

func (b *base) Healthy() bool {
	return b.inner.Healthy()
}

func (b *base) Inner() writer.Writer { return b.inner }
