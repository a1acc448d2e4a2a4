// Package writer defines the three interface boundaries the pipeline is
// built from: the terminal sink contract (C3), the pure formatter contract
// (C4), and the composable filter contract (C5). Decorators in
// pkg/decorator implement Writer by wrapping another Writer.
package writer

import "logpipe/pkg/record"

// Writer is the contract every sink and decorator implements. write/flush
// return authoritative results: success means the record has been handed
// to the OS or to the next decorator down the chain.
type Writer interface {
	// Write delivers one record. A nil error means delivery succeeded.
	Write(r record.Record) error
	// Flush blocks until all previously-accepted records are committed
	// according to the writer's durability promise.
	Flush() error
	// Healthy is observational; a false reading does not imply subsequent
	// writes will fail.
	Healthy() bool
	// Name identifies the writer for routing/diagnostics. Decorators
	// prefix their own tag onto the inner writer's name.
	Name() string
}

// Formatter is a pure function record -> bytes. Implementations must be
// deterministic given identical input (including field order), must not
// block, and must not perform I/O.
type Formatter interface {
	Format(r record.Record) []byte
}

// FormatterFunc adapts a plain function to the Formatter interface.
type FormatterFunc func(r record.Record) []byte

func (f FormatterFunc) Format(r record.Record) []byte { return f(r) }

// Filter is a pure predicate over a record; true means accept.
type Filter interface {
	Accept(r record.Record) bool
}

// FilterFunc adapts a plain function to the Filter interface.
type FilterFunc func(r record.Record) bool

func (f FilterFunc) Accept(r record.Record) bool { return f(r) }

// And short-circuits on the first rejecting filter.
func And(filters ...Filter) Filter {
	return FilterFunc(func(r record.Record) bool {
		for _, f := range filters {
			if !f.Accept(r) {
				return false
			}
		}
		return true
	})
}

// Or short-circuits on the first accepting filter.
func Or(filters ...Filter) Filter {
	return FilterFunc(func(r record.Record) bool {
		for _, f := range filters {
			if f.Accept(r) {
				return true
			}
		}
		return false
	})
}

// Not negates a filter.
func Not(f Filter) Filter {
	return FilterFunc(func(r record.Record) bool { return !f.Accept(r) })
}

// LevelFilter accepts records whose level is >= threshold.
func LevelFilter(threshold record.Level) Filter {
	return FilterFunc(func(r record.Record) bool { return r.Level >= threshold })
}

// ExactLevelFilter accepts records whose level equals the given level.
func ExactLevelFilter(level record.Level) Filter {
	return FilterFunc(func(r record.Record) bool { return r.Level == level })
}

// CategoryFilter accepts (or, if exclude is true, rejects) records whose
// category is a member of the given set.
func CategoryFilter(categories []string, exclude bool) Filter {
	set := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		set[c] = struct{}{}
	}
	return FilterFunc(func(r record.Record) bool {
		_, member := set[r.Category]
		if exclude {
			return !member
		}
		return member
	})
}
