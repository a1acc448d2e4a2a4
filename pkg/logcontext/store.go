// Package logcontext implements the three-lifetime context model of C2:
// a process-wide (logger-global) store, scoped overlays, and call-site
// fields, merged last-writer-wins at format time.
//
// Design choice (see DESIGN.md, "Notable implementation choices"): the source models a per-thread
// overlay via thread-local storage, which Go has no equivalent for.
// Scoped/thread-local overlays are instead modeled as an immutable chain of
// frames carried on context.Context: WithScope returns a derived context
// that layers new fields on top of its parent without mutating it. Because
// context.Context nodes are immutable, resuming the parent context after a
// child scope exits observes exactly the pre-scope state — satisfying "for
// any balanced enter/exit sequence, the observable context is identical to
// the pre-sequence state" without a manual save/restore step.
package logcontext

import (
	"context"
	"sync"

	"logpipe/pkg/record"
)

// Store is the logger-global key/value map: thread-safe for concurrent
// readers and occasional writers via a reader/writer discipline.
type Store struct {
	mu     sync.RWMutex
	order  []string
	values map[string]record.Field
}

// NewStore constructs an empty global context store.
func NewStore() *Store {
	return &Store{values: make(map[string]record.Field)}
}

// Set installs or overwrites a global field.
func (s *Store) Set(f record.Field) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.values[f.Key]; !exists {
		s.order = append(s.order, f.Key)
	}
	s.values[f.Key] = f
}

// Remove deletes a global field, if present.
func (s *Store) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.values[key]; !exists {
		return
	}
	delete(s.values, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Clear removes every global field.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = nil
	s.values = make(map[string]record.Field)
}

// Has reports whether key is currently set.
func (s *Store) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.values[key]
	return ok
}

// Get returns the current value of key, if set.
func (s *Store) Get(key string) (record.Field, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.values[key]
	return f, ok
}

// Snapshot returns an insertion-ordered copy of the global fields.
func (s *Store) Snapshot() record.Fields {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(record.Fields, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.values[k])
	}
	return out
}

type scopeKey struct{}

// WithScope returns a derived context layering fields on top of any scopes
// already present in parent. The parent context is never mutated, so
// reusing it after the derived context goes out of scope observes the
// pre-scope state.
func WithScope(parent context.Context, fields ...record.Field) context.Context {
	frames := framesFromContext(parent)
	next := make([]record.Fields, len(frames)+1)
	copy(next, frames)
	next[len(frames)] = record.Fields(fields)
	return context.WithValue(parent, scopeKey{}, next)
}

func framesFromContext(ctx context.Context) []record.Fields {
	if ctx == nil {
		return nil
	}
	v := ctx.Value(scopeKey{})
	if v == nil {
		return nil
	}
	return v.([]record.Fields)
}

// ScopedFields flattens every active scope frame, outermost first, without
// deduplicating — callers pass the result through Merge alongside the
// global snapshot and call-site fields.
func ScopedFields(ctx context.Context) record.Fields {
	frames := framesFromContext(ctx)
	var out record.Fields
	for _, frame := range frames {
		out = append(out, frame...)
	}
	return out
}

// Merge flattens layers in precedence order (lowest precedence first) into
// one ordered field list: for each key, the last layer to mention it
// determines the value, but the key's position is fixed by the first layer
// that mentioned it. For example, global {svc:x}, scope {req:1}, inner
// scope {svc:y, step:a} merges to svc,req,step ordered with svc=y.
func Merge(layers ...record.Fields) record.Fields {
	order := make([]string, 0)
	values := make(map[string]record.Field)
	for _, layer := range layers {
		for _, f := range layer {
			if _, seen := values[f.Key]; !seen {
				order = append(order, f.Key)
			}
			values[f.Key] = f
		}
	}
	out := make(record.Fields, len(order))
	for i, k := range order {
		out[i] = values[k]
	}
	return out
}

// MergeAll is the full context.md merge rule applied at log time: global,
// then every active scope (outermost first), then call-site fields, which
// take final precedence.
func MergeAll(global *Store, ctx context.Context, callSite record.Fields) record.Fields {
	return Merge(global.Snapshot(), ScopedFields(ctx), callSite)
}
