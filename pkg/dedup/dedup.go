// Package dedup implements a time-windowed, LRU-bounded duplicate filter
// for the pipeline's Filter interface (C5), adapted from
// _examples/mdzesseis-log_capturer_go/pkg/deduplication/deduplication_manager.go's
// xxhash-keyed cache. A dedup.Filter rejects a record when an identical
// message (paired with its category when Config.IncludeCategory is set)
// was last seen, accepted or rejected, within the configured TTL; every
// rejected repeat restarts that window. Once TTL passes with no repeat,
// the same message is accepted again.
package dedup

import (
	"container/list"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"logpipe/pkg/record"
	"logpipe/pkg/writer"
)

// Config configures the duplicate filter.
type Config struct {
	// MaxEntries bounds the cache; the least-recently-seen key is evicted
	// once the bound is exceeded. Defaults to 10000 if unset.
	MaxEntries int
	// TTL is how long a (category, message) pair suppresses repeats.
	// Defaults to one minute if unset.
	TTL time.Duration
	// IncludeCategory folds the record's Category into the hash key in
	// addition to Message, matching deduplication_manager.go's
	// IncludeSourceID option.
	IncludeCategory bool
}

type entry struct {
	key  uint64
	seen time.Time
}

// Filter is a writer.Filter that accepts a record only the first time a
// given (category, message) hash is seen within Config.TTL. Safe for
// concurrent use.
type Filter struct {
	cfg Config

	mu    sync.Mutex
	cache map[uint64]*list.Element
	order *list.List // most-recently-seen at the front

	duplicates int64
	checks     int64
}

// New constructs a duplicate filter with the given configuration.
func New(cfg Config) *Filter {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 10000
	}
	if cfg.TTL <= 0 {
		cfg.TTL = time.Minute
	}
	return &Filter{cfg: cfg, cache: make(map[uint64]*list.Element), order: list.New()}
}

func (f *Filter) hash(r record.Record) uint64 {
	h := xxhash.New()
	h.Write([]byte(r.Message))
	if f.cfg.IncludeCategory {
		h.Write([]byte{0})
		h.Write([]byte(r.Category))
	}
	return h.Sum64()
}

// Accept implements writer.Filter: true means "not a duplicate, let it
// through". A rejected (duplicate) record is not an error — the filtered
// decorator simply drops it.
func (f *Filter) Accept(r record.Record) bool {
	key := f.hash(r)
	now := time.Now()

	f.mu.Lock()
	defer f.mu.Unlock()
	f.checks++

	if el, ok := f.cache[key]; ok {
		e := el.Value.(*entry)
		if now.Sub(e.seen) <= f.cfg.TTL {
			e.seen = now
			f.order.MoveToFront(el)
			f.duplicates++
			return false
		}
		// expired: treat as a fresh entry
		f.order.Remove(el)
		delete(f.cache, key)
	}

	el := f.order.PushFront(&entry{key: key, seen: now})
	f.cache[key] = el
	if f.order.Len() > f.cfg.MaxEntries {
		f.evictOldest()
	}
	return true
}

func (f *Filter) evictOldest() {
	oldest := f.order.Back()
	if oldest == nil {
		return
	}
	f.order.Remove(oldest)
	delete(f.cache, oldest.Value.(*entry).key)
}

// Stats is a point-in-time snapshot of cache usage, mirroring
// deduplication_manager.go's GetStats.
type Stats struct {
	Checks     int64
	Duplicates int64
	CacheSize  int
}

// Stats returns a snapshot of the filter's counters.
func (f *Filter) Stats() Stats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Stats{Checks: f.checks, Duplicates: f.duplicates, CacheSize: f.order.Len()}
}

var _ writer.Filter = (*Filter)(nil)
