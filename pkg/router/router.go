// Package router implements C13: an ordered list of (predicate, chain
// names, stop_propagation) routes that map a record to zero or more named
// writer chains.
package router

import (
	"sync"

	"logpipe/pkg/record"
	"logpipe/pkg/writer"
)

// RouteKind labels how a Route's predicate was built, for diagnostics;
// evaluation itself only ever uses Route.Filter.
type RouteKind int

const (
	RouteLevel RouteKind = iota
	RouteExactLevel
	RouteCategory
	RoutePattern
	RouteCustom
)

// Route is one entry in the router's ordered route list.
type Route struct {
	Kind            RouteKind
	Filter          writer.Filter
	ChainNames      []string
	StopPropagation bool
}

// NewLevelRoute matches records at or above threshold.
func NewLevelRoute(threshold record.Level, stop bool, chains ...string) Route {
	return Route{Kind: RouteLevel, Filter: writer.LevelFilter(threshold), ChainNames: chains, StopPropagation: stop}
}

// NewExactLevelRoute matches records exactly at level.
func NewExactLevelRoute(level record.Level, stop bool, chains ...string) Route {
	return Route{Kind: RouteExactLevel, Filter: writer.ExactLevelFilter(level), ChainNames: chains, StopPropagation: stop}
}

// NewCategoryRoute matches records whose category is a member of
// categories (or, if exclude, is not a member).
func NewCategoryRoute(categories []string, exclude, stop bool, chains ...string) Route {
	return Route{Kind: RouteCategory, Filter: writer.CategoryFilter(categories, exclude), ChainNames: chains, StopPropagation: stop}
}

// NewPatternRoute matches records whose message matches pattern.
func NewPatternRoute(pattern *writer.PatternFilter, stop bool, chains ...string) Route {
	return Route{Kind: RoutePattern, Filter: pattern, ChainNames: chains, StopPropagation: stop}
}

// NewCustomRoute matches records via an arbitrary filter.
func NewCustomRoute(filter writer.Filter, stop bool, chains ...string) Route {
	return Route{Kind: RouteCustom, Filter: filter, ChainNames: chains, StopPropagation: stop}
}

// Config configures the router.
type Config struct {
	// ExclusiveMode: when true, records matching no route are dropped
	// (delivered to no chain). When false (inclusive, the default),
	// records are delivered to the union of chains selected by matching
	// routes — which is also empty when nothing matches, so the two modes
	// only differ in intent/documentation, not in the no-match code path.
	ExclusiveMode bool
	Routes        []Route
}

// Router maps records to chain names. Safe for concurrent Resolve calls;
// Reconfigure (used by the optional hot-reload watcher) swaps the route
// list atomically under a reader/writer lock.
type Router struct {
	mu  sync.RWMutex
	cfg Config
}

// New constructs a router with the given configuration.
func New(cfg Config) *Router {
	return &Router{cfg: cfg}
}

// Resolve evaluates routes in registration order, returning the
// deduplicated, order-preserving union of chain names selected by matching
// routes. Evaluation halts at the first matching route with
// StopPropagation set.
func (rt *Router) Resolve(r record.Record) []string {
	rt.mu.RLock()
	routes := rt.cfg.Routes
	rt.mu.RUnlock()

	seen := make(map[string]struct{})
	var chains []string
	for _, route := range routes {
		if !route.Filter.Accept(r) {
			continue
		}
		for _, c := range route.ChainNames {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			chains = append(chains, c)
		}
		if route.StopPropagation {
			break
		}
	}
	return chains
}

// Reconfigure atomically replaces the route list.
func (rt *Router) Reconfigure(cfg Config) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.cfg = cfg
}
