package router_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"logpipe/pkg/record"
	"logpipe/pkg/router"
)

func rec(level record.Level, msg string) record.Record {
	return record.New(level, msg, time.Now())
}

// TestExclusiveModeDropsUnmatched covers: an exclusive router with a
// single error-level route delivers only error (and above) records to
// err_sink, and drops info/warning entirely rather than falling back to
// any default chain.
func TestExclusiveModeDropsUnmatched(t *testing.T) {
	rt := router.New(router.Config{
		ExclusiveMode: true,
		Routes: []router.Route{
			router.NewLevelRoute(record.Error, false, "err_sink"),
		},
	})

	assert.Empty(t, rt.Resolve(rec(record.Info, "hello")))
	assert.Empty(t, rt.Resolve(rec(record.Warning, "careful")))
	assert.Equal(t, []string{"err_sink"}, rt.Resolve(rec(record.Error, "boom")))
	assert.Equal(t, []string{"err_sink"}, rt.Resolve(rec(record.Critical, "fire")))
}

// TestStopPropagationHaltsEvaluation verifies that a matching route with
// StopPropagation set prevents any later route from contributing chains,
// even when the later route would otherwise also match.
func TestStopPropagationHaltsEvaluation(t *testing.T) {
	rt := router.New(router.Config{
		Routes: []router.Route{
			router.NewLevelRoute(record.Info, true, "first"),
			router.NewLevelRoute(record.Info, false, "second"),
		},
	})

	assert.Equal(t, []string{"first"}, rt.Resolve(rec(record.Info, "x")))
}

// TestRouteOrderPreservedAndDeduplicated checks that matching multiple
// routes produces the union of their chain names in first-seen order, with
// no duplicate chain name even when two routes name the same chain.
func TestRouteOrderPreservedAndDeduplicated(t *testing.T) {
	rt := router.New(router.Config{
		Routes: []router.Route{
			router.NewCategoryRoute([]string{"billing"}, false, false, "audit", "main"),
			router.NewLevelRoute(record.Warning, false, "main", "alerts"),
		},
	})

	r := rec(record.Warning, "charge failed")
	r.Category = "billing"

	assert.Equal(t, []string{"audit", "main", "alerts"}, rt.Resolve(r))
}

// TestNoMatchYieldsNoChains covers the inclusive (default) mode's no-match
// path, which is identical to exclusive mode's: an empty route list, or one
// whose routes never match, delivers to nothing.
func TestNoMatchYieldsNoChains(t *testing.T) {
	rt := router.New(router.Config{
		Routes: []router.Route{
			router.NewCategoryRoute([]string{"billing"}, false, false, "audit"),
		},
	})

	assert.Empty(t, rt.Resolve(rec(record.Info, "unrelated")))
}

// TestReconfigureSwapsRouteList exercises the hot-reload entry point: a
// Resolve call after Reconfigure observes only the new route list, never a
// mix of old and new.
func TestReconfigureSwapsRouteList(t *testing.T) {
	rt := router.New(router.Config{
		Routes: []router.Route{router.NewLevelRoute(record.Info, false, "old")},
	})
	assert.Equal(t, []string{"old"}, rt.Resolve(rec(record.Info, "x")))

	rt.Reconfigure(router.Config{
		Routes: []router.Route{router.NewLevelRoute(record.Info, false, "new")},
	})
	assert.Equal(t, []string{"new"}, rt.Resolve(rec(record.Info, "x")))
}
