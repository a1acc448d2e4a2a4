package tests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"logpipe/pkg/decorator"
	"logpipe/pkg/logger"
	"logpipe/pkg/record"
	"logpipe/pkg/router"
	"logpipe/pkg/sinks"
)

// TestNoGoroutineLeaks exercises a full start/log/stop cycle of the
// front-door logger with an async decorator in the chain and verifies the
// async worker goroutine actually exits when Stop returns.
func TestNoGoroutineLeaks(t *testing.T) {
	defer goleak.VerifyNone(t,
		goleak.IgnoreTopFunction("github.com/sirupsen/logrus.(*Entry).log"),
	)

	mem := sinks.NewMemory()
	async, err := decorator.NewAsync(mem, decorator.AsyncConfig{
		QueueCapacity:  64,
		OverflowPolicy: decorator.PolicyBlock,
	}, nil, nil)
	require.NoError(t, err)

	rt := router.New(router.Config{
		Routes: []router.Route{router.NewLevelRoute(record.Info, false, "main")},
	})
	lg := logger.New(logger.Config{MinLevel: record.Info}, rt, nil)
	require.NoError(t, lg.AddWriter("main", async))
	require.NoError(t, lg.Start())

	ctx := context.Background()
	for i := 0; i < 50; i++ {
		require.NoError(t, lg.Log(ctx, record.Info, "tick"))
	}
	require.NoError(t, lg.Flush())
	require.Len(t, mem.Records(), 50)

	require.NoError(t, lg.Stop())

	// Give the runtime a moment to report the worker goroutine as gone;
	// Async.Stop already joined it synchronously, so this is just
	// headroom for goleak's own scan, not a wait for our code.
	time.Sleep(10 * time.Millisecond)
}
