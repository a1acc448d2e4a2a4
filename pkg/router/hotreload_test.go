package router_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logpipe/pkg/record"
	"logpipe/pkg/router"
)

// loadLines treats the whole routes file, minus trailing newlines, as one
// chain name that receives every record at Info or above, a deliberately
// trivial stand-in for whatever config format a real deployment would
// choose; the watcher itself is format-agnostic.
func loadLines(data []byte) (router.Config, error) {
	chain := string(data)
	for len(chain) > 0 && (chain[len(chain)-1] == '\n' || chain[len(chain)-1] == '\r') {
		chain = chain[:len(chain)-1]
	}
	return router.Config{
		Routes: []router.Route{router.NewLevelRoute(record.Info, false, chain)},
	}, nil
}

func TestWatcherLoadsInitialConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "routes.conf")
	require.NoError(t, os.WriteFile(path, []byte("chain_a"), 0o644))

	rt := router.New(router.Config{})
	w, err := router.NewWatcher(rt, path, loadLines, nil)
	require.NoError(t, err)
	defer w.Stop()

	r := record.New(record.Info, "x", time.Now())
	assert.Equal(t, []string{"chain_a"}, rt.Resolve(r))
}

func TestWatcherReloadsOnFileChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "routes.conf")
	require.NoError(t, os.WriteFile(path, []byte("chain_a"), 0o644))

	rt := router.New(router.Config{})
	w, err := router.NewWatcher(rt, path, loadLines, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("chain_b"), 0o644))

	r := record.New(record.Info, "x", time.Now())
	require.Eventually(t, func() bool {
		got := rt.Resolve(r)
		return len(got) == 1 && got[0] == "chain_b"
	}, time.Second, 10*time.Millisecond, fmt.Sprintf("expected chain_b, route list never updated from %v", rt.Resolve(r)))
}
