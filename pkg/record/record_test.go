package record_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logpipe/pkg/record"
)

// TestFieldsRoundTripPreservesOrderAndKind verifies the four structured
// field kinds round-trip byte-for-byte through the Builder, and
// that insertion order is preserved end to end. go-cmp gives an exact
// structural diff instead of a reflected assert.Equal, which matters here
// since Fields holds unexported-looking floats/bools that must compare by
// value, not by pointer.
func TestFieldsRoundTripPreservesOrderAndKind(t *testing.T) {
	want := record.Fields{
		record.String("svc", "checkout"),
		record.Int64("attempt", 3),
		record.Float64("latency_ms", 12.5),
		record.Bool("retryable", true),
	}

	b := record.NewBuilder(record.Info, "payment failed", time.Now())
	for _, f := range want {
		b.AddField(f)
	}
	got := b.Emit().Fields

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("fields round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestWithFieldsPreservesExistingOrder(t *testing.T) {
	base := record.New(record.Info, "start", time.Now())
	base = base.WithFields(record.Fields{record.String("a", "1")})
	derived := base.WithFields(record.Fields{record.String("b", "2")})

	require.Len(t, derived.Fields, 2)
	assert.Equal(t, "a", derived.Fields[0].Key)
	assert.Equal(t, "b", derived.Fields[1].Key)
	// The original record's Fields slice must not be mutated by deriving.
	assert.Len(t, base.Fields, 1)
}

func TestCloneIsIndependentOfMutationToBackingArray(t *testing.T) {
	original := record.Fields{record.String("k", "v")}
	clone := original.Clone()
	original[0] = record.String("k", "changed")

	assert.Equal(t, "v", clone[0].Str)
}

func TestParseLevelRoundTripsKnownNames(t *testing.T) {
	for _, lvl := range []record.Level{record.Trace, record.Debug, record.Info, record.Warning, record.Error, record.Critical, record.Off} {
		assert.Equal(t, lvl, record.ParseLevel(lvl.String()))
	}
	assert.Equal(t, record.Info, record.ParseLevel("not-a-real-level"))
}
