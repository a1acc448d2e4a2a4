package compression_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logpipe/pkg/compression"
)

func TestCompressDecompressRoundTrip(t *testing.T) {
	payload := []byte(`{"level":"info","message":"a payload repeated for compressibility a payload repeated for compressibility"}`)

	for _, algo := range []compression.Algorithm{
		compression.AlgorithmNone,
		compression.AlgorithmGzip,
		compression.AlgorithmZstd,
		compression.AlgorithmLZ4,
		compression.AlgorithmSnappy,
	} {
		t.Run(string(algo), func(t *testing.T) {
			compressed, err := compression.Compress(payload, algo)
			require.NoError(t, err)

			decompressed, err := compression.Decompress(compressed, algo)
			require.NoError(t, err)
			assert.Equal(t, payload, decompressed)
		})
	}
}

func TestCompressUnknownAlgorithmErrors(t *testing.T) {
	_, err := compression.Compress([]byte("x"), compression.Algorithm("bogus"))
	assert.Error(t, err)

	_, err = compression.Decompress([]byte("x"), compression.Algorithm("bogus"))
	assert.Error(t, err)
}

func TestExtensionMapping(t *testing.T) {
	assert.Equal(t, ".gz", compression.Extension(compression.AlgorithmGzip))
	assert.Equal(t, ".zst", compression.Extension(compression.AlgorithmZstd))
	assert.Equal(t, ".lz4", compression.Extension(compression.AlgorithmLZ4))
	assert.Equal(t, ".snappy", compression.Extension(compression.AlgorithmSnappy))
	assert.Equal(t, "", compression.Extension(compression.AlgorithmNone))
}
