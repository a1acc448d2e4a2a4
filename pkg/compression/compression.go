// Package compression wires the rotating file sink's optional on-disk
// backup compression to the pack's compression libraries, adapted from
// _examples/mdzesseis-log_capturer_go/pkg/compression/http_compressor.go's
// algorithm registry (which compressed HTTP response bodies; here the same
// algorithm set compresses rotated backup files instead). The critical
// writer's WAL is not compressed.
package compression

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/sirupsen/logrus"
)

// Algorithm selects a compression codec. AlgorithmNone is the default so
// existing rotation/WAL behavior holds unchanged when compression is not
// configured.
type Algorithm string

const (
	AlgorithmNone   Algorithm = "none"
	AlgorithmGzip   Algorithm = "gzip"
	AlgorithmZstd   Algorithm = "zstd"
	AlgorithmLZ4    Algorithm = "lz4"
	AlgorithmSnappy Algorithm = "snappy"
)

// Compress encodes data with the given algorithm.
func Compress(data []byte, algo Algorithm) ([]byte, error) {
	switch algo {
	case AlgorithmNone, "":
		return data, nil
	case AlgorithmGzip:
		var buf bytes.Buffer
		w := gzip.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case AlgorithmZstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}
		defer enc.Close()
		return enc.EncodeAll(data, nil), nil
	case AlgorithmLZ4:
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case AlgorithmSnappy:
		return snappy.Encode(nil, data), nil
	default:
		return nil, fmt.Errorf("compression: unknown algorithm %q", algo)
	}
}

// Decompress reverses Compress.
func Decompress(data []byte, algo Algorithm) ([]byte, error) {
	switch algo {
	case AlgorithmNone, "":
		return data, nil
	case AlgorithmGzip:
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(r)
	case AlgorithmZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return dec.DecodeAll(data, nil)
	case AlgorithmLZ4:
		r := lz4.NewReader(bytes.NewReader(data))
		return io.ReadAll(r)
	case AlgorithmSnappy:
		return snappy.Decode(nil, data)
	default:
		return nil, fmt.Errorf("compression: unknown algorithm %q", algo)
	}
}

// Extension returns the conventional file suffix for algo, or "" for none.
func Extension(algo Algorithm) string {
	switch algo {
	case AlgorithmGzip:
		return ".gz"
	case AlgorithmZstd:
		return ".zst"
	case AlgorithmLZ4:
		return ".lz4"
	case AlgorithmSnappy:
		return ".snappy"
	default:
		return ""
	}
}

// CompressFileInPlace reads path, compresses it with algo, writes
// path+Extension(algo), and removes the original. Errors are logged, not
// returned, matching the rotating sink's best-effort approach to
// post-rotation housekeeping (it runs in a background goroutine after
// rotation already succeeded).
func CompressFileInPlace(path string, algo Algorithm, log *logrus.Logger) {
	if algo == AlgorithmNone || algo == "" {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.WithError(err).WithField("path", path).Warn("compression: read failed")
		return
	}
	compressed, err := Compress(data, algo)
	if err != nil {
		log.WithError(err).WithField("path", path).Warn("compression: encode failed")
		return
	}
	dst := path + Extension(algo)
	if err := os.WriteFile(dst, compressed, 0o644); err != nil {
		log.WithError(err).WithField("path", dst).Warn("compression: write failed")
		return
	}
	if err := os.Remove(path); err != nil {
		log.WithError(err).WithField("path", path).Warn("compression: cleanup failed")
	}
}
