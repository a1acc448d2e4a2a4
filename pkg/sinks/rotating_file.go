// Package sinks implements the terminal writers of the pipeline: the
// rotating file sink (C11) and a couple of small in-memory/console sinks
// used by tests and the demo binary.
//
// The rotating file sink is grounded on
// _examples/mdzesseis-log_capturer_go/internal/sinks/local_file_sink.go's
// rotateFiles/rotateFile/compressFile shape, adapted to a size-triggered
// active file plus a bounded, numbered backup chain.
package sinks

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"logpipe/pkg/compression"
	"logpipe/pkg/errors"
	"logpipe/pkg/record"
	"logpipe/pkg/writer"
)

// RotatingFileConfig configures the rotating file sink.
type RotatingFileConfig struct {
	BasePath   string
	MaxBytes   int64
	MaxBackups int
	Formatter  writer.Formatter
	// Compress, if set, compresses the newest backup with Algorithm (gzip,
	// zstd, lz4 or snappy) in a background goroutine right after rotation
	// moves it into place. With Algorithm empty or "none" nothing is
	// compressed.
	Compress  bool
	Algorithm compression.Algorithm
}

// RotatingFile is a size-triggered, bounded-backup-count file sink.
//
// Open Question resolution (see DESIGN.md): the active file is unindexed
// (base_path itself, e.g. "app.log"), matching
// _examples/mdzesseis-log_capturer_go's LocalFileSink convention; backups
// are base.1.log (most recent) through base.max_backups.log.
type RotatingFile struct {
	cfg RotatingFileConfig
	log *logrus.Logger

	mu          sync.Mutex
	file        *os.File
	currentSize int64
	healthy     bool
}

// NewRotatingFile constructs the sink and opens (or creates) the active
// file.
func NewRotatingFile(cfg RotatingFileConfig, log *logrus.Logger) (*RotatingFile, error) {
	if cfg.BasePath == "" {
		return nil, errors.InvalidArgument("rotating_file", "new", "base_path must not be empty")
	}
	if cfg.MaxBytes <= 0 {
		return nil, errors.InvalidArgument("rotating_file", "new", "max_bytes must be > 0")
	}
	if cfg.MaxBackups < 0 {
		return nil, errors.InvalidArgument("rotating_file", "new", "max_backups must be >= 0")
	}
	if cfg.Formatter == nil {
		cfg.Formatter = DefaultFormatter{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	f, err := os.OpenFile(cfg.BasePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.IoError("rotating_file", "new", err.Error()).Wrap(err)
	}
	info, err := f.Stat()
	var size int64
	if err == nil {
		size = info.Size()
	}

	return &RotatingFile{cfg: cfg, log: log, file: f, currentSize: size, healthy: true}, nil
}

func (s *RotatingFile) backupName(i int) string {
	ext := filepath.Ext(s.cfg.BasePath)
	base := s.cfg.BasePath[:len(s.cfg.BasePath)-len(ext)]
	return fmt.Sprintf("%s.%d%s", base, i, ext)
}

// Write formats the record, rotating first if the write would exceed
// MaxBytes, then appends it to the active file.
func (s *RotatingFile) Write(r record.Record) error {
	payload := s.cfg.Formatter.Format(r)
	payload = append(payload, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentSize+int64(len(payload)) > s.cfg.MaxBytes && s.currentSize > 0 {
		if err := s.rotateLocked(); err != nil {
			s.log.WithError(err).Warn("rotation failed, continuing with existing handle")
			s.healthy = false
		}
	}

	n, err := s.file.Write(payload)
	s.currentSize += int64(n)
	if err != nil {
		s.healthy = false
		return errors.IoError("rotating_file", "write", err.Error()).Wrap(err)
	}
	s.healthy = true
	return nil
}

func (s *RotatingFile) rotateLocked() error {
	if s.file != nil {
		s.file.Close()
	}

	if s.cfg.MaxBackups <= 0 {
		f, err := os.OpenFile(s.cfg.BasePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return errors.RotationFailed("rotating_file", "rotate", err.Error()).Wrap(err)
		}
		s.file = f
		s.currentSize = 0
		return nil
	}

	os.Remove(s.backupName(s.cfg.MaxBackups))
	for i := s.cfg.MaxBackups - 1; i >= 1; i-- {
		src := s.backupName(i)
		if _, err := os.Stat(src); err == nil {
			os.Rename(src, s.backupName(i+1))
		}
	}
	if _, err := os.Stat(s.cfg.BasePath); err == nil {
		dst := s.backupName(1)
		if err := os.Rename(s.cfg.BasePath, dst); err != nil {
			if f, ferr := os.OpenFile(s.cfg.BasePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); ferr == nil {
				s.file = f
			}
			return errors.RotationFailed("rotating_file", "rotate", err.Error()).Wrap(err)
		}
		if s.cfg.Compress {
			go compression.CompressFileInPlace(dst, s.cfg.Algorithm, s.log)
		}
	}

	f, err := os.OpenFile(s.cfg.BasePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return errors.RotationFailed("rotating_file", "rotate", err.Error()).Wrap(err)
	}
	s.file = f
	s.currentSize = 0
	return nil
}

// Flush fsyncs the current file handle.
func (s *RotatingFile) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	if err := s.file.Sync(); err != nil {
		return errors.IoError("rotating_file", "flush", err.Error()).Wrap(err)
	}
	return nil
}

func (s *RotatingFile) Healthy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.healthy
}

func (s *RotatingFile) Name() string {
	return "rotating_file_" + filepath.Base(s.cfg.BasePath)
}

// Close releases the file handle. Not part of the Writer contract; callers
// that own a RotatingFile directly (rather than through a sealed chain)
// may call it during shutdown.
func (s *RotatingFile) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

var _ writer.Writer = (*RotatingFile)(nil)
