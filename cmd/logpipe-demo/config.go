package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"logpipe/pkg/record"
)

// fileConfig is the top-level YAML shape for the demo binary. Configuration
// loading is an ambient/demo concern only, never a pipeline-core
// dependency; this struct exists purely to translate a YAML document into
// the per-component Config values pkg/logger, pkg/decorator, pkg/sinks,
// and pkg/critical already expose, the same split
// _examples/mdzesseis-log_capturer_go/internal/config/config.go keeps
// from its own types.Config.
type fileConfig struct {
	MinLevel string `yaml:"min_level"`

	RotatingFile struct {
		Path       string `yaml:"path"`
		MaxBytes   int64  `yaml:"max_bytes"`
		MaxBackups int    `yaml:"max_backups"`
		Compress   bool   `yaml:"compress"`
		Algorithm  string `yaml:"algorithm"`
	} `yaml:"rotating_file"`

	Async struct {
		QueueCapacity  int    `yaml:"queue_capacity"`
		OverflowPolicy string `yaml:"overflow_policy"`
	} `yaml:"async"`

	Buffered struct {
		MaxEntries    int           `yaml:"max_entries"`
		FlushInterval time.Duration `yaml:"flush_interval"`
	} `yaml:"buffered"`

	Critical struct {
		Threshold          string `yaml:"threshold"`
		WriteAheadLog      bool   `yaml:"write_ahead_log"`
		WALPath            string `yaml:"wal_path"`
		SyncOnCritical     bool   `yaml:"sync_on_critical"`
		TimeoutMs          uint32 `yaml:"timeout_ms"`
	} `yaml:"critical"`

	Dedup struct {
		Enabled bool          `yaml:"enabled"`
		TTL     time.Duration `yaml:"ttl"`
	} `yaml:"dedup"`

	RoutesFile string `yaml:"routes_file"`
}

// defaultConfig mirrors internal/config/config.go's applyDefaults step:
// every field has a sane zero-config value so the demo runs with an
// empty/missing file.
func defaultConfig() fileConfig {
	var c fileConfig
	c.MinLevel = "info"
	c.RotatingFile.Path = "logpipe-demo.log"
	c.RotatingFile.MaxBytes = 10 * 1024 * 1024
	c.RotatingFile.MaxBackups = 5
	c.RotatingFile.Algorithm = "none"
	c.Async.QueueCapacity = 1024
	c.Async.OverflowPolicy = "block"
	c.Buffered.MaxEntries = 64
	c.Buffered.FlushInterval = 500 * time.Millisecond
	c.Critical.Threshold = "critical"
	c.Critical.SyncOnCritical = true
	c.Critical.TimeoutMs = 5000
	c.Dedup.TTL = time.Minute
	return c
}

// loadConfig loads YAML from path over top of defaultConfig, matching
// internal/config/config.go's "defaults first, file overrides" order. A
// missing path is not an error: the demo runs on defaults alone, the same
// permissive behavior internal/config/config.go falls back to when its
// config file is absent.
func loadConfig(path string) (fileConfig, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("logpipe-demo: read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("logpipe-demo: parse config %s: %w", path, err)
	}
	return cfg, nil
}

func (c fileConfig) minLevel() record.Level {
	return record.ParseLevel(c.MinLevel)
}

func (c fileConfig) criticalThreshold() record.Level {
	return record.ParseLevel(c.Critical.Threshold)
}
