// Command logpipe-demo wires the pipeline core (pkg/logger, pkg/router,
// pkg/decorator, pkg/sinks, pkg/critical) into a runnable binary, the way
// _examples/mdzesseis-log_capturer_go's cmd/main.go -> internal/app.App
// wires its dispatcher and sinks: load YAML config, build one writer
// chain per configured sink, install the signal adapter, run until
// interrupted, and drain on exit.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"logpipe/pkg/compression"
	"logpipe/pkg/critical"
	"logpipe/pkg/decorator"
	"logpipe/pkg/dedup"
	"logpipe/pkg/logger"
	"logpipe/pkg/metrics"
	"logpipe/pkg/record"
	"logpipe/pkg/router"
	"logpipe/pkg/signals"
	"logpipe/pkg/sinks"
	"logpipe/pkg/writer"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to a logpipe-demo YAML config file")
	flag.Parse()

	diag := logrus.StandardLogger()

	if err := run(configPath, diag); err != nil {
		fmt.Fprintf(os.Stderr, "logpipe-demo: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, diag *logrus.Logger) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	reg := metrics.NewRegistry(prometheus.NewRegistry())

	mainSink, err := sinks.NewRotatingFile(sinks.RotatingFileConfig{
		BasePath:   cfg.RotatingFile.Path,
		MaxBytes:   cfg.RotatingFile.MaxBytes,
		MaxBackups: cfg.RotatingFile.MaxBackups,
		Compress:   cfg.RotatingFile.Compress,
		Algorithm:  compression.Algorithm(cfg.RotatingFile.Algorithm),
	}, diag)
	if err != nil {
		return fmt.Errorf("build rotating file sink: %w", err)
	}
	defer mainSink.Close()

	normalChain, err := buildNormalChain(mainSink, cfg, reg, diag)
	if err != nil {
		return fmt.Errorf("build normal chain: %w", err)
	}

	criticalWriter, err := critical.New(normalChain, mainSink, critical.Config{
		CriticalThreshold:      cfg.criticalThreshold(),
		ForceFlushOnCritical:   true,
		EnableSignalHandlers:   true,
		WriteAheadLog:          cfg.Critical.WriteAheadLog,
		WALPath:                cfg.Critical.WALPath,
		SyncOnCritical:         cfg.Critical.SyncOnCritical,
		CriticalWriteTimeoutMs: cfg.Critical.TimeoutMs,
	})
	if err != nil {
		return fmt.Errorf("build critical writer: %w", err)
	}
	defer criticalWriter.Close()

	if n, err := criticalWriter.Recover(); err != nil {
		diag.WithError(err).Warn("WAL recovery failed")
	} else if n > 0 {
		diag.WithField("replayed", n).Info("WAL recovery replayed pending critical records")
	}

	registry := signals.NewRegistry()
	registry.Register("main", criticalWriter)
	adapter := signals.NewAdapter(registry, diag)
	adapter.Install()
	defer adapter.Uninstall()

	rt := router.New(router.Config{
		Routes: []router.Route{router.NewLevelRoute(record.Trace, false, "main")},
	})
	lg := logger.New(logger.Config{MinLevel: cfg.minLevel()}, rt, diag)
	if err := lg.AddWriter("main", criticalWriter); err != nil {
		return fmt.Errorf("register writer chain: %w", err)
	}
	if err := lg.Start(); err != nil {
		return fmt.Errorf("start logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	diag.Info("logpipe-demo running, emitting a startup record then waiting for interrupt")
	_ = lg.Log(ctx, record.Info, "logpipe-demo started", record.String("config", configPath))

	<-ctx.Done()

	diag.Info("shutting down")
	if err := lg.Stop(); err != nil {
		diag.WithError(err).Warn("logger stop reported an error")
	}
	return nil
}

// buildNormalChain constructs the sealed bottom-up decorator stack used for
// sub-critical records: sink <- optional dedup filter <- buffered
// coalescing <- async boundary, mirroring
// _examples/mdzesseis-log_capturer_go's dispatcher-owns-sinks-behind-a-worker
// shape but generalized across the full decorator family.
func buildNormalChain(mainSink writer.Writer, cfg fileConfig, reg *metrics.Registry, diag *logrus.Logger) (writer.Writer, error) {
	var inner writer.Writer = mainSink

	if cfg.Dedup.Enabled {
		filtered, err := decorator.NewFiltered(inner, dedup.New(dedup.Config{TTL: cfg.Dedup.TTL, IncludeCategory: true}))
		if err != nil {
			return nil, err
		}
		inner = filtered
	}

	buffered, err := decorator.NewBuffered(inner, decorator.BufferedConfig{
		MaxEntries:    cfg.Buffered.MaxEntries,
		FlushInterval: cfg.Buffered.FlushInterval,
	}, diag)
	if err != nil {
		return nil, err
	}

	async, err := decorator.NewAsync(buffered, decorator.AsyncConfig{
		QueueCapacity:  cfg.Async.QueueCapacity,
		OverflowPolicy: parseOverflowPolicy(cfg.Async.OverflowPolicy),
	}, reg, diag)
	if err != nil {
		return nil, err
	}
	if err := async.Start(); err != nil {
		return nil, err
	}
	return async, nil
}

func parseOverflowPolicy(s string) decorator.OverflowPolicy {
	switch s {
	case "drop_newest":
		return decorator.PolicyDropNewest
	case "drop_oldest":
		return decorator.PolicyDropOldest
	default:
		return decorator.PolicyBlock
	}
}
