package investorlens

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	lens "github.com/zeus1292/investorlens"
	"github.com/zeus1292/investorlens/pkg/config"
	"github.com/zeus1292/investorlens/pkg/driver"
	"github.com/zeus1292/investorlens/pkg/logger"
	"github.com/zeus1292/investorlens/pkg/snapshot"
	"github.com/zeus1292/investorlens/pkg/telemetry"
)

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func buildLogger(cfg *config.Config) (*slog.Logger, error) {
	handler := logger.NewHandler(os.Stderr, logger.Options{
		Level:   parseLevel(cfg.Log.Level),
		NoColor: cfg.Log.NoColor,
	})
	if cfg.Telemetry.Enabled {
		parquetHandler, err := telemetry.NewParquetHandler(handler, cfg.Telemetry.ParquetPath, slog.LevelError)
		if err != nil {
			return nil, fmt.Errorf("failed to set up error tracking: %w", err)
		}
		return slog.New(parquetHandler), nil
	}
	return slog.New(handler), nil
}

// buildDriver opens the configured graph backend. When the backend is
// unreachable and a snapshot is configured, the snapshot serves instead.
func buildDriver(ctx context.Context, cfg *config.Config, log *slog.Logger) (driver.GraphDriver, error) {
	switch cfg.Database.Driver {
	case "neo4j":
		nd, err := driver.NewNeo4jDriver(cfg.Database.URI, cfg.Database.Username,
			cfg.Database.Password, cfg.Database.Database)
		if err == nil {
			err = nd.VerifyConnectivity(ctx)
		}
		if err != nil {
			if cfg.Snapshot.Enabled {
				log.Warn("graph store unreachable, serving from snapshot", "error", err)
				return driverFromSnapshot(cfg, log)
			}
			return nil, fmt.Errorf("failed to connect to neo4j: %w", err)
		}

		var d driver.GraphDriver = nd
		if cfg.CircuitBreaker.Enabled {
			d = driver.NewBreakerDriver(d, driver.BreakerConfig{
				Name:             "neo4j",
				MaxRequests:      cfg.CircuitBreaker.MaxRequests,
				Interval:         time.Duration(cfg.CircuitBreaker.Interval) * time.Second,
				Timeout:          time.Duration(cfg.CircuitBreaker.Timeout) * time.Second,
				ReadyToTripRatio: cfg.CircuitBreaker.ReadyToTripRatio,
			}, log)
		}
		return d, nil

	case "memory":
		d, err := driver.NewMemoryDriverFromFile(cfg.Database.DatasetPath)
		if err != nil {
			if cfg.Snapshot.Enabled {
				log.Warn("dataset unavailable, serving from snapshot",
					"path", cfg.Database.DatasetPath, "error", err)
				return driverFromSnapshot(cfg, log)
			}
			return nil, fmt.Errorf("failed to load dataset: %w", err)
		}
		return d, nil

	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}
}

func driverFromSnapshot(cfg *config.Config, log *slog.Logger) (driver.GraphDriver, error) {
	store, err := snapshot.Open(cfg.Snapshot.Path, log)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	ds, err := store.LoadDataset()
	if err != nil {
		return nil, err
	}
	return driver.NewMemoryDriver(ds)
}

// buildClient assembles the search client from configuration.
func buildClient(ctx context.Context, cfg *config.Config, log *slog.Logger) (*lens.Client, error) {
	d, err := buildDriver(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	opts := []lens.Option{
		lens.WithLogger(log),
		lens.WithFuzzyThreshold(cfg.Search.FuzzyThreshold),
		lens.WithTraversalTimeout(time.Duration(cfg.Search.TraversalTimeoutMS) * time.Millisecond),
		lens.WithRetryBackoff(time.Duration(cfg.Search.RetryBackoffMS) * time.Millisecond),
		lens.WithTopN(cfg.Search.TopN),
		lens.WithAttributeLimit(cfg.Search.AttributeLimit),
	}
	if cfg.Telemetry.Enabled {
		recorder, err := telemetry.NewRecorder(cfg.Telemetry.ParquetPath, cfg.Telemetry.BatchSize)
		if err != nil {
			return nil, fmt.Errorf("failed to set up telemetry: %w", err)
		}
		opts = append(opts, lens.WithRecorder(recorder))
	}

	client, err := lens.New(ctx, d, opts...)
	if err != nil {
		_ = d.Close(ctx)
		return nil, err
	}
	return client, nil
}
