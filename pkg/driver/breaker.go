package driver

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
	"github.com/zeus1292/investorlens/pkg/types"
)

// BreakerConfig tunes the circuit breaker around a graph driver.
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	ReadyToTripRatio float64
}

// BreakerDriver wraps a GraphDriver with circuit breaking. Failures from
// the underlying store surface as GraphUnavailableError so callers can
// retry or degrade; lookups that merely miss (ErrCompanyNotFound) do not
// count against the breaker.
type BreakerDriver struct {
	inner GraphDriver
	cb    *gobreaker.CircuitBreaker
	log   *slog.Logger
}

// NewBreakerDriver wraps inner with a circuit breaker.
func NewBreakerDriver(inner GraphDriver, cfg BreakerConfig, log *slog.Logger) *BreakerDriver {
	if cfg.Name == "" {
		cfg.Name = "graph"
	}
	if cfg.ReadyToTripRatio <= 0 {
		cfg.ReadyToTripRatio = 0.6
	}
	if log == nil {
		log = slog.Default()
	}

	st := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= cfg.ReadyToTripRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, types.ErrCompanyNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("graph circuit breaker state change",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	}

	return &BreakerDriver{inner: inner, cb: gobreaker.NewCircuitBreaker(st), log: log}
}

func (b *BreakerDriver) execute(op string, fn func() (any, error)) (any, error) {
	out, err := b.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, types.ErrCompanyNotFound) {
			return nil, err
		}
		return nil, &types.GraphUnavailableError{Op: op, Cause: err}
	}
	return out, nil
}

// GetCompany implements GraphDriver.
func (b *BreakerDriver) GetCompany(ctx context.Context, id string) (types.Company, error) {
	out, err := b.execute("get_company", func() (any, error) {
		return b.inner.GetCompany(ctx, id)
	})
	if err != nil {
		return types.Company{}, err
	}
	return out.(types.Company), nil
}

// ListCompanies implements GraphDriver.
func (b *BreakerDriver) ListCompanies(ctx context.Context) ([]types.Company, error) {
	out, err := b.execute("list_companies", func() (any, error) {
		return b.inner.ListCompanies(ctx)
	})
	if err != nil {
		return nil, err
	}
	return out.([]types.Company), nil
}

// Neighbors implements GraphDriver.
func (b *BreakerDriver) Neighbors(ctx context.Context, id string, edgeTypes []types.EdgeType) ([]types.Edge, error) {
	out, err := b.execute("neighbors", func() (any, error) {
		return b.inner.Neighbors(ctx, id, edgeTypes)
	})
	if err != nil {
		return nil, err
	}
	return out.([]types.Edge), nil
}

// EdgesBetween implements GraphDriver.
func (b *BreakerDriver) EdgesBetween(ctx context.Context, a, c string) ([]types.Edge, error) {
	out, err := b.execute("edges_between", func() (any, error) {
		return b.inner.EdgesBetween(ctx, a, c)
	})
	if err != nil {
		return nil, err
	}
	return out.([]types.Edge), nil
}

// CommonNeighbors implements GraphDriver.
func (b *BreakerDriver) CommonNeighbors(ctx context.Context, a, c string, edgeType types.EdgeType) ([]string, error) {
	out, err := b.execute("common_neighbors", func() (any, error) {
		return b.inner.CommonNeighbors(ctx, a, c, edgeType)
	})
	if err != nil {
		return nil, err
	}
	return out.([]string), nil
}

// PartnerCounts implements GraphDriver.
func (b *BreakerDriver) PartnerCounts(ctx context.Context, ids []string) (map[string]int, error) {
	out, err := b.execute("partner_counts", func() (any, error) {
		return b.inner.PartnerCounts(ctx, ids)
	})
	if err != nil {
		return nil, err
	}
	return out.(map[string]int), nil
}

// Subgraph implements GraphDriver.
func (b *BreakerDriver) Subgraph(ctx context.Context, ids []string) ([]types.Edge, error) {
	out, err := b.execute("subgraph", func() (any, error) {
		return b.inner.Subgraph(ctx, ids)
	})
	if err != nil {
		return nil, err
	}
	return out.([]types.Edge), nil
}

// Close implements GraphDriver. It bypasses the breaker.
func (b *BreakerDriver) Close(ctx context.Context) error {
	return b.inner.Close(ctx)
}
