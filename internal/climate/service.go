package climate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Options tunes the request-time query path.
type Options struct {
	// QueryTimeout bounds each per-request store query (0 = caller's deadline only).
	QueryTimeout time.Duration
	// BreakerFailures is the number of consecutive store failures that opens the breaker.
	BreakerFailures uint32
	// BreakerCooldown is how long the breaker stays open before probing again.
	BreakerCooldown time.Duration
}

// Service owns the startup report and answers per-request aggregate queries.
type Service struct {
	store        Store
	report       *Report
	circuit      *gobreaker.CircuitBreaker
	queryTimeout time.Duration
	logger       *zap.SugaredLogger
}

// NewService builds the report and returns a Service ready to serve requests.
// Any error is fatal: the caller must not start accepting connections.
func NewService(ctx context.Context, store Store, logger *zap.SugaredLogger, opts Options) (*Service, error) {
	if err := store.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping store: %w", err)
	}

	report, err := BuildReport(ctx, store, logger)
	if err != nil {
		return nil, err
	}

	failures := opts.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	cooldown := opts.BreakerCooldown
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "store",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cooldown,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warnw("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &Service{
		store:        store,
		report:       report,
		circuit:      cb,
		queryTimeout: opts.QueryTimeout,
		logger:       logger,
	}, nil
}

// Report returns the immutable startup snapshots.
func (s *Service) Report() *Report {
	return s.report
}

// RangeStats computes min/avg/max temperature over all measurements in r.
// An empty match, including an end before start, yields zero Count and nil fields.
func (s *Service) RangeStats(ctx context.Context, r DateRange) (TemperatureStats, error) {
	if r.End != nil && r.End.Before(r.Start) {
		s.logger.Debugw("range end before start", "start", FormatDate(r.Start), "end", FormatDate(*r.End))
		return TemperatureStats{}, nil
	}

	if s.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.queryTimeout)
		defer cancel()
	}

	result, err := s.circuit.Execute(func() (interface{}, error) {
		return s.store.TemperatureStats(ctx, StatsFilter{Range: &r})
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return TemperatureStats{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
		return TemperatureStats{}, err
	}

	stats, ok := result.(TemperatureStats)
	if !ok {
		return TemperatureStats{}, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return stats, nil
}

// Ping checks that the store still answers.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
