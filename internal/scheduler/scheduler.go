package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// Pinger is anything whose liveness can be probed.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health is the outcome of the most recent probe.
type Health struct {
	OK        bool      `json:"ok"`
	CheckedAt time.Time `json:"checkedAt"`
	Error     string    `json:"error,omitempty"`
}

// Scheduler periodically probes the store and remembers the last result.
type Scheduler struct {
	scheduler *gocron.Scheduler
	target    Pinger
	interval  time.Duration
	timeout   time.Duration
	logger    *zap.SugaredLogger

	mu   sync.RWMutex
	last Health
}

// New creates a new Scheduler. The initial state is healthy, since startup
// already proved the store reachable.
func New(target Pinger, interval time.Duration, logger *zap.SugaredLogger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		target:    target,
		interval:  interval,
		timeout:   5 * time.Second,
		logger:    logger,
		last:      Health{OK: true, CheckedAt: time.Now().UTC()},
	}
}

// Start schedules the probe job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	interval := s.interval
	if interval <= 0 {
		interval = time.Minute
	}

	_, err := s.scheduler.Every(interval).WaitForSchedule().Do(s.Probe)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Probe pings the target once and records the outcome.
func (s *Scheduler) Probe() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	h := Health{OK: true, CheckedAt: time.Now().UTC()}
	if err := s.target.Ping(ctx); err != nil {
		h.OK = false
		h.Error = err.Error()
		s.logger.Warnw("store probe failed", "error", err)
	} else {
		s.logger.Debugw("store probe ok")
	}

	s.mu.Lock()
	prev := s.last
	s.last = h
	s.mu.Unlock()

	if prev.OK != h.OK && h.OK {
		s.logger.Infow("store recovered")
	}
}

// Health returns the last recorded probe result.
func (s *Scheduler) Health() Health {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
