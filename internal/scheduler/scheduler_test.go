package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

type stubPinger struct {
	calls atomic.Int32

	mu  sync.Mutex
	err error
}

func (p *stubPinger) Ping(ctx context.Context) error {
	p.calls.Add(1)
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *stubPinger) fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

func TestProbeRecordsFailureAndRecovery(t *testing.T) {
	p := &stubPinger{}
	s := New(p, time.Hour, zap.NewNop().Sugar())

	if !s.Health().OK {
		t.Fatal("expected healthy initial state")
	}

	p.fail(errors.New("disk gone"))
	s.Probe()
	h := s.Health()
	if h.OK {
		t.Fatal("expected unhealthy after failed probe")
	}
	if h.Error != "disk gone" {
		t.Fatalf("unexpected error text %q", h.Error)
	}

	p.fail(nil)
	s.Probe()
	if !s.Health().OK {
		t.Fatal("expected healthy after successful probe")
	}
	if got := p.calls.Load(); got != 2 {
		t.Fatalf("expected 2 pings, got %d", got)
	}
}

func TestStartRunsOnSchedule(t *testing.T) {
	p := &stubPinger{}
	s := New(p, time.Second, zap.NewNop().Sugar())
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	deadline := time.Now().Add(5 * time.Second)
	for p.calls.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("probe never ran")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
