package scheduler

import (
	"sync"
	"testing"
	"time"
)

type fakeSweeper struct {
	mu    sync.Mutex
	calls []time.Duration
}

func (f *fakeSweeper) SweepIdle(now time.Time, ttl time.Duration) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, ttl)
	return 1
}

func (f *fakeSweeper) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// TestRunManualSweepPassesTTL verifies the sweep uses the configured idle TTL.
func TestRunManualSweepPassesTTL(t *testing.T) {
	f := &fakeSweeper{}
	s := New(f, 2*time.Hour, time.Minute)
	s.RunManualSweep()
	if f.count() != 1 || f.calls[0] != 2*time.Hour {
		t.Fatalf("unexpected sweeps %v", f.calls)
	}
}

// TestStartSchedulesSweep verifies the job runs once started.
func TestStartSchedulesSweep(t *testing.T) {
	f := &fakeSweeper{}
	s := New(f, time.Hour, 20*time.Millisecond)
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for f.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if f.count() == 0 {
		t.Fatalf("expected the sweep job to run")
	}
}
