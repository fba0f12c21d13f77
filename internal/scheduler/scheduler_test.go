package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestRegisterRunsHandlerOnTick(t *testing.T) {
	s := New(99) // effectively unreachable pressure threshold
	var calls int32
	if err := s.Register("test-job", "@every 50ms", 10, func(ctx context.Context, concurrency int) {
		atomic.AddInt32(&calls, 1)
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	s.Start()
	defer s.Stop(context.Background())

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&calls) == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if atomic.LoadInt32(&calls) == 0 {
		t.Fatal("expected handler to run at least once")
	}
}

func TestAdmittedConcurrencyNeverBelowOne(t *testing.T) {
	s := New(85)
	s.memPressurePercent = 0 // always under pressure
	if got := s.admittedConcurrency(1); got != 1 {
		t.Fatalf("admittedConcurrency(1) = %d, want 1", got)
	}
}
