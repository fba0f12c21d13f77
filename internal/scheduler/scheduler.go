// Package scheduler wraps robfig/cron/v3 into a named-job registry:
// each job has a name, cadence, handler, and a skip-on-overlap
// re-entrancy guard, generalizing the teacher's
// internal/heartbeat.Heartbeat ticker loop from one hardcoded interval
// into a shared registry any subsystem can add cadenced work to.
package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/ymonitor/ymonitor/internal/logging"
)

// Handler runs one scheduled tick. concurrency is the admitted
// per-device fan-out width for this tick, shrunk from baseConcurrency
// under host memory pressure.
type Handler func(ctx context.Context, concurrency int)

// job tracks one registered cadence and its re-entrancy guard. The
// atomic.Bool guard is the same primitive the teacher uses for
// workerpool.Pool.accepting, repurposed here from "pool is open" to
// "this job isn't already running".
type job struct {
	name            string
	baseConcurrency int
	handler         Handler
	running         atomic.Bool
}

// Scheduler runs named cron jobs with cooperative cancellation and a
// per-job re-entrancy guard: an overlapping tick is skipped and logged
// rather than queued or run concurrently.
type Scheduler struct {
	cron *cron.Cron
	jobs map[string]*job

	memPressurePercent float64
}

func New(memPressurePercent float64) *Scheduler {
	if memPressurePercent <= 0 {
		memPressurePercent = 85
	}
	return &Scheduler{
		cron:               cron.New(),
		jobs:               make(map[string]*job),
		memPressurePercent: memPressurePercent,
	}
}

// Register adds a named job at the given cron spec (e.g. "@every
// 5m"). baseConcurrency is the per-tick device fan-out width before
// memory-pressure admission control shrinks it.
func (s *Scheduler) Register(name, cronSpec string, baseConcurrency int, handler Handler) error {
	j := &job{name: name, baseConcurrency: baseConcurrency, handler: handler}
	s.jobs[name] = j

	log := logging.L("scheduler")
	_, err := s.cron.AddFunc(cronSpec, func() {
		if !j.running.CompareAndSwap(false, true) {
			log.Warn("skipped overlapping tick", "job", name)
			return
		}
		defer j.running.Store(false)

		concurrency := s.admittedConcurrency(j.baseConcurrency)
		if concurrency < j.baseConcurrency {
			log.Warn("shrinking tick concurrency under memory pressure", "job", name, "base", j.baseConcurrency, "admitted", concurrency)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		j.handler(ctx, concurrency)
	})
	return err
}

// admittedConcurrency shrinks base under host memory pressure,
// repurposing the teacher's shirou/gopsutil/v3 dependency from "agent
// host health reporting" to "scheduler admission control".
func (s *Scheduler) admittedConcurrency(base int) int {
	vm, err := mem.VirtualMemory()
	if err != nil || vm.UsedPercent < s.memPressurePercent {
		return base
	}
	admitted := base / 2
	if admitted < 1 {
		admitted = 1
	}
	return admitted
}

// Start begins running registered jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler, waiting for in-flight jobs to finish or
// ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
}
