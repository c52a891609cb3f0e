// Package clock provides the time source and the periodic sampler that drives
// the live timer display.
package clock

import (
	"context"
	"sync"
	"time"
)

// DefaultInterval is the sampler cadence used when none is configured.
const DefaultInterval = 10 * time.Millisecond

// Clock reports the current time in milliseconds since the Unix epoch.
type Clock interface {
	Now() int64
}

// System reads the wall clock.
type System struct{}

// Now implements Clock.
func (System) Now() int64 { return time.Now().UnixMilli() }

// Fixed always reports the same instant.
type Fixed int64

// Now implements Clock.
func (f Fixed) Now() int64 { return int64(f) }

// Sampler emits the clock's reading at a fixed cadence while started.
type Sampler struct {
	clock    Clock
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSampler builds a stopped sampler. A non-positive interval uses
// DefaultInterval.
func NewSampler(c Clock, interval time.Duration) *Sampler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Sampler{clock: c, interval: interval}
}

// Interval reports the sampling cadence.
func (s *Sampler) Interval() time.Duration { return s.interval }

// Running reports whether the sampler is started.
func (s *Sampler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// Start begins sampling and returns the channel the samples arrive on. The
// channel is closed once the sampler stops or ctx ends. Starting a running
// sampler stops the previous run first. A sample is dropped when the
// previous one has not been received yet.
func (s *Sampler) Start(ctx context.Context) <-chan int64 {
	s.Stop()

	ctx, cancel := context.WithCancel(ctx)
	out := make(chan int64, 1)
	done := make(chan struct{})

	s.mu.Lock()
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	go func() {
		defer close(done)
		defer close(out)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			select {
			case out <- s.clock.Now():
			default:
			}
		}
	}()
	return out
}

// Stop halts sampling and waits for the sampling goroutine to exit. Stopping
// a stopped sampler does nothing.
func (s *Sampler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
