package util

import (
	"context"
	"time"
)

// RateLimiter allows BurstRate calls per BurstTimeSpan with at most
// ParallelCount of them running at the same time.
type RateLimiter struct {
	rateTicker   *time.Ticker
	rateLimiter  chan struct{}
	parallelChan chan struct{}
	done         chan struct{}

	BurstRate     int
	BurstTimeSpan time.Duration
	ParallelCount int
}

func NewRateLimiter(burstRate int, burstTimeSpan time.Duration, parallelCount int) *RateLimiter {
	limiter := &RateLimiter{
		rateTicker:   time.NewTicker(burstTimeSpan),
		rateLimiter:  make(chan struct{}, burstRate),
		parallelChan: make(chan struct{}, parallelCount),
		done:         make(chan struct{}),

		BurstRate:     burstRate,
		BurstTimeSpan: burstTimeSpan,
		ParallelCount: parallelCount,
	}
	go func() {
		for {
			select {
			case <-limiter.rateTicker.C:
				limiter.Reset()
			case <-limiter.done:
				return
			}
		}
	}()
	return limiter
}

// Enter blocks until a slot is free or ctx is done.
func (rl *RateLimiter) Enter(ctx context.Context) error {
	select {
	case rl.parallelChan <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case rl.rateLimiter <- struct{}{}:
		return nil
	case <-ctx.Done():
		<-rl.parallelChan
		return ctx.Err()
	}
}

func (rl *RateLimiter) Leave() {
	<-rl.parallelChan
}

func (rl *RateLimiter) Call(ctx context.Context, f func() error) error {
	if err := rl.Enter(ctx); err != nil {
		return err
	}
	defer rl.Leave()
	return f()
}

func (rl *RateLimiter) Reset() {
outer:
	for i := 0; i < rl.BurstRate; i++ {
		select {
		case <-rl.rateLimiter:
		default:
			break outer
		}
	}
}

func (rl *RateLimiter) Close() {
	rl.rateTicker.Stop()
	close(rl.done)
}
