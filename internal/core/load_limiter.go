package core

// load_limiter.go bounds how many files are decoded and parsed at once.
//
// Each load holds its whole file (up to the size ceiling) plus the parsed
// records in memory, so concurrent loads across sessions share a fixed
// number of slots. A load that cannot get a slot within maxWait fails with
// ErrTooManyLoads. WaitForDrain lets shutdown finish in-flight loads.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// ErrTooManyLoads is returned when every load slot stays occupied for the
// whole wait period.
var ErrTooManyLoads = errors.New("too many concurrent loads, please try again later")

const (
	DefaultMaxConcurrentLoads = 5
	DefaultMaxLoadWait        = 30 * time.Second
)

// LoadLimiter is a counting semaphore for loads.
type LoadLimiter struct {
	slots   chan struct{}
	maxWait time.Duration
	active  atomic.Int64
	drained chan struct{} // signalled whenever active drops to zero
}

// LoadLimiterStatus is a snapshot for health endpoints and logs.
type LoadLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// NewLoadLimiter allows at most maxConcurrent loads. Non-positive
// arguments select the defaults.
func NewLoadLimiter(maxConcurrent int, maxWait time.Duration) *LoadLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentLoads
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxLoadWait
	}
	return &LoadLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
		drained: make(chan struct{}, 1),
	}
}

// Acquire waits for a slot and returns the function that frees it.
// The release function is safe to call more than once.
func (l *LoadLimiter) Acquire(ctx context.Context) (func(), error) {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		return l.enter(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, ErrTooManyLoads
	}
}

// TryAcquire takes a slot only if one is free right now.
func (l *LoadLimiter) TryAcquire() (func(), bool) {
	select {
	case l.slots <- struct{}{}:
		return l.enter(), true
	default:
		return nil, false
	}
}

func (l *LoadLimiter) enter() func() {
	l.active.Add(1)
	var released atomic.Bool
	return func() {
		if !released.CompareAndSwap(false, true) {
			return
		}
		<-l.slots
		if l.active.Add(-1) == 0 {
			select {
			case l.drained <- struct{}{}:
			default:
			}
		}
	}
}

// Active returns the number of loads holding a slot.
func (l *LoadLimiter) Active() int { return int(l.active.Load()) }

// Status returns the current limiter state.
func (l *LoadLimiter) Status() LoadLimiterStatus {
	return LoadLimiterStatus{
		Active:        l.Active(),
		Available:     cap(l.slots) - len(l.slots),
		MaxConcurrent: cap(l.slots),
	}
}

// WaitForDrain blocks until no load holds a slot or ctx is done.
func (l *LoadLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for l.Active() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.drained:
		case <-ticker.C:
		}
	}
	return nil
}
