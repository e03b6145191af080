package player

import (
	"context"
	"time"
)

const (
	DefaultPollInterval = 100 * time.Millisecond
	DefaultStartTimeout = 15 * time.Second
)

// StartResult is the outcome of waiting for audio to begin.
type StartResult int

const (
	Started StartResult = iota
	Failed
	TimedOut
	Cancelled
)

func (r StartResult) String() string {
	switch r {
	case Started:
		return "started"
	case Failed:
		return "failed"
	case TimedOut:
		return "timed out"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// WaitForPlaying polls State until the engine reports Playing, reports an
// error or is stopped, or timeout elapses. Zero values select the defaults.
func (c *Controller) WaitForPlaying(ctx context.Context, interval, timeout time.Duration) StartResult {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if timeout <= 0 {
		timeout = DefaultStartTimeout
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	tick := time.NewTicker(interval)
	defer tick.Stop()

	for {
		switch c.State() {
		case StatePlaying:
			return Started
		case StateError, StateStopped:
			return Failed
		}

		select {
		case <-ctx.Done():
			return Cancelled
		case <-deadline.C:
			return TimedOut
		case <-tick.C:
		}
	}
}
