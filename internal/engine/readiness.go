package engine

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/djherbis/times"

	"github.com/mhartung/ablage/internal/service"
)

// ReadinessChecker waits for a cloud-synced file to stabilize before it
// is touched: the file must exist, be non-empty, and keep the same size
// (and change time, where the platform reports one) across consecutive
// samples. On timeout the operator decides whether to proceed anyway.
type ReadinessChecker struct {
	clock         service.Clock
	prompter      service.Prompter
	timeout       time.Duration
	interval      time.Duration
	stableSamples int
}

// NewReadinessChecker creates a checker with the given polling clock and
// escalation prompter.
func NewReadinessChecker(clock service.Clock, prompter service.Prompter, timeout, interval time.Duration, stableSamples int) *ReadinessChecker {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if interval <= 0 {
		interval = time.Second
	}
	if stableSamples <= 0 {
		stableSamples = 3
	}
	return &ReadinessChecker{
		clock:         clock,
		prompter:      prompter,
		timeout:       timeout,
		interval:      interval,
		stableSamples: stableSamples,
	}
}

// Wait polls until the file is stable or the timeout elapses. It returns
// true when the file may be processed. A false return with nil error
// means the operator (or the timeout policy) decided to skip the file.
func (c *ReadinessChecker) Wait(ctx context.Context, path string) (bool, error) {
	deadline := c.clock.Now().Add(c.timeout)

	var (
		lastSize   int64 = -1
		lastChange time.Time
		stable     int
	)

	for c.clock.Now().Before(deadline) {
		info, err := os.Stat(path)
		if err != nil {
			// Transient non-existence is normal for still-syncing files.
			stable = 0
			lastSize = -1
			if sleepErr := c.clock.Sleep(ctx, c.interval); sleepErr != nil {
				return false, sleepErr
			}
			continue
		}

		size := info.Size()
		changed := size != lastSize || size == 0

		if ts, err := times.Stat(path); err == nil && ts.HasChangeTime() {
			if !lastChange.IsZero() && !ts.ChangeTime().Equal(lastChange) {
				changed = true
			}
			lastChange = ts.ChangeTime()
		}

		if changed {
			stable = 0
		} else {
			stable++
			if stable >= c.stableSamples-1 {
				return true, nil
			}
		}
		lastSize = size

		if err := c.clock.Sleep(ctx, c.interval); err != nil {
			return false, err
		}
	}

	slog.Warn("file did not stabilize before timeout", "path", path, "timeout", c.timeout)
	proceed, err := c.prompter.ConfirmProceedUnsynced(ctx, path)
	if err != nil {
		return false, err
	}
	return proceed, nil
}
