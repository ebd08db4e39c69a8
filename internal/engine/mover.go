package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mhartung/ablage/internal/common"
	"github.com/mhartung/ablage/internal/service"
)

// Mover performs a single file move with post-move verification. Cloud
// moves get a settle delay, a directory refresh, and bounded re-checks
// before the move is declared verified.
type Mover struct {
	clock          service.Clock
	settleDelay    time.Duration
	verifyAttempts int
	verifyDelay    time.Duration
	cloud          bool
}

// NewMover creates a mover. For cloud sources verification retries up to
// verifyAttempts times; local moves are checked once.
func NewMover(clock service.Clock, cloud bool, settleDelay time.Duration, verifyAttempts int, verifyDelay time.Duration) *Mover {
	if settleDelay <= 0 {
		settleDelay = 2 * time.Second
	}
	if verifyAttempts <= 0 {
		verifyAttempts = 5
	}
	if verifyDelay <= 0 {
		verifyDelay = time.Second
	}
	return &Mover{
		clock:          clock,
		cloud:          cloud,
		settleDelay:    settleDelay,
		verifyAttempts: verifyAttempts,
		verifyDelay:    verifyDelay,
	}
}

// Move relocates source to target and verifies the result. A returned
// common.ErrVerifyInconclusive means the move command itself succeeded
// but the filesystem has not confirmed it yet; on cloud storage that is
// usually a sync delay, not a failure.
func (m *Mover) Move(ctx context.Context, source, target string) error {
	if err := os.Rename(source, target); err != nil {
		if !isCrossDevice(err) {
			return fmt.Errorf("failed to move %s: %w", filepath.Base(source), err)
		}
		if err := copyAndRemove(source, target); err != nil {
			return fmt.Errorf("failed to move %s across filesystems: %w", filepath.Base(source), err)
		}
	}

	if m.cloud {
		if err := m.clock.Sleep(ctx, m.settleDelay); err != nil {
			return err
		}
		// Listing both directories nudges cloud clients into refreshing
		// their view before verification.
		refreshDir(filepath.Dir(source))
		refreshDir(filepath.Dir(target))
	}

	attempts := 1
	if m.cloud {
		attempts = m.verifyAttempts
	}

	err := common.WithRetry(ctx, m.clock, func() error {
		if _, err := os.Stat(target); err != nil {
			return common.ErrVerifyInconclusive
		}
		if _, err := os.Stat(source); !os.IsNotExist(err) {
			return common.ErrVerifyInconclusive
		}
		return nil
	}, service.RetryOptions{
		MaxAttempts:  attempts,
		InitialDelay: m.verifyDelay,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		slog.Warn("move verification inconclusive",
			"source", source,
			"target", target,
			"attempts", attempts)
		return fmt.Errorf("%w: %s", common.ErrVerifyInconclusive, filepath.Base(source))
	}
	return nil
}

// isCrossDevice reports whether a rename failed because source and target
// live on different filesystems, which happens when a category folder is
// a mount point or the cloud client exposes folders as separate volumes.
func isCrossDevice(err error) bool {
	var linkErr *os.LinkError
	if errors.As(err, &linkErr) {
		return errors.Is(linkErr.Err, syscall.EXDEV)
	}
	return false
}

// copyAndRemove emulates a rename across filesystems.
func copyAndRemove(source, target string) error {
	in, err := os.Open(source)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(target)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(target)
		return err
	}
	return os.Remove(source)
}

// refreshDir forces a directory listing, ignoring errors.
func refreshDir(dir string) {
	_, _ = os.ReadDir(dir)
}
