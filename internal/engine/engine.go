// Package engine implements the file placement pipeline: discover
// document files, wait for cloud sync readiness, classify by filename
// token, and move each file into its category (and year) folder with
// post-move verification.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mhartung/ablage/internal/classify"
	"github.com/mhartung/ablage/internal/common"
	"github.com/mhartung/ablage/internal/model"
	"github.com/mhartung/ablage/internal/service"
)

// Config holds the tunable parameters of a sorting run.
type Config struct {
	OnProgress        func(done, total int, filename string)
	Root              string
	ReadinessTimeout  time.Duration
	ReadinessInterval time.Duration
	StableSamples     int
	SettleDelay       time.Duration
	VerifyAttempts    int
	VerifyDelay       time.Duration
	Cloud             bool
}

// DefaultConfig returns the default engine configuration for a root.
func DefaultConfig(root string, cloud bool) Config {
	return Config{
		Root:              root,
		Cloud:             cloud,
		ReadinessTimeout:  30 * time.Second,
		ReadinessInterval: time.Second,
		StableSamples:     3,
		SettleDelay:       2 * time.Second,
		VerifyAttempts:    5,
		VerifyDelay:       time.Second,
	}
}

// Engine drives one sorting session over a source root. Files are
// processed strictly sequentially; one file's failure never aborts the
// batch.
type Engine struct {
	resolver  *classify.Resolver
	prompter  service.Prompter
	history   service.History
	clock     service.Clock
	readiness *ReadinessChecker
	mover     *Mover
	config    Config
}

// New creates an engine. history may be nil to run without an audit log.
func New(resolver *classify.Resolver, prompter service.Prompter, history service.History, clock service.Clock, config Config) *Engine {
	return &Engine{
		resolver:  resolver,
		prompter:  prompter,
		history:   history,
		clock:     clock,
		config:    config,
		readiness: NewReadinessChecker(clock, prompter, config.ReadinessTimeout, config.ReadinessInterval, config.StableSamples),
		mover:     NewMover(clock, config.Cloud, config.SettleDelay, config.VerifyAttempts, config.VerifyDelay),
	}
}

// Sort discovers and places all document files under the root, returning
// the session report. An inaccessible root yields an empty report and an
// error; everything else degrades per file.
func (e *Engine) Sort(ctx context.Context) (*model.Report, error) {
	report := model.NewReport()

	files, err := Discover(e.config.Root)
	if err != nil {
		return report, err
	}
	if len(files) == 0 {
		slog.Info("no document files found", "root", e.config.Root)
		return report, nil
	}

	slog.Info("starting sort", "root", e.config.Root, "files", len(files), "cloud", e.config.Cloud)

	for i, path := range files {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		if e.config.OnProgress != nil {
			e.config.OnProgress(i+1, len(files), filepath.Base(path))
		}

		task := e.processFile(ctx, path)
		switch task.Outcome {
		case model.OutcomeMoved:
			report.Add(task.Category, task.Year, filepath.Base(task.TargetPath))
		case model.OutcomeMovedUnverified:
			report.Add(task.Category, task.Year, filepath.Base(task.TargetPath))
			report.Unverified++
		case model.OutcomeSkipped:
			report.Skipped++
		case model.OutcomeFailed:
			report.Failed++
			slog.Error("failed to place file", "file", path, "error", task.Err)
		}

		// Context cancellation ends the session; the report covers
		// everything completed so far.
		if task.Err != nil && isCancellation(task.Err) {
			return report, task.Err
		}
	}

	return report, nil
}

// processFile runs one file through the placement state machine.
func (e *Engine) processFile(ctx context.Context, path string) model.FileTask {
	name := filepath.Base(path)
	task := model.FileTask{SourcePath: path}

	if e.config.Cloud {
		ready, err := e.readiness.Wait(ctx, path)
		if err != nil {
			task.Outcome = model.OutcomeFailed
			task.Err = err
			return task
		}
		if !ready {
			slog.Info("skipping file, not ready", "file", name)
			task.Outcome = model.OutcomeSkipped
			return task
		}
	}

	task.DocType = ExtractToken(name)
	task.Year = ExtractYear(name)

	category, err := e.resolver.Resolve(ctx, name, task.DocType)
	if err != nil {
		task.Outcome = model.OutcomeFailed
		task.Err = err
		return task
	}
	task.Category = category

	categoryDir := filepath.Join(e.config.Root, category)
	if err := os.MkdirAll(categoryDir, 0o750); err != nil {
		task.Outcome = model.OutcomeFailed
		task.Err = fmt.Errorf("failed to create category folder %s: %w", category, err)
		return task
	}

	targetDir := categoryDir
	if task.Year != "" {
		yearDir := filepath.Join(categoryDir, task.Year)
		if err := os.MkdirAll(yearDir, 0o750); err != nil {
			slog.Warn("failed to create year folder, using category folder",
				"year", task.Year,
				"error", err)
			task.Year = ""
		} else {
			targetDir = yearDir
		}
	}

	task.TargetPath = filepath.Join(targetDir, FormatFilename(name))

	if task.TargetPath == path {
		// Already sorted in a previous session.
		task.Outcome = model.OutcomeSkipped
		return task
	}

	if _, err := os.Stat(task.TargetPath); err == nil {
		overwrite, err := e.prompter.ConfirmOverwrite(ctx, task.TargetPath)
		if err != nil {
			task.Outcome = model.OutcomeFailed
			task.Err = err
			return task
		}
		if !overwrite {
			slog.Info("skipping file, target exists", "file", name, "target", task.TargetPath)
			task.Outcome = model.OutcomeSkipped
			return task
		}
	}

	switch err := e.mover.Move(ctx, path, task.TargetPath); {
	case err == nil:
		task.Outcome = model.OutcomeMoved
	case errors.Is(err, common.ErrVerifyInconclusive):
		task.Outcome = model.OutcomeMovedUnverified
	default:
		task.Outcome = model.OutcomeFailed
		task.Err = err
		return task
	}

	e.recordHistory(ctx, &task)
	return task
}

// recordHistory appends the move to the audit log, best-effort.
func (e *Engine) recordHistory(ctx context.Context, task *model.FileTask) {
	if e.history == nil {
		return
	}
	year := task.Year
	if year == "" {
		year = model.NoYear
	}
	record := &model.MoveRecord{
		MovedAt:    e.clock.Now(),
		SourcePath: task.SourcePath,
		TargetPath: task.TargetPath,
		Category:   task.Category,
		Year:       year,
		Verified:   task.Outcome == model.OutcomeMoved,
	}
	if err := e.history.RecordMove(ctx, record); err != nil {
		slog.Warn("failed to record move history", "file", task.TargetPath, "error", err)
	}
}

// isCancellation reports whether err ends the whole session rather than
// just the current file.
func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
