package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mhartung/ablage/internal/classify"
	"github.com/mhartung/ablage/internal/cli"
	"github.com/mhartung/ablage/internal/cloudpath"
	"github.com/mhartung/ablage/internal/common"
	"github.com/mhartung/ablage/internal/engine"
	"github.com/mhartung/ablage/internal/model"
	"github.com/mhartung/ablage/internal/reconcile"
	"github.com/mhartung/ablage/internal/service"
)

func sortCmd() *cobra.Command {
	var (
		forceLocal  bool
		noHistory   bool
		syncTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "sort [directory]",
		Short: "Sort documents into category folders",
		Long: `Scan a directory for document files, classify each by its filename
token, and move it into the matching category folder (with a year
subfolder when the filename carries a date).

Unknown document types are escalated interactively and the answer is
remembered for future runs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			dir = cloudpath.ExpandPath(dir)
			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("failed to resolve directory: %w", err)
			}

			info, err := os.Stat(absDir)
			if err != nil {
				return common.NewUserError(fmt.Sprintf("cannot access %s", absDir), err)
			}
			if !info.IsDir() {
				return common.NewUserError(fmt.Sprintf("%s is not a directory", absDir), nil)
			}

			detector := cloudpath.NewDetector(cloudpath.DefaultProviders())
			provider, cloud := detector.Detect(absDir)
			if forceLocal {
				cloud = false
			}
			if cloud {
				fmt.Println(cli.FormatInfo(fmt.Sprintf("Cloud storage detected (%s), sync-aware mode on", provider.Name)))
			}

			store, err := openKnowledge(absDir)
			if err != nil {
				return err
			}
			slog.Debug("knowledge store ready", "path", store.Path())

			reconciler := reconcile.New(reconcile.CanonicalFolders())
			summary, err := reconciler.Reconcile(absDir)
			if err != nil {
				return fmt.Errorf("failed to prepare category folders: %w", err)
			}
			printReconcileSummary(summary)

			// A broken audit log must never block filing.
			var history service.History
			if !noHistory {
				history, err = initHistory(cmd.Context())
				if err != nil {
					slog.Warn("move history unavailable, continuing without it", "error", err)
				} else {
					defer history.Close()
				}
			}

			prompter := cli.NewCLIPrompter(os.Stdin, os.Stdout)
			resolver := classify.NewResolver(store, prompter)

			// Ctrl-C cancels the root command's context; here we only
			// decide afterwards whether the error was that interrupt.
			ctx := cmd.Context()
			notice := cli.NewInterruptNotice(os.Stdout)

			config := engine.DefaultConfig(absDir, cloud)
			if syncTimeout > 0 {
				config.ReadinessTimeout = syncTimeout
			}
			config.OnProgress = prompter.AdvanceProgress

			eng := engine.New(resolver, prompter, history, service.RealClock{}, config)
			report, err := eng.Sort(ctx)
			prompter.FinishProgress()

			printReport(report)

			if err != nil && !notice.Handle(ctx, err) {
				return fmt.Errorf("sorting aborted: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&forceLocal, "local", false, "skip cloud sync handling even inside cloud storage")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "do not record moves in the history database")
	cmd.Flags().DurationVar(&syncTimeout, "sync-timeout", 0, "max wait for a file to finish syncing (default 30s)")

	return cmd
}

func printReconcileSummary(summary *reconcile.Summary) {
	if summary.Empty() {
		return
	}
	for _, name := range summary.Created {
		fmt.Println(cli.FormatSuccess("Created folder " + name))
	}
	for _, name := range summary.Merged {
		fmt.Println(cli.FormatInfo("Merged folder variant " + name))
	}
}

func printReport(report *model.Report) {
	if report.Empty() && report.Skipped == 0 && report.Failed == 0 {
		fmt.Println(cli.FormatInfo("Nothing to sort."))
		return
	}

	var b strings.Builder
	for _, category := range report.Categories() {
		b.WriteString(cli.SuccessStyle.Render(category) + "\n")
		for _, file := range report.Files(category) {
			b.WriteString("  " + file + "\n")
		}
	}

	counters := fmt.Sprintf("Moved: %d", report.Moved())
	if report.Skipped > 0 {
		counters += fmt.Sprintf("  Skipped: %d", report.Skipped)
	}
	if report.Unverified > 0 {
		counters += "  " + cli.WarningStyle.Render(fmt.Sprintf("Unverified: %d", report.Unverified))
	}
	if report.Failed > 0 {
		counters += "  " + cli.ErrorStyle.Render(fmt.Sprintf("Failed: %d", report.Failed))
	}
	b.WriteString("\n" + counters)

	fmt.Println(cli.RenderBox("Sorting Complete", b.String()))
}
