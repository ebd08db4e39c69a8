package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/schollz/progressbar/v3"

	"github.com/mhartung/ablage/internal/service"
)

const maxKnownTypesShown = 4

// Prompter implements the interactive operator decision boundary on a
// terminal: category escalation, overwrite confirmation, and the unsynced
// override.
type Prompter struct {
	writer      io.Writer
	reader      *LineReader
	progressBar *progressbar.ProgressBar
}

// NewCLIPrompter creates a prompter reading from reader and writing to
// writer. Nil arguments default to stdin/stdout.
func NewCLIPrompter(reader io.Reader, writer io.Writer) *Prompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}

	return &Prompter{
		reader: NewLineReader(reader),
		writer: writer,
	}
}

// ChooseCategory presents the known categories as a numbered menu and
// returns the operator's pick. When the token looks like it carries more
// than the document type (extra words, usually a person's name), the
// operator may narrow it down to the part worth learning.
func (p *Prompter) ChooseCategory(ctx context.Context, req service.CategoryRequest) (service.CategoryChoice, error) {
	select {
	case <-ctx.Done():
		return service.CategoryChoice{}, ctx.Err()
	default:
	}

	content := fmt.Sprintf("File: %s\nDocument type: %s\n\nNo learned category matches this document type.",
		req.Filename, WarningStyle.Render(req.DocType))
	if _, err := fmt.Fprintln(p.writer, RenderBox("Unknown Document Type", content)); err != nil {
		return service.CategoryChoice{}, fmt.Errorf("failed to write escalation box: %w", err)
	}

	for i, candidate := range req.Candidates {
		line := fmt.Sprintf("  [%d] %s", i+1, candidate.Name)
		if hint := formatKnownTypes(candidate.KnownTypes); hint != "" {
			line += "  " + SubtleStyle.Render(hint)
		}
		if _, err := fmt.Fprintln(p.writer, line); err != nil {
			return service.CategoryChoice{}, fmt.Errorf("failed to write category option: %w", err)
		}
	}
	if _, err := fmt.Fprintln(p.writer, "  [N] New category"); err != nil {
		return service.CategoryChoice{}, fmt.Errorf("failed to write new category option: %w", err)
	}
	if _, err := fmt.Fprintln(p.writer); err != nil {
		return service.CategoryChoice{}, fmt.Errorf("failed to write newline: %w", err)
	}

	category, err := p.promptCategoryPick(ctx, req.Candidates)
	if err != nil {
		return service.CategoryChoice{}, err
	}

	docType, err := p.promptNarrowedType(ctx, req.DocType)
	if err != nil {
		return service.CategoryChoice{}, err
	}

	if _, err := fmt.Fprintln(p.writer, FormatSuccess(fmt.Sprintf("Learned: %q → %s", docType, category))); err != nil {
		slog.Warn("failed to write learn confirmation", "error", err)
	}

	return service.CategoryChoice{Category: category, DocType: docType}, nil
}

// ConfirmOverwrite asks whether an existing target file may be replaced.
// Declining is the default.
func (p *Prompter) ConfirmOverwrite(ctx context.Context, targetPath string) (bool, error) {
	if _, err := fmt.Fprintln(p.writer, FormatWarning("Target already exists: "+targetPath)); err != nil {
		return false, fmt.Errorf("failed to write overwrite warning: %w", err)
	}
	return p.promptYesNo(ctx, "Overwrite? [y/N]")
}

// ConfirmProceedUnsynced asks whether to process a file whose cloud
// readiness check timed out. Declining is the default.
func (p *Prompter) ConfirmProceedUnsynced(ctx context.Context, sourcePath string) (bool, error) {
	if _, err := fmt.Fprintln(p.writer,
		FormatWarning(CloudIcon+" Still syncing after timeout: "+sourcePath)); err != nil {
		return false, fmt.Errorf("failed to write sync warning: %w", err)
	}
	return p.promptYesNo(ctx, "Process anyway? [y/N]")
}

// StartProgress initializes the progress bar for a sorting session.
func (p *Prompter) StartProgress(total int) {
	if total <= 0 {
		return
	}
	p.progressBar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.writer),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Sorting documents...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(p.writer); err != nil {
				slog.Warn("failed to write newline after progress bar", "error", err)
			}
		}),
	)
}

// AdvanceProgress moves the progress bar to done. It matches the placement
// engine's progress callback signature and initializes the bar on first
// use, when the total is first known.
func (p *Prompter) AdvanceProgress(done, total int, _ string) {
	if p.progressBar == nil {
		p.StartProgress(total)
	}
	if p.progressBar == nil {
		return
	}
	if err := p.progressBar.Set(done); err != nil {
		slog.Warn("failed to update progress bar", "error", err)
	}
}

// FinishProgress completes the progress bar, if one was started.
func (p *Prompter) FinishProgress() {
	if p.progressBar == nil {
		return
	}
	if err := p.progressBar.Finish(); err != nil {
		slog.Warn("failed to finish progress bar", "error", err)
	}
}

func formatKnownTypes(known []string) string {
	if len(known) == 0 {
		return ""
	}
	shown := known
	suffix := ""
	if len(shown) > maxKnownTypesShown {
		shown = shown[:maxKnownTypesShown]
		suffix = ", …"
	}
	return "(" + strings.Join(shown, ", ") + suffix + ")"
}

func (p *Prompter) promptCategoryPick(ctx context.Context, candidates []service.CandidateCategory) (string, error) {
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		if _, err := fmt.Fprintf(p.writer, "%s: ", FormatPrompt("Category")); err != nil {
			return "", fmt.Errorf("failed to write category prompt: %w", err)
		}

		input, err := p.reader.ReadLine(ctx)
		if err != nil {
			if err == io.EOF {
				return "", fmt.Errorf("input terminated")
			}
			return "", err
		}

		if strings.EqualFold(input, "n") {
			return p.promptNewCategory(ctx)
		}

		if idx, convErr := strconv.Atoi(input); convErr == nil && idx >= 1 && idx <= len(candidates) {
			return candidates[idx-1].Name, nil
		}

		if _, err := fmt.Fprintln(p.writer, FormatError("Invalid choice. Please try again.")); err != nil {
			slog.Warn("failed to write error message", "error", err)
		}
	}
}

func (p *Prompter) promptNewCategory(ctx context.Context) (string, error) {
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		if _, err := fmt.Fprint(p.writer, FormatPrompt("New category name: ")); err != nil {
			return "", fmt.Errorf("failed to write new category prompt: %w", err)
		}

		input, err := p.reader.ReadLine(ctx)
		if err != nil {
			return "", err
		}
		if input == "" {
			if _, err := fmt.Fprintln(p.writer, FormatError("Category name cannot be empty.")); err != nil {
				slog.Warn("failed to write error message", "error", err)
			}
			continue
		}
		return input, nil
	}
}

// promptNarrowedType lets the operator strip filler words (typically a
// person's name) from a multi-word token before it is learned. Single-word
// tokens are learned as-is without asking.
func (p *Prompter) promptNarrowedType(ctx context.Context, docType string) (string, error) {
	if len(strings.Fields(docType)) < 2 {
		return docType, nil
	}

	if _, err := fmt.Fprintf(p.writer, "%s",
		FormatPrompt(fmt.Sprintf("Term to learn [%s]: ", docType))); err != nil {
		return "", fmt.Errorf("failed to write narrowing prompt: %w", err)
	}

	input, err := p.reader.ReadLine(ctx)
	if err != nil {
		if err == io.EOF {
			return docType, nil
		}
		return "", err
	}
	if input == "" {
		return docType, nil
	}
	return input, nil
}

func (p *Prompter) promptYesNo(ctx context.Context, prompt string) (bool, error) {
	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		default:
		}

		if _, err := fmt.Fprintf(p.writer, "%s: ", FormatPrompt(prompt)); err != nil {
			return false, fmt.Errorf("failed to write prompt: %w", err)
		}

		input, err := p.reader.ReadLine(ctx)
		if err != nil {
			if err == io.EOF {
				return false, nil
			}
			return false, err
		}

		switch strings.ToLower(input) {
		case "y", "yes":
			return true, nil
		case "", "n", "no":
			return false, nil
		}

		if _, err := fmt.Fprintln(p.writer, FormatError("Please answer y or n.")); err != nil {
			slog.Warn("failed to write error message", "error", err)
		}
	}
}

// Ensure Prompter implements the service interface.
var _ service.Prompter = (*Prompter)(nil)
