// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/mhartung/ablage/internal/model"
)

// CandidateCategory is one category offered to the operator, together with
// the document types already known to belong to it.
type CandidateCategory struct {
	Name       string
	KnownTypes []string
}

// CategoryRequest asks the operator to pick a category for a document-type
// token that no learned category matched.
type CategoryRequest struct {
	Filename   string
	DocType    string
	Candidates []CandidateCategory
}

// CategoryChoice is the operator's answer to a CategoryRequest. DocType may
// differ from the requested token when the operator narrowed it down, e.g.
// to strip a personal name from the filename.
type CategoryChoice struct {
	Category string
	DocType  string
}

// Prompter is the synchronous operator decision boundary. Implementations
// block until the operator (or a scripted test double) answers.
type Prompter interface {
	// ChooseCategory resolves an unclassifiable token to a category.
	ChooseCategory(ctx context.Context, req CategoryRequest) (CategoryChoice, error)
	// ConfirmOverwrite asks whether an existing target file may be replaced.
	ConfirmOverwrite(ctx context.Context, targetPath string) (bool, error)
	// ConfirmProceedUnsynced asks whether to process a file whose cloud
	// sync-readiness check timed out.
	ConfirmProceedUnsynced(ctx context.Context, sourcePath string) (bool, error)
}

// History defines the contract for the persistent move-audit log.
type History interface {
	RecordMove(ctx context.Context, record *model.MoveRecord) error
	ListMoves(ctx context.Context, limit int) ([]model.MoveRecord, error)
	Migrate(ctx context.Context) error
	Close() error
}

// Clock abstracts time for the polling loops in the placement engine so
// tests can run them without real sleeps.
type Clock interface {
	Now() time.Time
	// Sleep blocks for d or until the context is canceled.
	Sleep(ctx context.Context, d time.Duration) error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
