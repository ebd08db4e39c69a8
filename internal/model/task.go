package model

// MoveOutcome is the terminal state of one file in a sorting session.
type MoveOutcome int

const (
	// OutcomeMoved means the file was relocated and verified at its target.
	OutcomeMoved MoveOutcome = iota
	// OutcomeMovedUnverified means the rename succeeded but post-move
	// verification stayed inconclusive, usually mid-sync cloud storage.
	OutcomeMovedUnverified
	// OutcomeSkipped means the file was deliberately left in place.
	OutcomeSkipped
	// OutcomeFailed means the file could not be placed.
	OutcomeFailed
)

// FileTask tracks one file through the placement pipeline.
type FileTask struct {
	SourcePath string
	DocType    string
	Year       string
	Category   string
	TargetPath string
	Err        error
	Outcome    MoveOutcome
}
