package model

import "time"

// MoveRecord is one row of the persistent move-history audit log.
type MoveRecord struct {
	MovedAt    time.Time
	SourcePath string
	TargetPath string
	Category   string
	Year       string
	ID         int64
	Verified   bool
}
