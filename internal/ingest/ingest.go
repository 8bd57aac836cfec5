package ingest

import (
	"time"
)

const (
	StatusCompleted = "COMPLETED"
	StatusSkipped   = "SKIPPED"
	StatusFailed    = "FAILED"
)

// Report summarizes one seeding run.
type Report struct {
	StartedAt    time.Time
	FinishedAt   time.Time
	Status       string
	Existing     int
	BooksFetched int
	BooksAdded   int
	Errors       []string
}
