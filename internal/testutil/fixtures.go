package testutil

import (
	"time"

	"github.com/runsapi/runs-api/internal/domain"
)

// NewTestRun creates a test run with default values.
func NewTestRun(id int64, category domain.RunTarget) domain.Run {
	return domain.Run{
		ID:        id,
		Category:  category,
		CreatedAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(id) * time.Minute),
	}
}

// NewTestRuns creates one run per category with ascending ids starting at 1.
func NewTestRuns(categories ...domain.RunTarget) []domain.Run {
	runs := make([]domain.Run, 0, len(categories))
	for i, category := range categories {
		runs = append(runs, NewTestRun(int64(i+1), category))
	}
	return runs
}
