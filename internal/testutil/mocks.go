// Package testutil provides shared test utilities for the runs API.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/runsapi/runs-api/internal/domain"
)

// MemoryRunRepository is an in-process run store keyed by scope. Ids are
// assigned in insertion order across all scopes.
type MemoryRunRepository struct {
	mu     sync.Mutex
	nextID int64
	runs   map[string][]domain.Run

	// Err, when set, is returned by every call.
	Err error
}

// NewMemoryRunRepository creates an empty store
func NewMemoryRunRepository() *MemoryRunRepository {
	return &MemoryRunRepository{runs: make(map[string][]domain.Run)}
}

// Create appends a run to scope
func (r *MemoryRunRepository) Create(_ context.Context, scope string, target domain.RunTarget) (*domain.Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return nil, r.Err
	}

	r.nextID++
	run := domain.Run{ID: r.nextID, Category: target, CreatedAt: time.Now().UTC()}
	r.runs[scope] = append(r.runs[scope], run)
	return &run, nil
}

// ListByScope returns a copy of scope's runs in id order
func (r *MemoryRunRepository) ListByScope(_ context.Context, scope string) ([]domain.Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return nil, r.Err
	}

	return append([]domain.Run{}, r.runs[scope]...), nil
}

// StubPinger is a health dependency that always returns Err
type StubPinger struct {
	Err error
}

// Ping implements handler.Pinger
func (p StubPinger) Ping(context.Context) error {
	return p.Err
}
