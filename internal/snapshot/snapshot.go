// Package snapshot persists the whole school store as one binary blob in a
// durable slot, and restores it at startup.
package snapshot

import (
	"context"
	"fmt"
	"log"

	"schooldb/internal/repository/sqlite"
	"schooldb/internal/slot"
)

// Key is the slot key holding the serialized database
const Key = "school-database"

// Origin tells where a loaded store came from
type Origin string

const (
	OriginRestored Origin = "restored"
	OriginFresh    Origin = "fresh"
)

// LoadReport describes the outcome of Load. Diagnostic is set when a stored
// snapshot existed but could not be used.
type LoadReport struct {
	Origin     Origin
	Diagnostic error
}

// Store saves and loads the engine through a slot
type Store struct {
	slots slot.Store
}

// New creates a snapshot store on top of a slot store
func New(slots slot.Store) *Store {
	return &Store{slots: slots}
}

// Save serializes the engine and replaces the stored snapshot
func (s *Store) Save(ctx context.Context, repo *sqlite.Repository) error {
	data, err := repo.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to serialize store: %w", err)
	}
	if err := s.slots.Set(ctx, Key, data); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Load restores the stored snapshot. A missing, unreadable or corrupt
// snapshot is replaced by a fresh seeded store which is saved right away.
// Only a failure to build the fresh store is returned as an error.
func (s *Store) Load(ctx context.Context) (*sqlite.Repository, *LoadReport, error) {
	report := &LoadReport{Origin: OriginFresh}

	data, ok, err := s.slots.Get(ctx, Key)
	switch {
	case err != nil:
		report.Diagnostic = fmt.Errorf("failed to read snapshot: %w", err)
	case ok:
		repo, err := sqlite.Open(ctx, data)
		if err == nil {
			report.Origin = OriginRestored
			return repo, report, nil
		}
		report.Diagnostic = err
	}

	if report.Diagnostic != nil {
		log.Printf("[snapshot] stored snapshot unusable, starting fresh: %v", report.Diagnostic)
	}

	repo, err := sqlite.New(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create store: %w", err)
	}
	if err := s.Save(ctx, repo); err != nil {
		log.Printf("[snapshot] failed to save fresh store: %v", err)
	}
	return repo, report, nil
}
