package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"schooldb/internal/domain"
	"schooldb/internal/repository"
	"schooldb/internal/repository/sqlite"
	"schooldb/internal/snapshot"
)

// SchoolService guards the engine and keeps its snapshot current
type SchoolService struct {
	mu        sync.RWMutex
	repo      *sqlite.Repository
	snapshots *snapshot.Store
	eventBus  *EventBus
}

// NewSchoolService creates a service. The store is not usable until Open.
func NewSchoolService(snapshots *snapshot.Store, eventBus *EventBus) *SchoolService {
	if eventBus == nil {
		eventBus = NewEventBus()
	}
	return &SchoolService{
		snapshots: snapshots,
		eventBus:  eventBus,
	}
}

// Events returns the bus mutations are published on
func (s *SchoolService) Events() *EventBus {
	return s.eventBus
}

// Open loads the store from its snapshot. Opening twice is a no-op.
func (s *SchoolService) Open(ctx context.Context) (*snapshot.LoadReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.repo != nil {
		return &snapshot.LoadReport{Origin: snapshot.OriginRestored}, nil
	}

	repo, report, err := s.snapshots.Load(ctx)
	if err != nil {
		return nil, err
	}
	s.repo = repo
	log.Printf("[store] opened (%s)", report.Origin)
	return report, nil
}

// Close releases the engine. Later calls fail with domain.ErrNotInitialized.
func (s *SchoolService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.repo == nil {
		return nil
	}
	err := s.repo.Close()
	s.repo = nil
	return err
}

// Replace swaps the live engine for repo and persists it. The previous
// engine is closed. Used by import.
func (s *SchoolService) Replace(ctx context.Context, repo *sqlite.Repository) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.repo == nil {
		return domain.ErrNotInitialized
	}

	old := s.repo
	s.repo = repo
	if err := old.Close(); err != nil {
		log.Printf("[store] failed to close replaced engine: %v", err)
	}

	err := s.persist(ctx)
	s.eventBus.Publish(Event{Type: EventStoreReplaced})
	return err
}

// Save persists the current state explicitly
func (s *SchoolService) Save(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.repo == nil {
		return domain.ErrNotInitialized
	}
	return s.persist(ctx)
}

// Snapshot returns the binary form of the whole store
func (s *SchoolService) Snapshot(ctx context.Context) ([]byte, error) {
	return read(s, func(r *sqlite.Repository) ([]byte, error) {
		return r.Snapshot(ctx)
	})
}

// Dump returns the rows of every table in dependency order
func (s *SchoolService) Dump(ctx context.Context) ([]repository.TableDump, error) {
	return read(s, func(r *sqlite.Repository) ([]repository.TableDump, error) {
		return r.Dump(ctx)
	})
}

// persist saves the snapshot. The caller holds the lock.
func (s *SchoolService) persist(ctx context.Context) error {
	if err := s.snapshots.Save(ctx, s.repo); err != nil {
		log.Printf("[store] snapshot not saved: %v", err)
		return fmt.Errorf("%w: %v", domain.ErrNotPersisted, err)
	}
	return nil
}

// ============================================================================
// Access Helpers
// ============================================================================

// read runs fn under the read lock
func read[T any](s *SchoolService, fn func(r *sqlite.Repository) (T, error)) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.repo == nil {
		var zero T
		return zero, domain.ErrNotInitialized
	}
	return fn(s.repo)
}

// mutate runs fn under the write lock. On success the snapshot is saved and
// the event built by fn is published.
func mutate[T any](ctx context.Context, s *SchoolService, fn func(r *sqlite.Repository) (T, Event, error)) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.repo == nil {
		var zero T
		return zero, domain.ErrNotInitialized
	}

	result, event, err := fn(s.repo)
	if err != nil {
		return result, err
	}

	err = s.persist(ctx)
	s.eventBus.Publish(event)
	return result, err
}

// exec is mutate for operations without a result
func exec(ctx context.Context, s *SchoolService, event Event, fn func(r *sqlite.Repository) error) error {
	_, err := mutate(ctx, s, func(r *sqlite.Repository) (struct{}, Event, error) {
		return struct{}{}, event, fn(r)
	})
	return err
}

func idPayload(key, id string) map[string]string {
	return map[string]string{key: id}
}
