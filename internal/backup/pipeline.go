// Package backup renders the school store to files: binary snapshots,
// reconstruction scripts and periodic backups. It also imports a binary
// snapshot back into the live store.
package backup

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"schooldb/internal/codec"
	"schooldb/internal/domain"
	"schooldb/internal/repository/sqlite"
	"schooldb/internal/service"
	"schooldb/internal/slot"
)

const (
	// DefaultBinaryFilename is used by ExportBinary when no name is given
	DefaultBinaryFilename = "school-database.db"
	// SchemaFilename is the name of the schema-only script
	SchemaFilename = "create-school-database.sql"

	// ScriptKey holds the cached full script
	ScriptKey = "school_data_sql"
	// ScriptTimestampKey holds the generation time of the cached script
	ScriptTimestampKey = "school_data_sql_timestamp"
)

// ImportOutcome is the result of Import
type ImportOutcome int

const (
	ImportApplied ImportOutcome = iota
	ImportCancelled
	ImportInvalid
)

func (o ImportOutcome) String() string {
	switch o {
	case ImportApplied:
		return "applied"
	case ImportCancelled:
		return "cancelled"
	case ImportInvalid:
		return "invalid"
	}
	return fmt.Sprintf("ImportOutcome(%d)", int(o))
}

// Pipeline exports and imports the store. It never mutates the engine
// except through SchoolService.Replace on import.
type Pipeline struct {
	store     *service.SchoolService
	slots     slot.Store
	deliverer Deliverer
	selector  Selector
	sql       *codec.SQLCodec
	now       func() time.Time

	mu   sync.Mutex
	auto *AutoBackup

	refreshAll atomic.Bool
}

// NewPipeline creates a pipeline. slots holds the cached script.
func NewPipeline(store *service.SchoolService, slots slot.Store, deliverer Deliverer, selector Selector) *Pipeline {
	return &Pipeline{
		store:     store,
		slots:     slots,
		deliverer: deliverer,
		selector:  selector,
		sql:       codec.NewSQLCodec(),
		now:       time.Now,
	}
}

// SetDeliverer replaces where artifacts are delivered
func (p *Pipeline) SetDeliverer(d Deliverer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deliverer = d
}

func (p *Pipeline) target() Deliverer {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.deliverer
}

// SetSelector replaces the import file selector
func (p *Pipeline) SetSelector(s Selector) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selector = s
}

// ============================================================================
// Binary
// ============================================================================

// ExportBinary delivers the full snapshot under filename, or under
// DefaultBinaryFilename when filename is empty. Returns the name used.
func (p *Pipeline) ExportBinary(ctx context.Context, filename string) (string, error) {
	if filename == "" {
		filename = DefaultBinaryFilename
	}

	data, err := p.store.Snapshot(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to snapshot store: %w", err)
	}
	if err := p.target().Deliver(ctx, data, filename); err != nil {
		return "", fmt.Errorf("failed to deliver %s: %w", filename, err)
	}

	log.Printf("[backup] exported %s (%d bytes)", filename, len(data))
	return filename, nil
}

// BackupFilename returns the name of a backup taken at t
func BackupFilename(t time.Time) string {
	return "school-database-backup-" + codec.FileTimestamp(t) + ".db"
}

// CreateBackup exports a timestamped binary snapshot
func (p *Pipeline) CreateBackup(ctx context.Context) (string, error) {
	return p.ExportBinary(ctx, BackupFilename(p.now()))
}

// Import asks the selector for a snapshot file and, when it holds a valid
// store, replaces the live store with it. A cancelled selection returns
// ImportCancelled and a nil error. An unusable file returns ImportInvalid
// and leaves the live store untouched.
func (p *Pipeline) Import(ctx context.Context) (ImportOutcome, error) {
	p.mu.Lock()
	selector := p.selector
	p.mu.Unlock()

	if selector == nil {
		return ImportCancelled, nil
	}

	data, err := selector.Select(ctx)
	if err != nil {
		return ImportInvalid, fmt.Errorf("failed to read import file: %w", err)
	}
	if data == nil {
		log.Printf("[backup] import cancelled")
		return ImportCancelled, nil
	}

	repo, err := sqlite.Open(ctx, data)
	if err != nil {
		log.Printf("[backup] import rejected: %v", err)
		return ImportInvalid, err
	}

	interval, running := p.StopAutoBackup()
	if running {
		defer func() {
			if _, err := p.StartAutoBackup(interval); err != nil {
				log.Printf("[backup] failed to restart auto-backup: %v", err)
			}
		}()
	}

	if err := p.store.Replace(ctx, repo); err != nil {
		if errors.Is(err, domain.ErrNotPersisted) {
			// live store already swapped
			return ImportApplied, err
		}
		repo.Close()
		return ImportInvalid, err
	}

	log.Printf("[backup] imported snapshot (%d bytes)", len(data))
	return ImportApplied, nil
}
