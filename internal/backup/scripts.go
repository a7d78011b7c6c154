package backup

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"schooldb/internal/codec"
	"schooldb/internal/domain"
	"schooldb/internal/service"
)

// ExportSchemaScript delivers the schema-only script
func (p *Pipeline) ExportSchemaScript(ctx context.Context) (string, error) {
	script := p.sql.SchemaScript()
	if err := p.target().Deliver(ctx, []byte(script), SchemaFilename); err != nil {
		return "", fmt.Errorf("failed to deliver %s: %w", SchemaFilename, err)
	}
	return SchemaFilename, nil
}

// ExportDataScript delivers a data script of the current store
func (p *Pipeline) ExportDataScript(ctx context.Context) (string, error) {
	dumps, err := p.store.Dump(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to dump store: %w", err)
	}

	filename := codec.ScriptFilename("school-data", p.now())
	if err := p.target().Deliver(ctx, []byte(p.sql.DataScript(dumps)), filename); err != nil {
		return "", fmt.Errorf("failed to deliver %s: %w", filename, err)
	}
	return filename, nil
}

// ExportDump renders the current store with any exporter and delivers it
// as school-data-<timestamp><ext>
func (p *Pipeline) ExportDump(ctx context.Context, exporter codec.Exporter) (string, error) {
	dumps, err := p.store.Dump(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to dump store: %w", err)
	}

	var buf bytes.Buffer
	if err := exporter.Export(dumps, &buf); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", exporter.Format(), err)
	}

	filename := "school-data-" + codec.FileTimestamp(p.now()) + exporter.Extension()
	if err := p.target().Deliver(ctx, buf.Bytes(), filename); err != nil {
		return "", fmt.Errorf("failed to deliver %s: %w", filename, err)
	}
	return filename, nil
}

// RefreshScript regenerates the full script and stores it with its
// generation time in the script slots
func (p *Pipeline) RefreshScript(ctx context.Context) (string, error) {
	dumps, err := p.store.Dump(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to dump store: %w", err)
	}

	script := p.sql.FullScript(dumps)
	if err := p.slots.Set(ctx, ScriptKey, []byte(script)); err != nil {
		return "", fmt.Errorf("failed to cache script: %w", err)
	}
	stamp := domain.FormatTimestamp(p.now())
	if err := p.slots.Set(ctx, ScriptTimestampKey, []byte(stamp)); err != nil {
		return "", fmt.Errorf("failed to cache script timestamp: %w", err)
	}
	return script, nil
}

// CachedScript returns the cached full script and when it was generated.
// ok is false when no script was cached yet.
func (p *Pipeline) CachedScript(ctx context.Context) (script string, generatedAt time.Time, ok bool, err error) {
	data, ok, err := p.slots.Get(ctx, ScriptKey)
	if err != nil || !ok {
		return "", time.Time{}, false, err
	}

	if stamp, found, err := p.slots.Get(ctx, ScriptTimestampKey); err == nil && found {
		generatedAt, _ = domain.ParseTimestamp(string(stamp))
	}
	return string(data), generatedAt, true, nil
}

// ScriptDownloadFilename returns the name of the cached script downloaded on t
func ScriptDownloadFilename(t time.Time) string {
	return "school_data_" + t.UTC().Format("2006-01-02") + ".sql"
}

// DownloadScript delivers the cached full script, generating it only when
// none is cached
func (p *Pipeline) DownloadScript(ctx context.Context) (string, error) {
	script, _, ok, err := p.CachedScript(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read cached script: %w", err)
	}
	if !ok {
		if script, err = p.RefreshScript(ctx); err != nil {
			return "", err
		}
	}

	filename := ScriptDownloadFilename(p.now())
	if err := p.target().Deliver(ctx, []byte(script), filename); err != nil {
		return "", fmt.Errorf("failed to deliver %s: %w", filename, err)
	}
	return filename, nil
}

// SetRefreshOnEveryChange makes Watch refresh the script after any
// mutation instead of only structural ones
func (p *Pipeline) SetRefreshOnEveryChange(v bool) {
	p.refreshAll.Store(v)
}

// Watch refreshes the cached script after teacher, schedule and store
// replacement events until ctx is done. It returns immediately.
//
// Events are filtered on the publisher's goroutine and coalesced into a
// single pending signal, so a burst arriving during a refresh yields one
// more refresh that sees all of it.
func (p *Pipeline) Watch(ctx context.Context) {
	dirty := make(chan service.EventType, 1)
	stop := p.store.Events().Listen(func(ev service.Event) {
		if !p.refreshAll.Load() && !ev.Type.Structural() {
			return
		}
		select {
		case dirty <- ev.Type:
		default:
		}
	})

	go func() {
		defer stop()
		for {
			select {
			case <-ctx.Done():
				return
			case typ := <-dirty:
				if _, err := p.RefreshScript(ctx); err != nil {
					log.Printf("[backup] script refresh after %s failed: %v", typ, err)
				}
			}
		}
	}()
}
