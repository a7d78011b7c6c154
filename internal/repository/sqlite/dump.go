package sqlite

import (
	"context"
	"fmt"
	"strings"

	"schooldb/internal/repository"
)

// Dump reads every table in dependency order. Rows come in rowid order so
// replaying them reproduces the same physical order.
func (r *Repository) Dump(ctx context.Context) ([]repository.TableDump, error) {
	dumps := make([]repository.TableDump, 0, len(Tables))
	for _, t := range Tables {
		d, err := r.dumpTable(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("failed to dump %s: %w", t.Name, err)
		}
		dumps = append(dumps, d)
	}
	return dumps, nil
}

func (r *Repository) dumpTable(ctx context.Context, t Table) (repository.TableDump, error) {
	d := repository.TableDump{Name: t.Name, Columns: t.Columns}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY rowid", strings.Join(t.Columns, ", "), t.Name)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return d, err
	}
	defer rows.Close()

	for rows.Next() {
		values := make([]any, len(t.Columns))
		ptrs := make([]any, len(t.Columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return d, err
		}
		d.Rows = append(d.Rows, values)
	}
	return d, rows.Err()
}
