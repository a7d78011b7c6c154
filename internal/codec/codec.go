// Package codec renders the store's table dumps into portable text formats.
package codec

import (
	"io"

	"schooldb/internal/repository"
)

// Exporter renders every table of the store to w
type Exporter interface {
	Export(dumps []repository.TableDump, w io.Writer) error
	Format() string
	Extension() string
}
