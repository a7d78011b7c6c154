package codec

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"schooldb/internal/domain"
	"schooldb/internal/repository"
	"schooldb/internal/repository/sqlite"
)

// JSONCodec renders table dumps as a JSON document for tools that do not
// speak SQL
type JSONCodec struct {
	now func() time.Time
}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{now: time.Now}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// Extension returns the file extension of rendered documents
func (c *JSONCodec) Extension() string {
	return ".json"
}

type jsonDocument struct {
	Version     int         `json:"version"`
	GeneratedAt string      `json:"generatedAt"`
	Tables      []jsonTable `json:"tables"`
}

type jsonTable struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// Export writes every table with its columns and rows. Empty tables are
// kept so the document always lists the full schema.
func (c *JSONCodec) Export(dumps []repository.TableDump, w io.Writer) error {
	doc := jsonDocument{
		Version:     sqlite.SchemaVersion,
		GeneratedAt: domain.FormatTimestamp(c.now()),
		Tables:      make([]jsonTable, 0, len(dumps)),
	}
	for _, d := range dumps {
		rows := d.Rows
		if rows == nil {
			rows = [][]any{}
		}
		doc.Tables = append(doc.Tables, jsonTable{Name: d.Name, Columns: d.Columns, Rows: rows})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}
