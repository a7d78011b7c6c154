package codec

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"schooldb/internal/repository"
)

func TestJSONExport(t *testing.T) {
	c := &JSONCodec{now: func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }}

	dumps := []repository.TableDump{
		{Name: "classes", Columns: []string{"id", "name", "studentCount"}, Rows: [][]any{{"1", "6ème A", int64(0)}}},
		{Name: "students", Columns: []string{"id"}},
	}

	var buf bytes.Buffer
	if err := c.Export(dumps, &buf); err != nil {
		t.Fatalf("export: %v", err)
	}

	var doc jsonDocument
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if doc.GeneratedAt != "2024-01-01T00:00:00.000Z" {
		t.Errorf("unexpected generatedAt %s", doc.GeneratedAt)
	}
	if len(doc.Tables) != 2 {
		t.Fatalf("expected 2 tables, got %d", len(doc.Tables))
	}
	if doc.Tables[1].Rows == nil || len(doc.Tables[1].Rows) != 0 {
		t.Errorf("expected empty rows array for students, got %v", doc.Tables[1].Rows)
	}
	if doc.Tables[0].Rows[0][1] != "6ème A" {
		t.Errorf("unexpected class name %v", doc.Tables[0].Rows[0][1])
	}
}

func TestCodecFormats(t *testing.T) {
	exporters := []Exporter{NewSQLCodec(), NewJSONCodec()}
	want := map[string]string{"sql": ".sql", "json": ".json"}
	for _, e := range exporters {
		if want[e.Format()] != e.Extension() {
			t.Errorf("%s: unexpected extension %s", e.Format(), e.Extension())
		}
	}
}
