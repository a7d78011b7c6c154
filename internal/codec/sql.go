package codec

import (
	"encoding/hex"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"schooldb/internal/domain"
	"schooldb/internal/repository"
	"schooldb/internal/repository/sqlite"
)

// SQLCodec renders reconstruction scripts: the schema script recreates the
// tables and default classes, the data script empties every table and
// reinserts its rows. Replaying the full script on a fresh store yields the
// same data.
type SQLCodec struct {
	now func() time.Time
}

// NewSQLCodec creates a new SQL codec
func NewSQLCodec() *SQLCodec {
	return &SQLCodec{now: time.Now}
}

// Format returns the codec format identifier
func (c *SQLCodec) Format() string {
	return "sql"
}

// Extension returns the file extension of rendered scripts
func (c *SQLCodec) Extension() string {
	return ".sql"
}

// Export writes the full script (schema then data)
func (c *SQLCodec) Export(dumps []repository.TableDump, w io.Writer) error {
	_, err := io.WriteString(w, c.FullScript(dumps))
	return err
}

// SchemaScript returns the fixed DDL and the default class seed. It does
// not depend on current data.
func (c *SQLCodec) SchemaScript() string {
	var b strings.Builder
	fmt.Fprintf(&b, "-- schooldb schema v%d\n", sqlite.SchemaVersion)
	fmt.Fprintf(&b, "-- generated %s\n\n", domain.FormatTimestamp(c.now()))
	writeSchema(&b)
	return b.String()
}

// DataScript returns one DELETE per table followed by one INSERT per row,
// tables in dependency order
func (c *SQLCodec) DataScript(dumps []repository.TableDump) string {
	var b strings.Builder
	fmt.Fprintf(&b, "-- schooldb data\n")
	fmt.Fprintf(&b, "-- generated %s\n\n", domain.FormatTimestamp(c.now()))
	writeData(&b, dumps)
	return b.String()
}

// FullScript returns the schema script followed by the data script
func (c *SQLCodec) FullScript(dumps []repository.TableDump) string {
	var b strings.Builder
	fmt.Fprintf(&b, "-- schooldb full script v%d\n", sqlite.SchemaVersion)
	fmt.Fprintf(&b, "-- generated %s\n\n", domain.FormatTimestamp(c.now()))
	writeSchema(&b)
	b.WriteString("\n-- ==================== data ====================\n\n")
	writeData(&b, dumps)
	return b.String()
}

func writeSchema(b *strings.Builder) {
	for _, t := range sqlite.Tables {
		fmt.Fprintf(b, "-- %s\n%s\n\n", t.Name, t.DDL)
	}

	b.WriteString("-- default classes\n")
	b.WriteString("INSERT OR IGNORE INTO classes (id, name, studentCount) VALUES\n")
	for i, class := range sqlite.DefaultClasses {
		sep := ","
		if i == len(sqlite.DefaultClasses)-1 {
			sep = ";"
		}
		fmt.Fprintf(b, "  (%s, %s, 0)%s\n", quote(class.ID), quote(class.Name), sep)
	}
}

func writeData(b *strings.Builder, dumps []repository.TableDump) {
	for _, d := range dumps {
		cols := strings.Join(d.Columns, ", ")
		fmt.Fprintf(b, "-- %s\n", d.Name)
		fmt.Fprintf(b, "DELETE FROM %s;\n", d.Name)
		for _, row := range d.Rows {
			values := make([]string, len(row))
			for i, v := range row {
				values[i] = Literal(v)
			}
			fmt.Fprintf(b, "INSERT INTO %s (%s) VALUES (%s);\n", d.Name, cols, strings.Join(values, ", "))
		}
		b.WriteString("\n")
	}
}

// Literal renders a column value as an SQL literal. Strings are quoted with
// embedded quotes doubled, nil becomes NULL, numbers are unquoted and reals
// use the shortest form that parses back to the same value.
func Literal(v any) string {
	switch v := v.(type) {
	case nil:
		return "NULL"
	case string:
		return quote(v)
	case []byte:
		return "X'" + hex.EncodeToString(v) + "'"
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case float64:
		switch {
		case math.IsInf(v, 1):
			return "9e999"
		case math.IsInf(v, -1):
			return "-9e999"
		case math.IsNaN(v):
			return "NULL"
		}
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		if v {
			return "1"
		}
		return "0"
	case time.Time:
		return quote(domain.FormatTimestamp(v))
	default:
		return quote(fmt.Sprint(v))
	}
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// ScriptFilename returns the name of a data script written at t:
// school-data-<ISO time with ':' and '.' replaced by '-'>.sql
func ScriptFilename(prefix string, t time.Time) string {
	return prefix + "-" + FileTimestamp(t) + ".sql"
}

// FileTimestamp formats t for use in file names
func FileTimestamp(t time.Time) string {
	return strings.NewReplacer(":", "-", ".", "-").Replace(domain.FormatTimestamp(t))
}
