package slot

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
)

func newTestFile(t *testing.T) (*File, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "slots.db")
	f, err := OpenFile(context.Background(), path)
	if err != nil {
		t.Fatalf("failed to open slot file: %v", err)
	}
	t.Cleanup(func() {
		f.Close()
	})
	return f, path
}

func TestStores(t *testing.T) {
	file, _ := newTestFile(t)
	stores := map[string]Store{
		"memory": NewMemory(),
		"file":   file,
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, ok, err := store.Get(ctx, "school-database")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if ok {
				t.Fatal("expected missing key")
			}

			if err := store.Set(ctx, "school-database", []byte("first")); err != nil {
				t.Fatalf("set: %v", err)
			}
			if err := store.Set(ctx, "school-database", []byte("second")); err != nil {
				t.Fatalf("set: %v", err)
			}

			v, ok, err := store.Get(ctx, "school-database")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if !ok || !bytes.Equal(v, []byte("second")) {
				t.Errorf("expected 'second', got %q (ok=%v)", v, ok)
			}

			t.Run("empty value is present", func(t *testing.T) {
				if err := store.Set(ctx, "empty", nil); err != nil {
					t.Fatalf("set: %v", err)
				}
				v, ok, err := store.Get(ctx, "empty")
				if err != nil {
					t.Fatalf("get: %v", err)
				}
				if !ok || len(v) != 0 {
					t.Errorf("expected present empty value, got %q (ok=%v)", v, ok)
				}
			})
		})
	}
}

func TestMemoryCopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	in := []byte("abc")
	m.Set(ctx, "k", in)
	in[0] = 'x'

	out, _, _ := m.Get(ctx, "k")
	if string(out) != "abc" {
		t.Errorf("stored value changed through caller slice: %q", out)
	}
}

func TestFileSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	f, path := newTestFile(t)

	if err := f.Set(ctx, "school_data_sql", []byte("SELECT 1;")); err != nil {
		t.Fatalf("set: %v", err)
	}
	f.Close()

	reopened, err := OpenFile(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	v, ok, err := reopened.Get(ctx, "school_data_sql")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok || string(v) != "SELECT 1;" {
		t.Errorf("expected persisted script, got %q (ok=%v)", v, ok)
	}
}
