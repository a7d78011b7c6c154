package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"schooldb/internal/codec"
	"schooldb/internal/domain"
	"schooldb/internal/repository/sqlite"
	"schooldb/internal/service"
	"schooldb/internal/slot"
	"schooldb/internal/snapshot"
)

// ============================================================================
// Test Helpers
// ============================================================================

// memDeliverer records every delivered file
type memDeliverer struct {
	mu    sync.Mutex
	files map[string][]byte
	order []string
}

func newMemDeliverer() *memDeliverer {
	return &memDeliverer{files: make(map[string][]byte)}
}

func (d *memDeliverer) Deliver(_ context.Context, data []byte, filename string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.files[filename] = append([]byte(nil), data...)
	d.order = append(d.order, filename)
	return nil
}

func (d *memDeliverer) get(filename string) ([]byte, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	data, ok := d.files[filename]
	return data, ok
}

func (d *memDeliverer) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.order)
}

// bytesSelector returns fixed bytes
type bytesSelector struct {
	data []byte
	err  error
}

func (s bytesSelector) Select(context.Context) ([]byte, error) {
	return s.data, s.err
}

type fixture struct {
	pipeline  *Pipeline
	store     *service.SchoolService
	slots     *slot.Memory
	deliverer *memDeliverer
}

var fixedNow = time.Date(2024, 6, 1, 9, 15, 30, 125_000_000, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	slots := slot.NewMemory()
	store := service.NewSchoolService(snapshot.New(slots), service.NewEventBus())
	if _, err := store.Open(context.Background()); err != nil {
		t.Fatalf("failed to open store: %v", err)
	}

	deliverer := newMemDeliverer()
	p := NewPipeline(store, slots, deliverer, nil)
	p.now = func() time.Time { return fixedNow }

	t.Cleanup(func() {
		p.StopAutoBackup()
		store.Close()
	})
	return &fixture{pipeline: p, store: store, slots: slots, deliverer: deliverer}
}

func newStudent(classID, last string) *domain.Student {
	return &domain.Student{
		FirstName: "Ama", LastName: last, BirthDate: "2012-03-04", BirthPlace: "Kumasi",
		ParentPhone: "0240000000", ClassID: classID, Gender: domain.GenderFemale,
	}
}

func newTeacher(last string) *domain.Teacher {
	return &domain.Teacher{
		FirstName: "Kofi", LastName: last, Subject: "Maths", Phone: "0500000000",
		Email: "kofi@school.test", BirthDate: "1980-01-01", Gender: domain.GenderMale, Residence: "Accra",
	}
}

func classNames(t *testing.T, store *service.SchoolService) []string {
	t.Helper()
	classes, err := store.ListClasses(context.Background())
	if err != nil {
		t.Fatalf("list classes: %v", err)
	}
	names := make([]string, len(classes))
	for i, c := range classes {
		names[i] = c.Name
	}
	return names
}

// snapshotWithClass builds a snapshot of a fresh store plus one class
func snapshotWithClass(t *testing.T, name string) []byte {
	t.Helper()
	ctx := context.Background()
	repo, err := sqlite.New(ctx)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer repo.Close()
	if _, err := repo.AddClass(ctx, name); err != nil {
		t.Fatalf("add class: %v", err)
	}
	data, err := repo.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	return data
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return cond()
}

// ============================================================================
// Binary Export / Import
// ============================================================================

func TestExportBinary(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	name, err := f.pipeline.ExportBinary(ctx, "")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if name != DefaultBinaryFilename {
		t.Errorf("expected %s, got %s", DefaultBinaryFilename, name)
	}

	data, _ := f.deliverer.get(name)
	repo, err := sqlite.Open(ctx, data)
	if err != nil {
		t.Fatalf("exported snapshot does not open: %v", err)
	}
	defer repo.Close()

	classes, _ := repo.ListClasses(ctx)
	if len(classes) != 5 {
		t.Errorf("expected 5 classes in export, got %d", len(classes))
	}
}

func TestCreateBackup(t *testing.T) {
	f := newFixture(t)

	name, err := f.pipeline.CreateBackup(context.Background())
	if err != nil {
		t.Fatalf("backup: %v", err)
	}
	want := "school-database-backup-2024-06-01T09-15-30-125Z.db"
	if name != want {
		t.Errorf("expected %s, got %s", want, name)
	}
	if _, ok := f.deliverer.get(want); !ok {
		t.Error("backup not delivered")
	}
}

func TestImport(t *testing.T) {
	ctx := context.Background()

	t.Run("cancelled", func(t *testing.T) {
		f := newFixture(t)
		f.pipeline.SetSelector(&FileSelector{})

		outcome, err := f.pipeline.Import(ctx)
		if err != nil || outcome != ImportCancelled {
			t.Fatalf("expected cancelled, got %s, %v", outcome, err)
		}
		if len(classNames(t, f.store)) != 5 {
			t.Error("store changed on cancel")
		}
	})

	t.Run("invalid file", func(t *testing.T) {
		f := newFixture(t)
		before, _ := f.store.Snapshot(ctx)
		f.pipeline.SetSelector(bytesSelector{data: []byte("PK\x03\x04 a zip, not a database")})

		outcome, err := f.pipeline.Import(ctx)
		if outcome != ImportInvalid {
			t.Fatalf("expected invalid, got %s", outcome)
		}
		if !errors.Is(err, domain.ErrMalformedSnapshot) {
			t.Errorf("expected ErrMalformedSnapshot, got %v", err)
		}

		stored, _, _ := f.slots.Get(ctx, snapshot.Key)
		if string(stored) != string(before) {
			t.Error("persisted snapshot changed on invalid import")
		}
		if len(classNames(t, f.store)) != 5 {
			t.Error("live store changed on invalid import")
		}
	})

	t.Run("selector error", func(t *testing.T) {
		f := newFixture(t)
		f.pipeline.SetSelector(bytesSelector{err: errors.New("permission denied")})

		outcome, err := f.pipeline.Import(ctx)
		if outcome != ImportInvalid || err == nil {
			t.Errorf("expected invalid with error, got %s, %v", outcome, err)
		}
	})

	t.Run("applied", func(t *testing.T) {
		f := newFixture(t)
		if _, err := f.pipeline.StartAutoBackup(time.Hour); err != nil {
			t.Fatalf("start auto-backup: %v", err)
		}
		f.pipeline.SetSelector(bytesSelector{data: snapshotWithClass(t, "Imported")})

		outcome, err := f.pipeline.Import(ctx)
		if err != nil || outcome != ImportApplied {
			t.Fatalf("expected applied, got %s, %v", outcome, err)
		}

		names := classNames(t, f.store)
		if len(names) != 6 {
			t.Errorf("expected 6 classes after import, got %v", names)
		}

		// persisted: a new store on the same slots sees the import
		other := service.NewSchoolService(snapshot.New(f.slots), nil)
		if _, err := other.Open(ctx); err != nil {
			t.Fatalf("open: %v", err)
		}
		defer other.Close()
		if len(classNames(t, other)) != 6 {
			t.Error("import not persisted")
		}

		if !f.pipeline.AutoBackupRunning() {
			t.Error("expected auto-backup to be restarted")
		}
	})
}

// ============================================================================
// Scripts
// ============================================================================

func TestExportScripts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	name, err := f.pipeline.ExportSchemaScript(ctx)
	if err != nil {
		t.Fatalf("schema script: %v", err)
	}
	if name != SchemaFilename {
		t.Errorf("expected %s, got %s", SchemaFilename, name)
	}

	name, err = f.pipeline.ExportDataScript(ctx)
	if err != nil {
		t.Fatalf("data script: %v", err)
	}
	if name != "school-data-2024-06-01T09-15-30-125Z.sql" {
		t.Errorf("unexpected data script name %s", name)
	}
	data, _ := f.deliverer.get(name)
	if !strings.Contains(string(data), "DELETE FROM attendance;") {
		t.Error("data script must clear every table")
	}

	name, err = f.pipeline.ExportDump(ctx, codec.NewJSONCodec())
	if err != nil {
		t.Fatalf("json export: %v", err)
	}
	if !strings.HasSuffix(name, ".json") {
		t.Errorf("unexpected json export name %s", name)
	}
}

func TestScriptCache(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	t.Run("download generates when absent", func(t *testing.T) {
		name, err := f.pipeline.DownloadScript(ctx)
		if err != nil {
			t.Fatalf("download: %v", err)
		}
		if name != "school_data_2024-06-01.sql" {
			t.Errorf("unexpected name %s", name)
		}

		script, generatedAt, ok, err := f.pipeline.CachedScript(ctx)
		if err != nil || !ok {
			t.Fatalf("expected cached script, got ok=%v err=%v", ok, err)
		}
		if !generatedAt.Equal(fixedNow) {
			t.Errorf("expected timestamp %v, got %v", fixedNow, generatedAt)
		}
		data, _ := f.deliverer.get(name)
		if string(data) != script {
			t.Error("downloaded script differs from cache")
		}
	})

	t.Run("download reuses the cache", func(t *testing.T) {
		f.slots.Set(ctx, ScriptKey, []byte("-- cached"))
		if _, err := f.store.AddClass(ctx, "CP"); err != nil {
			t.Fatalf("add class: %v", err)
		}

		name, err := f.pipeline.DownloadScript(ctx)
		if err != nil {
			t.Fatalf("download: %v", err)
		}
		data, _ := f.deliverer.get(name)
		if string(data) != "-- cached" {
			t.Errorf("expected cached script, got %q", data)
		}
	})

	t.Run("refresh regenerates", func(t *testing.T) {
		script, err := f.pipeline.RefreshScript(ctx)
		if err != nil {
			t.Fatalf("refresh: %v", err)
		}
		if !strings.Contains(script, "'CP'") {
			t.Error("refreshed script misses the new class")
		}
	})
}

func TestWatchRefreshesOnStructuralEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f := newFixture(t)
	f.pipeline.Watch(ctx)

	cached := func() string {
		data, _, _ := f.slots.Get(context.Background(), ScriptKey)
		return string(data)
	}

	if _, err := f.store.AddTeacher(ctx, newTeacher("Mensah")); err != nil {
		t.Fatalf("add teacher: %v", err)
	}

	if !waitFor(t, 2*time.Second, func() bool { return strings.Contains(cached(), "'Mensah'") }) {
		t.Fatal("script not refreshed after teacher event")
	}

	f.pipeline.SetRefreshOnEveryChange(true)
	if _, err := f.store.AddStudent(ctx, newStudent("1", "Boateng")); err != nil {
		t.Fatalf("add student: %v", err)
	}
	if !waitFor(t, 2*time.Second, func() bool { return strings.Contains(cached(), "'Boateng'") }) {
		t.Fatal("script not refreshed after student event with refresh on every change")
	}
}

// gatedSlots blocks the first write of key until release is closed
type gatedSlots struct {
	slot.Store
	key     string
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedSlots) Set(ctx context.Context, key string, value []byte) error {
	if key == g.key {
		first := false
		g.once.Do(func() { first = true })
		if first {
			close(g.entered)
			<-g.release
		}
	}
	return g.Store.Set(ctx, key, value)
}

func TestWatchKeepsStructuralEventDuringRefresh(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	slots := &gatedSlots{
		Store:   slot.NewMemory(),
		key:     ScriptKey,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	store := service.NewSchoolService(snapshot.New(slots), service.NewEventBus())
	if _, err := store.Open(ctx); err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()
	p := NewPipeline(store, slots, newMemDeliverer(), nil)

	studentID, err := store.AddStudent(ctx, newStudent("1", "Boateng"))
	if err != nil {
		t.Fatalf("add student: %v", err)
	}
	p.Watch(ctx)

	if _, err := store.AddTeacher(ctx, newTeacher("Mensah")); err != nil {
		t.Fatalf("add teacher: %v", err)
	}
	select {
	case <-slots.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("refresh never started")
	}

	// a burst of non-structural changes while the refresh is stuck
	for i := 0; i < 100; i++ {
		phone := fmt.Sprintf("02%08d", i)
		if err := store.UpdateStudent(ctx, studentID, domain.StudentUpdate{ParentPhone: &phone}); err != nil {
			t.Fatalf("update student: %v", err)
		}
	}
	if _, err := store.AddTeacher(ctx, newTeacher("Owusu")); err != nil {
		t.Fatalf("add teacher: %v", err)
	}
	close(slots.release)

	cached := func() string {
		data, _, _ := slots.Get(context.Background(), ScriptKey)
		return string(data)
	}
	if !waitFor(t, 2*time.Second, func() bool { return strings.Contains(cached(), "'Owusu'") }) {
		t.Fatal("teacher added during a refresh is missing from the cached script")
	}
}

// ============================================================================
// Auto-backup
// ============================================================================

func TestAutoBackup(t *testing.T) {
	f := newFixture(t)

	auto, err := f.pipeline.StartAutoBackup(time.Second)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !waitFor(t, 3*time.Second, func() bool { return f.deliverer.count() > 0 }) {
		t.Fatal("no scheduled backup delivered")
	}

	auto.Stop()
	auto.Stop()
	if f.pipeline.AutoBackupRunning() {
		t.Error("expected schedule released after Stop")
	}
	if _, running := f.pipeline.StopAutoBackup(); running {
		t.Error("expected nothing left to stop")
	}

	delivered := f.deliverer.count()
	time.Sleep(1500 * time.Millisecond)
	if f.deliverer.count() != delivered {
		t.Error("backup ran after stop")
	}
}

func TestStartAutoBackupReplacesSchedule(t *testing.T) {
	f := newFixture(t)

	first, err := f.pipeline.StartAutoBackup(0)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if first.Interval != DefaultAutoInterval {
		t.Errorf("expected default interval, got %s", first.Interval)
	}

	if _, err := f.pipeline.StartAutoBackup(time.Hour); err != nil {
		t.Fatalf("restart: %v", err)
	}
	interval, running := f.pipeline.StopAutoBackup()
	if !running || interval != time.Hour {
		t.Errorf("expected running hourly schedule, got %s %v", interval, running)
	}

	if _, err := f.pipeline.StartAutoBackup(time.Millisecond); err == nil {
		t.Error("expected error for sub-second interval")
	}
}

// ============================================================================
// File Collaborators
// ============================================================================

func TestDirDeliverer(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "backups")
	d := &DirDeliverer{Dir: dir}

	if err := d.Deliver(ctx, []byte("v1"), "school-database.db"); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if err := d.Deliver(ctx, []byte("v2"), "school-database.db"); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "school-database.db"))
	if err != nil || string(data) != "v2" {
		t.Errorf("expected v2, got %q (%v)", data, err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected no leftover temp files, got %d entries", len(entries))
	}

	for _, bad := range []string{"", "../escape.db", "nested/file.db"} {
		if err := d.Deliver(ctx, []byte("x"), bad); err == nil {
			t.Errorf("expected error for filename %q", bad)
		}
	}
}

func TestFileSelector(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "import.db")
	os.WriteFile(path, []byte("bytes"), 0644)

	data, err := (&FileSelector{Path: path}).Select(ctx)
	if err != nil || string(data) != "bytes" {
		t.Errorf("expected file bytes, got %q (%v)", data, err)
	}

	if _, err := (&FileSelector{Path: path + ".missing"}).Select(ctx); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestImportOutcomeString(t *testing.T) {
	for outcome, want := range map[ImportOutcome]string{
		ImportApplied:   "applied",
		ImportCancelled: "cancelled",
		ImportInvalid:   "invalid",
	} {
		if outcome.String() != want {
			t.Errorf("expected %s, got %s", want, outcome.String())
		}
	}
}
