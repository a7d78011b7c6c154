package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"testing"
	"time"

	"schooldb/internal/domain"
)

// ============================================================================
// Test Helpers
// ============================================================================

// newTestRepo creates a fresh seeded store for testing
func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(context.Background())
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}
	t.Cleanup(func() {
		repo.Close()
	})
	return repo
}

// tickingClock returns a clock that advances one second per call
func tickingClock(start time.Time) func() time.Time {
	n := 0
	return func() time.Time {
		n++
		return start.Add(time.Duration(n) * time.Second)
	}
}

// assertNoError fails the test if err is not nil
func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// assertErrorIs fails the test unless err wraps target
func assertErrorIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("expected error wrapping %v, got %v", target, err)
	}
}

// assertEqual fails the test if expected != actual
func assertEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()
	if !reflect.DeepEqual(expected, actual) {
		t.Fatalf("expected %v, got %v", expected, actual)
	}
}

// assertNil fails the test if value is not nil
func assertNil(t *testing.T, value interface{}) {
	t.Helper()
	if value != nil && !reflect.ValueOf(value).IsNil() {
		t.Fatalf("expected nil value, got %v", value)
	}
}

func addStudent(t *testing.T, repo *Repository, classID, first, last string) string {
	t.Helper()
	id, err := repo.AddStudent(context.Background(), &domain.Student{
		FirstName:   first,
		LastName:    last,
		BirthDate:   "2012-03-04",
		BirthPlace:  "Kumasi",
		ParentPhone: "0240000000",
		ClassID:     classID,
		Gender:      domain.GenderFemale,
	})
	assertNoError(t, err)
	return id
}

func addTeacher(t *testing.T, repo *Repository, first, last string) string {
	t.Helper()
	id, err := repo.AddTeacher(context.Background(), &domain.Teacher{
		FirstName: first,
		LastName:  last,
		Subject:   "Mathématiques",
		Phone:     "0500000000",
		Email:     first + "@school.test",
		BirthDate: "1980-01-01",
		Gender:    domain.GenderMale,
		Residence: "Accra",
	})
	assertNoError(t, err)
	return id
}

func addSubject(t *testing.T, repo *Repository, classID, name string) string {
	t.Helper()
	id, err := repo.AddSubject(context.Background(), &domain.Subject{
		Name:        name,
		Coefficient: 2,
		ClassID:     classID,
		Semester:    domain.Semester1,
	})
	assertNoError(t, err)
	return id
}

func addSlot(t *testing.T, repo *Repository, classID, teacherID, day, start string) string {
	t.Helper()
	id, err := repo.AddScheduleSlot(context.Background(), &domain.ScheduleSlot{
		Day:       day,
		StartTime: start,
		EndTime:   start + "+1h",
		Subject:   "Maths",
		TeacherID: teacherID,
		ClassID:   classID,
	})
	assertNoError(t, err)
	return id
}

func countRows(t *testing.T, repo *Repository, table string) int {
	t.Helper()
	var n int
	assertNoError(t, repo.db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func studentCount(t *testing.T, repo *Repository, classID string) int {
	t.Helper()
	class, err := repo.GetClass(context.Background(), classID)
	assertNoError(t, err)
	if class == nil {
		t.Fatalf("class %s not found", classID)
	}
	return class.StudentCount
}

// ============================================================================
// Helper Function Tests
// ============================================================================

func TestNullToString(t *testing.T) {
	tests := []struct {
		name     string
		input    sql.NullString
		expected string
	}{
		{"valid string", sql.NullString{String: "test", Valid: true}, "test"},
		{"invalid string", sql.NullString{String: "test", Valid: false}, ""},
		{"empty valid string", sql.NullString{String: "", Valid: true}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertEqual(t, tt.expected, nullToString(tt.input))
		})
	}
}

func TestStringToNull(t *testing.T) {
	assertEqual(t, sql.NullString{String: "x", Valid: true}, stringToNull("x"))
	assertEqual(t, sql.NullString{}, stringToNull(""))
}

func TestIntPtrConversions(t *testing.T) {
	t.Run("nil pointer is NULL", func(t *testing.T) {
		assertEqual(t, sql.NullInt64{}, intPtrToNull(nil))
		assertNil(t, nullToIntPtr(sql.NullInt64{}))
	})

	t.Run("zero is not NULL", func(t *testing.T) {
		zero := 0
		assertEqual(t, sql.NullInt64{Int64: 0, Valid: true}, intPtrToNull(&zero))
		assertEqual(t, 0, *nullToIntPtr(sql.NullInt64{Valid: true}))
	})
}

func TestSetList(t *testing.T) {
	var s setList
	if !s.empty() {
		t.Fatal("expected empty set list")
	}

	name := "Ama"
	blank := ""
	s.text("firstName", &name)
	s.text("lastName", nil)
	s.optional("studentNumber", &blank)

	assertEqual(t, []string{"firstName = ?", "studentNumber = ?"}, s.cols)
	assertEqual(t, []any{"Ama", sql.NullString{}}, s.args)
}

func TestGradeRowToDomain(t *testing.T) {
	t.Run("parses timestamp and number", func(t *testing.T) {
		row := &gradeRow{
			ID:        "g1",
			StudentID: "s1",
			SubjectID: "m1",
			Type:      "devoir",
			Number:    sql.NullInt64{Int64: 2, Valid: true},
			Value:     12.5,
			CreatedAt: "2024-05-06T07:08:09.010Z",
		}
		g, err := row.toDomain()
		assertNoError(t, err)
		assertEqual(t, 2, *g.Number)
		assertEqual(t, time.Date(2024, 5, 6, 7, 8, 9, 10_000_000, time.UTC), g.CreatedAt)
	})

	t.Run("bad timestamp fails", func(t *testing.T) {
		row := &gradeRow{ID: "g1", CreatedAt: "yesterday"}
		if _, err := row.toDomain(); err == nil {
			t.Fatal("expected error for bad timestamp")
		}
	})
}

// ============================================================================
// Engine Tests
// ============================================================================

func TestNewSeedsDefaultClasses(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	classes, err := repo.ListClasses(ctx)
	assertNoError(t, err)
	assertEqual(t, 5, len(classes))

	byID := make(map[string]domain.Class)
	for _, c := range classes {
		byID[c.ID] = c
	}
	for _, want := range DefaultClasses {
		got, ok := byID[want.ID]
		if !ok {
			t.Fatalf("default class %s missing", want.ID)
		}
		assertEqual(t, want.Name, got.Name)
		assertEqual(t, 0, got.StudentCount)
	}
}

func TestMigrateAndSeedAreIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	assertNoError(t, repo.migrate(ctx))
	assertNoError(t, repo.seed(ctx))
	assertEqual(t, 5, countRows(t, repo, "classes"))
}

func TestSeedSkipsNonEmptyStore(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	for _, c := range DefaultClasses {
		assertNoError(t, repo.DeleteClass(ctx, c.ID))
	}
	_, err := repo.AddClass(ctx, "Terminale")
	assertNoError(t, err)

	assertNoError(t, repo.seed(ctx))
	assertEqual(t, 1, countRows(t, repo, "classes"))
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	repo.now = tickingClock(time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC))

	studentID := addStudent(t, repo, "1", "Ama", "Boateng")
	teacherID := addTeacher(t, repo, "Kofi", "Mensah")
	subjectID := addSubject(t, repo, "1", "Français")
	slotID := addSlot(t, repo, "1", teacherID, "Lundi", "08:00")
	_, err := repo.UpsertGrade(ctx, domain.GradeKey{StudentID: studentID, SubjectID: subjectID, Type: domain.GradeTypeComposition}, 15)
	assertNoError(t, err)
	_, err = repo.AddAttendance(ctx, &domain.AttendanceRecord{
		StudentID: studentID, ScheduleSlotID: slotID, Date: "2024-01-08", Status: domain.AttendanceLate,
	})
	assertNoError(t, err)

	data, err := repo.Snapshot(ctx)
	assertNoError(t, err)

	restored, err := Open(ctx, data)
	assertNoError(t, err)
	defer restored.Close()

	assertSameStore(t, repo, restored)

	t.Run("restored store enforces foreign keys", func(t *testing.T) {
		_, err := restored.AddStudent(ctx, &domain.Student{
			FirstName: "X", LastName: "Y", BirthDate: "2012-01-01", BirthPlace: "Ho",
			ParentPhone: "0200000000", ClassID: "missing", Gender: domain.GenderMale,
		})
		assertErrorIs(t, err, domain.ErrConstraint)
	})
}

// assertSameStore compares every list operation of two stores
func assertSameStore(t *testing.T, want, got *Repository) {
	t.Helper()
	ctx := context.Background()

	wantClasses, err := want.ListClasses(ctx)
	assertNoError(t, err)
	gotClasses, err := got.ListClasses(ctx)
	assertNoError(t, err)
	assertEqual(t, wantClasses, gotClasses)

	wantStudents, err := want.ListStudents(ctx)
	assertNoError(t, err)
	gotStudents, err := got.ListStudents(ctx)
	assertNoError(t, err)
	assertEqual(t, wantStudents, gotStudents)

	wantTeachers, err := want.ListTeachers(ctx)
	assertNoError(t, err)
	gotTeachers, err := got.ListTeachers(ctx)
	assertNoError(t, err)
	assertEqual(t, wantTeachers, gotTeachers)

	wantSubjects, err := want.ListSubjects(ctx)
	assertNoError(t, err)
	gotSubjects, err := got.ListSubjects(ctx)
	assertNoError(t, err)
	assertEqual(t, wantSubjects, gotSubjects)

	wantGrades, err := want.ListGrades(ctx)
	assertNoError(t, err)
	gotGrades, err := got.ListGrades(ctx)
	assertNoError(t, err)
	assertEqual(t, wantGrades, gotGrades)

	wantSlots, err := want.ListScheduleSlots(ctx)
	assertNoError(t, err)
	gotSlots, err := got.ListScheduleSlots(ctx)
	assertNoError(t, err)
	assertEqual(t, wantSlots, gotSlots)

	wantAttendance, err := want.ListAttendance(ctx)
	assertNoError(t, err)
	gotAttendance, err := got.ListAttendance(ctx)
	assertNoError(t, err)
	assertEqual(t, wantAttendance, gotAttendance)
}

func TestOpenRejectsMalformedSnapshots(t *testing.T) {
	ctx := context.Background()

	t.Run("empty bytes", func(t *testing.T) {
		_, err := Open(ctx, nil)
		assertErrorIs(t, err, domain.ErrMalformedSnapshot)
	})

	t.Run("garbage bytes", func(t *testing.T) {
		garbage := make([]byte, 8192)
		copy(garbage, "this is not a database")
		_, err := Open(ctx, garbage)
		assertErrorIs(t, err, domain.ErrMalformedSnapshot)
	})

	t.Run("database without the school tables", func(t *testing.T) {
		db, err := openMemory(ctx)
		assertNoError(t, err)
		other := &Repository{db: db, now: time.Now}
		defer other.Close()

		_, err = db.ExecContext(ctx, `CREATE TABLE notes (id TEXT PRIMARY KEY)`)
		assertNoError(t, err)
		data, err := other.Snapshot(ctx)
		assertNoError(t, err)

		_, err = Open(ctx, data)
		assertErrorIs(t, err, domain.ErrMalformedSnapshot)
	})
}

func TestLegacyJournal(t *testing.T) {
	header := make([]byte, 100)
	header[18], header[19] = 2, 2

	out := legacyJournal(header)
	assertEqual(t, byte(1), out[18])
	assertEqual(t, byte(1), out[19])
	// input left untouched
	assertEqual(t, byte(2), header[18])

	short := []byte{1, 2, 3}
	assertEqual(t, short, legacyJournal(short))
}

func TestExecScriptIsAtomic(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	err := repo.ExecScript(ctx, `
		INSERT INTO classes (id, name, studentCount) VALUES ('6', 'CM2', 0);
		INSERT INTO students (id, firstName, lastName, birthDate, birthPlace, parentPhone, classId, gender)
		VALUES ('s1', 'A', 'B', '', '', '', 'nope', 'male');
	`)
	assertErrorIs(t, err, domain.ErrConstraint)
	assertEqual(t, 5, countRows(t, repo, "classes"))
}

func TestDump(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	addStudent(t, repo, "2", "Yaw", "Asante")

	dumps, err := repo.Dump(ctx)
	assertNoError(t, err)
	assertEqual(t, len(Tables), len(dumps))

	for i, d := range dumps {
		assertEqual(t, Tables[i].Name, d.Name)
	}

	classes := dumps[0]
	assertEqual(t, 5, len(classes.Rows))
	assertEqual(t, "1", classes.Rows[0][0])
	assertEqual(t, int64(0), classes.Rows[0][2])
	assertEqual(t, int64(1), classes.Rows[1][2])

	students := dumps[1]
	assertEqual(t, 1, len(students.Rows))
	// studentNumber was left empty and is stored as NULL
	assertNil(t, students.Rows[0][5])
}
