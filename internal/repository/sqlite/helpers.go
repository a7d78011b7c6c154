package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"schooldb/internal/domain"
)

// ============================================================================
// Null Type Conversion Helpers
// ============================================================================

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// stringToNull converts an empty string to NULL
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullToIntPtr converts sql.NullInt64 to *int
func nullToIntPtr(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	v := int(ni.Int64)
	return &v
}

// intPtrToNull converts *int to sql.NullInt64
func intPtrToNull(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

// ============================================================================
// Sparse Updates
// ============================================================================

// setList collects "column = ?" assignments for a sparse UPDATE.
// Column names are always constants from this package.
type setList struct {
	cols []string
	args []any
}

func (s *setList) set(col string, v any) {
	s.cols = append(s.cols, col+" = ?")
	s.args = append(s.args, v)
}

// text assigns a NOT NULL text column when v is set
func (s *setList) text(col string, v *string) {
	if v != nil {
		s.set(col, *v)
	}
}

// optional assigns a nullable text column; empty strings become NULL
func (s *setList) optional(col string, v *string) {
	if v != nil {
		s.set(col, stringToNull(*v))
	}
}

func (s *setList) empty() bool {
	return len(s.cols) == 0
}

// exec runs the UPDATE for one row. Nothing happens when no column is set
// or when the id does not exist.
func (s *setList) exec(ctx context.Context, q querier, table, id string) error {
	if s.empty() {
		return nil
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", table, strings.Join(s.cols, ", "))
	args := append(s.args, id)
	_, err := q.ExecContext(ctx, query, args...)
	return err
}

// ============================================================================
// Generic Queries
// ============================================================================

// scanner is implemented by the row structs below
type scanner[T any] interface {
	scanArgs() []any
	toDomain() (T, error)
}

// queryList runs a SELECT and converts every row through a fresh R
func queryList[T any, R scanner[T]](ctx context.Context, q querier, newRow func() R, query string, args ...any) ([]T, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		row := newRow()
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, err
		}
		v, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// queryOne returns nil when no row matches
func queryOne[T any, R scanner[T]](ctx context.Context, q querier, row R, query string, args ...any) (*T, error) {
	err := q.QueryRowContext(ctx, query, args...).Scan(row.scanArgs()...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	v, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ============================================================================
// Row Scanners
// ============================================================================
//
// Column order of each xxxColumns constant MUST match the scanArgs() slice of
// the matching row struct.

const classColumns = `id, name, studentCount`

type classRow struct {
	ID           string
	Name         string
	StudentCount sql.NullInt64
}

func (r *classRow) scanArgs() []any {
	return []any{&r.ID, &r.Name, &r.StudentCount}
}

func (r *classRow) toDomain() (domain.Class, error) {
	return domain.Class{
		ID:           r.ID,
		Name:         r.Name,
		StudentCount: int(r.StudentCount.Int64),
	}, nil
}

const studentColumns = `id, firstName, lastName, birthDate, birthPlace,
	studentNumber, parentPhone, classId, gender`

type studentRow struct {
	ID            string
	FirstName     string
	LastName      string
	BirthDate     string
	BirthPlace    string
	StudentNumber sql.NullString
	ParentPhone   string
	ClassID       string
	Gender        string
}

func (r *studentRow) scanArgs() []any {
	return []any{
		&r.ID,            // 1
		&r.FirstName,     // 2
		&r.LastName,      // 3
		&r.BirthDate,     // 4
		&r.BirthPlace,    // 5
		&r.StudentNumber, // 6
		&r.ParentPhone,   // 7
		&r.ClassID,       // 8
		&r.Gender,        // 9
	}
}

func (r *studentRow) toDomain() (domain.Student, error) {
	return domain.Student{
		ID:            r.ID,
		FirstName:     r.FirstName,
		LastName:      r.LastName,
		BirthDate:     r.BirthDate,
		BirthPlace:    r.BirthPlace,
		StudentNumber: nullToString(r.StudentNumber),
		ParentPhone:   r.ParentPhone,
		ClassID:       r.ClassID,
		Gender:        domain.Gender(r.Gender),
	}, nil
}

const teacherColumns = `id, firstName, lastName, subject, phone, email,
	birthDate, gender, residence, address, city, qualification`

type teacherRow struct {
	ID            string
	FirstName     string
	LastName      string
	Subject       string
	Phone         string
	Email         string
	BirthDate     string
	Gender        string
	Residence     string
	Address       sql.NullString
	City          sql.NullString
	Qualification sql.NullString
}

func (r *teacherRow) scanArgs() []any {
	return []any{
		&r.ID,            // 1
		&r.FirstName,     // 2
		&r.LastName,      // 3
		&r.Subject,       // 4
		&r.Phone,         // 5
		&r.Email,         // 6
		&r.BirthDate,     // 7
		&r.Gender,        // 8
		&r.Residence,     // 9
		&r.Address,       // 10
		&r.City,          // 11
		&r.Qualification, // 12
	}
}

func (r *teacherRow) toDomain() (domain.Teacher, error) {
	return domain.Teacher{
		ID:            r.ID,
		FirstName:     r.FirstName,
		LastName:      r.LastName,
		Subject:       r.Subject,
		Phone:         r.Phone,
		Email:         r.Email,
		BirthDate:     r.BirthDate,
		Gender:        domain.Gender(r.Gender),
		Residence:     r.Residence,
		Address:       nullToString(r.Address),
		City:          nullToString(r.City),
		Qualification: nullToString(r.Qualification),
	}, nil
}

const subjectColumns = `id, name, coefficient, classId, semester`

type subjectRow struct {
	ID          string
	Name        string
	Coefficient int
	ClassID     string
	Semester    string
}

func (r *subjectRow) scanArgs() []any {
	return []any{&r.ID, &r.Name, &r.Coefficient, &r.ClassID, &r.Semester}
}

func (r *subjectRow) toDomain() (domain.Subject, error) {
	return domain.Subject{
		ID:          r.ID,
		Name:        r.Name,
		Coefficient: r.Coefficient,
		ClassID:     r.ClassID,
		Semester:    domain.Semester(r.Semester),
	}, nil
}

const gradeColumns = `id, studentId, subjectId, type, number, value, createdAt`

type gradeRow struct {
	ID        string
	StudentID string
	SubjectID string
	Type      string
	Number    sql.NullInt64
	Value     float64
	CreatedAt string
}

func (r *gradeRow) scanArgs() []any {
	return []any{&r.ID, &r.StudentID, &r.SubjectID, &r.Type, &r.Number, &r.Value, &r.CreatedAt}
}

func (r *gradeRow) toDomain() (domain.Grade, error) {
	createdAt, err := domain.ParseTimestamp(r.CreatedAt)
	if err != nil {
		return domain.Grade{}, fmt.Errorf("parse createdAt of grade %s: %w", r.ID, err)
	}
	return domain.Grade{
		ID:        r.ID,
		StudentID: r.StudentID,
		SubjectID: r.SubjectID,
		Type:      domain.GradeType(r.Type),
		Number:    nullToIntPtr(r.Number),
		Value:     r.Value,
		CreatedAt: createdAt,
	}, nil
}

const slotColumns = `id, day, startTime, endTime, subject, teacherId, classId`

type slotRow struct {
	ID        string
	Day       string
	StartTime string
	EndTime   string
	Subject   string
	TeacherID string
	ClassID   string
}

func (r *slotRow) scanArgs() []any {
	return []any{&r.ID, &r.Day, &r.StartTime, &r.EndTime, &r.Subject, &r.TeacherID, &r.ClassID}
}

func (r *slotRow) toDomain() (domain.ScheduleSlot, error) {
	return domain.ScheduleSlot{
		ID:        r.ID,
		Day:       r.Day,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Subject:   r.Subject,
		TeacherID: r.TeacherID,
		ClassID:   r.ClassID,
	}, nil
}

const attendanceColumns = `id, studentId, teacherId, scheduleSlotId, date,
	status, justification, createdAt`

type attendanceRow struct {
	ID             string
	StudentID      sql.NullString
	TeacherID      sql.NullString
	ScheduleSlotID string
	Date           string
	Status         string
	Justification  sql.NullString
	CreatedAt      string
}

func (r *attendanceRow) scanArgs() []any {
	return []any{
		&r.ID,             // 1
		&r.StudentID,      // 2
		&r.TeacherID,      // 3
		&r.ScheduleSlotID, // 4
		&r.Date,           // 5
		&r.Status,         // 6
		&r.Justification,  // 7
		&r.CreatedAt,      // 8
	}
}

func (r *attendanceRow) toDomain() (domain.AttendanceRecord, error) {
	createdAt, err := domain.ParseTimestamp(r.CreatedAt)
	if err != nil {
		return domain.AttendanceRecord{}, fmt.Errorf("parse createdAt of attendance %s: %w", r.ID, err)
	}
	return domain.AttendanceRecord{
		ID:             r.ID,
		StudentID:      nullToString(r.StudentID),
		TeacherID:      nullToString(r.TeacherID),
		ScheduleSlotID: r.ScheduleSlotID,
		Date:           r.Date,
		Status:         domain.AttendanceStatus(r.Status),
		Justification:  nullToString(r.Justification),
		CreatedAt:      createdAt,
	}, nil
}
