package sqlite

import (
	"context"
	"time"

	"schooldb/internal/domain"
)

func newAttendanceRow() *attendanceRow { return &attendanceRow{} }

// Ties on date and createdAt fall back to insertion order. Ids are text,
// so comparing them would put "9" after "10".
const attendanceOrder = ` ORDER BY date DESC, createdAt DESC, rowid DESC`

// ListAttendance returns every record, most recent date first
func (r *Repository) ListAttendance(ctx context.Context) ([]domain.AttendanceRecord, error) {
	records, err := queryList[domain.AttendanceRecord](ctx, r.db, newAttendanceRow,
		`SELECT `+attendanceColumns+` FROM attendance`+attendanceOrder)
	return records, wrapErr("list attendance", err)
}

// ListAttendanceByDate returns the records of one day
func (r *Repository) ListAttendanceByDate(ctx context.Context, date string) ([]domain.AttendanceRecord, error) {
	records, err := queryList[domain.AttendanceRecord](ctx, r.db, newAttendanceRow,
		`SELECT `+attendanceColumns+` FROM attendance WHERE date = ?`+attendanceOrder, date)
	return records, wrapErr("list attendance by date", err)
}

// ListAttendanceByStudent returns the records of one student
func (r *Repository) ListAttendanceByStudent(ctx context.Context, studentID string) ([]domain.AttendanceRecord, error) {
	records, err := queryList[domain.AttendanceRecord](ctx, r.db, newAttendanceRow,
		`SELECT `+attendanceColumns+` FROM attendance WHERE studentId = ?`+attendanceOrder, studentID)
	return records, wrapErr("list attendance by student", err)
}

// ListAttendanceByTeacher returns the records of one teacher
func (r *Repository) ListAttendanceByTeacher(ctx context.Context, teacherID string) ([]domain.AttendanceRecord, error) {
	records, err := queryList[domain.AttendanceRecord](ctx, r.db, newAttendanceRow,
		`SELECT `+attendanceColumns+` FROM attendance WHERE teacherId = ?`+attendanceOrder, teacherID)
	return records, wrapErr("list attendance by teacher", err)
}

// ListAttendanceBySlot returns the records taken for one slot on one date
func (r *Repository) ListAttendanceBySlot(ctx context.Context, slotID, date string) ([]domain.AttendanceRecord, error) {
	records, err := queryList[domain.AttendanceRecord](ctx, r.db, newAttendanceRow,
		`SELECT `+attendanceColumns+` FROM attendance WHERE scheduleSlotId = ? AND date = ?`+attendanceOrder,
		slotID, date)
	return records, wrapErr("list attendance by slot", err)
}

// AddAttendance inserts a record stamped with the current time
func (r *Repository) AddAttendance(ctx context.Context, rec *domain.AttendanceRecord) (string, error) {
	if err := domain.Validate(rec); err != nil {
		return "", err
	}

	id := domain.NewID()
	now := r.now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance (id, studentId, teacherId, scheduleSlotId, date,
			status, justification, createdAt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, id, stringToNull(rec.StudentID), stringToNull(rec.TeacherID), rec.ScheduleSlotID, rec.Date,
		string(rec.Status), stringToNull(rec.Justification), domain.FormatTimestamp(now))
	if err != nil {
		return "", wrapErr("insert attendance", err)
	}

	rec.ID = id
	rec.CreatedAt = now.UTC().Truncate(time.Millisecond)
	return id, nil
}

// UpdateAttendance applies a sparse update
func (r *Repository) UpdateAttendance(ctx context.Context, id string, upd domain.AttendanceUpdate) error {
	if err := domain.Validate(&upd); err != nil {
		return err
	}

	var s setList
	s.optional("studentId", upd.StudentID)
	s.optional("teacherId", upd.TeacherID)
	s.text("scheduleSlotId", upd.ScheduleSlotID)
	s.text("date", upd.Date)
	if upd.Status != nil {
		s.set("status", string(*upd.Status))
	}
	s.optional("justification", upd.Justification)
	return wrapErr("update attendance", s.exec(ctx, r.db, "attendance", id))
}

// DeleteAttendance removes one record
func (r *Repository) DeleteAttendance(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM attendance WHERE id = ?`, id)
	return wrapErr("delete attendance", err)
}
