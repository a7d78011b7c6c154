package service

import (
	"context"

	"schooldb/internal/domain"
	"schooldb/internal/repository/sqlite"
)

// ============================================================================
// Grades
// ============================================================================

func (s *SchoolService) ListGrades(ctx context.Context) ([]domain.Grade, error) {
	return read(s, func(r *sqlite.Repository) ([]domain.Grade, error) {
		return r.ListGrades(ctx)
	})
}

func (s *SchoolService) ListGradesBySubject(ctx context.Context, subjectID string) ([]domain.Grade, error) {
	return read(s, func(r *sqlite.Repository) ([]domain.Grade, error) {
		return r.ListGradesBySubject(ctx, subjectID)
	})
}

func (s *SchoolService) ListGradesByStudent(ctx context.Context, studentID string) ([]domain.Grade, error) {
	return read(s, func(r *sqlite.Repository) ([]domain.Grade, error) {
		return r.ListGradesByStudent(ctx, studentID)
	})
}

// GetStudentGrade returns nil when no grade is stored under key
func (s *SchoolService) GetStudentGrade(ctx context.Context, key domain.GradeKey) (*float64, error) {
	return read(s, func(r *sqlite.Repository) (*float64, error) {
		return r.GetStudentGrade(ctx, key)
	})
}

// SaveGrade upserts a grade and returns its id
func (s *SchoolService) SaveGrade(ctx context.Context, key domain.GradeKey, value float64) (string, error) {
	return mutate(ctx, s, func(r *sqlite.Repository) (string, Event, error) {
		id, err := r.UpsertGrade(ctx, key, value)
		return id, Event{
			Type:    EventGradeSaved,
			Payload: map[string]string{"grade_id": id, "student_id": key.StudentID, "subject_id": key.SubjectID},
		}, err
	})
}

func (s *SchoolService) UpdateGrade(ctx context.Context, id string, upd domain.GradeUpdate) error {
	return exec(ctx, s, Event{Type: EventGradeSaved, Payload: idPayload("grade_id", id)},
		func(r *sqlite.Repository) error { return r.UpdateGrade(ctx, id, upd) })
}

func (s *SchoolService) DeleteGrade(ctx context.Context, id string) error {
	return exec(ctx, s, Event{Type: EventGradeDeleted, Payload: idPayload("grade_id", id)},
		func(r *sqlite.Repository) error { return r.DeleteGrade(ctx, id) })
}

// ============================================================================
// Schedule
// ============================================================================

func (s *SchoolService) ListScheduleSlots(ctx context.Context) ([]domain.ScheduleSlot, error) {
	return read(s, func(r *sqlite.Repository) ([]domain.ScheduleSlot, error) {
		return r.ListScheduleSlots(ctx)
	})
}

func (s *SchoolService) ListScheduleByClass(ctx context.Context, classID string) ([]domain.ScheduleSlot, error) {
	return read(s, func(r *sqlite.Repository) ([]domain.ScheduleSlot, error) {
		return r.ListScheduleByClass(ctx, classID)
	})
}

func (s *SchoolService) ListScheduleByTeacher(ctx context.Context, teacherID string) ([]domain.ScheduleSlot, error) {
	return read(s, func(r *sqlite.Repository) ([]domain.ScheduleSlot, error) {
		return r.ListScheduleByTeacher(ctx, teacherID)
	})
}

func (s *SchoolService) GetScheduleSlot(ctx context.Context, id string) (*domain.ScheduleSlot, error) {
	return read(s, func(r *sqlite.Repository) (*domain.ScheduleSlot, error) {
		return r.GetScheduleSlot(ctx, id)
	})
}

// SaveClassSchedule replaces the weekly schedule of a class and returns the
// new slot ids
func (s *SchoolService) SaveClassSchedule(ctx context.Context, classID string, slots []domain.SlotInput) ([]string, error) {
	return mutate(ctx, s, func(r *sqlite.Repository) ([]string, Event, error) {
		ids, err := r.ReplaceClassSchedule(ctx, classID, slots)
		return ids, Event{Type: EventScheduleChanged, Payload: idPayload("class_id", classID)}, err
	})
}

func (s *SchoolService) AddScheduleSlot(ctx context.Context, slot *domain.ScheduleSlot) (string, error) {
	return mutate(ctx, s, func(r *sqlite.Repository) (string, Event, error) {
		id, err := r.AddScheduleSlot(ctx, slot)
		return id, Event{Type: EventScheduleChanged, Payload: idPayload("slot_id", id)}, err
	})
}

func (s *SchoolService) UpdateScheduleSlot(ctx context.Context, id string, upd domain.ScheduleSlotUpdate) error {
	return exec(ctx, s, Event{Type: EventScheduleChanged, Payload: idPayload("slot_id", id)},
		func(r *sqlite.Repository) error { return r.UpdateScheduleSlot(ctx, id, upd) })
}

func (s *SchoolService) DeleteScheduleSlot(ctx context.Context, id string) error {
	return exec(ctx, s, Event{Type: EventScheduleChanged, Payload: idPayload("slot_id", id)},
		func(r *sqlite.Repository) error { return r.DeleteScheduleSlot(ctx, id) })
}

func (s *SchoolService) DeleteClassSchedule(ctx context.Context, classID string) error {
	return exec(ctx, s, Event{Type: EventScheduleChanged, Payload: idPayload("class_id", classID)},
		func(r *sqlite.Repository) error { return r.DeleteClassSchedule(ctx, classID) })
}

func (s *SchoolService) DeleteTeacherSchedule(ctx context.Context, teacherID string) error {
	return exec(ctx, s, Event{Type: EventScheduleChanged, Payload: idPayload("teacher_id", teacherID)},
		func(r *sqlite.Repository) error { return r.DeleteTeacherSchedule(ctx, teacherID) })
}

// ============================================================================
// Attendance
// ============================================================================

func (s *SchoolService) ListAttendance(ctx context.Context) ([]domain.AttendanceRecord, error) {
	return read(s, func(r *sqlite.Repository) ([]domain.AttendanceRecord, error) {
		return r.ListAttendance(ctx)
	})
}

func (s *SchoolService) ListAttendanceByDate(ctx context.Context, date string) ([]domain.AttendanceRecord, error) {
	return read(s, func(r *sqlite.Repository) ([]domain.AttendanceRecord, error) {
		return r.ListAttendanceByDate(ctx, date)
	})
}

func (s *SchoolService) ListAttendanceByStudent(ctx context.Context, studentID string) ([]domain.AttendanceRecord, error) {
	return read(s, func(r *sqlite.Repository) ([]domain.AttendanceRecord, error) {
		return r.ListAttendanceByStudent(ctx, studentID)
	})
}

func (s *SchoolService) ListAttendanceByTeacher(ctx context.Context, teacherID string) ([]domain.AttendanceRecord, error) {
	return read(s, func(r *sqlite.Repository) ([]domain.AttendanceRecord, error) {
		return r.ListAttendanceByTeacher(ctx, teacherID)
	})
}

func (s *SchoolService) ListAttendanceBySlot(ctx context.Context, slotID, date string) ([]domain.AttendanceRecord, error) {
	return read(s, func(r *sqlite.Repository) ([]domain.AttendanceRecord, error) {
		return r.ListAttendanceBySlot(ctx, slotID, date)
	})
}

func (s *SchoolService) AddAttendance(ctx context.Context, rec *domain.AttendanceRecord) (string, error) {
	return mutate(ctx, s, func(r *sqlite.Repository) (string, Event, error) {
		id, err := r.AddAttendance(ctx, rec)
		return id, Event{Type: EventAttendanceCreated, Payload: idPayload("attendance_id", id)}, err
	})
}

func (s *SchoolService) UpdateAttendance(ctx context.Context, id string, upd domain.AttendanceUpdate) error {
	return exec(ctx, s, Event{Type: EventAttendanceUpdated, Payload: idPayload("attendance_id", id)},
		func(r *sqlite.Repository) error { return r.UpdateAttendance(ctx, id, upd) })
}

func (s *SchoolService) DeleteAttendance(ctx context.Context, id string) error {
	return exec(ctx, s, Event{Type: EventAttendanceDeleted, Payload: idPayload("attendance_id", id)},
		func(r *sqlite.Repository) error { return r.DeleteAttendance(ctx, id) })
}
