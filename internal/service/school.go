package service

import (
	"context"

	"schooldb/internal/domain"
	"schooldb/internal/repository/sqlite"
)

// ============================================================================
// Classes
// ============================================================================

func (s *SchoolService) ListClasses(ctx context.Context) ([]domain.Class, error) {
	return read(s, func(r *sqlite.Repository) ([]domain.Class, error) {
		return r.ListClasses(ctx)
	})
}

// GetClass returns nil when the class does not exist
func (s *SchoolService) GetClass(ctx context.Context, id string) (*domain.Class, error) {
	return read(s, func(r *sqlite.Repository) (*domain.Class, error) {
		return r.GetClass(ctx, id)
	})
}

// AddClass creates a class with no students and returns its id
func (s *SchoolService) AddClass(ctx context.Context, name string) (string, error) {
	return mutate(ctx, s, func(r *sqlite.Repository) (string, Event, error) {
		id, err := r.AddClass(ctx, name)
		return id, Event{Type: EventClassCreated, Payload: idPayload("class_id", id)}, err
	})
}

func (s *SchoolService) UpdateClass(ctx context.Context, id string, upd domain.ClassUpdate) error {
	return exec(ctx, s, Event{Type: EventClassUpdated, Payload: idPayload("class_id", id)},
		func(r *sqlite.Repository) error { return r.UpdateClass(ctx, id, upd) })
}

// DeleteClass removes a class with its students, subjects, grades,
// schedule slots and attendance
func (s *SchoolService) DeleteClass(ctx context.Context, id string) error {
	return exec(ctx, s, Event{Type: EventClassDeleted, Payload: idPayload("class_id", id)},
		func(r *sqlite.Repository) error { return r.DeleteClass(ctx, id) })
}

// RecountClass recomputes the cached student count of a class
func (s *SchoolService) RecountClass(ctx context.Context, id string) error {
	return exec(ctx, s, Event{Type: EventClassUpdated, Payload: idPayload("class_id", id)},
		func(r *sqlite.Repository) error { return r.RecountClass(ctx, id) })
}

// ============================================================================
// Students
// ============================================================================

func (s *SchoolService) ListStudents(ctx context.Context) ([]domain.Student, error) {
	return read(s, func(r *sqlite.Repository) ([]domain.Student, error) {
		return r.ListStudents(ctx)
	})
}

func (s *SchoolService) ListStudentsByClass(ctx context.Context, classID string) ([]domain.Student, error) {
	return read(s, func(r *sqlite.Repository) ([]domain.Student, error) {
		return r.ListStudentsByClass(ctx, classID)
	})
}

func (s *SchoolService) GetStudent(ctx context.Context, id string) (*domain.Student, error) {
	return read(s, func(r *sqlite.Repository) (*domain.Student, error) {
		return r.GetStudent(ctx, id)
	})
}

func (s *SchoolService) AddStudent(ctx context.Context, student *domain.Student) (string, error) {
	return mutate(ctx, s, func(r *sqlite.Repository) (string, Event, error) {
		id, err := r.AddStudent(ctx, student)
		return id, Event{
			Type:    EventStudentCreated,
			Payload: map[string]string{"student_id": id, "class_id": student.ClassID},
		}, err
	})
}

func (s *SchoolService) UpdateStudent(ctx context.Context, id string, upd domain.StudentUpdate) error {
	return exec(ctx, s, Event{Type: EventStudentUpdated, Payload: idPayload("student_id", id)},
		func(r *sqlite.Repository) error { return r.UpdateStudent(ctx, id, upd) })
}

func (s *SchoolService) DeleteStudent(ctx context.Context, id string) error {
	return exec(ctx, s, Event{Type: EventStudentDeleted, Payload: idPayload("student_id", id)},
		func(r *sqlite.Repository) error { return r.DeleteStudent(ctx, id) })
}

// NextStudentNumber proposes the registration number for a new student
func (s *SchoolService) NextStudentNumber(ctx context.Context, year int) (string, error) {
	return read(s, func(r *sqlite.Repository) (string, error) {
		return r.NextStudentNumber(ctx, year)
	})
}

// ============================================================================
// Teachers
// ============================================================================

func (s *SchoolService) ListTeachers(ctx context.Context) ([]domain.Teacher, error) {
	return read(s, func(r *sqlite.Repository) ([]domain.Teacher, error) {
		return r.ListTeachers(ctx)
	})
}

func (s *SchoolService) GetTeacher(ctx context.Context, id string) (*domain.Teacher, error) {
	return read(s, func(r *sqlite.Repository) (*domain.Teacher, error) {
		return r.GetTeacher(ctx, id)
	})
}

func (s *SchoolService) AddTeacher(ctx context.Context, teacher *domain.Teacher) (string, error) {
	return mutate(ctx, s, func(r *sqlite.Repository) (string, Event, error) {
		id, err := r.AddTeacher(ctx, teacher)
		return id, Event{Type: EventTeacherCreated, Payload: idPayload("teacher_id", id)}, err
	})
}

func (s *SchoolService) UpdateTeacher(ctx context.Context, id string, upd domain.TeacherUpdate) error {
	return exec(ctx, s, Event{Type: EventTeacherUpdated, Payload: idPayload("teacher_id", id)},
		func(r *sqlite.Repository) error { return r.UpdateTeacher(ctx, id, upd) })
}

// DeleteTeacher removes a teacher together with the slots they teach
func (s *SchoolService) DeleteTeacher(ctx context.Context, id string) error {
	return exec(ctx, s, Event{Type: EventTeacherDeleted, Payload: idPayload("teacher_id", id)},
		func(r *sqlite.Repository) error { return r.DeleteTeacher(ctx, id) })
}

// ============================================================================
// Subjects
// ============================================================================

func (s *SchoolService) ListSubjects(ctx context.Context) ([]domain.Subject, error) {
	return read(s, func(r *sqlite.Repository) ([]domain.Subject, error) {
		return r.ListSubjects(ctx)
	})
}

func (s *SchoolService) ListSubjectsByClass(ctx context.Context, classID string) ([]domain.Subject, error) {
	return read(s, func(r *sqlite.Repository) ([]domain.Subject, error) {
		return r.ListSubjectsByClass(ctx, classID)
	})
}

func (s *SchoolService) ListSubjectsByClassAndSemester(ctx context.Context, classID string, semester domain.Semester) ([]domain.Subject, error) {
	return read(s, func(r *sqlite.Repository) ([]domain.Subject, error) {
		return r.ListSubjectsByClassAndSemester(ctx, classID, semester)
	})
}

func (s *SchoolService) GetSubject(ctx context.Context, id string) (*domain.Subject, error) {
	return read(s, func(r *sqlite.Repository) (*domain.Subject, error) {
		return r.GetSubject(ctx, id)
	})
}

func (s *SchoolService) AddSubject(ctx context.Context, subject *domain.Subject) (string, error) {
	return mutate(ctx, s, func(r *sqlite.Repository) (string, Event, error) {
		id, err := r.AddSubject(ctx, subject)
		return id, Event{Type: EventSubjectCreated, Payload: idPayload("subject_id", id)}, err
	})
}

func (s *SchoolService) UpdateSubject(ctx context.Context, id string, upd domain.SubjectUpdate) error {
	return exec(ctx, s, Event{Type: EventSubjectUpdated, Payload: idPayload("subject_id", id)},
		func(r *sqlite.Repository) error { return r.UpdateSubject(ctx, id, upd) })
}

func (s *SchoolService) DeleteSubject(ctx context.Context, id string) error {
	return exec(ctx, s, Event{Type: EventSubjectDeleted, Payload: idPayload("subject_id", id)},
		func(r *sqlite.Repository) error { return r.DeleteSubject(ctx, id) })
}
