package repository

import (
	"context"

	"schooldb/internal/domain"
)

// TableDump is the full content of one table. Values are nil, int64,
// float64, string or []byte.
type TableDump struct {
	Name    string
	Columns []string
	Rows    [][]any
}

// Repository defines every operation of the school store.
// Update and delete of an unknown id are silent no-ops; Get of an unknown
// id returns nil without error.
type Repository interface {
	// Classes
	ListClasses(ctx context.Context) ([]domain.Class, error)
	GetClass(ctx context.Context, id string) (*domain.Class, error)
	AddClass(ctx context.Context, name string) (string, error)
	UpdateClass(ctx context.Context, id string, upd domain.ClassUpdate) error
	DeleteClass(ctx context.Context, id string) error
	RecountClass(ctx context.Context, id string) error

	// Students
	ListStudents(ctx context.Context) ([]domain.Student, error)
	ListStudentsByClass(ctx context.Context, classID string) ([]domain.Student, error)
	GetStudent(ctx context.Context, id string) (*domain.Student, error)
	AddStudent(ctx context.Context, s *domain.Student) (string, error)
	UpdateStudent(ctx context.Context, id string, upd domain.StudentUpdate) error
	DeleteStudent(ctx context.Context, id string) error
	NextStudentNumber(ctx context.Context, year int) (string, error)

	// Teachers
	ListTeachers(ctx context.Context) ([]domain.Teacher, error)
	GetTeacher(ctx context.Context, id string) (*domain.Teacher, error)
	AddTeacher(ctx context.Context, t *domain.Teacher) (string, error)
	UpdateTeacher(ctx context.Context, id string, upd domain.TeacherUpdate) error
	DeleteTeacher(ctx context.Context, id string) error

	// Subjects
	ListSubjects(ctx context.Context) ([]domain.Subject, error)
	ListSubjectsByClass(ctx context.Context, classID string) ([]domain.Subject, error)
	ListSubjectsByClassAndSemester(ctx context.Context, classID string, semester domain.Semester) ([]domain.Subject, error)
	GetSubject(ctx context.Context, id string) (*domain.Subject, error)
	AddSubject(ctx context.Context, s *domain.Subject) (string, error)
	UpdateSubject(ctx context.Context, id string, upd domain.SubjectUpdate) error
	DeleteSubject(ctx context.Context, id string) error

	// Grades
	ListGrades(ctx context.Context) ([]domain.Grade, error)
	ListGradesBySubject(ctx context.Context, subjectID string) ([]domain.Grade, error)
	ListGradesByStudent(ctx context.Context, studentID string) ([]domain.Grade, error)
	GetStudentGrade(ctx context.Context, key domain.GradeKey) (*float64, error)
	UpsertGrade(ctx context.Context, key domain.GradeKey, value float64) (string, error)
	UpdateGrade(ctx context.Context, id string, upd domain.GradeUpdate) error
	DeleteGrade(ctx context.Context, id string) error

	// Schedule
	ListScheduleSlots(ctx context.Context) ([]domain.ScheduleSlot, error)
	ListScheduleByClass(ctx context.Context, classID string) ([]domain.ScheduleSlot, error)
	ListScheduleByTeacher(ctx context.Context, teacherID string) ([]domain.ScheduleSlot, error)
	GetScheduleSlot(ctx context.Context, id string) (*domain.ScheduleSlot, error)
	ReplaceClassSchedule(ctx context.Context, classID string, slots []domain.SlotInput) ([]string, error)
	AddScheduleSlot(ctx context.Context, slot *domain.ScheduleSlot) (string, error)
	UpdateScheduleSlot(ctx context.Context, id string, upd domain.ScheduleSlotUpdate) error
	DeleteScheduleSlot(ctx context.Context, id string) error
	DeleteClassSchedule(ctx context.Context, classID string) error
	DeleteTeacherSchedule(ctx context.Context, teacherID string) error

	// Attendance
	ListAttendance(ctx context.Context) ([]domain.AttendanceRecord, error)
	ListAttendanceByDate(ctx context.Context, date string) ([]domain.AttendanceRecord, error)
	ListAttendanceByStudent(ctx context.Context, studentID string) ([]domain.AttendanceRecord, error)
	ListAttendanceByTeacher(ctx context.Context, teacherID string) ([]domain.AttendanceRecord, error)
	ListAttendanceBySlot(ctx context.Context, slotID, date string) ([]domain.AttendanceRecord, error)
	AddAttendance(ctx context.Context, rec *domain.AttendanceRecord) (string, error)
	UpdateAttendance(ctx context.Context, id string, upd domain.AttendanceUpdate) error
	DeleteAttendance(ctx context.Context, id string) error

	// Whole store
	Snapshot(ctx context.Context) ([]byte, error)
	Dump(ctx context.Context) ([]TableDump, error)
	ExecScript(ctx context.Context, script string) error

	// Close releases resources
	Close() error
}
