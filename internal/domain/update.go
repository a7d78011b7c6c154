package domain

// Update structs carry one pointer per mutable column. Nil fields are left
// untouched; an update with no fields set does nothing.

// ClassUpdate changes a class. StudentCount is derived and cannot be set.
type ClassUpdate struct {
	Name *string `validate:"omitnil,min=1"`
}

// StudentUpdate changes a student
type StudentUpdate struct {
	FirstName     *string `validate:"omitnil,min=1"`
	LastName      *string `validate:"omitnil,min=1"`
	BirthDate     *string `validate:"omitnil,min=1"`
	BirthPlace    *string `validate:"omitnil,min=1"`
	StudentNumber *string
	ParentPhone   *string `validate:"omitnil,min=1"`
	ClassID       *string `validate:"omitnil,min=1"`
	Gender        *Gender `validate:"omitnil,oneof=male female"`
}

// TeacherUpdate changes a teacher
type TeacherUpdate struct {
	FirstName     *string `validate:"omitnil,min=1"`
	LastName      *string `validate:"omitnil,min=1"`
	Subject       *string `validate:"omitnil,min=1"`
	Phone         *string `validate:"omitnil,min=1"`
	Email         *string `validate:"omitnil,min=1"`
	BirthDate     *string `validate:"omitnil,min=1"`
	Gender        *Gender `validate:"omitnil,oneof=male female"`
	Residence     *string `validate:"omitnil,min=1"`
	Address       *string
	City          *string
	Qualification *string
}

// SubjectUpdate changes a subject
type SubjectUpdate struct {
	Name        *string   `validate:"omitnil,min=1"`
	Coefficient *int      `validate:"omitnil,gte=0"`
	ClassID     *string   `validate:"omitnil,min=1"`
	Semester    *Semester `validate:"omitnil,oneof=1 2"`
}

// GradeUpdate changes the value of a grade. The upsert key is immutable.
type GradeUpdate struct {
	Value *float64
}

// ScheduleSlotUpdate changes a single slot
type ScheduleSlotUpdate struct {
	Day       *string `validate:"omitnil,min=1"`
	StartTime *string `validate:"omitnil,min=1"`
	EndTime   *string `validate:"omitnil,min=1"`
	Subject   *string
	TeacherID *string `validate:"omitnil,min=1"`
	ClassID   *string `validate:"omitnil,min=1"`
}

// AttendanceUpdate changes an attendance record. Id and CreatedAt are immutable.
type AttendanceUpdate struct {
	StudentID      *string
	TeacherID      *string
	ScheduleSlotID *string           `validate:"omitnil,min=1"`
	Date           *string           `validate:"omitnil,min=1"`
	Status         *AttendanceStatus `validate:"omitnil,oneof=present absent late dismissed"`
	Justification  *string
}

// Ptr returns a pointer to v, handy for building updates
func Ptr[T any](v T) *T {
	return &v
}
