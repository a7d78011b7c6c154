// Package domain defines the entities of the school store.
//
// # Entities
//
// Class groups students. Its StudentCount is derived from the students that
// reference it and is maintained by the store, never by callers.
//
// Student and Teacher are people records. Subject belongs to one class and
// one semester. Grade is a mark of a student in a subject, identified for
// upserts by GradeKey.
//
// ScheduleSlot is a weekly lesson of a class taught by a teacher.
// AttendanceRecord tracks a student or a teacher for one slot on one date.
//
// # Updates
//
// Every mutable entity has an XxxUpdate struct with one pointer per column.
// Nil fields are left untouched.
//
// # Errors
//
// Store operations wrap the sentinel errors of this package so callers can
// use errors.Is: ErrConstraint, ErrMalformedSnapshot, ErrNotInitialized and
// ErrNotPersisted.
package domain
