// Package repository defines the data access interface of the school store.
//
// The implementation lives in the sqlite subpackage: an in-memory SQLite
// database that is serialized as a whole for durability.
//
// # Tables
//
// classes, students, teachers, subjects, grades, schedule_slots and
// attendance. Children reference parents with ON DELETE CASCADE, so deleting
// a class removes its students, subjects and schedule slots, and with them
// every grade and attendance record that depends on them.
//
// # Derived Values
//
// classes.studentCount caches the number of students of a class. It is
// recomputed inside the same transaction as every student insert, update
// and delete that touches class membership.
//
// # Ordering
//
// Every list operation has a fixed sort key with the id as final tie
// breaker, so exports and comparisons are reproducible.
package repository
