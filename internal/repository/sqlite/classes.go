package sqlite

import (
	"context"
	"database/sql"

	"schooldb/internal/domain"
)

func newClassRow() *classRow { return &classRow{} }

// ListClasses returns every class ordered by name
func (r *Repository) ListClasses(ctx context.Context) ([]domain.Class, error) {
	classes, err := queryList[domain.Class](ctx, r.db, newClassRow,
		`SELECT `+classColumns+` FROM classes ORDER BY name, id`)
	return classes, wrapErr("list classes", err)
}

// GetClass returns nil when the class does not exist
func (r *Repository) GetClass(ctx context.Context, id string) (*domain.Class, error) {
	class, err := queryOne[domain.Class](ctx, r.db, newClassRow(),
		`SELECT `+classColumns+` FROM classes WHERE id = ?`, id)
	return class, wrapErr("get class", err)
}

// AddClass creates an empty class and returns its id
func (r *Repository) AddClass(ctx context.Context, name string) (string, error) {
	if err := domain.Validate(&domain.Class{Name: name}); err != nil {
		return "", err
	}

	id := domain.NewID()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO classes (id, name, studentCount) VALUES (?, ?, 0)`, id, name)
	if err != nil {
		return "", wrapErr("insert class", err)
	}
	return id, nil
}

// UpdateClass renames a class
func (r *Repository) UpdateClass(ctx context.Context, id string, upd domain.ClassUpdate) error {
	if err := domain.Validate(&upd); err != nil {
		return err
	}

	var s setList
	s.text("name", upd.Name)
	return wrapErr("update class", s.exec(ctx, r.db, "classes", id))
}

// DeleteClass removes a class. Its students, subjects and schedule slots go
// with it, and with them every grade and attendance record that depends on them.
func (r *Repository) DeleteClass(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM classes WHERE id = ?`, id)
	return wrapErr("delete class", err)
}

// RecountClass recomputes the cached student count of a class
func (r *Repository) RecountClass(ctx context.Context, id string) error {
	return wrapErr("recount class", recountClass(ctx, r.db, id))
}

// recountClass sets studentCount from the students table. The count is a
// cache and is never incremented in place.
func recountClass(ctx context.Context, q querier, classID string) error {
	_, err := q.ExecContext(ctx, `
		UPDATE classes
		SET studentCount = (SELECT COUNT(*) FROM students WHERE classId = ?)
		WHERE id = ?
	`, classID, classID)
	return err
}

// classOfStudent returns the class of a student, or "" if the student does not exist
func classOfStudent(ctx context.Context, q querier, studentID string) (string, error) {
	var classID string
	err := q.QueryRowContext(ctx, `SELECT classId FROM students WHERE id = ?`, studentID).Scan(&classID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return classID, err
}
