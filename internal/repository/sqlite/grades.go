package sqlite

import (
	"context"
	"database/sql"

	"schooldb/internal/domain"
)

func newGradeRow() *gradeRow { return &gradeRow{} }

// ListGrades returns every grade, newest first
func (r *Repository) ListGrades(ctx context.Context) ([]domain.Grade, error) {
	grades, err := queryList[domain.Grade](ctx, r.db, newGradeRow,
		`SELECT `+gradeColumns+` FROM grades ORDER BY createdAt DESC, rowid DESC`)
	return grades, wrapErr("list grades", err)
}

// ListGradesBySubject returns the grades of a subject, newest first
func (r *Repository) ListGradesBySubject(ctx context.Context, subjectID string) ([]domain.Grade, error) {
	grades, err := queryList[domain.Grade](ctx, r.db, newGradeRow,
		`SELECT `+gradeColumns+` FROM grades WHERE subjectId = ? ORDER BY createdAt DESC, rowid DESC`, subjectID)
	return grades, wrapErr("list grades by subject", err)
}

// ListGradesByStudent returns the grades of a student, newest first
func (r *Repository) ListGradesByStudent(ctx context.Context, studentID string) ([]domain.Grade, error) {
	grades, err := queryList[domain.Grade](ctx, r.db, newGradeRow,
		`SELECT `+gradeColumns+` FROM grades WHERE studentId = ? ORDER BY createdAt DESC, rowid DESC`, studentID)
	return grades, wrapErr("list grades by student", err)
}

// findGrade looks a grade up by its upsert key. "number IS ?" makes a NULL
// number match only a NULL number.
func findGrade(ctx context.Context, q querier, key domain.GradeKey) (*domain.Grade, error) {
	return queryOne[domain.Grade](ctx, q, newGradeRow(), `
		SELECT `+gradeColumns+` FROM grades
		WHERE studentId = ? AND subjectId = ? AND type = ? AND number IS ?
		ORDER BY createdAt, rowid
		LIMIT 1
	`, key.StudentID, key.SubjectID, string(key.Type), intPtrToNull(key.Number))
}

// GetStudentGrade returns the value stored under key, or nil
func (r *Repository) GetStudentGrade(ctx context.Context, key domain.GradeKey) (*float64, error) {
	grade, err := findGrade(ctx, r.db, key)
	if err != nil {
		return nil, wrapErr("get student grade", err)
	}
	if grade == nil {
		return nil, nil
	}
	return &grade.Value, nil
}

// UpsertGrade writes value under key. An existing grade with the same
// (student, subject, type, number) keeps its id and createdAt and only gets
// the new value; otherwise a new grade is inserted. Returns the grade id.
func (r *Repository) UpsertGrade(ctx context.Context, key domain.GradeKey, value float64) (string, error) {
	if err := domain.Validate(&key); err != nil {
		return "", err
	}

	var id string
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		existing, err := findGrade(ctx, tx, key)
		if err != nil {
			return err
		}

		if existing != nil {
			id = existing.ID
			_, err := tx.ExecContext(ctx, `UPDATE grades SET value = ? WHERE id = ?`, value, id)
			return err
		}

		id = domain.NewID()
		_, err = tx.ExecContext(ctx, `
			INSERT INTO grades (id, studentId, subjectId, type, number, value, createdAt)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, id, key.StudentID, key.SubjectID, string(key.Type), intPtrToNull(key.Number),
			value, domain.FormatTimestamp(r.now()))
		return err
	})
	if err != nil {
		return "", wrapErr("upsert grade", err)
	}
	return id, nil
}

// UpdateGrade changes the value of a grade
func (r *Repository) UpdateGrade(ctx context.Context, id string, upd domain.GradeUpdate) error {
	var s setList
	if upd.Value != nil {
		s.set("value", *upd.Value)
	}
	return wrapErr("update grade", s.exec(ctx, r.db, "grades", id))
}

// DeleteGrade removes a single grade
func (r *Repository) DeleteGrade(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM grades WHERE id = ?`, id)
	return wrapErr("delete grade", err)
}
