package sqlite

import (
	"context"

	"schooldb/internal/domain"
)

func newSubjectRow() *subjectRow { return &subjectRow{} }

// ListSubjects returns every subject ordered by name
func (r *Repository) ListSubjects(ctx context.Context) ([]domain.Subject, error) {
	subjects, err := queryList[domain.Subject](ctx, r.db, newSubjectRow,
		`SELECT `+subjectColumns+` FROM subjects ORDER BY name, id`)
	return subjects, wrapErr("list subjects", err)
}

// ListSubjectsByClass returns the subjects of a class over both semesters
func (r *Repository) ListSubjectsByClass(ctx context.Context, classID string) ([]domain.Subject, error) {
	subjects, err := queryList[domain.Subject](ctx, r.db, newSubjectRow,
		`SELECT `+subjectColumns+` FROM subjects WHERE classId = ? ORDER BY name, id`, classID)
	return subjects, wrapErr("list subjects by class", err)
}

// ListSubjectsByClassAndSemester returns the subjects of a class for one semester
func (r *Repository) ListSubjectsByClassAndSemester(ctx context.Context, classID string, semester domain.Semester) ([]domain.Subject, error) {
	subjects, err := queryList[domain.Subject](ctx, r.db, newSubjectRow,
		`SELECT `+subjectColumns+` FROM subjects WHERE classId = ? AND semester = ? ORDER BY name, id`,
		classID, string(semester))
	return subjects, wrapErr("list subjects by class and semester", err)
}

// GetSubject returns nil when the subject does not exist
func (r *Repository) GetSubject(ctx context.Context, id string) (*domain.Subject, error) {
	subject, err := queryOne[domain.Subject](ctx, r.db, newSubjectRow(),
		`SELECT `+subjectColumns+` FROM subjects WHERE id = ?`, id)
	return subject, wrapErr("get subject", err)
}

// AddSubject inserts a subject and returns its id
func (r *Repository) AddSubject(ctx context.Context, s *domain.Subject) (string, error) {
	if err := domain.Validate(s); err != nil {
		return "", err
	}

	id := domain.NewID()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO subjects (id, name, coefficient, classId, semester) VALUES (?, ?, ?, ?, ?)`,
		id, s.Name, s.Coefficient, s.ClassID, string(s.Semester))
	if err != nil {
		return "", wrapErr("insert subject", err)
	}

	s.ID = id
	return id, nil
}

// UpdateSubject applies a sparse update
func (r *Repository) UpdateSubject(ctx context.Context, id string, upd domain.SubjectUpdate) error {
	if err := domain.Validate(&upd); err != nil {
		return err
	}

	var s setList
	s.text("name", upd.Name)
	if upd.Coefficient != nil {
		s.set("coefficient", *upd.Coefficient)
	}
	s.text("classId", upd.ClassID)
	if upd.Semester != nil {
		s.set("semester", string(*upd.Semester))
	}
	return wrapErr("update subject", s.exec(ctx, r.db, "subjects", id))
}

// DeleteSubject removes a subject and its grades
func (r *Repository) DeleteSubject(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM subjects WHERE id = ?`, id)
	return wrapErr("delete subject", err)
}
