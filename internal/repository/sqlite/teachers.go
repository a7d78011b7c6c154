package sqlite

import (
	"context"
	"database/sql"

	"schooldb/internal/domain"
)

func newTeacherRow() *teacherRow { return &teacherRow{} }

// ListTeachers returns every teacher ordered by last name then first name
func (r *Repository) ListTeachers(ctx context.Context) ([]domain.Teacher, error) {
	teachers, err := queryList[domain.Teacher](ctx, r.db, newTeacherRow,
		`SELECT `+teacherColumns+` FROM teachers ORDER BY lastName, firstName, id`)
	return teachers, wrapErr("list teachers", err)
}

// GetTeacher returns nil when the teacher does not exist
func (r *Repository) GetTeacher(ctx context.Context, id string) (*domain.Teacher, error) {
	teacher, err := queryOne[domain.Teacher](ctx, r.db, newTeacherRow(),
		`SELECT `+teacherColumns+` FROM teachers WHERE id = ?`, id)
	return teacher, wrapErr("get teacher", err)
}

// AddTeacher inserts a teacher and returns its id
func (r *Repository) AddTeacher(ctx context.Context, t *domain.Teacher) (string, error) {
	if err := domain.Validate(t); err != nil {
		return "", err
	}

	id := domain.NewID()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO teachers (id, firstName, lastName, subject, phone, email,
			birthDate, gender, residence, address, city, qualification)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, t.FirstName, t.LastName, t.Subject, t.Phone, t.Email,
		t.BirthDate, string(t.Gender), t.Residence,
		stringToNull(t.Address), stringToNull(t.City), stringToNull(t.Qualification))
	if err != nil {
		return "", wrapErr("insert teacher", err)
	}

	t.ID = id
	return id, nil
}

// UpdateTeacher applies a sparse update
func (r *Repository) UpdateTeacher(ctx context.Context, id string, upd domain.TeacherUpdate) error {
	if err := domain.Validate(&upd); err != nil {
		return err
	}

	var s setList
	s.text("firstName", upd.FirstName)
	s.text("lastName", upd.LastName)
	s.text("subject", upd.Subject)
	s.text("phone", upd.Phone)
	s.text("email", upd.Email)
	s.text("birthDate", upd.BirthDate)
	if upd.Gender != nil {
		s.set("gender", string(*upd.Gender))
	}
	s.text("residence", upd.Residence)
	s.optional("address", upd.Address)
	s.optional("city", upd.City)
	s.optional("qualification", upd.Qualification)

	return wrapErr("update teacher", s.exec(ctx, r.db, "teachers", id))
}

// DeleteTeacher clears the teacher's schedule slots, then removes the
// teacher, in one transaction. Attendance of the teacher and of the
// cleared slots cascades.
func (r *Repository) DeleteTeacher(ctx context.Context, id string) error {
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM schedule_slots WHERE teacherId = ?`, id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM teachers WHERE id = ?`, id)
		return err
	})
	return wrapErr("delete teacher", err)
}
