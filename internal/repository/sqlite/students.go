package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"schooldb/internal/domain"
)

func newStudentRow() *studentRow { return &studentRow{} }

// ListStudents returns every student ordered by last name then first name
func (r *Repository) ListStudents(ctx context.Context) ([]domain.Student, error) {
	students, err := queryList[domain.Student](ctx, r.db, newStudentRow,
		`SELECT `+studentColumns+` FROM students ORDER BY lastName, firstName, id`)
	return students, wrapErr("list students", err)
}

// ListStudentsByClass returns the students of one class ordered by name
func (r *Repository) ListStudentsByClass(ctx context.Context, classID string) ([]domain.Student, error) {
	students, err := queryList[domain.Student](ctx, r.db, newStudentRow,
		`SELECT `+studentColumns+` FROM students WHERE classId = ? ORDER BY lastName, firstName, id`, classID)
	return students, wrapErr("list students by class", err)
}

// GetStudent returns nil when the student does not exist
func (r *Repository) GetStudent(ctx context.Context, id string) (*domain.Student, error) {
	student, err := queryOne[domain.Student](ctx, r.db, newStudentRow(),
		`SELECT `+studentColumns+` FROM students WHERE id = ?`, id)
	return student, wrapErr("get student", err)
}

// AddStudent inserts a student and refreshes the count of its class
func (r *Repository) AddStudent(ctx context.Context, s *domain.Student) (string, error) {
	if err := domain.Validate(s); err != nil {
		return "", err
	}

	id := domain.NewID()
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO students (id, firstName, lastName, birthDate, birthPlace,
				studentNumber, parentPhone, classId, gender)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, id, s.FirstName, s.LastName, s.BirthDate, s.BirthPlace,
			stringToNull(s.StudentNumber), s.ParentPhone, s.ClassID, string(s.Gender)); err != nil {
			return err
		}
		return recountClass(ctx, tx, s.ClassID)
	})
	if err != nil {
		return "", wrapErr("insert student", err)
	}

	s.ID = id
	return id, nil
}

// UpdateStudent applies a sparse update. When the class changes, both the
// old and the new class are recounted.
func (r *Repository) UpdateStudent(ctx context.Context, id string, upd domain.StudentUpdate) error {
	if err := domain.Validate(&upd); err != nil {
		return err
	}

	var s setList
	s.text("firstName", upd.FirstName)
	s.text("lastName", upd.LastName)
	s.text("birthDate", upd.BirthDate)
	s.text("birthPlace", upd.BirthPlace)
	s.optional("studentNumber", upd.StudentNumber)
	s.text("parentPhone", upd.ParentPhone)
	s.text("classId", upd.ClassID)
	if upd.Gender != nil {
		s.set("gender", string(*upd.Gender))
	}
	if s.empty() {
		return nil
	}

	err := r.withTx(ctx, func(tx *sql.Tx) error {
		oldClassID, err := classOfStudent(ctx, tx, id)
		if err != nil {
			return err
		}
		if oldClassID == "" {
			// unknown student
			return nil
		}

		if err := s.exec(ctx, tx, "students", id); err != nil {
			return err
		}

		if err := recountClass(ctx, tx, oldClassID); err != nil {
			return err
		}
		if upd.ClassID != nil && *upd.ClassID != oldClassID {
			return recountClass(ctx, tx, *upd.ClassID)
		}
		return nil
	})
	return wrapErr("update student", err)
}

// DeleteStudent removes a student with its grades and attendance and
// refreshes the count of its class
func (r *Repository) DeleteStudent(ctx context.Context, id string) error {
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		classID, err := classOfStudent(ctx, tx, id)
		if err != nil {
			return err
		}
		if classID == "" {
			return nil
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM students WHERE id = ?`, id); err != nil {
			return err
		}
		return recountClass(ctx, tx, classID)
	})
	return wrapErr("delete student", err)
}

// NextStudentNumber returns the next registration number for a year:
// the year followed by a 4 digit sequence, e.g. 20250007.
func (r *Repository) NextStudentNumber(ctx context.Context, year int) (string, error) {
	prefix := strconv.Itoa(year)

	rows, err := r.db.QueryContext(ctx,
		`SELECT studentNumber FROM students WHERE studentNumber LIKE ? || '%'`, prefix)
	if err != nil {
		return "", wrapErr("query student numbers", err)
	}
	defer rows.Close()

	highest := 0
	for rows.Next() {
		var number string
		if err := rows.Scan(&number); err != nil {
			return "", wrapErr("scan student number", err)
		}
		if len(number) < 4 {
			continue
		}
		seq, err := strconv.Atoi(number[len(number)-4:])
		if err != nil {
			continue
		}
		if seq > highest {
			highest = seq
		}
	}
	if err := rows.Err(); err != nil {
		return "", wrapErr("iterate student numbers", err)
	}

	return fmt.Sprintf("%s%04d", prefix, highest+1), nil
}
