package sqlite

import (
	"context"
	"database/sql"

	"schooldb/internal/domain"
)

func newSlotRow() *slotRow { return &slotRow{} }

// ListScheduleSlots returns every slot ordered by day then start time
func (r *Repository) ListScheduleSlots(ctx context.Context) ([]domain.ScheduleSlot, error) {
	slots, err := queryList[domain.ScheduleSlot](ctx, r.db, newSlotRow,
		`SELECT `+slotColumns+` FROM schedule_slots ORDER BY day, startTime, id`)
	return slots, wrapErr("list schedule slots", err)
}

// ListScheduleByClass returns the weekly schedule of a class
func (r *Repository) ListScheduleByClass(ctx context.Context, classID string) ([]domain.ScheduleSlot, error) {
	slots, err := queryList[domain.ScheduleSlot](ctx, r.db, newSlotRow,
		`SELECT `+slotColumns+` FROM schedule_slots WHERE classId = ? ORDER BY day, startTime, id`, classID)
	return slots, wrapErr("list schedule by class", err)
}

// ListScheduleByTeacher returns the weekly schedule of a teacher
func (r *Repository) ListScheduleByTeacher(ctx context.Context, teacherID string) ([]domain.ScheduleSlot, error) {
	slots, err := queryList[domain.ScheduleSlot](ctx, r.db, newSlotRow,
		`SELECT `+slotColumns+` FROM schedule_slots WHERE teacherId = ? ORDER BY day, startTime, id`, teacherID)
	return slots, wrapErr("list schedule by teacher", err)
}

// GetScheduleSlot returns nil when the slot does not exist
func (r *Repository) GetScheduleSlot(ctx context.Context, id string) (*domain.ScheduleSlot, error) {
	slot, err := queryOne[domain.ScheduleSlot](ctx, r.db, newSlotRow(),
		`SELECT `+slotColumns+` FROM schedule_slots WHERE id = ?`, id)
	return slot, wrapErr("get schedule slot", err)
}

// ReplaceClassSchedule swaps the whole weekly schedule of a class in one
// transaction: existing slots are deleted, then the given ones inserted.
// A failure leaves the previous schedule in place. Returns the new slot ids.
func (r *Repository) ReplaceClassSchedule(ctx context.Context, classID string, slots []domain.SlotInput) ([]string, error) {
	for i := range slots {
		if err := domain.Validate(&slots[i]); err != nil {
			return nil, err
		}
	}

	ids := make([]string, 0, len(slots))
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM schedule_slots WHERE classId = ?`, classID); err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO schedule_slots (id, day, startTime, endTime, subject, teacherId, classId)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, in := range slots {
			slot := in.Slot(domain.NewSlotID(classID), classID)
			if _, err := stmt.ExecContext(ctx, slot.ID, slot.Day, slot.StartTime, slot.EndTime,
				slot.Subject, slot.TeacherID, slot.ClassID); err != nil {
				return err
			}
			ids = append(ids, slot.ID)
		}
		return nil
	})
	if err != nil {
		return nil, wrapErr("replace class schedule", err)
	}
	return ids, nil
}

// AddScheduleSlot inserts a single slot and returns its id
func (r *Repository) AddScheduleSlot(ctx context.Context, slot *domain.ScheduleSlot) (string, error) {
	if err := domain.Validate(slot); err != nil {
		return "", err
	}

	id := domain.NewID()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO schedule_slots (id, day, startTime, endTime, subject, teacherId, classId)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, slot.Day, slot.StartTime, slot.EndTime, slot.Subject, slot.TeacherID, slot.ClassID)
	if err != nil {
		return "", wrapErr("insert schedule slot", err)
	}

	slot.ID = id
	return id, nil
}

// UpdateScheduleSlot applies a sparse update
func (r *Repository) UpdateScheduleSlot(ctx context.Context, id string, upd domain.ScheduleSlotUpdate) error {
	if err := domain.Validate(&upd); err != nil {
		return err
	}

	var s setList
	s.text("day", upd.Day)
	s.text("startTime", upd.StartTime)
	s.text("endTime", upd.EndTime)
	s.text("subject", upd.Subject)
	s.text("teacherId", upd.TeacherID)
	s.text("classId", upd.ClassID)
	return wrapErr("update schedule slot", s.exec(ctx, r.db, "schedule_slots", id))
}

// DeleteScheduleSlot removes one slot and its attendance records
func (r *Repository) DeleteScheduleSlot(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM schedule_slots WHERE id = ?`, id)
	return wrapErr("delete schedule slot", err)
}

// DeleteClassSchedule removes every slot of a class
func (r *Repository) DeleteClassSchedule(ctx context.Context, classID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM schedule_slots WHERE classId = ?`, classID)
	return wrapErr("delete class schedule", err)
}

// DeleteTeacherSchedule removes every slot taught by a teacher
func (r *Repository) DeleteTeacherSchedule(ctx context.Context, teacherID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM schedule_slots WHERE teacherId = ?`, teacherID)
	return wrapErr("delete teacher schedule", err)
}
