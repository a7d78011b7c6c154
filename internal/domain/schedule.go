package domain

import "time"

// AttendanceStatus of a student or teacher for one slot on one date
type AttendanceStatus string

const (
	AttendancePresent   AttendanceStatus = "present"
	AttendanceAbsent    AttendanceStatus = "absent"
	AttendanceLate      AttendanceStatus = "late"
	AttendanceDismissed AttendanceStatus = "dismissed"
)

// ScheduleSlot is one weekly lesson of a class. Subject is a free label.
type ScheduleSlot struct {
	ID        string `json:"id"`
	Day       string `json:"day" validate:"required"`
	StartTime string `json:"startTime" validate:"required"`
	EndTime   string `json:"endTime" validate:"required"`
	Subject   string `json:"subject"`
	TeacherID string `json:"teacherId" validate:"required"`
	ClassID   string `json:"classId" validate:"required"`
}

// SlotInput is a slot submitted as part of a weekly class schedule
type SlotInput struct {
	Day       string `json:"day" validate:"required"`
	StartTime string `json:"startTime" validate:"required"`
	EndTime   string `json:"endTime" validate:"required"`
	Subject   string `json:"subject"`
	TeacherID string `json:"teacherId" validate:"required"`
}

// Slot builds the schedule slot for a class
func (in SlotInput) Slot(id, classID string) ScheduleSlot {
	return ScheduleSlot{
		ID:        id,
		Day:       in.Day,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
		Subject:   in.Subject,
		TeacherID: in.TeacherID,
		ClassID:   classID,
	}
}

// AttendanceRecord tracks presence of a student or a teacher for one slot.
// Either StudentID or TeacherID is normally set.
type AttendanceRecord struct {
	ID             string           `json:"id"`
	StudentID      string           `json:"studentId,omitempty"`
	TeacherID      string           `json:"teacherId,omitempty"`
	ScheduleSlotID string           `json:"scheduleSlotId" validate:"required"`
	Date           string           `json:"date" validate:"required"`
	Status         AttendanceStatus `json:"status" validate:"oneof=present absent late dismissed"`
	Justification  string           `json:"justification,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
}
