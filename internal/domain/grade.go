package domain

import "time"

// Semester is stored as text '1' or '2'
type Semester string

const (
	Semester1 Semester = "1"
	Semester2 Semester = "2"
)

// GradeType distinguishes continuous assessment from exams
type GradeType string

const (
	GradeTypeDevoir      GradeType = "devoir"
	GradeTypeComposition GradeType = "composition"
)

// Subject is taught to one class in one semester
type Subject struct {
	ID          string   `json:"id"`
	Name        string   `json:"name" validate:"required"`
	Coefficient int      `json:"coefficient" validate:"gte=0"`
	ClassID     string   `json:"classId" validate:"required"`
	Semester    Semester `json:"semester" validate:"oneof=1 2"`
}

// Grade is a single mark. Number orders several devoirs of the same subject
// and is nil for compositions.
type Grade struct {
	ID        string    `json:"id"`
	StudentID string    `json:"studentId"`
	SubjectID string    `json:"subjectId"`
	Type      GradeType `json:"type"`
	Number    *int      `json:"number,omitempty"`
	Value     float64   `json:"value"`
	CreatedAt time.Time `json:"createdAt"`
}

// GradeKey identifies a grade for upserts. A nil Number only matches
// grades stored without a number.
type GradeKey struct {
	StudentID string    `validate:"required"`
	SubjectID string    `validate:"required"`
	Type      GradeType `validate:"oneof=devoir composition"`
	Number    *int
}

// Key returns the upsert key of the grade
func (g *Grade) Key() GradeKey {
	return GradeKey{
		StudentID: g.StudentID,
		SubjectID: g.SubjectID,
		Type:      g.Type,
		Number:    g.Number,
	}
}
