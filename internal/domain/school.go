package domain

// Gender of a student or teacher
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Class is a school class. StudentCount is a cache of the number of
// students whose ClassID points at this class.
type Class struct {
	ID           string `json:"id"`
	Name         string `json:"name" validate:"required"`
	StudentCount int    `json:"studentCount"`
}

// Student belongs to exactly one class
type Student struct {
	ID            string `json:"id"`
	FirstName     string `json:"firstName" validate:"required"`
	LastName      string `json:"lastName" validate:"required"`
	BirthDate     string `json:"birthDate" validate:"required"`
	BirthPlace    string `json:"birthPlace" validate:"required"`
	StudentNumber string `json:"studentNumber,omitempty"`
	ParentPhone   string `json:"parentPhone" validate:"required"`
	ClassID       string `json:"classId" validate:"required"`
	Gender        Gender `json:"gender" validate:"oneof=male female"`
}

// FullName returns "LastName FirstName" as shown in class lists
func (s *Student) FullName() string {
	return s.LastName + " " + s.FirstName
}

// Teacher is a member of staff. Address, City and Qualification are optional.
type Teacher struct {
	ID            string `json:"id"`
	FirstName     string `json:"firstName" validate:"required"`
	LastName      string `json:"lastName" validate:"required"`
	Subject       string `json:"subject" validate:"required"`
	Phone         string `json:"phone" validate:"required"`
	Email         string `json:"email" validate:"required"`
	BirthDate     string `json:"birthDate" validate:"required"`
	Gender        Gender `json:"gender" validate:"oneof=male female"`
	Residence     string `json:"residence" validate:"required"`
	Address       string `json:"address,omitempty"`
	City          string `json:"city,omitempty"`
	Qualification string `json:"qualification,omitempty"`
}
