package sqlite

import "schooldb/internal/domain"

// SchemaVersion is stamped into generated reconstruction scripts
const SchemaVersion = 1

// Table describes one table of the store
type Table struct {
	Name    string
	Columns []string
	DDL     string
}

// Tables lists every table in foreign key dependency order. Parents always
// come before children, so replaying inserts in this order is valid.
var Tables = []Table{
	{
		Name:    "classes",
		Columns: []string{"id", "name", "studentCount"},
		DDL: `CREATE TABLE IF NOT EXISTS classes (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  studentCount INTEGER DEFAULT 0
);`,
	},
	{
		Name: "students",
		Columns: []string{"id", "firstName", "lastName", "birthDate", "birthPlace",
			"studentNumber", "parentPhone", "classId", "gender"},
		DDL: `CREATE TABLE IF NOT EXISTS students (
  id TEXT PRIMARY KEY,
  firstName TEXT NOT NULL,
  lastName TEXT NOT NULL,
  birthDate TEXT NOT NULL,
  birthPlace TEXT NOT NULL,
  studentNumber TEXT,
  parentPhone TEXT NOT NULL,
  classId TEXT NOT NULL,
  gender TEXT CHECK(gender IN ('male', 'female')) NOT NULL,
  FOREIGN KEY (classId) REFERENCES classes (id) ON DELETE CASCADE
);`,
	},
	{
		Name: "teachers",
		Columns: []string{"id", "firstName", "lastName", "subject", "phone", "email",
			"birthDate", "gender", "residence", "address", "city", "qualification"},
		DDL: `CREATE TABLE IF NOT EXISTS teachers (
  id TEXT PRIMARY KEY,
  firstName TEXT NOT NULL,
  lastName TEXT NOT NULL,
  subject TEXT NOT NULL,
  phone TEXT NOT NULL,
  email TEXT NOT NULL,
  birthDate TEXT NOT NULL,
  gender TEXT CHECK(gender IN ('male', 'female')) NOT NULL,
  residence TEXT NOT NULL,
  address TEXT,
  city TEXT,
  qualification TEXT
);`,
	},
	{
		Name:    "subjects",
		Columns: []string{"id", "name", "coefficient", "classId", "semester"},
		DDL: `CREATE TABLE IF NOT EXISTS subjects (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  coefficient INTEGER NOT NULL,
  classId TEXT NOT NULL,
  semester TEXT CHECK(semester IN ('1', '2')) NOT NULL,
  FOREIGN KEY (classId) REFERENCES classes (id) ON DELETE CASCADE
);`,
	},
	{
		Name:    "grades",
		Columns: []string{"id", "studentId", "subjectId", "type", "number", "value", "createdAt"},
		DDL: `CREATE TABLE IF NOT EXISTS grades (
  id TEXT PRIMARY KEY,
  studentId TEXT NOT NULL,
  subjectId TEXT NOT NULL,
  type TEXT CHECK(type IN ('devoir', 'composition')) NOT NULL,
  number INTEGER,
  value REAL NOT NULL,
  createdAt TEXT NOT NULL,
  FOREIGN KEY (studentId) REFERENCES students (id) ON DELETE CASCADE,
  FOREIGN KEY (subjectId) REFERENCES subjects (id) ON DELETE CASCADE
);`,
	},
	{
		Name:    "schedule_slots",
		Columns: []string{"id", "day", "startTime", "endTime", "subject", "teacherId", "classId"},
		DDL: `CREATE TABLE IF NOT EXISTS schedule_slots (
  id TEXT PRIMARY KEY,
  day TEXT NOT NULL,
  startTime TEXT NOT NULL,
  endTime TEXT NOT NULL,
  subject TEXT NOT NULL,
  teacherId TEXT NOT NULL,
  classId TEXT NOT NULL,
  FOREIGN KEY (teacherId) REFERENCES teachers (id) ON DELETE CASCADE,
  FOREIGN KEY (classId) REFERENCES classes (id) ON DELETE CASCADE
);`,
	},
	{
		Name: "attendance",
		Columns: []string{"id", "studentId", "teacherId", "scheduleSlotId", "date",
			"status", "justification", "createdAt"},
		DDL: `CREATE TABLE IF NOT EXISTS attendance (
  id TEXT PRIMARY KEY,
  studentId TEXT,
  teacherId TEXT,
  scheduleSlotId TEXT NOT NULL,
  date TEXT NOT NULL,
  status TEXT CHECK(status IN ('present', 'absent', 'late', 'dismissed')) NOT NULL,
  justification TEXT,
  createdAt TEXT NOT NULL,
  FOREIGN KEY (studentId) REFERENCES students (id) ON DELETE CASCADE,
  FOREIGN KEY (teacherId) REFERENCES teachers (id) ON DELETE CASCADE,
  FOREIGN KEY (scheduleSlotId) REFERENCES schedule_slots (id) ON DELETE CASCADE
);`,
	},
}

// indexes speed up the per-parent list operations. They are not part of
// the exported schema script.
const indexes = `
CREATE INDEX IF NOT EXISTS idx_students_class ON students(classId);
CREATE INDEX IF NOT EXISTS idx_subjects_class ON subjects(classId, semester);
CREATE INDEX IF NOT EXISTS idx_grades_lookup ON grades(studentId, subjectId, type);
CREATE INDEX IF NOT EXISTS idx_grades_subject ON grades(subjectId);
CREATE INDEX IF NOT EXISTS idx_schedule_class ON schedule_slots(classId);
CREATE INDEX IF NOT EXISTS idx_schedule_teacher ON schedule_slots(teacherId);
CREATE INDEX IF NOT EXISTS idx_attendance_date ON attendance(date);
CREATE INDEX IF NOT EXISTS idx_attendance_slot ON attendance(scheduleSlotId, date);
`

// DefaultClasses are inserted into a freshly created store
var DefaultClasses = []domain.Class{
	{ID: "1", Name: "6ème A"},
	{ID: "2", Name: "6ème B"},
	{ID: "3", Name: "5ème A"},
	{ID: "4", Name: "4ème A"},
	{ID: "5", Name: "3ème A"},
}
