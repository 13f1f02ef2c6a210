package records

import (
	"time"

	"github.com/noah-isme/campus-records/internal/models"
	"github.com/noah-isme/campus-records/pkg/delimited"
	"github.com/noah-isme/campus-records/pkg/export"
)

const studentFields = 5

// StudentHeaders is the student file header. createdAt is optional on input.
var StudentHeaders = []string{"id", "regNo", "fullName", "email", "active", "createdAt"}

// ParseStudent reads id, regNo, fullName, email, active and an optional createdAt.
func (c *Codec) ParseStudent(fields []string) (models.Student, error) {
	if err := delimited.CheckFieldCount(fields, studentFields, studentFields+1); err != nil {
		return models.Student{}, err
	}
	active, err := parseBool("active", fields[4])
	if err != nil {
		return models.Student{}, err
	}
	var createdAt time.Time
	if len(fields) > studentFields && fields[5] != "" {
		if createdAt, err = c.parseTime("createdAt", fields[5]); err != nil {
			return models.Student{}, err
		}
	}
	return models.NewStudent(fields[0], fields[1], fields[2], fields[3],
		models.WithStudentActive(active), models.WithStudentCreatedAt(createdAt))
}

// StudentRow renders s in StudentHeaders order.
func (c *Codec) StudentRow(s models.Student) []string {
	return []string{s.ID, s.RegNo, s.FullName, s.Email, formatBool(s.Active), c.formatTime(s.CreatedAt)}
}

// Students builds the export dataset for students.
func (c *Codec) Students(students []models.Student) export.Dataset {
	rows := make([][]string, 0, len(students))
	for _, s := range students {
		rows = append(rows, c.StudentRow(s))
	}
	return dataset(StudentHeaders, rows)
}
