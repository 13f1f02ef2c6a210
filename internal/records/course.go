package records

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/noah-isme/campus-records/internal/models"
	"github.com/noah-isme/campus-records/pkg/delimited"
	"github.com/noah-isme/campus-records/pkg/export"
)

const (
	courseFields = 6
	// NoInstructor marks an unassigned course in the instructor column.
	NoInstructor = "N/A"
)

// CourseHeaders is the course file header. instructor is optional on input.
var CourseHeaders = []string{"code", "title", "credits", "department", "semester", "active", "instructor"}

// ParseCourse reads code, title, credits, department, semester, active and
// an optional instructor id.
func (c *Codec) ParseCourse(fields []string) (models.Course, error) {
	if err := delimited.CheckFieldCount(fields, courseFields, courseFields+1); err != nil {
		return models.Course{}, err
	}
	code, err := models.ParseCourseCode(fields[0])
	if err != nil {
		return models.Course{}, err
	}
	credits, err := strconv.Atoi(fields[2])
	if err != nil {
		return models.Course{}, fmt.Errorf("credits %q is not an integer", fields[2])
	}
	semester, err := models.ParseSemester(fields[4])
	if err != nil {
		return models.Course{}, err
	}
	active, err := parseBool("active", fields[5])
	if err != nil {
		return models.Course{}, err
	}
	opts := []models.CourseOption{
		models.WithCredits(credits),
		models.WithDepartment(fields[3]),
		models.WithSemester(semester),
		models.WithCourseActive(active),
	}
	if len(fields) > courseFields {
		if id := fields[6]; id != "" && !strings.EqualFold(id, NoInstructor) {
			opts = append(opts, models.WithInstructor(id))
		}
	}
	return models.NewCourse(code, fields[1], opts...)
}

// CourseRow renders course in CourseHeaders order.
func (c *Codec) CourseRow(course models.Course) []string {
	instructor := course.InstructorID
	if instructor == "" {
		instructor = NoInstructor
	}
	return []string{
		course.Code.String(),
		course.Title,
		strconv.Itoa(course.Credits),
		course.Department,
		string(course.Semester),
		formatBool(course.Active),
		instructor,
	}
}

// Courses builds the export dataset for courses.
func (c *Codec) Courses(courses []models.Course) export.Dataset {
	rows := make([][]string, 0, len(courses))
	for _, course := range courses {
		rows = append(rows, c.CourseRow(course))
	}
	return dataset(CourseHeaders, rows)
}
