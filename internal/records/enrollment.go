package records

import (
	"fmt"
	"time"

	"github.com/noah-isme/campus-records/internal/models"
	"github.com/noah-isme/campus-records/pkg/delimited"
	"github.com/noah-isme/campus-records/pkg/export"
	"github.com/noah-isme/campus-records/pkg/validation"
)

const enrollmentFields = 4

// EnrollmentHeaders is the enrollment file header.
var EnrollmentHeaders = []string{"studentRegNo", "courseCode", "enrollmentTimestamp", "grade"}

// EnrollmentRecord is an enrollment row before it is resolved against the
// stored students and courses.
type EnrollmentRecord struct {
	StudentRegNo string
	CourseCode   models.CourseCode
	EnrolledAt   time.Time
	Grade        models.Grade
}

// ParseEnrollment reads studentRegNo, courseCode, timestamp and grade. An
// empty timestamp means now; any other unparseable value rejects the row.
func (c *Codec) ParseEnrollment(fields []string) (EnrollmentRecord, error) {
	if err := delimited.CheckFieldCount(fields, enrollmentFields, enrollmentFields); err != nil {
		return EnrollmentRecord{}, err
	}
	if !validation.IsRegNo(fields[0]) {
		return EnrollmentRecord{}, fmt.Errorf("student registration number %q is invalid", fields[0])
	}
	code, err := models.ParseCourseCode(fields[1])
	if err != nil {
		return EnrollmentRecord{}, err
	}
	enrolledAt := c.now()
	if fields[2] != "" {
		if enrolledAt, err = c.parseTime("enrollmentTimestamp", fields[2]); err != nil {
			return EnrollmentRecord{}, err
		}
	}
	grade, err := models.ParseGrade(fields[3])
	if err != nil {
		return EnrollmentRecord{}, err
	}
	return EnrollmentRecord{StudentRegNo: fields[0], CourseCode: code, EnrolledAt: enrolledAt, Grade: grade}, nil
}

// EnrollmentRow renders d in EnrollmentHeaders order.
func (c *Codec) EnrollmentRow(d models.EnrollmentDetail) []string {
	return []string{d.StudentRegNo, d.CourseCode.String(), c.formatTime(d.EnrolledAt), string(d.Grade)}
}

// Enrollments builds the export dataset for enrollments.
func (c *Codec) Enrollments(details []models.EnrollmentDetail) export.Dataset {
	rows := make([][]string, 0, len(details))
	for _, d := range details {
		rows = append(rows, c.EnrollmentRow(d))
	}
	return dataset(EnrollmentHeaders, rows)
}
