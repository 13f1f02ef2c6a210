package models

import "time"

// EnrollmentKey uniquely identifies an enrollment: a student takes a course at most once.
type EnrollmentKey struct {
	StudentID string
	Course    CourseCode
}

// EnrollmentState is derived from the grade.
type EnrollmentState string

const (
	EnrollmentStateEnrolled EnrollmentState = "ENROLLED"
	EnrollmentStateGraded   EnrollmentState = "GRADED"
)

// Enrollment links a student to a course.
type Enrollment struct {
	ID         string     `json:"id"`
	StudentID  string     `json:"student_id"`
	CourseCode CourseCode `json:"course_code"`
	EnrolledAt time.Time  `json:"enrolled_at"`
	Grade      Grade      `json:"grade"`
}

// Key returns the uniqueness key of e.
func (e Enrollment) Key() EnrollmentKey {
	return EnrollmentKey{StudentID: e.StudentID, Course: e.CourseCode}
}

// State reports ENROLLED until a real grade is recorded.
func (e Enrollment) State() EnrollmentState {
	if e.Grade.Graded() {
		return EnrollmentStateGraded
	}
	return EnrollmentStateEnrolled
}

// EnrollmentDetail enriches Enrollment with student and course info.
type EnrollmentDetail struct {
	Enrollment
	StudentRegNo string   `json:"student_reg_no"`
	StudentName  string   `json:"student_name"`
	CourseTitle  string   `json:"course_title"`
	Credits      int      `json:"credits"`
	Semester     Semester `json:"semester,omitempty"`
}

// GradePoints returns the points earned by the recorded grade.
func (d EnrollmentDetail) GradePoints() float64 {
	return d.Grade.Points()
}

// EnrollmentFilter narrows enrollment listings.
type EnrollmentFilter struct {
	StudentID  string
	CourseCode string
	Semester   Semester
	GradedOnly bool
}
