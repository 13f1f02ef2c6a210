package models

import (
	"strconv"
	"strings"
)

// Credit bounds for a course.
const (
	DefaultCredits = 3
	MinCredits     = 1
	MaxCredits     = 6
)

// Course is identified by its code; two courses with the same code are the same course.
type Course struct {
	Code         CourseCode `json:"code"`
	Title        string     `json:"title"`
	Credits      int        `json:"credits"`
	InstructorID string     `json:"instructor_id,omitempty"`
	Semester     Semester   `json:"semester,omitempty"`
	Department   string     `json:"department,omitempty"`
	Active       bool       `json:"active"`
}

// CourseOption customises NewCourse.
type CourseOption func(*Course)

func WithCredits(credits int) CourseOption {
	return func(c *Course) { c.Credits = credits }
}

func WithInstructor(instructorID string) CourseOption {
	return func(c *Course) { c.InstructorID = strings.TrimSpace(instructorID) }
}

func WithSemester(semester Semester) CourseOption {
	return func(c *Course) { c.Semester = semester }
}

func WithDepartment(department string) CourseOption {
	return func(c *Course) { c.Department = strings.TrimSpace(department) }
}

func WithCourseActive(active bool) CourseOption {
	return func(c *Course) { c.Active = active }
}

// NewCourse requires a code, a title and a semester; credits default to
// DefaultCredits.
func NewCourse(code CourseCode, title string, opts ...CourseOption) (Course, error) {
	if code.IsZero() {
		return Course{}, invalid("course code", "", "is required")
	}
	c := Course{Code: code, Credits: DefaultCredits, Active: true}
	if err := c.Retitle(title); err != nil {
		return Course{}, err
	}
	for _, opt := range opts {
		opt(&c)
	}
	if err := ValidateCredits(c.Credits); err != nil {
		return Course{}, err
	}
	semester, err := ParseSemester(string(c.Semester))
	if err != nil {
		return Course{}, err
	}
	c.Semester = semester
	return c, nil
}

// ValidateCredits enforces the inclusive credit range.
func ValidateCredits(credits int) error {
	if credits < MinCredits || credits > MaxCredits {
		return invalid("credits", strconv.Itoa(credits), "must be between 1 and 6")
	}
	return nil
}

// Retitle replaces the title.
func (c *Course) Retitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return invalid("title", title, "is required")
	}
	c.Title = title
	return nil
}

// SetCredits replaces the credit load after range validation.
func (c *Course) SetCredits(credits int) error {
	if err := ValidateCredits(credits); err != nil {
		return err
	}
	c.Credits = credits
	return nil
}

// CourseFilter narrows course listings.
type CourseFilter struct {
	Semester        Semester
	Department      string
	InstructorID    string
	IncludeInactive bool
}
