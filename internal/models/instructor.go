package models

import (
	"fmt"
	"strings"
)

// Instructor is a member of faculty who may be assigned to courses.
type Instructor struct {
	Profile
	Department string `json:"department"`
	FacultyID  string `json:"faculty_id"`
}

// NewInstructor validates the shared profile and requires a faculty id.
func NewInstructor(id, fullName, email, department, facultyID string) (Instructor, error) {
	profile, err := newProfile(id, fullName, email)
	if err != nil {
		return Instructor{}, err
	}
	facultyID = strings.TrimSpace(facultyID)
	if facultyID == "" {
		return Instructor{}, invalid("faculty id", facultyID, "is required")
	}
	return Instructor{Profile: profile, Department: strings.TrimSpace(department), FacultyID: facultyID}, nil
}

func (i Instructor) Identity() Profile { return i.Profile }
func (i Instructor) Kind() PersonKind  { return PersonKindInstructor }

func (i Instructor) Describe() string {
	return fmt.Sprintf("Instructor Profile:\nID: %s\nFaculty ID: %s\nName: %s\nEmail: %s\nDepartment: %s",
		i.ID, i.FacultyID, i.FullName, i.Email, i.Department)
}
