package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/campus-records/pkg/validation"
)

// Student is a learner with a unique registration number. The enrollment
// view references entries of the engine's master list in insertion order.
type Student struct {
	Profile
	RegNo string `json:"reg_no"`

	enrollments []EnrollmentKey
}

// StudentOption customises NewStudent.
type StudentOption func(*Student)

// WithStudentActive overrides the default active flag.
func WithStudentActive(active bool) StudentOption {
	return func(s *Student) { s.Active = active }
}

// WithStudentCreatedAt sets the creation timestamp.
func WithStudentCreatedAt(at time.Time) StudentOption {
	return func(s *Student) {
		if !at.IsZero() {
			s.CreatedAt = at
		}
	}
}

// NewStudent validates the required fields and returns an active student.
func NewStudent(id, regNo, fullName, email string, opts ...StudentOption) (Student, error) {
	profile, err := newProfile(id, fullName, email)
	if err != nil {
		return Student{}, err
	}
	regNo = strings.TrimSpace(regNo)
	if !validation.IsRegNo(regNo) {
		return Student{}, invalid("registration number", regNo, "must be 2-3 letters followed by 3-5 digits")
	}
	s := Student{Profile: profile, RegNo: regNo}
	for _, opt := range opts {
		opt(&s)
	}
	return s, nil
}

func (s Student) Identity() Profile { return s.Profile }
func (s Student) Kind() PersonKind  { return PersonKindStudent }

// Describe renders the student profile card.
func (s Student) Describe() string {
	return fmt.Sprintf("Student Profile:\nID: %s\nReg No: %s\nName: %s\nEmail: %s\nStatus: %s",
		s.ID, s.RegNo, s.FullName, s.Email, statusLabel(s.Active))
}

// EnrollmentKeys returns a copy of the student's enrollment view.
func (s Student) EnrollmentKeys() []EnrollmentKey {
	return append([]EnrollmentKey(nil), s.enrollments...)
}

// AttachEnrollment appends key to the enrollment view.
func (s *Student) AttachEnrollment(key EnrollmentKey) {
	s.enrollments = append(s.enrollments, key)
}

// DetachEnrollment removes key from the enrollment view.
func (s *Student) DetachEnrollment(key EnrollmentKey) bool {
	for i, k := range s.enrollments {
		if k == key {
			s.enrollments = append(s.enrollments[:i:i], s.enrollments[i+1:]...)
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no mutable state with s.
func (s Student) Clone() Student {
	s.enrollments = append([]EnrollmentKey(nil), s.enrollments...)
	return s
}

// StudentFilter narrows student listings. Inactive students are excluded
// unless IncludeInactive is set.
type StudentFilter struct {
	Search          string
	IncludeInactive bool
	Page            int
	PageSize        int
}
