package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStudentValidation(t *testing.T) {
	s, err := NewStudent("S1", "CS1001", " Ada Lovelace ", "ada@example.com")
	require.NoError(t, err)
	assert.True(t, s.Active)
	assert.Equal(t, "Ada Lovelace", s.FullName)
	assert.Equal(t, PersonKindStudent, s.Kind())
	assert.Contains(t, s.Describe(), "Reg No: CS1001")

	_, err = NewStudent("S1", "1001", "Ada", "ada@example.com")
	assert.Error(t, err)
	_, err = NewStudent("S1", "CS1001", "Ada", "not-an-email")
	assert.Error(t, err)
	_, err = NewStudent("", "CS1001", "Ada", "ada@example.com")
	assert.Error(t, err)
}

func TestStudentEnrollmentViewIsCopied(t *testing.T) {
	s, err := NewStudent("S1", "CS1001", "Ada", "ada@example.com")
	require.NoError(t, err)
	first := EnrollmentKey{StudentID: "S1", Course: MustCourseCode("CS101")}
	second := EnrollmentKey{StudentID: "S1", Course: MustCourseCode("CS102")}
	s.AttachEnrollment(first)
	s.AttachEnrollment(second)

	keys := s.EnrollmentKeys()
	keys[0] = second
	assert.Equal(t, []EnrollmentKey{first, second}, s.EnrollmentKeys())

	clone := s.Clone()
	require.True(t, clone.DetachEnrollment(first))
	assert.Len(t, s.EnrollmentKeys(), 2)
	assert.Equal(t, []EnrollmentKey{second}, clone.EnrollmentKeys())
	assert.False(t, clone.DetachEnrollment(first))
}

func TestNewCourseDefaults(t *testing.T) {
	c, err := NewCourse(MustCourseCode("cs101"), "Intro", WithSemester("fall"))
	require.NoError(t, err)
	assert.Equal(t, DefaultCredits, c.Credits)
	assert.Equal(t, SemesterFall, c.Semester)
	assert.True(t, c.Active)

	_, err = NewCourse(MustCourseCode("cs101"), "Intro")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "semester", verr.Field)
	_, err = NewCourse(MustCourseCode("cs101"), "Intro", WithSemester("WINTER"))
	assert.Error(t, err)

	_, err = NewCourse(MustCourseCode("cs101"), "Intro", WithCredits(7))
	assert.Error(t, err)
	_, err = NewCourse(MustCourseCode("cs101"), "Intro", WithCredits(0))
	assert.Error(t, err)
	_, err = NewCourse(CourseCode{}, "Intro")
	assert.Error(t, err)
	_, err = NewCourse(MustCourseCode("cs101"), " ")
	assert.Error(t, err)

	c, err = NewCourse(MustCourseCode("cs101"), "Intro", WithCredits(6), WithSemester(SemesterSpring), WithDepartment("CS"))
	require.NoError(t, err)
	assert.Equal(t, 6, c.Credits)
	assert.Error(t, c.SetCredits(9))
	assert.Equal(t, 6, c.Credits)
}

func TestInstructorDescribe(t *testing.T) {
	i, err := NewInstructor("I1", "Grace Hopper", "grace@example.com", "CS", "F001")
	require.NoError(t, err)
	var p Person = i
	assert.Equal(t, PersonKindInstructor, p.Kind())
	assert.Contains(t, p.Describe(), "Department: CS")

	_, err = NewInstructor("I1", "Grace Hopper", "grace@example.com", "CS", "")
	assert.Error(t, err)
}
