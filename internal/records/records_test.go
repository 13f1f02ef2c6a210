package records

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-records/internal/models"
	"github.com/noah-isme/campus-records/pkg/delimited"
	"github.com/noah-isme/campus-records/pkg/export"
)

func newCodec() *Codec {
	fixed := time.Date(2024, 9, 1, 8, 30, 0, 0, time.UTC)
	return NewCodec("2006-01-02 15:04:05", WithLocation(time.UTC), WithClock(func() time.Time { return fixed }))
}

func TestParseStudent(t *testing.T) {
	c := newCodec()
	s, err := c.ParseStudent([]string{"S1", "CS1001", "Ada Lovelace", "ada@example.com", "TRUE"})
	require.NoError(t, err)
	assert.Equal(t, "CS1001", s.RegNo)
	assert.True(t, s.Active)

	s, err = c.ParseStudent([]string{"S2", "CS1002", "Alan", "alan@example.com", "false", "2023-01-02 03:04:05"})
	require.NoError(t, err)
	assert.False(t, s.Active)
	assert.Equal(t, time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC), s.CreatedAt)

	_, err = c.ParseStudent([]string{"S1", "CS1001", "Ada"})
	assert.ErrorIs(t, err, delimited.ErrFieldCount)
	_, err = c.ParseStudent([]string{"S1", "CS1001", "Ada", "ada@example.com", "yes"})
	assert.Error(t, err)
	_, err = c.ParseStudent([]string{"S1", "1", "Ada", "ada@example.com", "true"})
	assert.Error(t, err)
}

func TestParseCourse(t *testing.T) {
	c := newCodec()
	course, err := c.ParseCourse([]string{"cs101", "Intro", "4", "CS", "fall", "true"})
	require.NoError(t, err)
	assert.Equal(t, "CS101", course.Code.String())
	assert.Equal(t, 4, course.Credits)
	assert.Equal(t, models.SemesterFall, course.Semester)
	assert.Empty(t, course.InstructorID)

	course, err = c.ParseCourse([]string{"CS102", "Data", "3", "CS", "SPRING", "false", "I1"})
	require.NoError(t, err)
	assert.Equal(t, "I1", course.InstructorID)

	course, err = c.ParseCourse([]string{"CS103", "Data", "3", "CS", "SPRING", "true", "n/a"})
	require.NoError(t, err)
	assert.Empty(t, course.InstructorID)

	for _, fields := range [][]string{
		{"CS101", "Intro", "7", "CS", "FALL", "true"},
		{"CS101", "Intro", "three", "CS", "FALL", "true"},
		{"CS101", "Intro", "3", "CS", "WINTER", "true"},
		{"CS101", "Intro", "3", "CS", "", "true"},
		{"101", "Intro", "3", "CS", "FALL", "true"},
		{"CS101", "Intro", "3", "CS", "FALL"},
	} {
		_, err := c.ParseCourse(fields)
		assert.Error(t, err, "%v", fields)
	}
}

func TestParseEnrollment(t *testing.T) {
	c := newCodec()
	rec, err := c.ParseEnrollment([]string{"CS1001", "cs101", "", ""})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 9, 1, 8, 30, 0, 0, time.UTC), rec.EnrolledAt)
	assert.Equal(t, models.GradeNotGraded, rec.Grade)

	rec, err = c.ParseEnrollment([]string{"CS1001", "CS101", "2024-02-03 10:11:12", "a"})
	require.NoError(t, err)
	assert.Equal(t, models.GradeA, rec.Grade)
	assert.Equal(t, 2024, rec.EnrolledAt.Year())

	_, err = c.ParseEnrollment([]string{"CS1001", "CS101", "yesterday", "A"})
	assert.Error(t, err)
	_, err = c.ParseEnrollment([]string{"CS1001", "CS101", "", "Q"})
	assert.Error(t, err)
}

func TestStudentExportIngestRoundTrip(t *testing.T) {
	c := newCodec()
	created := time.Date(2023, 5, 6, 7, 8, 9, 0, time.UTC)
	var students []models.Student
	for _, in := range []struct{ id, reg, name, email string }{
		{"S1", "CS1001", "Doe, Jr.", "doe@example.com"},
		{"S2", "ME2002", `Quote "Q" Person`, "q@example.com"},
		{"S3", "EE303", `Back\Slash`, "b@example.com"},
	} {
		s, err := models.NewStudent(in.id, in.reg, in.name, in.email, models.WithStudentCreatedAt(created))
		require.NoError(t, err)
		students = append(students, s)
	}
	students[2].Active = false

	var buf bytes.Buffer
	_, err := export.NewCSVExporter(export.WithBackslashEscaping()).Write(&buf, c.Students(students))
	require.NoError(t, err)

	result, err := delimited.Parse(&buf, delimited.DefaultOptions(), c.ParseStudent)
	require.NoError(t, err)
	require.Empty(t, result.Diagnostics)
	got := result.Values()
	require.Len(t, got, len(students))
	for i := range students {
		assert.Equal(t, students[i].ID, got[i].ID)
		assert.Equal(t, students[i].RegNo, got[i].RegNo)
		assert.Equal(t, students[i].FullName, got[i].FullName)
		assert.Equal(t, students[i].Email, got[i].Email)
		assert.Equal(t, students[i].Active, got[i].Active)
		assert.True(t, students[i].CreatedAt.Equal(got[i].CreatedAt))
	}
}

func TestCourseExportIngestRoundTrip(t *testing.T) {
	c := newCodec()
	a, err := models.NewCourse(models.MustCourseCode("CS101"), "Intro, Part I", models.WithSemester(models.SemesterFall), models.WithDepartment("CS"))
	require.NoError(t, err)
	b, err := models.NewCourse(models.MustCourseCode("MA201"), "Calculus", models.WithCredits(5),
		models.WithSemester(models.SemesterSpring), models.WithInstructor("I7"), models.WithCourseActive(false))
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = export.NewCSVExporter(export.WithDelimiter('|'), export.WithBackslashEscaping()).Write(&buf, c.Courses([]models.Course{a, b}))
	require.NoError(t, err)

	opts := delimited.DefaultOptions()
	opts.Delimiter = '|'
	result, err := delimited.Parse(&buf, opts, c.ParseCourse)
	require.NoError(t, err)
	require.Empty(t, result.Diagnostics)
	assert.Equal(t, []models.Course{a, b}, result.Values())
}

func TestParseEntity(t *testing.T) {
	e, err := ParseEntity(" Students ")
	require.NoError(t, err)
	assert.Equal(t, EntityStudents, e)
	assert.Equal(t, 5, e.MinFields())
	assert.Equal(t, "students.csv", e.FileName())
	_, err = ParseEntity("grades")
	assert.Error(t, err)
}
