package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-records/internal/models"
	"github.com/noah-isme/campus-records/internal/repository"
	"github.com/noah-isme/campus-records/pkg/validation"
)

type fixture struct {
	store       *repository.Store
	students    *StudentService
	courses     *CourseService
	instructors *InstructorService
	engine      *EnrollmentService
	transcripts *TranscriptService
	metrics     *MetricsService
}

func newFixture(t *testing.T, maxCredits int) *fixture {
	t.Helper()
	store := repository.NewStore()
	v := validation.New()
	metrics := NewMetricsService()
	instructorRepo := repository.NewInstructorRepository(store)
	return &fixture{
		store:       store,
		students:    NewStudentService(repository.NewStudentRepository(store), v, nil),
		courses:     NewCourseService(repository.NewCourseRepository(store), instructorRepo, v, nil),
		instructors: NewInstructorService(instructorRepo, v, nil),
		engine:      NewEnrollmentService(store, repository.NewEnrollmentRepository(store), maxCredits, metrics, v, nil),
		transcripts: NewTranscriptService(store, nil, nil),
		metrics:     metrics,
	}
}

func (f *fixture) addStudent(t *testing.T, id, regNo string) *models.Student {
	t.Helper()
	s, err := f.students.Create(context.Background(), CreateStudentRequest{ID: id, RegNo: regNo, FullName: "Student " + id, Email: id + "@example.com"})
	require.NoError(t, err)
	return s
}

func (f *fixture) addCourse(t *testing.T, code string, credits int, semester models.Semester) *models.Course {
	t.Helper()
	c, err := f.courses.Create(context.Background(), CreateCourseRequest{
		Code: code, Title: "Course " + code, Credits: credits, Department: "CS", Semester: string(semester),
	})
	require.NoError(t, err)
	return c
}

func (f *fixture) enrollmentCount(t *testing.T) int {
	t.Helper()
	count := 0
	require.NoError(t, f.store.View(context.Background(), func(tx *repository.Tx) error {
		count = len(tx.Enrollments(nil))
		return nil
	}))
	return count
}
