package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-records/internal/models"
)

func TestEnrollmentRepositoryQueries(t *testing.T) {
	store := NewStore()
	seed(t, store)
	ctx := context.Background()
	require.NoError(t, store.Update(ctx, func(tx *Tx) error {
		if err := tx.InsertStudent(mustStudent(t, "S2", "CS1002")); err != nil {
			return err
		}
		for _, e := range []models.Enrollment{
			enrollment("S1", "CS101"),
			enrollment("S2", "CS101"),
			enrollment("S1", "CS201"),
		} {
			if err := tx.AppendEnrollment(e); err != nil {
				return err
			}
		}
		_, err := tx.SetGrade("S1", models.MustCourseCode("CS201"), models.GradeB)
		return err
	}))

	repo := NewEnrollmentRepository(store)

	byStudent, err := repo.ListByStudent(ctx, "S1")
	require.NoError(t, err)
	assert.Len(t, byStudent, 2)

	byCourse, err := repo.ListByCourse(ctx, models.MustCourseCode("CS101"))
	require.NoError(t, err)
	assert.Len(t, byCourse, 2)

	none, err := repo.ListByCourse(ctx, models.MustCourseCode("CS999"))
	require.NoError(t, err)
	assert.Empty(t, none)

	graded, err := repo.List(ctx, models.EnrollmentFilter{GradedOnly: true})
	require.NoError(t, err)
	require.Len(t, graded, 1)
	assert.Equal(t, "CS201", graded[0].CourseCode.String())

	fall, err := repo.List(ctx, models.EnrollmentFilter{Semester: models.SemesterFall, CourseCode: "cs101"})
	require.NoError(t, err)
	assert.Len(t, fall, 2)

	found, err := repo.Find(ctx, "S2", models.MustCourseCode("CS101"))
	require.NoError(t, err)
	assert.Equal(t, "CS1002", found.StudentRegNo)

	_, err = repo.Find(ctx, "S2", models.MustCourseCode("CS201"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCourseAndInstructorRepositories(t *testing.T) {
	store := NewStore()
	seed(t, store)
	ctx := context.Background()
	courses := NewCourseRepository(store)
	instructors := NewInstructorRepository(store)

	i, err := models.NewInstructor("I1", "Grace Hopper", "grace@example.com", "CS", "F001")
	require.NoError(t, err)
	require.NoError(t, instructors.Create(ctx, &i))
	assert.ErrorIs(t, instructors.Create(ctx, &i), ErrDuplicate)

	_, err = courses.AssignInstructor(ctx, models.MustCourseCode("CS101"), "I9")
	assert.ErrorIs(t, err, ErrNotFound)
	updated, err := courses.AssignInstructor(ctx, models.MustCourseCode("CS101"), "I1")
	require.NoError(t, err)
	assert.Equal(t, "I1", updated.InstructorID)

	list, err := courses.List(ctx, models.CourseFilter{InstructorID: "I1"})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = courses.List(ctx, models.CourseFilter{Semester: models.SemesterFall})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	dup := mustCourse(t, "cs101", 3, models.SemesterFall)
	assert.ErrorIs(t, courses.Create(ctx, &dup), ErrDuplicate)

	all, err := instructors.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
