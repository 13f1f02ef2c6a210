package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-records/internal/models"
)

func mustStudent(t *testing.T, id, regNo string) models.Student {
	t.Helper()
	s, err := models.NewStudent(id, regNo, "Student "+id, id+"@example.com")
	require.NoError(t, err)
	return s
}

func mustCourse(t *testing.T, code string, credits int, semester models.Semester) models.Course {
	t.Helper()
	c, err := models.NewCourse(models.MustCourseCode(code), "Course "+code, models.WithCredits(credits), models.WithSemester(semester))
	require.NoError(t, err)
	return c
}

func seed(t *testing.T, store *Store) {
	t.Helper()
	require.NoError(t, store.Update(context.Background(), func(tx *Tx) error {
		if err := tx.InsertStudent(mustStudent(t, "S1", "CS1001")); err != nil {
			return err
		}
		if err := tx.InsertCourse(mustCourse(t, "CS101", 3, models.SemesterFall)); err != nil {
			return err
		}
		if err := tx.InsertCourse(mustCourse(t, "CS102", 4, models.SemesterFall)); err != nil {
			return err
		}
		return tx.InsertCourse(mustCourse(t, "CS201", 5, models.SemesterSpring))
	}))
}

func enrollment(studentID, code string) models.Enrollment {
	return models.Enrollment{ID: studentID + code, StudentID: studentID, CourseCode: models.MustCourseCode(code), EnrolledAt: time.Now(), Grade: models.GradeNotGraded}
}

func TestStoreUpdateRollsBackOnError(t *testing.T) {
	store := NewStore()
	seed(t, store)
	ctx := context.Background()

	boom := errors.New("boom")
	err := store.Update(ctx, func(tx *Tx) error {
		require.NoError(t, tx.AppendEnrollment(enrollment("S1", "CS101")))
		require.NoError(t, tx.InsertStudent(mustStudent(t, "S2", "CS1002")))
		return boom
	})
	require.ErrorIs(t, err, boom)

	require.NoError(t, store.View(ctx, func(tx *Tx) error {
		assert.Empty(t, tx.Enrollments(nil))
		_, ok := tx.Student("S2")
		assert.False(t, ok)
		s, _ := tx.Student("S1")
		assert.Empty(t, s.EnrollmentKeys())
		return nil
	}))
}

func TestStoreUpdateRevertsEveryMutation(t *testing.T) {
	store := NewStore()
	seed(t, store)
	ctx := context.Background()
	require.NoError(t, store.Update(ctx, func(tx *Tx) error {
		if err := tx.AppendEnrollment(enrollment("S1", "CS101")); err != nil {
			return err
		}
		return tx.AppendEnrollment(enrollment("S1", "CS102"))
	}))

	boom := errors.New("boom")
	err := store.Update(ctx, func(tx *Tx) error {
		_, err := tx.SetGrade("S1", models.MustCourseCode("CS101"), models.GradeA)
		require.NoError(t, err)
		_, err = tx.RemoveEnrollment("S1", models.MustCourseCode("CS102"))
		require.NoError(t, err)
		require.NoError(t, tx.AppendEnrollment(enrollment("S1", "CS201")))

		renamed := mustStudent(t, "S1", "CS1009")
		require.NoError(t, tx.PutStudent(renamed))
		course := mustCourse(t, "CS101", 6, models.SemesterSummer)
		require.NoError(t, tx.PutCourse(course))
		require.NoError(t, tx.InsertCourse(mustCourse(t, "MA101", 2, models.SemesterFall)))
		instructor, err := models.NewInstructor("I1", "Grace Hopper", "grace@example.com", "CS", "F001")
		require.NoError(t, err)
		require.NoError(t, tx.InsertInstructor(instructor))
		return boom
	})
	require.ErrorIs(t, err, boom)

	require.NoError(t, store.View(ctx, func(tx *Tx) error {
		all := tx.Enrollments(nil)
		require.Len(t, all, 2)
		assert.Equal(t, models.GradeNotGraded, all[0].Grade)
		assert.Equal(t, "CS102", all[1].CourseCode.String())

		s, _ := tx.Student("S1")
		assert.Equal(t, "CS1001", s.RegNo)
		assert.Len(t, s.EnrollmentKeys(), 2)
		assert.Len(t, tx.EnrollmentsByStudent("S1"), 2)

		c, _ := tx.Course(models.MustCourseCode("CS101"))
		assert.Equal(t, 3, c.Credits)
		assert.Len(t, tx.Courses(nil), 3)
		assert.Empty(t, tx.Instructors())
		return nil
	}))
}

func TestStoreUpdateRevertsOnPanic(t *testing.T) {
	store := NewStore()
	seed(t, store)
	ctx := context.Background()

	assert.Panics(t, func() {
		_ = store.Update(ctx, func(tx *Tx) error {
			require.NoError(t, tx.InsertStudent(mustStudent(t, "S2", "CS1002")))
			panic("interrupted")
		})
	})

	require.NoError(t, store.View(ctx, func(tx *Tx) error {
		_, ok := tx.Student("S2")
		assert.False(t, ok)
		assert.Len(t, tx.Students(nil), 1)
		return nil
	}))
	require.NoError(t, store.Update(ctx, func(tx *Tx) error {
		return tx.InsertStudent(mustStudent(t, "S2", "CS1002"))
	}), "the lock is released after a panic")
}

func TestStoreViewIsReadOnly(t *testing.T) {
	store := NewStore()
	err := store.View(context.Background(), func(tx *Tx) error {
		return tx.InsertStudent(mustStudent(t, "S1", "CS1001"))
	})
	assert.ErrorIs(t, err, ErrReadOnly)
}

func TestStoreHonoursCancelledContext(t *testing.T) {
	store := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := store.Update(ctx, func(tx *Tx) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestTxEnrollmentBookkeeping(t *testing.T) {
	store := NewStore()
	seed(t, store)
	ctx := context.Background()

	require.NoError(t, store.Update(ctx, func(tx *Tx) error {
		require.NoError(t, tx.AppendEnrollment(enrollment("S1", "CS102")))
		require.NoError(t, tx.AppendEnrollment(enrollment("S1", "CS101")))
		require.NoError(t, tx.AppendEnrollment(enrollment("S1", "CS201")))
		assert.ErrorIs(t, tx.AppendEnrollment(enrollment("S1", "CS101")), ErrDuplicate)
		assert.ErrorIs(t, tx.AppendEnrollment(enrollment("S9", "CS101")), ErrNotFound)
		assert.ErrorIs(t, tx.AppendEnrollment(enrollment("S1", "CS999")), ErrNotFound)

		assert.Equal(t, 7, tx.SemesterCredits("S1", models.SemesterFall))
		assert.Equal(t, 5, tx.SemesterCredits("S1", models.SemesterSpring))
		assert.Equal(t, 0, tx.SemesterCredits("S1", models.SemesterSummer))

		updated, err := tx.SetGrade("S1", models.MustCourseCode("CS101"), models.GradeA)
		require.NoError(t, err)
		assert.Equal(t, models.GradeA, updated.Grade)

		_, err = tx.RemoveEnrollment("S1", models.MustCourseCode("CS102"))
		require.NoError(t, err)
		_, err = tx.RemoveEnrollment("S1", models.MustCourseCode("CS102"))
		assert.ErrorIs(t, err, ErrNotFound)
		return nil
	}))

	require.NoError(t, store.View(ctx, func(tx *Tx) error {
		byStudent := tx.EnrollmentsByStudent("S1")
		require.Len(t, byStudent, 2)
		assert.Equal(t, "CS101", byStudent[0].CourseCode.String())
		assert.Equal(t, "CS201", byStudent[1].CourseCode.String())

		d := tx.Detail(byStudent[0])
		assert.Equal(t, "CS1001", d.StudentRegNo)
		assert.Equal(t, 3, d.Credits)
		assert.Equal(t, models.SemesterFall, d.Semester)
		return nil
	}))
}

func TestTxStudentUniqueness(t *testing.T) {
	store := NewStore()
	seed(t, store)
	err := store.Update(context.Background(), func(tx *Tx) error {
		return tx.InsertStudent(mustStudent(t, "S2", "cs1001"))
	})
	assert.ErrorIs(t, err, ErrDuplicate)

	err = store.Update(context.Background(), func(tx *Tx) error {
		return tx.InsertStudent(mustStudent(t, "S1", "CS2002"))
	})
	assert.ErrorIs(t, err, ErrDuplicate)
}
