package repository

import (
	"context"
	"strings"

	"github.com/noah-isme/campus-records/internal/models"
)

// CourseRepository manages course records in the store.
type CourseRepository struct {
	store *Store
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(store *Store) *CourseRepository {
	return &CourseRepository{store: store}
}

// List returns courses matching the filter. Department matching ignores case.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	var courses []models.Course
	err := r.store.View(ctx, func(tx *Tx) error {
		courses = tx.Courses(func(c models.Course) bool {
			if !filter.IncludeInactive && !c.Active {
				return false
			}
			if filter.Semester != "" && c.Semester != filter.Semester {
				return false
			}
			if filter.Department != "" && !strings.EqualFold(c.Department, filter.Department) {
				return false
			}
			if filter.InstructorID != "" && c.InstructorID != filter.InstructorID {
				return false
			}
			return true
		})
		return nil
	})
	return courses, err
}

// FindByCode returns the course regardless of the active flag.
func (r *CourseRepository) FindByCode(ctx context.Context, code models.CourseCode) (*models.Course, error) {
	var found models.Course
	err := r.store.View(ctx, func(tx *Tx) error {
		c, ok := tx.Course(code)
		if !ok {
			return ErrNotFound
		}
		found = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

// Create inserts a new course.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	return r.store.Update(ctx, func(tx *Tx) error {
		return tx.InsertCourse(*course)
	})
}

// Update replaces an existing course.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	return r.store.Update(ctx, func(tx *Tx) error {
		return tx.PutCourse(*course)
	})
}

// AssignInstructor sets the course instructor after confirming the instructor exists.
func (r *CourseRepository) AssignInstructor(ctx context.Context, code models.CourseCode, instructorID string) (*models.Course, error) {
	var updated models.Course
	err := r.store.Update(ctx, func(tx *Tx) error {
		c, ok := tx.Course(code)
		if !ok {
			return ErrNotFound
		}
		if _, ok := tx.Instructor(instructorID); !ok {
			return ErrNotFound
		}
		c.InstructorID = instructorID
		updated = c
		return tx.PutCourse(c)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
