package repository

import (
	"context"

	"github.com/noah-isme/campus-records/internal/models"
)

// InstructorRepository manages instructor records in the store.
type InstructorRepository struct {
	store *Store
}

// NewInstructorRepository constructs an InstructorRepository.
func NewInstructorRepository(store *Store) *InstructorRepository {
	return &InstructorRepository{store: store}
}

// List returns every instructor.
func (r *InstructorRepository) List(ctx context.Context) ([]models.Instructor, error) {
	var instructors []models.Instructor
	err := r.store.View(ctx, func(tx *Tx) error {
		instructors = tx.Instructors()
		return nil
	})
	return instructors, err
}

// FindByID returns the instructor with id.
func (r *InstructorRepository) FindByID(ctx context.Context, id string) (*models.Instructor, error) {
	var found models.Instructor
	err := r.store.View(ctx, func(tx *Tx) error {
		i, ok := tx.Instructor(id)
		if !ok {
			return ErrNotFound
		}
		found = i
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

// Create inserts a new instructor.
func (r *InstructorRepository) Create(ctx context.Context, instructor *models.Instructor) error {
	return r.store.Update(ctx, func(tx *Tx) error {
		return tx.InsertInstructor(*instructor)
	})
}
