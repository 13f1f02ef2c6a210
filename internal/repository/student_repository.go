package repository

import (
	"context"
	"strings"

	"github.com/noah-isme/campus-records/internal/models"
)

// StudentRepository manages student records in the store.
type StudentRepository struct {
	store *Store
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(store *Store) *StudentRepository {
	return &StudentRepository{store: store}
}

// List returns students matching the filter with the unpaginated total.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	var matched []models.Student
	err := r.store.View(ctx, func(tx *Tx) error {
		matched = tx.Students(func(s models.Student) bool {
			if !filter.IncludeInactive && !s.Active {
				return false
			}
			if search == "" {
				return true
			}
			return strings.Contains(strings.ToLower(s.FullName), search) ||
				strings.Contains(strings.ToLower(s.RegNo), search) ||
				strings.Contains(strings.ToLower(s.Email), search)
		})
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	start, end, _ := models.Paginate(filter.Page, filter.PageSize, len(matched))
	return matched[start:end], len(matched), nil
}

// FindByID returns the student regardless of the active flag.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	var found models.Student
	err := r.store.View(ctx, func(tx *Tx) error {
		s, ok := tx.Student(id)
		if !ok {
			return ErrNotFound
		}
		found = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

// FindByRegNo returns the student with the registration number.
func (r *StudentRepository) FindByRegNo(ctx context.Context, regNo string) (*models.Student, error) {
	var found models.Student
	err := r.store.View(ctx, func(tx *Tx) error {
		s, ok := tx.StudentByRegNo(regNo)
		if !ok {
			return ErrNotFound
		}
		found = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

// Create inserts a new student.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	return r.store.Update(ctx, func(tx *Tx) error {
		return tx.InsertStudent(*student)
	})
}

// Update replaces the profile of an existing student.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	return r.store.Update(ctx, func(tx *Tx) error {
		return tx.PutStudent(*student)
	})
}

// Count returns the number of stored students, inactive included.
func (r *StudentRepository) Count(ctx context.Context) (int, error) {
	count := 0
	err := r.store.View(ctx, func(tx *Tx) error {
		count = len(tx.state.studentOrder)
		return nil
	})
	return count, err
}
