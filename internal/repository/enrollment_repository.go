package repository

import (
	"context"
	"strings"

	"github.com/noah-isme/campus-records/internal/models"
)

// EnrollmentRepository offers read access to enrollments. Writes go through
// the evaluation engine, which needs the store's write transaction.
type EnrollmentRepository struct {
	store *Store
}

// NewEnrollmentRepository constructs an EnrollmentRepository.
func NewEnrollmentRepository(store *Store) *EnrollmentRepository {
	return &EnrollmentRepository{store: store}
}

// List returns enrollment details matching the filter in insertion order.
func (r *EnrollmentRepository) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error) {
	var details []models.EnrollmentDetail
	err := r.store.View(ctx, func(tx *Tx) error {
		var source []models.Enrollment
		if filter.StudentID != "" {
			source = tx.EnrollmentsByStudent(filter.StudentID)
		} else {
			source = tx.Enrollments(nil)
		}
		details = make([]models.EnrollmentDetail, 0, len(source))
		for _, d := range tx.Details(source) {
			if filter.CourseCode != "" && !strings.EqualFold(d.CourseCode.String(), filter.CourseCode) {
				continue
			}
			if filter.Semester != "" && d.Semester != filter.Semester {
				continue
			}
			if filter.GradedOnly && !d.Grade.Graded() {
				continue
			}
			details = append(details, d)
		}
		return nil
	})
	return details, err
}

// ListByStudent follows the student's enrollment view.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	return r.List(ctx, models.EnrollmentFilter{StudentID: studentID})
}

// ListByCourse returns the enrollments of one course.
func (r *EnrollmentRepository) ListByCourse(ctx context.Context, code models.CourseCode) ([]models.EnrollmentDetail, error) {
	var details []models.EnrollmentDetail
	err := r.store.View(ctx, func(tx *Tx) error {
		details = tx.Details(tx.EnrollmentsByCourse(code))
		return nil
	})
	return details, err
}

// Find returns the enrollment of the pair.
func (r *EnrollmentRepository) Find(ctx context.Context, studentID string, code models.CourseCode) (*models.EnrollmentDetail, error) {
	var found models.EnrollmentDetail
	err := r.store.View(ctx, func(tx *Tx) error {
		e, ok := tx.Enrollment(studentID, code)
		if !ok {
			return ErrNotFound
		}
		found = tx.Detail(e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}
