package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-records/internal/models"
	appErrors "github.com/noah-isme/campus-records/pkg/errors"
	"github.com/noah-isme/campus-records/pkg/validation"
)

type instructorRepository interface {
	List(ctx context.Context) ([]models.Instructor, error)
	FindByID(ctx context.Context, id string) (*models.Instructor, error)
	Create(ctx context.Context, instructor *models.Instructor) error
}

// CreateInstructorRequest holds payload for creating instructors.
type CreateInstructorRequest struct {
	ID         string `json:"id"`
	FullName   string `json:"full_name" validate:"required"`
	Email      string `json:"email" validate:"required"`
	Department string `json:"department"`
	FacultyID  string `json:"faculty_id" validate:"required"`
}

// InstructorService handles instructor use-cases.
type InstructorService struct {
	repo      instructorRepository
	validator *validation.Validator
	logger    *zap.Logger
}

// NewInstructorService constructs the instructor service.
func NewInstructorService(repo instructorRepository, validate *validation.Validator, logger *zap.Logger) *InstructorService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstructorService{repo: repo, validator: validate, logger: logger}
}

// List returns every instructor.
func (s *InstructorService) List(ctx context.Context) ([]models.Instructor, error) {
	instructors, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list instructors")
	}
	return instructors, nil
}

// Get returns one instructor.
func (s *InstructorService) Get(ctx context.Context, id string) (*models.Instructor, error) {
	instructor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "instructor not found", "", "failed to load instructor")
	}
	return instructor, nil
}

// Create validates the payload and stores a new instructor.
func (s *InstructorService) Create(ctx context.Context, req CreateInstructorRequest) (*models.Instructor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(s.validator, err, "invalid instructor payload")
	}
	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	instructor, err := models.NewInstructor(id, req.FullName, req.Email, req.Department, req.FacultyID)
	if err != nil {
		return nil, ruleViolation(err)
	}
	if err := s.repo.Create(ctx, &instructor); err != nil {
		return nil, storeError(err, "", "instructor "+id+" already exists", "failed to create instructor")
	}
	return &instructor, nil
}
