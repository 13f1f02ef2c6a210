package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-records/internal/models"
	appErrors "github.com/noah-isme/campus-records/pkg/errors"
	"github.com/noah-isme/campus-records/pkg/validation"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	FindByRegNo(ctx context.Context, regNo string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
}

// CreateStudentRequest holds payload for creating students. The id is
// generated when omitted.
type CreateStudentRequest struct {
	ID       string `json:"id"`
	RegNo    string `json:"reg_no" validate:"required,regno"`
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"required"`
}

// UpdateStudentRequest holds payload for updating students.
type UpdateStudentRequest struct {
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"required"`
}

// StudentService handles student use-cases.
type StudentService struct {
	repo      studentRepository
	validator *validation.Validator
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, validate *validation.Validator, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, validator: validate, logger: logger}
}

// List returns students and pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	_, _, pagination := models.Paginate(filter.Page, filter.PageSize, total)
	return students, &pagination, nil
}

// Get returns an active student.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "student not found", "", "failed to load student")
	}
	if !student.Active {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return student, nil
}

// GetByRegNo returns an active student by registration number.
func (s *StudentService) GetByRegNo(ctx context.Context, regNo string) (*models.Student, error) {
	student, err := s.repo.FindByRegNo(ctx, regNo)
	if err != nil {
		return nil, storeError(err, "student not found", "", "failed to load student")
	}
	if !student.Active {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return student, nil
}

// Create validates the payload and stores a new student.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(s.validator, err, "invalid student payload")
	}
	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	student, err := models.NewStudent(id, req.RegNo, req.FullName, req.Email)
	if err != nil {
		return nil, ruleViolation(err)
	}
	return s.Add(ctx, student)
}

// Add stores an already constructed student.
func (s *StudentService) Add(ctx context.Context, student models.Student) (*models.Student, error) {
	if err := s.repo.Create(ctx, &student); err != nil {
		return nil, storeError(err, "", "student with id "+student.ID+" or registration number "+student.RegNo+" already exists", "failed to create student")
	}
	s.logger.Debug("student created", zap.String("student_id", student.ID), zap.String("reg_no", student.RegNo))
	return &student, nil
}

// Update renames the student or changes the email address.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(s.validator, err, "invalid student payload")
	}
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := student.Rename(req.FullName); err != nil {
		return nil, ruleViolation(err)
	}
	if err := student.ChangeEmail(req.Email); err != nil {
		return nil, ruleViolation(err)
	}
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, storeError(err, "student not found", "registration number already in use", "failed to update student")
	}
	return student, nil
}

// Deactivate soft deletes the student.
func (s *StudentService) Deactivate(ctx context.Context, id string) error {
	student, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	student.Active = false
	if err := s.repo.Update(ctx, student); err != nil {
		return storeError(err, "student not found", "", "failed to deactivate student")
	}
	s.logger.Info("student deactivated", zap.String("student_id", id))
	return nil
}
