package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-records/internal/models"
	appErrors "github.com/noah-isme/campus-records/pkg/errors"
	"github.com/noah-isme/campus-records/pkg/validation"
)

type courseRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error)
	FindByCode(ctx context.Context, code models.CourseCode) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	AssignInstructor(ctx context.Context, code models.CourseCode, instructorID string) (*models.Course, error)
}

// CreateCourseRequest holds payload for creating courses. Credits default to 3.
type CreateCourseRequest struct {
	Code         string `json:"code" validate:"required,coursecode"`
	Title        string `json:"title" validate:"required"`
	Credits      int    `json:"credits" validate:"omitempty,min=1,max=6"`
	Department   string `json:"department"`
	Semester     string `json:"semester" validate:"required"`
	InstructorID string `json:"instructor_id"`
}

// UpdateCourseRequest holds payload for updating courses.
type UpdateCourseRequest struct {
	Title   string `json:"title" validate:"required"`
	Credits int    `json:"credits" validate:"required"`
}

// AssignInstructorRequest names the instructor to assign.
type AssignInstructorRequest struct {
	InstructorID string `json:"instructor_id" validate:"required"`
}

// CourseService handles course use-cases.
type CourseService struct {
	repo        courseRepository
	instructors instructorReader
	validator   *validation.Validator
	logger      *zap.Logger
}

type instructorReader interface {
	FindByID(ctx context.Context, id string) (*models.Instructor, error)
}

// NewCourseService constructs the course service.
func NewCourseService(repo courseRepository, instructors instructorReader, validate *validation.Validator, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, instructors: instructors, validator: validate, logger: logger}
}

func parseCode(raw string) (models.CourseCode, error) {
	code, err := models.ParseCourseCode(raw)
	if err != nil {
		return models.CourseCode{}, ruleViolation(err)
	}
	return code, nil
}

// List returns the active courses matching the filter.
func (s *CourseService) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	courses, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	return courses, nil
}

// Get returns an active course.
func (s *CourseService) Get(ctx context.Context, rawCode string) (*models.Course, error) {
	code, err := parseCode(rawCode)
	if err != nil {
		return nil, err
	}
	course, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, storeError(err, "course not found", "", "failed to load course")
	}
	if !course.Active {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}
	return course, nil
}

// Create validates the payload and stores a new course.
func (s *CourseService) Create(ctx context.Context, req CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(s.validator, err, "invalid course payload")
	}
	code, err := parseCode(req.Code)
	if err != nil {
		return nil, err
	}
	opts := []models.CourseOption{models.WithDepartment(req.Department)}
	if req.Credits != 0 {
		opts = append(opts, models.WithCredits(req.Credits))
	}
	semester, err := models.ParseSemester(req.Semester)
	if err != nil {
		return nil, ruleViolation(err)
	}
	opts = append(opts, models.WithSemester(semester))
	if req.InstructorID != "" {
		if _, err := s.instructors.FindByID(ctx, req.InstructorID); err != nil {
			return nil, storeError(err, "instructor not found", "", "failed to load instructor")
		}
		opts = append(opts, models.WithInstructor(req.InstructorID))
	}
	course, err := models.NewCourse(code, req.Title, opts...)
	if err != nil {
		return nil, ruleViolation(err)
	}
	return s.Add(ctx, course)
}

// Add stores an already constructed course.
func (s *CourseService) Add(ctx context.Context, course models.Course) (*models.Course, error) {
	if err := s.repo.Create(ctx, &course); err != nil {
		return nil, storeError(err, "", "course "+course.Code.String()+" already exists", "failed to create course")
	}
	s.logger.Debug("course created", zap.String("course_code", course.Code.String()))
	return &course, nil
}

// Update changes the title and credit load.
func (s *CourseService) Update(ctx context.Context, rawCode string, req UpdateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(s.validator, err, "invalid course payload")
	}
	course, err := s.Get(ctx, rawCode)
	if err != nil {
		return nil, err
	}
	if err := course.Retitle(req.Title); err != nil {
		return nil, ruleViolation(err)
	}
	if err := course.SetCredits(req.Credits); err != nil {
		return nil, ruleViolation(err)
	}
	if err := s.repo.Update(ctx, course); err != nil {
		return nil, storeError(err, "course not found", "", "failed to update course")
	}
	return course, nil
}

// AssignInstructor links an existing instructor to the course.
func (s *CourseService) AssignInstructor(ctx context.Context, rawCode string, req AssignInstructorRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(s.validator, err, "invalid instructor assignment")
	}
	course, err := s.Get(ctx, rawCode)
	if err != nil {
		return nil, err
	}
	updated, err := s.repo.AssignInstructor(ctx, course.Code, req.InstructorID)
	if err != nil {
		return nil, storeError(err, "course or instructor not found", "", "failed to assign instructor")
	}
	return updated, nil
}

// Deactivate soft deletes the course.
func (s *CourseService) Deactivate(ctx context.Context, rawCode string) error {
	course, err := s.Get(ctx, rawCode)
	if err != nil {
		return err
	}
	course.Active = false
	if err := s.repo.Update(ctx, course); err != nil {
		return storeError(err, "course not found", "", "failed to deactivate course")
	}
	s.logger.Info("course deactivated", zap.String("course_code", course.Code.String()))
	return nil
}
