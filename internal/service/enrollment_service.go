package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-records/internal/models"
	"github.com/noah-isme/campus-records/internal/repository"
	appErrors "github.com/noah-isme/campus-records/pkg/errors"
	"github.com/noah-isme/campus-records/pkg/validation"
)

// DefaultMaxCreditsPerSemester applies when no limit is configured.
const DefaultMaxCreditsPerSemester = 18

type recordStore interface {
	View(ctx context.Context, fn func(tx *repository.Tx) error) error
	Update(ctx context.Context, fn func(tx *repository.Tx) error) error
}

type enrollmentReader interface {
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error)
}

type enrollmentMetrics interface {
	RecordEnrollmentOperation(operation, outcome string)
}

// EnrollRequest describes enrollment creation request.
type EnrollRequest struct {
	StudentID  string `json:"student_id" validate:"required"`
	CourseCode string `json:"course_code" validate:"required,coursecode"`
}

// RestoreRequest re-creates an enrollment read from a file, keeping its
// timestamp and grade.
type RestoreRequest struct {
	StudentID  string
	CourseCode models.CourseCode
	EnrolledAt time.Time
	Grade      models.Grade
}

// GradeRequest carries a letter grade.
type GradeRequest struct {
	Grade string `json:"grade" validate:"required"`
}

// PercentageRequest carries a score that is mapped onto the grade scale.
type PercentageRequest struct {
	Percentage *float64 `json:"percentage" validate:"required"`
}

// EnrollmentService is the evaluation engine. Every rule check and the
// mutation it guards run inside one store write transaction.
type EnrollmentService struct {
	store      recordStore
	reader     enrollmentReader
	maxCredits int
	metrics    enrollmentMetrics
	validator  *validation.Validator
	logger     *zap.Logger
	now        func() time.Time
}

// NewEnrollmentService constructs EnrollmentService. A non-positive
// maxCredits selects DefaultMaxCreditsPerSemester.
func NewEnrollmentService(store recordStore, reader enrollmentReader, maxCredits int, metrics enrollmentMetrics, validate *validation.Validator, logger *zap.Logger) *EnrollmentService {
	if maxCredits <= 0 {
		maxCredits = DefaultMaxCreditsPerSemester
	}
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{store: store, reader: reader, maxCredits: maxCredits, metrics: metrics, validator: validate, logger: logger, now: time.Now}
}

// MaxCreditsPerSemester returns the configured ceiling.
func (s *EnrollmentService) MaxCreditsPerSemester() int { return s.maxCredits }

// Enroll registers an active student in an active course.
func (s *EnrollmentService) Enroll(ctx context.Context, req EnrollRequest) (*models.EnrollmentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(s.validator, err, "invalid enrollment payload")
	}
	code, err := parseCode(req.CourseCode)
	if err != nil {
		return nil, err
	}
	detail, err := s.insert(ctx, "enroll", RestoreRequest{
		StudentID:  req.StudentID,
		CourseCode: code,
		EnrolledAt: s.now(),
		Grade:      models.GradeNotGraded,
	})
	return detail, err
}

// Restore applies the enroll rules to an imported enrollment.
func (s *EnrollmentService) Restore(ctx context.Context, req RestoreRequest) (*models.EnrollmentDetail, error) {
	if req.Grade == "" {
		req.Grade = models.GradeNotGraded
	}
	if !req.Grade.Valid() {
		return nil, appErrors.Clonef(appErrors.ErrRuleViolation, "grade %q is not on the grade scale", req.Grade)
	}
	if req.EnrolledAt.IsZero() {
		req.EnrolledAt = s.now()
	}
	return s.insert(ctx, "restore", req)
}

func (s *EnrollmentService) insert(ctx context.Context, operation string, req RestoreRequest) (*models.EnrollmentDetail, error) {
	var detail models.EnrollmentDetail
	err := s.store.Update(ctx, func(tx *repository.Tx) error {
		student, ok := tx.Student(req.StudentID)
		if !ok || !student.Active {
			return appErrors.Clonef(appErrors.ErrNotFound, "student %s not found", req.StudentID)
		}
		course, ok := tx.Course(req.CourseCode)
		if !ok || !course.Active {
			return appErrors.Clonef(appErrors.ErrNotFound, "course %s not found", req.CourseCode)
		}
		if _, exists := tx.Enrollment(student.ID, course.Code); exists {
			return appErrors.Clonef(appErrors.ErrDuplicate, "student %s is already enrolled in %s", student.RegNo, course.Code)
		}
		current := tx.SemesterCredits(student.ID, course.Semester)
		if current+course.Credits > s.maxCredits {
			return appErrors.Clonef(appErrors.ErrRuleViolation,
				"credit limit exceeded for %s: %d credits enrolled, %s adds %d, maximum is %d",
				student.RegNo, current, course.Code, course.Credits, s.maxCredits).
				WithDetails(map[string]string{
					"current":    strconv.Itoa(current),
					"attempting": strconv.Itoa(course.Credits),
					"maximum":    strconv.Itoa(s.maxCredits),
				})
		}
		enrollment := models.Enrollment{
			ID:         uuid.NewString(),
			StudentID:  student.ID,
			CourseCode: course.Code,
			EnrolledAt: req.EnrolledAt,
			Grade:      req.Grade,
		}
		if err := tx.AppendEnrollment(enrollment); err != nil {
			return err
		}
		detail = tx.Detail(enrollment)
		return nil
	})
	if err != nil {
		s.record(operation, err)
		return nil, storeError(err, "student or course not found", "enrollment already exists", "failed to create enrollment")
	}
	s.record(operation, nil)
	s.logger.Info("student enrolled",
		zap.String("operation", operation),
		zap.String("student_id", detail.StudentID),
		zap.String("course_code", detail.CourseCode.String()))
	return &detail, nil
}

// Withdraw removes the enrollment of the pair; any grade is discarded.
func (s *EnrollmentService) Withdraw(ctx context.Context, studentID, rawCode string) error {
	code, err := parseCode(rawCode)
	if err != nil {
		return err
	}
	err = s.store.Update(ctx, func(tx *repository.Tx) error {
		_, err := tx.RemoveEnrollment(studentID, code)
		return err
	})
	s.record("withdraw", err)
	if err != nil {
		return storeError(err, "enrollment not found", "", "failed to withdraw enrollment")
	}
	s.logger.Info("enrollment withdrawn", zap.String("student_id", studentID), zap.String("course_code", code.String()))
	return nil
}

// AssignGrade records a letter grade on an existing enrollment.
func (s *EnrollmentService) AssignGrade(ctx context.Context, studentID, rawCode string, req GradeRequest) (*models.EnrollmentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(s.validator, err, "invalid grade payload")
	}
	grade, err := models.ParseGrade(req.Grade)
	if err != nil {
		return nil, ruleViolation(err)
	}
	return s.setGrade(ctx, "grade", studentID, rawCode, grade)
}

// AssignGradeByPercentage maps a 0-100 score onto the grade scale.
func (s *EnrollmentService) AssignGradeByPercentage(ctx context.Context, studentID, rawCode string, req PercentageRequest) (*models.EnrollmentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(s.validator, err, "invalid percentage payload")
	}
	if !models.ValidPercentage(*req.Percentage) {
		return nil, appErrors.Clonef(appErrors.ErrRuleViolation, "percentage %v must be between 0 and 100", *req.Percentage)
	}
	return s.setGrade(ctx, "grade_percentage", studentID, rawCode, models.GradeFromPercentage(*req.Percentage))
}

func (s *EnrollmentService) setGrade(ctx context.Context, operation, studentID, rawCode string, grade models.Grade) (*models.EnrollmentDetail, error) {
	code, err := parseCode(rawCode)
	if err != nil {
		return nil, err
	}
	var detail models.EnrollmentDetail
	err = s.store.Update(ctx, func(tx *repository.Tx) error {
		updated, err := tx.SetGrade(studentID, code, grade)
		if err != nil {
			return err
		}
		detail = tx.Detail(updated)
		return nil
	})
	s.record(operation, err)
	if err != nil {
		return nil, storeError(err, "enrollment not found", "", "failed to assign grade")
	}
	return &detail, nil
}

// EnrollmentsOfStudent lists a student's enrollments in enrollment order.
// An unknown student yields an empty list.
func (s *EnrollmentService) EnrollmentsOfStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	var details []models.EnrollmentDetail
	err := s.store.View(ctx, func(tx *repository.Tx) error {
		details = tx.Details(tx.EnrollmentsByStudent(studentID))
		return nil
	})
	return details, err
}

// EnrollmentsOfCourse lists a course's enrollments. An unknown or malformed
// code yields an empty list.
func (s *EnrollmentService) EnrollmentsOfCourse(ctx context.Context, rawCode string) ([]models.EnrollmentDetail, error) {
	code, err := models.ParseCourseCode(rawCode)
	if err != nil {
		return []models.EnrollmentDetail{}, nil
	}
	var details []models.EnrollmentDetail
	err = s.store.View(ctx, func(tx *repository.Tx) error {
		details = tx.Details(tx.EnrollmentsByCourse(code))
		return nil
	})
	return details, err
}

// FindEnrollment looks up the pair. ok is false when it does not exist.
func (s *EnrollmentService) FindEnrollment(ctx context.Context, studentID, rawCode string) (detail models.EnrollmentDetail, ok bool, err error) {
	code, parseErr := models.ParseCourseCode(rawCode)
	if parseErr != nil {
		return models.EnrollmentDetail{}, false, nil
	}
	err = s.store.View(ctx, func(tx *repository.Tx) error {
		var e models.Enrollment
		if e, ok = tx.Enrollment(studentID, code); ok {
			detail = tx.Detail(e)
		}
		return nil
	})
	return detail, ok, err
}

// List returns every enrollment matching filter.
func (s *EnrollmentService) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error) {
	details, err := s.reader.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	return details, nil
}

func (s *EnrollmentService) record(operation string, err error) {
	if s.metrics == nil {
		return
	}
	outcome := "ok"
	var appErr *appErrors.Error
	switch {
	case err == nil:
	case errors.As(err, &appErr):
		outcome = appErr.Code
	default:
		outcome = "error"
	}
	s.metrics.RecordEnrollmentOperation(operation, outcome)
}
