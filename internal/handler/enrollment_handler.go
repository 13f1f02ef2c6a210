package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-records/internal/models"
	"github.com/noah-isme/campus-records/internal/service"
	appErrors "github.com/noah-isme/campus-records/pkg/errors"
	"github.com/noah-isme/campus-records/pkg/response"
)

// EnrollmentHandler exposes the enrollment engine.
type EnrollmentHandler struct {
	engine *service.EnrollmentService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(engine *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{engine: engine}
}

// List godoc
// @Summary List enrollments
// @Tags Enrollments
// @Produce json
// @Param studentId query string false "Student ID"
// @Param courseCode query string false "Course code"
// @Param semester query string false "Semester"
// @Param graded query bool false "Only graded enrollments"
// @Success 200 {object} response.Envelope
// @Router /enrollments [get]
func (h *EnrollmentHandler) List(c *gin.Context) {
	filter := models.EnrollmentFilter{
		StudentID:  c.Query("studentId"),
		CourseCode: c.Query("courseCode"),
		GradedOnly: c.Query("graded") == "true",
	}
	if raw := c.Query("semester"); raw != "" {
		semester, err := models.ParseSemester(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
			return
		}
		filter.Semester = semester
	}
	details, err := h.engine.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, details, nil, map[string]interface{}{"max_credits_per_semester": h.engine.MaxCreditsPerSemester()})
}

// Enroll godoc
// @Summary Enroll student in course
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body service.EnrollRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /enrollments [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	var req service.EnrollRequest
	if !bindJSON(c, &req) {
		return
	}
	detail, err := h.engine.Enroll(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, detail)
}

// Get godoc
// @Summary Get one enrollment
// @Tags Enrollments
// @Produce json
// @Param studentId path string true "Student ID"
// @Param courseCode path string true "Course code"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{studentId}/{courseCode} [get]
func (h *EnrollmentHandler) Get(c *gin.Context) {
	detail, ok, err := h.engine.FindEnrollment(c.Request.Context(), c.Param("studentId"), c.Param("courseCode"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found"))
		return
	}
	response.OK(c, detail)
}

// Withdraw godoc
// @Summary Withdraw enrollment
// @Tags Enrollments
// @Param studentId path string true "Student ID"
// @Param courseCode path string true "Course code"
// @Success 204
// @Router /enrollments/{studentId}/{courseCode} [delete]
func (h *EnrollmentHandler) Withdraw(c *gin.Context) {
	if err := h.engine.Withdraw(c.Request.Context(), c.Param("studentId"), c.Param("courseCode")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AssignGrade godoc
// @Summary Assign letter grade
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param studentId path string true "Student ID"
// @Param courseCode path string true "Course code"
// @Param payload body service.GradeRequest true "Grade"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{studentId}/{courseCode}/grade [put]
func (h *EnrollmentHandler) AssignGrade(c *gin.Context) {
	var req service.GradeRequest
	if !bindJSON(c, &req) {
		return
	}
	detail, err := h.engine.AssignGrade(c.Request.Context(), c.Param("studentId"), c.Param("courseCode"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, detail)
}

// AssignPercentage godoc
// @Summary Assign grade from a percentage
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param studentId path string true "Student ID"
// @Param courseCode path string true "Course code"
// @Param payload body service.PercentageRequest true "Percentage"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{studentId}/{courseCode}/percentage [put]
func (h *EnrollmentHandler) AssignPercentage(c *gin.Context) {
	var req service.PercentageRequest
	if !bindJSON(c, &req) {
		return
	}
	detail, err := h.engine.AssignGradeByPercentage(c.Request.Context(), c.Param("studentId"), c.Param("courseCode"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, detail)
}

// ByStudent godoc
// @Summary List a student's enrollments
// @Tags Enrollments
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/enrollments [get]
func (h *EnrollmentHandler) ByStudent(c *gin.Context) {
	details, err := h.engine.EnrollmentsOfStudent(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, details, nil)
}

// ByCourse godoc
// @Summary List a course's enrollments
// @Tags Enrollments
// @Produce json
// @Param code path string true "Course code"
// @Success 200 {object} response.Envelope
// @Router /courses/{code}/enrollments [get]
func (h *EnrollmentHandler) ByCourse(c *gin.Context) {
	details, err := h.engine.EnrollmentsOfCourse(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, details, nil)
}
