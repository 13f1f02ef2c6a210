package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-records/internal/service"
	"github.com/noah-isme/campus-records/pkg/response"
)

// ExportJobHandler exposes background exports.
type ExportJobHandler struct {
	jobs *service.ExportJobService
}

// NewExportJobHandler constructs ExportJobHandler.
func NewExportJobHandler(jobs *service.ExportJobService) *ExportJobHandler {
	return &ExportJobHandler{jobs: jobs}
}

// Submit godoc
// @Summary Queue a background export
// @Tags Exports
// @Produce json
// @Param entity path string true "students, courses or enrollments"
// @Param file query string false "File name relative to the export directory"
// @Success 202 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /exports/{entity}/jobs [post]
func (h *ExportJobHandler) Submit(c *gin.Context) {
	entity, ok := entityParam(c)
	if !ok {
		return
	}
	job, err := h.jobs.Submit(c.Request.Context(), entity, c.Query("file"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, job)
}

// List godoc
// @Summary List background exports
// @Tags Exports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /export-jobs [get]
func (h *ExportJobHandler) List(c *gin.Context) {
	jobs, err := h.jobs.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, jobs, nil)
}

// Get godoc
// @Summary Background export status
// @Tags Exports
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /export-jobs/{id} [get]
func (h *ExportJobHandler) Get(c *gin.Context) {
	job, err := h.jobs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, job)
}
