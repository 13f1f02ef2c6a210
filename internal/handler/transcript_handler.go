package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-records/internal/service"
	appErrors "github.com/noah-isme/campus-records/pkg/errors"
	"github.com/noah-isme/campus-records/pkg/response"
)

// TranscriptHandler renders student transcripts.
type TranscriptHandler struct {
	transcripts *service.TranscriptService
}

// NewTranscriptHandler constructs TranscriptHandler.
func NewTranscriptHandler(transcripts *service.TranscriptService) *TranscriptHandler {
	return &TranscriptHandler{transcripts: transcripts}
}

// Get godoc
// @Summary Student transcript
// @Tags Transcripts
// @Produce json,plain,application/pdf
// @Param id path string true "Student ID"
// @Param format query string false "json (default), text or pdf"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/transcript [get]
func (h *TranscriptHandler) Get(c *gin.Context) {
	studentID := c.Param("id")
	switch format := c.DefaultQuery("format", "json"); format {
	case "json":
		transcript, err := h.transcripts.Generate(c.Request.Context(), studentID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, transcript)
	case "text":
		transcript, err := h.transcripts.Generate(c.Request.Context(), studentID)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Cache-Control", "no-store")
		c.String(http.StatusOK, transcript.Format())
	case "pdf":
		doc, err := h.transcripts.PDF(c.Request.Context(), studentID)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"transcript_%s.pdf\"", studentID))
		c.Header("Cache-Control", "no-store")
		c.Data(http.StatusOK, "application/pdf", doc)
	default:
		response.Error(c, appErrors.Clonef(appErrors.ErrValidation, "unsupported transcript format %q", format))
	}
}
