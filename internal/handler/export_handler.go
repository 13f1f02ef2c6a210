package handler

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-records/internal/service"
	appErrors "github.com/noah-isme/campus-records/pkg/errors"
	"github.com/noah-isme/campus-records/pkg/response"
)

// ExportHandler exposes delimited file exports.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Create godoc
// @Summary Export records to a file
// @Tags Exports
// @Produce json
// @Param entity path string true "students, courses or enrollments"
// @Param file query string false "File name relative to the export directory"
// @Success 201 {object} response.Envelope
// @Router /exports/{entity} [post]
func (h *ExportHandler) Create(c *gin.Context) {
	entity, ok := entityParam(c)
	if !ok {
		return
	}
	var (
		result *service.ExportResult
		err    error
	)
	if name, set := c.GetQuery("file"); set {
		result, err = h.exports.ExportFile(c.Request.Context(), entity, name)
	} else {
		result, err = h.exports.Export(c.Request.Context(), entity)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Stream godoc
// @Summary Stream records as CSV
// @Tags Exports
// @Produce text/csv
// @Param entity path string true "students, courses or enrollments"
// @Success 200 {string} string "CSV"
// @Router /exports/{entity} [get]
func (h *ExportHandler) Stream(c *gin.Context) {
	entity, ok := entityParam(c)
	if !ok {
		return
	}
	data, err := h.exports.Dataset(c.Request.Context(), entity)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", entity.FileName()))
	c.Header("Cache-Control", "no-store")
	c.Status(http.StatusOK)
	if _, err := h.exports.WriteDataset(entity, data, c.Writer); err != nil {
		_ = c.Error(err)
	}
}

// Download godoc
// @Summary Download a generated export
// @Tags Exports
// @Produce text/csv
// @Param token query string true "Signed token"
// @Success 200 {string} string "CSV"
// @Router /downloads [get]
func (h *ExportHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if strings.TrimSpace(token) == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	file, relPath, err := h.exports.OpenDownload(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck
	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrIOFailure.Code, appErrors.ErrIOFailure.Status, "failed to read export"))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filepath.Base(relPath)))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, info.Size(), "text/csv", file, nil)
}

// Cleanup godoc
// @Summary Remove old export files
// @Tags Exports
// @Produce json
// @Param olderThan query string false "Age such as 24h; defaults to the configured retention"
// @Success 200 {object} response.Envelope
// @Router /exports [delete]
func (h *ExportHandler) Cleanup(c *gin.Context) {
	var ttl time.Duration
	if raw := c.Query("olderThan"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed <= 0 {
			response.Error(c, appErrors.Clonef(appErrors.ErrValidation, "olderThan %q is not a positive duration", raw))
			return
		}
		ttl = parsed
	}
	removed, err := h.exports.Cleanup(ttl)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrIOFailure.Code, appErrors.ErrIOFailure.Status, "failed to clean exports"))
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"removed": removed}, nil)
}
