package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-records/internal/records"
	"github.com/noah-isme/campus-records/internal/service"
	appErrors "github.com/noah-isme/campus-records/pkg/errors"
	"github.com/noah-isme/campus-records/pkg/response"
)

// ImportRequest names a file inside the data directory.
type ImportRequest struct {
	Path     string `json:"path" binding:"required"`
	Validate bool   `json:"validate"`
}

// ImportHandler exposes delimited file ingestion.
type ImportHandler struct {
	imports *service.ImportService
}

// NewImportHandler constructs ImportHandler.
func NewImportHandler(imports *service.ImportService) *ImportHandler {
	return &ImportHandler{imports: imports}
}

func entityParam(c *gin.Context) (records.Entity, bool) {
	entity, err := records.ParseEntity(c.Param("entity"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return "", false
	}
	return entity, true
}

// Import godoc
// @Summary Import records
// @Description Reads a file from the data directory (JSON body) or an uploaded file (multipart field "file"). Rows that fail are skipped and listed in diagnostics.
// @Tags Imports
// @Accept json,mpfd
// @Produce json
// @Param entity path string true "students, courses or enrollments"
// @Param payload body ImportRequest false "File in the data directory"
// @Param file formData file false "Uploaded file"
// @Success 200 {object} response.Envelope
// @Router /imports/{entity} [post]
func (h *ImportHandler) Import(c *gin.Context) {
	entity, ok := entityParam(c)
	if !ok {
		return
	}
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		h.importUpload(c, entity)
		return
	}
	var req ImportRequest
	if !bindJSON(c, &req) {
		return
	}
	var (
		result *service.ImportResult
		err    error
	)
	if req.Validate {
		result, err = h.imports.ImportWithValidation(c.Request.Context(), entity, req.Path)
	} else {
		result, err = h.imports.Import(c.Request.Context(), entity, req.Path)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

func (h *ImportHandler) importUpload(c *gin.Context, entity records.Entity) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrIOFailure.Code, appErrors.ErrIOFailure.Status, "failed to open file"))
		return
	}
	defer src.Close() //nolint:errcheck

	result, err := h.imports.ImportReader(c.Request.Context(), entity, src, fileHeader.Filename)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Validate godoc
// @Summary Check file structure
// @Tags Imports
// @Accept json
// @Produce json
// @Param entity path string true "students, courses or enrollments"
// @Param payload body ImportRequest true "File in the data directory"
// @Success 200 {object} response.Envelope
// @Router /imports/{entity}/validate [post]
func (h *ImportHandler) Validate(c *gin.Context) {
	entity, ok := entityParam(c)
	if !ok {
		return
	}
	var req ImportRequest
	if !bindJSON(c, &req) {
		return
	}
	report, err := h.imports.ValidateStructure(c.Request.Context(), entity, req.Path)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil, map[string]interface{}{"valid": report.Valid()})
}

// Inspect godoc
// @Summary File line statistics
// @Tags Imports
// @Produce json
// @Param path query string true "File in the data directory"
// @Success 200 {object} response.Envelope
// @Router /imports/inspect [get]
func (h *ImportHandler) Inspect(c *gin.Context) {
	stats, err := h.imports.Inspect(c.Request.Context(), c.Query("path"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, stats)
}

// Bootstrap godoc
// @Summary Import the conventional files of the data directory
// @Tags Imports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /bootstrap [post]
func (h *ImportHandler) Bootstrap(c *gin.Context) {
	results, err := h.imports.Bootstrap(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, results, nil)
}
