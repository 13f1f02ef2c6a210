package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-records/internal/records"
	"github.com/noah-isme/campus-records/internal/repository"
	"github.com/noah-isme/campus-records/pkg/delimited"
	appErrors "github.com/noah-isme/campus-records/pkg/errors"
	"github.com/noah-isme/campus-records/pkg/export"
	"github.com/noah-isme/campus-records/pkg/logger"
	"github.com/noah-isme/campus-records/pkg/storage"
)

type fileStorage interface {
	Create(filename string) (*os.File, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type urlSigner interface {
	Generate(jobID, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error)
}

type csvWriter interface {
	Write(w io.Writer, data export.Dataset) (int, error)
}

type exportMetrics interface {
	RecordExport(entity string, rows int)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	ID           string         `json:"id"`
	Entity       records.Entity `json:"entity"`
	RelativePath string         `json:"relative_path"`
	Rows         int            `json:"rows"`
	Token        string         `json:"token"`
	URL          string         `json:"url"`
	ExpiresAt    time.Time      `json:"expires_at"`
}

// ExportService renders stored records as delimited files. Exports never
// fail on record content, only when the destination cannot be written.
type ExportService struct {
	store   recordStore
	codec   *records.Codec
	storage fileStorage
	csv     csvWriter
	signer  urlSigner
	metrics exportMetrics
	logger  *zap.Logger
	cfg     ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(store recordStore, codec *records.Codec, storage fileStorage, signer urlSigner, csv csvWriter, metrics exportMetrics, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if codec == nil {
		codec = records.NewCodec("")
	}
	if csv == nil {
		csv = export.NewCSVExporter(export.WithBackslashEscaping(), export.WithCommentPrefix(delimited.DefaultOptions().CommentPrefix))
	}
	return &ExportService{
		store:   store,
		codec:   codec,
		storage: storage,
		csv:     csv,
		signer:  signer,
		metrics: metrics,
		logger:  logger,
		cfg:     cfg,
	}
}

// Dataset snapshots every record of entity, inactive ones included.
func (s *ExportService) Dataset(ctx context.Context, entity records.Entity) (export.Dataset, error) {
	var data export.Dataset
	err := s.store.View(ctx, func(tx *repository.Tx) error {
		switch entity {
		case records.EntityStudents:
			data = s.codec.Students(tx.Students(nil))
		case records.EntityCourses:
			data = s.codec.Courses(tx.Courses(nil))
		case records.EntityEnrollments:
			data = s.codec.Enrollments(tx.Details(tx.Enrollments(nil)))
		default:
			return appErrors.Clonef(appErrors.ErrValidation, "unknown record type %q", entity)
		}
		return nil
	})
	if err != nil {
		return export.Dataset{}, storeError(err, "", "", "failed to collect records")
	}
	return data, nil
}

// WriteTo streams the export of entity to w and returns the row count.
func (s *ExportService) WriteTo(ctx context.Context, entity records.Entity, w io.Writer) (int, error) {
	data, err := s.Dataset(ctx, entity)
	if err != nil {
		return 0, err
	}
	return s.WriteDataset(entity, data, w)
}

// WriteDataset writes a collected dataset of entity to w.
func (s *ExportService) WriteDataset(entity records.Entity, data export.Dataset, w io.Writer) (int, error) {
	rows, err := s.csv.Write(w, data)
	if err != nil {
		return rows, appErrors.Wrap(err, appErrors.ErrIOFailure.Code, appErrors.ErrIOFailure.Status, "failed to write export")
	}
	if s.metrics != nil {
		s.metrics.RecordExport(string(entity), rows)
	}
	return rows, nil
}

// Export writes entity into a timestamped file in the export directory and
// returns a signed download link.
func (s *ExportService) Export(ctx context.Context, entity records.Entity) (*ExportResult, error) {
	return s.exportAs(ctx, entity, buildFilename(entity, time.Now()))
}

// ExportFile writes entity to name, a path relative to the export directory.
// An existing file is replaced.
func (s *ExportService) ExportFile(ctx context.Context, entity records.Entity, name string) (*ExportResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file name is required")
	}
	return s.exportAs(ctx, entity, name)
}

func (s *ExportService) exportAs(ctx context.Context, entity records.Entity, filename string) (*ExportResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id := uuid.NewString()
	file, err := s.storage.Create(filename)
	if err != nil {
		if errors.Is(err, storage.ErrOutsideBase) {
			return nil, appErrors.Clonef(appErrors.ErrValidation, "file %s is outside the export directory", filename)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrIOFailure.Code, appErrors.ErrIOFailure.Status, "failed to create export file")
	}
	rows, err := s.WriteTo(ctx, entity, file)
	if closeErr := file.Close(); err == nil && closeErr != nil {
		err = appErrors.Wrap(closeErr, appErrors.ErrIOFailure.Code, appErrors.ErrIOFailure.Status, "failed to write export")
	}
	if err != nil {
		if delErr := s.storage.Delete(filename); delErr != nil {
			logger.From(ctx, s.logger).Warn("failed to remove partial export", zap.String("file", filename), zap.Error(delErr))
		}
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(id, filename)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign export link")
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	logger.From(ctx, s.logger).Info("export finished", zap.String("entity", string(entity)), zap.String("file", filename), zap.Int("rows", rows))
	return &ExportResult{
		ID:           id,
		Entity:       entity,
		RelativePath: filename,
		Rows:         rows,
		Token:        token,
		URL:          fmt.Sprintf("%s/downloads?token=%s", prefix, token),
		ExpiresAt:    expiresAt,
	}, nil
}

// OpenDownload validates token and opens the referenced export.
func (s *ExportService) OpenDownload(token string) (*os.File, string, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "download link is invalid or expired")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "export file not found")
	}
	return file, relPath, nil
}

// Cleanup removes exports older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func buildFilename(entity records.Entity, at time.Time) string {
	return fmt.Sprintf("%s_%s.csv", entity, at.UTC().Format("20060102_150405.000"))
}
