package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-records/internal/models"
	"github.com/noah-isme/campus-records/internal/records"
	"github.com/noah-isme/campus-records/internal/repository"
	appErrors "github.com/noah-isme/campus-records/pkg/errors"
	"github.com/noah-isme/campus-records/pkg/jobs"
)

// ExportJobKind labels queue jobs produced by ExportJobService.
const ExportJobKind = "export"

type exportJobStore interface {
	Create(ctx context.Context, job *models.ExportJob) error
	GetByID(ctx context.Context, id string) (*models.ExportJob, error)
	Update(ctx context.Context, id string, params repository.UpdateExportJobParams) error
	List(ctx context.Context) ([]models.ExportJob, error)
	DeleteFinishedBefore(ctx context.Context, cutoff time.Time) ([]models.ExportJob, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type fileExporter interface {
	Export(ctx context.Context, entity records.Entity) (*ExportResult, error)
	ExportFile(ctx context.Context, entity records.Entity, name string) (*ExportResult, error)
	Cleanup(ttl time.Duration) ([]string, error)
}

type exportJobMetrics interface {
	RecordExportJob(status string)
}

// ExportJobConfig governs retention of finished jobs and their files.
type ExportJobConfig struct {
	Retention       time.Duration
	CleanupInterval time.Duration
}

// ExportJobService accepts export requests and hands them to the background queue.
type ExportJobService struct {
	repo     exportJobStore
	queue    jobDispatcher
	exporter fileExporter
	metrics  exportJobMetrics
	logger   *zap.Logger
	cfg      ExportJobConfig
}

// NewExportJobService constructs the service.
func NewExportJobService(repo exportJobStore, queue jobDispatcher, exporter fileExporter, metrics exportJobMetrics, cfg ExportJobConfig, logger *zap.Logger) *ExportJobService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 24 * time.Hour
	}
	return &ExportJobService{
		repo:     repo,
		queue:    queue,
		exporter: exporter,
		metrics:  metrics,
		logger:   logger,
		cfg:      cfg,
	}
}

// Submit records a queued export of entity and dispatches it. An empty file
// lets the exporter pick a timestamped name.
func (s *ExportJobService) Submit(ctx context.Context, entity records.Entity, file string) (*models.ExportJob, error) {
	if _, err := records.ParseEntity(string(entity)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	job := &models.ExportJob{Entity: string(entity), File: file, Status: models.ExportJobQueued}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, storeError(err, "", "export job already exists", "failed to create export job")
	}
	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Kind: ExportJobKind}); err != nil {
		failed := models.ExportJobFailed
		msg := "failed to enqueue job"
		now := time.Now().UTC()
		if updateErr := s.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{Status: &failed, Error: &msg, FinishedAt: &now}); updateErr != nil {
			s.logger.Warn("failed to mark export job failed", zap.String("job_id", job.ID), zap.Error(updateErr))
		}
		if errors.Is(err, jobs.ErrQueueFull) || errors.Is(err, jobs.ErrNotRunning) {
			return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "export queue is not accepting jobs")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export job")
	}
	s.logger.Info("export job queued", zap.String("job_id", job.ID), zap.String("entity", job.Entity))
	return job, nil
}

// Get returns the job with id.
func (s *ExportJobService) Get(ctx context.Context, id string) (*models.ExportJob, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "export job not found", "", "failed to load export job")
	}
	return job, nil
}

// List returns every tracked job, newest first.
func (s *ExportJobService) List(ctx context.Context) ([]models.ExportJob, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, storeError(err, "", "", "failed to list export jobs")
	}
	return list, nil
}

// StartCleanup purges expired jobs and export files every CleanupInterval until ctx is done.
func (s *ExportJobService) StartCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.cleanupExpired(ctx)
			}
		}
	}()
}

func (s *ExportJobService) cleanupExpired(ctx context.Context) {
	removed, err := s.repo.DeleteFinishedBefore(ctx, time.Now().Add(-s.cfg.Retention))
	if err != nil {
		s.logger.Warn("export job cleanup failed", zap.Error(err))
		return
	}
	files, err := s.exporter.Cleanup(s.cfg.Retention)
	if err != nil {
		s.logger.Warn("export file cleanup failed", zap.Error(err))
	}
	if len(removed) > 0 || len(files) > 0 {
		s.logger.Info("expired exports purged", zap.Int("jobs", len(removed)), zap.Int("files", len(files)))
	}
}

// ExportWorker runs queued export jobs.
type ExportWorker struct {
	repo       exportJobStore
	exporter   fileExporter
	metrics    exportJobMetrics
	logger     *zap.Logger
	maxRetries int
}

// NewExportWorker constructs a worker. maxRetries should match the queue's setting.
func NewExportWorker(repo exportJobStore, exporter fileExporter, metrics exportJobMetrics, maxRetries int, logger *zap.Logger) *ExportWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &ExportWorker{
		repo:       repo,
		exporter:   exporter,
		metrics:    metrics,
		logger:     logger,
		maxRetries: maxRetries,
	}
}

// Handle processes one queue job. Returning an error asks the queue to retry.
func (w *ExportWorker) Handle(ctx context.Context, job jobs.Job) error {
	record, err := w.repo.GetByID(ctx, job.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			w.logger.Warn("export job vanished before processing", zap.String("job_id", job.ID))
			return nil
		}
		return err
	}
	processing := models.ExportJobProcessing
	attempts := job.Attempt + 1
	if err := w.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{Status: &processing, Attempts: &attempts}); err != nil {
		return err
	}

	result, err := w.run(ctx, record)
	if err != nil {
		msg := err.Error()
		if permanent(err) || job.Attempt >= w.maxRetries {
			w.finish(ctx, job.ID, repository.UpdateExportJobParams{Error: &msg}, models.ExportJobFailed)
			if permanent(err) {
				return nil
			}
			return err
		}
		queued := models.ExportJobQueued
		if updateErr := w.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{Status: &queued, Error: &msg}); updateErr != nil {
			w.logger.Warn("failed to requeue export job", zap.String("job_id", job.ID), zap.Error(updateErr))
		}
		return err
	}

	clear := ""
	w.finish(ctx, job.ID, repository.UpdateExportJobParams{
		Rows:      &result.Rows,
		ResultURL: &result.URL,
		Error:     &clear,
	}, models.ExportJobFinished)
	return nil
}

func (w *ExportWorker) run(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	entity, err := records.ParseEntity(job.Entity)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	if job.File != "" {
		return w.exporter.ExportFile(ctx, entity, job.File)
	}
	return w.exporter.Export(ctx, entity)
}

func (w *ExportWorker) finish(ctx context.Context, id string, params repository.UpdateExportJobParams, status models.ExportJobStatus) {
	now := time.Now().UTC()
	params.Status = &status
	params.FinishedAt = &now
	if err := w.repo.Update(ctx, id, params); err != nil {
		w.logger.Warn("failed to record export job outcome", zap.String("job_id", id), zap.Error(err))
	}
	if w.metrics != nil {
		w.metrics.RecordExportJob(string(status))
	}
	w.logger.Info("export job done", zap.String("job_id", id), zap.String("status", string(status)))
}

// permanent reports failures that a retry cannot fix.
func permanent(err error) bool {
	return errors.Is(err, appErrors.ErrValidation)
}
