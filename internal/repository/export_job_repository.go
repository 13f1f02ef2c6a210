package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/campus-records/internal/models"
)

// UpdateExportJobParams defines the mutable fields of an export job. Nil fields are left untouched.
type UpdateExportJobParams struct {
	Status     *models.ExportJobStatus
	Attempts   *int
	Rows       *int
	ResultURL  *string
	Error      *string
	FinishedAt *time.Time
}

// ExportJobRepository keeps export job metadata in memory. Jobs are process-local and
// are not part of the record store.
type ExportJobRepository struct {
	mu   sync.RWMutex
	jobs map[string]models.ExportJob
}

// NewExportJobRepository constructs an empty repository.
func NewExportJobRepository() *ExportJobRepository {
	return &ExportJobRepository{jobs: make(map[string]models.ExportJob)}
}

// Create stores job, filling in the id, status and creation time when missing.
func (r *ExportJobRepository) Create(ctx context.Context, job *models.ExportJob) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = models.ExportJobQueued
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.jobs[job.ID]; exists {
		return ErrDuplicate
	}
	r.jobs[job.ID] = *job
	return nil
}

// GetByID returns a copy of the job with id.
func (r *ExportJobRepository) GetByID(ctx context.Context, id string) (*models.ExportJob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &job, nil
}

// Update applies params to the job with id.
func (r *ExportJobRepository) Update(ctx context.Context, id string, params UpdateExportJobParams) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.Attempts != nil {
		job.Attempts = *params.Attempts
	}
	if params.Rows != nil {
		job.Rows = *params.Rows
	}
	if params.ResultURL != nil {
		job.ResultURL = *params.ResultURL
	}
	if params.Error != nil {
		job.Error = *params.Error
	}
	if params.FinishedAt != nil {
		finished := *params.FinishedAt
		job.FinishedAt = &finished
	}
	r.jobs[id] = job
	return nil
}

// List returns every job, newest first.
func (r *ExportJobRepository) List(ctx context.Context) ([]models.ExportJob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]models.ExportJob, 0, len(r.jobs))
	for _, job := range r.jobs {
		out = append(out, job)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// DeleteFinishedBefore drops terminal jobs that finished before cutoff and returns them.
func (r *ExportJobRepository) DeleteFinishedBefore(ctx context.Context, cutoff time.Time) ([]models.ExportJob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed []models.ExportJob
	for id, job := range r.jobs {
		if job.Status.Done() && job.FinishedAt != nil && job.FinishedAt.Before(cutoff) {
			removed = append(removed, job)
			delete(r.jobs, id)
		}
	}
	return removed, nil
}
