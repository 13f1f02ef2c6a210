package models

import "time"

// ExportJobStatus captures background export lifecycle states.
type ExportJobStatus string

const (
	ExportJobQueued     ExportJobStatus = "QUEUED"
	ExportJobProcessing ExportJobStatus = "PROCESSING"
	ExportJobFinished   ExportJobStatus = "FINISHED"
	ExportJobFailed     ExportJobStatus = "FAILED"
)

// Done reports whether the job reached a terminal state.
func (s ExportJobStatus) Done() bool {
	return s == ExportJobFinished || s == ExportJobFailed
}

// ExportJob tracks an asynchronous export.
type ExportJob struct {
	ID         string          `json:"id"`
	Entity     string          `json:"entity"`
	File       string          `json:"file,omitempty"`
	Status     ExportJobStatus `json:"status"`
	Attempts   int             `json:"attempts"`
	Rows       int             `json:"rows"`
	ResultURL  string          `json:"result_url,omitempty"`
	Error      string          `json:"error,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
}
