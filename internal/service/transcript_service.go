package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-records/internal/models"
	"github.com/noah-isme/campus-records/internal/repository"
	appErrors "github.com/noah-isme/campus-records/pkg/errors"
	"github.com/noah-isme/campus-records/pkg/export"
)

type transcriptRenderer interface {
	Render(doc export.Document) ([]byte, error)
}

// TranscriptService builds transcript snapshots on demand.
type TranscriptService struct {
	store    recordStore
	renderer transcriptRenderer
	logger   *zap.Logger
	now      func() time.Time
}

// NewTranscriptService constructs TranscriptService.
func NewTranscriptService(store recordStore, renderer transcriptRenderer, logger *zap.Logger) *TranscriptService {
	if renderer == nil {
		renderer = export.NewPDFExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TranscriptService{store: store, renderer: renderer, logger: logger, now: time.Now}
}

// Generate snapshots the enrollments of an active student.
func (s *TranscriptService) Generate(ctx context.Context, studentID string) (models.Transcript, error) {
	var transcript models.Transcript
	err := s.store.View(ctx, func(tx *repository.Tx) error {
		student, ok := tx.Student(studentID)
		if !ok || !student.Active {
			return appErrors.Clonef(appErrors.ErrNotFound, "student %s not found", studentID)
		}
		transcript = models.NewTranscript(student, tx.Details(tx.EnrollmentsByStudent(student.ID)), s.now())
		return nil
	})
	if err != nil {
		return models.Transcript{}, storeError(err, "student not found", "", "failed to build transcript")
	}
	return transcript, nil
}

// PDF renders the transcript of a student as a PDF document.
func (s *TranscriptService) PDF(ctx context.Context, studentID string) ([]byte, error) {
	transcript, err := s.Generate(ctx, studentID)
	if err != nil {
		return nil, err
	}
	lines := transcript.Lines()
	rows := make([][]string, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, []string{l.CourseCode, l.Title, strconv.Itoa(l.Credits), string(l.Grade), fmt.Sprintf("%.1f", l.Points)})
	}
	student := transcript.Student()
	stats := transcript.Statistics()
	doc, err := s.renderer.Render(export.Document{
		Title:  "Transcript",
		Header: []string{fmt.Sprintf("Student: %s (%s)", student.FullName, student.RegNo), "Email: " + student.Email},
		Data: export.Dataset{
			Headers: []string{"Code", "Title", "Credits", "Grade", "Points"},
			Rows:    rows,
		},
		Weights: []float64{1.2, 3.5, 1, 1, 1},
		Numeric: map[int]bool{2: true, 4: true},
		Summary: []string{
			fmt.Sprintf("Graded credits: %d", stats.TotalCredits),
			fmt.Sprintf("GPA: %.2f", transcript.GPA()),
		},
		GeneratedAt: transcript.GeneratedAt(),
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render transcript")
	}
	s.logger.Debug("transcript rendered", zap.String("student_id", studentID), zap.Int("bytes", len(doc)))
	return doc, nil
}
