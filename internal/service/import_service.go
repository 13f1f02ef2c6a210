package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-records/internal/models"
	"github.com/noah-isme/campus-records/internal/records"
	"github.com/noah-isme/campus-records/pkg/delimited"
	appErrors "github.com/noah-isme/campus-records/pkg/errors"
	"github.com/noah-isme/campus-records/pkg/logger"
)

type studentAdder interface {
	Add(ctx context.Context, student models.Student) (*models.Student, error)
}

type courseAdder interface {
	Add(ctx context.Context, course models.Course) (*models.Course, error)
}

type enrollmentRestorer interface {
	Restore(ctx context.Context, req RestoreRequest) (*models.EnrollmentDetail, error)
}

type studentFinder interface {
	FindByRegNo(ctx context.Context, regNo string) (*models.Student, error)
}

type ingestionMetrics interface {
	RecordIngestion(entity string, accepted, rejected int)
}

// ImportConfig tunes ingestion.
type ImportConfig struct {
	// DataDir anchors relative paths; every imported file must live below it.
	DataDir string
	Options delimited.Options
}

// Diagnostic describes one row that was not imported.
type Diagnostic struct {
	Line   int    `json:"line"`
	Record string `json:"record"`
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

// ImportResult summarises one import.
type ImportResult struct {
	Entity      records.Entity `json:"entity"`
	Source      string         `json:"source"`
	LinesRead   int            `json:"lines_read"`
	Imported    int            `json:"imported"`
	Skipped     int            `json:"skipped"`
	Diagnostics []Diagnostic   `json:"diagnostics"`
}

// ImportService converts delimited files into stored records. A bad row is
// skipped with a diagnostic; only file-level failures abort an import.
type ImportService struct {
	students    studentAdder
	courses     courseAdder
	enrollments enrollmentRestorer
	lookup      studentFinder
	codec       *records.Codec
	metrics     ingestionMetrics
	logger      *zap.Logger
	cfg         ImportConfig
}

// NewImportService constructs ImportService.
func NewImportService(students studentAdder, courses courseAdder, enrollments enrollmentRestorer, lookup studentFinder, codec *records.Codec, metrics ingestionMetrics, cfg ImportConfig, logger *zap.Logger) *ImportService {
	if codec == nil {
		codec = records.NewCodec("")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Options == (delimited.Options{}) {
		cfg.Options = delimited.DefaultOptions()
	}
	return &ImportService{
		students:    students,
		courses:     courses,
		enrollments: enrollments,
		lookup:      lookup,
		codec:       codec,
		metrics:     metrics,
		logger:      logger,
		cfg:         cfg,
	}
}

// Import reads the file at path, relative to the data directory.
func (s *ImportService) Import(ctx context.Context, entity records.Entity, path string) (*ImportResult, error) {
	resolved, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(resolved)
	if err != nil {
		return nil, ioFailure(err, path)
	}
	defer f.Close() //nolint:errcheck
	return s.ImportReader(ctx, entity, f, path)
}

// ImportReader reads records of entity from r. source labels the input in logs and results.
func (s *ImportService) ImportReader(ctx context.Context, entity records.Entity, r io.Reader, source string) (*ImportResult, error) {
	switch entity {
	case records.EntityStudents:
		return ingest(ctx, s, entity, r, source, s.codec.ParseStudent, func(ctx context.Context, student models.Student) error {
			_, err := s.students.Add(ctx, student)
			return err
		})
	case records.EntityCourses:
		return ingest(ctx, s, entity, r, source, s.codec.ParseCourse, func(ctx context.Context, course models.Course) error {
			_, err := s.courses.Add(ctx, course)
			return err
		})
	case records.EntityEnrollments:
		return ingest(ctx, s, entity, r, source, s.codec.ParseEnrollment, s.restoreEnrollment)
	}
	return nil, appErrors.Clonef(appErrors.ErrValidation, "unknown record type %q", entity)
}

func (s *ImportService) restoreEnrollment(ctx context.Context, rec records.EnrollmentRecord) error {
	student, err := s.lookup.FindByRegNo(ctx, rec.StudentRegNo)
	if err != nil {
		return storeError(err, "student "+rec.StudentRegNo+" not found", "", "failed to load student")
	}
	_, err = s.enrollments.Restore(ctx, RestoreRequest{
		StudentID:  student.ID,
		CourseCode: rec.CourseCode,
		EnrolledAt: rec.EnrolledAt,
		Grade:      rec.Grade,
	})
	return err
}

func ingest[T any](ctx context.Context, s *ImportService, entity records.Entity, r io.Reader, source string,
	parse delimited.RecordParser[T], apply func(context.Context, T) error) (*ImportResult, error) {
	parsed, err := delimited.Parse(r, s.cfg.Options, parse)
	if err != nil {
		return nil, ioFailure(err, source)
	}
	result := &ImportResult{Entity: entity, Source: source, LinesRead: parsed.LinesRead, Diagnostics: []Diagnostic{}}
	for _, rowErr := range parsed.Diagnostics {
		result.Diagnostics = append(result.Diagnostics, Diagnostic{
			Line:   rowErr.Line,
			Record: rowErr.Record,
			Code:   appErrors.ErrMalformedRecord.Code,
			Reason: rowErr.Reason(),
		})
	}
	for _, row := range parsed.Rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := apply(ctx, row.Value); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			appErr := appErrors.FromError(err)
			result.Diagnostics = append(result.Diagnostics, Diagnostic{Line: row.Line, Record: row.Record, Code: appErr.Code, Reason: appErr.Message})
			continue
		}
		result.Imported++
	}
	sortDiagnostics(result.Diagnostics)
	result.Skipped = len(result.Diagnostics)

	log := logger.From(ctx, s.logger)
	for _, d := range result.Diagnostics {
		log.Warn("record skipped",
			zap.String("entity", string(entity)),
			zap.String("source", source),
			zap.Int("line", d.Line),
			zap.String("code", d.Code),
			zap.String("reason", d.Reason))
	}
	log.Info("import finished",
		zap.String("entity", string(entity)),
		zap.String("source", source),
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped))
	if s.metrics != nil {
		s.metrics.RecordIngestion(string(entity), result.Imported, result.Skipped)
	}
	return result, nil
}

func sortDiagnostics(ds []Diagnostic) {
	sort.SliceStable(ds, func(i, j int) bool { return ds[i].Line < ds[j].Line })
}

// ValidateStructure checks the column count of every record without importing.
func (s *ImportService) ValidateStructure(ctx context.Context, entity records.Entity, path string) (*delimited.StructureReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resolved, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	report, err := delimited.ValidateStructureFile(resolved, s.cfg.Options, entity.MinFields())
	if err != nil {
		return nil, ioFailure(err, path)
	}
	return &report, nil
}

// ImportWithValidation imports only when the structural check passes.
func (s *ImportService) ImportWithValidation(ctx context.Context, entity records.Entity, path string) (*ImportResult, error) {
	report, err := s.ValidateStructure(ctx, entity, path)
	if err != nil {
		return nil, err
	}
	if !report.Valid() {
		details := make(map[string]string, len(report.Problems))
		for _, p := range report.Problems {
			details[fmt.Sprintf("line %d", p.Line)] = p.Reason()
		}
		return nil, appErrors.Clonef(appErrors.ErrMalformedRecord, "%s has %d structurally invalid rows", path, len(report.Problems)).WithDetails(details)
	}
	return s.Import(ctx, entity, path)
}

// Inspect reports line statistics for a file.
func (s *ImportService) Inspect(ctx context.Context, path string) (*delimited.FileStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resolved, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	stats, err := delimited.Inspect(resolved, s.cfg.Options)
	if err != nil {
		return nil, ioFailure(err, path)
	}
	stats.Path = path
	return &stats, nil
}

// Bootstrap imports students, courses and enrollments from their
// conventional files in the data directory. Missing files are skipped.
func (s *ImportService) Bootstrap(ctx context.Context) ([]*ImportResult, error) {
	var results []*ImportResult
	for _, entity := range []records.Entity{records.EntityStudents, records.EntityCourses, records.EntityEnrollments} {
		result, err := s.Import(ctx, entity, entity.FileName())
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				s.logger.Info("bootstrap file missing", zap.String("entity", string(entity)))
				continue
			}
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

// resolve anchors path in the data directory and refuses to leave it.
func (s *ImportService) resolve(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "path is required")
	}
	base, err := filepath.Abs(s.cfg.DataDir)
	if err != nil {
		return "", ioFailure(err, s.cfg.DataDir)
	}
	target := path
	if !filepath.IsAbs(target) {
		target = filepath.Join(base, target)
	}
	target = filepath.Clean(target)
	rel, err := filepath.Rel(base, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", appErrors.Clonef(appErrors.ErrValidation, "path %s is outside the data directory", path)
	}
	return target, nil
}

func ioFailure(err error, path string) *appErrors.Error {
	return appErrors.Wrap(err, appErrors.ErrIOFailure.Code, appErrors.ErrIOFailure.Status, fmt.Sprintf("cannot read %s", path))
}
