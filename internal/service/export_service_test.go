package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-records/internal/models"
	"github.com/noah-isme/campus-records/internal/records"
	"github.com/noah-isme/campus-records/internal/repository"
	appErrors "github.com/noah-isme/campus-records/pkg/errors"
	"github.com/noah-isme/campus-records/pkg/storage"
)

func newExportService(t *testing.T, f *fixture) (*ExportService, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("secret", time.Minute)
	return NewExportService(f.store, records.NewCodec(""), store, signer, nil, f.metrics, ExportConfig{APIPrefix: "/api/v1/"}, nil), dir
}

func seedRecords(t *testing.T, f *fixture) {
	t.Helper()
	ctx := context.Background()
	_, err := f.students.Create(ctx, CreateStudentRequest{ID: "S1", RegNo: "CS1001", FullName: `Doe, "JJ" Jr.`, Email: "doe@example.com"})
	require.NoError(t, err)
	f.addStudent(t, "S2", "CS1002")
	require.NoError(t, f.students.Deactivate(ctx, "S2"))
	f.addCourse(t, "CS101", 4, models.SemesterFall)
	_, err = f.courses.Create(ctx, CreateCourseRequest{Code: "MA201", Title: `Linear\Algebra`, Credits: 3, Semester: "Spring"})
	require.NoError(t, err)
	_, err = f.engine.Enroll(ctx, EnrollRequest{StudentID: "S1", CourseCode: "CS101"})
	require.NoError(t, err)
	_, err = f.engine.AssignGrade(ctx, "S1", "CS101", GradeRequest{Grade: "A"})
	require.NoError(t, err)
}

func TestExportImportRoundTrip(t *testing.T) {
	source := newFixture(t, 0)
	seedRecords(t, source)
	exporter, _ := newExportService(t, source)

	target := newFixture(t, 0)
	importer := NewImportService(target.students, target.courses, target.engine, repository.NewStudentRepository(target.store),
		records.NewCodec(""), nil, ImportConfig{DataDir: t.TempDir()}, nil)

	ctx := context.Background()
	for _, entity := range []records.Entity{records.EntityStudents, records.EntityCourses, records.EntityEnrollments} {
		var buf bytes.Buffer
		_, err := exporter.WriteTo(ctx, entity, &buf)
		require.NoError(t, err)
		result, err := importer.ImportReader(ctx, entity, &buf, string(entity))
		require.NoError(t, err)
		assert.Empty(t, result.Diagnostics, "entity %s", entity)
	}

	students, _, err := target.students.List(ctx, models.StudentFilter{IncludeInactive: true})
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, `Doe, "JJ" Jr.`, students[0].FullName)
	assert.False(t, students[1].Active)

	course, err := target.courses.Get(ctx, "MA201")
	require.NoError(t, err)
	assert.Equal(t, `Linear\Algebra`, course.Title)
	assert.Equal(t, models.SemesterSpring, course.Semester)

	detail, ok, err := target.engine.FindEnrollment(ctx, "S1", "CS101")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, models.GradeA, detail.Grade)
}

func TestExportImportKeepsCommentPrefixedIDs(t *testing.T) {
	source := newFixture(t, 0)
	source.addStudent(t, "#42", "CS1001")
	source.addStudent(t, "S2", "CS1002")
	exporter, _ := newExportService(t, source)

	ctx := context.Background()
	var buf bytes.Buffer
	rows, err := exporter.WriteTo(ctx, records.EntityStudents, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, rows)

	target := newFixture(t, 0)
	importer := NewImportService(target.students, target.courses, target.engine, repository.NewStudentRepository(target.store),
		records.NewCodec(""), nil, ImportConfig{DataDir: t.TempDir()}, nil)
	result, err := importer.ImportReader(ctx, records.EntityStudents, &buf, "students.csv")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Empty(t, result.Diagnostics)

	student, err := target.students.Get(ctx, "#42")
	require.NoError(t, err)
	assert.Equal(t, "CS1001", student.RegNo)
}

func TestExportServiceSignedDownload(t *testing.T) {
	f := newFixture(t, 0)
	seedRecords(t, f)
	svc, dir := newExportService(t, f)

	result, err := svc.Export(context.Background(), records.EntityStudents)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Rows)
	assert.True(t, strings.HasPrefix(result.URL, "/api/v1/downloads?token="))
	assert.FileExists(t, filepath.Join(dir, result.RelativePath))

	file, relPath, err := svc.OpenDownload(result.Token)
	require.NoError(t, err)
	defer file.Close()
	assert.Equal(t, result.RelativePath, relPath)
	content, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "id,regNo,fullName,email,active,createdAt\n"))

	_, _, err = svc.OpenDownload(result.Token + "x")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	assert.EqualValues(t, 2, f.metrics.Snapshot().RowsExported)
}

func TestExportServiceUnknownEntity(t *testing.T) {
	f := newFixture(t, 0)
	svc, dir := newExportService(t, f)

	_, err := svc.Export(context.Background(), records.Entity("grades"))
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "partial exports are removed")
}

func TestExportServiceExportFile(t *testing.T) {
	f := newFixture(t, 0)
	seedRecords(t, f)
	svc, dir := newExportService(t, f)
	ctx := context.Background()

	result, err := svc.ExportFile(ctx, records.EntityStudents, "nightly/students.csv")
	require.NoError(t, err)
	assert.Equal(t, "nightly/students.csv", result.RelativePath)
	assert.Equal(t, 2, result.Rows)

	content, err := os.ReadFile(filepath.Join(dir, "nightly", "students.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "CS1001")
	assert.Contains(t, string(content), "CS1002")

	for _, name := range []string{"", "  ", "../escape.csv", "/tmp/abs.csv"} {
		_, err := svc.ExportFile(ctx, records.EntityStudents, name)
		assert.ErrorIs(t, err, appErrors.ErrValidation, "name %q", name)
	}
	_, statErr := os.Stat(filepath.Join(filepath.Dir(dir), "escape.csv"))
	assert.True(t, os.IsNotExist(statErr))
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestExportServiceWriteFailure(t *testing.T) {
	f := newFixture(t, 0)
	seedRecords(t, f)
	svc, _ := newExportService(t, f)

	_, err := svc.WriteTo(context.Background(), records.EntityCourses, brokenWriter{})
	assert.ErrorIs(t, err, appErrors.ErrIOFailure)
}

func TestExportServiceCleanup(t *testing.T) {
	f := newFixture(t, 0)
	svc, dir := newExportService(t, f)

	old := filepath.Join(dir, "students_old.csv")
	require.NoError(t, os.WriteFile(old, []byte("x"), 0o644))
	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))

	removed, err := svc.Cleanup(0)
	require.NoError(t, err)
	assert.Len(t, removed, 1)
	assert.NoFileExists(t, old)
}
