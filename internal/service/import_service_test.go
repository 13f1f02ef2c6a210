package service

import (
	"context"
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
	"github.com/noah-isme/campus-records/pkg/delimited"
	appErrors "github.com/noah-isme/campus-records/pkg/errors"
)

const studentsFile = `id,regNo,fullName,email,active,createdAt
S1,CS1001,"Doe, Jr.",doe@example.com,true,2024-01-02 10:00:00
S2,BAD,Broken,broken@example.com,true,
S3,CS1003,Third,third@example.com,maybe,
S4,cs1001,Dup,dup@example.com,true,
S5,CS1005,Five,five@example.com,false
`

const coursesFile = `code,title,credits,department,semester,active,instructor
CS101,Intro,4,CS,FALL,true,N/A
CS102,Data Structures,ten,CS,FALL,true,N/A
`

const enrollmentsFile = `studentRegNo,courseCode,enrollmentTimestamp,grade
CS1001,CS101,2024-02-01 09:00:00,A
CS9999,CS101,,B
CS1001,CS101,,
CS1001,CS101,yesterday,A
`

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func newImportFixture(t *testing.T) (*fixture, *ImportService, string) {
	t.Helper()
	f := newFixture(t, 0)
	dir := t.TempDir()
	svc := NewImportService(f.students, f.courses, f.engine, repository.NewStudentRepository(f.store),
		records.NewCodec(""), f.metrics, ImportConfig{DataDir: dir}, nil)
	return f, svc, dir
}

func TestImportServiceSkipsBadRows(t *testing.T) {
	f, svc, dir := newImportFixture(t)
	writeFile(t, dir, "students.csv", studentsFile)

	result, err := svc.Import(context.Background(), records.EntityStudents, "students.csv")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 3, result.Skipped)
	require.Len(t, result.Diagnostics, 3)
	assert.Equal(t, 3, result.Diagnostics[0].Line)
	assert.Equal(t, appErrors.ErrMalformedRecord.Code, result.Diagnostics[0].Code)
	assert.Equal(t, 4, result.Diagnostics[1].Line)
	assert.Contains(t, result.Diagnostics[1].Reason, "maybe")
	assert.Equal(t, 5, result.Diagnostics[2].Line)
	assert.Equal(t, appErrors.ErrDuplicate.Code, result.Diagnostics[2].Code)
	assert.Contains(t, result.Diagnostics[2].Record, "Dup")

	student, err := f.students.Get(context.Background(), "S1")
	require.NoError(t, err)
	assert.Equal(t, "Doe, Jr.", student.FullName)
	assert.Equal(t, 2024, student.CreatedAt.Year())

	list, _, err := f.students.List(context.Background(), models.StudentFilter{IncludeInactive: true})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	snapshot := f.metrics.Snapshot()
	assert.EqualValues(t, 2, snapshot.RowsAccepted)
	assert.EqualValues(t, 3, snapshot.RowsRejected)
}

func TestImportServiceBootstrapAppliesEnrollmentRules(t *testing.T) {
	f, svc, dir := newImportFixture(t)
	writeFile(t, dir, "students.csv", studentsFile)
	writeFile(t, dir, "courses.csv", coursesFile)
	writeFile(t, dir, "enrollments.csv", enrollmentsFile)

	results, err := svc.Bootstrap(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 3)

	courses := results[1]
	assert.Equal(t, 1, courses.Imported)
	assert.Equal(t, 1, courses.Skipped)

	enrollments := results[2]
	assert.Equal(t, records.EntityEnrollments, enrollments.Entity)
	assert.Equal(t, 1, enrollments.Imported)
	require.Len(t, enrollments.Diagnostics, 3)
	assert.Equal(t, appErrors.ErrNotFound.Code, enrollments.Diagnostics[0].Code)
	assert.Equal(t, appErrors.ErrDuplicate.Code, enrollments.Diagnostics[1].Code)
	assert.Equal(t, appErrors.ErrMalformedRecord.Code, enrollments.Diagnostics[2].Code)

	detail, ok, err := f.engine.FindEnrollment(context.Background(), "S1", "CS101")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, models.GradeA, detail.Grade)
	assert.Equal(t, time.February, detail.EnrolledAt.Month())
}

func TestImportServiceRejectsCourseWithoutSemester(t *testing.T) {
	f, svc, _ := newImportFixture(t)
	input := "code,title,credits,department,semester,active\nCS101,Intro,3,CS,,true\nCS102,Data,3,CS,spring,true\n"

	result, err := svc.ImportReader(context.Background(), records.EntityCourses, strings.NewReader(input), "courses.csv")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, 2, result.Diagnostics[0].Line)
	assert.Equal(t, appErrors.ErrMalformedRecord.Code, result.Diagnostics[0].Code)
	assert.Contains(t, result.Diagnostics[0].Reason, "semester")

	_, err = f.courses.Get(context.Background(), "CS101")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestImportServiceIsolatesOverlongLine(t *testing.T) {
	f := newFixture(t, 0)
	opts := delimited.DefaultOptions()
	opts.MaxLineBytes = 128
	svc := NewImportService(f.students, f.courses, f.engine, repository.NewStudentRepository(f.store),
		records.NewCodec(""), nil, ImportConfig{DataDir: t.TempDir(), Options: opts}, nil)
	input := "id,regNo,fullName,email,active\n" +
		"S1,CS1001,Ada,ada@example.com,true\n" +
		"S2,CS1002," + strings.Repeat("y", 5000) + ",y@example.com,true\n" +
		"S3,CS1003,Grace,grace@example.com,true\n"

	result, err := svc.ImportReader(context.Background(), records.EntityStudents, strings.NewReader(input), "students.csv")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, 3, result.Diagnostics[0].Line)
	assert.Equal(t, appErrors.ErrMalformedRecord.Code, result.Diagnostics[0].Code)
}

func TestImportServiceBootstrapSkipsMissingFiles(t *testing.T) {
	_, svc, dir := newImportFixture(t)
	writeFile(t, dir, "courses.csv", coursesFile)

	results, err := svc.Bootstrap(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, records.EntityCourses, results[0].Entity)
}

func TestImportServiceFileFailures(t *testing.T) {
	f, svc, _ := newImportFixture(t)
	ctx := context.Background()

	_, err := svc.Import(ctx, records.EntityStudents, "missing.csv")
	assert.ErrorIs(t, err, appErrors.ErrIOFailure)

	_, err = svc.Import(ctx, records.EntityStudents, "../outside.csv")
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Import(ctx, records.EntityStudents, "")
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.ImportReader(ctx, records.Entity("grades"), strings.NewReader(""), "inline")
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	list, _, err := f.students.List(ctx, models.StudentFilter{IncludeInactive: true})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestImportWithValidationAbortsOnStructuralProblems(t *testing.T) {
	f, svc, dir := newImportFixture(t)
	ctx := context.Background()
	writeFile(t, dir, "short.csv", "id,regNo,fullName,email,active\nS1,CS1001,Ada,ada@example.com,true\nS2,CS1002\n")

	report, err := svc.ValidateStructure(ctx, records.EntityStudents, "short.csv")
	require.NoError(t, err)
	assert.False(t, report.Valid())
	require.Len(t, report.Problems, 1)
	assert.Equal(t, 3, report.Problems[0].Line)

	_, err = svc.ImportWithValidation(ctx, records.EntityStudents, "short.csv")
	require.ErrorIs(t, err, appErrors.ErrMalformedRecord)
	assert.Contains(t, appErrors.FromError(err).Details, "line 3")

	list, _, err := f.students.List(ctx, models.StudentFilter{IncludeInactive: true})
	require.NoError(t, err)
	assert.Empty(t, list, "nothing is imported when validation fails")

	writeFile(t, dir, "good.csv", "id,regNo,fullName,email,active\nS1,CS1001,Ada,ada@example.com,true\n")
	result, err := svc.ImportWithValidation(ctx, records.EntityStudents, "good.csv")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)

	stats, err := svc.Inspect(ctx, "good.csv")
	require.NoError(t, err)
	assert.Equal(t, "good.csv", stats.Path)
}

func TestImportServiceStopsOnCancelledContext(t *testing.T) {
	_, svc, _ := newImportFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.ImportReader(ctx, records.EntityStudents, strings.NewReader(studentsFile), "inline")
	assert.ErrorIs(t, err, context.Canceled)
}
