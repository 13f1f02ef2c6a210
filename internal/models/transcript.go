package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const transcriptTitleWidth = 10

// Transcript is a point-in-time snapshot of a student's enrollments.
// Later changes to the engine do not affect an existing transcript.
type Transcript struct {
	student     Student
	enrollments []EnrollmentDetail
	generatedAt time.Time
}

// NewTranscript copies details so the transcript owns its data.
func NewTranscript(student Student, details []EnrollmentDetail, generatedAt time.Time) Transcript {
	return Transcript{
		student:     student.Clone(),
		enrollments: append([]EnrollmentDetail(nil), details...),
		generatedAt: generatedAt,
	}
}

func (t Transcript) Student() Student            { return t.student.Clone() }
func (t Transcript) GeneratedAt() time.Time      { return t.generatedAt }
func (t Transcript) GPA() float64                { return CalculateGPA(t.enrollments) }
func (t Transcript) Statistics() GradeStatistics { return CalculateStatistics(t.enrollments) }

// Enrollments returns a copy of the captured enrollments.
func (t Transcript) Enrollments() []EnrollmentDetail {
	return append([]EnrollmentDetail(nil), t.enrollments...)
}

// TranscriptLine is one row of the rendered transcript.
type TranscriptLine struct {
	CourseCode string  `json:"course_code"`
	Title      string  `json:"title"`
	Credits    int     `json:"credits"`
	Grade      Grade   `json:"grade"`
	Points     float64 `json:"points"`
}

// Lines returns display rows with titles truncated to a fixed width.
func (t Transcript) Lines() []TranscriptLine {
	lines := make([]TranscriptLine, 0, len(t.enrollments))
	for _, d := range t.enrollments {
		lines = append(lines, TranscriptLine{
			CourseCode: d.CourseCode.String(),
			Title:      truncate(d.CourseTitle, transcriptTitleWidth),
			Credits:    d.Credits,
			Grade:      d.Grade,
			Points:     d.Grade.Points(),
		})
	}
	return lines
}

// Format renders the transcript as plain text.
func (t Transcript) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "TRANSCRIPT\n")
	fmt.Fprintf(&b, "Student: %s (%s)\n", t.student.FullName, t.student.RegNo)
	fmt.Fprintf(&b, "Generated: %s\n\n", t.generatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "%-10s %-10s %7s %-10s %6s\n", "Code", "Title", "Credits", "Grade", "Points")
	for _, l := range t.Lines() {
		fmt.Fprintf(&b, "%-10s %-10s %7d %-10s %6.1f\n", l.CourseCode, l.Title, l.Credits, l.Grade, l.Points)
	}
	fmt.Fprintf(&b, "\nGPA: %.2f\n", t.GPA())
	return b.String()
}

type transcriptJSON struct {
	StudentID   string           `json:"student_id"`
	RegNo       string           `json:"reg_no"`
	FullName    string           `json:"full_name"`
	GeneratedAt time.Time        `json:"generated_at"`
	Lines       []TranscriptLine `json:"lines"`
	GPA         float64          `json:"gpa"`
	Statistics  GradeStatistics  `json:"statistics"`
}

// MarshalJSON exposes the snapshot through its read-only view.
func (t Transcript) MarshalJSON() ([]byte, error) {
	return json.Marshal(transcriptJSON{
		StudentID:   t.student.ID,
		RegNo:       t.student.RegNo,
		FullName:    t.student.FullName,
		GeneratedAt: t.generatedAt,
		Lines:       t.Lines(),
		GPA:         t.GPA(),
		Statistics:  t.Statistics(),
	})
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width])
}
