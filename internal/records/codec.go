// Package records maps the flat-file schemas of students, courses and
// enrollments onto domain values and back.
package records

import (
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/campus-records/pkg/export"
)

// Entity names a record schema.
type Entity string

const (
	EntityStudents    Entity = "students"
	EntityCourses     Entity = "courses"
	EntityEnrollments Entity = "enrollments"
)

// ParseEntity resolves a case-insensitive entity name.
func ParseEntity(raw string) (Entity, error) {
	switch e := Entity(strings.ToLower(strings.TrimSpace(raw))); e {
	case EntityStudents, EntityCourses, EntityEnrollments:
		return e, nil
	}
	return "", fmt.Errorf("unknown record type %q", raw)
}

// MinFields is the column count a row of e must reach to be structurally valid.
func (e Entity) MinFields() int {
	switch e {
	case EntityStudents:
		return studentFields
	case EntityCourses:
		return courseFields
	case EntityEnrollments:
		return enrollmentFields
	}
	return 0
}

// FileName is the conventional file for e inside the data directory.
func (e Entity) FileName() string { return string(e) + ".csv" }

// Codec converts between field slices and domain values using one timestamp layout.
type Codec struct {
	layout   string
	location *time.Location
	now      func() time.Time
}

// CodecOption customises a Codec.
type CodecOption func(*Codec)

// WithClock replaces time.Now, used for empty enrollment timestamps.
func WithClock(now func() time.Time) CodecOption {
	return func(c *Codec) { c.now = now }
}

// WithLocation sets the zone timestamps are parsed in and rendered for.
func WithLocation(loc *time.Location) CodecOption {
	return func(c *Codec) {
		if loc != nil {
			c.location = loc
		}
	}
}

// NewCodec returns a codec for layout, which uses Go reference-time notation.
func NewCodec(layout string, opts ...CodecOption) *Codec {
	if layout == "" {
		layout = "2006-01-02 15:04:05"
	}
	c := &Codec{layout: layout, location: time.Local, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Codec) formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(c.location).Format(c.layout)
}

func (c *Codec) parseTime(field, raw string) (time.Time, error) {
	t, err := time.ParseInLocation(c.layout, raw, c.location)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s %q does not match layout %q", field, raw, c.layout)
	}
	return t, nil
}

// parseBool accepts only true or false, ignoring case.
func parseBool(field, raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("%s %q must be true or false", field, raw)
}

func formatBool(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

func dataset(headers []string, rows [][]string) export.Dataset {
	return export.Dataset{Headers: headers, Rows: rows}
}
