package delimited

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// StructureReport is the outcome of ValidateStructure.
type StructureReport struct {
	Records  int         `json:"records"`
	Problems []*RowError `json:"problems,omitempty"`
}

// Valid reports whether every record passed.
func (r StructureReport) Valid() bool { return len(r.Problems) == 0 }

// ValidateStructure confirms every record has at least minFields fields
// without interpreting their content.
func ValidateStructure(in io.Reader, opts Options, minFields int) (StructureReport, error) {
	reader := NewReader(in, opts)
	var report StructureReport
	for {
		rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return report, err
		}
		report.Records++
		if err := CheckFieldCount(rec.Fields, minFields, -1); err != nil {
			report.Problems = append(report.Problems, &RowError{Line: rec.Line, Record: rec.Raw, Err: err})
		}
	}
	report.Problems = mergeProblems(report.Problems, reader.Problems())
	return report, nil
}

// ValidateStructureFile opens path and validates it.
func ValidateStructureFile(path string, opts Options, minFields int) (StructureReport, error) {
	f, err := open(path)
	if err != nil {
		return StructureReport{}, err
	}
	defer f.Close()
	return ValidateStructure(f, opts, minFields)
}

// FileStats summarises the physical layout of a file.
type FileStats struct {
	Path         string `json:"path"`
	SizeBytes    int64  `json:"size_bytes"`
	TotalLines   int    `json:"total_lines"`
	HeaderLines  int    `json:"header_lines"`
	DataLines    int    `json:"data_lines"`
	BlankLines   int    `json:"blank_lines"`
	CommentLines int    `json:"comment_lines"`
	// LongLines counts data lines over the length bound. They are included in DataLines.
	LongLines int `json:"long_lines"`
}

// Inspect counts the lines of path by kind.
func Inspect(path string, opts Options) (FileStats, error) {
	f, err := open(path)
	if err != nil {
		return FileStats{}, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return FileStats{}, fmt.Errorf("stat %s: %w", path, err)
	}
	stats := FileStats{Path: path, SizeBytes: info.Size()}
	lines := newLineSource(f, opts.maxLineBytes())
	for {
		text, truncated, err := lines.next()
		if errors.Is(err, io.EOF) {
			return stats, nil
		}
		if err != nil {
			return stats, fmt.Errorf("read %s: %w", path, err)
		}
		stats.TotalLines++
		line := strings.TrimSpace(text)
		switch {
		case stats.HeaderLines < opts.HeaderLines:
			stats.HeaderLines++
		case line == "":
			stats.BlankLines++
		case opts.skippable(line):
			stats.CommentLines++
		default:
			stats.DataLines++
			if truncated {
				stats.LongLines++
			}
		}
	}
}
