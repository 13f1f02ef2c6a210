package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Dataset defines fixed-column export content. Every row is written in
// header order; short rows are padded with empty fields.
type Dataset struct {
	Headers []string
	Rows    [][]string
}

// CSVExporter writes datasets as delimited text. Fields containing the
// delimiter, a quote or a newline are quoted with inner quotes doubled.
type CSVExporter struct {
	comma             rune
	escapeBackslashes bool
	commentPrefix     string
}

// CSVOption customises a CSVExporter.
type CSVOption func(*CSVExporter)

// WithDelimiter overrides the default comma.
func WithDelimiter(comma rune) CSVOption {
	return func(e *CSVExporter) {
		if comma != 0 {
			e.comma = comma
		}
	}
}

// WithBackslashEscaping doubles backslashes so readers that treat a
// backslash as an escape recover the original text.
func WithBackslashEscaping() CSVOption {
	return func(e *CSVExporter) { e.escapeBackslashes = true }
}

// WithCommentPrefix escapes the first character of a row whose first field
// starts with prefix, so readers that skip comment lines keep the row. It
// relies on backslash escapes and is ignored for prefixes starting with one.
func WithCommentPrefix(prefix string) CSVOption {
	return func(e *CSVExporter) {
		if !strings.HasPrefix(prefix, `\`) {
			e.commentPrefix = prefix
		}
	}
}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter(opts ...CSVOption) *CSVExporter {
	e := &CSVExporter{comma: ','}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Write streams the header followed by every row to w. It fails only when w does.
func (e *CSVExporter) Write(w io.Writer, data Dataset) (int, error) {
	if len(data.Headers) == 0 {
		return 0, fmt.Errorf("csv requires at least one header")
	}
	writer := csv.NewWriter(w)
	writer.Comma = e.comma
	if err := writer.Write(data.Headers); err != nil {
		return 0, fmt.Errorf("write csv headers: %w", err)
	}
	written := 0
	record := make([]string, len(data.Headers))
	for _, row := range data.Rows {
		for i := range record {
			record[i] = ""
			if i < len(row) {
				record[i] = e.escape(row[i])
			}
		}
		record[0] = e.protectLeading(record[0])
		if err := writer.Write(record); err != nil {
			return written, fmt.Errorf("write csv row: %w", err)
		}
		written++
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return written, fmt.Errorf("flush csv: %w", err)
	}
	return written, nil
}

// Render produces CSV encoded bytes for the dataset.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	buf := &bytes.Buffer{}
	if _, err := e.Write(buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *CSVExporter) escape(value string) string {
	if !e.escapeBackslashes {
		return value
	}
	return strings.ReplaceAll(value, `\`, `\\`)
}

func (e *CSVExporter) protectLeading(value string) string {
	if e.commentPrefix == "" || !strings.HasPrefix(strings.TrimSpace(value), e.commentPrefix) {
		return value
	}
	return `\` + value
}
