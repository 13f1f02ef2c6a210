package delimited

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// Record is one logical record with the physical line it starts on.
type Record struct {
	Line   int
	Raw    string
	Fields []string
}

type physicalLine struct {
	number int
	text   string
}

// Reader yields logical records, skipping headers, blank lines and
// comments. Quoted spans may continue across lines; a span that never closes
// is reported as a RowError and the lines it swallowed are read again as
// ordinary records. A line longer than MaxLineBytes is reported and skipped.
type Reader struct {
	opts     Options
	lines    *lineSource
	pending  []physicalLine
	lineNo   int
	skipped  int
	problems []*RowError
}

// NewReader wraps r.
func NewReader(r io.Reader, opts Options) *Reader {
	return &Reader{opts: opts, lines: newLineSource(r, opts.maxLineBytes())}
}

func (r *Reader) nextLine() (physicalLine, bool, error) {
	if len(r.pending) > 0 {
		line := r.pending[0]
		r.pending = r.pending[1:]
		return line, true, nil
	}
	for {
		text, truncated, err := r.lines.next()
		if errors.Is(err, io.EOF) {
			return physicalLine{}, false, nil
		}
		if err != nil {
			return physicalLine{}, false, fmt.Errorf("read line %d: %w", r.lineNo+1, err)
		}
		r.lineNo++
		if r.skipped < r.opts.HeaderLines {
			r.skipped++
			continue
		}
		if truncated {
			if r.opts.skippable(strings.TrimSpace(text)) {
				continue
			}
			r.problems = append(r.problems, &RowError{Line: r.lineNo, Record: excerpt(text), Err: ErrLineTooLong})
			continue
		}
		return physicalLine{number: r.lineNo, text: text}, true, nil
	}
}

// Next returns the next record. It returns io.EOF when input is exhausted.
// Structural problems are collected and available through Problems.
func (r *Reader) Next() (Record, error) {
	for {
		first, ok, err := r.nextLine()
		if err != nil {
			return Record{}, err
		}
		if !ok {
			return Record{}, io.EOF
		}
		trimmed := strings.TrimSpace(first.text)
		if r.opts.skippable(trimmed) {
			continue
		}
		fields, open := SplitLine(trimmed, r.opts.delimiter())
		if !open {
			return Record{Line: first.number, Raw: trimmed, Fields: fields}, nil
		}

		consumed := []physicalLine{first}
		raw := first.text
		for open && len(consumed) < r.opts.maxRecordLines() {
			next, ok, err := r.nextLine()
			if err != nil {
				return Record{}, err
			}
			if !ok {
				break
			}
			consumed = append(consumed, next)
			raw += "\n" + next.text
			fields, open = SplitLine(strings.TrimSpace(raw), r.opts.delimiter())
		}
		if !open {
			return Record{Line: first.number, Raw: strings.TrimSpace(raw), Fields: fields}, nil
		}
		r.problems = append(r.problems, &RowError{Line: first.number, Record: trimmed, Err: ErrUnterminatedQuote})
		r.pending = append(consumed[1:len(consumed):len(consumed)], r.pending...)
	}
}

// Problems returns the records discarded for structural reasons so far.
func (r *Reader) Problems() []*RowError {
	return append([]*RowError(nil), r.problems...)
}

// LinesRead is the number of physical lines consumed, headers included.
func (r *Reader) LinesRead() int { return r.lineNo }
