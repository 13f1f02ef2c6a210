package delimited

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
)

// RecordParser converts the fields of one record into a value.
type RecordParser[T any] func(fields []string) (T, error)

// Row is an accepted record with its source line.
type Row[T any] struct {
	Line   int
	Record string
	Value  T
}

// Result holds the accepted rows and one diagnostic per discarded row.
type Result[T any] struct {
	Rows        []Row[T]
	Diagnostics []*RowError
	LinesRead   int
}

// Values returns the accepted values in file order.
func (r Result[T]) Values() []T {
	values := make([]T, 0, len(r.Rows))
	for _, row := range r.Rows {
		values = append(values, row.Value)
	}
	return values
}

// Accepted is the number of rows parsed successfully.
func (r Result[T]) Accepted() int { return len(r.Rows) }

// Rejected is the number of rows discarded.
func (r Result[T]) Rejected() int { return len(r.Diagnostics) }

// Parse reads every record from in and applies parse to it. A record that
// fails is discarded with a diagnostic; only read errors abort.
func Parse[T any](in io.Reader, opts Options, parse RecordParser[T]) (Result[T], error) {
	reader := NewReader(in, opts)
	var result Result[T]
	for {
		rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return result, err
		}
		value, err := parse(rec.Fields)
		if err != nil {
			result.Diagnostics = append(result.Diagnostics, &RowError{Line: rec.Line, Record: rec.Raw, Err: err})
			continue
		}
		result.Rows = append(result.Rows, Row[T]{Line: rec.Line, Record: rec.Raw, Value: value})
	}
	result.Diagnostics = mergeProblems(result.Diagnostics, reader.Problems())
	result.LinesRead = reader.LinesRead()
	return result, nil
}

// ParseFile opens path and parses it.
func ParseFile[T any](path string, opts Options, parse RecordParser[T]) (Result[T], error) {
	f, err := open(path)
	if err != nil {
		return Result[T]{}, err
	}
	defer f.Close()
	return Parse(f, opts, parse)
}

func open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("file not found: %s: %w", path, err)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

func mergeProblems(a, b []*RowError) []*RowError {
	if len(b) == 0 {
		return a
	}
	merged := append(append([]*RowError(nil), a...), b...)
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Line < merged[j].Line })
	return merged
}
