package delimited

import "strings"

// Options controls how a file is read.
type Options struct {
	// Delimiter separates fields. Zero means comma.
	Delimiter rune
	// HeaderLines is the number of leading physical lines to skip.
	HeaderLines int
	// CommentPrefix marks lines to ignore. Empty disables comments.
	CommentPrefix string
	// MaxRecordLines bounds how many physical lines one quoted record may
	// span. Zero means DefaultMaxRecordLines.
	MaxRecordLines int
	// MaxLineBytes bounds one physical line. Longer lines are reported and
	// skipped. Zero means DefaultMaxLineBytes.
	MaxLineBytes int
}

const (
	// DefaultMaxRecordLines is the continuation bound used when Options leaves it unset.
	DefaultMaxRecordLines = 32
	// DefaultMaxLineBytes is the line length bound used when Options leaves it unset.
	DefaultMaxLineBytes = 1 << 20
)

// DefaultOptions reads comma separated files with one header line and # comments.
func DefaultOptions() Options {
	return Options{Delimiter: ',', HeaderLines: 1, CommentPrefix: "#"}
}

func (o Options) delimiter() rune {
	if o.Delimiter == 0 {
		return ','
	}
	return o.Delimiter
}

func (o Options) maxRecordLines() int {
	if o.MaxRecordLines <= 0 {
		return DefaultMaxRecordLines
	}
	return o.MaxRecordLines
}

func (o Options) maxLineBytes() int {
	if o.MaxLineBytes <= 0 {
		return DefaultMaxLineBytes
	}
	return o.MaxLineBytes
}

// skippable reports blank and comment lines. line must already be trimmed.
func (o Options) skippable(line string) bool {
	if line == "" {
		return true
	}
	return o.CommentPrefix != "" && strings.HasPrefix(line, o.CommentPrefix)
}
