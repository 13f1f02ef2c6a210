package delimited

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
	"unicode/utf8"
)

const excerptBytes = 80

// lineSource yields physical lines of any length. Content past max bytes is
// dropped and the line is flagged as truncated.
type lineSource struct {
	r   *bufio.Reader
	max int
}

func newLineSource(in io.Reader, max int) *lineSource {
	return &lineSource{r: bufio.NewReader(in), max: max}
}

// next returns a line without its terminator, or io.EOF once input is exhausted.
func (s *lineSource) next() (string, bool, error) {
	var (
		buf       []byte
		truncated bool
		read      bool
	)
	for {
		chunk, err := s.r.ReadSlice('\n')
		read = read || len(chunk) > 0
		data := chunk
		if err == nil {
			data = bytes.TrimSuffix(chunk, []byte{'\n'})
		}
		if room := s.max - len(buf); len(data) > room {
			buf = append(buf, data[:room]...)
			truncated = true
		} else {
			buf = append(buf, data...)
		}
		switch {
		case err == nil:
			return strings.TrimSuffix(string(buf), "\r"), truncated, nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF):
			if !read {
				return "", false, io.EOF
			}
			return strings.TrimSuffix(string(buf), "\r"), truncated, nil
		default:
			return "", false, err
		}
	}
}

// excerpt marks a truncated line for diagnostics, shortening it without
// splitting a rune.
func excerpt(line string) string {
	if len(line) > excerptBytes {
		cut := excerptBytes
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		line = line[:cut]
	}
	return line + "..."
}
