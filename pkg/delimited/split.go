// Package delimited reads and inspects delimited text files one record at a
// time, isolating malformed rows instead of failing the whole batch.
package delimited

import "strings"

// SplitLine splits record on delim outside quoted spans. An unescaped quote
// toggles the quoted state, a doubled quote inside a quoted span yields one
// literal quote and a backslash takes the next character literally. Fields
// are trimmed. open reports that record ended inside a quoted span.
func SplitLine(record string, delim rune) (fields []string, open bool) {
	var (
		current  strings.Builder
		inQuotes bool
		escaped  bool
	)
	runes := []rune(record)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				current.WriteRune('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case r == delim && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	if escaped {
		current.WriteRune('\\')
	}
	fields = append(fields, strings.TrimSpace(current.String()))
	return fields, inQuotes
}
