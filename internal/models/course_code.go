package models

import (
	"strconv"
	"strings"
	"unicode"
)

// CourseCode is a normalised course identifier such as CS101. The zero value
// is not a valid code.
type CourseCode struct {
	code   string
	prefix string
	number int
}

// ParseCourseCode trims and upper-cases raw, then splits it into an
// alphabetic prefix and a non-negative numeric suffix.
func ParseCourseCode(raw string) (CourseCode, error) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	split := strings.IndexFunc(code, func(r rune) bool { return !unicode.IsLetter(r) })
	if split == 0 || split == -1 {
		return CourseCode{}, invalid("course code", raw, "must be letters followed by a course number")
	}
	suffix := code[split:]
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return CourseCode{}, invalid("course code", raw, "has an invalid course number")
		}
	}
	number, err := strconv.Atoi(suffix)
	if err != nil {
		return CourseCode{}, invalid("course code", raw, "has an invalid course number")
	}
	return CourseCode{code: code, prefix: code[:split], number: number}, nil
}

// MustCourseCode is ParseCourseCode for literals known to be valid.
func MustCourseCode(raw string) CourseCode {
	code, err := ParseCourseCode(raw)
	if err != nil {
		panic(err)
	}
	return code
}

func (c CourseCode) String() string { return c.code }
func (c CourseCode) Prefix() string { return c.prefix }
func (c CourseCode) Number() int    { return c.number }
func (c CourseCode) IsZero() bool   { return c.code == "" }

// MarshalText renders the normalised code.
func (c CourseCode) MarshalText() ([]byte, error) {
	return []byte(c.code), nil
}

// UnmarshalText parses and normalises the code.
func (c *CourseCode) UnmarshalText(text []byte) error {
	parsed, err := ParseCourseCode(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
