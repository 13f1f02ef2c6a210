package models

import "strings"

// Semester tags the term a course runs in.
type Semester string

const (
	SemesterFall   Semester = "FALL"
	SemesterSpring Semester = "SPRING"
	SemesterSummer Semester = "SUMMER"
)

// Semesters lists the known semesters.
func Semesters() []Semester {
	return []Semester{SemesterFall, SemesterSpring, SemesterSummer}
}

// ParseSemester matches raw against the known semesters ignoring case.
func ParseSemester(raw string) (Semester, error) {
	value := Semester(strings.ToUpper(strings.TrimSpace(raw)))
	for _, s := range Semesters() {
		if s == value {
			return s, nil
		}
	}
	return "", invalid("semester", raw, "is not one of FALL, SPRING, SUMMER")
}
