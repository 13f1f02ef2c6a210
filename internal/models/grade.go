package models

import (
	"math"
	"strings"
)

// Grade is a letter grade on the ten-point scale.
type Grade string

// Grades in descending order of points.
const (
	GradeS         Grade = "S"
	GradeA         Grade = "A"
	GradeB         Grade = "B"
	GradeC         Grade = "C"
	GradeD         Grade = "D"
	GradeE         Grade = "E"
	GradeF         Grade = "F"
	GradeNotGraded Grade = "NOT_GRADED"
)

var gradePoints = map[Grade]float64{
	GradeS: 10, GradeA: 9, GradeB: 8, GradeC: 7, GradeD: 6, GradeE: 5, GradeF: 0, GradeNotGraded: 0,
}

// Grades lists every grade in scale order.
func Grades() []Grade {
	return []Grade{GradeS, GradeA, GradeB, GradeC, GradeD, GradeE, GradeF, GradeNotGraded}
}

// Points returns the grade point value; unknown grades are worth nothing.
func (g Grade) Points() float64 {
	return gradePoints[g]
}

// Valid reports whether g is a member of the scale.
func (g Grade) Valid() bool {
	_, ok := gradePoints[g]
	return ok
}

// Graded is false only for NOT_GRADED.
func (g Grade) Graded() bool {
	return g != GradeNotGraded && g != ""
}

// ParseGrade accepts a grade name in any case. Empty input means NOT_GRADED.
func ParseGrade(raw string) (Grade, error) {
	value := strings.ToUpper(strings.TrimSpace(raw))
	if value == "" {
		return GradeNotGraded, nil
	}
	g := Grade(value)
	if !g.Valid() {
		return "", invalid("grade", raw, "is not one of S, A, B, C, D, E, F, NOT_GRADED")
	}
	return g, nil
}

// GradeFromPercentage maps a score using inclusive lower bounds.
func GradeFromPercentage(percentage float64) Grade {
	switch {
	case percentage >= 90:
		return GradeS
	case percentage >= 80:
		return GradeA
	case percentage >= 70:
		return GradeB
	case percentage >= 60:
		return GradeC
	case percentage >= 50:
		return GradeD
	case percentage >= 40:
		return GradeE
	default:
		return GradeF
	}
}

// ValidPercentage reports whether p is a usable score.
func ValidPercentage(p float64) bool {
	return !math.IsNaN(p) && p >= 0 && p <= 100
}
