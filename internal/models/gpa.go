package models

// CalculateGPA returns the credit-weighted grade point average over graded
// enrollments. NOT_GRADED entries contribute neither points nor credits; the
// result is 0 when nothing is graded.
func CalculateGPA(details []EnrollmentDetail) float64 {
	var points float64
	var credits int
	for _, d := range details {
		if !d.Grade.Graded() {
			continue
		}
		points += d.Grade.Points() * float64(d.Credits)
		credits += d.Credits
	}
	if credits == 0 {
		return 0
	}
	return points / float64(credits)
}

// GradeStatistics summarises the graded enrollments of a transcript or course.
type GradeStatistics struct {
	Graded       int           `json:"graded"`
	Ungraded     int           `json:"ungraded"`
	TotalCredits int           `json:"total_credits"`
	Lowest       float64       `json:"lowest"`
	Highest      float64       `json:"highest"`
	Average      float64       `json:"average"`
	GPA          float64       `json:"gpa"`
	Distribution map[Grade]int `json:"distribution"`
}

// CalculateStatistics computes unweighted point statistics and the weighted GPA.
func CalculateStatistics(details []EnrollmentDetail) GradeStatistics {
	stats := GradeStatistics{Distribution: make(map[Grade]int)}
	var sum float64
	for _, d := range details {
		stats.Distribution[d.Grade]++
		if !d.Grade.Graded() {
			stats.Ungraded++
			continue
		}
		p := d.Grade.Points()
		if stats.Graded == 0 || p < stats.Lowest {
			stats.Lowest = p
		}
		if stats.Graded == 0 || p > stats.Highest {
			stats.Highest = p
		}
		stats.Graded++
		stats.TotalCredits += d.Credits
		sum += p
	}
	if stats.Graded > 0 {
		stats.Average = sum / float64(stats.Graded)
	}
	stats.GPA = CalculateGPA(details)
	return stats
}
