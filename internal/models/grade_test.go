package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGradeFromPercentageBoundaries(t *testing.T) {
	cases := map[float64]Grade{
		100:  GradeS,
		90:   GradeS,
		89.9: GradeA,
		80:   GradeA,
		70:   GradeB,
		60:   GradeC,
		50:   GradeD,
		40:   GradeE,
		39.9: GradeF,
		0:    GradeF,
	}
	for pct, want := range cases {
		assert.Equal(t, want, GradeFromPercentage(pct), "%v", pct)
	}
}

func TestParseGrade(t *testing.T) {
	g, err := ParseGrade("")
	require.NoError(t, err)
	assert.Equal(t, GradeNotGraded, g)

	g, err = ParseGrade("not_graded")
	require.NoError(t, err)
	assert.Equal(t, GradeNotGraded, g)
	assert.False(t, g.Graded())

	g, err = ParseGrade(" a ")
	require.NoError(t, err)
	assert.Equal(t, GradeA, g)
	assert.Equal(t, 9.0, g.Points())

	_, err = ParseGrade("Z")
	assert.Error(t, err)
}

func TestValidPercentage(t *testing.T) {
	assert.True(t, ValidPercentage(0))
	assert.True(t, ValidPercentage(100))
	assert.False(t, ValidPercentage(-0.1))
	assert.False(t, ValidPercentage(100.5))
	assert.False(t, ValidPercentage(math.NaN()))
}
