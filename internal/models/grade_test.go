package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLetterGradeTable(t *testing.T) {
	expected := map[string]float64{
		"AA": 4.00, "BA": 3.50, "BB": 3.25, "CB": 3.00, "CC": 2.50,
		"DC": 2.25, "DD": 2.00, "FD": 1.50, "FF": 0.00,
	}
	require.Len(t, LetterGrades, len(expected))
	for code, points := range expected {
		grade, err := ParseLetterGrade(code)
		require.NoError(t, err, code)
		assert.Equal(t, points, grade.Points(), code)
	}
}

func TestParseLetterGradeCaseInsensitive(t *testing.T) {
	grade, err := ParseLetterGrade(" ff ")
	require.NoError(t, err)
	assert.Equal(t, GradeFF, grade)
	assert.Equal(t, 0.0, grade.Points())

	grade, err = ParseLetterGrade("aA")
	require.NoError(t, err)
	assert.Equal(t, 4.0, grade.Points())
}

func TestParseLetterGradeRejectsUnknown(t *testing.T) {
	for _, raw := range []string{"XX", "", "A", "AAA", "4.0"} {
		_, err := ParseLetterGrade(raw)
		assert.Error(t, err, raw)
	}
}
