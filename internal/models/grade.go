package models

import (
	"fmt"
	"strings"

	appErrors "github.com/noah-isme/sma-gradebook/pkg/errors"
)

// LetterGrade is a code from the fixed grading table.
type LetterGrade string

// Letter grades accepted by the grade entry phase.
const (
	GradeAA LetterGrade = "AA"
	GradeBA LetterGrade = "BA"
	GradeBB LetterGrade = "BB"
	GradeCB LetterGrade = "CB"
	GradeCC LetterGrade = "CC"
	GradeDC LetterGrade = "DC"
	GradeDD LetterGrade = "DD"
	GradeFD LetterGrade = "FD"
	GradeFF LetterGrade = "FF"
)

// LetterGrades lists the table in descending order.
var LetterGrades = []LetterGrade{GradeAA, GradeBA, GradeBB, GradeCB, GradeCC, GradeDC, GradeDD, GradeFD, GradeFF}

var gradePoints = map[LetterGrade]float64{
	GradeAA: 4.00,
	GradeBA: 3.50,
	GradeBB: 3.25,
	GradeCB: 3.00,
	GradeCC: 2.50,
	GradeDC: 2.25,
	GradeDD: 2.00,
	GradeFD: 1.50,
	GradeFF: 0.00,
}

// Points returns the numeric value of the grade.
func (g LetterGrade) Points() float64 {
	return gradePoints[g]
}

// ParseLetterGrade decodes a case-insensitive letter grade.
func ParseLetterGrade(raw string) (LetterGrade, error) {
	grade := LetterGrade(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := gradePoints[grade]; !ok {
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid grade code %q", raw))
	}
	return grade, nil
}
