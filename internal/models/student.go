package models

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the dd.MM.yyyy layout used in reports and reviews.
	DateLayout = "02.01.2006"
	// NotAvailable marks absent optional values in rendered output.
	NotAvailable = "N/A"
)

// TranscriptEntry is one recorded grade.
type TranscriptEntry struct {
	Course Course  `json:"course"`
	Grade  float64 `json:"grade"`
}

// Student owns a transcript and derives its GPA on demand.
type Student struct {
	FirstName  string      `json:"first_name" validate:"required"`
	LastName   string      `json:"last_name"`
	StudentID  string      `json:"student_id" validate:"required"`
	BirthDate  *time.Time  `json:"birth_date,omitempty"`
	Department *Department `json:"-"`

	grades map[string]int
	order  []TranscriptEntry
}

// NewStudent builds a student with an empty transcript.
func NewStudent(firstName, lastName, studentID string, birthDate *time.Time, dept *Department) *Student {
	return &Student{
		FirstName:  firstName,
		LastName:   lastName,
		StudentID:  studentID,
		BirthDate:  birthDate,
		Department: dept,
	}
}

// AddGrade records or overwrites the grade for course. Range checks belong to the caller.
func (s *Student) AddGrade(course Course, grade float64) {
	if s.grades == nil {
		s.grades = make(map[string]int)
	}
	if idx, ok := s.grades[course.Key()]; ok {
		s.order[idx] = TranscriptEntry{Course: course, Grade: grade}
		return
	}
	s.grades[course.Key()] = len(s.order)
	s.order = append(s.order, TranscriptEntry{Course: course, Grade: grade})
}

// HasCourse reports whether a grade exists for course.
func (s *Student) HasCourse(course Course) bool {
	_, ok := s.grades[course.Key()]
	return ok
}

// Grades returns the transcript in first-recorded order.
func (s *Student) Grades() []TranscriptEntry {
	out := make([]TranscriptEntry, len(s.order))
	copy(out, s.order)
	return out
}

// CalculateGPA returns the credit-weighted mean of recorded grades, or 0 when
// the transcript is empty or carries no credits. No rounding is applied.
func (s *Student) CalculateGPA() float64 {
	if len(s.order) == 0 {
		return 0.0
	}
	totalPoints := 0.0
	totalCredits := 0.0
	for _, entry := range s.order {
		credits := float64(entry.Course.Credits)
		totalPoints += credits * entry.Grade
		totalCredits += credits
	}
	if totalCredits == 0 {
		return 0.0
	}
	return totalPoints / totalCredits
}

// Age returns completed years between the birth date and now.
func (s *Student) Age(now time.Time) int {
	if s.BirthDate == nil {
		return 0
	}
	return YearsBetween(*s.BirthDate, now)
}

// FullName joins first and last name.
func (s *Student) FullName() string {
	if s.LastName == "" {
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}

// FormattedBirthDate renders the birth date as dd.MM.yyyy or N/A.
func (s *Student) FormattedBirthDate() string {
	if s.BirthDate == nil {
		return NotAvailable
	}
	return s.BirthDate.Format(DateLayout)
}

func (s *Student) String() string {
	return fmt.Sprintf("Student{Name='%s', ID='%s', GPA=%.2f}", s.FullName(), s.StudentID, s.CalculateGPA())
}

// YearsBetween counts whole years from start to end, zero when end precedes start.
func YearsBetween(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}
	years := end.Year() - start.Year()
	if end.Month() < start.Month() || (end.Month() == start.Month() && end.Day() < start.Day()) {
		years--
	}
	return years
}
