package models

import (
	"fmt"

	appErrors "github.com/noah-isme/sma-gradebook/pkg/errors"
)

// Course is an immutable catalogue entry. Identity is the course code.
type Course struct {
	Name    string `json:"name" validate:"required"`
	Code    string `json:"code" validate:"required"`
	Credits int    `json:"credits" validate:"gte=0"`
}

// NewCourse validates the credit weight and builds a Course.
func NewCourse(name, code string, credits int) (Course, error) {
	if credits < 0 {
		return Course{}, appErrors.Clone(appErrors.ErrValidation, "ECTS cannot be negative")
	}
	return Course{Name: name, Code: code, Credits: credits}, nil
}

// Key is the identity used by transcripts.
func (c Course) Key() string {
	return c.Code
}

// Equal compares courses by code only.
func (c Course) Equal(other Course) bool {
	return c.Code == other.Code
}

func (c Course) String() string {
	return fmt.Sprintf("%s (%s)", c.Name, c.Code)
}
