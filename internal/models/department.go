package models

import (
	"fmt"
	"time"
)

// Department is entered once per run. Identity is the web page.
type Department struct {
	Name          string    `json:"name"`
	WebPage       string    `json:"web_page"`
	EstablishedAt time.Time `json:"established_at"`
}

// NewDepartment builds a Department.
func NewDepartment(name, webPage string, establishedAt time.Time) Department {
	return Department{Name: name, WebPage: webPage, EstablishedAt: establishedAt}
}

// Equal compares departments by web page only.
func (d Department) Equal(other Department) bool {
	return d.WebPage == other.WebPage
}

// FormattedEstablishedAt renders the founding date as dd.MM.yyyy.
func (d Department) FormattedEstablishedAt() string {
	if d.EstablishedAt.IsZero() {
		return NotAvailable
	}
	return d.EstablishedAt.Format(DateLayout)
}

func (d Department) String() string {
	return fmt.Sprintf("%s (%s)", d.Name, d.WebPage)
}
