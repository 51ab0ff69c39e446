package console

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/sma-gradebook/internal/models"
)

var (
	safeTextPattern  = regexp.MustCompile(`^[a-zA-Z0-9ğüşıöçĞÜŞİÖÇ ]+$`)
	studentIDPattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)
	webPagePattern   = regexp.MustCompile(`^(https?://)?(www\.)?[\w-]+\.[a-z]{2,}(\.[a-z]{2,})?$`)
)

// DateLayouts are the accepted textual date formats, tried in order.
var DateLayouts = []string{"02.01.2006", "02/01/2006", "02-01-2006"}

var (
	yesAnswers = map[string]bool{"y": true, "yes": true, "e": true, "evet": true}
	noAnswers  = map[string]bool{"n": true, "no": true, "h": true, "hayır": true}
)

// Rules validates raw field input against the entry form rules.
type Rules struct {
	validate *validator.Validate
}

// NewRules registers the form tags on validate (a fresh validator when nil).
func NewRules(validate *validator.Validate) *Rules {
	if validate == nil {
		validate = validator.New()
	}
	mustRegister(validate, "safetext", safeTextPattern)
	mustRegister(validate, "studentid", studentIDPattern)
	mustRegister(validate, "webpage", webPagePattern)
	return &Rules{validate: validate}
}

func mustRegister(validate *validator.Validate, tag string, pattern *regexp.Regexp) {
	err := validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return pattern.MatchString(fl.Field().String())
	})
	if err != nil {
		panic(err)
	}
}

// Text accepts letters, digits and spaces.
func (r *Rules) Text(raw string) Outcome[string] {
	return r.str(raw, "required,safetext", ErrInvalidText)
}

// StudentID accepts an opaque identifier; leading zeros are preserved.
func (r *Rules) StudentID(raw string) Outcome[string] {
	return r.str(raw, "required,studentid", ErrInvalidID)
}

// WebPage accepts host names such as "www.duzce.edu.tr" with an optional scheme.
func (r *Rules) WebPage(raw string) Outcome[string] {
	return r.str(raw, "required,webpage", ErrInvalidWeb)
}

// PositiveInt accepts whole numbers greater than zero.
func (r *Rules) PositiveInt(raw string) Outcome[int] {
	input := strings.TrimSpace(raw)
	if isCancel(input) {
		return Cancelled[int]()
	}
	if err := r.validate.Var(input, "required"); err != nil {
		return Invalid[int](ErrEmpty)
	}
	n, err := strconv.Atoi(input)
	if err != nil {
		return Invalid[int](ErrInvalidNumber)
	}
	if err := r.validate.Var(n, "gt=0"); err != nil {
		return Invalid[int](ErrNotPositive)
	}
	return OK(n)
}

// Date accepts any of DateLayouts and rejects days after today.
func (r *Rules) Date(raw string, now time.Time) Outcome[time.Time] {
	input := strings.TrimSpace(raw)
	if isCancel(input) {
		return Cancelled[time.Time]()
	}
	if err := r.validate.Var(input, "required"); err != nil {
		return Invalid[time.Time](ErrEmpty)
	}
	var (
		date   time.Time
		parsed bool
	)
	for _, layout := range DateLayouts {
		d, err := time.ParseInLocation(layout, input, now.Location())
		if err == nil {
			date, parsed = d, true
			break
		}
	}
	if !parsed {
		return Invalid[time.Time](ErrDateFormat)
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if date.After(today) {
		return Invalid[time.Time](ErrFutureDate)
	}
	return OK(date)
}

// Confirmation accepts English and Turkish yes/no answers.
func (r *Rules) Confirmation(raw string) Outcome[bool] {
	input := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case isCancel(input):
		return Cancelled[bool]()
	case yesAnswers[input]:
		return OK(true)
	case noAnswers[input]:
		return OK(false)
	default:
		return Invalid[bool](ErrInvalidAnswer)
	}
}

// Grade decodes a letter grade from the fixed table.
func (r *Rules) Grade(raw string) Outcome[models.LetterGrade] {
	input := strings.TrimSpace(raw)
	if isCancel(input) {
		return Cancelled[models.LetterGrade]()
	}
	grade, err := models.ParseLetterGrade(input)
	if err != nil {
		return Invalid[models.LetterGrade](ErrInvalidGrade)
	}
	return OK(grade)
}

func (r *Rules) str(raw, tag, patternMsg string) Outcome[string] {
	input := strings.TrimSpace(raw)
	if isCancel(input) {
		return Cancelled[string]()
	}
	if err := r.validate.Var(input, tag); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 && fieldErrs[0].Tag() == "required" {
			return Invalid[string](ErrEmpty)
		}
		return Invalid[string](patternMsg)
	}
	return OK(input)
}

func isCancel(input string) bool {
	return strings.EqualFold(input, TokenCancel)
}
