package app

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-gradebook/internal/console"
	"github.com/noah-isme/sma-gradebook/internal/models"
	"github.com/noah-isme/sma-gradebook/internal/service"
	appErrors "github.com/noah-isme/sma-gradebook/pkg/errors"
)

var (
	// errFormDone is returned by a form when the user types the end token.
	errFormDone = errors.New("form finished")
	// errRetry is returned when the user rejects the review.
	errRetry = errors.New("review rejected")
)

// field unwraps an outcome, turning cancel into ErrCancelled.
func field[T any](outcome console.Outcome[T], err error) (T, error) {
	if err == nil && outcome.Ok() {
		return outcome.Value, nil
	}
	var zero T
	if err != nil {
		return zero, err
	}
	return zero, appErrors.ErrCancelled
}

func (s *Session) departmentPhase(_ context.Context) error {
	for {
		dept, err := s.departmentForm()
		switch {
		case err == nil:
			s.department = &dept
			s.audit.Info("Department set: " + dept.Name)
			return nil
		case errors.Is(err, appErrors.ErrCancelled):
			s.metrics.RecordCancelled("department")
			s.prompter.Println(console.MsgDeptMandatory)
		case errors.Is(err, errRetry):
			s.prompter.Println(console.MsgRetry)
		default:
			return err
		}
	}
}

func (s *Session) departmentForm() (models.Department, error) {
	p := s.prompter
	p.Println("\n" + console.MsgEnterDepartment)
	p.Println(console.MsgCancelHint)

	name, err := field(p.Text("Department Name:"))
	if err != nil {
		return models.Department{}, err
	}
	web, err := field(p.WebPage("Web Page:"))
	if err != nil {
		return models.Department{}, err
	}
	established, err := field(p.Date("Est. Date (dd.MM.yyyy):"))
	if err != nil {
		return models.Department{}, err
	}

	console.PrintReview(p.Out(), "department", [][2]string{
		{"Name", name},
		{"Web", web},
		{"Date", established.Format(models.DateLayout)},
	})
	if err := s.confirm(); err != nil {
		return models.Department{}, err
	}
	return models.NewDepartment(name, web, established), nil
}

func (s *Session) studentPhase(_ context.Context) error {
	s.prompter.Println("\n" + console.MsgEnterStudent)
	return s.formLoop("student", s.studentForm)
}

func (s *Session) coursePhase(_ context.Context) error {
	s.prompter.Println("\n" + console.MsgEnterCourse)
	return s.formLoop("course", s.courseForm)
}

// formLoop repeats form until the end token. Cancelled and rejected entries
// start a fresh form.
func (s *Session) formLoop(name string, form func() error) error {
	for {
		err := form()
		switch {
		case err == nil:
		case errors.Is(err, errFormDone):
			return nil
		case errors.Is(err, appErrors.ErrCancelled):
			s.metrics.RecordCancelled(name)
			s.prompter.Println(console.MsgCancelled)
		case errors.Is(err, errRetry):
			s.prompter.Println(console.MsgRetry)
		case errors.Is(err, appErrors.ErrDuplicateID), errors.Is(err, appErrors.ErrDuplicateCode):
			s.prompter.Println(">> WARNING: " + err.Error())
		case errors.Is(err, appErrors.ErrValidation):
			s.prompter.Println(">> ERROR: " + err.Error())
		default:
			return err
		}
	}
}

func (s *Session) studentForm() error {
	p := s.prompter
	p.Println("\n--- NEW STUDENT ENTRY ---")
	p.Println(console.MsgCancelHint)

	first, err := field(p.Text("First Name ('end' to finish):"))
	if err != nil {
		return err
	}
	if strings.EqualFold(first, console.TokenEnd) {
		return errFormDone
	}
	last, err := field(p.Text("Last Name:"))
	if err != nil {
		return err
	}
	id, err := field(p.StudentID("Student ID:"))
	if err != nil {
		return err
	}
	if s.registry.StudentExists(id) {
		p.Printf(">> WARNING: Student with ID %s already exists!\n", id)
		p.Println(">> Skipping new entry. Existing student will be used.")
		s.metrics.RecordDuplicate(service.EntityStudent)
		s.audit.Info("Duplicate student rejected: ID " + id)
		return nil
	}
	birth, err := field(p.Date("Birth Date (dd.MM.yyyy):"))
	if err != nil {
		return err
	}

	console.PrintReview(p.Out(), "student", [][2]string{
		{"Name", first + " " + last},
		{"ID", id},
		{"Age", strconv.Itoa(models.YearsBetween(birth, s.now()))},
	})
	if err := s.confirm(); err != nil {
		return err
	}

	student := models.NewStudent(first, last, id, &birth, s.department)
	if _, err := s.registry.RegisterStudent(student); err != nil {
		return err
	}
	p.Println(">> Student saved successfully.")
	return nil
}

func (s *Session) courseForm() error {
	p := s.prompter
	p.Println("\n--- NEW COURSE ENTRY ---")
	p.Println(console.MsgCancelHint)

	name, err := field(p.Text("Course Name ('end' to finish):"))
	if err != nil {
		return err
	}
	if strings.EqualFold(name, console.TokenEnd) {
		return errFormDone
	}
	code, err := field(p.Text("Course Code:"))
	if err != nil {
		return err
	}
	if s.registry.CourseExists(code) {
		p.Printf(">> WARNING: Course with code '%s' already exists!\n", code)
		p.Println(">> Skipping new entry.")
		s.metrics.RecordDuplicate(service.EntityCourse)
		s.audit.Info("Duplicate course rejected: " + code)
		return nil
	}
	credits, err := field(p.PositiveInt("ECTS:"))
	if err != nil {
		return err
	}

	console.PrintReview(p.Out(), "course", [][2]string{
		{"Name", name},
		{"Code", code},
		{"ECTS", strconv.Itoa(credits)},
	})
	if err := s.confirm(); err != nil {
		return err
	}

	course, err := models.NewCourse(name, code, credits)
	if err != nil {
		return err
	}
	if _, err := s.registry.RegisterCourse(course); err != nil {
		return err
	}
	p.Println(">> Course saved successfully.")
	s.logger.Debug("course registered", zap.String("code", code), zap.Int("credits", credits))
	return nil
}

// confirm returns errRetry when the user rejects the review.
func (s *Session) confirm() error {
	ok, err := field(s.prompter.Confirm())
	if err != nil {
		return err
	}
	if !ok {
		return errRetry
	}
	return nil
}
