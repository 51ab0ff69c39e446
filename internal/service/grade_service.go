package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-gradebook/internal/console"
	"github.com/noah-isme/sma-gradebook/internal/models"
)

type gradePrompter interface {
	Grade(courseName string) (console.Outcome[models.LetterGrade], error)
	Println(a ...any)
}

// GradeService runs the grade entry phase: it asks only for grades a student
// does not have yet and feeds them into the student's transcript.
type GradeService struct {
	prompter gradePrompter
	audit    *zap.Logger
	logger   *zap.Logger
	metrics  *MetricsService
}

// NewGradeService constructs GradeService.
func NewGradeService(prompter gradePrompter, audit, logger *zap.Logger, metrics *MetricsService) *GradeService {
	if audit == nil {
		audit = zap.NewNop()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{prompter: prompter, audit: audit, logger: logger, metrics: metrics}
}

// Collect prompts for every missing (student, course) grade. A cancelled
// prompt skips that course only. Returns the number of grades recorded.
func (s *GradeService) Collect(ctx context.Context, students []*models.Student, courses []models.Course) (int, error) {
	if len(students) == 0 || len(courses) == 0 {
		return 0, nil
	}
	recorded := 0
	for _, student := range students {
		headerPrinted := false
		for _, course := range courses {
			if err := ctx.Err(); err != nil {
				return recorded, err
			}
			if student.HasCourse(course) {
				continue
			}
			if !headerPrinted {
				s.prompter.Println("\nEntering grades for student: " + student.FullName())
				headerPrinted = true
			}
			outcome, err := s.prompter.Grade(course.Name)
			if err != nil {
				return recorded, err
			}
			if outcome.IsCancelled() {
				s.prompter.Println(fmt.Sprintf(">> Grading for '%s' skipped by user.", course.Name))
				s.audit.Info(fmt.Sprintf("Grade skipped for student %s, course %s", student.StudentID, course.Code))
				s.metrics.RecordGrade(false)
				continue
			}
			student.AddGrade(course, outcome.Value.Points())
			s.metrics.RecordGrade(true)
			s.logger.Debug("grade recorded",
				zap.String("student_id", student.StudentID),
				zap.String("course", course.Code),
				zap.String("grade", string(outcome.Value)))
			recorded++
		}
	}
	return recorded, nil
}
