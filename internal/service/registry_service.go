package service

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-gradebook/internal/models"
	appErrors "github.com/noah-isme/sma-gradebook/pkg/errors"
)

// RegistryService owns every known student and course for the run and keeps
// the session subset used for reporting. Historical students take part in
// duplicate checks but never appear in SessionStudents.
type RegistryService struct {
	students []*models.Student
	session  []*models.Student
	courses  []models.Course

	validator *validator.Validate
	audit     *zap.Logger
	logger    *zap.Logger
	metrics   *MetricsService
}

// NewRegistryService constructs an empty registry.
func NewRegistryService(validate *validator.Validate, audit, logger *zap.Logger, metrics *MetricsService) *RegistryService {
	if validate == nil {
		validate = validator.New()
	}
	if audit == nil {
		audit = zap.NewNop()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistryService{validator: validate, audit: audit, logger: logger, metrics: metrics}
}

// Restore seeds students persisted by earlier runs. Students whose ID is
// already known are ignored. Returns the number restored.
func (r *RegistryService) Restore(students ...*models.Student) int {
	restored := 0
	for _, s := range students {
		if s == nil || r.StudentExists(s.StudentID) {
			continue
		}
		r.students = append(r.students, s)
		restored++
	}
	if restored > 0 {
		r.audit.Info(fmt.Sprintf("Persistence: Loaded %d records from previous run.", restored))
	}
	r.metrics.SetRestored(len(r.students) - len(r.session))
	return restored
}

// StudentExists reports whether any known student has id. Letters compare case-insensitively.
func (r *RegistryService) StudentExists(id string) bool {
	return r.findStudent(id) != nil
}

// CourseExists reports whether any known course has code, ignoring case.
func (r *RegistryService) CourseExists(code string) bool {
	for _, c := range r.courses {
		if strings.EqualFold(c.Code, code) {
			return true
		}
	}
	return false
}

// RegisterStudent adds candidate to both the all-time and session sets.
func (r *RegistryService) RegisterStudent(candidate *models.Student) (*models.Student, error) {
	if candidate == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student required")
	}
	if err := r.validator.Struct(candidate); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, "invalid student")
	}
	if r.StudentExists(candidate.StudentID) {
		r.metrics.RecordDuplicate(EntityStudent)
		r.audit.Info("Duplicate student rejected: ID " + candidate.StudentID)
		r.logger.Debug("duplicate student", zap.String("student_id", candidate.StudentID))
		return nil, appErrors.Clone(appErrors.ErrDuplicateID, fmt.Sprintf("student with ID %s already exists", candidate.StudentID))
	}
	r.students = append(r.students, candidate)
	r.session = append(r.session, candidate)
	r.metrics.RecordRegistered(EntityStudent)
	r.audit.Info("Student added: ID " + candidate.StudentID)
	return candidate, nil
}

// RegisterCourse adds candidate unless its code is already known.
func (r *RegistryService) RegisterCourse(candidate models.Course) (models.Course, error) {
	if err := r.validator.Struct(candidate); err != nil {
		return models.Course{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, "invalid course")
	}
	if r.CourseExists(candidate.Code) {
		r.metrics.RecordDuplicate(EntityCourse)
		r.audit.Info("Duplicate course rejected: " + candidate.Code)
		r.logger.Debug("duplicate course", zap.String("code", candidate.Code))
		return models.Course{}, appErrors.Clone(appErrors.ErrDuplicateCode, fmt.Sprintf("course with code '%s' already exists", candidate.Code))
	}
	r.courses = append(r.courses, candidate)
	r.metrics.RecordRegistered(EntityCourse)
	r.audit.Info("Course added: " + candidate.Code)
	return candidate, nil
}

// SessionStudents returns students added during this run in insertion order.
func (r *RegistryService) SessionStudents() []*models.Student {
	out := make([]*models.Student, len(r.session))
	copy(out, r.session)
	return out
}

// AllStudents returns restored and session students.
func (r *RegistryService) AllStudents() []*models.Student {
	out := make([]*models.Student, len(r.students))
	copy(out, r.students)
	return out
}

// Courses returns known courses in insertion order.
func (r *RegistryService) Courses() []models.Course {
	out := make([]models.Course, len(r.courses))
	copy(out, r.courses)
	return out
}

func (r *RegistryService) findStudent(id string) *models.Student {
	for _, s := range r.students {
		if strings.EqualFold(s.StudentID, id) {
			return s
		}
	}
	return nil
}
