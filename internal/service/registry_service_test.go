package service

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/sma-gradebook/internal/models"
	appErrors "github.com/noah-isme/sma-gradebook/pkg/errors"
)

func newTestRegistry() (*RegistryService, *observer.ObservedLogs, *MetricsService) {
	core, logs := observer.New(zapcore.InfoLevel)
	metrics := NewMetricsService()
	return NewRegistryService(validator.New(), zap.New(core), zap.NewNop(), metrics), logs, metrics
}

func TestRegistryRegisterStudent(t *testing.T) {
	reg, logs, metrics := newTestRegistry()

	ada, err := reg.RegisterStudent(models.NewStudent("Ada", "Lovelace", "001", nil, nil))
	require.NoError(t, err)
	assert.Equal(t, "001", ada.StudentID)
	assert.Len(t, reg.SessionStudents(), 1)
	assert.Len(t, reg.AllStudents(), 1)
	assert.Equal(t, "Student added: ID 001", logs.All()[0].Message)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.registered.WithLabelValues(EntityStudent)))
}

func TestRegistryRejectsDuplicateStudentID(t *testing.T) {
	reg, logs, metrics := newTestRegistry()

	_, err := reg.RegisterStudent(models.NewStudent("Ada", "Lovelace", "cs-001", nil, nil))
	require.NoError(t, err)

	_, err = reg.RegisterStudent(models.NewStudent("Adele", "Goldberg", "CS-001", nil, nil))
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrDuplicateID))

	require.Len(t, reg.SessionStudents(), 1)
	assert.Equal(t, "Ada", reg.SessionStudents()[0].FirstName)
	assert.Len(t, reg.AllStudents(), 1)
	assert.Equal(t, 1, logs.FilterMessage("Duplicate student rejected: ID CS-001").Len())
	assert.Equal(t, uint64(1), metrics.Snapshot().DuplicatesRejected)
}

func TestRegistryLeadingZerosAreSignificant(t *testing.T) {
	reg, _, _ := newTestRegistry()

	_, err := reg.RegisterStudent(models.NewStudent("Ada", "Lovelace", "001", nil, nil))
	require.NoError(t, err)
	_, err = reg.RegisterStudent(models.NewStudent("Alan", "Turing", "1", nil, nil))
	require.NoError(t, err)
	assert.Len(t, reg.SessionStudents(), 2)
}

func TestRegistryRestoredStudentsOnlyBlockDuplicates(t *testing.T) {
	reg, _, metrics := newTestRegistry()

	restored := reg.Restore(
		models.NewStudent("Old", "Timer", "100", nil, nil),
		models.NewStudent("Old", "Timer", "100", nil, nil),
		models.NewStudent("Another", "One", "101", nil, nil),
	)
	assert.Equal(t, 2, restored)
	assert.Empty(t, reg.SessionStudents())
	assert.Len(t, reg.AllStudents(), 2)
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.restored))

	_, err := reg.RegisterStudent(models.NewStudent("New", "Comer", "100", nil, nil))
	assert.True(t, errors.Is(err, appErrors.ErrDuplicateID))

	fresh, err := reg.RegisterStudent(models.NewStudent("New", "Comer", "102", nil, nil))
	require.NoError(t, err)
	session := reg.SessionStudents()
	require.Len(t, session, 1)
	assert.Same(t, fresh, session[0])
}

func TestRegistrySessionOrder(t *testing.T) {
	reg, _, _ := newTestRegistry()
	for _, id := range []string{"3", "1", "2"} {
		_, err := reg.RegisterStudent(models.NewStudent("S", id, id, nil, nil))
		require.NoError(t, err)
	}
	ids := []string{}
	for _, s := range reg.SessionStudents() {
		ids = append(ids, s.StudentID)
	}
	assert.Equal(t, []string{"3", "1", "2"}, ids)
}

func TestRegistryRejectsCaseInsensitiveCourseCode(t *testing.T) {
	reg, _, _ := newTestRegistry()

	_, err := reg.RegisterCourse(models.Course{Name: "Algorithms", Code: "ALG101", Credits: 5})
	require.NoError(t, err)

	_, err = reg.RegisterCourse(models.Course{Name: "Other Algorithms", Code: "alg101", Credits: 3})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrDuplicateCode))

	courses := reg.Courses()
	require.Len(t, courses, 1)
	assert.Equal(t, "Algorithms", courses[0].Name)
	assert.True(t, reg.CourseExists("Alg101"))
	assert.False(t, reg.CourseExists("ALG102"))
}

func TestRegistryValidatesCandidates(t *testing.T) {
	reg, _, _ := newTestRegistry()

	_, err := reg.RegisterStudent(nil)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	_, err = reg.RegisterStudent(models.NewStudent("Ada", "Lovelace", "", nil, nil))
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	_, err = reg.RegisterCourse(models.Course{Name: "Broken", Code: "BRK", Credits: -1})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Empty(t, reg.Courses())
	assert.Empty(t, reg.AllStudents())
}
