package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsServiceSnapshot(t *testing.T) {
	m := NewMetricsService()
	m.RecordRegistered(EntityStudent)
	m.RecordRegistered(EntityStudent)
	m.RecordRegistered(EntityCourse)
	m.RecordDuplicate(EntityCourse)
	m.RecordDuplicate(EntityStudent)
	m.RecordCancelled("student")
	m.RecordGrade(true)
	m.RecordGrade(false)

	assert.Equal(t, SessionMetrics{
		StudentsRegistered: 2,
		CoursesRegistered:  1,
		DuplicatesRejected: 2,
		GradesRecorded:     1,
		GradesSkipped:      1,
		EntriesCancelled:   1,
	}, m.Snapshot())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.duplicates.WithLabelValues(EntityCourse)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cancelled.WithLabelValues("student")))
}

func TestMetricsServiceSnapshotEmpty(t *testing.T) {
	assert.Equal(t, SessionMetrics{}, NewMetricsService().Snapshot())
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	assert.NotPanics(t, func() {
		m.RecordRegistered(EntityStudent)
		m.RecordGrade(true)
		m.ObserveGPA(3.2)
		m.RecordReport(nil)
		m.SetRestored(3)
	})
	assert.Equal(t, SessionMetrics{}, m.Snapshot())
	assert.NoError(t, m.WriteTextfile("/nonexistent/metrics.prom"))
}

func TestMetricsServiceWriteTextfile(t *testing.T) {
	m := NewMetricsService()
	m.SetRestored(4)
	m.ObserveGPA(3.75)
	m.RecordReport(nil)

	path := filepath.Join(t.TempDir(), "gradebook.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "gradebook_restored_students 4")
	assert.Contains(t, string(data), `gradebook_reports_total{result="saved"} 1`)
	assert.Contains(t, string(data), "gradebook_session_gpa_count 1")

	assert.NoError(t, m.WriteTextfile(""))
}
