package service

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
)

// Entity labels used by registry metrics.
const (
	EntityStudent = "student"
	EntityCourse  = "course"
)

const (
	metricRegistered = "gradebook_entities_registered_total"
	metricDuplicates = "gradebook_duplicates_rejected_total"
	metricCancelled  = "gradebook_entries_cancelled_total"
	metricGrades     = "gradebook_grades_total"
)

// SessionMetrics summarises one run for the closing console notice.
type SessionMetrics struct {
	StudentsRegistered uint64
	CoursesRegistered  uint64
	DuplicatesRejected uint64
	GradesRecorded     uint64
	GradesSkipped      uint64
	EntriesCancelled   uint64
}

// MetricsService counts session activity in a private Prometheus registry.
type MetricsService struct {
	registry   *prometheus.Registry
	registered *prometheus.CounterVec
	duplicates *prometheus.CounterVec
	cancelled  *prometheus.CounterVec
	grades     *prometheus.CounterVec
	restored   prometheus.Gauge
	gpa        prometheus.Histogram
	reports    *prometheus.CounterVec
}

// NewMetricsService registers the session collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	registered := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: metricRegistered,
		Help: "Entities accepted into the registry this session",
	}, []string{"entity"})

	duplicates := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: metricDuplicates,
		Help: "Entries rejected because their identity already exists",
	}, []string{"entity"})

	cancelled := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: metricCancelled,
		Help: "Entry forms aborted with the cancel token",
	}, []string{"form"})

	grades := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: metricGrades,
		Help: "Grade prompts by result",
	}, []string{"result"})

	restored := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gradebook_restored_students",
		Help: "Students restored from previous results",
	})

	gpa := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "gradebook_session_gpa",
		Help:    "GPA of students reported this session",
		Buckets: []float64{2.0, 3.0, 3.5, 4.0},
	})

	reports := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gradebook_reports_total",
		Help: "Report persistence attempts by result",
	}, []string{"result"})

	registry.MustRegister(registered, duplicates, cancelled, grades, restored, gpa, reports)

	return &MetricsService{
		registry:   registry,
		registered: registered,
		duplicates: duplicates,
		cancelled:  cancelled,
		grades:     grades,
		restored:   restored,
		gpa:        gpa,
		reports:    reports,
	}
}

// RecordRegistered counts an accepted student or course.
func (m *MetricsService) RecordRegistered(entity string) {
	if m == nil {
		return
	}
	m.registered.WithLabelValues(entity).Inc()
}

// RecordDuplicate counts a rejected duplicate.
func (m *MetricsService) RecordDuplicate(entity string) {
	if m == nil {
		return
	}
	m.duplicates.WithLabelValues(entity).Inc()
}

// RecordCancelled counts an aborted form.
func (m *MetricsService) RecordCancelled(form string) {
	if m == nil {
		return
	}
	m.cancelled.WithLabelValues(form).Inc()
}

// RecordGrade counts a grade prompt that was answered (true) or skipped.
func (m *MetricsService) RecordGrade(recorded bool) {
	if m == nil {
		return
	}
	if recorded {
		m.grades.WithLabelValues("recorded").Inc()
		return
	}
	m.grades.WithLabelValues("skipped").Inc()
}

// SetRestored records how many historical students seeded the registry.
func (m *MetricsService) SetRestored(n int) {
	if m == nil {
		return
	}
	m.restored.Set(float64(n))
}

// ObserveGPA adds a reported student's GPA to the distribution.
func (m *MetricsService) ObserveGPA(gpa float64) {
	if m == nil {
		return
	}
	m.gpa.Observe(gpa)
}

// RecordReport counts a report persistence attempt.
func (m *MetricsService) RecordReport(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.reports.WithLabelValues("failed").Inc()
		return
	}
	m.reports.WithLabelValues("saved").Inc()
}

// WriteTextfile dumps the registry in the Prometheus text format.
func (m *MetricsService) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("prepare metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// Snapshot reads the session counters back from the registry.
func (m *MetricsService) Snapshot() SessionMetrics {
	if m == nil {
		return SessionMetrics{}
	}
	families, err := m.registry.Gather()
	if err != nil {
		return SessionMetrics{}
	}
	// name -> label value -> count; every counter here has one label
	counts := make(map[string]map[string]float64)
	total := func(name string) uint64 {
		sum := 0.0
		for _, v := range counts[name] {
			sum += v
		}
		return uint64(sum)
	}
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			counter := metric.GetCounter()
			if counter == nil || len(metric.GetLabel()) == 0 {
				continue
			}
			byLabel, ok := counts[family.GetName()]
			if !ok {
				byLabel = make(map[string]float64)
				counts[family.GetName()] = byLabel
			}
			byLabel[metric.GetLabel()[0].GetValue()] += counter.GetValue()
		}
	}

	registered := counts[metricRegistered]
	grades := counts[metricGrades]
	return SessionMetrics{
		StudentsRegistered: uint64(registered[EntityStudent]),
		CoursesRegistered:  uint64(registered[EntityCourse]),
		DuplicatesRejected: total(metricDuplicates),
		GradesRecorded:     uint64(grades["recorded"]),
		GradesSkipped:      uint64(grades["skipped"]),
		EntriesCancelled:   total(metricCancelled),
	}
}
