package service

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/sma-gradebook/internal/models"
	"github.com/noah-isme/sma-gradebook/internal/repository"
	appErrors "github.com/noah-isme/sma-gradebook/pkg/errors"
	"github.com/noah-isme/sma-gradebook/pkg/storage"
)

type mockReportStorage struct {
	appended  map[string][]byte
	saved     map[string][]byte
	appendErr error
	saveErr   error
}

func newMockReportStorage() *mockReportStorage {
	return &mockReportStorage{appended: map[string][]byte{}, saved: map[string][]byte{}}
}

func (m *mockReportStorage) Append(filename string, data []byte) (string, error) {
	if m.appendErr != nil {
		return "", m.appendErr
	}
	m.appended[filename] = append(m.appended[filename], data...)
	return filename, nil
}

func (m *mockReportStorage) Save(filename string, data []byte) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	m.saved[filename] = data
	return filename, nil
}

var reportNow = time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC)

func gradedStudent(first, last, id string, birth *time.Time, grades ...float64) *models.Student {
	s := models.NewStudent(first, last, id, birth, nil)
	for i, g := range grades {
		s.AddGrade(models.Course{Name: "C", Code: string(rune('A' + i)), Credits: 1}, g)
	}
	return s
}

func TestReportServiceBuildRanksAndBuckets(t *testing.T) {
	svc := NewReportService(newMockReportStorage(), ReportConfig{}, nil, nil, nil)
	students := []*models.Student{
		gradedStudent("Low", "One", "1", nil, 1.0),
		gradedStudent("Mid", "Two", "2", nil, 2.5),
		gradedStudent("Tie", "First", "3", nil, 3.5),
		gradedStudent("Tie", "Second", "4", nil, 3.5),
		gradedStudent("Good", "Five", "5", nil, 3.0),
	}

	report, err := svc.Build("sess", nil, nil, students, reportNow)
	require.NoError(t, err)

	ids := make([]string, 0, len(report.Rows))
	for _, row := range report.Rows {
		ids = append(ids, row.Student.StudentID)
	}
	assert.Equal(t, []string{"3", "4", "5", "2", "1"}, ids)
	assert.Equal(t, 1, report.Rows[0].Rank)
	assert.Equal(t, 5, report.Rows[4].Rank)
	assert.Equal(t, Histogram{High: 2, Good: 1, Mid: 1, Fail: 1}, report.Histogram)
	assert.Equal(t, 5, report.Stats.Total)
	assert.InDelta(t, 2.7, report.Stats.Average, 1e-9)
	assert.Equal(t, 3.5, report.Stats.Highest)
	assert.Equal(t, 1.0, report.Stats.Lowest)
}

func TestReportServiceBuildEmpty(t *testing.T) {
	svc := NewReportService(newMockReportStorage(), ReportConfig{}, nil, nil, nil)
	report, err := svc.Build("sess", nil, nil, nil, reportNow)
	assert.Nil(t, report)
	assert.ErrorIs(t, err, appErrors.ErrNoData)
	assert.Equal(t, "No data available to report", err.Error())
}

func TestReportServiceRenderEndToEnd(t *testing.T) {
	svc := NewReportService(newMockReportStorage(), ReportConfig{}, nil, nil, nil)
	dept := models.NewDepartment("CS", "cs.edu", time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC))
	alg := models.Course{Name: "Algorithms", Code: "ALG101", Credits: 5}
	birth := time.Date(1995, 12, 10, 0, 0, 0, 0, time.UTC)
	ada := models.NewStudent("Ada", "Lovelace", "001", &birth, &dept)
	ada.AddGrade(alg, models.GradeAA.Points())

	report, err := svc.Build("abc", &dept, []models.Course{alg}, []*models.Student{ada}, reportNow)
	require.NoError(t, err)
	out := svc.Render(report)

	assert.Contains(t, out, "REPORT GENERATED: 2024-06-01 10:30:00")
	assert.Contains(t, out, "SESSION         : abc")
	assert.Contains(t, out, "Web         : cs.edu")
	assert.Contains(t, out, "Established : 01.01.1990")
	assert.Contains(t, out, "- Algorithms (ALG101) [5 ECTS]")
	assert.Contains(t, out, "- Class Average : 4.00")
	assert.Contains(t, out, "3.50+ [High] : *\n")
	assert.Contains(t, out, "1. Ada Lovelace - ID: 001 - Birth: 10.12.1995 - GPA: 4.00\n")

	console := svc.RenderConsole(report)
	assert.Contains(t, console, "1. Ada Lovelace - ID: 001 - GPA: 4.00 (Age: 28)")
}

func TestRankingLineWithoutBirthDate(t *testing.T) {
	row := RankedStudent{Rank: 2, Student: gradedStudent("Grace", "Hopper", "002", nil, 2.5), GPA: 2.5}
	assert.Equal(t, "2. Grace Hopper - ID: 002 - Birth: N/A - GPA: 2.50", RankingLine(row))
}

func TestRankingLineParsesBack(t *testing.T) {
	birth := time.Date(2001, 2, 3, 0, 0, 0, 0, time.UTC)
	student := gradedStudent("Alan", "Mathison Turing", "A-17", &birth, 3.0, 4.0)
	line := RankingLine(RankedStudent{Rank: 3, Student: student, GPA: student.CalculateGPA()})

	restored, ok := repository.ParseRankingLine(line)
	require.True(t, ok)
	assert.Equal(t, "Alan", restored.FirstName)
	assert.Equal(t, "Mathison Turing", restored.LastName)
	assert.Equal(t, "A-17", restored.StudentID)
	assert.Equal(t, "03.02.2001", restored.FormattedBirthDate())
	assert.Equal(t, 3.5, restored.CalculateGPA())
}

func TestReportServicePersistAppends(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	store := newMockReportStorage()
	store.appended["results.txt"] = []byte("previous run\n")
	metrics := NewMetricsService()
	svc := NewReportService(store, ReportConfig{ResultsFile: "results.txt"}, zap.New(core), nil, metrics)

	report, err := svc.Build("sess", nil, nil, []*models.Student{gradedStudent("Ada", "Lovelace", "001", nil, 4.0)}, reportNow)
	require.NoError(t, err)
	result, err := svc.Persist(report)
	require.NoError(t, err)

	assert.Equal(t, "results.txt", result.ResultsFile)
	assert.Empty(t, result.Exports)
	content := string(store.appended["results.txt"])
	assert.True(t, strings.HasPrefix(content, "previous run\n"))
	assert.Contains(t, content, "1. Ada Lovelace - ID: 001 - Birth: N/A - GPA: 4.00")
	assert.Equal(t, 1, logs.FilterMessage("Full report saved successfully to results.txt").Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.reports.WithLabelValues("saved")))
}

func TestReportServicePersistFailureIsTyped(t *testing.T) {
	store := newMockReportStorage()
	store.appendErr = errors.New("disk full")
	metrics := NewMetricsService()
	svc := NewReportService(store, ReportConfig{}, nil, nil, metrics)

	report, err := svc.Build("sess", nil, nil, []*models.Student{gradedStudent("A", "B", "1", nil, 3.0)}, reportNow)
	require.NoError(t, err)
	_, err = svc.Persist(report)
	assert.ErrorIs(t, err, appErrors.ErrPersistence)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.reports.WithLabelValues("failed")))
}

func TestReportServicePersistWritesExports(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	svc := NewReportService(store, ReportConfig{ResultsFile: "results.txt", ExportsDir: "exports", CSVEnabled: true, PDFEnabled: true}, nil, nil, nil)

	report, err := svc.Build("0123456789abcdef", nil, nil, []*models.Student{gradedStudent("Ada", "Lovelace", "001", nil, 4.0)}, reportNow)
	require.NoError(t, err)
	result, err := svc.Persist(report)
	require.NoError(t, err)

	require.Len(t, result.Exports, 2)
	assert.Equal(t, "exports/ranking_20240601_103000_01234567.csv", result.Exports[0])
	csvData, err := os.ReadFile(filepath.Join(dir, result.Exports[0]))
	require.NoError(t, err)
	assert.Equal(t, "Rank,Name,Student ID,Birth Date,GPA\n1,Ada Lovelace,001,N/A,4.00\n", string(csvData))

	pdfData, err := os.ReadFile(filepath.Join(dir, result.Exports[1]))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdfData), "%PDF"))
}

func TestReportServiceExportFailureIsNotFatal(t *testing.T) {
	store := newMockReportStorage()
	store.saveErr = errors.New("read-only")
	svc := NewReportService(store, ReportConfig{CSVEnabled: true}, nil, nil, nil)

	report, err := svc.Build("sess", nil, nil, []*models.Student{gradedStudent("A", "B", "1", nil, 3.0)}, reportNow)
	require.NoError(t, err)
	result, err := svc.Persist(report)
	require.NoError(t, err)
	assert.Empty(t, result.Exports)
	assert.NotEmpty(t, store.appended["results.txt"])
}
