package service

import (
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-gradebook/internal/models"
	appErrors "github.com/noah-isme/sma-gradebook/pkg/errors"
	"github.com/noah-isme/sma-gradebook/pkg/export"
)

// Histogram thresholds, inclusive lower bounds.
const (
	thresholdHigh = 3.50
	thresholdGood = 3.00
	thresholdMid  = 2.00
)

const (
	reportTimeLayout = "2006-01-02 15:04:05"
	exportTimeLayout = "20060102_150405"
	sectionRule      = "=========================================="
)

type reportStorage interface {
	Append(filename string, data []byte) (string, error)
	Save(filename string, data []byte) (string, error)
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
	Extension() string
}

// ReportConfig locates the results file and toggles the ranking exports.
type ReportConfig struct {
	ResultsFile  string
	ExportsDir   string
	CSVEnabled   bool
	PDFEnabled   bool
	CSVDelimiter string
	CSVBOM       bool
}

// RankedStudent is one ranking row.
type RankedStudent struct {
	Rank    int
	Student *models.Student
	GPA     float64
}

// ReportStats holds the class analytics block.
type ReportStats struct {
	Total   int
	Average float64
	Highest float64
	Lowest  float64
}

// Histogram counts students per GPA bucket.
type Histogram struct {
	High int
	Good int
	Mid  int
	Fail int
}

// Report is the immutable result of Build.
type Report struct {
	SessionID   string
	GeneratedAt time.Time
	Department  *models.Department
	Courses     []models.Course
	Rows        []RankedStudent
	Stats       ReportStats
	Histogram   Histogram
}

// PersistResult lists the files a report was written to.
type PersistResult struct {
	ResultsFile string
	Exports     []string
}

// ReportService turns the session's students into the ranking report.
type ReportService struct {
	storage   reportStorage
	renderers []datasetRenderer
	cfg       ReportConfig
	audit     *zap.Logger
	logger    *zap.Logger
	metrics   *MetricsService
}

// NewReportService constructs ReportService. Exporters are selected from cfg.
func NewReportService(storage reportStorage, cfg ReportConfig, audit, logger *zap.Logger, metrics *MetricsService) *ReportService {
	if audit == nil {
		audit = zap.NewNop()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultsFile == "" {
		cfg.ResultsFile = "results.txt"
	}
	if cfg.ExportsDir == "" {
		cfg.ExportsDir = "exports"
	}
	var renderers []datasetRenderer
	if cfg.CSVEnabled {
		var opts []export.CSVOption
		if r, _ := utf8.DecodeRuneInString(cfg.CSVDelimiter); cfg.CSVDelimiter != "" {
			opts = append(opts, export.WithDelimiter(r))
		}
		if cfg.CSVBOM {
			opts = append(opts, export.WithBOM())
		}
		renderers = append(renderers, export.NewCSVExporter(opts...))
	}
	if cfg.PDFEnabled {
		renderers = append(renderers, export.NewPDFExporter())
	}
	return &ReportService{
		storage:   storage,
		renderers: renderers,
		cfg:       cfg,
		audit:     audit,
		logger:    logger,
		metrics:   metrics,
	}
}

// Build ranks students by descending GPA, ties keeping entry order, and
// computes the class statistics. An empty student list yields ErrNoData.
func (s *ReportService) Build(sessionID string, dept *models.Department, courses []models.Course, students []*models.Student, now time.Time) (*Report, error) {
	if len(students) == 0 {
		return nil, appErrors.ErrNoData
	}

	rows := make([]RankedStudent, len(students))
	for i, student := range students {
		rows[i] = RankedStudent{Student: student, GPA: student.CalculateGPA()}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].GPA > rows[j].GPA })

	stats := ReportStats{Total: len(rows), Highest: rows[0].GPA, Lowest: rows[0].GPA}
	var hist Histogram
	total := 0.0
	for i := range rows {
		rows[i].Rank = i + 1
		gpa := rows[i].GPA
		total += gpa
		if gpa > stats.Highest {
			stats.Highest = gpa
		}
		if gpa < stats.Lowest {
			stats.Lowest = gpa
		}
		switch {
		case gpa >= thresholdHigh:
			hist.High++
		case gpa >= thresholdGood:
			hist.Good++
		case gpa >= thresholdMid:
			hist.Mid++
		default:
			hist.Fail++
		}
	}
	stats.Average = total / float64(len(rows))

	return &Report{
		SessionID:   sessionID,
		GeneratedAt: now,
		Department:  dept,
		Courses:     append([]models.Course(nil), courses...),
		Rows:        rows,
		Stats:       stats,
		Histogram:   hist,
	}, nil
}

// Render produces the block appended to the results file.
func (s *ReportService) Render(report *Report) string {
	var b strings.Builder

	b.WriteString(sectionRule + "\n")
	fmt.Fprintf(&b, "REPORT GENERATED: %s\n", report.GeneratedAt.Format(reportTimeLayout))
	if report.SessionID != "" {
		fmt.Fprintf(&b, "SESSION         : %s\n", report.SessionID)
	}
	b.WriteString("\n")

	writeSection(&b, "DEPARTMENT INFORMATION")
	if report.Department != nil {
		fmt.Fprintf(&b, "Name        : %s\n", report.Department.Name)
		fmt.Fprintf(&b, "Web         : %s\n", report.Department.WebPage)
		fmt.Fprintf(&b, "Established : %s\n", report.Department.FormattedEstablishedAt())
	} else {
		b.WriteString("No department information available.\n")
	}
	b.WriteString("\n")

	writeSection(&b, "COURSE LIST")
	if len(report.Courses) == 0 {
		b.WriteString("No courses registered.\n")
	}
	for _, c := range report.Courses {
		fmt.Fprintf(&b, "- %s (%s) [%d ECTS]\n", c.Name, c.Code, c.Credits)
	}
	b.WriteString("\n")

	writeSection(&b, "CLASS STATISTICS")
	b.WriteString(RenderStats(report))
	b.WriteString("\n")
	b.WriteString(RenderHistogram(report))
	b.WriteString("\n")

	writeSection(&b, "STUDENT RANKINGS")
	for _, row := range report.Rows {
		b.WriteString(RankingLine(row))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

// RenderConsole produces the end-of-run summary printed to the user.
func (s *ReportService) RenderConsole(report *Report) string {
	var b strings.Builder
	b.WriteString("\n" + RenderStats(report) + "\n")
	b.WriteString(RenderHistogram(report))
	b.WriteString(strings.Repeat("-", 50) + "\n")
	for _, row := range report.Rows {
		fmt.Fprintf(&b, "%d. %s - ID: %s - GPA: %s (Age: %d)\n",
			row.Rank, row.Student.FullName(), row.Student.StudentID, formatGPA(row.GPA), row.Student.Age(report.GeneratedAt))
	}
	return b.String()
}

// RenderStats renders the class analytics block.
func RenderStats(report *Report) string {
	return fmt.Sprintf("CLASS ANALYTICS REPORT:\n- Total Students: %d\n- Class Average : %s\n- Highest GPA   : %s\n- Lowest GPA    : %s\n",
		report.Stats.Total, formatGPA(report.Stats.Average), formatGPA(report.Stats.Highest), formatGPA(report.Stats.Lowest))
}

// RenderHistogram renders one star per student in each bucket.
func RenderHistogram(report *Report) string {
	h := report.Histogram
	var b strings.Builder
	b.WriteString("=== GPA DISTRIBUTION (HISTOGRAM) ===\n")
	fmt.Fprintf(&b, "3.50+ [High] : %s\n", strings.Repeat("*", h.High))
	fmt.Fprintf(&b, "3.00+ [Good] : %s\n", strings.Repeat("*", h.Good))
	fmt.Fprintf(&b, "2.00+ [Mid]  : %s\n", strings.Repeat("*", h.Mid))
	fmt.Fprintf(&b, "<2.00 [Fail] : %s\n", strings.Repeat("*", h.Fail))
	return b.String()
}

// RankingLine renders a row in the format the history loader parses back.
func RankingLine(row RankedStudent) string {
	return fmt.Sprintf("%d. %s - ID: %s - Birth: %s - GPA: %s",
		row.Rank, row.Student.FullName(), row.Student.StudentID, row.Student.FormattedBirthDate(), formatGPA(row.GPA))
}

// Persist appends the rendered report to the results file and writes the
// enabled exports. Export failures are logged and do not fail the call.
func (s *ReportService) Persist(report *Report) (*PersistResult, error) {
	for _, row := range report.Rows {
		s.metrics.ObserveGPA(row.GPA)
	}

	written, err := s.storage.Append(s.cfg.ResultsFile, []byte(s.Render(report)))
	s.metrics.RecordReport(err)
	if err != nil {
		s.logger.Error("failed to append report", zap.String("file", s.cfg.ResultsFile), zap.Error(err))
		s.audit.Info("Error writing file: " + err.Error())
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, "save report")
	}
	s.audit.Info("Full report saved successfully to " + s.cfg.ResultsFile)

	result := &PersistResult{ResultsFile: written}
	if len(s.renderers) == 0 {
		return result, nil
	}
	dataset := s.rankingDataset(report)
	for _, renderer := range s.renderers {
		name := s.exportFilename(report, renderer.Extension())
		data, err := renderer.Render(dataset)
		if err != nil {
			s.logger.Warn("failed to render export", zap.String("format", renderer.Extension()), zap.Error(err))
			continue
		}
		saved, err := s.storage.Save(name, data)
		if err != nil {
			s.logger.Warn("failed to save export", zap.String("file", name), zap.Error(err))
			s.audit.Info("Error writing file: " + err.Error())
			continue
		}
		s.logger.Info("export saved", zap.String("file", saved))
		result.Exports = append(result.Exports, saved)
	}
	return result, nil
}

func (s *ReportService) rankingDataset(report *Report) export.Dataset {
	title := "Student Rankings"
	notes := []string{"Generated: " + report.GeneratedAt.Format(reportTimeLayout)}
	if report.Department != nil {
		title = report.Department.Name + " " + title
		notes = append(notes, "Department: "+report.Department.String())
	}
	notes = append(notes,
		"Class Average: "+formatGPA(report.Stats.Average),
		"Total Students: "+strconv.Itoa(report.Stats.Total))

	headers := []string{"Rank", "Name", "Student ID", "Birth Date", "GPA"}
	rows := make([]map[string]string, 0, len(report.Rows))
	for _, row := range report.Rows {
		rows = append(rows, map[string]string{
			"Rank":       strconv.Itoa(row.Rank),
			"Name":       row.Student.FullName(),
			"Student ID": row.Student.StudentID,
			"Birth Date": row.Student.FormattedBirthDate(),
			"GPA":        formatGPA(row.GPA),
		})
	}
	return export.Dataset{Title: title, Notes: notes, Headers: headers, Rows: rows}
}

func (s *ReportService) exportFilename(report *Report, ext string) string {
	name := "ranking_" + report.GeneratedAt.Format(exportTimeLayout)
	if report.SessionID != "" {
		name += "_" + shortID(report.SessionID)
	}
	return path.Join(s.cfg.ExportsDir, name+"."+ext)
}

func writeSection(b *strings.Builder, title string) {
	pad := (len(sectionRule) - len(title)) / 2
	if pad < 0 {
		pad = 0
	}
	b.WriteString(sectionRule + "\n")
	b.WriteString(strings.Repeat(" ", pad) + title + "\n")
	b.WriteString(sectionRule + "\n")
}

// formatGPA always uses a dot decimal separator and two places.
func formatGPA(gpa float64) string {
	return strconv.FormatFloat(gpa, 'f', 2, 64)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
