package repository

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/sma-gradebook/internal/models"
)

// HistoricalCourse carries a restored student's prior GPA as a single transcript entry.
var HistoricalCourse = models.Course{Name: "Historical Record", Code: "PREV", Credits: 1}

// rankingLine matches "1. Ada Lovelace - ID: 001 - Birth: 10.12.1815 - GPA: 4.00".
var rankingLine = regexp.MustCompile(`^\s*\d+\.\s+(.+?)\s+-\s+ID:\s+(\S+)\s+-\s+Birth:\s+(.+?)\s+-\s+GPA:\s+([0-9]+(?:[.,][0-9]+)?)\s*$`)

type fileOpener interface {
	Open(filename string) (*os.File, error)
}

// HistoryRepository restores students ranked in earlier results files.
type HistoryRepository struct {
	files    fileOpener
	filename string
}

// NewHistoryRepository constructs a HistoryRepository over the results file.
func NewHistoryRepository(files fileOpener, filename string) *HistoryRepository {
	return &HistoryRepository{files: files, filename: filename}
}

// Load parses every ranking line in the results file. A missing file yields no students.
func (r *HistoryRepository) Load(ctx context.Context) ([]*models.Student, error) {
	file, err := r.files.Open(r.filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close() //nolint:errcheck

	var students []*models.Student
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		student, ok := ParseRankingLine(scanner.Text())
		if ok {
			students = append(students, student)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", r.filename, err)
	}
	return students, nil
}

// ParseRankingLine restores one student from a ranking line.
func ParseRankingLine(line string) (*models.Student, bool) {
	m := rankingLine.FindStringSubmatch(strings.TrimRight(line, "\r"))
	if m == nil {
		return nil, false
	}
	gpa, err := strconv.ParseFloat(strings.Replace(m[4], ",", ".", 1), 64)
	if err != nil {
		return nil, false
	}
	first, last, _ := strings.Cut(m[1], " ")

	var birth *time.Time
	if d, err := time.Parse(models.DateLayout, strings.TrimSpace(m[3])); err == nil {
		birth = &d
	}

	student := models.NewStudent(first, last, m[2], birth, nil)
	student.AddGrade(HistoricalCourse, gpa)
	return student, true
}
