package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-gradebook/internal/console"
	"github.com/noah-isme/sma-gradebook/internal/models"
	"github.com/noah-isme/sma-gradebook/internal/repository"
	"github.com/noah-isme/sma-gradebook/internal/service"
	"github.com/noah-isme/sma-gradebook/pkg/config"
	appErrors "github.com/noah-isme/sma-gradebook/pkg/errors"
	"github.com/noah-isme/sma-gradebook/pkg/storage"
)

type historyLoader interface {
	Load(ctx context.Context) ([]*models.Student, error)
}

// Options carries the collaborators of one interactive run.
type Options struct {
	In      io.Reader
	Out     io.Writer
	Config  *config.Config
	Files   *storage.LocalStorage
	Audit   *zap.Logger
	Logger  *zap.Logger
	Now     func() time.Time
	Metrics *service.MetricsService
}

// Session drives the fixed phase order of one run: department, students,
// courses, grades, report.
type Session struct {
	id          string
	prompter    *console.Prompter
	registry    *service.RegistryService
	grades      *service.GradeService
	reports     *service.ReportService
	history     historyLoader
	metrics     *service.MetricsService
	audit       *zap.Logger
	logger      *zap.Logger
	now         func() time.Time
	resultsPath string
	metricsPath string

	department *models.Department
}

// NewSession wires the services for one run.
func NewSession(opts Options) (*Session, error) {
	if opts.Config == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "config required")
	}
	if opts.In == nil || opts.Out == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "console input and output required")
	}
	files := opts.Files
	if files == nil {
		var err error
		files, err = storage.NewLocalStorage(opts.Config.Files.DataDir)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, "prepare data directory")
		}
	}
	if opts.Audit == nil {
		opts.Audit = zap.NewNop()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Metrics == nil {
		opts.Metrics = service.NewMetricsService()
	}

	id := uuid.NewString()
	validate := validator.New()
	prompter := console.NewPrompter(opts.In, opts.Out, console.NewRules(validate), opts.Now)
	cfg := opts.Config

	return &Session{
		id:       id,
		prompter: prompter,
		registry: service.NewRegistryService(validate, opts.Audit, opts.Logger, opts.Metrics),
		grades:   service.NewGradeService(prompter, opts.Audit, opts.Logger, opts.Metrics),
		reports: service.NewReportService(files, service.ReportConfig{
			ResultsFile:  cfg.Files.ResultsFile,
			ExportsDir:   cfg.Exports.Dir,
			CSVEnabled:   cfg.Exports.CSVEnabled,
			PDFEnabled:   cfg.Exports.PDFEnabled,
			CSVDelimiter: cfg.Exports.CSVDelimiter,
			CSVBOM:       cfg.Exports.CSVBOM,
		}, opts.Audit, opts.Logger, opts.Metrics),
		history:     repository.NewHistoryRepository(files, cfg.Files.ResultsFile),
		metrics:     opts.Metrics,
		audit:       opts.Audit,
		logger:      opts.Logger.With(zap.String("session_id", id)),
		now:         opts.Now,
		resultsPath: cfg.Files.ResultsFile,
		metricsPath: resolveMetricsPath(files, cfg.Metrics.TextfilePath),
	}, nil
}

// ID identifies the run in the report header and diagnostic logs.
func (s *Session) ID() string {
	return s.id
}

// Run executes every phase. Panics and unexpected errors are reported and
// returned; the termination audit line is written in every case.
func (s *Session) Run(ctx context.Context) (err error) {
	console.PrintBanner(s.prompter.Out())
	s.audit.Info("System Started.")
	s.logger.Info("session started")

	defer func() {
		if r := recover(); r != nil {
			err = appErrors.Wrap(fmt.Errorf("panic: %v", r), appErrors.ErrInternal.Code, "unexpected failure")
		}
		if err != nil {
			s.prompter.Println("\n>> CRITICAL SYSTEM ERROR: " + err.Error())
			s.audit.Info("CRITICAL ERROR: " + err.Error())
			s.logger.Error("session aborted", zap.String("code", appErrors.FromError(err).Code), zap.Error(err))
		}
		s.cleanup()
	}()

	s.restore(ctx)

	phases := []func(context.Context) error{
		s.departmentPhase,
		s.studentPhase,
		s.coursePhase,
		s.gradePhase,
		s.reportPhase,
	}
	for _, phase := range phases {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := phase(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) restore(ctx context.Context) {
	students, err := s.history.Load(ctx)
	if err != nil {
		s.logger.Warn("failed to load previous results", zap.Error(err))
		s.audit.Info("Error loading data: " + err.Error())
		return
	}
	if len(students) == 0 {
		return
	}
	restored := s.registry.Restore(students...)
	s.prompter.Printf(">> SYSTEM INFO: %d records restored from database.\n", restored)
}

func (s *Session) gradePhase(ctx context.Context) error {
	students := s.registry.SessionStudents()
	courses := s.registry.Courses()
	if len(students) == 0 || len(courses) == 0 {
		return nil
	}
	console.PrintSection(s.prompter.Out(), "GRADE ENTRY PHASE")
	s.prompter.Println("(Checking for missing grades...)")
	recorded, err := s.grades.Collect(ctx, students, courses)
	if err != nil {
		return err
	}
	s.logger.Debug("grade phase finished", zap.Int("recorded", recorded))
	return nil
}

func (s *Session) reportPhase(_ context.Context) error {
	report, err := s.reports.Build(s.id, s.department, s.registry.Courses(), s.registry.SessionStudents(), s.now())
	if errors.Is(err, appErrors.ErrNoData) {
		s.prompter.Println(">> " + err.Error() + ".")
		return nil
	}
	if err != nil {
		return err
	}

	s.prompter.Printf("%s", s.reports.RenderConsole(report))

	result, err := s.reports.Persist(report)
	if err != nil {
		s.prompter.Println(">> File Write Error: " + err.Error())
		return nil
	}
	s.prompter.Printf("\n>> Final results saved to '%s'.\n", s.resultsPath)
	for _, exported := range result.Exports {
		s.prompter.Printf(">> Export saved to '%s'.\n", exported)
	}
	return nil
}

// resolveMetricsPath resolves the textfile against the data directory like the
// results and audit files. Empty disables the dump.
func resolveMetricsPath(files *storage.LocalStorage, name string) string {
	if name == "" {
		return ""
	}
	return files.Path(name)
}

func (s *Session) cleanup() {
	if err := s.metrics.WriteTextfile(s.metricsPath); err != nil {
		s.logger.Warn("failed to write metrics", zap.String("path", s.metricsPath), zap.Error(err))
	}
	snap := s.metrics.Snapshot()
	s.logger.Info("session finished",
		zap.Uint64("students", snap.StudentsRegistered),
		zap.Uint64("courses", snap.CoursesRegistered),
		zap.Uint64("grades", snap.GradesRecorded),
		zap.Uint64("duplicates", snap.DuplicatesRejected))
	s.audit.Info("System Terminated.")
}
