package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/noah-isme/sma-gradebook/pkg/config"
)

// AuditTimeLayout is the timestamp layout of every audit line.
const AuditTimeLayout = "2006-01-02 15:04:05"

// New builds the diagnostic logger. Output goes to stderr so it never mixes with prompts.
func New(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Env == config.EnvProduction {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Log.Format {
	case "json":
		zapCfg.Encoding = "json"
	default:
		zapCfg.Encoding = "console"
	}

	if cfg.Log.Level != "" {
		if err := zapCfg.Level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		}
	}

	zapCfg.OutputPaths = []string{"stderr"}
	zapCfg.ErrorOutputPaths = []string{"stderr"}
	zapCfg.EncoderConfig.TimeKey = "timestamp"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return zapCfg.Build()
}

// NewAudit builds the audit trail logger. Each entry becomes one
// "[yyyy-MM-dd HH:mm:ss] message" line appended to path; write failures are
// reported on errOut and otherwise dropped.
func NewAudit(path string, errOut zapcore.WriteSyncer, opts ...zap.Option) *zap.Logger {
	if errOut == nil {
		errOut = zapcore.Lock(os.Stderr)
	}
	encCfg := zapcore.EncoderConfig{
		TimeKey:          "ts",
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		ConsoleSeparator: " ",
		EncodeTime: func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString("[" + t.Format(AuditTimeLayout) + "]")
		},
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(&appendFile{path: path}), zapcore.InfoLevel)
	opts = append([]zap.Option{zap.ErrorOutput(errOut)}, opts...)
	return zap.New(core, opts...)
}

// appendFile opens the target for every write so a missing or locked file
// only loses the current line.
type appendFile struct {
	path string
}

func (f *appendFile) Write(p []byte) (int, error) {
	if dir := filepath.Dir(f.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("prepare audit directory: %w", err)
		}
	}
	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return 0, fmt.Errorf("open audit log: %w", err)
	}
	defer file.Close() //nolint:errcheck
	return file.Write(p)
}

func (f *appendFile) Sync() error {
	return nil
}
