package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env string

	Files   FilesConfig
	Log     LogConfig
	Exports ExportsConfig
	Metrics MetricsConfig
}

// FilesConfig locates the flat files the record keeper appends to. Relative
// names resolve against DataDir.
type FilesConfig struct {
	DataDir      string
	ResultsFile  string
	AuditLogFile string
}

type LogConfig struct {
	Level  string
	Format string
}

// ExportsConfig toggles the optional ranking exports written next to the results file.
type ExportsConfig struct {
	CSVEnabled   bool
	PDFEnabled   bool
	Dir          string
	CSVDelimiter string
	CSVBOM       bool
}

// MetricsConfig points at an optional Prometheus textfile dump of session counters.
type MetricsConfig struct {
	TextfilePath string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}
	cfg.Env = v.GetString("ENV")

	cfg.Files = FilesConfig{
		DataDir:      v.GetString("DATA_DIR"),
		ResultsFile:  v.GetString("RESULTS_FILE"),
		AuditLogFile: v.GetString("AUDIT_LOG_FILE"),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Exports = ExportsConfig{
		CSVEnabled:   v.GetBool("ENABLE_CSV_EXPORT"),
		PDFEnabled:   v.GetBool("ENABLE_PDF_EXPORT"),
		Dir:          v.GetString("EXPORTS_DIR"),
		CSVDelimiter: v.GetString("EXPORT_CSV_DELIMITER"),
		CSVBOM:       v.GetBool("EXPORT_CSV_BOM"),
	}

	cfg.Metrics = MetricsConfig{
		TextfilePath: v.GetString("METRICS_TEXTFILE"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)

	v.SetDefault("DATA_DIR", ".")
	v.SetDefault("RESULTS_FILE", "results.txt")
	v.SetDefault("AUDIT_LOG_FILE", "app.log")

	v.SetDefault("LOG_LEVEL", "warn")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("ENABLE_CSV_EXPORT", false)
	v.SetDefault("ENABLE_PDF_EXPORT", false)
	v.SetDefault("EXPORTS_DIR", "exports")
	v.SetDefault("EXPORT_CSV_DELIMITER", ",")
	v.SetDefault("EXPORT_CSV_BOM", false)

	v.SetDefault("METRICS_TEXTFILE", "")
}
