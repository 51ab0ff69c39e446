package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, ".", cfg.Files.DataDir)
	assert.Equal(t, "results.txt", cfg.Files.ResultsFile)
	assert.Equal(t, "app.log", cfg.Files.AuditLogFile)
	assert.Equal(t, "exports", cfg.Exports.Dir)
	assert.Equal(t, ",", cfg.Exports.CSVDelimiter)
	assert.False(t, cfg.Exports.CSVBOM)
	assert.False(t, cfg.Exports.CSVEnabled)
	assert.False(t, cfg.Exports.PDFEnabled)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Empty(t, cfg.Metrics.TextfilePath)
}

func TestLoadFromEnvironment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DATA_DIR", "/var/lib/gradebook")
	t.Setenv("RESULTS_FILE", "grades.txt")
	t.Setenv("ENABLE_PDF_EXPORT", "true")
	t.Setenv("EXPORT_CSV_DELIMITER", ";")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("METRICS_TEXTFILE", "/tmp/gradebook.prom")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/gradebook", cfg.Files.DataDir)
	assert.Equal(t, "grades.txt", cfg.Files.ResultsFile)
	assert.True(t, cfg.Exports.PDFEnabled)
	assert.Equal(t, ";", cfg.Exports.CSVDelimiter)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/tmp/gradebook.prom", cfg.Metrics.TextfilePath)
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
