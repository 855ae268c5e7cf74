package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "laptopstats/internal/errors"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "data.csv", cfg.Input.Path)
	assert.Equal(t, ",", cfg.Input.Delimiter)
	assert.Equal(t, "output", cfg.Output.Dir)
	assert.True(t, cfg.Charts.Enabled)
	assert.Equal(t, "png", cfg.Charts.Format)
	assert.Equal(t, 30, cfg.Charts.Bins)
	assert.Equal(t, 1, cfg.Charts.Concurrency)
	assert.Equal(t, "none", cfg.Telemetry.TraceExporter)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFrom_FileOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
input:
  path: laptops.csv
  delimiter: ";"
charts:
  bins: 40
  format: svg
export:
  excel: true
`)

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "laptops.csv", cfg.Input.Path)
	assert.Equal(t, ';', cfg.Delimiter())
	assert.Equal(t, 40, cfg.Charts.Bins)
	assert.Equal(t, "svg", cfg.Charts.Format)
	assert.True(t, cfg.Export.Excel)
	// untouched keys keep their defaults
	assert.Equal(t, "laptop_report.xlsx", cfg.Export.ExcelFile)
	assert.Equal(t, "output", cfg.Output.Dir)
	assert.Equal(t, 1, cfg.Charts.Concurrency)
}

func TestLoadFrom_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
input:
  path: from-file.csv
logging:
  level: warn
`)
	t.Setenv("LAPTOP_INPUT_PATH", "from-env.csv")
	t.Setenv("LAPTOP_CHARTS_CONCURRENCY", "4")
	t.Setenv("LAPTOP_EXPORT_SQLITE_FILE", "snapshot.db")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env.csv", cfg.Input.Path)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 4, cfg.Charts.Concurrency)
	assert.Equal(t, "snapshot.db", cfg.Export.SqliteFile)
}

func TestLoadFrom_IgnoresUnprefixedVariables(t *testing.T) {
	t.Setenv("DIR", "/should/not/be/used")
	t.Setenv("LEVEL", "error")

	cfg, err := LoadFrom(writeConfigFile(t, "{}"))
	require.NoError(t, err)

	assert.Equal(t, "output", cfg.Output.Dir)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFrom_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
		missing bool
	}{
		{
			name:    "explicit file missing",
			missing: true,
		},
		{
			name:    "malformed yaml",
			content: "input: [unterminated",
		},
		{
			name:    "invalid log level",
			content: "logging:\n  level: loud\n",
		},
		{
			name:    "zero bins",
			content: "charts:\n  bins: 0\n",
		},
		{
			name:    "multi character delimiter",
			content: "input:\n  delimiter: \"::\"\n",
		},
		{
			name:    "unknown chart format",
			content: "charts:\n  format: bmp\n",
		},
		{
			name:    "file trace exporter without file",
			content: "telemetry:\n  trace_exporter: file\n  trace_file: \"\"\n",
		},
		{
			name:    "bad env integer",
			content: "{}",
			env:     map[string]string{"LAPTOP_CHARTS_BINS": "many"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := filepath.Join(t.TempDir(), "absent.yaml")
			if !tt.missing {
				path = writeConfigFile(t, tt.content)
			}

			cfg, err := LoadFrom(path)
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Equal(t, apperrors.ErrTypeConfig, apperrors.TypeOf(err))
		})
	}
}

func TestValidate_NormalizesCase(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "DEBUG"
	cfg.Charts.Format = ".SVG"

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "svg", cfg.Charts.Format)
}

func TestDelimiter_DefaultsToComma(t *testing.T) {
	cfg := Default()
	cfg.Input.Delimiter = ""
	assert.Equal(t, ',', cfg.Delimiter())

	cfg.Input.Delimiter = "\t"
	assert.Equal(t, '\t', cfg.Delimiter())
}
