package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "laptopstats/internal/errors"
)

// EnvPrefix is the prefix of every environment variable read by Load,
// e.g. LAPTOP_INPUT_PATH or LAPTOP_LOGGING_LEVEL.
const EnvPrefix = "LAPTOP"

// Config represents the complete application configuration.
//
// Defaults live in Default rather than in `default:` tags so that values
// read from a YAML file are not overwritten by tag defaults when envconfig
// runs afterwards. Precedence: defaults < file < environment < CLI flags.
// Fields use split_words instead of an envconfig name so envconfig never
// falls back to an unprefixed variable such as PATH.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" split_words:"true"`
	Input     InputConfig     `yaml:"input" split_words:"true"`
	Output    OutputConfig    `yaml:"output" split_words:"true"`
	Charts    ChartsConfig    `yaml:"charts" split_words:"true"`
	Export    ExportConfig    `yaml:"export" split_words:"true"`
	Telemetry TelemetryConfig `yaml:"telemetry" split_words:"true"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" split_words:"true" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" split_words:"true" validate:"oneof=json text"`
	Output   string `yaml:"output" split_words:"true" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" split_words:"true" validate:"required_unless=Output console"`
}

// InputConfig describes where the laptop dataset is read from
type InputConfig struct {
	Path      string `yaml:"path" split_words:"true" validate:"required"`
	Delimiter string `yaml:"delimiter" split_words:"true" validate:"len=1"`
	// Sheet selects the worksheet of an .xlsx input; empty means the first sheet.
	Sheet string `yaml:"sheet" split_words:"true"`
}

// OutputConfig contains the directory every artifact of a run is written to
type OutputConfig struct {
	Dir string `yaml:"dir" split_words:"true" validate:"required"`
	// Open hands each rendered chart to the platform image viewer.
	Open bool `yaml:"open" split_words:"true"`
}

// ChartsConfig contains chart rendering configuration
type ChartsConfig struct {
	Enabled     bool   `yaml:"enabled" split_words:"true"`
	Format      string `yaml:"format" split_words:"true" validate:"oneof=png svg pdf jpg jpeg tif tiff eps"`
	Bins        int    `yaml:"bins" split_words:"true" validate:"min=1,max=500"`
	Concurrency int    `yaml:"concurrency" split_words:"true" validate:"min=1,max=16"`
}

// ExportConfig toggles the optional exports of the cleaned dataset and summary
type ExportConfig struct {
	CSV        bool   `yaml:"csv" split_words:"true"`
	CSVFile    string `yaml:"csv_file" split_words:"true" validate:"required_if=CSV true"`
	WriteBOM   bool   `yaml:"write_bom" split_words:"true"`
	Excel      bool   `yaml:"excel" split_words:"true"`
	ExcelFile  string `yaml:"excel_file" split_words:"true" validate:"required_if=Excel true"`
	Sqlite     bool   `yaml:"sqlite" split_words:"true"`
	SqliteFile string `yaml:"sqlite_file" split_words:"true" validate:"required_if=Sqlite true"`
}

// TelemetryConfig contains tracing and metrics configuration
type TelemetryConfig struct {
	Environment   string `yaml:"environment" split_words:"true"`
	TraceExporter string `yaml:"trace_exporter" split_words:"true" validate:"oneof=stdout file none"`
	TraceFile     string `yaml:"trace_file" split_words:"true" validate:"required_if=TraceExporter file"`
	// MetricsFile, when set, receives the run's metrics in the Prometheus
	// text exposition format.
	MetricsFile string `yaml:"metrics_file" split_words:"true"`
}

// Load loads configuration from .env, an auto-discovered config file and
// environment variables.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom is like Load but reads the YAML file at configFile. An empty
// configFile falls back to the well-known locations.
func LoadFrom(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, apperrors.NewConfigError("failed to load .env file", err)
	}

	cfg := Default()

	explicit := configFile != ""
	if !explicit {
		configFile = getConfigFilePath()
	}
	if configFile != "" {
		err := loadFromFile(configFile, cfg)
		if err != nil && (explicit || !errors.Is(err, fs.ErrNotExist)) {
			return nil, apperrors.NewConfigError(fmt.Sprintf("failed to load config from %s", configFile), err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file at filePath onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks the struct tags of every section
func (c *Config) Validate() error {
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Charts.Format = strings.ToLower(strings.TrimPrefix(c.Charts.Format, "."))

	v := validator.New()
	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return apperrors.NewConfigError("config validation failed: "+strings.Join(fields, "; "), err)
		}
		return apperrors.NewConfigError("config validation failed", err)
	}
	return nil
}

// Delimiter returns the input field separator as a rune
func (c *Config) Delimiter() rune {
	r := []rune(c.Input.Delimiter)
	if len(r) == 0 {
		return ','
	}
	return r[0]
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/analyzer.log",
		},
		Input: InputConfig{
			Path:      "data.csv",
			Delimiter: ",",
		},
		Output: OutputConfig{
			Dir: "output",
		},
		Charts: ChartsConfig{
			Enabled:     true,
			Format:      "png",
			Bins:        30,
			Concurrency: 1,
		},
		Export: ExportConfig{
			CSVFile:    "laptops_clean.csv",
			ExcelFile:  "laptop_report.xlsx",
			SqliteFile: "laptops.db",
		},
		Telemetry: TelemetryConfig{
			Environment:   "development",
			TraceExporter: "none",
			TraceFile:     "trace.json",
		},
	}
}
