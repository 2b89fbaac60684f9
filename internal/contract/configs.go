package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/huangsam/coverspot/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit  = 25
	MaxResultLimit      = 1000
	DefaultSegmentLimit = 10
	MaxSegmentLimit     = 100
	DefaultPrecision    = 1
	MaxPrecision        = 3
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateFormat is the date representation used for --as-of and report headers.
var DateFormat = time.DateOnly

// Config holds the runtime configuration for a report.
// This struct remains the "final, validated" config.
type Config struct {
	InputPath string
	Sheet     string
	AsOf      time.Time

	Filter       schema.FilterState
	SegmentLimit int
	ResultLimit  int
	Rank         int

	Workers    int
	Precision  int
	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	UseEmojis bool // Enable emojis in output headers
	UseColors bool // Enable colored labels in table output
}

// ProfileConfig holds profiling configuration.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	InputPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	Input            string `mapstructure:"input"`
	Sheet            string `mapstructure:"sheet"`
	AsOf             string `mapstructure:"as-of"`
	OutputFile       string `mapstructure:"output-file"`
	Limit            int    `mapstructure:"limit"`
	Workers          int    `mapstructure:"workers"`
	Precision        int    `mapstructure:"precision"`
	Output           string `mapstructure:"output"`
	Width            int    `mapstructure:"width"`
	CacheBackend     string `mapstructure:"cache-backend"`
	CacheDBConnect   string `mapstructure:"cache-db-connect"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`
	Emoji            string `mapstructure:"emoji"`
	Color            string `mapstructure:"color"`

	// --- Filter state ---
	Metric       string `mapstructure:"metric"`
	Dimension    string `mapstructure:"dimension"`
	Department   string `mapstructure:"department"`
	Team         string `mapstructure:"team"`
	Unit         string `mapstructure:"unit"`
	LegalEntity  string `mapstructure:"legal-entity"`
	Location     string `mapstructure:"location"`
	Lead         string `mapstructure:"lead"`
	Available    string `mapstructure:"available"`
	SegmentLimit int    `mapstructure:"segment-limit"`

	// --- Fields from rankedCmd.Flags() ---
	Rank int `mapstructure:"rank"`
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processAsOf(cfg, input); err != nil {
		return err
	}
	if err := processFilterState(cfg, input); err != nil {
		return err
	}
	return resolveInputPath(cfg, input)
}

// ProcessServerConfig validates the inputs of the MCP server.
// The input file is optional there because every tool call may name its own.
func ProcessServerConfig(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processAsOf(cfg, input); err != nil {
		return err
	}
	if err := processFilterState(cfg, input); err != nil {
		return err
	}
	if input.InputPathStr == "" && input.Input == "" {
		return nil
	}
	return resolveInputPath(cfg, input)
}

// ProcessProfilingConfig enables profiling when a file prefix is given.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ValidateBackendConfigs validates cache and history backend configurations.
// Commands that only touch the stores call it without the full validation pass.
func ValidateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	// --- History Backend Validation ---
	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(input.HistoryBackend))
	if cfg.HistoryBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if err := ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return err
	}

	// Validate that cache and history use different SQLite files
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.HistoryBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		historyDBPath := cfg.HistoryDBConnect
		if historyDBPath == "" {
			historyDBPath = GetHistoryDBFilePath()
		}
		if cacheDBPath == historyDBPath {
			return fmt.Errorf("cache and history storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}
	return nil
}

// validateSimpleInputs processes and validates all output and limit fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.Sheet = strings.TrimSpace(input.Sheet)
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width

	// Parse emoji flag
	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	// Parse color flag
	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Limit Validation ---
	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	if input.SegmentLimit <= 0 || input.SegmentLimit > MaxSegmentLimit {
		return fmt.Errorf("segment-limit must be greater than 0 and cannot exceed %d (received %d)", MaxSegmentLimit, input.SegmentLimit)
	}
	cfg.SegmentLimit = input.SegmentLimit

	if input.Rank < 0 {
		return fmt.Errorf("rank cannot be negative (received %d)", input.Rank)
	}
	cfg.Rank = input.Rank

	// --- 2. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 3. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 1 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", cfg.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	// --- 4. Backend Validation ---
	return ValidateBackendConfigs(cfg, input)
}

// processAsOf sets the evaluation date, defaulting to today.
func processAsOf(cfg *Config, input *ConfigRawInput) error {
	if strings.TrimSpace(input.AsOf) == "" {
		cfg.AsOf = schema.DateOf(time.Now())
		return nil
	}
	t, err := time.Parse(DateFormat, strings.TrimSpace(input.AsOf))
	if err != nil {
		return fmt.Errorf("invalid as-of date '%s'. expected YYYY-MM-DD", input.AsOf)
	}
	cfg.AsOf = t
	return nil
}

// processFilterState builds the filter state. Empty selections mean All.
func processFilterState(cfg *Config, input *ConfigRawInput) error {
	fs := schema.DefaultFilterState()

	if input.Metric != "" {
		metric, err := schema.ParseMetricType(input.Metric)
		if err != nil {
			return err
		}
		fs.MetricType = metric
	}
	if input.Dimension != "" {
		dim, err := schema.ParseSegmentDimension(input.Dimension)
		if err != nil {
			return err
		}
		fs.SegmentDimension = dim
	}

	fs.Department = selectionOrAll(input.Department)
	fs.Team = selectionOrAll(input.Team)
	fs.Unit = selectionOrAll(input.Unit)
	fs.LegalEntity = selectionOrAll(input.LegalEntity)
	fs.Location = selectionOrAll(input.Location)
	fs.Lead = selectionOrAll(input.Lead)

	available, err := ParseAvailabilitySelection(input.Available)
	if err != nil {
		return err
	}
	fs.Availability = available

	cfg.Filter = fs
	return fs.Validate()
}

// ParseAvailabilitySelection normalizes an availability filter to All, Yes or No.
func ParseAvailabilitySelection(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, schema.AllValue) {
		return schema.AllValue, nil
	}
	b, err := ParseBoolString(s)
	if err != nil {
		return "", fmt.Errorf("invalid availability '%s'. must be All, Yes, No", s)
	}
	if b {
		return string(schema.AvailableYes), nil
	}
	return string(schema.AvailableNo), nil
}

func selectionOrAll(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return schema.AllValue
	}
	return s
}

// resolveInputPath picks the positional argument over --input and checks the file exists.
func resolveInputPath(cfg *Config, input *ConfigRawInput) error {
	path := input.InputPathStr
	if path == "" {
		path = input.Input
	}
	if path == "" {
		return fmt.Errorf("an input file is required (positional argument or --input)")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return fmt.Errorf("cannot access input file %q: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("input path %q is a directory", path)
	}
	cfg.InputPath = absPath
	return nil
}
