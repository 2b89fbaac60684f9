package contract

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/coverspot/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validInput returns raw input that passes validation for the given input file.
func validInput(path string) *ConfigRawInput {
	return &ConfigRawInput{
		InputPathStr:   path,
		Limit:          25,
		SegmentLimit:   10,
		Workers:        4,
		Precision:      1,
		Output:         "text",
		CacheBackend:   "none",
		HistoryBackend: "none",
		Emoji:          "no",
		Color:          "yes",
	}
}

func tempInput(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.csv")
	require.NoError(t, os.WriteFile(path, []byte("Full name\n"), 0o644))
	return path
}

func TestProcessAndValidate(t *testing.T) {
	path := tempInput(t)

	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError string
	}{
		{name: "valid minimal config", mutate: func(*ConfigRawInput) {}},
		{name: "input from flag", mutate: func(in *ConfigRawInput) { in.Input = in.InputPathStr; in.InputPathStr = "" }},
		{name: "missing input", mutate: func(in *ConfigRawInput) { in.InputPathStr = "" }, expectError: "an input file is required"},
		{name: "nonexistent input", mutate: func(in *ConfigRawInput) { in.InputPathStr = path + ".missing" }, expectError: "cannot access input file"},
		{name: "directory input", mutate: func(in *ConfigRawInput) { in.InputPathStr = filepath.Dir(path) }, expectError: "is a directory"},
		{name: "zero limit", mutate: func(in *ConfigRawInput) { in.Limit = 0 }, expectError: "limit must be greater than 0 and cannot exceed 1000 (received 0)"},
		{name: "segment limit too large", mutate: func(in *ConfigRawInput) { in.SegmentLimit = 101 }, expectError: "segment-limit must be greater than 0"},
		{name: "negative rank", mutate: func(in *ConfigRawInput) { in.Rank = -1 }, expectError: "rank cannot be negative"},
		{name: "zero workers", mutate: func(in *ConfigRawInput) { in.Workers = 0 }, expectError: "workers must be greater than 0"},
		{name: "precision too high", mutate: func(in *ConfigRawInput) { in.Precision = 4 }, expectError: "precision must be between 1 and 3"},
		{name: "invalid output", mutate: func(in *ConfigRawInput) { in.Output = "xml" }, expectError: "invalid output format 'xml'. must be text, csv, json, parquet"},
		{name: "parquet without file", mutate: func(in *ConfigRawInput) { in.Output = "parquet" }, expectError: "parquet output requires --output-file"},
		{name: "invalid emoji", mutate: func(in *ConfigRawInput) { in.Emoji = "sometimes" }, expectError: "invalid --emoji value"},
		{name: "invalid metric", mutate: func(in *ConfigRawInput) { in.Metric = "median" }, expectError: "invalid metric type 'median'"},
		{name: "invalid dimension", mutate: func(in *ConfigRawInput) { in.Dimension = "Region" }, expectError: "invalid segment dimension 'Region'"},
		{name: "invalid availability", mutate: func(in *ConfigRawInput) { in.Available = "maybe" }, expectError: "invalid availability 'maybe'"},
		{name: "invalid as-of", mutate: func(in *ConfigRawInput) { in.AsOf = "01/07/2024" }, expectError: "invalid as-of date"},
		{name: "invalid cache backend", mutate: func(in *ConfigRawInput) { in.CacheBackend = "redis" }, expectError: "invalid cache backend 'redis'"},
		{name: "invalid history backend", mutate: func(in *ConfigRawInput) { in.HistoryBackend = "mongo" }, expectError: "invalid history backend 'mongo'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput(path)
			tt.mutate(input)
			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)
			if tt.expectError != "" {
				assert.ErrorContains(t, err, tt.expectError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, path, cfg.InputPath)
		})
	}
}

func TestProcessAndValidateFilterState(t *testing.T) {
	input := validInput(tempInput(t))
	input.Metric = "absolute"
	input.Dimension = "legal_entity"
	input.Department = " Engineering "
	input.Lead = ""
	input.Available = "no"
	input.AsOf = "2024-07-01"

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, schema.AbsoluteMetric, cfg.Filter.MetricType)
	assert.Equal(t, schema.LegalEntityDimension, cfg.Filter.SegmentDimension)
	assert.Equal(t, "Engineering", cfg.Filter.Department)
	assert.Equal(t, schema.AllValue, cfg.Filter.Lead)
	assert.Equal(t, "No", cfg.Filter.Availability)
	assert.Equal(t, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), cfg.AsOf)
	assert.False(t, cfg.UseEmojis)
	assert.True(t, cfg.UseColors)
}

func TestProcessAndValidateDefaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, validInput(tempInput(t))))

	assert.Equal(t, schema.DefaultFilterState(), cfg.Filter)
	assert.Equal(t, schema.DateOf(time.Now()), cfg.AsOf)
	assert.Equal(t, schema.TextOut, cfg.Output)
}

func TestValidateBackendConfigs(t *testing.T) {
	tests := []struct {
		name        string
		input       *ConfigRawInput
		expectError bool
	}{
		{"sqlite defaults", &ConfigRawInput{CacheBackend: "sqlite", HistoryBackend: "sqlite"}, false},
		{"history disabled", &ConfigRawInput{CacheBackend: "sqlite"}, false},
		{"same sqlite file", &ConfigRawInput{CacheBackend: "sqlite", CacheDBConnect: "/tmp/x.db", HistoryBackend: "sqlite", HistoryDBConnect: "/tmp/x.db"}, true},
		{"mysql without dsn", &ConfigRawInput{CacheBackend: "mysql"}, true},
		{"mysql with dsn", &ConfigRawInput{CacheBackend: "mysql", CacheDBConnect: "u:p@tcp(localhost:3306)/coverspot"}, false},
		{"postgres missing dbname", &ConfigRawInput{CacheBackend: "none", HistoryBackend: "postgresql", HistoryDBConnect: "host=localhost"}, true},
		{"postgres valid", &ConfigRawInput{CacheBackend: "none", HistoryBackend: "postgresql", HistoryDBConnect: "host=localhost dbname=coverspot"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBackendConfigs(&Config{}, tt.input)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{ResultLimit: 5, Filter: schema.DefaultFilterState()}
	clone := cfg.Clone()
	clone.Filter = cfg.Filter.WithDimension(schema.TeamDimension)

	assert.Equal(t, schema.TeamDimension, clone.Filter.SegmentDimension)
	assert.Equal(t, schema.DepartmentDimension, cfg.Filter.SegmentDimension)
	assert.Equal(t, 5, clone.ResultLimit)
}

func TestParseAvailabilitySelection(t *testing.T) {
	tests := map[string]string{"": "All", "all": "All", "Yes": "Yes", "true": "Yes", "0": "No"}
	for in, expected := range tests {
		got, err := ParseAvailabilitySelection(in)
		require.NoError(t, err)
		assert.Equal(t, expected, got)
	}
}

func TestProcessServerConfig(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, ProcessServerConfig(cfg, validInput("")))
	assert.Empty(t, cfg.InputPath)
	assert.Equal(t, schema.DefaultFilterState(), cfg.Filter)

	path := tempInput(t)
	cfg = &Config{}
	require.NoError(t, ProcessServerConfig(cfg, validInput(path)))
	assert.Equal(t, path, cfg.InputPath)

	input := validInput("")
	input.Input = filepath.Join(t.TempDir(), "missing.csv")
	assert.Error(t, ProcessServerConfig(&Config{}, input))
}

func TestProcessProfilingConfig(t *testing.T) {
	profile := &ProfileConfig{}
	ProcessProfilingConfig(profile, "")
	assert.False(t, profile.Enabled)

	ProcessProfilingConfig(profile, "coverspot")
	assert.True(t, profile.Enabled)
	assert.Equal(t, "coverspot", profile.Prefix)
}
