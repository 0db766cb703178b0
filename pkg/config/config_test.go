package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/paretolearn/pkg/config"
	"github.com/Sumatoshi-tech/paretolearn/pkg/learn"
	"github.com/Sumatoshi-tech/paretolearn/pkg/observability"
	"github.com/Sumatoshi-tech/paretolearn/pkg/resultset"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".paretolearn.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfig_EmptyFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, config.DefaultPrecision, cfg.Geometry.Precision)
	assert.InDelta(t, config.DefaultEpsilon, cfg.Learner.Epsilon, 0)
	assert.Equal(t, config.DefaultMaxSteps, cfg.Learner.MaxSteps)
	assert.Equal(t, config.DefaultOptLevel, cfg.Learner.OptLevel)
	assert.True(t, cfg.Learner.Simplify)
	assert.Equal(t, config.DefaultMineNumCells, cfg.Mining.NumCells)
	assert.Equal(t, "deflate", cfg.Output.Compression)
	assert.Equal(t, "info", cfg.Observability.LogLevel)
}

func TestLoadConfig_FromFile(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
geometry:
  precision: 6
learner:
  epsilon: 0.001
  max_steps: 500
  opt_level: 1
  parallel: true
  workers: 4
mining:
  p0: 0.05
  num_cells: 16
  adaptive: true
  seed: 9
output:
  compression: lz4
observability:
  log_level: debug
  metrics_addr: ":9464"
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 6, cfg.Geometry.Precision)
	assert.InDelta(t, 0.001, cfg.Learner.Epsilon, 0)
	assert.Equal(t, 500, cfg.Learner.MaxSteps)

	opts := cfg.LearnOptions()
	assert.Equal(t, learn.OptShadow, opts.OptLevel)
	assert.True(t, opts.Parallel)
	assert.Equal(t, 4, opts.Workers)
	require.NoError(t, opts.Validate())

	mine := cfg.MineOptions()
	assert.Equal(t, learn.MineAdaptive, mine.OptLevel)
	assert.InDelta(t, 0.05, mine.P0, 0)
	assert.Equal(t, 16, mine.NumCells)
	assert.Equal(t, uint64(9), mine.Seed)
	require.NoError(t, mine.Validate())

	comp, err := resultset.ParseCompression(cfg.Output.Compression)
	require.NoError(t, err)
	assert.Equal(t, resultset.LZ4, comp)

	tel := cfg.Telemetry("1.2.3")
	assert.Equal(t, slog.LevelDebug, tel.LogLevel)
	assert.True(t, tel.Prometheus)
	assert.Equal(t, "1.2.3", tel.ServiceVersion)
	assert.Equal(t, observability.ModeCLI, tel.Mode)
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("PARETOLEARN_LEARNER_MAX_STEPS", "77")
	t.Setenv("PARETOLEARN_MINING_NUM_CELLS", "9")
	t.Setenv("PARETOLEARN_OBSERVABILITY_LOG_JSON", "true")

	cfg, err := config.LoadConfig(writeConfig(t, "learner:\n  max_steps: 5\n"))
	require.NoError(t, err)

	assert.Equal(t, 77, cfg.Learner.MaxSteps)
	assert.Equal(t, 9, cfg.Mining.NumCells)
	assert.True(t, cfg.Observability.LogJSON)
}

func TestLoadWith_FlagOverride(t *testing.T) {
	t.Parallel()

	v := viper.New()
	v.Set("learner.epsilon", 0.25)

	cfg, err := config.LoadWith(v, writeConfig(t, "learner:\n  epsilon: 0.5\n"))
	require.NoError(t, err)
	assert.InDelta(t, 0.25, cfg.Learner.Epsilon, 0)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"precision", "geometry:\n  precision: 40\n", config.ErrInvalidPrecision},
		{"epsilon", "learner:\n  epsilon: 0\n", config.ErrInvalidEpsilon},
		{"delta", "learner:\n  delta: 2\n", config.ErrInvalidDelta},
		{"max steps", "learner:\n  max_steps: -1\n", config.ErrInvalidMaxSteps},
		{"opt level", "learner:\n  opt_level: 4\n", config.ErrInvalidOptLevel},
		{"workers", "learner:\n  workers: -2\n", config.ErrInvalidWorkers},
		{"query cache", "learner:\n  query_cache: -1\n", config.ErrInvalidQueryCache},
		{"p0", "mining:\n  p0: 1\n", config.ErrInvalidProbability},
		{"alpha", "mining:\n  alpha: 0\n", config.ErrInvalidProbability},
		{"cells", "mining:\n  num_cells: 0\n", config.ErrInvalidNumCells},
		{"ratio", "mining:\n  success_ratio: 1.5\n", config.ErrInvalidSuccessRatio},
		{"compression", "output:\n  compression: brotli\n", resultset.ErrUnknownCompression},
		{"log level", "observability:\n  log_level: loud\n", config.ErrInvalidLogLevel},
		{"sample ratio", "observability:\n  sample_ratio: -0.1\n", config.ErrInvalidSampleRatio},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := config.LoadConfig(writeConfig(t, tt.content))
			require.ErrorIs(t, err, tt.want)
		})
	}
}
