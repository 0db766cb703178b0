// Package config loads the paretolearn settings from .paretolearn.yaml,
// PARETOLEARN_* environment variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Sumatoshi-tech/paretolearn/pkg/learn"
	"github.com/Sumatoshi-tech/paretolearn/pkg/observability"
	"github.com/Sumatoshi-tech/paretolearn/pkg/resultset"
)

// maxPrecision bounds geometry.precision to what a float64 can carry.
const maxPrecision = 17

// Config is the root configuration.
type Config struct {
	Geometry      GeometryConfig      `mapstructure:"geometry"`
	Learner       LearnerConfig       `mapstructure:"learner"`
	Mining        MiningConfig        `mapstructure:"mining"`
	Output        OutputConfig        `mapstructure:"output"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// GeometryConfig holds point arithmetic settings.
type GeometryConfig struct {
	Precision int `mapstructure:"precision"`
}

// LearnerConfig holds the learner options shared by every command.
type LearnerConfig struct {
	Epsilon  float64 `mapstructure:"epsilon"`
	Delta    float64 `mapstructure:"delta"`
	MaxSteps int     `mapstructure:"max_steps"`
	OptLevel int     `mapstructure:"opt_level"`
	Parallel bool    `mapstructure:"parallel"`
	Workers  int     `mapstructure:"workers"`
	Simplify bool    `mapstructure:"simplify"`
	Logging  bool    `mapstructure:"logging"`
	LogDir   string  `mapstructure:"log_dir"`

	// QueryCache is the number of oracle answers memoized per run; zero
	// disables the cache.
	QueryCache int `mapstructure:"query_cache"`
}

// MiningConfig holds the sampling settings of the mine command.
type MiningConfig struct {
	P0           float64 `mapstructure:"p0"`
	Alpha        float64 `mapstructure:"alpha"`
	NumCells     int     `mapstructure:"num_cells"`
	SuccessRatio float64 `mapstructure:"success_ratio"`
	Adaptive     bool    `mapstructure:"adaptive"`
	Seed         uint64  `mapstructure:"seed"`
}

// OutputConfig holds bundle writing settings.
type OutputConfig struct {
	Compression string `mapstructure:"compression"`
}

// ObservabilityConfig holds logging, tracing and metrics settings.
type ObservabilityConfig struct {
	LogLevel     string  `mapstructure:"log_level"`
	LogJSON      bool    `mapstructure:"log_json"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	MetricsAddr  string  `mapstructure:"metrics_addr"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

// Sentinel validation errors.
var (
	// ErrInvalidPrecision indicates geometry.precision is out of range.
	ErrInvalidPrecision = errors.New("geometry.precision must be at most 17")
	// ErrInvalidEpsilon indicates learner.epsilon is not positive.
	ErrInvalidEpsilon = errors.New("learner.epsilon must be positive")
	// ErrInvalidDelta indicates learner.delta is outside [0, 1].
	ErrInvalidDelta = errors.New("learner.delta must be between 0 and 1")
	// ErrInvalidMaxSteps indicates learner.max_steps is not positive.
	ErrInvalidMaxSteps = errors.New("learner.max_steps must be positive")
	// ErrInvalidOptLevel indicates learner.opt_level is outside 0..3.
	ErrInvalidOptLevel = errors.New("learner.opt_level must be between 0 and 3")
	// ErrInvalidWorkers indicates learner.workers is negative.
	ErrInvalidWorkers = errors.New("learner.workers must be non-negative")
	// ErrInvalidQueryCache indicates learner.query_cache is negative.
	ErrInvalidQueryCache = errors.New("learner.query_cache must be non-negative")
	// ErrInvalidProbability indicates mining.p0 or mining.alpha is outside (0, 1).
	ErrInvalidProbability = errors.New("mining.p0 and mining.alpha must be in (0, 1)")
	// ErrInvalidNumCells indicates mining.num_cells is not positive.
	ErrInvalidNumCells = errors.New("mining.num_cells must be positive")
	// ErrInvalidSuccessRatio indicates mining.success_ratio is outside [0, 1].
	ErrInvalidSuccessRatio = errors.New("mining.success_ratio must be between 0 and 1")
	// ErrInvalidLogLevel indicates an unknown observability.log_level.
	ErrInvalidLogLevel = errors.New("observability.log_level must be debug, info, warn or error")
	// ErrInvalidSampleRatio indicates observability.sample_ratio is outside [0, 1].
	ErrInvalidSampleRatio = errors.New("observability.sample_ratio must be between 0 and 1")
)

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	if c.Geometry.Precision > maxPrecision {
		return ErrInvalidPrecision
	}

	learnerErr := c.validateLearner()
	if learnerErr != nil {
		return learnerErr
	}

	miningErr := c.validateMining()
	if miningErr != nil {
		return miningErr
	}

	_, compErr := resultset.ParseCompression(c.Output.Compression)
	if compErr != nil {
		return compErr
	}

	return c.validateObservability()
}

func (c *Config) validateLearner() error {
	switch {
	case c.Learner.Epsilon <= 0:
		return ErrInvalidEpsilon
	case c.Learner.Delta < 0 || c.Learner.Delta > 1:
		return ErrInvalidDelta
	case c.Learner.MaxSteps <= 0:
		return ErrInvalidMaxSteps
	case c.Learner.OptLevel < learn.OptBaseline || c.Learner.OptLevel > learn.OptLattice:
		return ErrInvalidOptLevel
	case c.Learner.Workers < 0:
		return ErrInvalidWorkers
	case c.Learner.QueryCache < 0:
		return ErrInvalidQueryCache
	}

	return nil
}

func (c *Config) validateMining() error {
	m := c.Mining

	switch {
	case m.P0 <= 0 || m.P0 >= 1 || m.Alpha <= 0 || m.Alpha >= 1:
		return ErrInvalidProbability
	case m.NumCells <= 0:
		return ErrInvalidNumCells
	case m.SuccessRatio < 0 || m.SuccessRatio > 1:
		return ErrInvalidSuccessRatio
	}

	return nil
}

func (c *Config) validateObservability() error {
	_, ok := parseLevel(c.Observability.LogLevel)
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Observability.LogLevel)
	}

	if c.Observability.SampleRatio < 0 || c.Observability.SampleRatio > 1 {
		return ErrInvalidSampleRatio
	}

	return nil
}

// LearnOptions returns the learner options described by c.
func (c *Config) LearnOptions() learn.Options {
	opts := learn.DefaultOptions()
	opts.Epsilon = c.Learner.Epsilon
	opts.Delta = c.Learner.Delta
	opts.MaxSteps = c.Learner.MaxSteps
	opts.OptLevel = c.Learner.OptLevel
	opts.Parallel = c.Learner.Parallel
	opts.Workers = c.Learner.Workers
	opts.Simplify = c.Learner.Simplify
	opts.Logging = c.Learner.Logging
	opts.LogDir = c.Learner.LogDir

	return opts
}

// MineOptions returns the mining options described by c. The mining level
// comes from mining.adaptive rather than learner.opt_level.
func (c *Config) MineOptions() learn.MineOptions {
	opts := learn.DefaultMineOptions()
	opts.Options = c.LearnOptions()
	opts.OptLevel = learn.MineFixed
	opts.P0 = c.Mining.P0
	opts.Alpha = c.Mining.Alpha
	opts.NumCells = c.Mining.NumCells
	opts.SuccessRatio = c.Mining.SuccessRatio
	opts.Seed = c.Mining.Seed

	if c.Mining.Adaptive {
		opts.OptLevel = learn.MineAdaptive
	}

	return opts
}

// Telemetry returns the observability settings described by c.
func (c *Config) Telemetry(version string) observability.Config {
	cfg := observability.DefaultConfig()
	cfg.ServiceVersion = version
	cfg.Mode = observability.ModeCLI
	cfg.OTLPEndpoint = c.Observability.OTLPEndpoint
	cfg.OTLPInsecure = c.Observability.OTLPInsecure
	cfg.Prometheus = c.Observability.MetricsAddr != ""
	cfg.SampleRatio = c.Observability.SampleRatio
	cfg.LogJSON = c.Observability.LogJSON

	cfg.LogLevel, _ = parseLevel(c.Observability.LogLevel)

	return cfg
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
