package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = ".paretolearn"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for paretolearn settings.
const envPrefix = "PARETOLEARN"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// LoadConfig loads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise, the config file is searched in CWD and $HOME.
// Missing config file is not an error; defaults are used.
func LoadConfig(configPath string) (*Config, error) {
	return load(viper.New(), configPath)
}

// LoadWith is LoadConfig on a caller-owned viper instance, so that command
// flags bound to it take precedence over file and environment values.
func LoadWith(viperCfg *viper.Viper, configPath string) (*Config, error) {
	return load(viperCfg, configPath)
}

func load(viperCfg *viper.Viper, configPath string) (*Config, error) {
	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("geometry.precision", DefaultPrecision)

	viperCfg.SetDefault("learner.epsilon", DefaultEpsilon)
	viperCfg.SetDefault("learner.delta", DefaultDelta)
	viperCfg.SetDefault("learner.max_steps", DefaultMaxSteps)
	viperCfg.SetDefault("learner.opt_level", DefaultOptLevel)
	viperCfg.SetDefault("learner.parallel", DefaultParallel)
	viperCfg.SetDefault("learner.workers", DefaultWorkers)
	viperCfg.SetDefault("learner.simplify", DefaultSimplify)
	viperCfg.SetDefault("learner.logging", DefaultLogging)
	viperCfg.SetDefault("learner.log_dir", DefaultLogDir)
	viperCfg.SetDefault("learner.query_cache", DefaultQueryCache)

	viperCfg.SetDefault("mining.p0", DefaultMineP0)
	viperCfg.SetDefault("mining.alpha", DefaultMineAlpha)
	viperCfg.SetDefault("mining.num_cells", DefaultMineNumCells)
	viperCfg.SetDefault("mining.success_ratio", DefaultMineSuccessRatio)
	viperCfg.SetDefault("mining.adaptive", DefaultMineAdaptive)
	viperCfg.SetDefault("mining.seed", DefaultMineSeed)

	viperCfg.SetDefault("output.compression", DefaultCompression)

	viperCfg.SetDefault("observability.log_level", DefaultLogLevel)
	viperCfg.SetDefault("observability.log_json", DefaultLogJSON)
	viperCfg.SetDefault("observability.otlp_endpoint", DefaultOTLPEndpoint)
	viperCfg.SetDefault("observability.otlp_insecure", DefaultOTLPInsecure)
	viperCfg.SetDefault("observability.metrics_addr", DefaultMetricsAddr)
	viperCfg.SetDefault("observability.sample_ratio", DefaultSampleRatio)
}
