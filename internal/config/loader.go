package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = ".xrbtree"

const configType = "yaml"

// envPrefix is the environment variable prefix, XRBTREE_STRESS_OPS
// overrides stress.ops for example.
const envPrefix = "XRBTREE"

const envKeySeparator = "_"

// LoadConfig loads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise, the config file is searched in CWD and $HOME.
// Missing config file is not an error; defaults are used.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

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

		if home, err := os.UserHomeDir(); err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	if err := viperCfg.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := viperCfg.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("log.level", DefaultLogLevel)
	viperCfg.SetDefault("log.encoder", DefaultLogEncoder)
	viperCfg.SetDefault("log.writer", DefaultLogWriter)

	viperCfg.SetDefault("metrics.exporter", DefaultMetricsExporter)
	viperCfg.SetDefault("metrics.addr", DefaultMetricsAddr)
	viperCfg.SetDefault("metrics.interval", DefaultMetricsInterval)

	viperCfg.SetDefault("tree.descending", DefaultTreeDescending)
	viperCfg.SetDefault("tree.remove_borrow_pred", DefaultTreeRemoveBorrowPred)
	viperCfg.SetDefault("tree.stats", DefaultTreeStats)

	viperCfg.SetDefault("stress.sessions", DefaultStressSessions)
	viperCfg.SetDefault("stress.ops", DefaultStressOps)
	viperCfg.SetDefault("stress.key_space", DefaultStressKeySpace)
	viperCfg.SetDefault("stress.workers", DefaultStressWorkers)
	viperCfg.SetDefault("stress.seed", DefaultStressSeed)
	viperCfg.SetDefault("stress.check_every", DefaultStressCheckEvery)
}
