package config

import (
	"errors"
	"strings"
	"time"

	"go.uber.org/multierr"
)

// Config is the top-level configuration of xrbtree.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Tree    TreeConfig    `mapstructure:"tree"`
	Stress  StressConfig  `mapstructure:"stress"`
}

type LogConfig struct {
	Level   string `mapstructure:"level"`
	Encoder string `mapstructure:"encoder"`
	Writer  string `mapstructure:"writer"`
}

// MetricsConfig selects the otel exporter. Addr is only served by
// the prometheus exporter.
type MetricsConfig struct {
	Exporter string        `mapstructure:"exporter"`
	Addr     string        `mapstructure:"addr"`
	Interval time.Duration `mapstructure:"interval"`
}

// TreeConfig holds the options of every tree built by the commands.
type TreeConfig struct {
	Descending       bool `mapstructure:"descending"`
	RemoveBorrowPred bool `mapstructure:"remove_borrow_pred"`
	Stats            bool `mapstructure:"stats"`
}

type StressConfig struct {
	Sessions   int    `mapstructure:"sessions"`
	Ops        int    `mapstructure:"ops"`
	KeySpace   int    `mapstructure:"key_space"`
	Workers    int    `mapstructure:"workers"`
	Seed       uint64 `mapstructure:"seed"`
	CheckEvery int    `mapstructure:"check_every"`
}

const (
	DefaultLogLevel   = "info"
	DefaultLogEncoder = "plaintext"
	DefaultLogWriter  = "stderr"

	DefaultMetricsExporter = "none"
	DefaultMetricsAddr     = "127.0.0.1:9464"
	DefaultMetricsInterval = 10 * time.Second

	DefaultTreeDescending       = false
	DefaultTreeRemoveBorrowPred = false
	DefaultTreeStats            = false

	DefaultStressSessions   = 16
	DefaultStressOps        = 1000
	DefaultStressKeySpace   = 512
	DefaultStressWorkers    = 0 // GOMAXPROCS
	DefaultStressSeed       = 0 // random
	DefaultStressCheckEvery = 50
)

// Sentinel errors for configuration validation.
var (
	ErrInvalidLogLevel        = errors.New("log.level must be one of debug, info, warn, error")
	ErrInvalidLogEncoder      = errors.New("log.encoder must be json or plaintext")
	ErrInvalidLogWriter       = errors.New("log.writer must be stdout or stderr")
	ErrInvalidMetricsExporter = errors.New("metrics.exporter must be none, console or prometheus")
	ErrInvalidMetricsAddr     = errors.New("metrics.addr must not be empty for the prometheus exporter")
	ErrInvalidMetricsInterval = errors.New("metrics.interval must be positive")
	ErrInvalidStressSessions  = errors.New("stress.sessions must be positive")
	ErrInvalidStressOps       = errors.New("stress.ops must be positive")
	ErrInvalidStressKeySpace  = errors.New("stress.key_space must be positive")
	ErrInvalidStressWorkers   = errors.New("stress.workers must be non-negative")
	ErrInvalidStressCheck     = errors.New("stress.check_every must be positive")
)

// Validate checks Config invariants and returns all the violations.
func (c *Config) Validate() error {
	return multierr.Combine(
		c.validateLog(),
		c.validateMetrics(),
		c.Stress.Validate(),
	)
}

func (c *Config) validateLog() (err error) {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		err = multierr.Append(err, ErrInvalidLogLevel)
	}
	switch strings.ToLower(c.Log.Encoder) {
	case "json", "plaintext":
	default:
		err = multierr.Append(err, ErrInvalidLogEncoder)
	}
	switch strings.ToLower(c.Log.Writer) {
	case "stdout", "stderr":
	default:
		err = multierr.Append(err, ErrInvalidLogWriter)
	}
	return err
}

func (c *Config) validateMetrics() (err error) {
	switch exporter := strings.ToLower(c.Metrics.Exporter); exporter {
	case "none", "console":
	case "prometheus":
		if len(strings.TrimSpace(c.Metrics.Addr)) == 0 {
			err = multierr.Append(err, ErrInvalidMetricsAddr)
		}
	default:
		err = multierr.Append(err, ErrInvalidMetricsExporter)
	}
	if c.Metrics.Interval <= 0 {
		err = multierr.Append(err, ErrInvalidMetricsInterval)
	}
	return err
}

// Validate is shared by the config loader and the stress command flags.
func (c StressConfig) Validate() (err error) {
	if c.Sessions <= 0 {
		err = multierr.Append(err, ErrInvalidStressSessions)
	}
	if c.Ops <= 0 {
		err = multierr.Append(err, ErrInvalidStressOps)
	}
	if c.KeySpace <= 0 {
		err = multierr.Append(err, ErrInvalidStressKeySpace)
	}
	if c.Workers < 0 {
		err = multierr.Append(err, ErrInvalidStressWorkers)
	}
	if c.CheckEvery <= 0 {
		err = multierr.Append(err, ErrInvalidStressCheck)
	}
	return err
}
