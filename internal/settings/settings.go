// Package settings loads process settings from configs/config.yml and
// TEMPMON_* environment variables.
package settings

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "TEMPMON"

// Settings is the unmarshalled view of the config file.
type Settings struct {
	Port     string   `mapstructure:"port"`
	LogLevel string   `mapstructure:"log_level"`
	DB       DB       `mapstructure:"db"`
	Storage  Storage  `mapstructure:"storage"`
	Sampling Sampling `mapstructure:"sampling"`
	Cloud    Cloud    `mapstructure:"cloud"`
	Sensor   Sensor   `mapstructure:"sensor"`
}

type DB struct {
	Path string `mapstructure:"path"`
}

// Storage locates the durable store. An empty Dir means in-memory.
type Storage struct {
	Dir    string `mapstructure:"dir"`
	Commit string `mapstructure:"commit"`
}

type Sampling struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	BucketWidth  time.Duration `mapstructure:"bucket_width"`
	MinValid     float64       `mapstructure:"min_valid"`
	MaxValid     float64       `mapstructure:"max_valid"`
}

type Cloud struct {
	Timeout    time.Duration `mapstructure:"timeout"`
	Attempts   int           `mapstructure:"attempts"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
}

type Sensor struct {
	Kind       string  `mapstructure:"kind"`
	StartTemp  float64 `mapstructure:"start_temp"`
	FaultEvery int     `mapstructure:"fault_every"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("db.path", "tempmon.db")
	v.SetDefault("storage.dir", "data")
	v.SetDefault("storage.commit", "backup")
	v.SetDefault("sampling.poll_interval", "10s")
	v.SetDefault("sampling.bucket_width", "30m")
	v.SetDefault("sampling.min_valid", 0.0)
	v.SetDefault("sampling.max_valid", 100.0)
	v.SetDefault("cloud.timeout", "15s")
	v.SetDefault("cloud.attempts", 3)
	v.SetDefault("cloud.retry_delay", "10ms")
	v.SetDefault("sensor.kind", "simulated")
	v.SetDefault("sensor.start_temp", 20.0)
	v.SetDefault("sensor.fault_every", 0)
}

// Load reads config.yml from the given directories. A missing file is not
// an error: defaults and environment still apply.
func Load(paths ...string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if len(paths) > 0 {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Settings) validate() error {
	switch s.Storage.Commit {
	case "backup", "atomic":
	default:
		return fmt.Errorf("storage.commit must be backup or atomic, got %q", s.Storage.Commit)
	}
	if s.Sampling.PollInterval <= 0 {
		return errors.New("sampling.poll_interval must be positive")
	}
	if s.Sampling.MinValid >= s.Sampling.MaxValid {
		return errors.New("sampling.min_valid must be below sampling.max_valid")
	}
	switch s.Sensor.Kind {
	case "simulated":
	default:
		return fmt.Errorf("unsupported sensor.kind %q", s.Sensor.Kind)
	}
	return nil
}
