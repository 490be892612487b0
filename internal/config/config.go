// Package config provides centralized configuration management for the application.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrMissingConfig is returned when required settings are not provided.
var ErrMissingConfig = errors.New("missing required configuration")

const (
	// DefaultTrackerURL is the Pivotal Tracker origin used when TRACKER_URL is unset.
	DefaultTrackerURL = "https://www.pivotaltracker.com"
	// DefaultTimeout bounds each tracker request.
	DefaultTimeout = 30 * time.Second
	// DefaultConcurrency is the number of stories enriched in parallel.
	DefaultConcurrency = 4
)

// Config holds all configuration parameters for the application.
type Config struct {
	Tracker TrackerConfig
	Log     LogConfig
}

// TrackerConfig holds Pivotal Tracker specific configuration.
type TrackerConfig struct {
	URL         string
	Token       string
	ProjectID   int64
	Timeout     time.Duration
	Concurrency int
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string
	Format string
}

// Options controls where LoadConfig looks for settings.
type Options struct {
	// EnvFile is an optional dotenv file read before the environment.
	// Values in the environment take precedence. A missing file is ignored.
	EnvFile string
}

// LoadConfig initializes and loads configuration from a .env file in the
// working directory and the environment.
func LoadConfig() (*Config, error) {
	return Load(Options{EnvFile: ".env"})
}

// Load reads configuration using opts and validates it.
func Load(opts Options) (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("tracker.url", DefaultTrackerURL)
	v.SetDefault("tracker.timeout", DefaultTimeout)
	v.SetDefault("tracker.concurrency", DefaultConcurrency)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// Map specific environment variables
	bindings := map[string]string{
		"tracker.token":       "PIVOTAL_TRACKER_TOKEN",
		"tracker.project_id":  "PROJECT_ID",
		"tracker.url":         "TRACKER_URL",
		"tracker.timeout":     "TRACKER_TIMEOUT",
		"tracker.concurrency": "TRACKER_CONCURRENCY",
		"log.level":           "LOG_LEVEL",
		"log.format":          "LOG_FORMAT",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if opts.EnvFile != "" {
		if err := readEnvFile(v, opts.EnvFile, bindings); err != nil {
			return nil, err
		}
	}

	config := &Config{
		Tracker: TrackerConfig{
			URL:         strings.TrimRight(v.GetString("tracker.url"), "/"),
			Token:       v.GetString("tracker.token"),
			ProjectID:   v.GetInt64("tracker.project_id"),
			Timeout:     v.GetDuration("tracker.timeout"),
			Concurrency: v.GetInt("tracker.concurrency"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(v.GetString("log.level")),
			Format: strings.ToLower(v.GetString("log.format")),
		},
	}

	if err := ValidateTrackerConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// readEnvFile loads a dotenv file into a separate viper instance and uses
// its values as defaults, so the real environment still wins.
func readEnvFile(v *viper.Viper, path string, bindings map[string]string) error {
	file := viper.New()
	file.SetConfigFile(path)
	file.SetConfigType("env")

	if err := file.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	for key, env := range bindings {
		if file.IsSet(env) {
			v.SetDefault(key, file.Get(env))
		}
	}
	return nil
}

// ValidateTrackerConfig ensures that all required tracker settings are provided.
func ValidateTrackerConfig(config *Config) error {
	var missingVars []string

	if config.Tracker.Token == "" {
		missingVars = append(missingVars, "PIVOTAL_TRACKER_TOKEN")
	}
	if config.Tracker.ProjectID <= 0 {
		missingVars = append(missingVars, "PROJECT_ID")
	}
	if config.Tracker.URL == "" {
		missingVars = append(missingVars, "TRACKER_URL")
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("%w: %v", ErrMissingConfig, missingVars)
	}

	if config.Tracker.Timeout <= 0 {
		config.Tracker.Timeout = DefaultTimeout
	}
	if config.Tracker.Concurrency <= 0 {
		config.Tracker.Concurrency = DefaultConcurrency
	}

	return nil
}
