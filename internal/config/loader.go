package config

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultPath is read when no -config flag is given.
const DefaultPath = "image_watcher.yaml"

// ErrNoFiles is returned when the document lists no files to watch.
var ErrNoFiles = errors.New("no files section in config file")

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("IMAGE_WATCHER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Only runtime keys get defaults: job keys must stay absent unless written.
	v.SetDefault("poll_interval", time.Second)
	v.SetDefault("notify", false)
	v.SetDefault("jpeg_quality", 95)
	v.SetDefault("state_db", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("api_addr", "")
	return v
}

// Load reads the yaml config at path, applies defaults and validates it.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return decode(v)
}

// Parse parses a raw yaml config, applies defaults and validates.
func Parse(raw []byte) (*Config, error) {
	v := newViper()
	if err := v.ReadConfig(bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults normalizes decoded values. Absent runtime keys already hold
// viper defaults, so explicit zeros reach Validate unchanged.
func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "console"
	}
	for i := range cfg.Files {
		f := &cfg.Files[i]
		f.Path = strings.TrimSpace(f.Path)
		f.Output = strings.TrimSpace(f.Output)
	}
}

func Validate(cfg *Config) error {
	if len(cfg.Files) == 0 {
		return ErrNoFiles
	}
	if err := validateJobs(cfg.Jobs); err != nil {
		return err
	}
	for i, f := range cfg.Files {
		if f.Path == "" {
			return fmt.Errorf("files[%d]: path is required", i)
		}
		if err := validateJobs(f.Jobs); err != nil {
			return fmt.Errorf("files[%d]: %w", i, err)
		}
		if f.Output == "" {
			if _, err := DefaultOutput(f.Path); err != nil {
				return fmt.Errorf("files[%d]: %w", i, err)
			}
		}
	}

	if cfg.PollInterval <= 0 {
		return errors.New("poll_interval must be > 0")
	}
	if cfg.JPEGQuality < 1 || cfg.JPEGQuality > 100 {
		return errors.New("jpeg_quality must be between 1 and 100")
	}
	switch cfg.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("log_format %q invalid: use console or json", cfg.LogFormat)
	}
	if cfg.Mirror.Endpoint != "" && cfg.Mirror.Bucket == "" {
		return errors.New("mirror.bucket is required when mirror.endpoint is set")
	}
	if len(cfg.Events.Brokers) > 0 && cfg.Events.Topic == "" {
		return errors.New("events.topic is required when events.brokers is set")
	}
	return nil
}

func validateJobs(j Jobs) error {
	if j.Width != nil && *j.Width < 0 {
		return fmt.Errorf("width value is invalid: %d is negative", *j.Width)
	}
	if j.Height != nil && *j.Height < 0 {
		return fmt.Errorf("height value is invalid: %d is negative", *j.Height)
	}
	if j.Blur != nil && *j.Blur < 0 {
		return fmt.Errorf("blur value is invalid: %g is negative", *j.Blur)
	}
	if j.ResizeFilter != nil {
		if _, err := parseFilter(*j.ResizeFilter); err != nil {
			return err
		}
	}
	return nil
}
