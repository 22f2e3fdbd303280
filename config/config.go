package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config is read from defaults, then an optional YAML or TOML file named by
// COMMONS_CONFIG, then individual environment variables.
type Config struct {
	HTTPAddr         string        `yaml:"http_addr" toml:"http_addr"`
	RedisAddr        string        `yaml:"redis_addr" toml:"redis_addr"`
	ResultTTL        time.Duration `yaml:"result_ttl" toml:"result_ttl"`
	Workers          int           `yaml:"workers" toml:"workers"`
	QueueSize        int           `yaml:"queue_size" toml:"queue_size"`
	WindowSize       int           `yaml:"window_size" toml:"window_size"`
	AnomalyThreshold float64       `yaml:"anomaly_threshold" toml:"anomaly_threshold"`
	LogLevel         string        `yaml:"log_level" toml:"log_level"`
	LogBuffer        int           `yaml:"log_buffer" toml:"log_buffer"`
}

func Default() Config {
	return Config{
		HTTPAddr:         ":8080",
		RedisAddr:        "localhost:6379",
		ResultTTL:        5 * time.Minute,
		QueueSize:        10000,
		WindowSize:       50,
		AnomalyThreshold: 2.0,
		LogLevel:         "info",
		LogBuffer:        500,
	}
}

func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("COMMONS_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return cfg, err
		}
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	case ".toml":
		err = toml.Unmarshal(data, c)
	default:
		return fmt.Errorf("config %s: unsupported format %q", path, ext)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("HTTP_ADDR"); v != "" {
		c.HTTPAddr = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.RedisAddr = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"ANALYTICS_WORKERS", &c.Workers},
		{"QUEUE_SIZE", &c.QueueSize},
		{"WINDOW_SIZE", &c.WindowSize},
		{"LOG_BUFFER", &c.LogBuffer},
	}
	for _, e := range ints {
		if v := getenv(e.name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", e.name, err)
			}
			*e.dst = n
		}
	}

	if v := getenv("ANOMALY_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("ANOMALY_THRESHOLD: %w", err)
		}
		c.AnomalyThreshold = f
	}
	if v := getenv("RESULT_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("RESULT_TTL: %w", err)
		}
		c.ResultTTL = d
	}
	return nil
}

func (c Config) Validate() error {
	var errs []error
	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("http_addr is required"))
	}
	if c.RedisAddr == "" {
		errs = append(errs, errors.New("redis_addr is required"))
	}
	if c.WindowSize <= 0 {
		errs = append(errs, fmt.Errorf("window_size must be positive, got %d", c.WindowSize))
	}
	if c.AnomalyThreshold <= 0 {
		errs = append(errs, fmt.Errorf("anomaly_threshold must be positive, got %g", c.AnomalyThreshold))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	if c.QueueSize < 0 {
		errs = append(errs, fmt.Errorf("queue_size must not be negative, got %d", c.QueueSize))
	}
	if c.LogBuffer <= 0 {
		errs = append(errs, fmt.Errorf("log_buffer must be positive, got %d", c.LogBuffer))
	}
	if c.ResultTTL < 0 {
		errs = append(errs, fmt.Errorf("result_ttl must not be negative, got %s", c.ResultTTL))
	}
	return errors.Join(errs...)
}
