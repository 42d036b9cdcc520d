package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port           string        `yaml:"port"`
	BackendURL     string        `yaml:"backend_url"` // Base URL of the schema/query API (e.g. http://localhost:8080)
	DBPath         string        `yaml:"db_path"`
	MaxUploadMB    int           `yaml:"max_upload_mb"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	SessionTTL     time.Duration `yaml:"session_ttl"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	LogLevel       string        `yaml:"log_level"`
	Dev            bool          `yaml:"dev"`
}

func Default() Config {
	return Config{
		Port:           "5173",
		BackendURL:     "http://localhost:8080",
		DBPath:         "./data/badger",
		MaxUploadMB:    10,
		RequestTimeout: 120 * time.Second,
		SessionTTL:     30 * time.Minute,
		AllowedOrigins: []string{"*"},
		LogLevel:       "info",
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// the environment, in that order of precedence.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	c.Port = getEnv("PORT", c.Port)
	c.BackendURL = getEnv("QUERYGPT_BACKEND_URL", c.BackendURL)
	c.DBPath = getEnv("DB_PATH", c.DBPath)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	if v := getEnv("MAX_UPLOAD_MB", ""); v != "" {
		if mb, err := strconv.Atoi(v); err == nil {
			c.MaxUploadMB = mb
		}
	}
	if v := getEnv("REQUEST_TIMEOUT", ""); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.RequestTimeout = d
		}
	}
	if v := getEnv("SESSION_TTL", ""); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.SessionTTL = d
		}
	}
	if v := getEnv("ALLOWED_ORIGINS", ""); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.AllowedOrigins = origins
	}
	if v := getEnv("QUERYGPT_DEV", ""); v != "" {
		c.Dev = v == "true" || v == "1"
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	u, err := url.Parse(c.BackendURL)
	if err != nil {
		return fmt.Errorf("invalid backend url %q: %w", c.BackendURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("backend url %q must be an absolute http(s) url", c.BackendURL)
	}
	if c.Port == "" {
		return errors.New("port is required")
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("max_upload_mb must be positive, got %d", c.MaxUploadMB)
	}
	if c.RequestTimeout <= 0 {
		return errors.New("request_timeout must be positive")
	}
	if c.SessionTTL <= 0 {
		return errors.New("session_ttl must be positive")
	}
	if len(c.AllowedOrigins) == 0 {
		return errors.New("allowed_origins must list at least one origin")
	}
	for _, o := range c.AllowedOrigins {
		if o != "*" && !strings.HasPrefix(o, "http://") && !strings.HasPrefix(o, "https://") {
			return fmt.Errorf("allowed origin %q must be \"*\" or start with http:// or https://", o)
		}
	}
	return nil
}

// MaxUploadBytes is the largest schema file accepted from the browser.
func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) * 1024 * 1024
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
