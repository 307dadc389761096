// Package config loads client settings from an optional YAML file named by
// SLURM_CLIENT_CONFIG, with SLURM_* environment variables overriding the
// file and built-in defaults filling the rest.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type S3 struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type Config struct {
	BaseURL               string `yaml:"base_url"`
	APIVersion            string `yaml:"api_version"`
	AuthMode              string `yaml:"auth_mode"` // token|local
	UserName              string `yaml:"user_name"`
	Token                 string `yaml:"token"`
	TokenCommand          string `yaml:"token_command"`
	TokenLifespanSeconds  int    `yaml:"token_lifespan_seconds"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
	PollIntervalSeconds   int    `yaml:"poll_interval_seconds"`
	PollMaxAttempts       int    `yaml:"poll_max_attempts"`
	S3                    S3     `yaml:"s3"`
}

func defaults() Config {
	return Config{
		BaseURL:               "http://localhost:6820",
		APIVersion:            "v0.0.38",
		AuthMode:              "token",
		TokenCommand:          "scontrol",
		TokenLifespanSeconds:  3600,
		RequestTimeoutSeconds: 30,
		PollIntervalSeconds:   10,
		PollMaxAttempts:       60,
	}
}

// Load resolves the effective configuration: defaults, then the YAML file if
// one is named, then environment overrides.
func Load() (Config, error) {
	cfg := defaults()
	if path := strings.TrimSpace(os.Getenv("SLURM_CLIENT_CONFIG")); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}
	cfg.BaseURL = getenv("SLURM_BASE_URL", cfg.BaseURL)
	cfg.APIVersion = getenv("SLURM_API_VERSION", cfg.APIVersion)
	cfg.AuthMode = getenv("SLURM_AUTH_MODE", cfg.AuthMode)
	cfg.UserName = getenv("SLURM_USER_NAME", cfg.UserName)
	cfg.Token = getenv("SLURM_TOKEN", cfg.Token)
	cfg.TokenCommand = getenv("SLURM_TOKEN_COMMAND", cfg.TokenCommand)
	cfg.TokenLifespanSeconds = getenvInt("SLURM_TOKEN_LIFESPAN_SECONDS", cfg.TokenLifespanSeconds)
	cfg.RequestTimeoutSeconds = getenvInt("SLURM_REQUEST_TIMEOUT_SECONDS", cfg.RequestTimeoutSeconds)
	cfg.PollIntervalSeconds = getenvInt("SLURM_POLL_INTERVAL_SECONDS", cfg.PollIntervalSeconds)
	cfg.PollMaxAttempts = getenvInt("SLURM_POLL_MAX_ATTEMPTS", cfg.PollMaxAttempts)
	cfg.S3.Endpoint = getenv("SLURM_S3_ENDPOINT", cfg.S3.Endpoint)
	cfg.S3.AccessKey = getenv("SLURM_S3_ACCESS_KEY", cfg.S3.AccessKey)
	cfg.S3.SecretKey = getenv("SLURM_S3_SECRET_KEY", cfg.S3.SecretKey)
	cfg.S3.Bucket = getenv("SLURM_S3_BUCKET", cfg.S3.Bucket)
	cfg.S3.UseSSL = getenvBool("SLURM_S3_USE_SSL", cfg.S3.UseSSL)

	switch cfg.AuthMode {
	case "token", "local":
	default:
		return Config{}, fmt.Errorf("auth_mode must be token or local, got %q", cfg.AuthMode)
	}
	return cfg, nil
}

func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

func (c Config) TokenLifespan() time.Duration {
	return time.Duration(c.TokenLifespanSeconds) * time.Second
}

func getenv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvBool(key string, fallback bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	default:
		return fallback
	}
}
