package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds the run configuration. Precedence, highest first:
// CLI flags (via Merge), environment variables, the optional config
// file at ~/.config/s3-discover/config.yaml, built-in defaults.
type Config struct {
	Bucket          string `yaml:"bucket" env:"SOURCE_BUCKET" env-default:"inversolarmx"`
	Folder          string `yaml:"folder" env:"SOURCE_FOLDER" env-default:"pricelists"`
	AccessKeyID     string `yaml:"access_key_id" env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"secret_access_key" env:"AWS_SECRET_ACCESS_KEY"`
	RoleARN         string `yaml:"role_arn" env:"ASSUME_ROLE_ARN"`
	Region          string `yaml:"region" env:"AWS_DEFAULT_REGION" env-default:"us-east-1"`
	TimeoutSeconds  int    `yaml:"timeout_seconds" env:"REQUEST_TIMEOUT_SECONDS" env-default:"30"`
}

// Load reads the default config file location. A missing file is fine;
// environment variables and defaults still apply.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return LoadPath("")
	}
	return LoadPath(filepath.Join(home, ".config", "s3-discover", "config.yaml"))
}

// LoadPath reads the given config file, then layers environment
// variables and defaults on top. An empty or missing path skips the
// file layer.
func LoadPath(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, &cfg); err != nil {
				return nil, err
			}
			return &cfg, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Overrides carries CLI flag values. Zero values leave the loaded
// configuration untouched.
type Overrides struct {
	Bucket          string
	Folder          string
	AccessKeyID     string
	SecretAccessKey string
	RoleARN         string
	Region          string
	TimeoutSeconds  int
}

// Merge applies flag overrides. Flags take precedence over everything
// loaded from file or environment.
func (c *Config) Merge(o Overrides) {
	if o.Bucket != "" {
		c.Bucket = o.Bucket
	}
	if o.Folder != "" {
		c.Folder = o.Folder
	}
	if o.AccessKeyID != "" {
		c.AccessKeyID = o.AccessKeyID
	}
	if o.SecretAccessKey != "" {
		c.SecretAccessKey = o.SecretAccessKey
	}
	if o.RoleARN != "" {
		c.RoleARN = o.RoleARN
	}
	if o.Region != "" {
		c.Region = o.Region
	}
	if o.TimeoutSeconds > 0 {
		c.TimeoutSeconds = o.TimeoutSeconds
	}
}

// Timeout returns the per-run request deadline.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}
