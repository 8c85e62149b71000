// Package config loads the YAML service configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v2"

	"smartfraud/ml"
)

type Config struct {
	Http struct {
		Port         int           `yaml:"port"`
		Timeout      time.Duration `yaml:"timeout"`
		MaxBodyBytes int64         `yaml:"max_body_bytes"`
	} `yaml:"http"`
	Log struct {
		Level      string `yaml:"level"`
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
		Compress   bool   `yaml:"compress"`
	} `yaml:"log"`
	ML struct {
		ModelPath string `yaml:"model_path"`
		Reload    string `yaml:"reload"`
		CacheSize int    `yaml:"cache_size"`
	} `yaml:"ml"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
}

// Default returns the configuration used for any key the file leaves out.
func Default() *Config {
	cfg := &Config{}
	cfg.Http.Port = 8501
	cfg.Http.Timeout = 30 * time.Second
	cfg.Http.MaxBodyBytes = 64 << 10
	cfg.Log.Level = "info"
	cfg.Log.MaxSizeMB = 50
	cfg.Log.MaxBackups = 3
	cfg.Log.MaxAgeDays = 28
	cfg.Log.Compress = true
	cfg.ML.ModelPath = "./models/finish_model.json"
	cfg.ML.Reload = string(ml.ReloadAlways)
	cfg.ML.CacheSize = 4
	return cfg
}

// Load reads path over the defaults and validates the result. Relative
// file paths are resolved against the directory holding path.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	config := Default()
	if err := yaml.NewDecoder(file).Decode(config); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	config.ResolvePaths(filepath.Dir(path))
	return config, nil
}

// ResolvePaths makes the relative file paths in c relative to dir, so a
// config found in a parent directory still points at the same files.
func (c *Config) ResolvePaths(dir string) {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	c.ML.ModelPath = resolve(c.ML.ModelPath)
	c.Database.Path = resolve(c.Database.Path)
	c.Log.File = resolve(c.Log.File)
}

func (c *Config) Validate() error {
	if c.Http.Port <= 0 || c.Http.Port > 65535 {
		return fmt.Errorf("http.port %d out of range", c.Http.Port)
	}
	if c.Http.Timeout <= 0 {
		return errors.New("http.timeout must be positive")
	}
	if c.ML.ModelPath == "" {
		return errors.New("ml.model_path is required")
	}
	if _, err := ml.ParseReloadPolicy(c.ML.Reload); err != nil {
		return fmt.Errorf("ml.reload: %w", err)
	}
	return nil
}

// ReloadPolicy returns the parsed ml.reload setting.
func (c *Config) ReloadPolicy() ml.ReloadPolicy {
	policy, err := ml.ParseReloadPolicy(c.ML.Reload)
	if err != nil {
		return ml.ReloadAlways
	}
	return policy
}
