package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig represents the single-file configuration schema. Durations are
// strings accepted by time.ParseDuration so YAML and JSON read the same way.
type FileConfig struct {
	Input  string `yaml:"input" json:"input"`
	Output string `yaml:"output" json:"output"`
	Log    string `yaml:"log" json:"log"`

	HTTP struct {
		UserAgent    string `yaml:"userAgent" json:"userAgent"`
		Timeout      string `yaml:"timeout" json:"timeout"`
		MaxRedirects int    `yaml:"maxRedirects" json:"maxRedirects"`
		MaxBodyBytes int64  `yaml:"maxBodyBytes" json:"maxBodyBytes"`
	} `yaml:"http" json:"http"`

	MaxFollow int `yaml:"maxFollow" json:"maxFollow"`

	Cache struct {
		Dir         string `yaml:"dir" json:"dir"`
		MaxAge      string `yaml:"maxAge" json:"maxAge"`
		Clear       bool   `yaml:"clear" json:"clear"`
		StrictPerms bool   `yaml:"strictPerms" json:"strictPerms"`
	} `yaml:"cache" json:"cache"`

	Verbose bool `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		// Try YAML then JSON
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig copies every value set in fc into cfg.
func ApplyFileConfig(cfg *Config, fc FileConfig) error {
	if cfg == nil {
		return nil
	}
	if fc.Input != "" {
		cfg.InputPath = fc.Input
	}
	if fc.Output != "" {
		cfg.OutputPath = fc.Output
	}
	if fc.Log != "" {
		cfg.LogPath = fc.Log
	}
	if fc.HTTP.UserAgent != "" {
		cfg.UserAgent = fc.HTTP.UserAgent
	}
	if fc.HTTP.Timeout != "" {
		d, err := time.ParseDuration(fc.HTTP.Timeout)
		if err != nil {
			return fmt.Errorf("config: http.timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if fc.HTTP.MaxRedirects > 0 {
		cfg.MaxRedirects = fc.HTTP.MaxRedirects
	}
	if fc.HTTP.MaxBodyBytes > 0 {
		cfg.MaxBodyBytes = fc.HTTP.MaxBodyBytes
	}
	if fc.MaxFollow > 0 {
		cfg.MaxFollow = fc.MaxFollow
	}
	if fc.Cache.Dir != "" {
		cfg.CacheDir = fc.Cache.Dir
	}
	if fc.Cache.MaxAge != "" {
		d, err := time.ParseDuration(fc.Cache.MaxAge)
		if err != nil {
			return fmt.Errorf("config: cache.maxAge: %w", err)
		}
		cfg.CacheMaxAge = d
	}
	if fc.Cache.Clear {
		cfg.CacheClear = true
	}
	if fc.Cache.StrictPerms {
		cfg.CacheStrictPerms = true
	}
	if fc.Verbose {
		cfg.Verbose = true
	}
	return nil
}

// ValidateConfig performs minimal validation of required settings.
func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.InputPath) == "" {
		return errors.New("config: input path is required")
	}
	if strings.TrimSpace(cfg.OutputPath) == "" {
		return errors.New("config: output path is required")
	}
	if cfg.Timeout < 0 || cfg.CacheMaxAge < 0 {
		return errors.New("config: negative durations are not allowed")
	}
	if cfg.MaxRedirects < 0 || cfg.MaxFollow < 0 || cfg.MaxBodyBytes < 0 {
		return errors.New("config: negative limits are not allowed")
	}
	return nil
}
