package state

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the user settings for go-northstar.
type Config struct {
	// GamePath is the selected Titanfall 2 directory. Empty means "detect".
	GamePath string        `yaml:"game_path"`
	Release  ReleaseConfig `yaml:"release"`
	Cache    CacheConfig   `yaml:"cache"`
	Detect   DetectConfig  `yaml:"detect"`
	Logging  LoggingConfig `yaml:"logging"`
}

// ReleaseConfig points at the release metadata endpoint.
type ReleaseConfig struct {
	Host        string `yaml:"host"`
	Path        string `yaml:"path"`
	ArchiveName string `yaml:"archive_name"`
}

// CacheConfig holds request cache configuration.
type CacheConfig struct {
	MaxAge time.Duration `yaml:"max_age"`
}

// DetectConfig holds game directory detection configuration.
type DetectConfig struct {
	LastCandidateWins bool `yaml:"last_candidate_wins"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	Compress   bool   `yaml:"compress"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		GamePath: "",
		Release: ReleaseConfig{
			Host:        "api.github.com",
			Path:        "/repos/R2Northstar/Northstar/releases/latest",
			ArchiveName: "northstar.zip",
		},
		Cache: CacheConfig{
			MaxAge: 5 * time.Minute,
		},
		Detect: DetectConfig{
			LastCandidateWins: false,
		},
		Logging: LoggingConfig{
			Level:      "info",
			File:       "",
			MaxSizeMB:  10,
			MaxBackups: 3,
			Compress:   true,
		},
	}
}

// LoadConfig loads the settings document.
// A missing file is created with defaults. A corrupted file is moved aside to
// config.yaml.corrupted and replaced with defaults.
func LoadConfig(ctx context.Context) (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}
	return LoadConfigFile(ctx, configPath)
}

// LoadConfigFile is LoadConfig for an explicit settings file.
func LoadConfigFile(ctx context.Context, configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := SaveConfigFile(ctx, configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to save default config: %w", err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Missing sections keep their defaults.
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		backupPath := configPath + ".corrupted"
		if backupErr := os.Rename(configPath, backupPath); backupErr != nil {
			return nil, fmt.Errorf("config file is corrupted and failed to create backup: %w (original error: %v)", backupErr, err)
		}

		fresh := DefaultConfig()
		if saveErr := SaveConfigFile(ctx, configPath, fresh); saveErr != nil {
			return nil, fmt.Errorf("config file was corrupted (backed up to %s), failed to save fresh config: %w (original error: %v)", backupPath, saveErr, err)
		}

		return fresh, nil
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the settings document using an atomic write.
func SaveConfig(ctx context.Context, cfg *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	return SaveConfigFile(ctx, configPath, cfg)
}

// SaveConfigFile is SaveConfig for an explicit settings file.
func SaveConfigFile(ctx context.Context, configPath string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if err := ValidateConfig(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := AtomicWrite(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// ValidateConfig validates the configuration.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if err := ValidateGamePath(cfg.GamePath); err != nil {
		return fmt.Errorf("invalid game path: %w", err)
	}

	if err := ValidateHost(cfg.Release.Host); err != nil {
		return fmt.Errorf("invalid release host: %w", err)
	}

	if !strings.HasPrefix(cfg.Release.Path, "/") {
		return fmt.Errorf("release path must start with '/', got %q", cfg.Release.Path)
	}

	if err := ValidateArchiveName(cfg.Release.ArchiveName); err != nil {
		return fmt.Errorf("invalid archive name: %w", err)
	}

	if cfg.Cache.MaxAge < 0 {
		return fmt.Errorf("cache max age must be >= 0, got %v", cfg.Cache.MaxAge)
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	validLevel := false
	for _, level := range validLogLevels {
		if cfg.Logging.Level == level {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid log level: %q (must be debug, info, warn, or error)", cfg.Logging.Level)
	}

	if cfg.Logging.MaxSizeMB < 0 || cfg.Logging.MaxBackups < 0 {
		return fmt.Errorf("log rotation limits must be >= 0")
	}

	return nil
}
