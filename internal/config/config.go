package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// Config represents the application configuration
type Config struct {
	Team    TeamConfig    `json:"team"`
	Risk    RiskConfig    `json:"risk"`
	Storage StorageConfig `json:"storage"`
	Log     LogConfig     `json:"log"`
	Server  ServerConfig  `json:"server"`
}

// TeamConfig holds squad display settings
type TeamConfig struct {
	Name     string `json:"name"`
	MatchDay string `json:"match_day,omitempty"` // YYYY-MM-DD of the next match
}

// RiskConfig holds the two tunables of the risk model. Pointers keep an
// explicit 0 weight distinguishable from an unset one.
type RiskConfig struct {
	ACWRWeight     *float64 `json:"acwr_weight"`
	AlertThreshold *float64 `json:"alert_threshold"`
}

// StorageConfig holds the database location
type StorageConfig struct {
	DBPath string `json:"db_path"`
}

// LogConfig holds logging preferences
type LogConfig struct {
	Level string `json:"level"`
	File  string `json:"file"`
	JSON  bool   `json:"json"`
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	Addr string `json:"addr"`
}

const (
	DefaultACWRWeight     = 0.5
	DefaultAlertThreshold = 7.0
	DefaultLogLevel       = "info"
	DefaultServerAddr     = ":8080"
	dirName               = ".squadload"
)

// ErrNoConfig is returned when the config file doesn't exist
var ErrNoConfig = errors.New("config file not found")

// pathOverride replaces ~/.squadload/config.json when set
var pathOverride string

// SetPath points Load and Save at a different config file
func SetPath(path string) {
	pathOverride = path
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	weight := DefaultACWRWeight
	threshold := DefaultAlertThreshold
	return Config{
		Team: TeamConfig{Name: "Squad"},
		Risk: RiskConfig{
			ACWRWeight:     &weight,
			AlertThreshold: &threshold,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
			File:  "squadload.log",
		},
		Server: ServerConfig{Addr: DefaultServerAddr},
	}
}

// Load reads the configuration from ~/.squadload/config.json
func Load() (*Config, error) {
	path, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNoConfig
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Team.Name == "" {
		c.Team.Name = defaults.Team.Name
	}
	if c.Risk.ACWRWeight == nil {
		c.Risk.ACWRWeight = defaults.Risk.ACWRWeight
	}
	if c.Risk.AlertThreshold == nil {
		c.Risk.AlertThreshold = defaults.Risk.AlertThreshold
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.Log.File == "" {
		c.Log.File = defaults.Log.File
	}
	if c.Server.Addr == "" {
		c.Server.Addr = defaults.Server.Addr
	}
}

// Save writes the configuration to ~/.squadload/config.json
func Save(cfg *Config) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// CreateExample creates an example config file if none exists
func CreateExample() error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	// Check if config already exists
	if _, err := os.Stat(path); err == nil {
		return nil // Config exists, don't overwrite
	}

	example := DefaultConfig()
	example.Team.Name = "First Team"
	return Save(&example)
}

// Validate checks that every value is in range
func (c *Config) Validate() error {
	if w := c.Risk.ACWRWeight; w != nil && (*w < 0 || *w > 1) {
		return fmt.Errorf("risk.acwr_weight must be between 0 and 1, got %v", *w)
	}
	if th := c.Risk.AlertThreshold; th != nil && (*th < 0 || *th > 10) {
		return fmt.Errorf("risk.alert_threshold must be between 0 and 10, got %v", *th)
	}
	if c.Log.Level != "" {
		if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
			return fmt.Errorf("log.level: %w", err)
		}
	}
	if c.Team.MatchDay != "" {
		if _, err := time.Parse("2006-01-02", c.Team.MatchDay); err != nil {
			return fmt.Errorf("team.match_day must be YYYY-MM-DD, got %q", c.Team.MatchDay)
		}
	}
	return nil
}

// Weight returns the ACWR blend weight, falling back to the default
func (c *Config) Weight() float64 {
	if c.Risk.ACWRWeight == nil {
		return DefaultACWRWeight
	}
	return *c.Risk.ACWRWeight
}

// Threshold returns the wellness alert threshold, falling back to the default
func (c *Config) Threshold() float64 {
	if c.Risk.AlertThreshold == nil {
		return DefaultAlertThreshold
	}
	return *c.Risk.AlertThreshold
}

// MatchDay returns the configured match date, if any
func (c *Config) MatchDay() (time.Time, bool) {
	if c.Team.MatchDay == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", c.Team.MatchDay)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// LogFilePath resolves Log.File relative to the config directory
func (c *Config) LogFilePath() (string, error) {
	if c.Log.File == "" || filepath.IsAbs(c.Log.File) {
		return c.Log.File, nil
	}
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, c.Log.File), nil
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	if pathOverride != "" {
		return pathOverride, nil
	}
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, dirName), nil
}
