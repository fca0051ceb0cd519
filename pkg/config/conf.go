// Package config loads and validates the application configuration
// from a YAML file in the user's nctl home directory.
package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	configFileName = "config.yaml"
	dirMode        = 0700
	fileMode       = 0600
)

// Band is one rung of a verdict ladder.
type Band struct {
	Min     float64 `yaml:"min"`
	Verdict string  `yaml:"verdict"`
}

// Fusion holds signal budgets and a verdict ladder for one analysis
// pipeline.
type Fusion struct {
	Budgets map[string]float64 `yaml:"budgets"`
	Ladder  []Band             `yaml:"ladder"`
}

// Cache holds result cache tuning.
type Cache struct {
	MaxSize    int `yaml:"maxSize"`
	TTLSeconds int `yaml:"ttlSeconds"`
}

// Config represents the app configuration.
type Config struct {
	// Weights maps classifier IDs to their ensemble voting weight.
	Weights map[string]float64 `yaml:"weights"`
	Text    Fusion             `yaml:"text"`
	Image   Fusion             `yaml:"image"`
	Cache   Cache              `yaml:"cache"`
	Port    int                `yaml:"port"`
	DBPath  string             `yaml:"dbPath"`
}

func getDefaultConfig() *Config {
	return &Config{
		Weights: map[string]float64{
			"rules": 1.0,
		},
		Text: Fusion{
			Budgets: map[string]float64{
				"ensemble":           40,
				"source_credibility": 30,
				"sentiment_risk":     20,
				"ocr_confidence":     10,
			},
			Ladder: []Band{
				{Min: 80, Verdict: "FAKE"},
				{Min: 60, Verdict: "LIKELY_FAKE"},
				{Min: 40, Verdict: "SUSPICIOUS"},
				{Min: 20, Verdict: "LIKELY_REAL"},
				{Min: 0, Verdict: "REAL"},
			},
		},
		Image: Fusion{
			Budgets: map[string]float64{
				"image_manipulation": 25,
				"ai_generation":      35,
				"image_context":      20,
				"context_match":      15,
			},
			Ladder: []Band{
				{Min: 70, Verdict: "FAKE"},
				{Min: 40, Verdict: "SUSPICIOUS"},
				{Min: 0, Verdict: "LIKELY_AUTHENTIC"},
			},
		},
		Cache: Cache{
			MaxSize:    1000,
			TTLSeconds: 3600,
		},
		Port: 8080,
	}
}

// Validate checks the loaded configuration for values the pipeline
// cannot run with.
func (c *Config) Validate() error {
	if len(c.Weights) == 0 {
		return errors.New("config: at least one classifier weight required")
	}
	for id, w := range c.Weights {
		if id == "" {
			return errors.New("config: classifier weight with empty ID")
		}
		if w <= 0 {
			return errors.Errorf("config: weight for %s must be positive, got %f", id, w)
		}
	}
	for name, f := range map[string]Fusion{"text": c.Text, "image": c.Image} {
		for kind, b := range f.Budgets {
			if b <= 0 {
				return errors.Errorf("config: %s budget for %s must be positive, got %f", name, kind, b)
			}
		}
		if len(f.Ladder) == 0 {
			return errors.Errorf("config: %s verdict ladder is empty", name)
		}
		for i, band := range f.Ladder {
			if band.Verdict == "" {
				return errors.Errorf("config: %s ladder band %d has no verdict", name, i)
			}
			if i > 0 && band.Min >= f.Ladder[i-1].Min {
				return errors.Errorf("config: %s ladder thresholds must strictly decrease", name)
			}
		}
		if f.Ladder[len(f.Ladder)-1].Min != 0 {
			return errors.Errorf("config: %s ladder must end at threshold 0", name)
		}
	}
	if c.Cache.MaxSize <= 0 {
		return errors.New("config: cache maxSize must be positive")
	}
	if c.Cache.TTLSeconds <= 0 {
		return errors.New("config: cache ttlSeconds must be positive")
	}
	if c.Port < 1 || c.Port > 65535 {
		return errors.Errorf("config: invalid port: %d", c.Port)
	}
	return nil
}

// Save writes the config to its file in dirPath.
func Save(dirPath string, c *Config) error {
	if dirPath == "" {
		return errors.New("config directory required")
	}
	if c == nil {
		return errors.New("config required")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}
	path := filepath.Join(dirPath, configFileName)
	if err := os.WriteFile(path, b, fileMode); err != nil {
		return errors.Wrapf(err, "failed to write config file: %s", configFileName)
	}
	return nil
}

// ReadOrCreate reads app config from directory or creates a new one,
// validating before returning.
func ReadOrCreate(dirPath string) (*Config, error) {
	if dirPath == "" {
		return nil, errors.New("config directory required")
	}

	if _, err := os.Stat(dirPath); errors.Is(err, os.ErrNotExist) {
		if err := os.Mkdir(dirPath, dirMode); err != nil {
			return nil, errors.Wrapf(err, "failed to create dir: %s", dirPath)
		}
	}

	path := filepath.Join(dirPath, configFileName)

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := Save(dirPath, getDefaultConfig()); err != nil {
			return nil, errors.Wrap(err, "failed to create default config")
		}
	}

	j, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening config file: %s", path)
	}
	defer j.Close()

	b, err := io.ReadAll(j)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading config file: %s", path)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, errors.Wrapf(err, "error unmarshalling config file: %s", path)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// GetOrCreateHomeDir returns the app home directory for the current
// user, creating it on first use.
func GetOrCreateHomeDir(name string) (path string, created bool, err error) {
	if name == "" {
		return "", false, errors.New("name cannot be empty")
	}

	if !strings.HasPrefix(name, ".") {
		name = "." + name
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", false, errors.Wrap(err, "failed to get user home dir")
	}

	dir := filepath.Join(home, name)
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		slog.Debug("creating app home dir", "dir", dir)
		if err := os.Mkdir(dir, dirMode); err != nil {
			return "", false, errors.Wrapf(err, "failed to create dir: %s", dir)
		}
		created = true
	}

	return dir, created, nil
}
