package sdcard

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/rstms/sdfs/lvfs"
)

var ErrConfig = errors.New("invalid card config")

// Config describes one card: where it comes from and how it is
// registered with the toolkit.
type Config struct {
	// Letter is the toolkit drive letter.
	Letter string `yaml:"letter"`
	// Image is a card device or raw image file holding a FAT volume.
	Image string `yaml:"image,omitempty"`
	// Mount is a directory where the card is already mounted.
	Mount       string `yaml:"mount,omitempty"`
	CacheSize   int    `yaml:"cache_size"`
	MaxFilename int    `yaml:"max_filename"`
	LogLevel    string `yaml:"log_level,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Letter:      "S",
		CacheSize:   0,
		MaxFilename: lvfs.MaxFilenameLength,
		LogLevel:    "info",
	}
}

// LoadConfig reads a YAML config file over the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if letter := c.DriveLetter(); len(c.Letter) != 1 || letter < 'A' || letter > 'Z' {
		return fmt.Errorf("%w: drive letter %q", ErrConfig, c.Letter)
	}
	if c.Image != "" && c.Mount != "" {
		return fmt.Errorf("%w: image and mount are exclusive", ErrConfig)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("%w: cache_size %d", ErrConfig, c.CacheSize)
	}
	if c.MaxFilename < 2 {
		return fmt.Errorf("%w: max_filename %d", ErrConfig, c.MaxFilename)
	}
	var level slog.Level
	if c.LogLevel != "" {
		if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
			return fmt.Errorf("%w: log_level %q", ErrConfig, c.LogLevel)
		}
	}
	return nil
}

// DriveLetter returns the configured letter, upper cased.
func (c *Config) DriveLetter() byte {
	if c.Letter == "" {
		return 0
	}
	return strings.ToUpper(c.Letter)[0]
}

// Level returns the configured log level, info if unset or unknown.
func (c *Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
