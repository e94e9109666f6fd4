package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

var ErrConfigValidation = errors.New("config validation error")

// Config is the tool configuration, read from a YAML file with environment
// variable overrides on top.
type Config struct {
	// Format selects the output encoding: "json" or "yaml".
	Format string `yaml:"format"`

	// Color disables colored verbose output when false.
	Color bool `yaml:"color"`

	// MaxDepth bounds grammar recursion; zero means unlimited.
	MaxDepth int `yaml:"max_depth"`
}

func defaultConfig() *Config {
	return &Config{
		Format: "json",
		Color:  true,
	}
}

// LoadConfig loads configuration from the specified file. A missing file is
// not an error; defaults apply. Environment variables (PARSEIT_FORMAT,
// PARSEIT_NO_COLOR, PARSEIT_MAX_DEPTH) override file values, and a .env file
// in the current directory is loaded first when present.
func LoadConfig(configPath string) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, err
	}

	config := defaultConfig()

	data, err := os.ReadFile(configPath)
	switch {
	case os.IsNotExist(err):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.UnmarshalWithOptions(data, config, yaml.Strict()); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(config)

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

func loadEnvFiles() error {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	return nil
}

func applyEnvOverrides(config *Config) {
	if format := os.Getenv("PARSEIT_FORMAT"); format != "" {
		config.Format = format
	}

	if os.Getenv("PARSEIT_NO_COLOR") != "" {
		config.Color = false
	}

	if depth := os.Getenv("PARSEIT_MAX_DEPTH"); depth != "" {
		if n, err := strconv.Atoi(depth); err == nil {
			config.MaxDepth = n
		}
	}
}

func validateConfig(config *Config) error {
	switch config.Format {
	case "json", "yaml":
	default:
		return fmt.Errorf("%w: invalid format '%s': must be one of json, yaml", ErrConfigValidation, config.Format)
	}

	if config.MaxDepth < 0 {
		return fmt.Errorf("%w: max_depth must not be negative", ErrConfigValidation)
	}

	return nil
}
