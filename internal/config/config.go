// Package config loads fjson tool configuration from YAML files and
// resolves it into parser options. File settings are partial: anything
// the file does not mention keeps its default, and CLI flags override
// the file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	fjson "github.com/mcncl/fjson"
)

// Config represents the complete configuration for the fjson tool.
type Config struct {
	Parse  ParseConfig  `yaml:"parse"`
	Output OutputConfig `yaml:"output"`
	Repair RepairConfig `yaml:"repair"`
	Dev    DevConfig    `yaml:"dev"`
}

// ParseConfig controls which forgiving extensions are accepted.
// Feature fields are pointers so a config file can flip individual
// features while leaving the rest at their defaults.
type ParseConfig struct {
	Strict           bool  `yaml:"strict"`
	Comments         *bool `yaml:"comments"`
	TrailingCommas   *bool `yaml:"trailing_commas"`
	UnquotedKeys     *bool `yaml:"unquoted_keys"`
	SingleQuotes     *bool `yaml:"single_quotes"`
	ImplicitTopLevel *bool `yaml:"implicit_top_level"`
	NewlineAsComma   *bool `yaml:"newline_as_comma"`
	MaxDepth         int   `yaml:"max_depth"`
}

// OutputConfig controls how parsed values are rendered.
type OutputConfig struct {
	Pretty bool   `yaml:"pretty"`
	Indent string `yaml:"indent"`
}

// RepairConfig controls automatic repair of failed parses.
type RepairConfig struct {
	Enabled     bool `yaml:"enabled"`
	MaxAttempts int  `yaml:"max_attempts"`
}

// DevConfig contains development/debug options.
type DevConfig struct {
	Debug   bool `yaml:"debug"`
	Verbose bool `yaml:"verbose"`
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Parse: ParseConfig{
			MaxDepth: fjson.DefaultMaxDepth,
		},
		Output: OutputConfig{
			Pretty: false,
			Indent: "  ",
		},
		Repair: RepairConfig{
			Enabled:     false,
			MaxAttempts: 3,
		},
	}
}

// LoadConfig loads configuration from a YAML file, layered over the
// defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := NewConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FindConfigFile searches for a config file in the current directory
// and its parents. It returns "" when none exists.
func FindConfigFile() string {
	configNames := []string{".fjson.yml", ".fjson.yaml", "fjson.yml", "fjson.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return ""
}

// Validate checks the config for values the parser would reject.
func (c *Config) Validate() error {
	if c.Parse.MaxDepth < 0 {
		return fmt.Errorf("parse.max_depth must not be negative, got %d", c.Parse.MaxDepth)
	}
	if c.Repair.MaxAttempts < 0 {
		return fmt.Errorf("repair.max_attempts must not be negative, got %d", c.Repair.MaxAttempts)
	}
	return nil
}

// Options resolves the parse section into fjson.Options. Strict mode
// is the baseline when set; individual feature fields then override
// whichever baseline applies. A zero max_depth means the default.
func (c *Config) Options() fjson.Options {
	opts := fjson.DefaultOptions()
	if c.Parse.Strict {
		opts = fjson.StrictOptions()
	}
	applyBool(&opts.AllowComments, c.Parse.Comments)
	applyBool(&opts.AllowTrailingCommas, c.Parse.TrailingCommas)
	applyBool(&opts.AllowUnquotedKeys, c.Parse.UnquotedKeys)
	applyBool(&opts.AllowSingleQuotes, c.Parse.SingleQuotes)
	applyBool(&opts.ImplicitTopLevel, c.Parse.ImplicitTopLevel)
	applyBool(&opts.NewlineAsComma, c.Parse.NewlineAsComma)
	if c.Parse.MaxDepth > 0 {
		opts.MaxDepth = c.Parse.MaxDepth
	}
	return opts
}

func applyBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}
