package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Column names in the company table
	StateColumn    string `mapstructure:"state_column" yaml:"state_column" validate:"required"`
	CategoryColumn string `mapstructure:"category_column" yaml:"category_column" validate:"required"`

	// Classification index columns
	NAICSCodeColumn  string `mapstructure:"naics_code_column" yaml:"naics_code_column" validate:"required"`
	NAICSTitleColumn string `mapstructure:"naics_title_column" yaml:"naics_title_column" validate:"required"`

	CorrelationColumns []string `mapstructure:"correlation_columns" yaml:"correlation_columns" validate:"dive,required"`
	StrictLabels       bool     `mapstructure:"strict_labels" yaml:"strict_labels"`

	OutputFormat string `mapstructure:"output_format" yaml:"output_format" validate:"oneof=markdown json"`
	LogLevel     string `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn warning error"`
	LogFormat    string `mapstructure:"log_format" yaml:"log_format" validate:"oneof=text json"`
}

var defaults = map[string]any{
	"state_column":        "state",
	"category_column":     "category_code",
	"naics_code_column":   "code",
	"naics_title_column":  "title",
	"correlation_columns": []string{},
	"strict_labels":       false,
	"output_format":       "markdown",
	"log_level":           "warn",
	"log_format":          "text",
}

var validate = validator.New()

// Default returns the built-in configuration without touching disk or env.
func Default() *Global {
	return &Global{
		StateColumn:        "state",
		CategoryColumn:     "category_code",
		NAICSCodeColumn:    "code",
		NAICSTitleColumn:   "title",
		CorrelationColumns: []string{},
		OutputFormat:       "markdown",
		LogLevel:           "warn",
		LogFormat:          "text",
	}
}

// Validate checks field values against their allowed sets.
func (c *Global) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".bigtable"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.bigtable/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := configDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. A missing file is not an error.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("BIGTABLE")
	v.AutomaticEnv()

	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
