// Package config provides Viper-based configuration for letterpipe.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gaurav-prasanna/letterpipe/core/tag"
	"github.com/gaurav-prasanna/letterpipe/store"
	"github.com/spf13/viper"
)

// Config is the complete letterpipe configuration.
type Config struct {
	DataDir string        `mapstructure:"data_dir"`
	Store   StoreConfig   `mapstructure:"store"`
	Logging LoggingConfig `mapstructure:"logging"`
	Extract ExtractConfig `mapstructure:"extract"`
	Tagging TaggingConfig `mapstructure:"tagging"`
	Export  ExportConfig  `mapstructure:"export"`
}

// StoreConfig selects the collection backend.
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
	// Path defaults to newsletters.json (or newsletters.db) inside DataDir.
	Path string `mapstructure:"path"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level     string `mapstructure:"level"`
	Format    string `mapstructure:"format"`
	AddSource bool   `mapstructure:"add_source"`
}

// ExtractConfig controls content extraction.
type ExtractConfig struct {
	Sanitize bool `mapstructure:"sanitize"`
}

// TaggingConfig overrides the keyword table.
type TaggingConfig struct {
	Default string     `mapstructure:"default"`
	Rules   []tag.Rule `mapstructure:"rules"`
}

// ExportConfig controls record exports.
type ExportConfig struct {
	OutputDir string `mapstructure:"output_dir"`
}

// New returns a viper instance with defaults, env binding and, when
// cfgFile is set or a default file exists, the config file applied.
func New(cfgFile string) (*viper.Viper, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".letterpipe")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/letterpipe")
	}

	v.SetEnvPrefix("LETTERPIPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// No config file is fine; defaults apply.
	}
	return v, nil
}

// Load unmarshals and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = defaultStorePath(cfg.DataDir, cfg.Store.Driver)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", ".")

	v.SetDefault("store.driver", store.DriverJSON)
	v.SetDefault("store.path", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.add_source", false)

	v.SetDefault("extract.sanitize", false)

	v.SetDefault("tagging.default", tag.DefaultTag)

	v.SetDefault("export.output_dir", "")
}

func defaultStorePath(dataDir, driver string) string {
	name := "newsletters.json"
	if driver == store.DriverSQLite {
		name = "newsletters.db"
	}
	return filepath.Join(dataDir, name)
}

func validate(cfg *Config) error {
	switch cfg.Store.Driver {
	case store.DriverJSON, store.DriverSQLite:
	default:
		return fmt.Errorf("%w: %q", store.ErrUnknownDriver, cfg.Store.Driver)
	}
	if _, err := ParseLevel(cfg.Logging.Level); err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Logging.Format)) {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown logging.format: %s", cfg.Logging.Format)
	}
	for i, r := range cfg.Tagging.Rules {
		if strings.TrimSpace(r.Keyword) == "" || strings.TrimSpace(r.Tag) == "" {
			return fmt.Errorf("tagging.rules[%d]: keyword and tag are required", i)
		}
	}
	return nil
}
