/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	dcerrors "github.com/suparena/datacheck/errors"
)

// DefaultFile is the config file looked up when no path is given.
const DefaultFile = "datacheck.yaml"

// Store modes.
const (
	ModeLocal = "local"
	ModeCloud = "cloud"
)

// Local store backends.
const (
	BackendFS     = "fs"
	BackendBadger = "badger"
	BackendMemory = "memory"
)

// Config is the project configuration.
type Config struct {
	// Mode selects local (key-value) or cloud (remote) persistence.
	Mode       string           `yaml:"mode" validate:"oneof=local cloud"`
	Store      StoreConfig      `yaml:"store"`
	DynamoDB   DynamoDBConfig   `yaml:"dynamodb"`
	Validation ValidationConfig `yaml:"validation"`
	Log        LogConfig        `yaml:"log"`
}

// StoreConfig configures local persistence.
type StoreConfig struct {
	Backend string `yaml:"backend" validate:"oneof=fs badger memory"`
	// Dir holds the fs stores, or the badger database.
	Dir string `yaml:"dir" validate:"required_unless=Backend memory"`
}

// DynamoDBConfig configures cloud persistence.
type DynamoDBConfig struct {
	Table     string `yaml:"table"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint,omitempty"`
	AccessKey string `yaml:"access_key,omitempty"`
	SecretKey string `yaml:"secret_key,omitempty"`
}

// ValidationConfig holds validator defaults.
type ValidationConfig struct {
	ResultFormat   string `yaml:"result_format" validate:"oneof=BOOLEAN_ONLY BASIC SUMMARY COMPLETE"`
	MaxConcurrency int    `yaml:"max_concurrency" validate:"gte=1,lte=64"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Mode: ModeLocal,
		Store: StoreConfig{
			Backend: BackendFS,
			Dir:     ".datacheck",
		},
		DynamoDB: DynamoDBConfig{
			Table:  "datacheck",
			Region: "us-east-1",
		},
		Validation: ValidationConfig{
			ResultFormat:   "SUMMARY",
			MaxConcurrency: 4,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

var validate = validator.New()

// Validate checks field values and the settings the mode requires.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return dcerrors.NewValidationError("config", err.Error())
	}
	if c.Mode == ModeCloud && c.DynamoDB.Table == "" {
		return dcerrors.NewValidationError("dynamodb.table", "required in cloud mode")
	}
	return nil
}

// Load reads the YAML file at path over the defaults, then applies the
// environment. A missing file yields the defaults. An empty path means
// DefaultFile.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultFile
	}
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid %s: %w", path, err)
	}
	return cfg, nil
}

// envBindings maps environment variables onto config fields.
var envBindings = map[string]func(c *Config, v string) error{
	"DATACHECK_MODE":          func(c *Config, v string) error { c.Mode = v; return nil },
	"DATACHECK_STORE_BACKEND": func(c *Config, v string) error { c.Store.Backend = v; return nil },
	"DATACHECK_STORE_DIR":     func(c *Config, v string) error { c.Store.Dir = v; return nil },
	"DATACHECK_DDB_TABLE":     func(c *Config, v string) error { c.DynamoDB.Table = v; return nil },
	"DATACHECK_DDB_ENDPOINT":  func(c *Config, v string) error { c.DynamoDB.Endpoint = v; return nil },
	"AWS_REGION":              func(c *Config, v string) error { c.DynamoDB.Region = v; return nil },
	"AWS_ACCESS_KEY_ID":       func(c *Config, v string) error { c.DynamoDB.AccessKey = v; return nil },
	"AWS_SECRET_ACCESS_KEY":   func(c *Config, v string) error { c.DynamoDB.SecretKey = v; return nil },
	"DATACHECK_RESULT_FORMAT": func(c *Config, v string) error { c.Validation.ResultFormat = strings.ToUpper(v); return nil },
	"DATACHECK_LOG_LEVEL":     func(c *Config, v string) error { c.Log.Level = strings.ToLower(v); return nil },
	"DATACHECK_LOG_FORMAT":    func(c *Config, v string) error { c.Log.Format = strings.ToLower(v); return nil },
	"DATACHECK_MAX_CONCURRENCY": func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return dcerrors.NewValidationError("DATACHECK_MAX_CONCURRENCY", fmt.Sprintf("not an integer: %q", v))
		}
		c.Validation.MaxConcurrency = n
		return nil
	},
}

// ApplyEnv loads a .env file when present, then overlays every set
// environment variable. Variables already in the environment win over the
// .env file.
func (c *Config) ApplyEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	for name, bind := range envBindings {
		v, ok := os.LookupEnv(name)
		if !ok || v == "" {
			continue
		}
		if err := bind(c, v); err != nil {
			return err
		}
	}
	return nil
}

// Logger builds a slog logger writing to stderr.
func (c Config) Logger() *slog.Logger {
	var level slog.Level
	switch c.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
