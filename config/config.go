/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package config loads the application configuration from a YAML file, a
// .env file and DATASTUDY_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/tomoncle/datastudy/database"
	"github.com/tomoncle/datastudy/types"
	"github.com/tomoncle/datastudy/utils"
	"gopkg.in/yaml.v3"
)

const EnvPrefix = "DATASTUDY_"

// Config is the application configuration.
type Config struct {
	Name string `env:"NAME" yaml:"name"`

	HTTP HTTPConfig `envPrefix:"HTTP_" yaml:"http"`

	Log LogConfig `envPrefix:"LOG_" yaml:"log"`

	// Database is further overridable through DB_* variables when the
	// connection is created.
	Database database.Config `yaml:"database"`

	Seed SeedConfig `envPrefix:"SEED_" yaml:"seed"`
}

type HTTPConfig struct {
	ListenAddr        string        `env:"LISTEN_ADDR" yaml:"listen_addr"`
	ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT" yaml:"read_header_timeout"`
	IdleTimeout       time.Duration `env:"IDLE_TIMEOUT" yaml:"idle_timeout"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT" yaml:"shutdown_timeout"`
	DefaultPageSize   int           `env:"DEFAULT_PAGE_SIZE" yaml:"default_page_size"`
	MaxPageSize       int           `env:"MAX_PAGE_SIZE" yaml:"max_page_size"`
}

type LogConfig struct {
	Level  string `env:"LEVEL" yaml:"level"`
	Format string `env:"FORMAT" yaml:"format"` // text or json
	// Loggers overrides the level of single named loggers, e.g. DATABASE.
	Loggers map[string]string `env:"LOGGERS" yaml:"loggers"`
}

type SeedConfig struct {
	// Members demo members are created on startup when greater than zero.
	Members int `env:"MEMBERS" yaml:"members"`
}

// DefaultConfig serves on :8080 against an in-memory SQLite database.
func DefaultConfig() *Config {
	return &Config{
		Name: "datastudy",
		HTTP: HTTPConfig{
			ListenAddr:        ":8080",
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       60 * time.Second,
			ShutdownTimeout:   30 * time.Second,
			DefaultPageSize:   5,
			MaxPageSize:       types.MaxPageSize,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Database: *database.DefaultConfig(),
	}
}

// Load builds the configuration from the defaults, the YAML file at path
// (skipped when path is empty), a .env file in the working directory and
// the environment.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		if err := parseFile(cfg, path); err != nil {
			return nil, err
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func parseFile(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close() // nolint: errcheck

	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

func parseEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse environment variables: %w", err)
	}
	return nil
}

// Validate checks the values and normalises the log format.
func (c *Config) Validate() error {
	var errs []error
	if c.HTTP.ListenAddr == "" {
		errs = append(errs, errors.New("http.listen_addr is required"))
	}
	if c.HTTP.MaxPageSize < 1 || c.HTTP.MaxPageSize > types.MaxPageSize {
		errs = append(errs, fmt.Errorf("http.max_page_size must be between 1 and %d", types.MaxPageSize))
	}
	if c.HTTP.DefaultPageSize < 1 || c.HTTP.DefaultPageSize > c.HTTP.MaxPageSize {
		errs = append(errs, errors.New("http.default_page_size must be between 1 and http.max_page_size"))
	}
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	switch c.Log.Format {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not one of text, json", c.Log.Format))
	}
	if c.Seed.Members < 0 {
		errs = append(errs, errors.New("seed.members cannot be negative"))
	}
	return errors.Join(errs...)
}

// ApplyLogging configures the shared loggers from c.Log.
func (c *Config) ApplyLogging() {
	utils.ConfigureConsoleLogFormat(c.Log.Format)
	utils.ConfigureLogLevel(c.Log.Level)
	for name, level := range c.Log.Loggers {
		utils.NewLogger(name).SetLevel(utils.ParseLogLevel(level))
	}
}
