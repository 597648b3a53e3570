// Package config loads dictado settings from the workspace and environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/dictado/pkg/ai"
	"github.com/felixgeelhaar/dictado/pkg/storage"
)

// ConfigFile is the YAML file read from the .dictado directory.
const ConfigFile = "config.yaml"

// EnvFile is the dotenv file read from the workspace root.
const EnvFile = ".env"

// Config holds all application configuration.
type Config struct {
	AI       AIConfig       `yaml:"ai"`
	Store    StoreConfig    `yaml:"store"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
}

// AIConfig selects the language model used for classification and
// extraction fallbacks.
type AIConfig struct {
	Provider    string `yaml:"provider"`
	Model       string `yaml:"model"`
	BaseURL     string `yaml:"base_url"`
	TimeoutMs   int    `yaml:"timeout_ms"`
	MaxAttempts int    `yaml:"max_attempts"`
}

type StoreConfig struct {
	Backend   string `yaml:"backend"`
	Path      string `yaml:"path"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

type PipelineConfig struct {
	SearchLimit int    `yaml:"search_limit"`
	ListPreview int    `yaml:"list_preview"`
	Timezone    string `yaml:"timezone"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		AI: AIConfig{
			Provider:    "none",
			TimeoutMs:   8000,
			MaxAttempts: 1,
		},
		Store: StoreConfig{
			Backend:   storage.BackendFilesystem,
			TimeoutMs: 5000,
		},
		Pipeline: PipelineConfig{
			SearchLimit: 10,
			ListPreview: 3,
			Timezone:    "Local",
		},
		Server: ServerConfig{Addr: ":8080"},
		Log:    LogConfig{Level: "info", Format: "text"},
	}
}

// Load builds the configuration for the workspace at root. Later sources
// win: defaults, .dictado/config.yaml, .env, then DICTADO_* variables.
func Load(root string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(filepath.Join(root, storage.DictadoDir, ConfigFile)); err != nil {
		return nil, err
	}

	// godotenv never overrides variables already set in the process.
	if err := godotenv.Load(filepath.Join(root, EnvFile)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", EnvFile, err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Save writes cfg to .dictado/config.yaml under root.
func Save(root string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	dir := filepath.Join(root, storage.DictadoDir)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create %s: %w", storage.DictadoDir, err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, ConfigFile), data, 0600)
}

func (c *Config) loadFile(path string) error {
	// #nosec G304 -- path is built from the workspace root
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.AI.Provider = getEnv("DICTADO_AI_PROVIDER", c.AI.Provider)
	c.AI.Model = getEnv("DICTADO_AI_MODEL", c.AI.Model)
	c.AI.BaseURL = getEnv("DICTADO_AI_BASE_URL", c.AI.BaseURL)
	c.AI.TimeoutMs = getEnvInt("DICTADO_AI_TIMEOUT_MS", c.AI.TimeoutMs)
	c.AI.MaxAttempts = getEnvInt("DICTADO_AI_MAX_ATTEMPTS", c.AI.MaxAttempts)

	c.Store.Backend = getEnv("DICTADO_STORE_BACKEND", c.Store.Backend)
	c.Store.Path = getEnv("DICTADO_STORE_PATH", c.Store.Path)
	c.Store.TimeoutMs = getEnvInt("DICTADO_STORE_TIMEOUT_MS", c.Store.TimeoutMs)

	c.Pipeline.SearchLimit = getEnvInt("DICTADO_SEARCH_LIMIT", c.Pipeline.SearchLimit)
	c.Pipeline.ListPreview = getEnvInt("DICTADO_LIST_PREVIEW", c.Pipeline.ListPreview)
	c.Pipeline.Timezone = getEnv("DICTADO_TIMEZONE", c.Pipeline.Timezone)

	c.Server.Addr = getEnv("DICTADO_ADDR", c.Server.Addr)

	c.Log.Level = getEnv("DICTADO_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("DICTADO_LOG_FORMAT", c.Log.Format)
	c.Log.Source = getEnvBool("DICTADO_LOG_SOURCE", c.Log.Source)
}

// Validate checks that every field holds a usable value.
func (c *Config) Validate() error {
	if !slices.Contains(ai.ProviderNames, strings.ToLower(c.AI.Provider)) && c.AI.Provider != "" {
		return fmt.Errorf("ai.provider %q is not one of %s", c.AI.Provider, strings.Join(ai.ProviderNames, ", "))
	}
	if c.AI.TimeoutMs <= 0 {
		return fmt.Errorf("ai.timeout_ms must be > 0")
	}
	if c.AI.MaxAttempts <= 0 {
		return fmt.Errorf("ai.max_attempts must be > 0")
	}
	switch c.Store.Backend {
	case storage.BackendFilesystem, storage.BackendSQLite:
	default:
		return fmt.Errorf("store.backend %q is not one of filesystem, sqlite", c.Store.Backend)
	}
	if c.Store.TimeoutMs <= 0 {
		return fmt.Errorf("store.timeout_ms must be > 0")
	}
	if c.Pipeline.SearchLimit <= 0 {
		return fmt.Errorf("pipeline.search_limit must be > 0")
	}
	if c.Pipeline.ListPreview < 0 {
		return fmt.Errorf("pipeline.list_preview must be >= 0")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr cannot be empty")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format %q is not one of text, json", c.Log.Format)
	}
	return nil
}

// Location resolves the pipeline timezone used for relative dates.
func (c *Config) Location() (*time.Location, error) {
	switch c.Pipeline.Timezone {
	case "", "Local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Pipeline.Timezone)
	if err != nil {
		return nil, fmt.Errorf("pipeline.timezone: %w", err)
	}
	return loc, nil
}

func (c *Config) AITimeout() time.Duration {
	return time.Duration(c.AI.TimeoutMs) * time.Millisecond
}

func (c *Config) StoreTimeout() time.Duration {
	return time.Duration(c.Store.TimeoutMs) * time.Millisecond
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}
