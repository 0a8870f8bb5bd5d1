package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ============================================================================
// CONFIGURATION LOADER
// ============================================================================

// Loader handles loading configuration from multiple sources.
type Loader struct {
	// basePath is the root directory for configuration files
	basePath string

	// environment is the current deployment environment
	environment Environment

	// fileLoaders in lookup order; the first extension found wins
	fileLoaders []FileLoader

	// warn receives non-fatal problems such as a broken local.yaml
	warn func(format string, args ...any)
}

// FileLoader decodes one configuration file format.
type FileLoader interface {
	Load(reader io.Reader, target any) error
	Extensions() []string
}

// NewLoader creates a new configuration loader.
func NewLoader(basePath string, env Environment) *Loader {
	if basePath == "" {
		basePath = "config"
	}

	loader := &Loader{
		basePath:    basePath,
		environment: env,
		warn: func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
		},
	}

	loader.RegisterLoader(&YAMLLoader{})
	loader.RegisterLoader(&JSONLoader{})

	return loader
}

// RegisterLoader appends a file loader to the lookup order.
func (l *Loader) RegisterLoader(loader FileLoader) {
	l.fileLoaders = append(l.fileLoaders, loader)
}

// BasePath returns the directory the loader reads from
func (l *Loader) BasePath() string {
	return l.basePath
}

// Environment returns the environment the loader overlays
func (l *Loader) Environment() Environment {
	return l.environment
}

// Load loads configuration using a hierarchy of sources.
// The loading order (from lowest to highest priority):
//  1. Default values (in code)
//  2. Base configuration file (base.yaml)
//  3. Environment-specific file (e.g., production.yaml)
//  4. Local overrides file (local.yaml - development only)
//  5. Environment variables
func (l *Loader) Load() (*Config, error) {
	cfg := Default()
	cfg.Environment = l.environment
	sources := []string{"defaults"}

	if path, err := l.loadFile("base", cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load base config: %w", err)
	} else if path != "" {
		sources = append(sources, path)
	}

	envFile := strings.ToLower(string(l.environment))
	if path, err := l.loadFile(envFile, cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s config: %w", envFile, err)
	} else if path != "" {
		sources = append(sources, path)
	}

	if l.environment == Development {
		if path, err := l.loadFile("local", cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
			l.warn("failed to load local config: %v", err)
		} else if path != "" {
			sources = append(sources, path)
		}
	}

	if err := ApplyEnvironment(cfg); err != nil {
		return nil, err
	}
	sources = append(sources, "environment")

	// Files may not move the environment away from the one being overlaid
	cfg.Environment = l.environment
	cfg.LoadedFrom = sources

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadFile decodes name.<ext> for the first registered extension that exists.
func (l *Loader) loadFile(name string, cfg *Config) (string, error) {
	for _, loader := range l.fileLoaders {
		for _, ext := range loader.Extensions() {
			path := filepath.Join(l.basePath, name+"."+ext)
			if err := decodeFile(path, loader, cfg); err != nil {
				if errors.Is(err, os.ErrNotExist) {
					continue
				}
				return "", err
			}
			return path, nil
		}
	}
	return "", os.ErrNotExist
}

func decodeFile(path string, loader FileLoader, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := loader.Load(file, cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// LoadFile reads a single configuration file on top of the defaults, then
// applies environment variables. The format follows the file extension.
func LoadFile(path string) (*Config, error) {
	var loader FileLoader
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		loader = &YAMLLoader{}
	case ".json":
		loader = &JSONLoader{}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", path)
	}

	cfg := Default()
	if err := decodeFile(path, loader, cfg); err != nil {
		return nil, err
	}
	if err := ApplyEnvironment(cfg); err != nil {
		return nil, err
	}
	cfg.LoadedFrom = []string{"defaults", path, "environment"}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// ApplyEnvironment overlays environment variables on the configuration.
// A variable that is set but cannot be parsed is an error.
func ApplyEnvironment(cfg *Config) error {
	if val := os.Getenv("ENVIRONMENT"); val != "" {
		cfg.Environment = Environment(strings.ToLower(val))
	}

	// Viewport
	if err := envFloat("CANVAS_MIN_SCALE", &cfg.Viewport.MinScale); err != nil {
		return err
	}
	if err := envFloat("CANVAS_MAX_SCALE", &cfg.Viewport.MaxScale); err != nil {
		return err
	}
	if err := envBool("CANVAS_ZOOM_TO_POINTER", &cfg.Viewport.ZoomToPointer); err != nil {
		return err
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		cfg.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		port, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}

	// Logging
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		cfg.Logging.Level = strings.ToLower(val)
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		cfg.Logging.Format = strings.ToLower(val)
	}

	// Metrics
	if err := envBool("METRICS_ENABLED", &cfg.Metrics.Enabled); err != nil {
		return err
	}
	if val := os.Getenv("METRICS_NAMESPACE"); val != "" {
		cfg.Metrics.Namespace = val
	}

	// Tracing
	if err := envBool("TRACING_ENABLED", &cfg.Tracing.Enabled); err != nil {
		return err
	}
	if val := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); val != "" {
		cfg.Tracing.Endpoint = val
	}
	return nil
}

// ============================================================================
// FILE LOADERS
// ============================================================================

// YAMLLoader loads configuration from YAML files.
type YAMLLoader struct{}

func (y *YAMLLoader) Load(reader io.Reader, target any) error {
	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)
	return decoder.Decode(target)
}

func (y *YAMLLoader) Extensions() []string {
	return []string{"yaml", "yml"}
}

// JSONLoader loads configuration from JSON files.
type JSONLoader struct{}

func (j *JSONLoader) Load(reader io.Reader, target any) error {
	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func (j *JSONLoader) Extensions() []string {
	return []string{"json"}
}

// ============================================================================
// HELPER FUNCTIONS
// ============================================================================

func envFloat(key string, target *float64) error {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*target = f
	return nil
}

func envBool(key string, target *bool) error {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*target = b
	return nil
}
