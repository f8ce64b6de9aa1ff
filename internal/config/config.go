// Package config loads application configuration from an optional YAML file
// with environment overrides. A .env file in the working directory is
// loaded first when present.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Gemini  GeminiConfig  `yaml:"gemini"`
	Storage StorageConfig `yaml:"storage"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// GeminiConfig selects the extraction model. The API key itself is read by
// the genai client from its own env vars and never lives in the file.
type GeminiConfig struct {
	Model string `yaml:"model"`
}

// StorageConfig locates the local key-value data directory used for
// categories and notes. Empty means in-memory only.
type StorageConfig struct {
	DataDir string `yaml:"data_dir"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server:  ServerConfig{Port: 8080},
		Gemini:  GeminiConfig{Model: ""},
		Storage: StorageConfig{DataDir: ".bankstream"},
	}
}

// Load reads configuration: defaults, then the YAML file at path (skipped
// when path is empty or the file does not exist), then env overrides
// PORT, GEMINI_MODEL and DATA_DIR.
func Load(path string) (Config, error) {
	// Best effort; absence of a .env file is the normal case.
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("config: read %q: %w", path, err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parse %q: %w", path, err)
			}
		}
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		cfg.Gemini.Model = v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return Config{}, fmt.Errorf("config: port %d out of range", cfg.Server.Port)
	}
	return cfg, nil
}
