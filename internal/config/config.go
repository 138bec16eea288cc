// Package config loads server configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Scene analysis backends.
const (
	BackendGemini = "gemini"
	BackendOllama = "ollama"
	BackendLocal  = "local"
	BackendNone   = "none"
)

// Config holds server configuration.
type Config struct {
	LogLevel slog.Level

	// Scene analysis
	SceneBackend     string
	GeminiAPIKey     string
	GeminiModel      string
	OllamaURL        string
	OllamaModel      string
	AnalyzeTimeout   time.Duration
	ModelMaxDim      int
	ModelJPEGQuality int

	// Generative replacement; enabled when GeminiAPIKey is set
	CompositeModel   string
	CompositeTimeout time.Duration

	// Rendering
	OutputFormat string
	StrokeColor  string
	AccentColor  string
}

// LoadDotEnv reads KEY=VALUE pairs from path into the process environment.
// Variables already set are not overridden. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load builds a Config from the environment and validates it.
func Load() (*Config, error) {
	apiKey := getEnv("GEMINI_API_KEY", "")
	defaultBackend := BackendLocal
	if apiKey != "" {
		defaultBackend = BackendGemini
	}

	cfg := &Config{
		LogLevel:         parseLevel(getEnv("ROOMSWAP_LOG_LEVEL", "info")),
		SceneBackend:     strings.ToLower(getEnv("ROOMSWAP_SCENE_BACKEND", defaultBackend)),
		GeminiAPIKey:     apiKey,
		GeminiModel:      getEnv("ROOMSWAP_GEMINI_MODEL", "gemini-2.5-flash"),
		OllamaURL:        getEnv("ROOMSWAP_OLLAMA_URL", "http://localhost:11434"),
		OllamaModel:      getEnv("ROOMSWAP_OLLAMA_MODEL", "qwen2.5vl:7b"),
		AnalyzeTimeout:   time.Duration(getEnvInt("ROOMSWAP_ANALYZE_TIMEOUT", 120)) * time.Second,
		ModelMaxDim:      getEnvInt("ROOMSWAP_MODEL_MAX_DIM", 1536),
		ModelJPEGQuality: getEnvInt("ROOMSWAP_MODEL_JPEG_QUALITY", 85),
		CompositeModel:   getEnv("ROOMSWAP_COMPOSITE_MODEL", "gemini-2.5-flash-image"),
		CompositeTimeout: time.Duration(getEnvInt("ROOMSWAP_COMPOSITE_TIMEOUT", 180)) * time.Second,
		OutputFormat:     strings.ToLower(getEnv("ROOMSWAP_OUTPUT_FORMAT", "png")),
		StrokeColor:      getEnv("ROOMSWAP_STROKE_COLOR", ""),
		AccentColor:      getEnv("ROOMSWAP_ACCENT_COLOR", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.SceneBackend {
	case BackendGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for the gemini backend")
		}
	case BackendOllama:
		if c.OllamaURL == "" || c.OllamaModel == "" {
			return fmt.Errorf("ROOMSWAP_OLLAMA_URL and ROOMSWAP_OLLAMA_MODEL are required for the ollama backend")
		}
	case BackendLocal, BackendNone:
	default:
		return fmt.Errorf("ROOMSWAP_SCENE_BACKEND must be one of gemini, ollama, local, none; got %q", c.SceneBackend)
	}

	switch c.OutputFormat {
	case "png", "jpeg", "jpg", "webp":
	default:
		return fmt.Errorf("ROOMSWAP_OUTPUT_FORMAT must be png, jpeg or webp; got %q", c.OutputFormat)
	}

	if c.AnalyzeTimeout <= 0 {
		return fmt.Errorf("ROOMSWAP_ANALYZE_TIMEOUT must be positive, got %v", c.AnalyzeTimeout)
	}
	if c.CompositeTimeout <= 0 {
		return fmt.Errorf("ROOMSWAP_COMPOSITE_TIMEOUT must be positive, got %v", c.CompositeTimeout)
	}
	if c.ModelMaxDim < 64 || c.ModelMaxDim > 8192 {
		return fmt.Errorf("ROOMSWAP_MODEL_MAX_DIM must be between 64 and 8192, got %d", c.ModelMaxDim)
	}
	if c.ModelJPEGQuality < 1 || c.ModelJPEGQuality > 100 {
		return fmt.Errorf("ROOMSWAP_MODEL_JPEG_QUALITY must be between 1 and 100, got %d", c.ModelJPEGQuality)
	}
	return nil
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
