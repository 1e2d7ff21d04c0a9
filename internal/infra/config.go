package infra

import (
	"fmt"
	"os"
	"strconv"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	StoragePath string

	// Resize/compress bounds applied to every processed upload.
	MaxDimension int
	TargetBytes  int64

	// Reflection defaults; individual invocations may override them.
	ReflectionIntensity float64
	ReflectionHeight    float64
	ReflectionBlur      float64
	ReflectionFade      float64
	ReflectionOffsetPX  int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:              getEnv("APP_ENV", "development"),
		StoragePath:         getEnv("STORAGE_PATH", "./storage"),
		MaxDimension:        getEnvInt("MAX_DIMENSION", 2048),
		TargetBytes:         getEnvInt64("TARGET_BYTES", 5<<20),
		ReflectionIntensity: getEnvFloat("REFLECTION_INTENSITY", 0.35),
		ReflectionHeight:    getEnvFloat("REFLECTION_HEIGHT", 0.4),
		ReflectionBlur:      getEnvFloat("REFLECTION_BLUR", 2),
		ReflectionFade:      getEnvFloat("REFLECTION_FADE", 0.5),
		ReflectionOffsetPX:  getEnvInt("REFLECTION_OFFSET_PX", 0),
	}

	if cfg.MaxDimension <= 0 {
		return nil, fmt.Errorf("MAX_DIMENSION must be positive, got %d", cfg.MaxDimension)
	}

	if cfg.TargetBytes <= 0 {
		return nil, fmt.Errorf("TARGET_BYTES must be positive, got %d", cfg.TargetBytes)
	}

	for _, ratio := range []struct {
		name  string
		value float64
	}{
		{"REFLECTION_INTENSITY", cfg.ReflectionIntensity},
		{"REFLECTION_HEIGHT", cfg.ReflectionHeight},
		{"REFLECTION_FADE", cfg.ReflectionFade},
	} {
		if ratio.value < 0 || ratio.value > 1 {
			return nil, fmt.Errorf("%s must be within [0,1], got %v", ratio.name, ratio.value)
		}
	}

	if cfg.ReflectionBlur < 0 {
		return nil, fmt.Errorf("REFLECTION_BLUR must not be negative, got %v", cfg.ReflectionBlur)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
