package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"fight-timeline/internal/constants"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

type Config struct {
	DBPath     string
	ServerPort string
	LogLevel   string

	// when set, sessions read from this data server instead of the local db
	DataAPIURL string

	SessionTTL    time.Duration
	ChartWidth    float64
	ChartHeight   float64
	LabelFontSize float64
}

func Load() (*Config, error) {
	// a missing .env is fine, the environment and defaults still apply
	_ = godotenv.Load()

	cfg := &Config{
		DBPath:     getEnv("DB_PATH", "fights.db"),
		ServerPort: getEnv("SERVER_PORT", "8080"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		DataAPIURL: getEnv("DATA_API_URL", ""),
	}

	var err error
	if cfg.SessionTTL, err = getEnvDuration("SESSION_TTL", constants.SessionTTL); err != nil {
		return nil, err
	}
	if cfg.ChartWidth, err = getEnvFloat("CHART_WIDTH", constants.ChartWidth); err != nil {
		return nil, err
	}
	if cfg.ChartHeight, err = getEnvFloat("CHART_HEIGHT", constants.ChartHeight); err != nil {
		return nil, err
	}
	if cfg.LabelFontSize, err = getEnvFloat("LABEL_FONT_SIZE", constants.LabelFontSize); err != nil {
		return nil, err
	}

	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive, got %s", cfg.SessionTTL)
	}
	if cfg.ChartWidth <= 0 || cfg.ChartHeight <= 0 {
		return nil, fmt.Errorf("CHART_WIDTH and CHART_HEIGHT must be positive, got %gx%g", cfg.ChartWidth, cfg.ChartHeight)
	}
	if cfg.LabelFontSize <= 0 {
		return nil, fmt.Errorf("LABEL_FONT_SIZE must be positive, got %g", cfg.LabelFontSize)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

var Module = fx.Provide(Load)
