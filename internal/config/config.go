package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server      ServerConfig
	Redis       RedisConfig
	Postgres    PostgresConfig
	Preferences PreferencesConfig
	Gemini      GeminiConfig
	OpenAI      OpenAIConfig
	Trademark   TrademarkConfig
	DNS         DNSConfig
	Engine      EngineConfig
	Logging     LoggingConfig
}

type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// PreferencesConfig selects where the selected-TLD preference lives:
// "redis", "postgres" or "memory".
type PreferencesConfig struct {
	Backend string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type OpenAIConfig struct {
	APIKey         string
	Model          string
	EnableFallback bool
}

// TrademarkConfig is optional. An empty APIKey switches trademark checks to
// the manual-search hand-off.
type TrademarkConfig struct {
	APIKey  string
	BaseURL string
}

type DNSConfig struct {
	DoHURL string
}

type EngineConfig struct {
	SweepBatchSize  int
	AvailabilityTTL time.Duration
}

type LoggingConfig struct {
	Level  string
	File   string
	Format string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Addr:            getEnv("SERVER_ADDR", ":8080"),
			ReadTimeout:     time.Duration(getEnvInt("SERVER_READ_TIMEOUT_SECONDS", 15)) * time.Second,
			WriteTimeout:    time.Duration(getEnvInt("SERVER_WRITE_TIMEOUT_SECONDS", 60)) * time.Second,
			AllowedOrigins:  parseCommaSeparated(getEnv("SERVER_ALLOWED_ORIGINS", "")),
			ShutdownTimeout: time.Duration(getEnvInt("SERVER_SHUTDOWN_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", true),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Postgres: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "namebender"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			Database: getEnv("POSTGRES_DB", "namebender"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		Preferences: PreferencesConfig{
			Backend: strings.ToLower(getEnv("PREFERENCES_BACKEND", "redis")),
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", getEnv("API_KEY", "")),
			Model:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		},
		OpenAI: OpenAIConfig{
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			Model:          getEnv("OPENAI_MODEL", "gpt-5-mini"),
			EnableFallback: getEnvBool("OPENAI_ENABLE_FALLBACK", true),
		},
		Trademark: TrademarkConfig{
			APIKey:  getEnv("EUIPO_API_KEY", ""),
			BaseURL: getEnv("EUIPO_API_URL", ""),
		},
		DNS: DNSConfig{
			DoHURL: getEnv("DOH_URL", ""),
		},
		Engine: EngineConfig{
			SweepBatchSize:  getEnvInt("SWEEP_BATCH_SIZE", 20),
			AvailabilityTTL: time.Duration(getEnvInt("AVAILABILITY_CACHE_TTL_SECONDS", 600)) * time.Second,
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			File:   getEnv("LOG_FILE", ""),
			Format: getEnv("LOG_FORMAT", "console"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("SERVER_ADDR is required")
	}
	if c.Gemini.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	if c.Engine.SweepBatchSize <= 0 {
		return fmt.Errorf("SWEEP_BATCH_SIZE must be positive, got %d", c.Engine.SweepBatchSize)
	}
	switch c.Preferences.Backend {
	case "redis":
		if !c.Redis.Enabled {
			return fmt.Errorf("PREFERENCES_BACKEND=redis requires REDIS_ENABLED")
		}
	case "postgres", "memory":
	default:
		return fmt.Errorf("unknown PREFERENCES_BACKEND %q", c.Preferences.Backend)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func parseCommaSeparated(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
