package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server    ServerConfig
	Providers ProvidersConfig
	Cache     CacheConfig
	Engine    EngineConfig
	Batch     BatchConfig
	Monitor   MonitorConfig
	Worker    WorkerConfig
	Auth      AuthConfig
	DB        DatabaseConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type ProvidersConfig struct {
	WeatherURL    string
	WeatherAPIKey string
	ElevationURL  string
	OverpassURL   string
	GovDataURL    string
	GovDataAPIKey string
	Timeout       time.Duration
}

type CacheConfig struct {
	WeatherTTL        time.Duration
	ElevationTTL      time.Duration
	InfrastructureTTL time.Duration
	GovDataTTL        time.Duration
	MaxEntries        int
}

type EngineConfig struct {
	ScorerTimeout time.Duration
}

type BatchConfig struct {
	GroupSize   int
	PacingDelay time.Duration
}

type MonitorConfig struct {
	Provinces    []string
	PollInterval time.Duration
}

type WorkerConfig struct {
	Count      int
	BufferSize int
}

type AuthConfig struct {
	JWTSecret   string
	TokenExpiry time.Duration
}

type DatabaseConfig struct {
	Path string
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "localhost"),
			Port: getEnvInt("SERVER_PORT", 8080),
		},
		Providers: ProvidersConfig{
			WeatherURL:    getEnv("WEATHER_API_URL", "https://api.weatherapi.com"),
			WeatherAPIKey: getEnv("WEATHER_API_KEY", ""),
			ElevationURL:  getEnv("ELEVATION_API_URL", "https://api.open-elevation.com"),
			OverpassURL:   getEnv("OVERPASS_API_URL", "https://overpass-api.de"),
			GovDataURL:    getEnv("GOVDATA_API_URL", "http://localhost:8090"),
			GovDataAPIKey: getEnv("GOVDATA_API_KEY", ""),
			Timeout:       getEnvDuration("PROVIDER_TIMEOUT", 15*time.Second),
		},
		Cache: CacheConfig{
			WeatherTTL:        getEnvDuration("CACHE_WEATHER_TTL", 10*time.Minute),
			ElevationTTL:      getEnvDuration("CACHE_ELEVATION_TTL", 24*time.Hour),
			InfrastructureTTL: getEnvDuration("CACHE_INFRASTRUCTURE_TTL", time.Hour),
			GovDataTTL:        getEnvDuration("CACHE_GOVDATA_TTL", 24*time.Hour),
			MaxEntries:        getEnvInt("CACHE_MAX_ENTRIES", 256),
		},
		Engine: EngineConfig{
			ScorerTimeout: getEnvDuration("SCORER_TIMEOUT", 10*time.Second),
		},
		Batch: BatchConfig{
			GroupSize:   getEnvInt("BATCH_GROUP_SIZE", 5),
			PacingDelay: getEnvDuration("BATCH_PACING_DELAY", 2*time.Second),
		},
		Monitor: MonitorConfig{
			Provinces:    getEnvList("MONITOR_PROVINCES", []string{"An Giang", "Dong Thap", "Can Tho"}),
			PollInterval: getEnvDuration("MONITOR_POLL_INTERVAL", 5*time.Minute),
		},
		Worker: WorkerConfig{
			Count:      getEnvInt("WORKER_COUNT", 2),
			BufferSize: getEnvInt("WORKER_BUFFER_SIZE", 20),
		},
		Auth: AuthConfig{
			JWTSecret:   getEnv("JWT_SECRET", "dev-secret-change-me"),
			TokenExpiry: getEnvDuration("TOKEN_EXPIRY", 24*time.Hour),
		},
		DB: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/flood-risk.db"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvFloat("RATE_LIMIT_RPS", 10),
			Burst:             getEnvInt("RATE_LIMIT_BURST", 20),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	for name, ttl := range map[string]time.Duration{
		"weather":        c.Cache.WeatherTTL,
		"elevation":      c.Cache.ElevationTTL,
		"infrastructure": c.Cache.InfrastructureTTL,
		"govdata":        c.Cache.GovDataTTL,
	} {
		if ttl <= 0 {
			return fmt.Errorf("%s cache TTL must be positive", name)
		}
	}
	if c.Cache.MaxEntries < 1 {
		return fmt.Errorf("cache max entries must be at least 1, got %d", c.Cache.MaxEntries)
	}

	if c.Engine.ScorerTimeout <= 0 {
		return fmt.Errorf("scorer timeout must be positive")
	}
	if c.Batch.GroupSize < 1 {
		return fmt.Errorf("batch group size must be at least 1, got %d", c.Batch.GroupSize)
	}
	if c.Batch.PacingDelay < 0 {
		return fmt.Errorf("batch pacing delay cannot be negative")
	}

	if c.Monitor.PollInterval < time.Minute {
		return fmt.Errorf("monitor poll interval must be at least 1 minute")
	}
	if c.Worker.Count < 1 {
		return fmt.Errorf("worker count must be at least 1, got %d", c.Worker.Count)
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret must not be empty")
	}
	if c.Auth.TokenExpiry <= 0 {
		return fmt.Errorf("token expiry must be positive")
	}

	if c.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("rate limit must be positive")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	if val := os.Getenv(key); val != "" {
		parts := strings.Split(val, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if s := strings.TrimSpace(p); s != "" {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return fallback
}
