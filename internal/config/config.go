package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	Port           string
	Env            string
	CityName       string
	LogLevel       string
	LogFormat      string
	AllowedOrigins []string

	DatabaseURL   string
	ProtocolsPath string

	// Reasoning providers, in priority order: Groq, then Gemini.
	GroqAPIKey       string
	GroqModel        string
	GroqBaseURL      string
	GeminiAPIKey     string
	GeminiModel      string
	GeminiBaseURL    string
	ReasoningTimeout time.Duration

	// Data acquisition.
	UseRealData   bool
	WeatherAPIURL string
	NewsRSSURL    string
	FetchTimeout  time.Duration
	RedisAddr     string
	CacheTTL      time.Duration

	ShutdownTimeout time.Duration
}

const (
	defaultWeatherAPIURL = "https://api.open-meteo.com/v1/forecast?latitude=24.5854&longitude=73.7125&current_weather=true&daily=precipitation_sum&timezone=Asia%2FKolkata"
	defaultNewsRSSURL    = "https://timesofindia.indiatimes.com/rssfeeds/3012535.cms"
)

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	env := getEnv("GO_ENV", "development")
	production := env == "production"

	defaultLevel := "debug"
	defaultTTL := "5m"
	if production {
		defaultLevel = "info"
		defaultTTL = "1h"
	}

	reasoningTimeout, err := parseDuration("REASONING_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	fetchTimeout, err := parseDuration("FETCH_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	cacheTTL, err := parseDuration("CACHE_TTL", defaultTTL)
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		Env:            env,
		CityName:       getEnv("CITY_NAME", "Udaipur"),
		LogLevel:       getEnv("LOG_LEVEL", defaultLevel),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		AllowedOrigins: parseList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:8000,http://127.0.0.1:8000")),

		DatabaseURL:   os.Getenv("DATABASE_URL"),
		ProtocolsPath: getEnv("PROTOCOLS_PATH", "data/protocols.json"),

		GroqAPIKey:       os.Getenv("GROQ_API_KEY"),
		GroqModel:        getEnv("GROQ_MODEL", "llama-3.1-70b-versatile"),
		GroqBaseURL:      getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-2.0-flash-exp"),
		GeminiBaseURL:    getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/models"),
		ReasoningTimeout: reasoningTimeout,

		UseRealData:   strings.EqualFold(getEnv("USE_REAL_DATA", "false"), "true"),
		WeatherAPIURL: getEnv("WEATHER_API_URL", defaultWeatherAPIURL),
		NewsRSSURL:    getEnv("NEWS_RSS_URL", defaultNewsRSSURL),
		FetchTimeout:  fetchTimeout,
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		CacheTTL:      cacheTTL,

		ShutdownTimeout: shutdownTimeout,
	}

	if cfg.CityName == "" {
		return nil, errors.New("CITY_NAME is required")
	}

	return cfg, nil
}

// IsDevelopment reports whether internal error detail may be exposed.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(key, defaultValue string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, defaultValue))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
