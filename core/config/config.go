package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"chatdash.app/api/core/db"
)

type Config struct {
	OTel         OTelConfig
	Upstream     UpstreamConfig
	Redis        RedisConfig
	Classifier   ClassifierConfig
	Dashboard    DashboardConfig
	Env          string
	Port         string
	DashboardURL string
	SessionTTL   time.Duration
	Location     *time.Location
	DB           db.Config
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
	Environment    string
	SampleRatio    float64 // fraction of root traces kept, 0..1
}

// UpstreamConfig points at the chat platform API that owns the raw conversations.
type UpstreamConfig struct {
	BaseURL    string
	APIToken   string // service token used when no user session is bound
	AuthHeader string // optional extra "Name: value" header sent on every call
	Timeout    time.Duration
}

type RedisConfig struct {
	URL      string
	CacheTTL time.Duration
}

type ClassifierConfig struct {
	Provider string // "keyword" or "openai"
	APIKey   string
	BaseURL  string
	Model    string
	Timeout  time.Duration
	// Concurrency bounds in-flight classification calls per refresh.
	Concurrency int
}

type DashboardConfig struct {
	RefreshInterval      time.Duration
	RefreshRatePerMinute int
	TablePageSize        int
	// IdleTTL evicts session dashboards not read for this long.
	IdleTTL time.Duration
}

// SweepInterval is how often the background worker evicts idle dashboards
// and, when RefreshInterval is set, reloads the live ones.
func (c DashboardConfig) SweepInterval() time.Duration {
	if c.RefreshInterval > 0 {
		return c.RefreshInterval
	}
	return 5 * time.Minute
}

type ServiceType string

const (
	ServiceTypeServer ServiceType = "server"
)

// Load reads configuration from the environment. In development it first
// loads .env.<service>, falling back to .env.
func Load(serviceType ServiceType) (Config, error) {
	if getEnv("CHATDASH_ENV", "development") == "development" {
		envFile := fmt.Sprintf(".env.%s", serviceType)
		if err := godotenv.Load(envFile); err != nil {
			_ = godotenv.Load(".env")
		}
	}

	env := getEnv("CHATDASH_ENV", "development")
	cfg := Config{
		Env:          env,
		Port:         getEnv("PORT", "8080"),
		DashboardURL: getEnv("DASHBOARD_URL", "http://localhost:5173"),
		SessionTTL:   getEnvDuration("SESSION_TTL", 7*24*time.Hour),
		DB: db.Config{
			DSN:      getEnv("DATABASE_URL", ""),
			MaxConns: getEnvInt32("DB_MAX_CONNS", 10),
			MinConns: getEnvInt32("DB_MIN_CONNS", 2),
		},
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "chatdash"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
			Environment:    env,
			SampleRatio:    clampRatio(getEnvFloat("OTEL_TRACES_SAMPLER_ARG", 1)),
		},
		Upstream: UpstreamConfig{
			BaseURL:    strings.TrimRight(getEnv("UPSTREAM_BASE_URL", ""), "/"),
			APIToken:   getEnv("UPSTREAM_API_TOKEN", ""),
			AuthHeader: getEnv("UPSTREAM_AUTH_HEADER", ""),
			Timeout:    getEnvDuration("UPSTREAM_TIMEOUT", 30*time.Second),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", ""),
			CacheTTL: getEnvDuration("CACHE_TTL", 2*time.Minute),
		},
		Classifier: ClassifierConfig{
			Provider: getEnv("CLASSIFIER_PROVIDER", "keyword"),
			APIKey:   getEnv("CLASSIFIER_LLM_API_KEY", ""),
			BaseURL:  getEnv("CLASSIFIER_LLM_BASE_URL", ""),
			Model:    getEnv("CLASSIFIER_LLM_MODEL", "gpt-4o-mini"),
			Timeout:  getEnvDuration("CLASSIFIER_LLM_TIMEOUT", 10*time.Second),

			Concurrency: getEnvInt("CLASSIFIER_LLM_CONCURRENCY", 4),
		},
		Dashboard: DashboardConfig{
			RefreshInterval:      getEnvDuration("REFRESH_INTERVAL", 0),
			RefreshRatePerMinute: getEnvInt("REFRESH_RATE_PER_MINUTE", 6),
			TablePageSize:        getEnvInt("TABLE_PAGE_SIZE", 5),
			IdleTTL:              getEnvDuration("DASHBOARD_IDLE_TTL", 30*time.Minute),
		},
	}

	if cfg.Upstream.BaseURL == "" {
		return Config{}, fmt.Errorf("UPSTREAM_BASE_URL is required")
	}

	loc, err := time.LoadLocation(getEnv("TIMEZONE", "Local"))
	if err != nil {
		return Config{}, fmt.Errorf("loading TIMEZONE: %w", err)
	}
	cfg.Location = loc

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Origins splits DashboardURL into the allowed CORS origins.
func (c Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.DashboardURL, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func (c RedisConfig) Enabled() bool {
	return c.URL != ""
}

func (c ClassifierConfig) Enabled() bool {
	return c.Provider == "openai" && c.APIKey != ""
}

// ExtraHeader splits AuthHeader into name and value.
func (c UpstreamConfig) ExtraHeader() (string, string, bool) {
	name, value, ok := strings.Cut(c.AuthHeader, ":")
	if !ok || strings.TrimSpace(name) == "" {
		return "", "", false
	}
	return strings.TrimSpace(name), strings.TrimSpace(value), true
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt32(key string, fallback int32) int32 {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(i)
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func clampRatio(r float64) float64 {
	return min(max(r, 0), 1)
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
