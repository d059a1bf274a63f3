package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig defines rate limiting for a specific endpoint.
type EndpointConfig struct {
	Path   string
	Method string
	Limit  int           // requests per window, <= 0 means unlimited
	Window time.Duration
	Burst  int           // bucket capacity, defaults to Limit
}

// Config holds rate limiter configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	EndpointConfigs []EndpointConfig
	Whitelist       map[string]bool
	Blacklist       map[string]bool
}

// DefaultEndpointConfigs returns per-endpoint limits. Resume parsing fans
// out to the LLM twice per upload, so it gets the tightest budget.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		{Path: "/parse-resume", Method: "POST", Limit: 10, Window: time.Hour, Burst: 3},
		{Path: "/auth/register", Method: "POST", Limit: 10, Window: time.Hour, Burst: 5},
		{Path: "/auth/login", Method: "POST", Limit: 30, Window: time.Hour, Burst: 10},
		{Path: "/save-profile", Method: "GET", Limit: 300, Window: time.Minute, Burst: 60},
		{Path: "/match", Method: "POST", Limit: 120, Window: time.Minute, Burst: 30},
		{Path: "/health", Method: "GET", Limit: 0}, // unlimited
	}
}

// LoadConfig loads rate limiter configuration from environment variables.
func LoadConfig() *Config {
	return &Config{
		Enabled:         getEnvBool("RATE_LIMIT_ENABLED", true),
		DefaultLimit:    getEnvInt("RATE_LIMIT_DEFAULT_LIMIT", 1000),
		DefaultWindow:   getEnvDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		EndpointConfigs: DefaultEndpointConfigs(),
		Whitelist:       parseIPList(os.Getenv("RATE_LIMIT_WHITELIST")),
		Blacklist:       parseIPList(os.Getenv("RATE_LIMIT_BLACKLIST")),
	}
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func parseIPList(value string) map[string]bool {
	result := make(map[string]bool)
	if value == "" {
		return result
	}
	for _, ip := range strings.Split(value, ",") {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			result[ip] = true
		}
	}
	return result
}
