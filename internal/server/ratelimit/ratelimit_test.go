package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    100,
		DefaultWindow:   time.Minute,
		EndpointConfigs: DefaultEndpointConfigs(),
		Whitelist:       make(map[string]bool),
		Blacklist:       make(map[string]bool),
	}
}

func TestLimiter_AllowsWithinBurst(t *testing.T) {
	limiter := NewLimiter(testConfig())
	defer limiter.Stop()

	for i := 0; i < 3; i++ {
		allowed, _ := limiter.Allow("1.2.3.4", "/parse-resume", "POST")
		assert.True(t, allowed, "request %d should be allowed", i)
	}
}

func TestLimiter_BlocksOverBurst(t *testing.T) {
	limiter := NewLimiter(testConfig())
	defer limiter.Stop()

	for i := 0; i < 3; i++ {
		limiter.Allow("1.2.3.4", "/parse-resume", "POST")
	}
	allowed, info := limiter.Allow("1.2.3.4", "/parse-resume", "POST")
	assert.False(t, allowed)
	assert.Greater(t, info.RetryAfter, time.Duration(0))
}

func TestLimiter_ClientsAreIndependent(t *testing.T) {
	limiter := NewLimiter(testConfig())
	defer limiter.Stop()

	for i := 0; i < 3; i++ {
		limiter.Allow("1.2.3.4", "/parse-resume", "POST")
	}
	allowed, _ := limiter.Allow("5.6.7.8", "/parse-resume", "POST")
	assert.True(t, allowed)
}

func TestLimiter_HealthUnlimited(t *testing.T) {
	limiter := NewLimiter(testConfig())
	defer limiter.Stop()

	for i := 0; i < 100; i++ {
		allowed, _ := limiter.Allow("1.2.3.4", "/health", "GET")
		require.True(t, allowed)
	}
}

func TestLimiter_WhitelistBypasses(t *testing.T) {
	config := testConfig()
	config.Whitelist["1.2.3.4"] = true
	limiter := NewLimiter(config)
	defer limiter.Stop()

	for i := 0; i < 50; i++ {
		allowed, _ := limiter.Allow("1.2.3.4", "/parse-resume", "POST")
		require.True(t, allowed)
	}
}

func TestLimiter_BlacklistAlwaysDenied(t *testing.T) {
	config := testConfig()
	config.Blacklist["6.6.6.6"] = true
	limiter := NewLimiter(config)
	defer limiter.Stop()

	allowed, _ := limiter.Allow("6.6.6.6", "/health", "GET")
	assert.False(t, allowed)
}

func TestLimiter_DisabledAllowsEverything(t *testing.T) {
	config := testConfig()
	config.Enabled = false
	limiter := NewLimiter(config)
	defer limiter.Stop()

	for i := 0; i < 50; i++ {
		allowed, _ := limiter.Allow("1.2.3.4", "/parse-resume", "POST")
		require.True(t, allowed)
	}
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs()

	match := MatchEndpoint("/parse-resume", "POST", configs)
	require.NotNil(t, match)
	assert.Equal(t, 10, match.Limit)

	assert.Nil(t, MatchEndpoint("/parse-resume", "GET", configs))
	assert.Nil(t, MatchEndpoint("/matches", "GET", configs))

	health := MatchEndpoint("/health", "GET", configs)
	require.NotNil(t, health)
	assert.LessOrEqual(t, health.Limit, 0)
}
