package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "mock", cfg.Identity.Provider)
	assert.Equal(t, 1500*time.Millisecond, cfg.Onboarding.AutosaveDebounce)
	assert.Equal(t, 60*time.Second, cfg.Contact.ResendCooldown)
	assert.Equal(t, 100, cfg.Identity.PollMaxAttempts)
	assert.False(t, cfg.Onboarding.GatingRelaxed)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("IDENTITY_PROVIDER", "acme")
	t.Setenv("IDENTITY_POLL_INTERVAL", "500ms")
	t.Setenv("ONBOARDING_GATING_RELAXED", "true")
	t.Setenv("KAFKA_BROKERS", "broker-a:9092, broker-b:9092")

	cfg := FromEnv()

	assert.Equal(t, "acme", cfg.Identity.Provider)
	assert.Equal(t, 500*time.Millisecond, cfg.Identity.PollInterval)
	assert.True(t, cfg.Onboarding.GatingRelaxed)
	assert.Equal(t, []string{"broker-a:9092", "broker-b:9092"}, cfg.Kafka.Brokers)
}
