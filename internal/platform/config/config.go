package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures everything main needs to wire the service. FromEnv keeps
// parsing and defaulting here so main stays lean.
type Config struct {
	Addr          string
	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string

	Redis    RedisConfig
	Postgres PostgresConfig
	Kafka    KafkaConfig

	Onboarding OnboardingConfig
	Contact    ContactConfig
	Identity   IdentityConfig
}

// RedisConfig holds connection settings for the shared Redis client.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PostgresConfig holds the DSN for the relational stores. Empty DSN means the
// in-memory stores are used.
type PostgresConfig struct {
	DSN string
}

// KafkaConfig holds audit-trail publishing settings. Empty brokers means the
// in-process channel publisher is used.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// OnboardingConfig tunes the wizard controller.
type OnboardingConfig struct {
	AutosaveDebounce time.Duration
	// GatingRelaxed disables strict step gating so reviewers can walk the
	// wizard freely. Off in production.
	GatingRelaxed bool
}

// ContactConfig tunes OTP delivery.
type ContactConfig struct {
	ResendCooldown time.Duration
	CodeTTL        time.Duration
}

// IdentityConfig tunes the verification session poller.
type IdentityConfig struct {
	// Provider selects the identity.Provider adapter; only "mock" ships.
	// A real verification backend registers its name in main's switch.
	Provider        string
	PollInterval    time.Duration
	PollMaxAttempts int
	QRTemplate      string
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	return Config{
		Addr:          envString("SELLERFLOW_ADDR", ":8080"),
		JWTSigningKey: envString("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		JWTIssuer:     envString("JWT_ISSUER", "sellerflow"),
		JWTAudience:   envString("JWT_AUDIENCE", "sellerflow-api"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Postgres: PostgresConfig{
			DSN: os.Getenv("POSTGRES_DSN"),
		},
		Kafka: KafkaConfig{
			Brokers: envList("KAFKA_BROKERS"),
			Topic:   envString("KAFKA_AUDIT_TOPIC", "sellerflow.audit"),
		},
		Onboarding: OnboardingConfig{
			AutosaveDebounce: envDuration("ONBOARDING_AUTOSAVE_DEBOUNCE", 1500*time.Millisecond),
			GatingRelaxed:    os.Getenv("ONBOARDING_GATING_RELAXED") == "true",
		},
		Contact: ContactConfig{
			ResendCooldown: envDuration("CONTACT_RESEND_COOLDOWN", 60*time.Second),
			CodeTTL:        envDuration("CONTACT_CODE_TTL", 10*time.Minute),
		},
		Identity: IdentityConfig{
			Provider:        envString("IDENTITY_PROVIDER", "mock"),
			PollInterval:    envDuration("IDENTITY_POLL_INTERVAL", 3*time.Second),
			PollMaxAttempts: envInt("IDENTITY_POLL_MAX_ATTEMPTS", 100),
			QRTemplate:      envString("IDENTITY_QR_TEMPLATE", "https://api.qrserver.com/v1/create-qr-code/?size=200x200&data=%s"),
		},
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
