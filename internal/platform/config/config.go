package config

import (
	"os"
	"strings"
	"time"
)

// Config captures process-level configuration so main stays lean.
// Every value has a development default; production overrides via environment.
type Config struct {
	Addr          string
	PostgresDSN   string
	RedisURL      string
	KafkaBrokers  []string
	AuditTopic    string
	JWTSigningKey string

	// ReceiptTTL bounds how long a QR scan token stays verifiable in Redis.
	ReceiptTTL time.Duration

	// HTTPReadTimeout and HTTPWriteTimeout bound request handling on the API
	// server. Zero means the server's own defaults.
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	addr := os.Getenv("MADAVOLA_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default - must be overridden in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	auditTopic := os.Getenv("AUDIT_TOPIC")
	if auditTopic == "" {
		auditTopic = "madavola.audit.v1"
	}

	receiptTTL := 30 * 24 * time.Hour
	if raw := os.Getenv("RECEIPT_TTL"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil {
			receiptTTL = parsed
		}
	}

	var readTimeout, writeTimeout time.Duration
	if raw := os.Getenv("HTTP_READ_TIMEOUT"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil {
			readTimeout = parsed
		}
	}
	if raw := os.Getenv("HTTP_WRITE_TIMEOUT"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil {
			writeTimeout = parsed
		}
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	return Config{
		Addr:          addr,
		PostgresDSN:   os.Getenv("POSTGRES_DSN"),
		RedisURL:      os.Getenv("REDIS_URL"),
		KafkaBrokers:  brokers,
		AuditTopic:    auditTopic,
		JWTSigningKey: jwtSigningKey,
		ReceiptTTL:    receiptTTL,

		HTTPReadTimeout:  readTimeout,
		HTTPWriteTimeout: writeTimeout,
	}
}
