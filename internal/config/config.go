package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds service configuration.
type Config struct {
	DatabaseURL         string
	ServerAddr          string
	SessionTTL          time.Duration
	SessionCookieName   string
	SessionCookieSecure bool
	// PaymentGatewayURL points at the external payment provider. Empty
	// means the accept-all development gateway.
	PaymentGatewayURL     string
	PaymentGatewayTimeout time.Duration
	// ListingPolicyRules are semicolon-separated boolean expressions every
	// new listing must satisfy.
	ListingPolicyRules []string
	MigrationsDir      string
}

// Load reads configuration from environment.
func Load() (*Config, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		user := getenv("POSTGRES_USER", "trade_hub")
		pass := getenv("POSTGRES_PASSWORD", "trade_hub_pass")
		db := getenv("POSTGRES_DB", "trade_hub")
		host := getenv("POSTGRES_HOST", "localhost")
		port := getenv("POSTGRES_PORT", "5432")
		sslmode := getenv("DATABASE_SSLMODE", "disable")
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", user, pass, host, port, db, sslmode)
	}
	addr := getenv("SERVER_ADDR", "0.0.0.0:8080")
	ttl := parseDuration(getenv("SESSION_TTL", "24h"), 24*time.Hour)
	cookieName := getenv("SESSION_COOKIE_NAME", "trade_hub_session")
	cookieSecure := parseBool(getenv("SESSION_COOKIE_SECURE", "false"), false)

	var rules []string
	for _, r := range strings.Split(os.Getenv("LISTING_POLICY_RULES"), ";") {
		r = strings.TrimSpace(r)
		if r != "" {
			rules = append(rules, r)
		}
	}

	return &Config{
		DatabaseURL:           dsn,
		ServerAddr:            addr,
		SessionTTL:            ttl,
		SessionCookieName:     cookieName,
		SessionCookieSecure:   cookieSecure,
		PaymentGatewayURL:     os.Getenv("PAYMENT_GATEWAY_URL"),
		PaymentGatewayTimeout: parseDuration(getenv("PAYMENT_GATEWAY_TIMEOUT", "10s"), 10*time.Second),
		ListingPolicyRules:    rules,
		MigrationsDir:         getenv("MIGRATIONS_DIR", "internal/migrations"),
	}, nil
}

func getenv(key, def string) string {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	return val
}

func parseDuration(val string, def time.Duration) time.Duration {
	if val == "" {
		return def
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return def
	}
	return d
}

func parseBool(val string, def bool) bool {
	if val == "" {
		return def
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return def
	}
	return b
}
