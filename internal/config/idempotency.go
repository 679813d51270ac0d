package config

import "time"

// IdempotencyConfig defines settings for the idempotency middleware,
// which replays the cached response of a completed POST when a client
// retries it with the same Idempotency-Key header.  When Enabled is
// false or no Redis client is configured, the middleware is a no-op.
type IdempotencyConfig struct {
	Enabled bool
	TTL     time.Duration
	Prefix  string
}

// LoadIdempotencyConfig reads environment variables to build an
// IdempotencyConfig.  Defaults are used when variables are not set.
func LoadIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		Enabled: getenv("IDEMPOTENCY_ENABLED", "true") == "true",
		TTL:     parseDur(getenv("IDEMPOTENCY_TTL", "10m")),
		Prefix:  getenv("IDEMPOTENCY_PREFIX", "idemp"),
	}
}

func parseDur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 10 * time.Minute
	}
	return d
}
