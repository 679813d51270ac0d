package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable.  Connection parameters are required and
// enforced by must(); behavioural tunables fall back to sane defaults.
type Config struct {
	Env             string        // application environment (e.g. "dev", "prod")
	Port            string        // HTTP port to listen on
	DBUser          string        // database username
	DBPass          string        // database password (optional)
	DBHost          string        // database host address
	DBPort          string        // database port number
	DBName          string        // database name
	HoldTTL         time.Duration // how long a seat claim is held before it lapses
	ReclaimInterval time.Duration // how often the expiry reclaimer sweeps
	LockTTL         time.Duration // lifetime of per-seat admission locks
	LockBackend     string        // "memory" (single node) or "redis" (multi node)
	SeedDemo        bool          // create schema and demo data on startup
}

// Load reads configuration values from environment variables and returns
// a Config.  Required variables are enforced by must() and missing
// values cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:             must("APP_ENV"),      // environment (dev/test/prod)
		Port:            must("APP_PORT"),     // port to bind the HTTP server
		DBUser:          must("DB_USER"),      // database user
		DBPass:          os.Getenv("DB_PASS"), // database password (empty allowed)
		DBHost:          must("DB_HOST"),      // database host
		DBPort:          must("DB_PORT"),      // database port
		DBName:          must("DB_NAME"),      // database name
		HoldTTL:         seconds(getenv("HOLD_TTL_SEC", "60")),
		ReclaimInterval: seconds(getenv("RECLAIM_INTERVAL_SEC", "5")),
		LockTTL:         seconds(getenv("LOCK_TTL_SEC", "5")),
		LockBackend:     getenv("LOCK_BACKEND", "memory"),
		SeedDemo:        getenv("SEED_DEMO", "true") == "true",
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// getenv returns the variable's value or a default when unset.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// seconds converts a decimal string into a duration in seconds.  An
// unparsable value aborts startup; silently running with a wrong TTL
// would be worse.
func seconds(s string) time.Duration {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		log.Fatalf("invalid duration seconds: %q", s)
	}
	return time.Duration(n) * time.Second
}
