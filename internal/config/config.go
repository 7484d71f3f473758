package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request deadline, at least FetchTimeout plus 5s; 0 disables it

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	DBPath    string // SQLite file, ":memory:" for a throwaway database
	JWTSecret string // HS256 secret shared with the identity provider

	FetchTimeout   time.Duration // bound on one outbound page fetch
	FetchMaxBytes  int64         // body bytes read from a page
	FetchUserAgent string

	// Redis (optional, empty address => in-process locks)
	RedisAddr           string
	RedisPassword       string
	RedisDB             int
	RedisConnectTimeout time.Duration

	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict /healthz, /readyz and /infra to these IPs
	TrustProxy   bool     // true => trust X-Forwarded-For headers
	CORSOrigins  []string // allowed browser origins, "*" for any

	RateLimitBurst     int // bookmark writes allowed in a burst, per client IP
	RateLimitPerMinute int // bookmark write refill rate, per client IP
}

// Load reads the configuration from the environment, falling back to the
// YAML file named by MARKS_CONFIG_FILE and then to defaults.
// It panics when a required value is missing.
func Load() *Config {
	e := env{}
	if path := os.Getenv("MARKS_CONFIG_FILE"); path != "" {
		file, err := readFile(path)
		if err != nil {
			panic(fmt.Sprintf("❌ FATAL: %v", err))
		}
		e.file = file
	}
	return e.load()
}

// requestSlack is the minimum headroom a request keeps after its page fetch
// times out, so the bookmark can still be saved without metadata.
const requestSlack = 5 * time.Second

func (e env) load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      e.getenv("MARKS_LISTEN_PORT", ":8080"),
		ShutdownTimeout: e.mustDuration("MARKS_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  e.mustDuration("MARKS_REQUEST_TIMEOUT", 20*time.Second),

		// Logging
		LogLevel:  e.getenv("MARKS_LOG_LEVEL", "info"),
		PrettyLog: e.mustBool("MARKS_PRETTY_LOG", false),

		// Storage and identity
		DBPath:    e.getenv("MARKS_DB_PATH", "marks.db"),
		JWTSecret: e.requireEnv("MARKS_JWT_SECRET"),

		// Metadata fetch
		FetchTimeout:   e.mustDuration("MARKS_FETCH_TIMEOUT", 10*time.Second),
		FetchMaxBytes:  int64(e.getenvInt("MARKS_FETCH_MAX_BYTES", 5<<20)),
		FetchUserAgent: e.getenv("MARKS_FETCH_USER_AGENT", "marks/1.0 (+bookmark preview)"),

		// Redis settings
		RedisAddr:           e.getenv("MARKS_REDIS_ADDR", ""),
		RedisPassword:       e.getenv("MARKS_REDIS_PASSWORD", ""),
		RedisDB:             e.getenvInt("MARKS_REDIS_DB", 0),
		RedisConnectTimeout: e.mustDuration("MARKS_REDIS_CONNECT_TIMEOUT", 15*time.Second),

		// Access restrictions
		AllowedHosts: splitAndTrim(e.getenv("MARKS_ALLOWED_HOSTS", "")),
		AllowedCIDRS: splitAndTrim(e.getenv("MARKS_ALLOWED_CIDRS", "")),
		TrustProxy:   e.mustBool("MARKS_TRUST_PROXY", false),
		CORSOrigins:  splitAndTrim(e.getenv("MARKS_CORS_ORIGINS", "")),

		RateLimitBurst:     e.getenvInt("MARKS_RATE_LIMIT_BURST", 20),
		RateLimitPerMinute: e.getenvInt("MARKS_RATE_LIMIT_PER_MINUTE", 30),
	}

	// 0 disables the request deadline; anything else must outlast the fetch.
	if floor := cfg.FetchTimeout + requestSlack; cfg.RequestTimeout > 0 && cfg.RequestTimeout < floor {
		fmt.Fprintf(os.Stderr, "⚠️ MARKS_REQUEST_TIMEOUT %s is shorter than the fetch timeout plus %s, using %s\n",
			cfg.RequestTimeout, requestSlack, floor)
		cfg.RequestTimeout = floor
	}
	return cfg
}

// Redacted returns a copy safe to log.
func (c Config) Redacted() Config {
	if c.JWTSecret != "" {
		c.JWTSecret = "***REDACTED***"
	}
	if c.RedisPassword != "" {
		c.RedisPassword = "***REDACTED***"
	}
	return c
}

// env resolves keys from the process environment first, then from the file overlay.
type env struct {
	file map[string]string
}

// readFile loads a flat YAML mapping. Keys are either the full variable name
// (MARKS_FETCH_TIMEOUT) or its short lowercase form (fetch_timeout).
func readFile(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	out := make(map[string]string, len(doc))
	for k, v := range doc {
		key := strings.ToUpper(k)
		if !strings.HasPrefix(key, "MARKS_") {
			key = "MARKS_" + key
		}
		switch val := v.(type) {
		case nil:
		case []any:
			parts := make([]string, 0, len(val))
			for _, p := range val {
				parts = append(parts, fmt.Sprint(p))
			}
			out[key] = strings.Join(parts, ",")
		default:
			out[key] = fmt.Sprint(val)
		}
	}
	return out, nil
}

// helpers
func (e env) lookup(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return e.file[key]
}

func (e env) getenv(key, def string) string {
	if v := e.lookup(key); v != "" {
		return v
	}
	return def
}

func (e env) requireEnv(key string) string {
	v := e.lookup(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func (e env) getenvInt(key string, def int) int {
	if v := e.lookup(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func (e env) mustBool(key string, def bool) bool {
	if v := e.lookup(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func (e env) mustDuration(key string, def time.Duration) time.Duration {
	if v := e.lookup(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
