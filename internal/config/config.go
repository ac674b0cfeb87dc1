// Package config provides application configuration loaded from environment
// variables with defaults and validation. It covers the HTTP adapter, logging,
// the state blob location, the simulated collaborators' delays, the country
// directory, rate limiting and observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "go-chat-store")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	MaxBodyBytes int64 // request body cap; image data URLs ride in message bodies

	// Logging
	LogLevel    string // debug|info|warn|error|fatal|panic
	LogPretty   bool   // pretty console logs in dev
	APIBasePath string // base path for API routes

	// Storage
	DBPath      string // SQLite path holding the state blob
	StorageName string // name of the persisted blob

	// Simulated collaborators
	ReplyDelay        time.Duration // wait before asking the responder
	ResponderMinDelay time.Duration // lower bound of a reply's latency
	ResponderMaxDelay time.Duration // upper bound of a reply's latency
	OTPDelay          time.Duration // latency of SendOTP / VerifyOTP

	// Country directory
	CountriesURL string
	CountriesTTL time.Duration

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)
	// OTP routes are keyed by client IP and limited separately.
	OTPRateRPS   float64
	OTPRateBurst int

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Idempotency
	IdempotencyTTL time.Duration // how long a given Idempotency-Key is valid

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),
		MaxBodyBytes:      int64(getint("MAX_BODY_BYTES", 8<<20)),

		// Logging
		LogLevel:    strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:   getbool("LOG_PRETTY", false),
		APIBasePath: normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		// Storage
		DBPath:      getenv("DB_PATH", "chatstore.db"),
		StorageName: strings.TrimSpace(getenv("STORAGE_NAME", "gemini-chat-storage")),

		// Simulated collaborators
		ReplyDelay:        getdur("REPLY_DELAY", time.Second),
		ResponderMinDelay: getdur("RESPONDER_MIN_DELAY", 2*time.Second),
		ResponderMaxDelay: getdur("RESPONDER_MAX_DELAY", 5*time.Second),
		OTPDelay:          getdur("OTP_DELAY", time.Second),

		// Country directory
		CountriesURL: getenv("COUNTRIES_URL", "https://restcountries.com/v3.1/all?fields=name,idd,cca2"),
		CountriesTTL: getdur("COUNTRIES_TTL", 24*time.Hour),

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		OTPRateRPS:   getfloat("OTP_RATE_RPS", 0.2),
		OTPRateBurst: getint("OTP_RATE_BURST", 3),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Idempotency
		IdempotencyTTL: getdur("IDEMPOTENCY_TTL", 24*time.Hour),

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-chat-store"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// Rules are checked in order; the first broken one is reported.
	rules := []struct {
		broken bool
		msg    string
	}{
		{!validLogLevel(cfg.LogLevel), "LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic"},
		{strings.TrimSpace(cfg.Port) == "", "PORT must not be empty"},
		{cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0, "timeouts must be positive durations"},
		{cfg.MaxHeaderBytes <= 0, "MAX_HEADER_BYTES must be > 0"},
		{cfg.MaxBodyBytes <= 0, "MAX_BODY_BYTES must be > 0"},
		{strings.TrimSpace(cfg.DBPath) == "", "DB_PATH must not be empty"},
		{cfg.StorageName == "", "STORAGE_NAME must not be empty"},
		{cfg.ReplyDelay < 0 || cfg.OTPDelay < 0 || cfg.ResponderMinDelay < 0, "REPLY_DELAY, OTP_DELAY and RESPONDER_MIN_DELAY must be >= 0"},
		{cfg.ResponderMaxDelay < cfg.ResponderMinDelay, "RESPONDER_MAX_DELAY must be >= RESPONDER_MIN_DELAY"},
		{strings.TrimSpace(cfg.CountriesURL) == "", "COUNTRIES_URL must not be empty"},
		{cfg.CountriesTTL <= 0, "COUNTRIES_TTL must be > 0"},
		{cfg.RateRPS < 0, "RATE_RPS must be >= 0"},
		{cfg.RateBurst < 1, "RATE_BURST must be >= 1"},
		{cfg.OTPRateRPS < 0 || cfg.OTPRateBurst < 1, "OTP_RATE_RPS must be >= 0 and OTP_RATE_BURST >= 1"},
		{cfg.Security.HSTSMaxAge < 0, "HSTS_MAX_AGE must be >= 0"},
		{cfg.IdempotencyTTL <= 0, "IDEMPOTENCY_TTL must be > 0"},
		{cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1, "OTEL_TRACES_SAMPLER_ARG must be in [0,1]"},
	}
	for _, r := range rules {
		if r.broken {
			return cfg, errors.New(r.msg)
		}
	}
	return cfg, nil
}

func validLogLevel(l string) bool {
	switch l {
	case "debug", "info", "warn", "error", "fatal", "panic":
		return true
	}
	return false
}

// lookup parses the variable k, falling back to def when it is unset, empty
// or unparseable.
func lookup[T any](k string, def T, parse func(string) (T, error)) T {
	v, ok := os.LookupEnv(k)
	if !ok || v == "" {
		return def
	}
	out, err := parse(v)
	if err != nil {
		return def
	}
	return out
}

func getenv(k, def string) string {
	return lookup(k, def, func(s string) (string, error) { return s, nil })
}

func getfloat(k string, def float64) float64 {
	return lookup(k, def, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

func getint(k string, def int) int { return lookup(k, def, strconv.Atoi) }

func getdur(k string, def time.Duration) time.Duration { return lookup(k, def, time.ParseDuration) }

func getbool(k string, def bool) bool { return lookup(k, def, parseBool) }

var errNotBool = errors.New("not a boolean")

// parseBool accepts the usual shell spellings, which strconv.ParseBool does not.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "on":
		return true, nil
	case "0", "false", "no", "n", "off":
		return false, nil
	}
	return false, errNotBool
}

// splitCSV returns the non-blank comma-separated items of s, trimmed.
func splitCSV(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// normalizeBasePath yields "/" for blank input, otherwise a path with one
// leading slash and no trailing one.
func normalizeBasePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	return "/" + p
}
