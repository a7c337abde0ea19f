// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Storage backends.
const (
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Storage   StorageConfig
	Server    ServerConfig
	Carousel  CarouselConfig
	RateLimit RateLimitConfig
	Telemetry TelemetryConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// StorageConfig selects where the client record slots are read from.
type StorageConfig struct {
	Backend string // badger, sqlite, file or redis (default: badger)
	// Path is the badger directory, the sqlite database file, or the slot
	// directory for the file backend (default: ~/ContinueWatching/<backend>).
	// Unused by the redis backend.
	Path string
	// RedisURL locates the redis backend (default: redis://localhost:6379/0).
	RedisURL string
	// RedisPrefix namespaces slot keys in redis (default: cw:slot:).
	RedisPrefix string
	// Watch enables the slot watcher. Only the file backend supports it.
	Watch bool
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
	CORSOrigins  []string      // Allowed origins (default: *)
}

// CarouselConfig holds presenter configuration.
type CarouselConfig struct {
	DebounceDelay   time.Duration // Resize debounce (default: 200ms)
	AutoplayDelay   time.Duration // Autoplay advance delay (default: 3s)
	WatchPathPrefix string        // Deep link prefix (default: /watch/)
}

// RateLimitConfig holds the per-client request limit for /api/v1.
type RateLimitConfig struct {
	Enabled bool
	RPS     float64 // Sustained requests per second (default: 10)
	Burst   int     // Bucket size (default: 20)
}

// TelemetryConfig holds OpenTelemetry tracing configuration.
// Tracing is off when OTLPEndpoint is empty.
type TelemetryConfig struct {
	OTLPEndpoint string
	SampleRate   float64 // Fraction of root spans sampled (default: 0.1)
	ServiceName  string  // default: continue-watching
}

// LoadConfig loads configuration from the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("continue-watching", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")

	// Storage flags
	backend := fs.String("storage-backend", "", "Slot storage backend: badger, sqlite, file or redis (default: badger)")
	storagePath := fs.String("storage-path", "", "Path for slot storage")
	redisURL := fs.String("redis-url", "", "Redis URL for the redis backend (default: redis://localhost:6379/0)")
	redisPrefix := fs.String("redis-prefix", "", "Key prefix for slots in redis (default: cw:slot:)")
	watch := fs.String("watch", "", "Re-render open carousels when slot files change (file backend only, default: true)")

	// Server flags
	serverPort := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	corsOrigins := fs.String("cors-origins", "", "Comma separated allowed origins (default: *)")

	// Carousel flags
	debounce := fs.String("debounce-delay", "", "Resize debounce delay (default: 200ms)")
	autoplay := fs.String("autoplay-delay", "", "Carousel autoplay delay (default: 3s)")
	watchPrefix := fs.String("watch-path-prefix", "", "Deep link prefix for titles (default: /watch/)")

	// Rate limit flags
	rateEnabled := fs.String("rate-limit", "", "Enable per-client rate limiting (default: true)")
	rateRPS := fs.String("rate-limit-rps", "", "Requests per second per client (default: 10)")
	rateBurst := fs.String("rate-limit-burst", "", "Burst size per client (default: 20)")

	// Telemetry flags
	otlpEndpoint := fs.String("otlp-endpoint", "", "OTLP/HTTP trace endpoint; tracing is off when empty")
	sampleRate := fs.String("trace-sample-rate", "", "Trace sample rate between 0 and 1 (default: 0.1)")

	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Storage: StorageConfig{
			Backend: strings.ToLower(getConfigValue(*backend, "STORAGE_BACKEND", BackendBadger)),
			Path:    getConfigValue(*storagePath, "STORAGE_PATH", ""),
			Watch:   getBoolConfigValue(*watch, "STORAGE_WATCH", true),

			RedisURL:    getConfigValue(*redisURL, "REDIS_URL", "redis://localhost:6379/0"),
			RedisPrefix: getConfigValue(*redisPrefix, "REDIS_PREFIX", "cw:slot:"),
		},
		Server: ServerConfig{
			Port:        getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			CORSOrigins: splitList(getConfigValue(*corsOrigins, "CORS_ORIGINS", "*")),
		},
		Carousel: CarouselConfig{
			WatchPathPrefix: getConfigValue(*watchPrefix, "WATCH_PATH_PREFIX", "/watch/"),
		},
		RateLimit: RateLimitConfig{
			Enabled: getBoolConfigValue(*rateEnabled, "RATE_LIMIT_ENABLED", true),
			RPS:     getFloatConfigValue(*rateRPS, "RATE_LIMIT_RPS", 10),
			Burst:   getIntConfigValue(*rateBurst, "RATE_LIMIT_BURST", 20),
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint: getConfigValue(*otlpEndpoint, "OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			SampleRate:   getFloatConfigValue(*sampleRate, "OTEL_TRACE_SAMPLE_RATE", 0.1),
			ServiceName:  getConfigValue("", "OTEL_SERVICE_NAME", "continue-watching"),
		},
	}

	durations := []struct {
		target *time.Duration
		flag   string
		envKey string
		def    string
		name   string
	}{
		{&cfg.Server.ReadTimeout, *readTimeout, "SERVER_READ_TIMEOUT", "15s", "read timeout"},
		{&cfg.Server.WriteTimeout, *writeTimeout, "SERVER_WRITE_TIMEOUT", "15s", "write timeout"},
		{&cfg.Server.IdleTimeout, *idleTimeout, "SERVER_IDLE_TIMEOUT", "60s", "idle timeout"},
		{&cfg.Carousel.DebounceDelay, *debounce, "CAROUSEL_DEBOUNCE_DELAY", "200ms", "debounce delay"},
		{&cfg.Carousel.AutoplayDelay, *autoplay, "CAROUSEL_AUTOPLAY_DELAY", "3s", "autoplay delay"},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flag, d.envKey, d.def)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.name, raw, err)
		}
		*d.target = parsed
	}

	if err := cfg.expandStoragePath(); err != nil {
		return nil, fmt.Errorf("invalid storage path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	switch c.Storage.Backend {
	case BackendBadger, BackendSQLite, BackendFile:
		if c.Storage.Path == "" {
			return errors.New("storage path cannot be empty after expansion")
		}
	case BackendRedis:
		if c.Storage.RedisURL == "" {
			return errors.New("redis url is required for the redis backend")
		}
	default:
		return fmt.Errorf("invalid storage backend: %s (must be badger, sqlite, file, or redis)", c.Storage.Backend)
	}

	if c.Carousel.DebounceDelay <= 0 {
		return errors.New("debounce delay must be positive")
	}
	if c.Carousel.AutoplayDelay <= 0 {
		return errors.New("autoplay delay must be positive")
	}
	if !strings.HasPrefix(c.Carousel.WatchPathPrefix, "/") {
		return fmt.Errorf("watch path prefix must start with /: %q", c.Carousel.WatchPathPrefix)
	}

	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0) {
		return errors.New("rate limit rps and burst must be positive when enabled")
	}

	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		return fmt.Errorf("trace sample rate must be between 0 and 1: %v", c.Telemetry.SampleRate)
	}

	return nil
}

// WatchEnabled reports whether the slot watcher should run.
func (c *Config) WatchEnabled() bool {
	return c.Storage.Watch && c.Storage.Backend == BackendFile
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	// Expand tilde.
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	// Make absolute if needed.
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandStoragePath expands ~ and makes the path absolute.
// Defaults to ~/ContinueWatching/<backend>.
func (c *Config) expandStoragePath() error {
	if c.Storage.Backend == BackendRedis {
		return nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	name := c.Storage.Backend
	if name == BackendSQLite {
		name = "slots.db"
	}
	defaultPath := filepath.Join(homeDir, "ContinueWatching", name)

	expanded, err := expandPath(c.Storage.Path, defaultPath)
	if err != nil {
		return err
	}
	c.Storage.Path = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	// Priority 1: Command-line flag.
	if flagValue != "" {
		return flagValue
	}

	// Priority 2: Environment variable.
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	// Priority 3: Default value.
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// getFloatConfigValue returns a float64 from flag, env var, or default.
func getFloatConfigValue(flagValue, envKey string, defaultValue float64) float64 {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result float64
	if _, err := fmt.Sscanf(strValue, "%g", &result); err != nil {
		return defaultValue
	}
	return result
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		// Only set if not already set (env vars take precedence over .env file).
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
