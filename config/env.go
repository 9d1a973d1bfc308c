// Package config loads Mishil's runtime configuration.
//
// Precedence: process environment > .env file > config/app.json > defaults.
// Load() runs once; every typed getter calls it lazily so commands that
// never boot the full server still see consistent values.
package config

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	defaultMongoURI      = "mongodb://localhost:27017"
	defaultMongoDB       = "mishil"
	defaultJWTSecret     = "change-me-in-production"
	defaultAppPort       = "8080"
	defaultAppEnv        = "local"
	defaultAppMode       = "local" // "local" | "serverless"
	defaultCORSOrigins   = "*"
	defaultRequestBudget = "9s"
)

var (
	loadOnce sync.Once
	loadErr  error

	mu     sync.RWMutex
	values = defaultValues()
)

func Load() error {
	loadOnce.Do(func() {
		loadErr = loadFromFiles("config/app.json", ".env")
	})
	return loadErr
}

func defaultValues() map[string]string {
	return map[string]string{
		"MONGO_URI":      defaultMongoURI,
		"MONGO_DB":       defaultMongoDB,
		"REDIS_ADDR":     "",
		"REDIS_PASSWORD": "",
		"JWT_SECRET":     defaultJWTSecret,
		"APP_PORT":       defaultAppPort,
		"APP_ENV":        defaultAppEnv,
		"APP_MODE":       defaultAppMode,
		"CORS_ORIGINS":   defaultCORSOrigins,
		"REQUEST_BUDGET": defaultRequestBudget,
		"ADMIN_PHONE":    "",
		"ADMIN_PIN":      "",
	}
}

// ── Database ─────────────────────────────────────────────────────────────────

func MongoURI() string { _ = Load(); return get("MONGO_URI", defaultMongoURI) }
func MongoDB() string  { _ = Load(); return get("MONGO_DB", defaultMongoDB) }

// ── Cache ────────────────────────────────────────────────────────────────────

func RedisAddr() string     { _ = Load(); return get("REDIS_ADDR", "") }
func RedisPassword() string { _ = Load(); return get("REDIS_PASSWORD", "") }

// ── App ──────────────────────────────────────────────────────────────────────

func JWTSecret() string { _ = Load(); return get("JWT_SECRET", defaultJWTSecret) }
func AppPort() string   { _ = Load(); return get("APP_PORT", defaultAppPort) }
func AppEnv() string    { _ = Load(); return get("APP_ENV", defaultAppEnv) }

// AppMode selects the image storage strategy: "serverless" encodes images
// inline into the product document, "local" writes them to the filesystem.
func AppMode() string { _ = Load(); return get("APP_MODE", defaultAppMode) }

// IsProduction reports whether debug detail should be hidden from responses.
func IsProduction() bool {
	env := AppEnv()
	return env == "production" || env == "prod"
}

// CORSOrigins returns the allowed frontend origins (comma separated).
func CORSOrigins() []string {
	_ = Load()
	raw := get("CORS_ORIGINS", defaultCORSOrigins)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// RequestBudget is the wall-clock ceiling for a single request. The hosting
// platform kills long invocations; we answer with a timeout envelope first.
func RequestBudget() time.Duration {
	_ = Load()
	d, err := time.ParseDuration(get("REQUEST_BUDGET", defaultRequestBudget))
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(defaultRequestBudget)
	}
	return d
}

// ── Admin bootstrap ──────────────────────────────────────────────────────────

func AdminPhone() string { _ = Load(); return get("ADMIN_PHONE", "") }
func AdminPIN() string   { _ = Load(); return get("ADMIN_PIN", "") }

// ── Storage ──────────────────────────────────────────────────────────────────

func StorageLocalRoot() string { _ = Load(); return get("STORAGE_LOCAL_ROOT", "storage") }
func StorageURL() string {
	_ = Load()
	return get("STORAGE_URL", "http://localhost:"+AppPort()+"/storage")
}

func StorageS3Bucket() string   { _ = Load(); return get("S3_BUCKET", "") }
func StorageS3Region() string   { _ = Load(); return get("S3_REGION", "us-east-1") }
func StorageS3Key() string      { _ = Load(); return get("S3_KEY", "") }
func StorageS3Secret() string   { _ = Load(); return get("S3_SECRET", "") }
func StorageS3Endpoint() string { _ = Load(); return get("S3_ENDPOINT", "") }
func StorageS3URL() string      { _ = Load(); return get("S3_URL", "") }

// ── Generic access ───────────────────────────────────────────────────────────

// Get reads any config key by name with an optional fallback.
func Get(key, fallback string) string {
	_ = Load()
	return get(key, fallback)
}

// GetInt reads an integer config value, returning fallback on parse failure.
func GetInt(key string, fallback int) int {
	n, err := strconv.Atoi(Get(key, ""))
	if err != nil {
		return fallback
	}
	return n
}

// ── Internals ────────────────────────────────────────────────────────────────

func loadFromFiles(configPath, envPath string) error {
	loaded := defaultValues()

	if err := mergeJSONConfig(configPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	if err := mergeDotEnv(envPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	mu.Lock()
	values = loaded
	mu.Unlock()

	return nil
}

func mergeJSONConfig(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var raw map[string]interface{}
	if err := json.NewDecoder(file).Decode(&raw); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	for key, val := range raw {
		s, ok := val.(string)
		if !ok {
			continue
		}
		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(s)
	}

	return nil
}

func mergeDotEnv(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		idx := strings.IndexByte(line, '=')
		if idx <= 0 {
			continue
		}

		key := strings.ToUpper(strings.TrimSpace(line[:idx]))
		value := strings.TrimSpace(line[idx+1:])
		value = strings.Trim(value, `"'`)
		if key == "" {
			continue
		}
		out[key] = value
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	return nil
}

func get(key, fallback string) string {
	// Process environment always wins; the serverless platform injects
	// secrets there rather than through files.
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}

	mu.RLock()
	defer mu.RUnlock()

	if value := strings.TrimSpace(values[key]); value != "" {
		return value
	}

	return fallback
}
