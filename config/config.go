package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// AppConfig holds environment driven configuration values.
// Credentials have no defaults inside code beyond the local development user and must be provided via env files or the environment.
type AppConfig struct {
	AppPort            string
	GinMode            string
	GinPath            string
	AllowedOrigins     []string
	RateLimitPerMinute int
	// Database
	DBDriver    string
	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBCharset   string
	// Redis for list caching
	CacheEnabled    bool
	CacheTTLSeconds int
	RedisHost       string
	RedisPort       int
	RedisDB         int
	RedisPassword   string
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
	// PasswordHashing is "plain" or "bcrypt".
	PasswordHashing string
}

// DefaultPath is where Load looks for the JSON config file.
var DefaultPath = filepath.Join("config", "config.json")

// Load builds the configuration once during boot.
// Precedence: .env -> JSON file -> defaults -> environment variable overrides.
func Load(path string) (AppConfig, error) {
	var cfg AppConfig

	// .env only seeds the process environment; real env vars win.
	_ = godotenv.Load()

	if err := loadJSONConfig(path, &cfg); err != nil {
		return cfg, err
	}
	applyDefaults(&cfg)
	if err := applyEnvOverrides(&cfg); err != nil {
		return cfg, err
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c AppConfig) validate() error {
	switch c.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return errors.New("DB_DRIVER must be one of mysql, postgres, sqlite")
	}
	switch c.PasswordHashing {
	case "plain", "bcrypt":
	default:
		return errors.New("PASSWORD_HASHING must be plain or bcrypt")
	}
	if c.RateLimitPerMinute <= 0 {
		return errors.New("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.RedisPort <= 0 || c.RedisPort > 65535 {
		return errors.New("REDIS_PORT must be between 1 and 65535")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// loadJSONConfig reads JSON file into cfg if present. Returns error only for invalid JSON.
func loadJSONConfig(path string, out *AppConfig) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil // silently ignore missing file
	}
	defer f.Close()

	var raw map[string]any
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return err
	}

	// Grouped sections first, then flat keys for anything still unset.
	sections := []map[string]any{raw}
	for _, name := range []string{"app", "database", "redis", "log"} {
		if m, ok := raw[name].(map[string]any); ok {
			sections = append([]map[string]any{m}, sections...)
		}
	}

	for _, m := range sections {
		setString(m, "AppPort", &out.AppPort)
		setString(m, "GinMode", &out.GinMode)
		setString(m, "GinPath", &out.GinPath)
		setStringSlice(m, "AllowedOrigins", &out.AllowedOrigins)
		setInt(m, "RateLimitPerMinute", &out.RateLimitPerMinute)

		setString(m, "DBDriver", &out.DBDriver)
		setString(m, "DatabaseURI", &out.DatabaseURI)
		setString(m, "DBHost", &out.DBHost)
		setString(m, "DBPort", &out.DBPort)
		setString(m, "DBUser", &out.DBUser)
		setString(m, "DBPassword", &out.DBPassword)
		setString(m, "DBName", &out.DBName)
		setString(m, "DBCharset", &out.DBCharset)

		setBool(m, "CacheEnabled", &out.CacheEnabled)
		setInt(m, "CacheTTLSeconds", &out.CacheTTLSeconds)
		setString(m, "RedisHost", &out.RedisHost)
		setInt(m, "RedisPort", &out.RedisPort)
		setInt(m, "RedisDB", &out.RedisDB)
		setString(m, "RedisPassword", &out.RedisPassword)

		setString(m, "LogLevel", &out.LogLevel)
		setString(m, "LogPath", &out.LogPath)
		setInt(m, "LogMaxSizeMB", &out.LogMaxSizeMB)
		setInt(m, "LogMaxBackups", &out.LogMaxBackups)
		setInt(m, "LogMaxAgeDays", &out.LogMaxAgeDays)
		setBool(m, "LogCompress", &out.LogCompress)

		setString(m, "PasswordHashing", &out.PasswordHashing)
	}
	return nil
}

func setString(m map[string]any, key string, dst *string) {
	if *dst != "" {
		return
	}
	if s, ok := m[key].(string); ok {
		*dst = s
	}
}

func setInt(m map[string]any, key string, dst *int) {
	if *dst != 0 {
		return
	}
	if f, ok := m[key].(float64); ok {
		*dst = int(f)
	}
}

func setBool(m map[string]any, key string, dst *bool) {
	if b, ok := m[key].(bool); ok && !*dst {
		*dst = b
	}
}

func setStringSlice(m map[string]any, key string, dst *[]string) {
	if len(*dst) > 0 {
		return
	}
	arr, ok := m[key].([]any)
	if !ok {
		return
	}
	for _, it := range arr {
		if s, ok := it.(string); ok {
			*dst = append(*dst, s)
		}
	}
}

// applyDefaults sets sane defaults for zero-value fields.
func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "5000"
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.GinPath == "" {
		c.GinPath = "logs/go_gin.log"
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 120
	}
	if c.DBDriver == "" {
		c.DBDriver = "mysql"
	}
	if c.DBHost == "" {
		c.DBHost = "127.0.0.1"
	}
	if c.DBPort == "" {
		c.DBPort = "3306"
	}
	if c.DBUser == "" {
		c.DBUser = "root"
	}
	if c.DBName == "" {
		c.DBName = "bili_flask"
	}
	if c.DBCharset == "" {
		c.DBCharset = "utf8mb4"
	}
	if c.CacheTTLSeconds == 0 {
		c.CacheTTLSeconds = 3600
	}
	if c.RedisHost == "" {
		c.RedisHost = "127.0.0.1"
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = 100
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = 3
	}
	if c.LogMaxAgeDays == 0 {
		c.LogMaxAgeDays = 7
	}
	if c.PasswordHashing == "" {
		c.PasswordHashing = "plain"
	}
}

// applyEnvOverrides maps known environment variables onto config values when present.
// Malformed integers are reported instead of being read as zero.
func applyEnvOverrides(c *AppConfig) error {
	var errs []error
	if v := getEnv("APP_PORT", ""); v != "" {
		c.AppPort = v
	}
	if v := getEnv("GIN_MODE", ""); v != "" {
		c.GinMode = v
	}
	if v := getEnv("GIN_PATH", ""); v != "" {
		c.GinPath = v
	}
	c.AllowedOrigins = readListEnv("ALLOWED_ORIGINS", c.AllowedOrigins)
	errs = append(errs, envInt("RATE_LIMIT_PER_MINUTE", &c.RateLimitPerMinute))

	if v := getEnv("DB_DRIVER", ""); v != "" {
		c.DBDriver = strings.ToLower(v)
	}
	if v := getEnv("DATABASE_URI", ""); v != "" {
		c.DatabaseURI = v
	}
	if v := getEnv("DB_HOST", ""); v != "" {
		c.DBHost = v
	}
	if v := getEnv("DB_PORT", ""); v != "" {
		c.DBPort = v
	}
	if v := getEnv("DB_USER", ""); v != "" {
		c.DBUser = v
	}
	if v := getEnv("DB_PASSWORD", ""); v != "" {
		c.DBPassword = v
	}
	if v := getEnv("DB_NAME", ""); v != "" {
		c.DBName = v
	}
	if v := getEnv("DB_CHARSET", ""); v != "" {
		c.DBCharset = v
	}

	if v := getEnv("CACHE_ENABLED", ""); v != "" {
		c.CacheEnabled = parseBool(v)
	}
	errs = append(errs, envInt("CACHE_TTL_SECONDS", &c.CacheTTLSeconds))
	if v := getEnv("REDIS_HOST", ""); v != "" {
		c.RedisHost = v
	}
	errs = append(errs, envInt("REDIS_PORT", &c.RedisPort))
	errs = append(errs, envInt("REDIS_DB", &c.RedisDB))
	if v := getEnv("REDIS_PASSWORD", ""); v != "" {
		c.RedisPassword = v
	}

	if v := getEnv("LOG_LEVEL", ""); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v := getEnv("LOG_PATH", ""); v != "" {
		c.LogPath = v
	}
	errs = append(errs, envInt("LOG_MAX_SIZE_MB", &c.LogMaxSizeMB))
	errs = append(errs, envInt("LOG_MAX_BACKUPS", &c.LogMaxBackups))
	errs = append(errs, envInt("LOG_MAX_AGE_DAYS", &c.LogMaxAgeDays))
	if v := getEnv("LOG_COMPRESS", ""); v != "" {
		c.LogCompress = parseBool(v)
	}

	if v := getEnv("PASSWORD_HASHING", ""); v != "" {
		c.PasswordHashing = strings.ToLower(v)
	}
	return errors.Join(errs...)
}

func envInt(key string, dst *int) error {
	v := getEnv(key, "")
	if v == "" {
		return nil
	}
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	*dst = i
	return nil
}

func parseBool(val string) bool {
	b, _ := strconv.ParseBool(strings.TrimSpace(val))
	return b
}

func readListEnv(key string, defaults []string) []string {
	if raw := os.Getenv(key); raw != "" {
		return splitAndTrim(raw)
	}
	return defaults
}

func splitAndTrim(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
