package config

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// AppConfig holds environment driven configuration values. Sensitive data
// (database password, Cloudinary credentials, OpenRouter key) must be
// provided via the config file or the environment.
type AppConfig struct {
	AppPort            string
	GinMode            string
	GinPath            string
	AllowedOrigins     []string
	RateLimitPerMinute int
	// Database
	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	// Redis for caching
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string
	// Logging
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
	// Cloudinary object storage for complaint photos
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string
	// Nominatim geocoding
	GeocodeBaseURL      string
	GeocodeUserAgent    string
	GeocodeCountryCodes string
	// OpenRouter AI summaries
	OpenRouterAPIKey  string
	OpenRouterModel   string
	OpenRouterReferer string
	SummaryMaxTokens  int
}

var cfg AppConfig
var loaded bool

// Load reads configuration once during boot. Precedence:
// config/config.json -> defaults -> environment variable overrides.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	_ = loadJSONConfig(filepath.Join("config", "config.json"), &cfg)
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

// loadJSONConfig reads grouped JSON sections into cfg if the file exists.
// Returns an error only for invalid JSON.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil // missing file is fine
	}
	defer f.Close()

	var raw map[string]any
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return err
	}

	getString := func(m map[string]any, key string) string {
		if s, ok := m[key].(string); ok {
			return s
		}
		return ""
	}
	getInt := func(m map[string]any, key string) int {
		switch t := m[key].(type) {
		case float64:
			return int(t)
		case int:
			return t
		}
		return 0
	}
	getBool := func(m map[string]any, key string) bool {
		b, _ := m[key].(bool)
		return b
	}
	getStringSlice := func(m map[string]any, key string) []string {
		arr, ok := m[key].([]any)
		if !ok {
			return nil
		}
		res := make([]string, 0, len(arr))
		for _, it := range arr {
			if s, ok := it.(string); ok {
				res = append(res, s)
			}
		}
		return res
	}

	if app, ok := raw["app"].(map[string]any); ok {
		out.AppPort = getString(app, "AppPort")
		if v := getInt(app, "RateLimitPerMinute"); v != 0 {
			out.RateLimitPerMinute = v
		}
		if list := getStringSlice(app, "AllowedOrigins"); len(list) > 0 {
			out.AllowedOrigins = list
		}
	}

	if g, ok := raw["gin"].(map[string]any); ok {
		if v := getString(g, "Mode"); v != "" {
			out.GinMode = v
		}
		if v := getString(g, "LogPath"); v != "" {
			out.GinPath = v
		}
	}

	if dbs, ok := raw["database"].(map[string]any); ok {
		out.DatabaseURI = getString(dbs, "DatabaseURI")
		out.DBHost = getString(dbs, "DBHost")
		out.DBPort = getString(dbs, "DBPort")
		out.DBUser = getString(dbs, "DBUser")
		out.DBPassword = getString(dbs, "DBPassword")
		out.DBName = getString(dbs, "DBName")
	}

	if rds, ok := raw["redis"].(map[string]any); ok {
		out.RedisHost = getString(rds, "RedisHost")
		if v := getInt(rds, "RedisPort"); v != 0 {
			out.RedisPort = v
		}
		if v := getInt(rds, "RedisDB"); v != 0 {
			out.RedisDB = v
		}
		out.RedisPassword = getString(rds, "RedisPassword")
	}

	if lg, ok := raw["log"].(map[string]any); ok {
		if v := getString(lg, "Level"); v != "" {
			out.LogLevel = v
		}
		if v := getString(lg, "Path"); v != "" {
			out.LogPath = v
		}
		if v := getInt(lg, "MaxSizeMB"); v != 0 {
			out.LogMaxSizeMB = v
		}
		if v := getInt(lg, "MaxBackups"); v != 0 {
			out.LogMaxBackups = v
		}
		if v := getInt(lg, "MaxAgeDays"); v != 0 {
			out.LogMaxAgeDays = v
		}
		out.LogCompress = getBool(lg, "Compress")
	}

	if cl, ok := raw["cloudinary"].(map[string]any); ok {
		out.CloudinaryCloudName = getString(cl, "CloudName")
		out.CloudinaryAPIKey = getString(cl, "APIKey")
		out.CloudinaryAPISecret = getString(cl, "APISecret")
		out.CloudinaryFolder = getString(cl, "Folder")
	}

	if gc, ok := raw["geocode"].(map[string]any); ok {
		out.GeocodeBaseURL = getString(gc, "BaseURL")
		out.GeocodeUserAgent = getString(gc, "UserAgent")
		out.GeocodeCountryCodes = getString(gc, "CountryCodes")
	}

	if sm, ok := raw["summary"].(map[string]any); ok {
		out.OpenRouterAPIKey = getString(sm, "APIKey")
		out.OpenRouterModel = getString(sm, "Model")
		out.OpenRouterReferer = getString(sm, "Referer")
		if v := getInt(sm, "MaxTokens"); v != 0 {
			out.SummaryMaxTokens = v
		}
	}

	return nil
}

// applyDefaults sets sane defaults for zero-value fields.
func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "8080"
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.GinPath == "" {
		c.GinPath = "logs/go_gin.log"
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 60
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
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
		c.DBName = "civicpulse"
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
	if c.CloudinaryFolder == "" {
		c.CloudinaryFolder = "civicpulse/complaints"
	}
	if c.GeocodeBaseURL == "" {
		c.GeocodeBaseURL = "https://nominatim.openstreetmap.org"
	}
	if c.GeocodeUserAgent == "" {
		c.GeocodeUserAgent = "CivicPulse/1.0 (+https://github.com/civicpulse/civicpulse)"
	}
	if c.GeocodeCountryCodes == "" {
		c.GeocodeCountryCodes = "pk"
	}
	if c.OpenRouterModel == "" {
		c.OpenRouterModel = "openai/gpt-3.5-turbo"
	}
	if c.OpenRouterReferer == "" {
		c.OpenRouterReferer = "http://localhost:8080"
	}
	if c.SummaryMaxTokens == 0 {
		c.SummaryMaxTokens = 300
	}
}

// applyEnvOverrides maps known environment variables onto config values
// when present.
func applyEnvOverrides(c *AppConfig) {
	if v := getEnv("APP_PORT", ""); v != "" {
		c.AppPort = v
	}
	if v := getEnv("GIN_MODE", ""); v != "" {
		c.GinMode = v
	}
	if v := getEnv("GIN_PATH", ""); v != "" {
		c.GinPath = v
	}
	if v := getEnv("RATE_LIMIT_PER_MINUTE", ""); v != "" {
		c.RateLimitPerMinute = mustParseInt(v)
	}
	if v := getEnv("CORS_ALLOWED_ORIGINS", ""); v != "" {
		c.AllowedOrigins = splitAndTrim(v)
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
	if v := getEnv("REDIS_HOST", ""); v != "" {
		c.RedisHost = v
	}
	if v := getEnv("REDIS_PORT", ""); v != "" {
		c.RedisPort = mustParseInt(v)
	}
	if v := getEnv("REDIS_DB", ""); v != "" {
		c.RedisDB = mustParseInt(v)
	}
	if v := getEnv("REDIS_PASSWORD", ""); v != "" {
		c.RedisPassword = v
	}
	if v := getEnv("LOG_LEVEL", ""); v != "" {
		c.LogLevel = v
	}
	if v := getEnv("LOG_PATH", ""); v != "" {
		c.LogPath = v
	}
	if v := getEnv("LOG_MAX_SIZE_MB", ""); v != "" {
		c.LogMaxSizeMB = mustParseInt(v)
	}
	if v := getEnv("LOG_MAX_BACKUPS", ""); v != "" {
		c.LogMaxBackups = mustParseInt(v)
	}
	if v := getEnv("LOG_MAX_AGE_DAYS", ""); v != "" {
		c.LogMaxAgeDays = mustParseInt(v)
	}
	if v := getEnv("LOG_COMPRESS", ""); v != "" {
		c.LogCompress = v == "true"
	}
	if v := getEnv("CLOUDINARY_CLOUD_NAME", ""); v != "" {
		c.CloudinaryCloudName = v
	}
	if v := getEnv("CLOUDINARY_API_KEY", ""); v != "" {
		c.CloudinaryAPIKey = v
	}
	if v := getEnv("CLOUDINARY_API_SECRET", ""); v != "" {
		c.CloudinaryAPISecret = v
	}
	if v := getEnv("CLOUDINARY_FOLDER", ""); v != "" {
		c.CloudinaryFolder = v
	}
	if v := getEnv("GEOCODE_BASE_URL", ""); v != "" {
		c.GeocodeBaseURL = v
	}
	if v := getEnv("GEOCODE_USER_AGENT", ""); v != "" {
		c.GeocodeUserAgent = v
	}
	if v := getEnv("GEOCODE_COUNTRY_CODES", ""); v != "" {
		c.GeocodeCountryCodes = v
	}
	if v := getEnv("OPENROUTER_API_KEY", ""); v != "" {
		c.OpenRouterAPIKey = v
	}
	if v := getEnv("OPENROUTER_MODEL", ""); v != "" {
		c.OpenRouterModel = v
	}
	if v := getEnv("OPENROUTER_REFERER", ""); v != "" {
		c.OpenRouterReferer = v
	}
	if v := getEnv("SUMMARY_MAX_TOKENS", ""); v != "" {
		c.SummaryMaxTokens = mustParseInt(v)
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func mustParseInt(val string) int {
	i, err := strconv.Atoi(val)
	if err != nil {
		log.Fatalf("invalid integer value %s: %v", val, err)
	}
	return i
}

func splitAndTrim(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
