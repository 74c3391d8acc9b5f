package config

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// AppConfig holds environment driven configuration values.
// Sensitive data should never have defaults inside code and must be provided via env files or the environment.
type AppConfig struct {
	AppPort     string
	JWTSecret   string
	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	// ServiceKeyHash is the bcrypt hash of the scheduler's API key.
	// Privileged callers must present the plaintext key in X-Service-Key.
	ServiceKeyHash     string
	RateLimitPerMinute int
	AllowedOrigins     []string
	// Gin framework configuration
	GinMode string
	// Redis for caching and per-user locks
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
	// Streak engine tables
	Streak StreakConfig
}

// StreakConfig carries the immutable lookup tables of the streak engine.
// Modeled as injected configuration rather than package globals so tests can
// substitute alternate tables.
type StreakConfig struct {
	// ShieldCaps maps a subscription tier to its maximum shield pool size.
	ShieldCaps map[string]int
	// DefaultTier is used when a user has no subscription row or an unknown tier.
	DefaultTier string
	// CoinOverrides maps a milestone day number to an explicit coin amount,
	// taking precedence over CoinDefaults.
	CoinOverrides map[int]int
	// CoinDefaults maps common milestone day numbers to coin amounts.
	CoinDefaults map[int]int
	// FallbackCoinBase and FallbackCoinPerWeek drive the computed reward for
	// day numbers absent from both tables: max(base, days/7*perWeek).
	FallbackCoinBase    int
	FallbackCoinPerWeek int
}

// ShieldCap resolves the shield pool cap for a subscription tier,
// falling back to the default tier for unknown values.
func (s StreakConfig) ShieldCap(tier string) int {
	if cap, ok := s.ShieldCaps[tier]; ok {
		return cap
	}
	return s.ShieldCaps[s.DefaultTier]
}

// CoinAmount resolves the coin reward for a milestone day number:
// explicit override, then the default table, then the computed fallback.
func (s StreakConfig) CoinAmount(dayNumber int) int {
	if v, ok := s.CoinOverrides[dayNumber]; ok {
		return v
	}
	if v, ok := s.CoinDefaults[dayNumber]; ok {
		return v
	}
	computed := dayNumber / 7 * s.FallbackCoinPerWeek
	if computed < s.FallbackCoinBase {
		return s.FallbackCoinBase
	}
	return computed
}

var cfg AppConfig
var loaded bool

// Load loads the application configuration. It should be called once during boot.
// Precedence: config/config.json -> compiled defaults -> environment overrides.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	_ = loadJSONConfig(filepath.Join("config", "config.json"), &cfg)
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set in environment variables")
	}

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

// jsonConfig mirrors AppConfig with snake_case keys for config/config.json.
type jsonConfig struct {
	AppPort            string         `json:"app_port"`
	JWTSecret          string         `json:"jwt_secret"`
	DatabaseURI        string         `json:"database_uri"`
	DBHost             string         `json:"db_host"`
	DBPort             string         `json:"db_port"`
	DBUser             string         `json:"db_user"`
	DBPassword         string         `json:"db_password"`
	DBName             string         `json:"db_name"`
	ServiceKeyHash     string         `json:"service_key_hash"`
	RateLimitPerMinute int            `json:"rate_limit_per_minute"`
	AllowedOrigins     []string       `json:"allowed_origins"`
	GinMode            string         `json:"gin_mode"`
	RedisHost          string         `json:"redis_host"`
	RedisPort          int            `json:"redis_port"`
	RedisDB            int            `json:"redis_db"`
	RedisPassword      string         `json:"redis_password"`
	LogLevel           string         `json:"log_level"`
	LogPath            string         `json:"log_path"`
	LogMaxSizeMB       int            `json:"log_max_size_mb"`
	LogMaxBackups      int            `json:"log_max_backups"`
	LogMaxAgeDays      int            `json:"log_max_age_days"`
	LogCompress        bool           `json:"log_compress"`
	ShieldCaps         map[string]int `json:"shield_caps"`
	DefaultTier        string         `json:"default_tier"`
	CoinOverrides      map[string]int `json:"coin_overrides"`
}

// loadJSONConfig reads JSON file into cfg if present. Returns error only for invalid JSON.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil // silently ignore missing file
	}
	defer f.Close()

	var jc jsonConfig
	if err := json.NewDecoder(f).Decode(&jc); err != nil {
		return err
	}

	out.AppPort = jc.AppPort
	out.JWTSecret = jc.JWTSecret
	out.DatabaseURI = jc.DatabaseURI
	out.DBHost = jc.DBHost
	out.DBPort = jc.DBPort
	out.DBUser = jc.DBUser
	out.DBPassword = jc.DBPassword
	out.DBName = jc.DBName
	out.ServiceKeyHash = jc.ServiceKeyHash
	out.RateLimitPerMinute = jc.RateLimitPerMinute
	out.AllowedOrigins = jc.AllowedOrigins
	out.GinMode = jc.GinMode
	out.RedisHost = jc.RedisHost
	out.RedisPort = jc.RedisPort
	out.RedisDB = jc.RedisDB
	out.RedisPassword = jc.RedisPassword
	out.LogLevel = jc.LogLevel
	out.LogPath = jc.LogPath
	out.LogMaxSizeMB = jc.LogMaxSizeMB
	out.LogMaxBackups = jc.LogMaxBackups
	out.LogMaxAgeDays = jc.LogMaxAgeDays
	out.LogCompress = jc.LogCompress
	if len(jc.ShieldCaps) > 0 {
		out.Streak.ShieldCaps = jc.ShieldCaps
	}
	if jc.DefaultTier != "" {
		out.Streak.DefaultTier = jc.DefaultTier
	}
	if len(jc.CoinOverrides) > 0 {
		overrides := make(map[int]int, len(jc.CoinOverrides))
		for k, v := range jc.CoinOverrides {
			day, err := strconv.Atoi(k)
			if err != nil {
				log.Printf("config: ignoring invalid coin override day %q", k)
				continue
			}
			overrides[day] = v
		}
		out.Streak.CoinOverrides = overrides
	}
	return nil
}

func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "8080"
	}
	if c.DBHost == "" {
		c.DBHost = "127.0.0.1"
	}
	if c.DBPort == "" {
		c.DBPort = "3306"
	}
	if c.DBUser == "" {
		c.DBUser = "streakd"
	}
	if c.DBName == "" {
		c.DBName = "streakd"
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 60
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.GinMode == "" {
		c.GinMode = "release"
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
	if c.LogPath == "" {
		c.LogPath = "logs/streakd.log"
	}
	applyStreakDefaults(&c.Streak)
}

func applyStreakDefaults(s *StreakConfig) {
	if len(s.ShieldCaps) == 0 {
		s.ShieldCaps = map[string]int{
			"mover":   2,
			"coach":   3,
			"crusher": 5,
		}
	}
	if s.DefaultTier == "" {
		s.DefaultTier = "mover"
	}
	if len(s.CoinDefaults) == 0 {
		s.CoinDefaults = map[int]int{
			7:   50,
			14:  100,
			30:  250,
			60:  500,
			90:  750,
			180: 1500,
			365: 3000,
		}
	}
	if s.FallbackCoinBase == 0 {
		s.FallbackCoinBase = 10
	}
	if s.FallbackCoinPerWeek == 0 {
		s.FallbackCoinPerWeek = 25
	}
}

func applyEnvOverrides(c *AppConfig) {
	c.AppPort = getEnv("APP_PORT", c.AppPort)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.DatabaseURI = getEnv("DATABASE_URI", c.DatabaseURI)
	c.DBHost = getEnv("DB_HOST", c.DBHost)
	c.DBPort = getEnv("DB_PORT", c.DBPort)
	c.DBUser = getEnv("DB_USER", c.DBUser)
	c.DBPassword = getEnv("DB_PASSWORD", c.DBPassword)
	c.DBName = getEnv("DB_NAME", c.DBName)
	c.ServiceKeyHash = getEnv("SERVICE_KEY_HASH", c.ServiceKeyHash)
	c.GinMode = getEnv("GIN_MODE", c.GinMode)
	c.RedisHost = getEnv("REDIS_HOST", c.RedisHost)
	c.RedisPassword = getEnv("REDIS_PASSWORD", c.RedisPassword)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogPath = getEnv("LOG_PATH", c.LogPath)

	if v := os.Getenv("REDIS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RedisPort = n
		}
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RedisDB = n
		}
	}
	if v := os.Getenv("RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RateLimitPerMinute = n
		}
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		parts := strings.Split(v, ",")
		origins := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				origins = append(origins, p)
			}
		}
		if len(origins) > 0 {
			c.AllowedOrigins = origins
		}
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
