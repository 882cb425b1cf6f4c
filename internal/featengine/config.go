package featengine

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mandeep1729/algomatic-state/internal/feature"
)

// Run modes.
const (
	ModeService  = "service"  // periodic sweep only
	ModeListener = "listener" // event-driven compute requests only
	ModeBoth     = "both"     // sweep in background, listener in foreground
)

// Config holds all env-parsed configuration for the feature engine service.
type Config struct {
	StoreBackend string // "sqlite" or "postgres"
	SQLitePath   string
	DBHost       string
	DBPort       string
	DBName       string
	DBUser       string
	DBPassword   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	ChannelPrefix string

	Mode            string
	IntervalMinutes int
	Timeframes      []string
	FeatureVersion  string
	BankEnabled     bool
	HTTPAddr        string

	Session feature.SessionConfig
}

// LoadConfig reads all environment variables and returns a Config.
func LoadConfig() Config {
	cfg := Config{
		StoreBackend: getEnv("STORE_BACKEND", "sqlite"),
		SQLitePath:   getEnv("SQLITE_PATH", "data/features.db"),
		DBHost:       getEnv("DB_HOST", "localhost"),
		DBPort:       getEnv("DB_PORT", "5432"),
		DBName:       getEnv("DB_NAME", "algomatic"),
		DBUser:       getEnv("DB_USER", "algomatic"),
		DBPassword:   getEnv("DB_PASSWORD", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		ChannelPrefix: getEnv("REDIS_CHANNEL_PREFIX", "algomatic"),

		Mode:            getEnv("ENGINE_MODE", ModeService),
		IntervalMinutes: getEnvInt("ENGINE_INTERVAL_MINUTES", 15),
		Timeframes:      parseCSV(getEnv("TIMEFRAMES", "5Min")),
		FeatureVersion:  getEnv("FEATURE_VERSION", "v1"),
		BankEnabled:     getEnvBool("TALIB_ENABLED", true),
		HTTPAddr:        getEnv("HTTP_ADDR", ":9096"),
	}

	cfg.Session = feature.DefaultSession()
	cfg.Session.OpenHour = getEnvInt("MARKET_OPEN_HOUR", cfg.Session.OpenHour)
	cfg.Session.OpenMinute = getEnvInt("MARKET_OPEN_MINUTE", cfg.Session.OpenMinute)
	cfg.Session.TradingMinutes = getEnvInt("TRADING_MINUTES", cfg.Session.TradingMinutes)

	switch cfg.Mode {
	case ModeService, ModeListener, ModeBoth:
	default:
		cfg.Mode = ModeService
	}
	if cfg.IntervalMinutes <= 0 {
		cfg.IntervalMinutes = 15
	}
	if len(cfg.Timeframes) == 0 {
		cfg.Timeframes = []string{"5Min"}
	}
	return cfg
}

// PostgresDSN builds the connection string for the postgres backend.
func (c Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

func parseCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
