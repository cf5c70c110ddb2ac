package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const DefaultWidgetID = "customer-table-container"

// Config holds all configuration for the application.
type Config struct {
	AppEnv                string
	DBPath                string
	DBDriver              string
	RedisAddr             string
	GRPCPort              int
	GRPCReflectionEnabled bool
	HTTPPort              int
	CORSAllowAll          bool

	SheetsBaseURL  string
	SpreadsheetID  string
	SheetRange     string
	GoogleAPIKey   string
	SourceCacheTTL time.Duration
	LoadTimeout    time.Duration

	PageSize  int
	WidgetIDs []string
}

// LoadFromEnv loads configuration from environment variables. Invalid
// numeric and boolean values fall back to their defaults.
func LoadFromEnv() *Config {
	return &Config{
		AppEnv:                getEnv("APP_ENV", "development"),
		DBPath:                getEnv("DB_PATH", "./data/survey.db"),
		DBDriver:              getEnv("DB_DRIVER", "sqlite3"),
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		GRPCPort:              getEnvInt("GRPC_PORT", 50051),
		GRPCReflectionEnabled: getEnvBool("GRPC_REFLECTION_ENABLED", false),
		HTTPPort:              getEnvInt("HTTP_PORT", 8080),
		CORSAllowAll:          getEnvBool("CORS_ALLOW_ALL", false),

		SheetsBaseURL:  getEnv("SHEETS_BASE_URL", "https://sheets.googleapis.com"),
		SpreadsheetID:  os.Getenv("SPREADSHEET_ID"),
		SheetRange:     getEnv("SHEET_RANGE", "Customer Survey Questionnaire!A:ZZ"),
		GoogleAPIKey:   os.Getenv("GOOGLE_API_KEY"),
		SourceCacheTTL: getEnvDuration("SOURCE_CACHE_TTL", 10*time.Minute),
		LoadTimeout:    getEnvDuration("LOAD_TIMEOUT", 15*time.Second),

		PageSize:  getEnvInt("PAGE_SIZE", 25),
		WidgetIDs: getEnvList("WIDGET_IDS", []string{DefaultWidgetID}),
	}
}

// NewLogger creates a new Zap logger based on the config.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	if cfg.AppEnv == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func getEnvList(key string, fallback []string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
