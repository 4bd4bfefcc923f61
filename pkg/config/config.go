package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/FACorreiaa/statement-analyzer/pkg/money"
)

// Config holds all application configuration
type Config struct {
	Log           LogConfig
	Analysis      AnalysisConfig
	Observability ObservabilityConfig
	Gemini        GeminiConfig
}

// GeminiConfig is handed to the narrative collaborator; the analysis core never reads it
type GeminiConfig struct {
	APIKey string
	Model  string
}

// Configured reports whether a credential is present
func (g GeminiConfig) Configured() bool {
	return g.APIKey != ""
}

type LogConfig struct {
	Level  string
	Format string // text or json
}

type AnalysisConfig struct {
	SalesKeywords  []string // Item-name substrings that select sales rows
	SalesSheet     string   // Preferred sheet name; empty = first sheet
	ReportCurrency string   // ISO-4217 code used when displaying totals
}

type ObservabilityConfig struct {
	MetricsTextfile string // Prometheus textfile-collector output; empty = disabled
	TracingEnabled  bool
}

// Load reads configuration from environment variables.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &Config{
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		Analysis: AnalysisConfig{
			SalesKeywords:  getEnvAsList("ANALYZER_SALES_KEYWORDS", []string{"sales"}),
			SalesSheet:     getEnv("ANALYZER_SALES_SHEET", ""),
			ReportCurrency: strings.ToUpper(getEnv("REPORT_CURRENCY", "USD")),
		},
		Observability: ObservabilityConfig{
			MetricsTextfile: getEnv("METRICS_TEXTFILE", ""),
			TracingEnabled:  getEnvAsBool("TRACING_ENABLED", false),
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", getEnv("GOOGLE_API_KEY", "")),
			Model:  getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		},
	}

	switch cfg.Log.Format {
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q: want text or json", cfg.Log.Format)
	}

	if _, err := ParseLevel(cfg.Log.Level); err != nil {
		return nil, err
	}

	if err := ValidateCurrency(cfg.Analysis.ReportCurrency); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ParseLevel converts a level name into a slog.Level
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q: %w", s, err)
	}
	return level, nil
}

// ValidateCurrency rejects codes that are not ISO-4217 currencies
func ValidateCurrency(code string) error {
	if !money.Supported(code) {
		return fmt.Errorf("invalid REPORT_CURRENCY %q: not an ISO-4217 code", code)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
