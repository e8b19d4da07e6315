package config

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds engine and CLI configuration.
type Config struct {
	Currency      string `mapstructure:"RUNWAY_CURRENCY" validate:"required,len=3,uppercase"`
	HorizonMonths int    `mapstructure:"RUNWAY_HORIZON_MONTHS" validate:"min=1,max=600"`
	IncludeTaxes  bool   `mapstructure:"RUNWAY_INCLUDE_TAXES"`

	// Debt schedule generation
	FullyAmortized   bool `mapstructure:"RUNWAY_FULLY_AMORTIZED"`
	CompoundInterest bool `mapstructure:"RUNWAY_COMPOUND_INTEREST"`

	HealthCriticalMonths int     `mapstructure:"RUNWAY_HEALTH_CRITICAL_MONTHS" validate:"min=0"`
	HealthWarningMonths  int     `mapstructure:"RUNWAY_HEALTH_WARNING_MONTHS" validate:"gtefield=HealthCriticalMonths"`
	BurnMultipleWarning  float64 `mapstructure:"RUNWAY_BURN_MULTIPLE_WARNING" validate:"min=0"`
	BurnMultipleCritical float64 `mapstructure:"RUNWAY_BURN_MULTIPLE_CRITICAL" validate:"gtefield=BurnMultipleWarning"`

	LogLevel    string `mapstructure:"RUNWAY_LOG_LEVEL" validate:"oneof=debug info warn error"`
	ReportDir   string `mapstructure:"RUNWAY_REPORT_DIR"`   // empty disables export
	MetricsFile string `mapstructure:"RUNWAY_METRICS_FILE"` // empty disables the textfile
	PlanFile    string `mapstructure:"RUNWAY_PLAN_FILE" validate:"required"`
}

var defaults = map[string]any{
	"RUNWAY_CURRENCY":               "USD",
	"RUNWAY_HORIZON_MONTHS":         12,
	"RUNWAY_INCLUDE_TAXES":          true,
	"RUNWAY_FULLY_AMORTIZED":        true,
	"RUNWAY_COMPOUND_INTEREST":      true,
	"RUNWAY_HEALTH_CRITICAL_MONTHS": 6,
	"RUNWAY_HEALTH_WARNING_MONTHS":  12,
	"RUNWAY_BURN_MULTIPLE_WARNING":  2.0,
	"RUNWAY_BURN_MULTIPLE_CRITICAL": 3.0,
	"RUNWAY_LOG_LEVEL":              "info",
	"RUNWAY_REPORT_DIR":             "",
	"RUNWAY_METRICS_FILE":           "",
	"RUNWAY_PLAN_FILE":              "runway.yaml",
}

// LoadConfig loads configuration from environment variables and the given
// .env files, or ./.env when none are given. Missing files are ignored.
//
// Values that do not parse fall back to their default with a warning. Values
// that parse but are out of range are an error.
func LoadConfig(envFiles ...string) (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load(envFiles...)

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	cfg := &Config{
		Currency:             strings.ToUpper(strings.TrimSpace(v.GetString("RUNWAY_CURRENCY"))),
		HorizonMonths:        intOrDefault(v, "RUNWAY_HORIZON_MONTHS"),
		IncludeTaxes:         boolOrDefault(v, "RUNWAY_INCLUDE_TAXES"),
		FullyAmortized:       boolOrDefault(v, "RUNWAY_FULLY_AMORTIZED"),
		CompoundInterest:     boolOrDefault(v, "RUNWAY_COMPOUND_INTEREST"),
		HealthCriticalMonths: intOrDefault(v, "RUNWAY_HEALTH_CRITICAL_MONTHS"),
		HealthWarningMonths:  intOrDefault(v, "RUNWAY_HEALTH_WARNING_MONTHS"),
		BurnMultipleWarning:  floatOrDefault(v, "RUNWAY_BURN_MULTIPLE_WARNING"),
		BurnMultipleCritical: floatOrDefault(v, "RUNWAY_BURN_MULTIPLE_CRITICAL"),
		LogLevel:             strings.ToLower(strings.TrimSpace(v.GetString("RUNWAY_LOG_LEVEL"))),
		ReportDir:            strings.TrimSpace(v.GetString("RUNWAY_REPORT_DIR")),
		MetricsFile:          strings.TrimSpace(v.GetString("RUNWAY_METRICS_FILE")),
		PlanFile:             strings.TrimSpace(v.GetString("RUNWAY_PLAN_FILE")),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// SlogLevel maps LogLevel onto a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func warnInvalid(key, raw string, fallback any) {
	slog.Warn("Invalid configuration value, using default",
		slog.String("key", key),
		slog.String("value", raw),
		slog.String("default", fmt.Sprint(fallback)))
}

func intOrDefault(v *viper.Viper, key string) int {
	raw := strings.TrimSpace(v.GetString(key))
	n, err := strconv.Atoi(raw)
	if err != nil {
		fallback := defaults[key].(int)
		warnInvalid(key, raw, fallback)
		return fallback
	}
	return n
}

func floatOrDefault(v *viper.Viper, key string) float64 {
	raw := strings.TrimSpace(v.GetString(key))
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		fallback := defaults[key].(float64)
		warnInvalid(key, raw, fallback)
		return fallback
	}
	return f
}

func boolOrDefault(v *viper.Viper, key string) bool {
	raw := strings.TrimSpace(v.GetString(key))
	b, err := strconv.ParseBool(raw)
	if err != nil {
		fallback := defaults[key].(bool)
		warnInvalid(key, raw, fallback)
		return fallback
	}
	return b
}
