package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: DOCCOV_[SECTION]_[KEY] (e.g., DOCCOV_HISTORY_ENABLED); top-level
// keys have no section (DOCCOV_STYLE).
func ApplyEnvOverrides(cfg *Config) {
	setEnvString(&cfg.Style, "DOCCOV_STYLE")
	setEnvInt(&cfg.CoverageThreshold, "DOCCOV_COVERAGE_THRESHOLD")
	setEnvString(&cfg.Checker, "DOCCOV_CHECKER")
	setEnvString(&cfg.PydocstylePath, "DOCCOV_PYDOCSTYLE_PATH")
	setEnvFloat64(&cfg.CheckerRate, "DOCCOV_CHECKER_RATE")
	setEnvInt(&cfg.Workers, "DOCCOV_WORKERS")
	setEnvBool(&cfg.IncludePrivate, "DOCCOV_INCLUDE_PRIVATE")

	// Watch
	setEnvDuration(&cfg.Watch.Debounce, "DOCCOV_WATCH_DEBOUNCE")

	// History
	setEnvBool(&cfg.History.Enabled, "DOCCOV_HISTORY_ENABLED")
	setEnvString(&cfg.History.Path, "DOCCOV_HISTORY_PATH")
	setEnvString(&cfg.History.Project, "DOCCOV_HISTORY_PROJECT")

	// Observability
	setEnvString(&cfg.Observability.MetricsAddr, "DOCCOV_OBSERVABILITY_METRICS_ADDR")
	setEnvString(&cfg.Observability.OTLPEndpoint, "DOCCOV_OBSERVABILITY_OTLP_ENDPOINT")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = val
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(val)))
		if err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = b
		}
	}
}

func setEnvFloat64(target *float64, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = f
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(val)); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = d
		}
	}
}
