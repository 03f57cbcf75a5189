package observability

import (
	"strings"
	"time"

	"github.com/smallbiznis/paymentslog/internal/config"
	"github.com/smallbiznis/paymentslog/internal/observability/logger"
	"github.com/smallbiznis/paymentslog/internal/observability/metrics"
	"github.com/smallbiznis/paymentslog/internal/observability/tracing"
	"github.com/spf13/viper"
)

// Config holds logging, tracing and metrics settings.
//
// Service identity comes from config.Config. Everything else is read from
// LOG_LEVEL, LOG_FORMAT, SLOW_QUERY_MS, OTEL_ENABLED,
// OTEL_EXPORTER_OTLP_PROTOCOL and OTEL_SAMPLING_RATIO.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	LogLevel           string
	LogFormat          string
	SlowQueryThreshold time.Duration

	OtelEnabled          bool
	OtelExporterEndpoint string
	OtelExporterProtocol string
	OtelSamplingRatio    float64
}

func LoadConfig(cfg config.Config) Config {
	v := viper.New()
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("slow_query_ms", 200)
	v.SetDefault("otel_enabled", false)
	v.SetDefault("otel_exporter_otlp_protocol", "grpc")
	v.SetDefault("otel_sampling_ratio", 0.1)
	v.AutomaticEnv()

	serviceName := strings.TrimSpace(cfg.AppName)
	if serviceName == "" {
		serviceName = "paymentslog"
	}

	return Config{
		ServiceName:          serviceName,
		Environment:          strings.TrimSpace(cfg.Environment),
		Version:              strings.TrimSpace(cfg.AppVersion),
		LogLevel:             strings.ToLower(strings.TrimSpace(v.GetString("log_level"))),
		LogFormat:            strings.ToLower(strings.TrimSpace(v.GetString("log_format"))),
		SlowQueryThreshold:   time.Duration(v.GetInt("slow_query_ms")) * time.Millisecond,
		OtelEnabled:          v.GetBool("otel_enabled"),
		OtelExporterEndpoint: strings.TrimSpace(cfg.OTLPEndpoint),
		OtelExporterProtocol: strings.ToLower(strings.TrimSpace(v.GetString("otel_exporter_otlp_protocol"))),
		OtelSamplingRatio:    v.GetFloat64("otel_sampling_ratio"),
	}
}

// Debug reports whether verbose request and SQL logging is on.
func (c Config) Debug() bool {
	if c.LogLevel == "debug" {
		return true
	}
	switch strings.ToLower(c.Environment) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

func (c Config) Logger() logger.Config {
	return logger.Config{
		ServiceName:         c.ServiceName,
		Environment:         c.Environment,
		Version:             c.Version,
		Level:               c.LogLevel,
		Format:              c.LogFormat,
		Debug:               c.Debug(),
		IncludeCaller:       true,
		IncludeStackOnError: c.Debug(),
	}
}

// Gorm configures SQL logging. Statements are logged at debug level only
// when Debug is on; slow and failed statements always are.
func (c Config) Gorm() logger.GormLoggerConfig {
	return logger.DefaultGormLoggerConfig(c.Debug(), c.SlowQueryThreshold)
}

func (c Config) Tracing() tracing.Config {
	return tracing.Config{
		Enabled:          c.OtelEnabled,
		ServiceName:      c.ServiceName,
		ServiceVersion:   c.Version,
		Environment:      c.Environment,
		ExporterEndpoint: c.OtelExporterEndpoint,
		ExporterProtocol: c.OtelExporterProtocol,
		SamplingRatio:    c.OtelSamplingRatio,
	}
}

func (c Config) Metrics() metrics.Config {
	return metrics.Config{
		Enabled:          c.OtelEnabled,
		ExporterEndpoint: c.OtelExporterEndpoint,
		ExporterProtocol: c.OtelExporterProtocol,
		ServiceName:      c.ServiceName,
		Environment:      c.Environment,
	}
}
