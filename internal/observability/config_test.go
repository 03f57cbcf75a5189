package observability

import (
	"testing"
	"time"

	"github.com/smallbiznis/paymentslog/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"LOG_LEVEL", "LOG_FORMAT", "SLOW_QUERY_MS", "OTEL_ENABLED", "OTEL_EXPORTER_OTLP_PROTOCOL", "OTEL_SAMPLING_RATIO"} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig(config.Config{AppVersion: "1.2.3", Environment: "production", OTLPEndpoint: "collector:4317"})

	assert.Equal(t, "paymentslog", cfg.ServiceName)
	assert.Equal(t, "1.2.3", cfg.Version)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThreshold)
	assert.False(t, cfg.OtelEnabled)
	assert.Equal(t, "grpc", cfg.OtelExporterProtocol)
	assert.Equal(t, "collector:4317", cfg.Tracing().ExporterEndpoint)
	assert.False(t, cfg.Debug())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("SLOW_QUERY_MS", "50")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "http")

	cfg := LoadConfig(config.Config{AppName: "payments", Environment: "production"})

	assert.Equal(t, "payments", cfg.Metrics().ServiceName)
	assert.True(t, cfg.Debug())
	assert.True(t, cfg.Tracing().Enabled)
	assert.Equal(t, "http", cfg.Metrics().ExporterProtocol)
	assert.Equal(t, 50*time.Millisecond, cfg.Gorm().SlowThreshold)
}
