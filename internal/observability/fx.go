package observability

import (
	"github.com/smallbiznis/paymentslog/internal/observability/logger"
	"github.com/smallbiznis/paymentslog/internal/observability/metrics"
	"github.com/smallbiznis/paymentslog/internal/observability/tracing"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
)

// Module provides the zap logger, the gorm logger settings, the tracer and
// meter providers, the payments log instruments and the HTTP scrape metrics.
var Module = fx.Module("observability",
	fx.Provide(
		LoadConfig,
		Config.Logger,
		Config.Gorm,
		Config.Tracing,
		Config.Metrics,
	),
	fx.Provide(
		logger.New,
		tracing.NewProvider,
		metrics.NewProvider,
		metrics.New,
		metrics.NewHTTPMetrics,
	),
	// The tracer provider has no consumer in the graph; it only installs itself globally.
	fx.Invoke(func(*sdktrace.TracerProvider) {}),
)
