package tracing

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/paymentslog/internal/observability/context"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	AttrTrigger  = attribute.Key("paymentslog.trigger")
	AttrOrderID  = attribute.Key("paymentslog.order_id")
	AttrRefundID = attribute.Key("paymentslog.refund_id")
)

// GinMiddleware opens a server span per request, named after the matched
// route. Once the handler has run the span is tagged with the hook trigger
// and with the order or refund the route addressed.
func GinMiddleware() gin.HandlerFunc {
	tracer := otel.Tracer("paymentslog/http")
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		ctx := ExtractContext(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		ctx, span := tracer.Start(ctx, c.Request.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Request.Method),
				attribute.String("http.route", route),
			),
		)
		defer span.End()

		if requestID := obscontext.RequestIDFromContext(ctx); requestID != "" {
			span.SetAttributes(attribute.String("request_id", requestID))
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		span.SetAttributes(RequestAttributes(c)...)
		status := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.status_code", status))
		if status >= http.StatusInternalServerError {
			if lastErr := c.Errors.Last(); lastErr != nil {
				span.RecordError(SafeError(lastErr.Err))
			}
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}

// RequestAttributes returns the payments log attributes of a handled request:
// its trigger, when a hook set one, and the id path parameter keyed as a
// refund id on refund routes and as an order id everywhere else.
func RequestAttributes(c *gin.Context) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 2)
	if trigger := obscontext.TriggerFromContext(c.Request.Context()); trigger != "" {
		attrs = append(attrs, AttrTrigger.String(trigger))
	}

	id, err := strconv.ParseInt(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id <= 0 {
		return attrs
	}
	if strings.HasPrefix(c.FullPath(), "/hooks/refunds/") {
		return append(attrs, AttrRefundID.Int64(id))
	}
	return append(attrs, AttrOrderID.Int64(id))
}
