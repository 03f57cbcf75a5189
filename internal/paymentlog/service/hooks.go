package service

import (
	"context"

	obslogger "github.com/smallbiznis/paymentslog/internal/observability/logger"
	"github.com/smallbiznis/paymentslog/internal/paymentlog/domain"
	"github.com/smallbiznis/paymentslog/internal/paymentlog/gateway"
	"go.uber.org/zap"
)

// NewUnknownGatewayHook warns about refunds whose gateway has neither a
// configured nor a built-in rule. Such refunds are still recorded, without a
// gateway transaction id.
func NewUnknownGatewayHook(gateways *gateway.Registry, log *zap.Logger) domain.RecordHook {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("paymentlog.gateways")
	return domain.RecordHookFunc(func(ctx context.Context, record *domain.Record) error {
		if record.EventType != domain.EventTypeRefund || gateways.Known(record.PaymentGateway) {
			return nil
		}
		obslogger.WithOrder(obslogger.WithContext(ctx, log), record.OrderID).
			Warn("no refund reference rule for gateway", zap.String("gateway", record.PaymentGateway))
		return nil
	})
}
