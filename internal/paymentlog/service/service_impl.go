package service

import (
	"context"
	"fmt"

	"github.com/smallbiznis/paymentslog/internal/clock"
	obslogger "github.com/smallbiznis/paymentslog/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/paymentslog/internal/observability/metrics"
	obstracing "github.com/smallbiznis/paymentslog/internal/observability/tracing"
	orderdomain "github.com/smallbiznis/paymentslog/internal/order/domain"
	"github.com/smallbiznis/paymentslog/internal/paymentlog/domain"
	"github.com/smallbiznis/paymentslog/internal/paymentlog/gateway"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Clock      clock.Clock
	Orders     orderdomain.Repository
	Repo       domain.Repository
	Gateways   *gateway.Registry
	Hooks      []domain.RecordHook `group:"paymentlog.record_hooks"`
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	clock      clock.Clock
	orders     orderdomain.Repository
	repo       domain.Repository
	gateways   *gateway.Registry
	hooks      []domain.RecordHook
	obsMetrics *obsmetrics.Metrics
}

func NewService(p Params) *Service {
	c := p.Clock
	if c == nil {
		c = clock.New()
	}
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}
	hooks := make([]domain.RecordHook, 0, len(p.Hooks))
	for _, hook := range p.Hooks {
		if hook != nil {
			hooks = append(hooks, hook)
		}
	}
	return &Service{
		db:         p.DB,
		log:        log.Named("paymentlog.service"),
		clock:      c,
		orders:     p.Orders,
		repo:       p.Repo,
		gateways:   p.Gateways,
		hooks:      hooks,
		obsMetrics: p.ObsMetrics,
	}
}

var _ domain.Service = (*Service)(nil)

// RecordPayment writes a payment event for a completed order.
// An order that cannot be found is skipped without error.
func (s *Service) RecordPayment(ctx context.Context, orderID int64) (err error) {
	if orderID <= 0 {
		return domain.ErrInvalidOrderID
	}
	ctx, span := obstracing.StartOperation(ctx, "paymentlog.record_payment", obstracing.AttrOrderID.Int64(orderID))
	defer func() { obstracing.EndOperation(span, err) }()
	log := obslogger.WithOrder(obslogger.WithContext(ctx, s.log), orderID)

	order, err := s.orders.FindOrder(ctx, orderID)
	if err != nil {
		log.Error("load order failed", zap.Error(err))
		return fmt.Errorf("%w: %w", domain.ErrOrderLookup, err)
	}
	if order == nil {
		log.Debug("order not found, payment event skipped")
		return nil
	}

	record, err := buildPaymentRecord(order)
	if err != nil {
		log.Error("build payment record failed", zap.Error(err))
		return err
	}
	return s.record(ctx, log, record)
}

// RecordRefund writes a refund event for a newly created refund.
// A refund, or its parent order, that cannot be found is skipped without error.
func (s *Service) RecordRefund(ctx context.Context, refundID int64) (err error) {
	if refundID <= 0 {
		return domain.ErrInvalidRefundID
	}
	ctx, span := obstracing.StartOperation(ctx, "paymentlog.record_refund", obstracing.AttrRefundID.Int64(refundID))
	defer func() { obstracing.EndOperation(span, err) }()
	log := obslogger.WithContext(ctx, s.log).With(zap.Int64("refund_id", refundID))

	refund, err := s.orders.FindRefund(ctx, refundID)
	if err != nil {
		log.Error("load refund failed", zap.Error(err))
		return fmt.Errorf("%w: %w", domain.ErrOrderLookup, err)
	}
	if refund == nil {
		log.Debug("refund not found, refund event skipped")
		return nil
	}

	if refund.ParentID <= 0 {
		log.Debug("refund has no parent order, refund event skipped")
		return nil
	}
	log = obslogger.WithOrder(log, refund.ParentID)
	span.SetAttributes(obstracing.AttrOrderID.Int64(refund.ParentID))
	parent, err := s.orders.FindOrder(ctx, refund.ParentID)
	if err != nil {
		log.Error("load parent order failed", zap.Error(err))
		return fmt.Errorf("%w: %w", domain.ErrOrderLookup, err)
	}
	if parent == nil {
		log.Debug("parent order not found, refund event skipped")
		return nil
	}

	record, err := buildRefundRecord(refund, parent, s.gateways)
	if err != nil {
		log.Error("build refund record failed", zap.Error(err))
		return err
	}
	return s.record(ctx, log, record)
}

// ListEvents returns the order's events, most recent first.
func (s *Service) ListEvents(ctx context.Context, orderID int64) (items []domain.Event, err error) {
	if orderID <= 0 {
		return nil, domain.ErrInvalidOrderID
	}
	ctx, span := obstracing.StartOperation(ctx, "paymentlog.list_events", obstracing.AttrOrderID.Int64(orderID))
	defer func() { obstracing.EndOperation(span, err) }()

	items, err = s.repo.ListByOrder(ctx, s.db, orderID)
	if err != nil {
		obslogger.WithOrder(obslogger.WithContext(ctx, s.log), orderID).
			Error("list payment events failed", zap.Error(err))
		s.obsMetrics.RecordList(ctx, "error")
		return nil, fmt.Errorf("%w: %w", domain.ErrListFailed, err)
	}
	s.obsMetrics.RecordList(ctx, "ok")
	return items, nil
}

func (s *Service) record(ctx context.Context, log *zap.Logger, record domain.Record) error {
	eventType := string(record.EventType)
	trace.SpanFromContext(ctx).SetAttributes(
		obstracing.AttrEventType.String(eventType),
		obstracing.AttrGateway.String(record.PaymentGateway),
	)

	for _, hook := range s.hooks {
		if err := hook.BeforeRecord(ctx, &record); err != nil {
			log.Warn("record hook rejected event", zap.String("event_type", eventType), zap.Error(err))
			s.obsMetrics.RecordFailure(ctx, eventType, obsmetrics.FailureReasonHook)
			return fmt.Errorf("%w: %w", domain.ErrHookFailed, err)
		}
	}

	if err := record.Validate(); err != nil {
		log.Warn("payment event rejected",
			zap.String("event_type", string(record.EventType)),
			zap.Error(err),
		)
		s.obsMetrics.RecordFailure(ctx, string(record.EventType), obsmetrics.FailureReasonValidation)
		return err
	}

	event := record.Event(s.clock.Now())
	if err := s.insertEvent(ctx, log, &event); err != nil {
		log.Error("persist payment event failed",
			zap.String("event_type", string(event.EventType)),
			zap.Error(err),
		)
		s.obsMetrics.RecordFailure(ctx, string(event.EventType), obsmetrics.ClassifyDBFailure(err))
		return fmt.Errorf("%w: %w", domain.ErrPersistFailed, err)
	}

	s.obsMetrics.RecordEvent(ctx, event.PaymentGateway, string(event.EventType))
	log.Info("payment event recorded",
		zap.Int64("event_id", event.ID),
		zap.String("event_type", string(event.EventType)),
		zap.String("gateway", event.PaymentGateway),
	)
	return nil
}

// insertEvent runs the insert inside its own transaction and rolls back on any error.
func (s *Service) insertEvent(ctx context.Context, log *zap.Logger, event *domain.Event) error {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	if err := s.repo.Insert(ctx, tx, event); err != nil {
		if rbErr := tx.Rollback().Error; rbErr != nil {
			log.Warn("rollback failed", zap.Error(rbErr))
		}
		return err
	}

	return tx.Commit().Error
}
