package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/paymentslog/internal/clock"
	orderdomain "github.com/smallbiznis/paymentslog/internal/order/domain"
	orderrepo "github.com/smallbiznis/paymentslog/internal/order/repository"
	"github.com/smallbiznis/paymentslog/internal/paymentlog/domain"
	"github.com/smallbiznis/paymentslog/internal/paymentlog/gateway"
	paymentlogrepo "github.com/smallbiznis/paymentslog/internal/paymentlog/repository"
	paymentlogservice "github.com/smallbiznis/paymentslog/internal/paymentlog/service"
	"github.com/smallbiznis/paymentslog/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newService(t *testing.T, db *gorm.DB, clk clock.Clock, hooks ...domain.RecordHook) *paymentlogservice.Service {
	t.Helper()
	return paymentlogservice.NewService(paymentlogservice.Params{
		DB:       db,
		Log:      zap.NewNop(),
		Clock:    clk,
		Orders:   orderrepo.Provide(db),
		Repo:     paymentlogrepo.Provide(),
		Gateways: gateway.NewRegistry(nil, gateway.Defaults()...),
		Hooks:    hooks,
	})
}

func seedStripeOrder(t *testing.T, db *gorm.DB) {
	t.Helper()
	paid := baseTime.Add(-time.Hour)
	testutil.SeedOrder(t, db, testutil.Order{
		ID:                 42,
		Currency:           "USD",
		Total:              "19.99",
		CustomerID:         7,
		PaymentMethod:      "stripe",
		PaymentMethodTitle: "Credit Card (Stripe)",
		TransactionID:      "pi_123",
		CreatedVia:         "checkout",
		DatePaid:           &paid,
		Meta:               map[string]string{"_stripe_refund_id": "re_456"},
	})
}

func decodeMetadata(t *testing.T, ev domain.Event) map[string]any {
	t.Helper()
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(ev.PaymentMetadata, &out))
	return out
}

func TestRecordPaymentThenRefund(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	clk := clock.NewFakeClock(baseTime)
	svc := newService(t, db, clk)

	seedStripeOrder(t, db)
	testutil.SeedRefund(t, db, testutil.Refund{
		ID:       101,
		ParentID: 42,
		Amount:   "-5.00",
		Currency: "USD",
		Meta: map[string]string{
			orderdomain.MetaRefundReason:    "damaged item",
			orderdomain.MetaRefundedBy:      "3",
			orderdomain.MetaRefundedPayment: "1",
		},
	})

	require.NoError(t, svc.RecordPayment(ctx, 42))
	assert.Equal(t, int64(1), testutil.CountEvents(t, db))

	clk.Advance(time.Minute)
	require.NoError(t, svc.RecordRefund(ctx, 101))
	assert.Equal(t, int64(2), testutil.CountEvents(t, db))

	events, err := svc.ListEvents(ctx, 42)
	require.NoError(t, err)
	require.Len(t, events, 2)

	refund, payment := events[0], events[1]

	assert.Equal(t, domain.EventTypeRefund, refund.EventType)
	assert.True(t, decimal.RequireFromString("-5.00").Equal(refund.PaymentAmount), "got %s", refund.PaymentAmount)
	assert.Equal(t, int64(7), refund.UserID)
	assert.Equal(t, "USD", refund.Currency)
	assert.Equal(t, "stripe", refund.PaymentGateway)
	require.NotNil(t, refund.GatewayTransactionID)
	assert.Equal(t, "re_456", *refund.GatewayTransactionID)
	assert.True(t, refund.EventTS.Equal(baseTime.Add(time.Minute)))
	refundMeta := decodeMetadata(t, refund)
	assert.Equal(t, "damaged item", refundMeta[domain.MetaRefundReason])
	assert.Equal(t, domain.RefundMethodGatewayAPI, refundMeta[domain.MetaRefundMethod])
	assert.EqualValues(t, 3, refundMeta[domain.MetaRefundedBy])

	assert.Equal(t, domain.EventTypePayment, payment.EventType)
	assert.True(t, decimal.RequireFromString("19.99").Equal(payment.PaymentAmount), "got %s", payment.PaymentAmount)
	assert.Equal(t, int64(42), payment.OrderID)
	assert.Equal(t, "Credit Card (Stripe)", payment.PaymentMethod)
	require.NotNil(t, payment.GatewayTransactionID)
	assert.Equal(t, "pi_123", *payment.GatewayTransactionID)
	assert.True(t, payment.EventTS.Equal(baseTime))
	paymentMeta := decodeMetadata(t, payment)
	assert.Equal(t, "checkout", paymentMeta[domain.MetaCreatedVia])
	assert.Contains(t, paymentMeta, domain.MetaDatePaid)

	assert.True(t, refund.EventTS.After(payment.EventTS))
}

func TestRecordRefundAmountIsAlwaysNegative(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := newService(t, db, clock.NewFakeClock(baseTime))

	seedStripeOrder(t, db)
	// Some hosts store refund totals as positive numbers.
	testutil.SeedRefund(t, db, testutil.Refund{ID: 101, ParentID: 42, Amount: "2.50"})

	require.NoError(t, svc.RecordRefund(ctx, 101))

	events, err := svc.ListEvents(ctx, 42)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, decimal.RequireFromString("-2.5").Equal(events[0].PaymentAmount))
	assert.Equal(t, "USD", events[0].Currency, "falls back to parent order currency")

	meta := decodeMetadata(t, events[0])
	assert.Equal(t, domain.RefundMethodManual, meta[domain.MetaRefundMethod])
	assert.NotContains(t, meta, domain.MetaRefundedBy)
}

func TestRecordRefundUnknownGatewayHasNoReference(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := newService(t, db, clock.NewFakeClock(baseTime))

	testutil.SeedOrder(t, db, testutil.Order{
		ID: 50, Currency: "EUR", Total: "10", CustomerID: 0,
		PaymentMethod: "android_in_app_purchase", PaymentMethodTitle: "Google Play",
		TransactionID: "GPA.1234",
	})
	testutil.SeedRefund(t, db, testutil.Refund{ID: 51, ParentID: 50, Amount: "-10", Currency: "EUR"})

	require.NoError(t, svc.RecordRefund(ctx, 51))

	events, err := svc.ListEvents(ctx, 50)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Nil(t, events[0].GatewayTransactionID)
	assert.Equal(t, int64(0), events[0].UserID)
}

func TestRecordMissingReferentIsNoop(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := newService(t, db, clock.NewFakeClock(baseTime))

	require.NoError(t, svc.RecordPayment(ctx, 404))
	require.NoError(t, svc.RecordRefund(ctx, 405))

	// Refund whose parent order is gone.
	testutil.SeedRefund(t, db, testutil.Refund{ID: 406, ParentID: 407, Amount: "-1", Currency: "USD"})
	require.NoError(t, svc.RecordRefund(ctx, 406))

	assert.Equal(t, int64(0), testutil.CountEvents(t, db))
}

func TestRecordRejectsNonPositiveIDs(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, testutil.NewDB(t), clock.NewFakeClock(baseTime))

	err := svc.RecordPayment(ctx, 0)
	require.ErrorIs(t, err, domain.ErrInvalidOrderID)

	err = svc.RecordRefund(ctx, -3)
	require.ErrorIs(t, err, domain.ErrInvalidRefundID)
	assert.NotErrorIs(t, err, domain.ErrInvalidOrderID)
}

func TestRecordRejectsInvalidRecord(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := newService(t, db, clock.NewFakeClock(baseTime))

	testutil.SeedOrder(t, db, testutil.Order{
		ID: 60, Currency: "USD", Total: "5", CustomerID: 1,
		PaymentMethod: "", PaymentMethodTitle: "Cash",
	})

	err := svc.RecordPayment(ctx, 60)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidRecord))

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "payment_gateway", verr.Field)
	assert.Equal(t, int64(0), testutil.CountEvents(t, db))
}

func TestRecordHooks(t *testing.T) {
	ctx := context.Background()

	t.Run("mutates record", func(t *testing.T) {
		db := testutil.NewDB(t)
		hook := domain.RecordHookFunc(func(ctx context.Context, record *domain.Record) error {
			record.PaymentMethod = "Card via hook"
			return nil
		})
		svc := newService(t, db, clock.NewFakeClock(baseTime), hook)
		seedStripeOrder(t, db)

		require.NoError(t, svc.RecordPayment(ctx, 42))
		events, err := svc.ListEvents(ctx, 42)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "Card via hook", events[0].PaymentMethod)
	})

	t.Run("invalid mutation is rejected", func(t *testing.T) {
		db := testutil.NewDB(t)
		hook := domain.RecordHookFunc(func(ctx context.Context, record *domain.Record) error {
			record.EventType = "chargeback"
			return nil
		})
		svc := newService(t, db, clock.NewFakeClock(baseTime), hook)
		seedStripeOrder(t, db)

		err := svc.RecordPayment(ctx, 42)
		require.ErrorIs(t, err, domain.ErrInvalidRecord)
		assert.Equal(t, int64(0), testutil.CountEvents(t, db))
	})

	t.Run("hook error aborts", func(t *testing.T) {
		db := testutil.NewDB(t)
		hook := domain.RecordHookFunc(func(ctx context.Context, record *domain.Record) error {
			return errors.New("blocked")
		})
		svc := newService(t, db, clock.NewFakeClock(baseTime), hook)
		seedStripeOrder(t, db)

		err := svc.RecordPayment(ctx, 42)
		require.ErrorIs(t, err, domain.ErrHookFailed)
		assert.Equal(t, int64(0), testutil.CountEvents(t, db))
	})
}

func TestListEventsScopedAndOrdered(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	clk := clock.NewFakeClock(baseTime)
	svc := newService(t, db, clk)

	seedStripeOrder(t, db)
	testutil.SeedOrder(t, db, testutil.Order{
		ID: 43, Currency: "USD", Total: "1", CustomerID: 8,
		PaymentMethod: "bacs", PaymentMethodTitle: "Bank transfer",
	})
	for _, id := range []int64{101, 102, 103} {
		testutil.SeedRefund(t, db, testutil.Refund{ID: id, ParentID: 42, Amount: "-1", Currency: "USD"})
	}

	require.NoError(t, svc.RecordPayment(ctx, 42))
	clk.Advance(time.Second)
	require.NoError(t, svc.RecordPayment(ctx, 43))
	for _, id := range []int64{101, 102, 103} {
		clk.Advance(time.Second)
		require.NoError(t, svc.RecordRefund(ctx, id))
	}

	events, err := svc.ListEvents(ctx, 42)
	require.NoError(t, err)
	require.Len(t, events, 4)
	for i := range events {
		assert.Equal(t, int64(42), events[i].OrderID)
		if i > 0 {
			assert.True(t, events[i-1].EventTS.After(events[i].EventTS), "events must be strictly descending")
		}
	}

	none, err := svc.ListEvents(ctx, 999)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	_, err = svc.ListEvents(ctx, 0)
	require.ErrorIs(t, err, domain.ErrInvalidOrderID)
}
