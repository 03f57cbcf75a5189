package render

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	orderdomain "github.com/smallbiznis/paymentslog/internal/order/domain"
	"github.com/smallbiznis/paymentslog/internal/paymentlog/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

type fakeNames map[int64]string

func (f fakeNames) FindOrder(ctx context.Context, id int64) (*orderdomain.Order, error) {
	return nil, nil
}

func (f fakeNames) FindRefund(ctx context.Context, id int64) (*orderdomain.Refund, error) {
	return nil, nil
}

func (f fakeNames) UserDisplayName(ctx context.Context, userID int64) (string, error) {
	name, ok := f[userID]
	if !ok {
		return "", errors.New("not found")
	}
	return name, nil
}

func TestCreatedVia(t *testing.T) {
	ctx := context.Background()
	names := fakeNames{3: "Shop Manager"}

	cases := []struct {
		name  string
		event domain.Event
		want  string
	}{
		{
			name:  "payment channel",
			event: domain.Event{EventType: domain.EventTypePayment, PaymentMetadata: datatypes.JSON(`{"created_via":"checkout"}`)},
			want:  "checkout",
		},
		{
			name:  "payment without channel",
			event: domain.Event{EventType: domain.EventTypePayment, PaymentMetadata: datatypes.JSON(`{}`)},
			want:  "—",
		},
		{
			name:  "payment without metadata",
			event: domain.Event{EventType: domain.EventTypePayment},
			want:  "—",
		},
		{
			name:  "gateway refund with user",
			event: domain.Event{EventType: domain.EventTypeRefund, PaymentMetadata: datatypes.JSON(`{"refund_method":"gateway_api","refunded_by":3}`)},
			want:  "Gateway API (Shop Manager)",
		},
		{
			name:  "manual refund unknown user",
			event: domain.Event{EventType: domain.EventTypeRefund, PaymentMetadata: datatypes.JSON(`{"refund_method":"manual","refunded_by":9}`)},
			want:  "Manual",
		},
		{
			name:  "refund without metadata",
			event: domain.Event{EventType: domain.EventTypeRefund},
			want:  "Manual",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CreatedVia(ctx, tc.event, names))
		})
	}

	refund := domain.Event{EventType: domain.EventTypeRefund, PaymentMetadata: datatypes.JSON(`{"refund_method":"gateway_api","refunded_by":3}`)}
	assert.Equal(t, "Gateway API", CreatedVia(ctx, refund, nil))
}

func TestHistoryRendererRender(t *testing.T) {
	ref := "re_456"
	events := []domain.Event{
		{
			EventType:            domain.EventTypeRefund,
			EventTS:              time.Date(2026, 3, 1, 12, 1, 0, 0, time.UTC),
			Currency:             "USD",
			PaymentAmount:        decimal.RequireFromString("-5"),
			GatewayTransactionID: &ref,
			PaymentGateway:       "stripe",
			PaymentMethod:        "Credit Card (Stripe)",
			PaymentMetadata:      datatypes.JSON(`{"refund_method":"gateway_api","refunded_by":3}`),
		},
		{
			EventType:       domain.EventTypePayment,
			EventTS:         time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			Currency:        "USD",
			PaymentAmount:   decimal.RequireFromString("19.99"),
			PaymentGateway:  "stripe",
			PaymentMethod:   "<b>Card</b>",
			PaymentMetadata: datatypes.JSON(`{"created_via":"checkout"}`),
		},
	}

	out, err := NewHistoryRenderer(fakeNames{3: "Shop Manager"}).Render(context.Background(), events)
	require.NoError(t, err)
	html := string(out)

	assert.Contains(t, html, "-5.00 USD")
	assert.Contains(t, html, "19.99 USD")
	assert.Contains(t, html, "2026-03-01 12:01:00")
	assert.Contains(t, html, "Gateway API (Shop Manager)")
	assert.Contains(t, html, "checkout")
	assert.Contains(t, html, "re_456")
	assert.Contains(t, html, "&lt;b&gt;Card&lt;/b&gt;")
	assert.Less(t, strings.Index(html, "-5.00 USD"), strings.Index(html, "19.99 USD"))
}

func TestHistoryRendererEmpty(t *testing.T) {
	out, err := NewHistoryRenderer(nil).Render(context.Background(), nil)
	require.NoError(t, err)
	assert.Contains(t, string(out), "No payment events recorded.")
}

