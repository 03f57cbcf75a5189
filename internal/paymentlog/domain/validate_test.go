package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func validPayment() Record {
	return Record{
		UserID:          7,
		OrderID:         42,
		EventType:       EventTypePayment,
		Currency:        "USD",
		PaymentAmount:   decimal.NewNullDecimal(decimal.RequireFromString("19.99")),
		PaymentGateway:  "stripe",
		PaymentMethod:   "Credit Card (Stripe)",
		PaymentMetadata: datatypes.JSON(`{"created_via":"checkout"}`),
	}
}

func TestRecordValidate(t *testing.T) {
	require.NoError(t, validPayment().Validate())

	refund := validPayment()
	refund.EventType = EventTypeRefund
	refund.PaymentAmount = decimal.NewNullDecimal(decimal.RequireFromString("-5.00"))
	require.NoError(t, refund.Validate())

	guest := validPayment()
	guest.UserID = 0
	require.NoError(t, guest.Validate(), "guest customers have user id 0")

	noMetadata := validPayment()
	noMetadata.PaymentMetadata = nil
	require.NoError(t, noMetadata.Validate())

	cases := []struct {
		name   string
		mutate func(r *Record)
		field  string
	}{
		{name: "missing order", mutate: func(r *Record) { r.OrderID = 0 }, field: "order_id"},
		{name: "negative user", mutate: func(r *Record) { r.UserID = -1 }, field: "user_id"},
		{name: "missing event type", mutate: func(r *Record) { r.EventType = "" }, field: "event_type"},
		{name: "unknown event type", mutate: func(r *Record) { r.EventType = "chargeback" }, field: "event_type"},
		{name: "missing currency", mutate: func(r *Record) { r.Currency = "" }, field: "currency"},
		{name: "lowercase currency", mutate: func(r *Record) { r.Currency = "usd" }, field: "currency"},
		{name: "long currency", mutate: func(r *Record) { r.Currency = "USDT" }, field: "currency"},
		{name: "missing amount", mutate: func(r *Record) { r.PaymentAmount = decimal.NullDecimal{} }, field: "payment_amount"},
		{name: "negative payment", mutate: func(r *Record) {
			r.PaymentAmount = decimal.NewNullDecimal(decimal.RequireFromString("-1"))
		}, field: "payment_amount"},
		{name: "positive refund", mutate: func(r *Record) {
			r.EventType = EventTypeRefund
			r.PaymentAmount = decimal.NewNullDecimal(decimal.RequireFromString("1"))
		}, field: "payment_amount"},
		{name: "missing gateway", mutate: func(r *Record) { r.PaymentGateway = " " }, field: "payment_gateway"},
		{name: "missing method", mutate: func(r *Record) { r.PaymentMethod = "" }, field: "payment_method"},
		{name: "broken metadata", mutate: func(r *Record) { r.PaymentMetadata = datatypes.JSON(`{"created_via":`) }, field: "payment_metadata"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			record := validPayment()
			tc.mutate(&record)

			err := record.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidRecord))

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}
