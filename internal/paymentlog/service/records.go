package service

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	orderdomain "github.com/smallbiznis/paymentslog/internal/order/domain"
	"github.com/smallbiznis/paymentslog/internal/paymentlog/domain"
	"github.com/smallbiznis/paymentslog/internal/paymentlog/gateway"
	"gorm.io/datatypes"
)

type paymentMetadata struct {
	CreatedVia string     `json:"created_via,omitempty"`
	DatePaid   *time.Time `json:"date_paid,omitempty"`
}

type refundMetadata struct {
	RefundReason string `json:"refund_reason"`
	RefundMethod string `json:"refund_method"`
	RefundedBy   *int64 `json:"refunded_by,omitempty"`
}

func buildPaymentRecord(order *orderdomain.Order) (domain.Record, error) {
	meta := paymentMetadata{CreatedVia: order.CreatedVia}
	if order.DatePaid != nil {
		paid := order.DatePaid.UTC()
		meta.DatePaid = &paid
	}
	payload, err := json.Marshal(meta)
	if err != nil {
		return domain.Record{}, err
	}

	return domain.Record{
		UserID:               order.CustomerID,
		OrderID:              order.ID,
		EventType:            domain.EventTypePayment,
		Currency:             normalizeCurrency(order.Currency),
		PaymentAmount:        decimal.NewNullDecimal(order.Total),
		GatewayTransactionID: optional(order.TransactionID),
		PaymentGateway:       order.PaymentMethod,
		PaymentMethod:        order.PaymentMethodTitle,
		PaymentMetadata:      datatypes.JSON(payload),
	}, nil
}

func buildRefundRecord(refund *orderdomain.Refund, parent *orderdomain.Order, gateways *gateway.Registry) (domain.Record, error) {
	meta := refundMetadata{
		RefundReason: refund.Reason(),
		RefundMethod: domain.RefundMethodManual,
	}
	if refund.RefundedPayment() {
		meta.RefundMethod = domain.RefundMethodGatewayAPI
	}
	if by, ok := refund.RefundedBy(); ok {
		meta.RefundedBy = &by
	}
	payload, err := json.Marshal(meta)
	if err != nil {
		return domain.Record{}, err
	}

	currency := refund.Currency
	if strings.TrimSpace(currency) == "" {
		currency = parent.Currency
	}

	return domain.Record{
		UserID:               parent.CustomerID,
		OrderID:              parent.ID,
		EventType:            domain.EventTypeRefund,
		Currency:             normalizeCurrency(currency),
		PaymentAmount:        decimal.NewNullDecimal(refund.Amount.Abs().Neg()),
		GatewayTransactionID: gateways.Resolve(parent.PaymentMethod, *refund, *parent),
		PaymentGateway:       parent.PaymentMethod,
		PaymentMethod:        parent.PaymentMethodTitle,
		PaymentMetadata:      datatypes.JSON(payload),
	}, nil
}

func normalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
