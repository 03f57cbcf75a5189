package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// TableName is the payments log table.
const TableName = "payments_log"

type EventType string

const (
	EventTypePayment EventType = "payment"
	EventTypeRefund  EventType = "refund"
)

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool {
	switch t {
	case EventTypePayment, EventTypeRefund:
		return true
	default:
		return false
	}
}

// Event is one persisted payments_log row. Rows are never updated.
type Event struct {
	ID                   int64           `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID               int64           `json:"user_id" gorm:"not null"`
	OrderID              int64           `json:"order_id" gorm:"not null;index:idx_payments_log_order_ts,priority:1"`
	EventType            EventType       `json:"event_type" gorm:"type:varchar(16);not null;check:chk_payments_log_event_type,event_type IN ('payment','refund')"`
	EventTS              time.Time       `json:"event_ts" gorm:"column:event_ts;not null;default:CURRENT_TIMESTAMP;index:idx_payments_log_order_ts,priority:2"`
	Currency             string          `json:"currency" gorm:"type:char(3);not null"`
	PaymentAmount        decimal.Decimal `json:"payment_amount" gorm:"type:decimal(19,4);not null"`
	GatewayTransactionID *string         `json:"gateway_transaction_id" gorm:"type:varchar(255)"`
	PaymentGateway       string          `json:"payment_gateway" gorm:"type:varchar(100);not null"`
	PaymentMethod        string          `json:"payment_method" gorm:"type:varchar(255);not null"`
	PaymentMetadata      datatypes.JSON  `json:"payment_metadata,omitempty"`
}

func (Event) TableName() string { return TableName }

// Metadata keys written into payment_metadata.
const (
	MetaCreatedVia   = "created_via"
	MetaDatePaid     = "date_paid"
	MetaRefundReason = "refund_reason"
	MetaRefundMethod = "refund_method"
	MetaRefundedBy   = "refunded_by"
)

// Refund method classifications.
const (
	RefundMethodGatewayAPI = "gateway_api"
	RefundMethodManual     = "manual"
)

// Record is the assembled, not yet validated, shape of an event.
type Record struct {
	UserID               int64
	OrderID              int64
	EventType            EventType
	Currency             string
	PaymentAmount        decimal.NullDecimal
	GatewayTransactionID *string
	PaymentGateway       string
	PaymentMethod        string
	PaymentMetadata      datatypes.JSON
}

// Event converts a validated record to a row stamped at ts.
func (r Record) Event(ts time.Time) Event {
	return Event{
		UserID:               r.UserID,
		OrderID:              r.OrderID,
		EventType:            r.EventType,
		EventTS:              ts,
		Currency:             r.Currency,
		PaymentAmount:        r.PaymentAmount.Decimal,
		GatewayTransactionID: r.GatewayTransactionID,
		PaymentGateway:       r.PaymentGateway,
		PaymentMethod:        r.PaymentMethod,
		PaymentMetadata:      r.PaymentMetadata,
	}
}
