package domain

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Row types stored in the host platform's orders table.
const (
	TypeOrder  = "shop_order"
	TypeRefund = "shop_order_refund"
)

// Meta keys the host platform writes on refunds.
const (
	MetaRefundReason    = "_refund_reason"
	MetaRefundedBy      = "_refunded_by"
	MetaRefundedPayment = "_refunded_payment"
)

// Order is a host platform order as seen by the payments log.
type Order struct {
	ID                 int64
	Status             string
	Currency           string
	Total              decimal.Decimal
	CustomerID         int64
	PaymentMethod      string
	PaymentMethodTitle string
	TransactionID      string
	CreatedVia         string
	DatePaid           *time.Time
	Meta               Meta
}

// Refund is a refund row attached to a parent order.
type Refund struct {
	ID       int64
	ParentID int64
	Amount   decimal.Decimal
	Currency string
	Meta     Meta
}

// Reason returns the free-text refund reason.
func (r Refund) Reason() string {
	v, _ := r.Meta.String(MetaRefundReason)
	return v
}

// RefundedBy returns the id of the user that issued the refund, if recorded.
func (r Refund) RefundedBy() (int64, bool) {
	id, ok := r.Meta.Int64(MetaRefundedBy)
	if !ok || id <= 0 {
		return 0, false
	}
	return id, true
}

// RefundedPayment reports whether the gateway processed the refund.
func (r Refund) RefundedPayment() bool {
	return r.Meta.Bool(MetaRefundedPayment)
}

// Meta holds string-valued key/value metadata.
type Meta map[string]string

// String returns the trimmed value for key; empty values count as absent.
func (m Meta) String(key string) (string, bool) {
	if m == nil {
		return "", false
	}
	v := strings.TrimSpace(m[key])
	if v == "" {
		return "", false
	}
	return v, true
}

// Strings decodes a JSON list value. A plain scalar is returned as a one-element list.
func (m Meta) Strings(key string) []string {
	raw, ok := m.String(key)
	if !ok {
		return nil
	}
	if !strings.HasPrefix(raw, "[") {
		return []string{raw}
	}

	var items []any
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		switch v := item.(type) {
		case string:
			s = strings.TrimSpace(v)
		case float64:
			s = strconv.FormatFloat(v, 'f', -1, 64)
		}
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Int64 parses an integer-like value.
func (m Meta) Int64(key string) (int64, bool) {
	raw, ok := m.String(key)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Bool interprets common truthy spellings.
func (m Meta) Bool(key string) bool {
	raw, ok := m.String(key)
	if !ok {
		return false
	}
	switch strings.ToLower(raw) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}
