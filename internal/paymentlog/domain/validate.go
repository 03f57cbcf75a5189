package domain

import (
	"encoding/json"
	"strings"
)

// Validate checks the record against the payments_log invariants.
func (r Record) Validate() error {
	if r.OrderID <= 0 {
		return &ValidationError{Field: "order_id", Reason: "required"}
	}
	if r.UserID < 0 {
		return &ValidationError{Field: "user_id", Reason: "must not be negative"}
	}
	if r.EventType == "" {
		return &ValidationError{Field: "event_type", Reason: "required"}
	}
	if !r.EventType.Valid() {
		return &ValidationError{Field: "event_type", Reason: "must be payment or refund"}
	}
	if r.Currency == "" {
		return &ValidationError{Field: "currency", Reason: "required"}
	}
	if !isCurrencyCode(r.Currency) {
		return &ValidationError{Field: "currency", Reason: "must be a 3-letter code"}
	}
	if !r.PaymentAmount.Valid {
		return &ValidationError{Field: "payment_amount", Reason: "required"}
	}
	switch r.EventType {
	case EventTypePayment:
		if r.PaymentAmount.Decimal.IsNegative() {
			return &ValidationError{Field: "payment_amount", Reason: "payment must not be negative"}
		}
	case EventTypeRefund:
		if r.PaymentAmount.Decimal.IsPositive() {
			return &ValidationError{Field: "payment_amount", Reason: "refund must not be positive"}
		}
	}
	if strings.TrimSpace(r.PaymentGateway) == "" {
		return &ValidationError{Field: "payment_gateway", Reason: "required"}
	}
	if strings.TrimSpace(r.PaymentMethod) == "" {
		return &ValidationError{Field: "payment_method", Reason: "required"}
	}
	if len(r.PaymentMetadata) > 0 && !json.Valid(r.PaymentMetadata) {
		return &ValidationError{Field: "payment_metadata", Reason: "must be valid JSON"}
	}
	return nil
}

func isCurrencyCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, c := range code {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}
