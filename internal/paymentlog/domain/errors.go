package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRecord   = errors.New("invalid_record")
	ErrPersistFailed   = errors.New("persist_failed")
	ErrListFailed      = errors.New("list_failed")
	ErrOrderLookup     = errors.New("order_lookup_failed")
	ErrInvalidOrderID  = errors.New("invalid_order_id")
	ErrInvalidRefundID = errors.New("invalid_refund_id")
	ErrHookFailed      = errors.New("record_hook_failed")
)

// ValidationError names the field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidRecord
}
