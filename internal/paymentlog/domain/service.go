package domain

import (
	"context"

	orderdomain "github.com/smallbiznis/paymentslog/internal/order/domain"
)

type Service interface {
	RecordPayment(ctx context.Context, orderID int64) error
	RecordRefund(ctx context.Context, refundID int64) error
	ListEvents(ctx context.Context, orderID int64) ([]Event, error)
}

// RecordHook may adjust a record right before it is validated and written.
// Returning an error aborts the write.
type RecordHook interface {
	BeforeRecord(ctx context.Context, record *Record) error
}

// RecordHookFunc adapts a function to RecordHook.
type RecordHookFunc func(ctx context.Context, record *Record) error

func (f RecordHookFunc) BeforeRecord(ctx context.Context, record *Record) error {
	return f(ctx, record)
}

// RefundReferenceResolver finds the gateway transaction id of a refund.
type RefundReferenceResolver interface {
	Resolve(refund orderdomain.Refund, parent orderdomain.Order) *string
}
