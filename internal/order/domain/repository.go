package domain

import (
	"context"
	"errors"
)

var ErrInvalidID = errors.New("invalid_id")

// Repository reads orders, refunds and users from the host platform.
// Find methods return nil without error when the record does not exist.
type Repository interface {
	FindOrder(ctx context.Context, id int64) (*Order, error)
	FindRefund(ctx context.Context, id int64) (*Refund, error)
	UserDisplayName(ctx context.Context, userID int64) (string, error)
}
