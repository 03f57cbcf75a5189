package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, event *Event) error
	ListByOrder(ctx context.Context, db *gorm.DB, orderID int64) ([]Event, error)
}
