package repository

import (
	"context"

	"github.com/smallbiznis/paymentslog/internal/paymentlog/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, event *domain.Event) error {
	return db.WithContext(ctx).Create(event).Error
}

func (r *repo) ListByOrder(ctx context.Context, db *gorm.DB, orderID int64) ([]domain.Event, error) {
	items := []domain.Event{}
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, order_id, event_type, event_ts, currency, payment_amount,
			gateway_transaction_id, payment_gateway, payment_method, payment_metadata
		 FROM payments_log
		 WHERE order_id = ?
		 ORDER BY event_ts DESC, id DESC`,
		orderID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
