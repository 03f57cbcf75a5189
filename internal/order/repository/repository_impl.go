package repository

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/paymentslog/internal/order/domain"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

type orderRow struct {
	ID                 int64           `gorm:"column:id"`
	Type               string          `gorm:"column:type"`
	ParentOrderID      int64           `gorm:"column:parent_order_id"`
	Status             string          `gorm:"column:status"`
	Currency           string          `gorm:"column:currency"`
	TotalAmount        decimal.Decimal `gorm:"column:total_amount"`
	CustomerID         int64           `gorm:"column:customer_id"`
	PaymentMethod      string          `gorm:"column:payment_method"`
	PaymentMethodTitle string          `gorm:"column:payment_method_title"`
	TransactionID      string          `gorm:"column:transaction_id"`
	CreatedVia         string          `gorm:"column:created_via"`
	DatePaidGMT        *time.Time      `gorm:"column:date_paid_gmt"`
}

type metaRow struct {
	MetaKey   string `gorm:"column:meta_key"`
	MetaValue string `gorm:"column:meta_value"`
}

func (r *repo) FindOrder(ctx context.Context, id int64) (*domain.Order, error) {
	row, err := r.findRow(ctx, id, domain.TypeOrder)
	if err != nil || row == nil {
		return nil, err
	}
	meta, err := r.loadMeta(ctx, row.ID)
	if err != nil {
		return nil, err
	}

	return &domain.Order{
		ID:                 row.ID,
		Status:             row.Status,
		Currency:           strings.ToUpper(strings.TrimSpace(row.Currency)),
		Total:              row.TotalAmount,
		CustomerID:         row.CustomerID,
		PaymentMethod:      strings.TrimSpace(row.PaymentMethod),
		PaymentMethodTitle: strings.TrimSpace(row.PaymentMethodTitle),
		TransactionID:      strings.TrimSpace(row.TransactionID),
		CreatedVia:         strings.TrimSpace(row.CreatedVia),
		DatePaid:           row.DatePaidGMT,
		Meta:               meta,
	}, nil
}

func (r *repo) FindRefund(ctx context.Context, id int64) (*domain.Refund, error) {
	row, err := r.findRow(ctx, id, domain.TypeRefund)
	if err != nil || row == nil {
		return nil, err
	}
	meta, err := r.loadMeta(ctx, row.ID)
	if err != nil {
		return nil, err
	}

	return &domain.Refund{
		ID:       row.ID,
		ParentID: row.ParentOrderID,
		Amount:   row.TotalAmount,
		Currency: strings.ToUpper(strings.TrimSpace(row.Currency)),
		Meta:     meta,
	}, nil
}

func (r *repo) UserDisplayName(ctx context.Context, userID int64) (string, error) {
	if userID <= 0 {
		return "", domain.ErrInvalidID
	}
	var name string
	err := r.db.WithContext(ctx).Raw(
		`SELECT display_name
		 FROM users
		 WHERE id = ?
		 LIMIT 1`,
		userID,
	).Scan(&name).Error
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(name), nil
}

func (r *repo) findRow(ctx context.Context, id int64, typ string) (*orderRow, error) {
	if id <= 0 {
		return nil, domain.ErrInvalidID
	}
	var row orderRow
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, type, parent_order_id, status, currency, total_amount, customer_id,
			payment_method, payment_method_title, transaction_id, created_via, date_paid_gmt
		 FROM orders
		 WHERE id = ? AND type = ?
		 LIMIT 1`,
		id,
		typ,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *repo) loadMeta(ctx context.Context, orderID int64) (domain.Meta, error) {
	var rows []metaRow
	err := r.db.WithContext(ctx).Raw(
		`SELECT meta_key, meta_value
		 FROM order_meta
		 WHERE order_id = ?
		 ORDER BY id`,
		orderID,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	meta := make(domain.Meta, len(rows))
	for _, row := range rows {
		meta[row.MetaKey] = row.MetaValue
	}
	return meta, nil
}
