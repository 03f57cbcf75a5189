// Package testutil sets up in-memory databases holding the host platform
// tables and the payments_log table for package tests.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/paymentslog/internal/migration"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var hostSchema = []string{
	`CREATE TABLE IF NOT EXISTS orders (
		id BIGINT PRIMARY KEY,
		type TEXT NOT NULL,
		parent_order_id BIGINT NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT '',
		currency TEXT NOT NULL DEFAULT '',
		total_amount DECIMAL(19,4) NOT NULL DEFAULT 0,
		customer_id BIGINT NOT NULL DEFAULT 0,
		payment_method TEXT NOT NULL DEFAULT '',
		payment_method_title TEXT NOT NULL DEFAULT '',
		transaction_id TEXT NOT NULL DEFAULT '',
		created_via TEXT NOT NULL DEFAULT '',
		date_paid_gmt DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS order_meta (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		order_id BIGINT NOT NULL,
		meta_key TEXT NOT NULL,
		meta_value TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT PRIMARY KEY,
		display_name TEXT NOT NULL
	)`,
}

// NewDB opens an isolated in-memory database with the host tables and payments_log.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open db")

	require.NoError(t, CreateHostSchema(db), "create host schema")
	require.NoError(t, migration.Install(context.Background(), db), "install payments_log")

	return db
}

// CreateHostSchema creates the host platform tables read by the order adapter.
func CreateHostSchema(db *gorm.DB) error {
	for _, stmt := range hostSchema {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

// Order seeds a host order row.
type Order struct {
	ID                 int64
	Currency           string
	Total              string
	CustomerID         int64
	PaymentMethod      string
	PaymentMethodTitle string
	TransactionID      string
	CreatedVia         string
	DatePaid           *time.Time
	Meta               map[string]string
}

// Refund seeds a host refund row attached to ParentID.
type Refund struct {
	ID       int64
	ParentID int64
	Amount   string
	Currency string
	Meta     map[string]string
}

func SeedOrder(t *testing.T, db *gorm.DB, o Order) {
	t.Helper()
	require.NoError(t, db.Exec(
		`INSERT INTO orders (id, type, status, currency, total_amount, customer_id,
			payment_method, payment_method_title, transaction_id, created_via, date_paid_gmt)
		 VALUES (?, 'shop_order', 'processing', ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.Currency, o.Total, o.CustomerID, o.PaymentMethod, o.PaymentMethodTitle,
		o.TransactionID, o.CreatedVia, o.DatePaid,
	).Error)
	seedMeta(t, db, o.ID, o.Meta)
}

func SeedRefund(t *testing.T, db *gorm.DB, r Refund) {
	t.Helper()
	require.NoError(t, db.Exec(
		`INSERT INTO orders (id, type, parent_order_id, status, currency, total_amount)
		 VALUES (?, 'shop_order_refund', ?, 'completed', ?, ?)`,
		r.ID, r.ParentID, r.Currency, r.Amount,
	).Error)
	seedMeta(t, db, r.ID, r.Meta)
}

func SeedUser(t *testing.T, db *gorm.DB, id int64, displayName string) {
	t.Helper()
	require.NoError(t, db.Exec(`INSERT INTO users (id, display_name) VALUES (?, ?)`, id, displayName).Error)
}

func CountEvents(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Raw("SELECT COUNT(1) FROM payments_log").Scan(&count).Error)
	return count
}

func seedMeta(t *testing.T, db *gorm.DB, orderID int64, meta map[string]string) {
	t.Helper()
	for key, value := range meta {
		require.NoError(t, db.Exec(
			`INSERT INTO order_meta (order_id, meta_key, meta_value) VALUES (?, ?, ?)`,
			orderID, key, value,
		).Error)
	}
}
