package render

import (
	"bytes"
	"context"
	"encoding/json"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	orderdomain "github.com/smallbiznis/paymentslog/internal/order/domain"
	"github.com/smallbiznis/paymentslog/internal/paymentlog/domain"
)

const placeholder = "—"

const historyHTMLTemplate = `<div class="payments-log">
  <table class="widefat striped">
    <thead>
      <tr>
        <th>Date</th>
        <th>Type</th>
        <th class="td-right">Amount</th>
        <th>Gateway</th>
        <th>Method</th>
        <th>Transaction ID</th>
        <th>Created via</th>
      </tr>
    </thead>
    <tbody>
      {{range .Rows}}
      <tr class="event-{{.Type}}">
        <td>{{formatDate .Date}}</td>
        <td>{{.TypeLabel}}</td>
        <td class="td-right">{{formatMoney .Amount .Currency}}</td>
        <td>{{.Gateway}}</td>
        <td>{{.Method}}</td>
        <td>{{.TransactionID}}</td>
        <td>{{.CreatedVia}}</td>
      </tr>
      {{else}}
      <tr><td colspan="7">No payment events recorded.</td></tr>
      {{end}}
    </tbody>
  </table>
</div>
`

// UserNames resolves user ids to display names.
type UserNames interface {
	UserDisplayName(ctx context.Context, userID int64) (string, error)
}

type HistoryRenderer struct {
	tpl   *template.Template
	names UserNames
}

type historyView struct {
	Rows []historyRow
}

type historyRow struct {
	Date          time.Time
	Type          string
	TypeLabel     string
	Amount        decimal.Decimal
	Currency      string
	Gateway       string
	Method        string
	TransactionID string
	CreatedVia    string
}

func NewHistoryRenderer(orders orderdomain.Repository) *HistoryRenderer {
	funcs := template.FuncMap{
		"formatMoney": formatMoney,
		"formatDate":  formatDate,
	}
	r := &HistoryRenderer{
		tpl: template.Must(template.New("payments_log").Funcs(funcs).Parse(historyHTMLTemplate)),
	}
	if orders != nil {
		r.names = orders
	}
	return r
}

// Render writes events as an HTML table fragment in the order given.
func (r *HistoryRenderer) Render(ctx context.Context, events []domain.Event) ([]byte, error) {
	view := historyView{Rows: make([]historyRow, 0, len(events))}
	for _, event := range events {
		view.Rows = append(view.Rows, historyRow{
			Date:          event.EventTS,
			Type:          string(event.EventType),
			TypeLabel:     typeLabel(event.EventType),
			Amount:        event.PaymentAmount,
			Currency:      event.Currency,
			Gateway:       orPlaceholder(event.PaymentGateway),
			Method:        orPlaceholder(event.PaymentMethod),
			TransactionID: orPlaceholder(deref(event.GatewayTransactionID)),
			CreatedVia:    CreatedVia(ctx, event, r.names),
		})
	}

	var buf bytes.Buffer
	if err := r.tpl.Execute(&buf, view); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type eventMetadata struct {
	CreatedVia   string `json:"created_via"`
	RefundMethod string `json:"refund_method"`
	RefundedBy   *int64 `json:"refunded_by"`
}

// CreatedVia derives the "created via" column for event. names may be nil.
func CreatedVia(ctx context.Context, event domain.Event, names UserNames) string {
	var meta eventMetadata
	if len(event.PaymentMetadata) > 0 {
		_ = json.Unmarshal(event.PaymentMetadata, &meta)
	}

	if event.EventType != domain.EventTypeRefund {
		return orPlaceholder(meta.CreatedVia)
	}

	label := "Manual"
	if meta.RefundMethod == domain.RefundMethodGatewayAPI {
		label = "Gateway API"
	}
	if meta.RefundedBy == nil || *meta.RefundedBy <= 0 || names == nil {
		return label
	}
	name, err := names.UserDisplayName(ctx, *meta.RefundedBy)
	if err != nil || strings.TrimSpace(name) == "" {
		return label
	}
	return label + " (" + strings.TrimSpace(name) + ")"
}

func typeLabel(t domain.EventType) string {
	switch t {
	case domain.EventTypePayment:
		return "Payment"
	case domain.EventTypeRefund:
		return "Refund"
	default:
		return string(t)
	}
}

func formatMoney(amount decimal.Decimal, currency string) string {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		return amount.StringFixed(2)
	}
	return amount.StringFixed(2) + " " + currency
}

func formatDate(value time.Time) string {
	if value.IsZero() {
		return placeholder
	}
	return value.UTC().Format("2006-01-02 15:04:05")
}

func orPlaceholder(value string) string {
	if strings.TrimSpace(value) == "" {
		return placeholder
	}
	return value
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
