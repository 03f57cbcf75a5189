package gateway

import (
	orderdomain "github.com/smallbiznis/paymentslog/internal/order/domain"
	"github.com/smallbiznis/paymentslog/internal/paymentlog/domain"
)

// Gateway keys with built-in refund reference rules.
const (
	Stripe               = "stripe"
	WooCommercePayments  = "woocommerce_payments"
	PayPalPayments       = "ppcp-gateway"
	SquareCreditCard     = "square_credit_card"
	AndroidInAppPurchase = "android_in_app_purchase"
	AppleInAppPurchase   = "apple_in_app_purchase"
)

const (
	stripeRefundMetaKey = "_stripe_refund_id"
	wcpayRefundMetaKey  = "_wcpay_refund_id"
	ppcpRefundsMetaKey  = "_ppcp_refunds"
	squareRefundMetaKey = "_square_refund_id"
)

// Strategy is a refund reference resolver bound to one gateway key.
type Strategy interface {
	domain.RefundReferenceResolver
	Gateway() string
}

type metaSource int

const (
	sourceOrder metaSource = iota
	sourceRefund
)

type metaStrategy struct {
	gateway string
	source  metaSource
	key     string
	list    bool
}

func (s metaStrategy) Gateway() string { return s.gateway }

func (s metaStrategy) Resolve(refund orderdomain.Refund, parent orderdomain.Order) *string {
	meta := parent.Meta
	if s.source == sourceRefund {
		meta = refund.Meta
	}
	if s.list {
		items := meta.Strings(s.key)
		if len(items) == 0 {
			return nil
		}
		return &items[0]
	}
	value, ok := meta.String(s.key)
	if !ok {
		return nil
	}
	return &value
}

type unavailableStrategy struct {
	gateway string
}

func (s unavailableStrategy) Gateway() string { return s.gateway }

func (unavailableStrategy) Resolve(orderdomain.Refund, orderdomain.Order) *string { return nil }

// OrderMeta reads the reference from a parent order meta value.
func OrderMeta(gateway, key string) Strategy {
	return metaStrategy{gateway: gateway, source: sourceOrder, key: key}
}

// OrderMetaList reads the first entry of a list stored on the parent order.
func OrderMetaList(gateway, key string) Strategy {
	return metaStrategy{gateway: gateway, source: sourceOrder, key: key, list: true}
}

// RefundMeta reads the reference from the refund's own meta.
func RefundMeta(gateway, key string) Strategy {
	return metaStrategy{gateway: gateway, source: sourceRefund, key: key}
}

// Unavailable marks a gateway that never exposes refund references.
func Unavailable(gateway string) Strategy {
	return unavailableStrategy{gateway: gateway}
}

// Defaults returns the built-in gateway rules.
func Defaults() []Strategy {
	return []Strategy{
		OrderMeta(Stripe, stripeRefundMetaKey),
		RefundMeta(WooCommercePayments, wcpayRefundMetaKey),
		OrderMetaList(PayPalPayments, ppcpRefundsMetaKey),
		RefundMeta(SquareCreditCard, squareRefundMetaKey),
		Unavailable(AndroidInAppPurchase),
		Unavailable(AppleInAppPurchase),
	}
}
