package gateway

import (
	"testing"

	"github.com/smallbiznis/paymentslog/internal/config"
	orderdomain "github.com/smallbiznis/paymentslog/internal/order/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtures() (orderdomain.Refund, orderdomain.Order) {
	refund := orderdomain.Refund{
		ID:       101,
		ParentID: 42,
		Meta: orderdomain.Meta{
			"_wcpay_refund_id":  "re_wcpay_1",
			"_square_refund_id": "sq_ref_1",
			"_mollie_refund_id": "re_mollie_1",
		},
	}
	parent := orderdomain.Order{
		ID: 42,
		Meta: orderdomain.Meta{
			"_stripe_refund_id": "re_stripe_1",
			"_ppcp_refunds":     `["PP-REF-1","PP-REF-2"]`,
		},
	}
	return refund, parent
}

func TestRegistryResolveBuiltins(t *testing.T) {
	registry := NewRegistry(nil, Defaults()...)
	refund, parent := fixtures()

	cases := []struct {
		gateway string
		want    *string
	}{
		{gateway: "stripe", want: strPtr("re_stripe_1")},
		{gateway: " Stripe ", want: strPtr("re_stripe_1")},
		{gateway: "woocommerce_payments", want: strPtr("re_wcpay_1")},
		{gateway: "ppcp-gateway", want: strPtr("PP-REF-1")},
		{gateway: "square_credit_card", want: strPtr("sq_ref_1")},
		{gateway: "android_in_app_purchase", want: nil},
		{gateway: "apple_in_app_purchase", want: nil},
		{gateway: "bacs", want: nil},
		{gateway: "", want: nil},
	}

	for _, tc := range cases {
		t.Run(tc.gateway, func(t *testing.T) {
			assert.Equal(t, tc.want, registry.Resolve(tc.gateway, refund, parent))
		})
	}
}

func TestRegistryResolveMissingReference(t *testing.T) {
	registry := NewRegistry(nil, Defaults()...)

	assert.Nil(t, registry.Resolve("stripe", orderdomain.Refund{}, orderdomain.Order{}))
	assert.Nil(t, registry.Resolve("ppcp-gateway", orderdomain.Refund{}, orderdomain.Order{
		Meta: orderdomain.Meta{"_ppcp_refunds": "[]"},
	}))
	assert.True(t, registry.Known("stripe"))
	assert.False(t, registry.Known("bacs"))
}

func TestRegistryConfiguredRulesOverrideBuiltins(t *testing.T) {
	rules, err := config.NewStaticGatewayRules(
		config.GatewayRule{Key: "mollie", Source: config.GatewaySourceRefundMeta, MetaKey: "_mollie_refund_id"},
		config.GatewayRule{Key: "stripe", Source: config.GatewaySourceNone},
	)
	require.NoError(t, err)

	registry := NewRegistry(rules, Defaults()...)
	refund, parent := fixtures()

	assert.Equal(t, strPtr("re_mollie_1"), registry.Resolve("mollie", refund, parent))
	assert.Nil(t, registry.Resolve("stripe", refund, parent))
	assert.Equal(t, strPtr("PP-REF-1"), registry.Resolve("ppcp-gateway", refund, parent))
}

func TestNilRegistry(t *testing.T) {
	var registry *Registry
	refund, parent := fixtures()
	assert.Nil(t, registry.Resolve("stripe", refund, parent))
}

func strPtr(v string) *string { return &v }
