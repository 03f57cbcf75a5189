package gateway

import (
	"strings"

	"github.com/smallbiznis/paymentslog/internal/config"
	orderdomain "github.com/smallbiznis/paymentslog/internal/order/domain"
)

// RuleSource supplies operator-defined gateway rules.
type RuleSource interface {
	Rules() []config.GatewayRule
}

type Registry struct {
	strategies map[string]Strategy
	rules      RuleSource
}

func NewRegistry(rules RuleSource, strategies ...Strategy) *Registry {
	registry := &Registry{strategies: map[string]Strategy{}, rules: rules}
	for _, strategy := range strategies {
		if strategy == nil {
			continue
		}
		key := normalize(strategy.Gateway())
		if key == "" {
			continue
		}
		registry.strategies[key] = strategy
	}
	return registry
}

// Known reports whether gateway has a configured or built-in rule.
func (r *Registry) Known(gateway string) bool {
	return r.lookup(gateway) != nil
}

// Resolve returns the refund transaction reference for gateway, or nil when
// the gateway is unknown or the reference is not stored.
func (r *Registry) Resolve(gateway string, refund orderdomain.Refund, parent orderdomain.Order) *string {
	strategy := r.lookup(gateway)
	if strategy == nil {
		return nil
	}
	return strategy.Resolve(refund, parent)
}

func (r *Registry) lookup(gateway string) Strategy {
	if r == nil {
		return nil
	}
	key := normalize(gateway)
	if key == "" {
		return nil
	}
	if r.rules != nil {
		for _, rule := range r.rules.Rules() {
			if rule.Key == key {
				return fromRule(rule)
			}
		}
	}
	return r.strategies[key]
}

func fromRule(rule config.GatewayRule) Strategy {
	switch rule.Source {
	case config.GatewaySourceOrderMeta:
		return metaStrategy{gateway: rule.Key, source: sourceOrder, key: rule.MetaKey, list: rule.List}
	case config.GatewaySourceRefundMeta:
		return metaStrategy{gateway: rule.Key, source: sourceRefund, key: rule.MetaKey, list: rule.List}
	default:
		return Unavailable(rule.Key)
	}
}

func normalize(gateway string) string {
	return strings.ToLower(strings.TrimSpace(gateway))
}
