package paymentlog

import (
	"github.com/smallbiznis/paymentslog/internal/config"
	"github.com/smallbiznis/paymentslog/internal/paymentlog/domain"
	"github.com/smallbiznis/paymentslog/internal/paymentlog/gateway"
	"github.com/smallbiznis/paymentslog/internal/paymentlog/render"
	"github.com/smallbiznis/paymentslog/internal/paymentlog/repository"
	"github.com/smallbiznis/paymentslog/internal/paymentlog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("paymentlog.service",
	fx.Provide(repository.Provide),
	fx.Provide(func(rules *config.GatewayRulesHolder) *gateway.Registry {
		return gateway.NewRegistry(rules, gateway.Defaults()...)
	}),
	fx.Provide(fx.Annotate(
		service.NewUnknownGatewayHook,
		fx.ResultTags(`group:"paymentlog.record_hooks"`),
	)),
	fx.Provide(service.NewService),
	fx.Provide(func(s *service.Service) domain.Service { return s }),
	fx.Provide(render.NewHistoryRenderer),
)
