package migration

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(lc fx.Lifecycle, conn *gorm.DB, log *zap.Logger) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				if err := Install(ctx, conn); err != nil {
					return err
				}
				log.Info("payments_log schema ready", zap.String("dialect", conn.Dialector.Name()))
				return nil
			},
		})
	}),
)
