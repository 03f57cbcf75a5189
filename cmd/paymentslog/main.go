package main

import (
	"github.com/smallbiznis/paymentslog/internal/clock"
	"github.com/smallbiznis/paymentslog/internal/config"
	"github.com/smallbiznis/paymentslog/internal/migration"
	"github.com/smallbiznis/paymentslog/internal/observability"
	"github.com/smallbiznis/paymentslog/internal/server"
	"github.com/smallbiznis/paymentslog/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		db.Module,
		clock.Module,
		migration.Module,

		// HTTP surface, order adapter and payments log
		server.Module,
	)
	app.Run()
}
