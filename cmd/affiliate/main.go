package main

import (
	"go.uber.org/fx"

	"affiliate-addon/internal/httpapi"
	"affiliate-addon/pkg/config"
	"affiliate-addon/pkg/db"
	"affiliate-addon/pkg/gen"
	"affiliate-addon/pkg/health"
	"affiliate-addon/pkg/logger"
	"affiliate-addon/pkg/server"
	"affiliate-addon/pkg/upstream"
	"affiliate-addon/services/affiliate"
	"affiliate-addon/services/bootstrap"
	"affiliate-addon/services/commission"
	"affiliate-addon/services/order"
	"affiliate-addon/services/payout"
	"affiliate-addon/services/settings"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		db.Module,
		upstream.Module,
		health.Module,
		gen.Module,
		affiliate.Module,
		order.Module,
		commission.Module,
		settings.Module,
		payout.Module,
		bootstrap.Module,
		httpapi.Module,
		server.Module,
	)

	app.Run()
}
