package bootstrap

import (
	"affiliate-addon/services/affiliate"
	"affiliate-addon/services/commission"
	"affiliate-addon/services/order"
	"affiliate-addon/services/payout"
	"affiliate-addon/services/settings"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("bootstrap",
	fx.Invoke(AutoMigrate),
)

func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&affiliate.Affiliate{},
		&order.AffiliateOrder{},
		&commission.Program{},
		&settings.TenantSettings{},
		&payout.Payout{},
	); err != nil {
		zap.L().Error("failed to migrate schema", zap.Error(err))
		return err
	}

	return nil
}
