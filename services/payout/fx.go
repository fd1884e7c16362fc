package payout

import "go.uber.org/fx"

var Module = fx.Module("payout.module",
	fx.Provide(NewService),
)
