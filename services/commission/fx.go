package commission

import (
	"affiliate-addon/pkg/upstream"

	"go.uber.org/fx"
)

var Module = fx.Module("commission.module",
	fx.Provide(
		func(c *upstream.Client) ProductSyncer { return c },
		NewService,
	),
)
