package affiliate

import (
	"affiliate-addon/pkg/upstream"

	"go.uber.org/fx"
)

var Module = fx.Module("affiliate.module",
	fx.Provide(
		func(c *upstream.Client) CustomerSyncer { return c },
		NewService,
	),
)
