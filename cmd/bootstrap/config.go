package bootstrap

import (
	"tickethub/internal/pkg/config"

	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		config.LoadConfig,
		func(cfg config.Config) config.TicketingConfig { return cfg.Ticketing },
	),
)
