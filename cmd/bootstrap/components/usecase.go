package components

import (
	"tickethub/internal/domain/ticket"
	"tickethub/internal/infra/notifier"
	"tickethub/internal/pkg/clock"
	"tickethub/internal/pkg/config"
	"tickethub/internal/pkg/credential"
	"tickethub/internal/usecase/commands"
	"tickethub/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	fx.Annotate(
		credential.NewRandomGenerator,
		fx.As(new(credential.Generator)),
	),
	func(clk clock.Clock, cfg config.TicketingConfig) *ticket.Factory {
		return ticket.NewFactory(clk, cfg.DefaultValidityWindow)
	},
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		func(repo queries.TicketViewRepo, cfg config.TicketingConfig) queries.TicketQueries {
			return queries.NewTicketQueries(repo, cfg.WalletPassBaseURL)
		},
	),
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		notifier.NewJobNotifier,
		commands.NewAuthCommands,
		commands.NewCheckoutUseCase,
		commands.NewValidationUseCase,
		commands.NewTicketUseCase,
	),
)
