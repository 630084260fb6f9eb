package components

import (
	"context"
	"log/slog"

	"tickethub/internal/infra/notifier"

	"go.uber.org/fx"
)

var NotifierModule = fx.Module("notifier",
	fx.Provide(
		notifier.NewLogSender,
		notifier.NewWorker,
	),
	fx.Invoke(startNotifierWorker),
)

func startNotifierWorker(lc fx.Lifecycle, worker *notifier.Worker, logger *slog.Logger) {
	runCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			logger.Info("starting notification worker")
			go worker.Run(runCtx)
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			logger.Info("stopping notification worker")
			cancel()
			return worker.WaitStopped(stopCtx)
		},
	})
}
