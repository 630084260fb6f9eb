// Package notifier persists side-effect jobs and drains them with a polling
// worker. Jobs are written on their own connection after the business
// transaction commits, so a full jobs table can never roll back a sale.
package notifier

import (
	"context"
	"encoding/json"
	"log/slog"

	"tickethub/internal/pkg/clock"
	"tickethub/internal/usecase/commands"
	"tickethub/internal/usecase/shared"

	"github.com/google/uuid"
)

type JobNotifier struct {
	uow   shared.UnitOfWork
	clock clock.Clock
}

func NewJobNotifier(uow shared.UnitOfWork, clk clock.Clock) commands.Notifier {
	return &JobNotifier{uow: uow, clock: clk}
}

// Enqueue records one notification job. Failures are logged and swallowed;
// the caller's state change is already durable and must stand.
func (n *JobNotifier) Enqueue(ctx context.Context, userID uuid.UUID, kind, topic string, payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		slog.Error("failed to marshal notification payload", "topic", topic, "error", err)
		return nil
	}

	err = n.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Notifications().CreateJob(ctx, tx.DB(), userID, kind, topic, body, n.clock.Now())
	})
	if err != nil {
		slog.Error("failed to enqueue notification job",
			"topic", topic, "user_id", userID, "error", err)
	}
	return nil
}
