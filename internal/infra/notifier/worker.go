package notifier

import (
	"context"
	"log/slog"
	"time"

	"tickethub/internal/pkg/clock"
	"tickethub/internal/pkg/config"
	"tickethub/internal/usecase/shared"
)

// Sender delivers one claimed job over an actual channel. Real transports
// (mail, push) plug in here; LogSender stands in until one is configured.
type Sender interface {
	Send(ctx context.Context, job *shared.NotificationJob) error
}

type LogSender struct{}

func NewLogSender() Sender {
	return LogSender{}
}

func (LogSender) Send(_ context.Context, job *shared.NotificationJob) error {
	slog.Info("delivering notification",
		"job_id", job.ID, "user_id", job.UserID, "kind", job.Kind, "topic", job.Topic)
	return nil
}

// Worker drains the notification_jobs table: it claims due pending rows in
// batches, hands them to the Sender and settles each row as sent or failed.
// A failed delivery never stops the batch.
type Worker struct {
	uow      shared.UnitOfWork
	sender   Sender
	clock    clock.Clock
	interval time.Duration
	batch    int
	stopped  chan struct{}
}

func NewWorker(uow shared.UnitOfWork, sender Sender, clk clock.Clock, cfg config.TicketingConfig) *Worker {
	return &Worker{
		uow:      uow,
		sender:   sender,
		clock:    clk,
		interval: cfg.NotifierPollInterval,
		batch:    cfg.NotifierBatchSize,
		stopped:  make(chan struct{}),
	}
}

// Run polls until ctx is cancelled. One drain pass runs immediately so tests
// and restarts do not wait a full interval for the backlog.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.stopped)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if _, err := w.DrainOnce(ctx); err != nil && ctx.Err() == nil {
			slog.Error("notification drain pass failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// WaitStopped blocks until Run has returned or ctx expires.
func (w *Worker) WaitStopped(ctx context.Context) error {
	select {
	case <-w.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// DrainOnce claims one batch of due jobs and settles each one. It returns
// the number of jobs delivered.
func (w *Worker) DrainOnce(ctx context.Context) (int, error) {
	var jobs []*shared.NotificationJob
	now := w.clock.Now()
	err := w.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		claimed, cerr := tx.Notifications().ClaimDue(ctx, tx.DB(), now, w.batch)
		if cerr != nil {
			return cerr
		}
		jobs = claimed
		return nil
	})
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, job := range jobs {
		sendErr := w.sender.Send(ctx, job)
		settleErr := w.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			if sendErr != nil {
				return tx.Notifications().MarkFailed(ctx, tx.DB(), job.ID)
			}
			return tx.Notifications().MarkSent(ctx, tx.DB(), job.ID, w.clock.Now())
		})
		if settleErr != nil {
			return sent, settleErr
		}
		if sendErr != nil {
			slog.Error("notification delivery failed",
				"job_id", job.ID, "topic", job.Topic, "error", sendErr)
			continue
		}
		sent++
	}
	return sent, nil
}
