package repository

import (
	"context"
	"time"

	"tickethub/internal/infra"
	"tickethub/internal/infra/db"
	"tickethub/internal/usecase/shared"

	"github.com/google/uuid"
)

// NotificationRepository is the job table behind the notifier: commands
// enqueue rows, the drain worker claims and settles them. The core never
// blocks on delivery.
type NotificationRepository struct{}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{}
}

const createJobSQL = `
INSERT INTO notification_jobs (id, user_id, kind, topic, payload, run_at, status)
VALUES ($1, $2, $3, $4, $5, $6, 'pending')`

func (r *NotificationRepository) CreateJob(ctx context.Context, tx db.DBTX, userID uuid.UUID, kind, topic string, payload []byte, runAt time.Time) error {
	_, err := tx.Exec(ctx, createJobSQL, uuid.New(), userID, kind, topic, payload, runAt)
	if err != nil {
		return infra.WrapRepoErr("failed to create notification job", err)
	}
	return nil
}

const claimDueJobsSQL = `
UPDATE notification_jobs
SET status = 'sending'
WHERE id IN (
    SELECT id FROM notification_jobs
    WHERE status = 'pending' AND run_at <= $1
    ORDER BY run_at
    LIMIT $2
    FOR UPDATE SKIP LOCKED
)
RETURNING id, user_id, kind, topic, payload, run_at`

func (r *NotificationRepository) ClaimDue(ctx context.Context, tx db.DBTX, now time.Time, limit int) ([]*shared.NotificationJob, error) {
	rows, err := tx.Query(ctx, claimDueJobsSQL, now, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to claim notification jobs", err)
	}
	defer rows.Close()

	var jobs []*shared.NotificationJob
	for rows.Next() {
		var j shared.NotificationJob
		if err := rows.Scan(&j.ID, &j.UserID, &j.Kind, &j.Topic, &j.Payload, &j.RunAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan notification job", err)
		}
		jobs = append(jobs, &j)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read notification jobs", err)
	}
	return jobs, nil
}

const markJobSentSQL = `
UPDATE notification_jobs SET status = 'sent', sent_at = $2 WHERE id = $1`

func (r *NotificationRepository) MarkSent(ctx context.Context, tx db.DBTX, jobID uuid.UUID, at time.Time) error {
	if _, err := tx.Exec(ctx, markJobSentSQL, jobID, at); err != nil {
		return infra.WrapRepoErr("failed to mark notification job sent", err)
	}
	return nil
}

const markJobFailedSQL = `
UPDATE notification_jobs SET status = 'failed' WHERE id = $1`

func (r *NotificationRepository) MarkFailed(ctx context.Context, tx db.DBTX, jobID uuid.UUID) error {
	if _, err := tx.Exec(ctx, markJobFailedSQL, jobID); err != nil {
		return infra.WrapRepoErr("failed to mark notification job failed", err)
	}
	return nil
}
