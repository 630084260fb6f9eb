package repository

import (
	"context"
	"time"

	"tickethub/internal/infra"
	"tickethub/internal/infra/db"

	"github.com/google/uuid"
)

type IdempotencyRepository struct{}

func NewIdempotencyRepository() *IdempotencyRepository {
	return &IdempotencyRepository{}
}

const tryInsertIdempotencySQL = `
INSERT INTO idempotency_keys (key, user_id, endpoint, request_hash, status, expires_at)
VALUES ($1, $2, $3, $4, 'processing', $5)
ON CONFLICT (key, user_id) DO UPDATE
SET endpoint      = EXCLUDED.endpoint,
    request_hash  = EXCLUDED.request_hash,
    status        = 'processing',
    response_body = NULL,
    expires_at    = EXCLUDED.expires_at
WHERE idempotency_keys.expires_at <= $6`

// TryInsert claims the key for this request. It reports false when a live
// row already exists; the caller reads it back and decides between replay
// and conflict. A row past its expiry is overwritten and counts as a fresh
// claim, so a request that died mid-flight cannot hold its key forever.
func (r *IdempotencyRepository) TryInsert(ctx context.Context, tx db.DBTX, key, userID uuid.UUID, endpoint, requestHash string, now, expiresAt time.Time) (bool, error) {
	tag, err := tx.Exec(ctx, tryInsertIdempotencySQL, key, userID, endpoint, requestHash, expiresAt, now)
	if err != nil {
		return false, infra.WrapRepoErr("failed to claim idempotency key", err)
	}
	return tag.RowsAffected() == 1, nil
}

const markCompletedSQL = `
UPDATE idempotency_keys
SET status = 'completed', response_body = $3
WHERE key = $1 AND user_id = $2`

func (r *IdempotencyRepository) MarkCompleted(ctx context.Context, tx db.DBTX, key, userID uuid.UUID, responseBody []byte) error {
	tag, err := tx.Exec(ctx, markCompletedSQL, key, userID, responseBody)
	if err != nil {
		return infra.WrapRepoErr("failed to complete idempotency key", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("idempotency key vanished mid-request", nil, infra.KindNotFound)
	}
	return nil
}
