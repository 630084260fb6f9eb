package repository

import (
	"context"
	"time"

	"tickethub/internal/infra"
	"tickethub/internal/infra/db"

	"github.com/google/uuid"
)

// RedemptionRepository appends to the audit trail of who redeemed which
// ticket and when. The tickets.status transition enforces at-most-once;
// this table only answers "who/when" afterwards.
type RedemptionRepository struct{}

func NewRedemptionRepository() *RedemptionRepository {
	return &RedemptionRepository{}
}

const appendRedemptionSQL = `
INSERT INTO redemption_events (id, ticket_id, validator_id, redeemed_at)
VALUES ($1, $2, $3, $4)`

func (r *RedemptionRepository) Append(ctx context.Context, tx db.DBTX, ticketID, validatorID uuid.UUID, at time.Time) error {
	_, err := tx.Exec(ctx, appendRedemptionSQL, uuid.New(), ticketID, validatorID, at)
	if err != nil {
		return infra.WrapRepoErr("failed to append redemption event", err)
	}
	return nil
}
