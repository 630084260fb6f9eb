package repository

import (
	"context"
	"log/slog"

	"tickethub/internal/infra"
	"tickethub/internal/infra/db"

	"github.com/google/uuid"
)

// InventoryRepository owns the remaining-capacity counter on ticket_types.
// It is the only shared-mutable resource in the system; every mutation is a
// single conditional update so the check and the write cannot interleave
// with a concurrent caller.
type InventoryRepository struct{}

func NewInventoryRepository() *InventoryRepository {
	return &InventoryRepository{}
}

const reserveSQL = `
UPDATE ticket_types
SET remaining = remaining - $2
WHERE id = $1 AND remaining >= $2`

func (r *InventoryRepository) Reserve(ctx context.Context, tx db.DBTX, ticketTypeID uuid.UUID, quantity int) error {
	tag, err := tx.Exec(ctx, reserveSQL, ticketTypeID, quantity)
	if err != nil {
		return infra.WrapRepoErr("failed to reserve inventory", err)
	}
	if tag.RowsAffected() == 0 {
		// Insufficient remaining capacity at the moment of the atomic check.
		// Terminal for this cart line; the caller must not retry blindly.
		return infra.WrapRepoErr("insufficient inventory", nil, infra.KindConflict)
	}
	return nil
}

const releaseSQL = `
UPDATE ticket_types
SET remaining = remaining + $2
WHERE id = $1 AND remaining + $2 <= total_capacity`

const clampSQL = `
UPDATE ticket_types SET remaining = total_capacity WHERE id = $1`

func (r *InventoryRepository) Release(ctx context.Context, tx db.DBTX, ticketTypeID uuid.UUID, quantity int) error {
	tag, err := tx.Exec(ctx, releaseSQL, ticketTypeID, quantity)
	if err != nil {
		return infra.WrapRepoErr("failed to release inventory", err)
	}
	if tag.RowsAffected() == 0 {
		// Releasing above total means issued quantities and the counter have
		// diverged somewhere. Loud log, then cap at total to keep the
		// 0 <= remaining <= total invariant intact.
		slog.Error("inventory release would exceed total capacity",
			"ticket_type_id", ticketTypeID.String(),
			"quantity", quantity)
		if _, err := tx.Exec(ctx, clampSQL, ticketTypeID); err != nil {
			return infra.WrapRepoErr("failed to clamp inventory", err)
		}
	}
	return nil
}
