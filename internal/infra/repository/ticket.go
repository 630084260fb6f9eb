package repository

import (
	"context"
	"time"

	"tickethub/internal/domain/ticket"
	"tickethub/internal/infra"
	"tickethub/internal/infra/db"
	"tickethub/internal/pkg/pgconv"
	"tickethub/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type TicketRepository struct{}

func NewTicketRepository() *TicketRepository {
	return &TicketRepository{}
}

const insertTicketSQL = `
INSERT INTO tickets (
	id, event_id, ticket_type_id, user_id, quantity, price_cents,
	credential, status, purchased_at, valid_until,
	added_to_calendar, reminder_set
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

func (r *TicketRepository) Insert(ctx context.Context, tx db.DBTX, t *ticket.Ticket) error {
	_, err := tx.Exec(ctx, insertTicketSQL,
		t.ID(), t.EventID(), t.TicketTypeID(), t.UserID(),
		t.Quantity().Value(), t.UnitPrice().Cents(),
		t.Credential().String(), t.Status().String(),
		t.PurchasedAt(), t.ValidUntil(),
		t.AddedToCalendar(), t.ReminderSet(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return infra.WrapRepoErr("ticket credential collision", err, infra.KindDuplicateKey)
		}
		if isForeignKeyViolation(err) {
			return infra.WrapRepoErr("ticket references unknown event or type", err, infra.KindForeignKeyViolated)
		}
		return infra.WrapRepoErr("failed to insert ticket", err)
	}
	return nil
}

const markUsedSQL = `
UPDATE tickets
SET status = 'used', validated_at = $2, validated_by = $3
WHERE credential = $1 AND status = 'valid' AND valid_until >= $2
RETURNING id, event_id, ticket_type_id, user_id, quantity, price_cents,
	credential, status, purchased_at, valid_until, validated_at, validated_by,
	added_to_calendar, reminder_set`

// MarkUsed is the enforcement point of at-most-once redemption: the state
// check and the transition are one statement, so of two concurrent scanners
// exactly one sees a row come back.
func (r *TicketRepository) MarkUsed(ctx context.Context, tx db.DBTX, credential string, at time.Time, validatorID uuid.UUID) (*shared.TicketSnapshot, error) {
	row := tx.QueryRow(ctx, markUsedSQL, credential, at, validatorID)

	snap, err := scanTicketSnapshot(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("ticket not redeemable", err, infra.KindConflict)
		}
		return nil, infra.WrapRepoErr("failed to redeem ticket", err)
	}
	return snap, nil
}

const markCancelledSQL = `
UPDATE tickets SET status = 'cancelled' WHERE id = $1 AND status = 'valid'`

func (r *TicketRepository) MarkCancelled(ctx context.Context, tx db.DBTX, ticketID uuid.UUID) error {
	tag, err := tx.Exec(ctx, markCancelledSQL, ticketID)
	if err != nil {
		return infra.WrapRepoErr("failed to cancel ticket", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("ticket no longer cancellable", nil, infra.KindConflict)
	}
	return nil
}

const updateOwnerSQL = `
UPDATE tickets SET user_id = $2 WHERE id = $1 AND status = 'valid'`

func (r *TicketRepository) UpdateOwner(ctx context.Context, tx db.DBTX, ticketID, toUserID uuid.UUID) error {
	tag, err := tx.Exec(ctx, updateOwnerSQL, ticketID, toUserID)
	if err != nil {
		return infra.WrapRepoErr("failed to transfer ticket", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("ticket no longer transferable", nil, infra.KindConflict)
	}
	return nil
}

func (r *TicketRepository) SetCalendarFlag(ctx context.Context, tx db.DBTX, ticketID uuid.UUID) error {
	return r.setFlag(ctx, tx, ticketID, "added_to_calendar")
}

func (r *TicketRepository) SetReminderFlag(ctx context.Context, tx db.DBTX, ticketID uuid.UUID) error {
	return r.setFlag(ctx, tx, ticketID, "reminder_set")
}

func (r *TicketRepository) setFlag(ctx context.Context, tx db.DBTX, ticketID uuid.UUID, column string) error {
	// column is one of two compile-time constants, never user input
	tag, err := tx.Exec(ctx, `UPDATE tickets SET `+column+` = TRUE WHERE id = $1`, ticketID)
	if err != nil {
		return infra.WrapRepoErr("failed to set ticket flag", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("ticket not found", nil, infra.KindNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicketSnapshot(row rowScanner) (*shared.TicketSnapshot, error) {
	var (
		snap        shared.TicketSnapshot
		validatedAt pgtype.Timestamptz
		validatedBy pgtype.UUID
	)
	err := row.Scan(
		&snap.ID, &snap.EventID, &snap.TicketTypeID, &snap.UserID,
		&snap.Quantity, &snap.PriceCents,
		&snap.Credential, &snap.Status,
		&snap.PurchasedAt, &snap.ValidUntil,
		&validatedAt, &validatedBy,
		&snap.AddedToCalendar, &snap.ReminderSet,
	)
	if err != nil {
		return nil, err
	}
	snap.ValidatedAt = pgconv.TimePtrFromPgtype(validatedAt)
	snap.ValidatedBy = pgconv.UUIDPtrFromPgtype(validatedBy)
	return &snap, nil
}
