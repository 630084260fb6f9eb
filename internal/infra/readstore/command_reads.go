package readstore

import (
	"context"

	"tickethub/internal/infra"
	"tickethub/internal/infra/db"
	"tickethub/internal/pkg/pgconv"
	"tickethub/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// CommandReads serves the snapshot lookups the write side needs before it
// mutates anything. Kept separate from the query views so the command flows
// only see the fields they are allowed to decide on.
type CommandReads struct {
	db db.DBTX
}

func NewCommandReads(dbtx db.DBTX) *CommandReads {
	return &CommandReads{db: dbtx}
}

const eventByIDSQL = `
SELECT id, promoter_id, title, start_time, end_time
FROM events WHERE id = $1`

func (r *CommandReads) EventByID(ctx context.Context, id uuid.UUID) (*shared.EventSnapshot, error) {
	var (
		snap  shared.EventSnapshot
		start pgtype.Timestamptz
		end   pgtype.Timestamptz
	)
	err := r.db.QueryRow(ctx, eventByIDSQL, id).
		Scan(&snap.ID, &snap.PromoterID, &snap.Title, &start, &end)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("event not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find event by ID", err)
	}
	snap.StartTime = pgconv.TimePtrFromPgtype(start)
	snap.EndTime = pgconv.TimePtrFromPgtype(end)
	return &snap, nil
}

const ticketTypeByIDSQL = `
SELECT id, event_id, name, price_cents, total_capacity, remaining, max_per_purchase
FROM ticket_types WHERE id = $1`

func (r *CommandReads) TicketTypeByID(ctx context.Context, id uuid.UUID) (*shared.TicketTypeSnapshot, error) {
	var snap shared.TicketTypeSnapshot
	err := r.db.QueryRow(ctx, ticketTypeByIDSQL, id).Scan(
		&snap.ID, &snap.EventID, &snap.Name, &snap.PriceCents,
		&snap.TotalCapacity, &snap.Remaining, &snap.MaxPerPurchase,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("ticket type not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find ticket type by ID", err)
	}
	return &snap, nil
}

const ticketSnapshotColumns = `
	id, event_id, ticket_type_id, user_id, quantity, price_cents,
	credential, status, purchased_at, valid_until, validated_at, validated_by,
	added_to_calendar, reminder_set`

func (r *CommandReads) TicketByID(ctx context.Context, id uuid.UUID) (*shared.TicketSnapshot, error) {
	row := r.db.QueryRow(ctx, `SELECT`+ticketSnapshotColumns+` FROM tickets WHERE id = $1`, id)
	return scanCommandTicket(row, "ticket")
}

func (r *CommandReads) TicketByCredential(ctx context.Context, credential string) (*shared.TicketSnapshot, error) {
	row := r.db.QueryRow(ctx, `SELECT`+ticketSnapshotColumns+` FROM tickets WHERE credential = $1`, credential)
	return scanCommandTicket(row, "credential")
}

const buyerByIDSQL = `
SELECT id, name, email FROM users WHERE id = $1`

func (r *CommandReads) BuyerByID(ctx context.Context, id uuid.UUID) (*shared.BuyerSnapshot, error) {
	var snap shared.BuyerSnapshot
	err := r.db.QueryRow(ctx, buyerByIDSQL, id).Scan(&snap.ID, &snap.Name, &snap.Email)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find user by ID", err)
	}
	return &snap, nil
}

const idempotencyByKeySQL = `
SELECT key, user_id, endpoint, request_hash, status, response_body, expires_at
FROM idempotency_keys WHERE key = $1 AND user_id = $2`

func (r *CommandReads) IdempotencyByKey(ctx context.Context, key, userID uuid.UUID) (*shared.IdempotencyRecord, error) {
	var rec shared.IdempotencyRecord
	err := r.db.QueryRow(ctx, idempotencyByKeySQL, key, userID).Scan(
		&rec.Key, &rec.UserID, &rec.Endpoint, &rec.RequestHash,
		&rec.Status, &rec.ResponseBody, &rec.ExpiresAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("idempotency key not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find idempotency key", err)
	}
	return &rec, nil
}

func scanCommandTicket(row interface{ Scan(dest ...any) error }, what string) (*shared.TicketSnapshot, error) {
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
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr(what+" not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find "+what, err)
	}
	snap.ValidatedAt = pgconv.TimePtrFromPgtype(validatedAt)
	snap.ValidatedBy = pgconv.UUIDPtrFromPgtype(validatedBy)
	return &snap, nil
}
