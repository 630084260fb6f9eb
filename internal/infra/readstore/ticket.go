package readstore

import (
	"context"
	"time"

	"tickethub/internal/infra"
	"tickethub/internal/infra/db"
	"tickethub/internal/pkg/pgconv"
	"tickethub/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type TicketReadStore struct {
	db db.DBTX
}

func NewTicketReadStore(dbtx db.DBTX) *TicketReadStore {
	return &TicketReadStore{db: dbtx}
}

const ticketViewSQL = `
SELECT
	t.id, t.event_id, e.title, t.ticket_type_id, tt.name,
	t.user_id, t.quantity, t.price_cents, t.credential, t.status,
	t.purchased_at, t.valid_until, t.validated_at, t.validated_by,
	t.added_to_calendar, t.reminder_set
FROM tickets t
JOIN events e ON e.id = t.event_id
JOIN ticket_types tt ON tt.id = t.ticket_type_id
WHERE t.id = $1`

func (r *TicketReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.TicketView, error) {
	var (
		view        queries.TicketView
		validatedAt pgtype.Timestamptz
		validatedBy pgtype.UUID
	)
	err := r.db.QueryRow(ctx, ticketViewSQL, id).Scan(
		&view.ID, &view.EventID, &view.EventTitle, &view.TicketTypeID, &view.TicketTypeName,
		&view.UserID, &view.Quantity, &view.PriceCents, &view.Credential, &view.Status,
		&view.PurchasedAt, &view.ValidUntil, &validatedAt, &validatedBy,
		&view.AddedToCalendar, &view.ReminderSet,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("ticket not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find ticket by ID", err)
	}
	view.ValidatedAt = pgconv.TimePtrFromPgtype(validatedAt)
	view.ValidatedBy = pgconv.UUIDPtrFromPgtype(validatedBy)
	return &view, nil
}

const ticketListFirstPageSQL = `
SELECT
	t.id, t.event_id, e.title, tt.name, t.quantity, t.price_cents,
	t.status, t.purchased_at, t.valid_until
FROM tickets t
JOIN events e ON e.id = t.event_id
JOIN ticket_types tt ON tt.id = t.ticket_type_id
WHERE t.user_id = $1
ORDER BY t.purchased_at DESC, t.id DESC
LIMIT $2`

func (r *TicketReadStore) FindByUserFirstPage(ctx context.Context, userID uuid.UUID, limit int32) ([]*queries.TicketListItem, error) {
	rows, err := r.db.Query(ctx, ticketListFirstPageSQL, userID, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list tickets first page", err)
	}
	defer rows.Close()
	return scanTicketListItems(rows)
}

const ticketListKeysetSQL = `
SELECT
	t.id, t.event_id, e.title, tt.name, t.quantity, t.price_cents,
	t.status, t.purchased_at, t.valid_until
FROM tickets t
JOIN events e ON e.id = t.event_id
JOIN ticket_types tt ON tt.id = t.ticket_type_id
WHERE t.user_id = $1 AND (t.purchased_at, t.id) < ($2, $3)
ORDER BY t.purchased_at DESC, t.id DESC
LIMIT $4`

func (r *TicketReadStore) FindByUserKeyset(ctx context.Context, userID uuid.UUID, lastPurchasedAt time.Time, lastID uuid.UUID, limit int32) ([]*queries.TicketListItem, error) {
	rows, err := r.db.Query(ctx, ticketListKeysetSQL, userID, lastPurchasedAt, lastID, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list tickets keyset", err)
	}
	defer rows.Close()
	return scanTicketListItems(rows)
}

type pgxRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanTicketListItems(rows pgxRows) ([]*queries.TicketListItem, error) {
	var result []*queries.TicketListItem
	for rows.Next() {
		var item queries.TicketListItem
		if err := rows.Scan(
			&item.ID, &item.EventID, &item.EventTitle, &item.TicketTypeName,
			&item.Quantity, &item.PriceCents, &item.Status,
			&item.PurchasedAt, &item.ValidUntil,
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan ticket list item", err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate ticket list", err)
	}
	return result, nil
}
