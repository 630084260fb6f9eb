package shared

import (
	"context"
	"time"

	"tickethub/internal/domain/ticket"
	"tickethub/internal/infra/db"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithDB: Single query operations using implicit transactions
	WithDB(ctx context.Context, fn func(ctx context.Context, db db.DBTX) error) error
	// CommandReads: Direct access to command reads for validation outside transactions
	CommandReads() CommandReads
}

type Tx interface {
	Tickets() TicketRepository
	Inventory() InventoryRepository
	Redemptions() RedemptionRepository
	Idempotency() IdempotencyRepository
	Notifications() NotificationRepository
	Reads() CommandReads
	DB() db.DBTX
}

type CommandReads interface {
	EventByID(ctx context.Context, id uuid.UUID) (*EventSnapshot, error)
	TicketTypeByID(ctx context.Context, id uuid.UUID) (*TicketTypeSnapshot, error)
	TicketByID(ctx context.Context, id uuid.UUID) (*TicketSnapshot, error)
	TicketByCredential(ctx context.Context, credential string) (*TicketSnapshot, error)
	BuyerByID(ctx context.Context, id uuid.UUID) (*BuyerSnapshot, error)
	IdempotencyByKey(ctx context.Context, key, userID uuid.UUID) (*IdempotencyRecord, error)
}

type TicketRepository interface {
	Insert(ctx context.Context, tx db.DBTX, t *ticket.Ticket) error
	// MarkUsed performs the Valid-and-unexpired -> Used transition as one
	// conditional update and returns the redeemed row. Zero rows updated is a
	// KindConflict; the caller classifies the loser by re-reading.
	MarkUsed(ctx context.Context, tx db.DBTX, credential string, at time.Time, validatorID uuid.UUID) (*TicketSnapshot, error)
	// MarkCancelled flips a Valid ticket to Cancelled; conditional on status.
	MarkCancelled(ctx context.Context, tx db.DBTX, ticketID uuid.UUID) error
	// UpdateOwner reassigns a Valid ticket; conditional on status.
	UpdateOwner(ctx context.Context, tx db.DBTX, ticketID, toUserID uuid.UUID) error
	SetCalendarFlag(ctx context.Context, tx db.DBTX, ticketID uuid.UUID) error
	SetReminderFlag(ctx context.Context, tx db.DBTX, ticketID uuid.UUID) error
}

type InventoryRepository interface {
	// Reserve decrements remaining capacity iff enough is left, in a single
	// conditional update. Zero rows updated surfaces as KindConflict.
	Reserve(ctx context.Context, tx db.DBTX, ticketTypeID uuid.UUID, quantity int) error
	// Release credits capacity back, capped at the type's total.
	Release(ctx context.Context, tx db.DBTX, ticketTypeID uuid.UUID, quantity int) error
}

type RedemptionRepository interface {
	Append(ctx context.Context, tx db.DBTX, ticketID, validatorID uuid.UUID, at time.Time) error
}

type IdempotencyRepository interface {
	// TryInsert claims the key; false means another live request holds it.
	// A key whose expires_at is not after now is reclaimed as if absent.
	TryInsert(ctx context.Context, tx db.DBTX, key, userID uuid.UUID, endpoint, requestHash string, now, expiresAt time.Time) (bool, error)
	MarkCompleted(ctx context.Context, tx db.DBTX, key, userID uuid.UUID, responseBody []byte) error
}

type NotificationRepository interface {
	CreateJob(ctx context.Context, tx db.DBTX, userID uuid.UUID, kind, topic string, payload []byte, runAt time.Time) error
	// ClaimDue moves up to limit runnable pending jobs to sending and
	// returns them. Claimed rows are invisible to concurrent workers.
	ClaimDue(ctx context.Context, tx db.DBTX, now time.Time, limit int) ([]*NotificationJob, error)
	MarkSent(ctx context.Context, tx db.DBTX, jobID uuid.UUID, at time.Time) error
	MarkFailed(ctx context.Context, tx db.DBTX, jobID uuid.UUID) error
}
