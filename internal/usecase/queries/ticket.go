package queries

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"tickethub/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrTicketViewNotFound = errs.New("ticket not found")
	ErrInvalidPlatform    = errs.New("unsupported wallet platform")
	ErrNotTicketOwner     = errs.New("ticket not owned by requester")
)

// Read models (DTO for read side)
type TicketView struct {
	ID              uuid.UUID  `json:"id"`
	EventID         uuid.UUID  `json:"event_id"`
	EventTitle      string     `json:"event_title"`
	TicketTypeID    uuid.UUID  `json:"ticket_type_id"`
	TicketTypeName  string     `json:"ticket_type_name"`
	UserID          uuid.UUID  `json:"user_id"`
	Quantity        int        `json:"quantity"`
	PriceCents      int64      `json:"price_cents"`
	Credential      string     `json:"credential"`
	Status          string     `json:"status"`
	PurchasedAt     time.Time  `json:"purchased_at"`
	ValidUntil      time.Time  `json:"valid_until"`
	ValidatedAt     *time.Time `json:"validated_at,omitempty"`
	ValidatedBy     *uuid.UUID `json:"validated_by,omitempty"`
	AddedToCalendar bool       `json:"added_to_calendar"`
	ReminderSet     bool       `json:"reminder_set"`
}

type TicketListItem struct {
	ID             uuid.UUID `json:"id"`
	EventID        uuid.UUID `json:"event_id"`
	EventTitle     string    `json:"event_title"`
	TicketTypeName string    `json:"ticket_type_name"`
	Quantity       int       `json:"quantity"`
	PriceCents     int64     `json:"price_cents"`
	Status         string    `json:"status"`
	PurchasedAt    time.Time `json:"purchased_at"`
	ValidUntil     time.Time `json:"valid_until"`
}

type WalletPassView struct {
	URL string `json:"url"`
}

type WalletPlatform string

const (
	PlatformApple  WalletPlatform = "apple"
	PlatformGoogle WalletPlatform = "google"
)

func (p WalletPlatform) IsValid() bool {
	return p == PlatformApple || p == PlatformGoogle
}

type TicketQueries interface {
	GetByID(ctx context.Context, actorID, id uuid.UUID) (*TicketView, error)
	// GetByIDSystem skips the ownership check; used for idempotent replay
	// and staff tooling.
	GetByIDSystem(ctx context.Context, id uuid.UUID) (*TicketView, error)
	ListByUser(ctx context.Context, userID uuid.UUID, after *Cursor, limit int) ([]*TicketListItem, *Cursor, error)
	// WalletPass derives the pass-download URL for a ticket. Read-only with
	// respect to the core model.
	WalletPass(ctx context.Context, actorID, ticketID uuid.UUID, platform WalletPlatform) (*WalletPassView, error)
}

type TicketViewRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*TicketView, error)
	FindByUserFirstPage(ctx context.Context, userID uuid.UUID, limit int32) ([]*TicketListItem, error)
	FindByUserKeyset(ctx context.Context, userID uuid.UUID, lastPurchasedAt time.Time, lastID uuid.UUID, limit int32) ([]*TicketListItem, error)
}

type ticketQueriesImpl struct {
	repo          TicketViewRepo
	walletBaseURL string
}

func NewTicketQueries(repo TicketViewRepo, walletBaseURL string) TicketQueries {
	return &ticketQueriesImpl{repo: repo, walletBaseURL: walletBaseURL}
}

func (q *ticketQueriesImpl) GetByID(ctx context.Context, actorID, id uuid.UUID) (*TicketView, error) {
	view, err := q.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if view.UserID != actorID {
		return nil, ErrNotTicketOwner
	}
	return view, nil
}

func (q *ticketQueriesImpl) GetByIDSystem(ctx context.Context, id uuid.UUID) (*TicketView, error) {
	return q.repo.FindByID(ctx, id)
}

func (q *ticketQueriesImpl) ListByUser(ctx context.Context, userID uuid.UUID, after *Cursor, limit int) ([]*TicketListItem, *Cursor, error) {
	limit = ValidateLimit(limit)

	var (
		rows []*TicketListItem
		err  error
	)
	if after == nil || after.After == "" {
		rows, err = q.repo.FindByUserFirstPage(ctx, userID, int32(limit))
	} else {
		var (
			lastAt time.Time
			lastID uuid.UUID
		)
		lastAt, lastID, err = DecodeAfterCursor(after.After)
		if err != nil {
			return nil, nil, err
		}
		rows, err = q.repo.FindByUserKeyset(ctx, userID, lastAt, lastID, int32(limit))
	}
	if err != nil {
		return nil, nil, err
	}

	var next *Cursor
	if len(rows) == limit {
		last := rows[len(rows)-1]
		next = &Cursor{After: EncodeAfterCursor(last.PurchasedAt, last.ID)}
	}
	return rows, next, nil
}

func (q *ticketQueriesImpl) WalletPass(ctx context.Context, actorID, ticketID uuid.UUID, platform WalletPlatform) (*WalletPassView, error) {
	if !platform.IsValid() {
		return nil, ErrInvalidPlatform
	}

	view, err := q.GetByID(ctx, actorID, ticketID)
	if err != nil {
		return nil, err
	}

	passURL := fmt.Sprintf("%s/%s/%s?credential=%s",
		q.walletBaseURL, platform, view.ID, url.QueryEscape(view.Credential))
	return &WalletPassView{URL: passURL}, nil
}
