package response

import (
	"time"

	"tickethub/internal/usecase/commands"
	"tickethub/internal/usecase/queries"

	"github.com/google/uuid"
)

type TicketResponse struct {
	ID              uuid.UUID  `json:"id"`
	EventID         uuid.UUID  `json:"eventId"`
	EventTitle      string     `json:"eventTitle"`
	TicketTypeID    uuid.UUID  `json:"ticketTypeId"`
	TicketTypeName  string     `json:"ticketTypeName"`
	UserID          uuid.UUID  `json:"userId"`
	Quantity        int        `json:"quantity"`
	PriceCents      int64      `json:"priceCents"`
	Credential      string     `json:"credential"`
	Status          string     `json:"status"`
	PurchasedAt     time.Time  `json:"purchasedAt"`
	ValidUntil      time.Time  `json:"validUntil"`
	ValidatedAt     *time.Time `json:"validatedAt,omitempty"`
	AddedToCalendar bool       `json:"addedToCalendar"`
	ReminderSet     bool       `json:"reminderSet"`
}

type TicketListResponse struct {
	Items      []*TicketListItemResponse `json:"items"`
	NextCursor *string                   `json:"nextCursor,omitempty"`
}

type TicketListItemResponse struct {
	ID             uuid.UUID `json:"id"`
	EventID        uuid.UUID `json:"eventId"`
	EventTitle     string    `json:"eventTitle"`
	TicketTypeName string    `json:"ticketTypeName"`
	Quantity       int       `json:"quantity"`
	PriceCents     int64     `json:"priceCents"`
	Status         string    `json:"status"`
	PurchasedAt    time.Time `json:"purchasedAt"`
	ValidUntil     time.Time `json:"validUntil"`
}

type CancelTicketResponse struct {
	TicketID    uuid.UUID `json:"ticketId"`
	RefundCents int64     `json:"refundCents"`
}

type WalletPassResponse struct {
	URL string `json:"url"`
}

func FromTicketView(rm *queries.TicketView) *TicketResponse {
	return &TicketResponse{
		ID:              rm.ID,
		EventID:         rm.EventID,
		EventTitle:      rm.EventTitle,
		TicketTypeID:    rm.TicketTypeID,
		TicketTypeName:  rm.TicketTypeName,
		UserID:          rm.UserID,
		Quantity:        rm.Quantity,
		PriceCents:      rm.PriceCents,
		Credential:      rm.Credential,
		Status:          rm.Status,
		PurchasedAt:     rm.PurchasedAt,
		ValidUntil:      rm.ValidUntil,
		ValidatedAt:     rm.ValidatedAt,
		AddedToCalendar: rm.AddedToCalendar,
		ReminderSet:     rm.ReminderSet,
	}
}

func FromTicketListItem(rm *queries.TicketListItem) *TicketListItemResponse {
	return &TicketListItemResponse{
		ID:             rm.ID,
		EventID:        rm.EventID,
		EventTitle:     rm.EventTitle,
		TicketTypeName: rm.TicketTypeName,
		Quantity:       rm.Quantity,
		PriceCents:     rm.PriceCents,
		Status:         rm.Status,
		PurchasedAt:    rm.PurchasedAt,
		ValidUntil:     rm.ValidUntil,
	}
}

func FromCancelResult(r *commands.CancelTicketResult) *CancelTicketResponse {
	return &CancelTicketResponse{
		TicketID:    r.TicketID,
		RefundCents: r.RefundCents,
	}
}
