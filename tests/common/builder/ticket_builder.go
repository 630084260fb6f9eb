//go:build unit || e2e

package builder

import (
	"time"

	"tickethub/internal/domain/ticket"
	reqdto "tickethub/internal/handler/dto/request"
	"tickethub/internal/usecase/queries"

	"github.com/google/uuid"
)

// TicketBuilder assembles ticket aggregates and read models for tests.
// Defaults describe a freshly issued single-seat ticket that is still well
// inside its validity window.
type TicketBuilder struct {
	id             uuid.UUID
	eventID        uuid.UUID
	eventTitle     string
	ticketTypeID   uuid.UUID
	ticketTypeName string
	userID         uuid.UUID
	quantity       int
	priceCents     int64
	credential     string
	status         ticket.Status
	purchasedAt    time.Time
	validUntil     time.Time
	validatedAt    *time.Time
	validatedBy    *uuid.UUID
}

func NewTicketBuilder() *TicketBuilder {
	purchased := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return &TicketBuilder{
		id:             uuid.New(),
		eventID:        uuid.New(),
		eventTitle:     "Midnight Jazz Session",
		ticketTypeID:   uuid.New(),
		ticketTypeName: "General Admission",
		userID:         uuid.New(),
		quantity:       1,
		priceCents:     5000,
		credential:     "TIX-DEADBEEF-CAFEBABE-000000000000000000000000",
		status:         ticket.StatusValid,
		purchasedAt:    purchased,
		validUntil:     purchased.Add(48 * time.Hour),
	}
}

func (b *TicketBuilder) WithID(id uuid.UUID) *TicketBuilder       { b.id = id; return b }
func (b *TicketBuilder) WithEventID(id uuid.UUID) *TicketBuilder  { b.eventID = id; return b }
func (b *TicketBuilder) WithOwner(id uuid.UUID) *TicketBuilder    { b.userID = id; return b }
func (b *TicketBuilder) WithQuantity(q int) *TicketBuilder        { b.quantity = q; return b }
func (b *TicketBuilder) WithPriceCents(p int64) *TicketBuilder    { b.priceCents = p; return b }
func (b *TicketBuilder) WithStatus(s ticket.Status) *TicketBuilder {
	b.status = s
	return b
}
func (b *TicketBuilder) WithValidUntil(t time.Time) *TicketBuilder { b.validUntil = t; return b }
func (b *TicketBuilder) WithCredential(c string) *TicketBuilder    { b.credential = c; return b }

func (b *TicketBuilder) BuildDomain() *ticket.Ticket {
	qty, err := ticket.NewQuantity(b.quantity, 0)
	if err != nil {
		panic(err)
	}
	price, err := ticket.NewMoney(b.priceCents)
	if err != nil {
		panic(err)
	}
	cred, err := ticket.NewCredential(b.credential)
	if err != nil {
		panic(err)
	}
	return ticket.ReconstructTicket(
		b.id, b.eventID, b.ticketTypeID, b.userID,
		qty, price, cred, b.status,
		b.purchasedAt, b.validUntil,
		b.validatedAt, b.validatedBy,
		false, false,
	)
}

func (b *TicketBuilder) BuildView() *queries.TicketView {
	return &queries.TicketView{
		ID:             b.id,
		EventID:        b.eventID,
		EventTitle:     b.eventTitle,
		TicketTypeID:   b.ticketTypeID,
		TicketTypeName: b.ticketTypeName,
		UserID:         b.userID,
		Quantity:       b.quantity,
		PriceCents:     b.priceCents,
		Credential:     b.credential,
		Status:         string(b.status),
		PurchasedAt:    b.purchasedAt,
		ValidUntil:     b.validUntil,
		ValidatedAt:    b.validatedAt,
		ValidatedBy:    b.validatedBy,
	}
}

func (b *TicketBuilder) BuildListItem() *queries.TicketListItem {
	return &queries.TicketListItem{
		ID:             b.id,
		EventID:        b.eventID,
		EventTitle:     b.eventTitle,
		TicketTypeName: b.ticketTypeName,
		Quantity:       b.quantity,
		PriceCents:     b.priceCents,
		Status:         string(b.status),
		PurchasedAt:    b.purchasedAt,
		ValidUntil:     b.validUntil,
	}
}

func (b *TicketBuilder) BuildCheckoutRequestDTO() reqdto.CheckoutRequest {
	return reqdto.CheckoutRequest{
		Lines: []reqdto.CheckoutLineRequest{
			{EventID: b.eventID, TicketTypeID: b.ticketTypeID, Quantity: b.quantity, UnitPriceCents: b.priceCents},
		},
	}
}
