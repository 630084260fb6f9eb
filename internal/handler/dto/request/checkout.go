package request

import (
	"tickethub/internal/usecase/commands"

	"github.com/google/uuid"
)

type CheckoutRequest struct {
	Lines []CheckoutLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// CheckoutLineRequest carries the price the buyer saw when assembling the
// cart; the server issues at that price rather than re-reading the current
// list price.
type CheckoutLineRequest struct {
	EventID        uuid.UUID `json:"event_id" binding:"required"`
	TicketTypeID   uuid.UUID `json:"ticket_type_id" binding:"required"`
	Quantity       int       `json:"quantity" binding:"required,min=1"`
	UnitPriceCents int64     `json:"unit_price_cents" binding:"min=0"`
}

func (r CheckoutRequest) ToCartLines() []commands.CartLine {
	lines := make([]commands.CartLine, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = commands.CartLine{
			EventID:        l.EventID,
			TicketTypeID:   l.TicketTypeID,
			Quantity:       l.Quantity,
			UnitPriceCents: l.UnitPriceCents,
		}
	}
	return lines
}
