package ticket

import (
	"time"

	"tickethub/internal/pkg/clock"

	"github.com/google/uuid"
)

// EventSpec is the slice of a marketplace event the issuance flow needs.
type EventSpec struct {
	ID         uuid.UUID
	PromoterID uuid.UUID
	Title      string
	EndTime    *time.Time
}

// TypeSpec is the priced admission category a cart line points at. PriceCents
// is the snapshot the cart line carried in, not the current list price, so a
// mid-checkout price change never hits the buyer.
type TypeSpec struct {
	ID             uuid.UUID
	EventID        uuid.UUID
	Name           string
	PriceCents     int64
	MaxPerPurchase int
}

type Factory struct {
	Clock                 clock.Clock
	DefaultValidityWindow time.Duration
}

func NewFactory(clock clock.Clock, defaultValidityWindow time.Duration) *Factory {
	return &Factory{
		Clock:                 clock,
		DefaultValidityWindow: defaultValidityWindow,
	}
}

// IssueTicket builds a Valid ticket for one cart line. The credential is
// generated by the caller so collision retries can re-enter here cheaply.
func (f *Factory) IssueTicket(
	event EventSpec,
	spec TypeSpec,
	userID uuid.UUID,
	quantity int,
	credentialValue string,
) (*Ticket, error) {
	qty, err := NewQuantity(quantity, spec.MaxPerPurchase)
	if err != nil {
		return nil, err
	}

	unitPrice, err := NewMoney(spec.PriceCents)
	if err != nil {
		return nil, err
	}

	cred, err := NewCredential(credentialValue)
	if err != nil {
		return nil, err
	}

	now := f.Clock.Now()
	validUntil := now.Add(f.DefaultValidityWindow)
	if event.EndTime != nil && event.EndTime.After(now) {
		validUntil = *event.EndTime
	}

	return newTicket(
		uuid.New(),
		event.ID,
		spec.ID,
		userID,
		qty,
		unitPrice,
		cred,
		now,
		validUntil,
	)
}
