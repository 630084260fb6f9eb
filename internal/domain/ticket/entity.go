package ticket

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrAlreadyUsed   = errors.New("ticket already redeemed")
	ErrNotRedeemable = errors.New("ticket is not redeemable")
	ErrExpired       = errors.New("ticket validity window has passed")
	ErrNotOwner      = errors.New("ticket is not owned by requester")
	ErrNotCancelable = errors.New("ticket cannot be cancelled")
)

// Ticket is the durable record of an issued admission. A single record may
// represent a bundle of N seats of the same type bought together.
type Ticket struct {
	id              uuid.UUID
	eventID         uuid.UUID
	ticketTypeID    uuid.UUID
	userID          uuid.UUID
	quantity        Quantity
	unitPrice       Money
	credential      Credential
	status          Status
	purchasedAt     time.Time
	validUntil      time.Time
	validatedAt     *time.Time
	validatedBy     *uuid.UUID
	addedToCalendar bool
	reminderSet     bool
}

func newTicket(
	id, eventID, ticketTypeID, userID uuid.UUID,
	quantity Quantity,
	unitPrice Money,
	credential Credential,
	purchasedAt, validUntil time.Time,
) (*Ticket, error) {
	if validUntil.Before(purchasedAt) {
		return nil, ErrInvalidValidityEnd
	}
	return &Ticket{
		id:           id,
		eventID:      eventID,
		ticketTypeID: ticketTypeID,
		userID:       userID,
		quantity:     quantity,
		unitPrice:    unitPrice,
		credential:   credential,
		status:       StatusValid,
		purchasedAt:  purchasedAt,
		validUntil:   validUntil,
	}, nil
}

func ReconstructTicket(
	id, eventID, ticketTypeID, userID uuid.UUID,
	quantity Quantity,
	unitPrice Money,
	credential Credential,
	status Status,
	purchasedAt, validUntil time.Time,
	validatedAt *time.Time,
	validatedBy *uuid.UUID,
	addedToCalendar, reminderSet bool,
) *Ticket {
	return &Ticket{
		id:              id,
		eventID:         eventID,
		ticketTypeID:    ticketTypeID,
		userID:          userID,
		quantity:        quantity,
		unitPrice:       unitPrice,
		credential:      credential,
		status:          status,
		purchasedAt:     purchasedAt,
		validUntil:      validUntil,
		validatedAt:     validatedAt,
		validatedBy:     validatedBy,
		addedToCalendar: addedToCalendar,
		reminderSet:     reminderSet,
	}
}

// HasExpired reports whether the validity window has passed. The boundary is
// inclusive: a ticket scanned at exactly validUntil is still admissible.
func (t *Ticket) HasExpired(now time.Time) bool {
	return now.After(t.validUntil)
}

// Redeem transitions Valid -> Used. The persistence layer must perform the
// equivalent check-and-set atomically; this method is the in-memory statement
// of the same state machine and classifies every rejection precisely.
func (t *Ticket) Redeem(now time.Time, validatorID uuid.UUID) error {
	switch t.status {
	case StatusUsed:
		return ErrAlreadyUsed
	case StatusCancelled:
		return ErrNotRedeemable
	}
	if t.HasExpired(now) {
		return ErrExpired
	}
	t.status = StatusUsed
	t.validatedAt = &now
	t.validatedBy = &validatorID
	return nil
}

// Cancel transitions Valid -> Cancelled and returns the refund owed. Only
// the owning user may cancel, and a redeemed ticket never can.
func (t *Ticket) Cancel(requesterID uuid.UUID, feeRate float64) (Money, error) {
	if t.userID != requesterID {
		return Money{}, ErrNotOwner
	}
	switch t.status {
	case StatusUsed:
		return Money{}, ErrAlreadyUsed
	case StatusCancelled:
		return Money{}, ErrNotCancelable
	}
	refund, err := t.unitPrice.MulQuantity(t.quantity).AfterFee(feeRate)
	if err != nil {
		return Money{}, err
	}
	t.status = StatusCancelled
	return refund, nil
}

// TransferTo reassigns ownership. Credential, price, quantity and validity
// window are deliberately untouched.
func (t *Ticket) TransferTo(fromUserID, toUserID uuid.UUID) error {
	if t.userID != fromUserID {
		return ErrNotOwner
	}
	switch t.status {
	case StatusUsed:
		return ErrAlreadyUsed
	case StatusCancelled:
		return ErrNotRedeemable
	}
	t.userID = toUserID
	return nil
}

func (t *Ticket) MarkAddedToCalendar() { t.addedToCalendar = true }
func (t *Ticket) MarkReminderSet()     { t.reminderSet = true }

func (t *Ticket) ID() uuid.UUID           { return t.id }
func (t *Ticket) EventID() uuid.UUID      { return t.eventID }
func (t *Ticket) TicketTypeID() uuid.UUID { return t.ticketTypeID }
func (t *Ticket) UserID() uuid.UUID       { return t.userID }
func (t *Ticket) Quantity() Quantity      { return t.quantity }
func (t *Ticket) UnitPrice() Money        { return t.unitPrice }
func (t *Ticket) Credential() Credential  { return t.credential }
func (t *Ticket) Status() Status          { return t.status }
func (t *Ticket) PurchasedAt() time.Time  { return t.purchasedAt }
func (t *Ticket) ValidUntil() time.Time   { return t.validUntil }
func (t *Ticket) ValidatedAt() *time.Time { return t.validatedAt }
func (t *Ticket) ValidatedBy() *uuid.UUID { return t.validatedBy }
func (t *Ticket) AddedToCalendar() bool   { return t.addedToCalendar }
func (t *Ticket) ReminderSet() bool       { return t.reminderSet }
