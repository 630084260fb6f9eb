package shared

import (
	"time"

	"github.com/google/uuid"
)

// Minimal snapshots for command-side reads. Query views live in
// usecase/queries; these carry only what a write path needs to decide.

type EventSnapshot struct {
	ID         uuid.UUID
	PromoterID uuid.UUID
	Title      string
	StartTime  *time.Time
	EndTime    *time.Time
}

type TicketTypeSnapshot struct {
	ID             uuid.UUID
	EventID        uuid.UUID
	Name           string
	PriceCents     int64
	TotalCapacity  int
	Remaining      int
	MaxPerPurchase int
}

type TicketSnapshot struct {
	ID              uuid.UUID
	EventID         uuid.UUID
	TicketTypeID    uuid.UUID
	UserID          uuid.UUID
	Quantity        int
	PriceCents      int64
	Credential      string
	Status          string
	PurchasedAt     time.Time
	ValidUntil      time.Time
	ValidatedAt     *time.Time
	ValidatedBy     *uuid.UUID
	AddedToCalendar bool
	ReminderSet     bool
}

type BuyerSnapshot struct {
	ID    uuid.UUID
	Name  string
	Email string
}

type NotificationJob struct {
	ID      uuid.UUID
	UserID  uuid.UUID
	Kind    string
	Topic   string
	Payload []byte
	RunAt   time.Time
}

type IdempotencyRecord struct {
	Key          uuid.UUID
	UserID       uuid.UUID
	Endpoint     string
	RequestHash  string
	Status       string
	ResponseBody []byte
	ExpiresAt    time.Time
}
