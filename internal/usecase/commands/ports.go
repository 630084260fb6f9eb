package commands

import (
	"context"

	"github.com/google/uuid"
)

// Notifier hands a side effect to the delivery pipeline after the core state
// change has committed. Implementations must never let a delivery problem
// bubble back into the business flow; the ticket sale already happened.
type Notifier interface {
	Enqueue(ctx context.Context, userID uuid.UUID, kind, topic string, payload map[string]any) error
}

// Notification channels and topics.
const (
	ChannelEmail = "email"
	ChannelPush  = "push"

	TopicTicketSold        = "ticket_sold"
	TopicTicketValidated   = "ticket_validated"
	TopicTicketCancelled   = "ticket_cancelled"
	TopicTicketTransferred = "ticket_transferred"
)
