package commands

import (
	"context"
	"errors"

	"tickethub/internal/domain/ticket"
	"tickethub/internal/infra"
	"tickethub/internal/monitoring"
	"tickethub/internal/pkg/clock"
	"tickethub/internal/pkg/config"
	"tickethub/internal/pkg/errs"
	"tickethub/internal/usecase/queries"
	"tickethub/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrTicketNotFound      = errs.New("ticket not found")
	ErrNotTicketOwner      = errs.New("ticket not owned by requester")
	ErrTicketNotCancelable = errs.New("ticket cannot be cancelled")
	ErrRecipientNotFound   = errs.New("transfer recipient not found")
	// ErrTicketStateChanged covers the race where a concurrent request won
	// the status transition between our read and our conditional update.
	ErrTicketStateChanged = errs.New("ticket state changed concurrently")
)

type CancelTicketResult struct {
	TicketID    uuid.UUID `json:"ticket_id"`
	RefundCents int64     `json:"refund_cents"`
}

type TicketCommands interface {
	CancelTicket(ctx context.Context, ticketID, requesterID uuid.UUID) (*CancelTicketResult, error)
	TransferTicket(ctx context.Context, ticketID, fromUserID, toUserID uuid.UUID) (*queries.TicketView, error)
	AddToCalendar(ctx context.Context, ticketID uuid.UUID) error
	SetReminder(ctx context.Context, ticketID uuid.UUID) error
}

type ticketUseCaseImpl struct {
	uow           shared.UnitOfWork
	ticketQueries queries.TicketQueries
	notifier      Notifier
	clock         clock.Clock
	cfg           config.TicketingConfig
}

func NewTicketUseCase(
	uow shared.UnitOfWork,
	ticketQueries queries.TicketQueries,
	notifier Notifier,
	clk clock.Clock,
	cfg config.TicketingConfig,
) TicketCommands {
	return &ticketUseCaseImpl{
		uow:           uow,
		ticketQueries: ticketQueries,
		notifier:      notifier,
		clock:         clk,
		cfg:           cfg,
	}
}

// CancelTicket voids a still-valid ticket, credits its seats back to the
// type's inventory and computes the refund net of the cancellation fee.
func (uc *ticketUseCaseImpl) CancelTicket(
	ctx context.Context,
	ticketID, requesterID uuid.UUID,
) (*CancelTicketResult, error) {
	var (
		refund ticket.Money
		owner  uuid.UUID
		event  uuid.UUID
	)
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		snap, rerr := readTicketSnapshot(ctx, tx, ticketID)
		if rerr != nil {
			return rerr
		}
		owner, event = snap.UserID, snap.EventID

		dom, derr := domainFromSnapshot(snap)
		if derr != nil {
			return errs.Mark(derr, ErrDatabaseOperationFailed)
		}

		r, cerr := dom.Cancel(requesterID, uc.cfg.CancellationFeeRate)
		if cerr != nil {
			return mapOwnershipError(cerr, ErrTicketNotCancelable)
		}
		refund = r

		if uerr := tx.Tickets().MarkCancelled(ctx, tx.DB(), ticketID); uerr != nil {
			if infra.IsKind(uerr, infra.KindConflict) {
				return ErrTicketStateChanged
			}
			return errs.Mark(uerr, ErrDatabaseOperationFailed)
		}

		if rerr := tx.Inventory().Release(ctx, tx.DB(), snap.TicketTypeID, snap.Quantity); rerr != nil {
			return errs.Mark(rerr, ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = uc.notifier.Enqueue(ctx, owner, ChannelEmail, TopicTicketCancelled, map[string]any{
		"ticket_id":    ticketID,
		"event_id":     event,
		"refund_cents": refund.Cents(),
	})

	monitoring.TicketCancelled()
	return &CancelTicketResult{TicketID: ticketID, RefundCents: refund.Cents()}, nil
}

// TransferTicket reassigns ownership of a still-valid ticket. The credential
// travels with the ticket; nothing about admission changes.
func (uc *ticketUseCaseImpl) TransferTicket(
	ctx context.Context,
	ticketID, fromUserID, toUserID uuid.UUID,
) (*queries.TicketView, error) {
	var event uuid.UUID
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		snap, rerr := readTicketSnapshot(ctx, tx, ticketID)
		if rerr != nil {
			return rerr
		}
		event = snap.EventID

		if _, berr := tx.Reads().BuyerByID(ctx, toUserID); berr != nil {
			if infra.IsKind(berr, infra.KindNotFound) {
				return ErrRecipientNotFound
			}
			return errs.Mark(berr, ErrDatabaseOperationFailed)
		}

		dom, derr := domainFromSnapshot(snap)
		if derr != nil {
			return errs.Mark(derr, ErrDatabaseOperationFailed)
		}
		if terr := dom.TransferTo(fromUserID, toUserID); terr != nil {
			return mapOwnershipError(terr, ErrTicketNotRedeemable)
		}

		if uerr := tx.Tickets().UpdateOwner(ctx, tx.DB(), ticketID, toUserID); uerr != nil {
			if infra.IsKind(uerr, infra.KindConflict) {
				return ErrTicketStateChanged
			}
			return errs.Mark(uerr, ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	view, err := uc.ticketQueries.GetByIDSystem(ctx, ticketID)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	_ = uc.notifier.Enqueue(ctx, toUserID, ChannelEmail, TopicTicketTransferred, map[string]any{
		"ticket_id":    ticketID,
		"event_id":     event,
		"from_user_id": fromUserID,
	})

	monitoring.TicketTransferred()
	return view, nil
}

// AddToCalendar and SetReminder are convenience flags. The only invariant is
// that the ticket exists; terminal states keep their flags writable.
func (uc *ticketUseCaseImpl) AddToCalendar(ctx context.Context, ticketID uuid.UUID) error {
	return uc.setFlag(ctx, ticketID, func(ctx context.Context, tx shared.Tx) error {
		return tx.Tickets().SetCalendarFlag(ctx, tx.DB(), ticketID)
	})
}

func (uc *ticketUseCaseImpl) SetReminder(ctx context.Context, ticketID uuid.UUID) error {
	return uc.setFlag(ctx, ticketID, func(ctx context.Context, tx shared.Tx) error {
		return tx.Tickets().SetReminderFlag(ctx, tx.DB(), ticketID)
	})
}

func (uc *ticketUseCaseImpl) setFlag(
	ctx context.Context,
	ticketID uuid.UUID,
	update func(ctx context.Context, tx shared.Tx) error,
) error {
	return uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := update(ctx, tx); err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrTicketNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return nil
	})
}

func readTicketSnapshot(ctx context.Context, tx shared.Tx, ticketID uuid.UUID) (*shared.TicketSnapshot, error) {
	snap, err := tx.Reads().TicketByID(ctx, ticketID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return snap, nil
}

// domainFromSnapshot rehydrates the aggregate from a persisted row. The row
// was validated on the way in, so constructor failures here mean corrupt data.
func domainFromSnapshot(s *shared.TicketSnapshot) (*ticket.Ticket, error) {
	qty, err := ticket.NewQuantity(s.Quantity, 0)
	if err != nil {
		return nil, err
	}
	price, err := ticket.NewMoney(s.PriceCents)
	if err != nil {
		return nil, err
	}
	cred, err := ticket.NewCredential(s.Credential)
	if err != nil {
		return nil, err
	}
	return ticket.ReconstructTicket(
		s.ID, s.EventID, s.TicketTypeID, s.UserID,
		qty, price, cred,
		ticket.Status(s.Status),
		s.PurchasedAt, s.ValidUntil,
		s.ValidatedAt, s.ValidatedBy,
		s.AddedToCalendar, s.ReminderSet,
	), nil
}

// mapOwnershipError translates domain rejections into the command-level
// sentinels the transport layer maps onto status codes.
func mapOwnershipError(err error, terminal error) error {
	switch {
	case errors.Is(err, ticket.ErrNotOwner):
		return ErrNotTicketOwner
	case errors.Is(err, ticket.ErrAlreadyUsed):
		return ErrTicketAlreadyUsed
	case errors.Is(err, ticket.ErrNotCancelable), errors.Is(err, ticket.ErrNotRedeemable):
		return terminal
	default:
		return err
	}
}

