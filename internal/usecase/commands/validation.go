package commands

import (
	"context"
	"errors"
	"time"

	"tickethub/internal/domain/ticket"
	"tickethub/internal/infra"
	"tickethub/internal/monitoring"
	"tickethub/internal/pkg/clock"
	"tickethub/internal/pkg/errs"
	"tickethub/internal/usecase/queries"
	"tickethub/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrCredentialNotFound  = errs.New("credential not found")
	ErrTicketAlreadyUsed   = errs.New("ticket already redeemed")
	ErrTicketExpired       = errs.New("ticket validity window has passed")
	ErrTicketNotRedeemable = errs.New("ticket is not redeemable")
)

// ValidationResult is what the gate operator sees after a successful scan.
type ValidationResult struct {
	Ticket     *queries.TicketView `json:"ticket"`
	BuyerName  string              `json:"buyer_name"`
	BuyerEmail string              `json:"buyer_email"`
}

type ValidationCommands interface {
	ValidateTicket(ctx context.Context, credentialValue string, validatorID uuid.UUID) (*ValidationResult, error)
}

type validationUseCaseImpl struct {
	uow           shared.UnitOfWork
	ticketQueries queries.TicketQueries
	notifier      Notifier
	clock         clock.Clock
}

func NewValidationUseCase(
	uow shared.UnitOfWork,
	ticketQueries queries.TicketQueries,
	notifier Notifier,
	clk clock.Clock,
) ValidationCommands {
	return &validationUseCaseImpl{
		uow:           uow,
		ticketQueries: ticketQueries,
		notifier:      notifier,
		clock:         clk,
	}
}

// ValidateTicket redeems a credential at the gate. The decisive step is a
// single conditional update, so two validators racing on the same credential
// admit exactly one party; the loser is told precisely why it was refused.
func (uc *validationUseCaseImpl) ValidateTicket(
	ctx context.Context,
	credentialValue string,
	validatorID uuid.UUID,
) (*ValidationResult, error) {
	now := uc.clock.Now()

	var (
		snap  *shared.TicketSnapshot
		buyer *shared.BuyerSnapshot
	)
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		s, merr := tx.Tickets().MarkUsed(ctx, tx.DB(), credentialValue, now, validatorID)
		if merr != nil {
			if infra.IsKind(merr, infra.KindConflict) || infra.IsKind(merr, infra.KindNotFound) {
				return uc.classifyRejection(ctx, tx, credentialValue, now)
			}
			return errs.Mark(merr, ErrDatabaseOperationFailed)
		}
		snap = s

		if aerr := tx.Redemptions().Append(ctx, tx.DB(), s.ID, validatorID, now); aerr != nil {
			return errs.Mark(aerr, ErrDatabaseOperationFailed)
		}

		b, berr := tx.Reads().BuyerByID(ctx, s.UserID)
		if berr != nil {
			return errs.Mark(berr, ErrDatabaseOperationFailed)
		}
		buyer = b
		return nil
	})
	if err != nil {
		monitoring.ValidationAttempt(rejectionLabel(err))
		return nil, err
	}

	view, err := uc.ticketQueries.GetByIDSystem(ctx, snap.ID)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	_ = uc.notifier.Enqueue(ctx, snap.UserID, ChannelPush, TopicTicketValidated, map[string]any{
		"ticket_id":    snap.ID,
		"event_id":     snap.EventID,
		"validated_at": now,
	})

	monitoring.ValidationAttempt("admitted")
	return &ValidationResult{
		Ticket:     view,
		BuyerName:  buyer.Name,
		BuyerEmail: buyer.Email,
	}, nil
}

// classifyRejection re-reads the row the conditional update refused to touch
// and names the reason. An unknown credential and a spent one are different
// answers at the gate.
func (uc *validationUseCaseImpl) classifyRejection(
	ctx context.Context,
	tx shared.Tx,
	credentialValue string,
	now time.Time,
) error {
	s, err := tx.Reads().TicketByCredential(ctx, credentialValue)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return ErrCredentialNotFound
		}
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	switch ticket.Status(s.Status) {
	case ticket.StatusUsed:
		return ErrTicketAlreadyUsed
	case ticket.StatusCancelled:
		return ErrTicketNotRedeemable
	}
	if now.After(s.ValidUntil) {
		return ErrTicketExpired
	}
	return ErrTicketNotRedeemable
}

func rejectionLabel(err error) string {
	switch {
	case errors.Is(err, ErrCredentialNotFound):
		return "not_found"
	case errors.Is(err, ErrTicketAlreadyUsed):
		return "already_used"
	case errors.Is(err, ErrTicketExpired):
		return "expired"
	case errors.Is(err, ErrTicketNotRedeemable):
		return "not_redeemable"
	default:
		return "error"
	}
}
