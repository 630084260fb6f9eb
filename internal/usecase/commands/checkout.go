package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"tickethub/internal/domain/ticket"
	"tickethub/internal/infra"
	"tickethub/internal/monitoring"
	"tickethub/internal/pkg/clock"
	"tickethub/internal/pkg/config"
	"tickethub/internal/pkg/credential"
	"tickethub/internal/pkg/errs"
	"tickethub/internal/usecase/queries"
	"tickethub/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrEmptyCart               = errs.New("cart has no lines")
	ErrIdempotencyInProgress   = errs.New("idempotency in progress")
	ErrDuplicateCheckout       = errs.New("idempotency key reused with different cart")
	ErrIdempotencyCheckFailed  = errs.New("idempotency check failed")
	ErrCredentialExhausted     = errs.New("could not mint a unique credential")
	ErrDatabaseOperationFailed = errs.New("database operation failed")
)

// Per-line failure reasons surfaced to the caller in input order.
const (
	ReasonEventNotFound         = "event_not_found"
	ReasonTicketTypeNotFound    = "ticket_type_not_found"
	ReasonTypeEventMismatch     = "ticket_type_event_mismatch"
	ReasonInvalidQuantity       = "invalid_quantity"
	ReasonInvalidPrice          = "invalid_price"
	ReasonInsufficientInventory = "insufficient_inventory"
)

// CartLine is one requested purchase: N seats of a single ticket type.
// UnitPriceCents is the price the buyer saw when the cart was assembled;
// issuance charges it as-is, so a price change between cart assembly and
// checkout never raises what the buyer pays.
type CartLine struct {
	EventID        uuid.UUID `json:"event_id"`
	TicketTypeID   uuid.UUID `json:"ticket_type_id"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int64     `json:"unit_price_cents"`
}

type LineFailure struct {
	LineIndex int    `json:"line_index"`
	Reason    string `json:"reason"`
}

// CheckoutResult preserves input order across both slices: issued tickets
// carry no line index, failures do. A cart can succeed partially.
type CheckoutResult struct {
	Issued     []*queries.TicketView `json:"issued"`
	Failed     []LineFailure         `json:"failed"`
	IsReplayed bool                  `json:"-"`
}

type CheckoutCommands interface {
	Checkout(ctx context.Context, userID uuid.UUID, lines []CartLine, idempotencyKey *uuid.UUID) (*CheckoutResult, error)
}

type checkoutUseCaseImpl struct {
	uow           shared.UnitOfWork
	factory       *ticket.Factory
	credentials   credential.Generator
	ticketQueries queries.TicketQueries
	notifier      Notifier
	clock         clock.Clock
	cfg           config.TicketingConfig
}

func NewCheckoutUseCase(
	uow shared.UnitOfWork,
	factory *ticket.Factory,
	credentials credential.Generator,
	ticketQueries queries.TicketQueries,
	notifier Notifier,
	clk clock.Clock,
	cfg config.TicketingConfig,
) CheckoutCommands {
	return &checkoutUseCaseImpl{
		uow:           uow,
		factory:       factory,
		credentials:   credentials,
		ticketQueries: ticketQueries,
		notifier:      notifier,
		clock:         clk,
		cfg:           cfg,
	}
}

func (uc *checkoutUseCaseImpl) Checkout(
	ctx context.Context,
	userID uuid.UUID,
	lines []CartLine,
	idempotencyKey *uuid.UUID,
) (*CheckoutResult, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	start := time.Now()
	defer func() { monitoring.ObserveCheckoutDuration(time.Since(start)) }()

	if idempotencyKey != nil {
		replayed, err := uc.claimIdempotencyKey(ctx, *idempotencyKey, userID, lines)
		if err != nil {
			return nil, err
		}
		if replayed != nil {
			return replayed, nil
		}
	}

	result := &CheckoutResult{
		Issued: make([]*queries.TicketView, 0, len(lines)),
		Failed: []LineFailure{},
	}
	for i, line := range lines {
		view, reason, err := uc.processLine(ctx, userID, line)
		switch {
		case err != nil:
			monitoring.CheckoutLine(monitoring.OutcomeFailure)
			return nil, err
		case reason != "":
			result.Failed = append(result.Failed, LineFailure{LineIndex: i, Reason: reason})
			monitoring.CheckoutLine(monitoring.OutcomeForReason(reason))
		default:
			result.Issued = append(result.Issued, view)
			monitoring.CheckoutLine(monitoring.OutcomeIssued)
			monitoring.TicketsIssued(view.EventID.String(), view.Quantity)
		}
	}

	if idempotencyKey != nil {
		if err := uc.completeIdempotencyKey(ctx, *idempotencyKey, userID, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// claimIdempotencyKey returns a non-nil result iff the key belongs to an
// already-completed identical request, in which case the stored response is
// replayed verbatim. A key whose lifetime has passed is reclaimed as if it
// were fresh, so a request that died mid-flight cannot wedge its key in
// processing forever.
func (uc *checkoutUseCaseImpl) claimIdempotencyKey(
	ctx context.Context,
	key, userID uuid.UUID,
	lines []CartLine,
) (*CheckoutResult, error) {
	requestHash := hashCartLines(lines)
	now := uc.clock.Now()
	expiresAt := now.Add(uc.cfg.IdempotencyKeyLifetime)

	var existing *shared.IdempotencyRecord
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		inserted, ierr := tx.Idempotency().TryInsert(ctx, tx.DB(), key, userID, "POST /checkout", requestHash, now, expiresAt)
		if ierr != nil {
			return errs.Mark(ierr, ErrIdempotencyCheckFailed)
		}
		if inserted {
			return nil
		}
		rec, rerr := tx.Reads().IdempotencyByKey(ctx, key, userID)
		if rerr != nil {
			return errs.Mark(rerr, ErrIdempotencyCheckFailed)
		}
		existing = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil // key claimed, proceed with a fresh checkout
	}

	switch existing.Status {
	case "completed":
		if existing.RequestHash != requestHash {
			return nil, ErrDuplicateCheckout
		}
		var replay CheckoutResult
		if uerr := json.Unmarshal(existing.ResponseBody, &replay); uerr != nil {
			return nil, errs.Mark(uerr, ErrIdempotencyCheckFailed)
		}
		replay.IsReplayed = true
		return &replay, nil
	case "processing":
		if existing.RequestHash != requestHash {
			return nil, ErrDuplicateCheckout
		}
		return nil, ErrIdempotencyInProgress
	default:
		return nil, errs.Mark(errs.Newf("invalid idempotency key status %q", existing.Status), ErrIdempotencyCheckFailed)
	}
}

func (uc *checkoutUseCaseImpl) completeIdempotencyKey(
	ctx context.Context,
	key, userID uuid.UUID,
	result *CheckoutResult,
) error {
	body, err := json.Marshal(result)
	if err != nil {
		return errs.Mark(err, ErrIdempotencyCheckFailed)
	}
	return uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if merr := tx.Idempotency().MarkCompleted(ctx, tx.DB(), key, userID, body); merr != nil {
			return errs.Mark(merr, ErrIdempotencyCheckFailed)
		}
		return nil
	})
}

// processLine runs one cart line in its own transaction so a sold-out type
// never poisons the rest of the cart. A non-empty reason is a per-line
// rejection; a non-nil error aborts the whole checkout.
func (uc *checkoutUseCaseImpl) processLine(
	ctx context.Context,
	userID uuid.UUID,
	line CartLine,
) (*queries.TicketView, string, error) {
	event, typ, reason, err := uc.validateLine(ctx, line)
	if reason != "" || err != nil {
		return nil, reason, err
	}

	var issued *ticket.Ticket
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if rerr := tx.Inventory().Reserve(ctx, tx.DB(), typ.ID, line.Quantity); rerr != nil {
			return rerr
		}

		dom, ierr := uc.insertWithFreshCredential(ctx, tx, event, typ, userID, line.Quantity)
		if ierr != nil {
			return ierr
		}
		issued = dom
		return nil
	})
	if err != nil {
		if infra.IsKind(err, infra.KindConflict) {
			return nil, ReasonInsufficientInventory, nil
		}
		if errors.Is(err, ticket.ErrNonPositiveQty) || errors.Is(err, ticket.ErrQtyExceedsMax) {
			return nil, ReasonInvalidQuantity, nil
		}
		return nil, "", errs.Mark(err, ErrDatabaseOperationFailed)
	}

	view, err := uc.ticketQueries.GetByIDSystem(ctx, issued.ID())
	if err != nil {
		return nil, "", errs.Mark(err, ErrDatabaseOperationFailed)
	}

	_ = uc.notifier.Enqueue(ctx, event.PromoterID, ChannelEmail, TopicTicketSold, map[string]any{
		"ticket_id":        view.ID,
		"event_id":         event.ID,
		"event_title":      event.Title,
		"ticket_type_name": typ.Name,
		"quantity":         view.Quantity,
		"amount_cents":     view.PriceCents * int64(view.Quantity),
		"buyer_id":         userID,
	})
	return view, "", nil
}

func (uc *checkoutUseCaseImpl) validateLine(
	ctx context.Context,
	line CartLine,
) (ticket.EventSpec, ticket.TypeSpec, string, error) {
	reads := uc.uow.CommandReads()

	eventSnap, err := reads.EventByID(ctx, line.EventID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return ticket.EventSpec{}, ticket.TypeSpec{}, ReasonEventNotFound, nil
		}
		return ticket.EventSpec{}, ticket.TypeSpec{}, "", errs.Mark(err, ErrDatabaseOperationFailed)
	}

	typeSnap, err := reads.TicketTypeByID(ctx, line.TicketTypeID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return ticket.EventSpec{}, ticket.TypeSpec{}, ReasonTicketTypeNotFound, nil
		}
		return ticket.EventSpec{}, ticket.TypeSpec{}, "", errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if typeSnap.EventID != eventSnap.ID {
		return ticket.EventSpec{}, ticket.TypeSpec{}, ReasonTypeEventMismatch, nil
	}

	if _, err := ticket.NewQuantity(line.Quantity, typeSnap.MaxPerPurchase); err != nil {
		return ticket.EventSpec{}, ticket.TypeSpec{}, ReasonInvalidQuantity, nil
	}
	if _, err := ticket.NewMoney(line.UnitPriceCents); err != nil {
		return ticket.EventSpec{}, ticket.TypeSpec{}, ReasonInvalidPrice, nil
	}

	event := ticket.EventSpec{
		ID:         eventSnap.ID,
		PromoterID: eventSnap.PromoterID,
		Title:      eventSnap.Title,
		EndTime:    eventSnap.EndTime,
	}
	// The issued ticket carries the cart line's price, never the current
	// list price read above.
	typ := ticket.TypeSpec{
		ID:             typeSnap.ID,
		EventID:        typeSnap.EventID,
		Name:           typeSnap.Name,
		PriceCents:     line.UnitPriceCents,
		MaxPerPurchase: typeSnap.MaxPerPurchase,
	}
	return event, typ, "", nil
}

// insertWithFreshCredential retries the insert on a credential collision.
// The random space makes a collision vanishingly rare; the retry budget
// exists so one never turns into a user-visible failure.
func (uc *checkoutUseCaseImpl) insertWithFreshCredential(
	ctx context.Context,
	tx shared.Tx,
	event ticket.EventSpec,
	typ ticket.TypeSpec,
	userID uuid.UUID,
	quantity int,
) (*ticket.Ticket, error) {
	attempts := uc.cfg.CredentialInsertRetry
	if attempts < 1 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		code, err := uc.credentials.Generate(uuid.New(), event.ID, typ.ID)
		if err != nil {
			return nil, err
		}
		dom, err := uc.factory.IssueTicket(event, typ, userID, quantity, code)
		if err != nil {
			return nil, err
		}
		err = tx.Tickets().Insert(ctx, tx.DB(), dom)
		if err == nil {
			return dom, nil
		}
		if !infra.IsKind(err, infra.KindDuplicateKey) {
			return nil, err
		}
		slog.Warn("credential collision on insert, regenerating",
			"event_id", event.ID, "ticket_type_id", typ.ID, "attempt", i+1)
	}
	return nil, ErrCredentialExhausted
}

func hashCartLines(lines []CartLine) string {
	data, _ := json.Marshal(lines)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
