//go:build unit

package commands_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"tickethub/internal/domain/ticket"
	"tickethub/internal/infra"
	"tickethub/internal/infra/db"
	"tickethub/internal/pkg/errs"
	"tickethub/internal/usecase/commands"
	"tickethub/internal/usecase/queries"
	"tickethub/internal/usecase/shared"

	"github.com/google/uuid"
)

// In-memory unit of work backing the command tests. It reproduces the
// conditional-update contract of the real repositories: a guarded write that
// matches nothing surfaces as KindConflict, a missing row as KindNotFound.

type notificationJob struct {
	UserID  uuid.UUID
	Kind    string
	Topic   string
	Payload []byte
	RunAt   time.Time
}

type redemptionRow struct {
	TicketID    uuid.UUID
	ValidatorID uuid.UUID
	At          time.Time
}

type fakeStore struct {
	mu           sync.Mutex
	events       map[uuid.UUID]*shared.EventSnapshot
	types        map[uuid.UUID]*shared.TicketTypeSnapshot
	tickets      map[uuid.UUID]*shared.TicketSnapshot
	byCredential map[string]uuid.UUID
	buyers       map[uuid.UUID]*shared.BuyerSnapshot
	idempotency  map[string]*shared.IdempotencyRecord
	jobs         []notificationJob
	redemptions  []redemptionRow
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		events:       map[uuid.UUID]*shared.EventSnapshot{},
		types:        map[uuid.UUID]*shared.TicketTypeSnapshot{},
		tickets:      map[uuid.UUID]*shared.TicketSnapshot{},
		byCredential: map[string]uuid.UUID{},
		buyers:       map[uuid.UUID]*shared.BuyerSnapshot{},
		idempotency:  map[string]*shared.IdempotencyRecord{},
	}
}

func (s *fakeStore) addEvent(e shared.EventSnapshot) *shared.EventSnapshot {
	s.events[e.ID] = &e
	return &e
}

func (s *fakeStore) addType(t shared.TicketTypeSnapshot) *shared.TicketTypeSnapshot {
	s.types[t.ID] = &t
	return &t
}

func (s *fakeStore) addBuyer(b shared.BuyerSnapshot) *shared.BuyerSnapshot {
	s.buyers[b.ID] = &b
	return &b
}

func (s *fakeStore) addTicket(t shared.TicketSnapshot) *shared.TicketSnapshot {
	s.tickets[t.ID] = &t
	s.byCredential[t.Credential] = t.ID
	return &t
}

func idempotencyKeyFor(key, userID uuid.UUID) string {
	return key.String() + "/" + userID.String()
}

type fakeUoW struct {
	store *fakeStore
}

func newFakeUoW(store *fakeStore) *fakeUoW {
	return &fakeUoW{store: store}
}

func (u *fakeUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	return fn(ctx, &fakeTx{store: u.store})
}

func (u *fakeUoW) WithDB(ctx context.Context, fn func(ctx context.Context, db db.DBTX) error) error {
	return fn(ctx, nil)
}

func (u *fakeUoW) CommandReads() shared.CommandReads {
	// reads issued outside a transaction take the store lock themselves
	return &fakeReads{store: u.store, lock: true}
}

type fakeTx struct {
	store *fakeStore
}

func (t *fakeTx) Tickets() shared.TicketRepository           { return &fakeTicketRepo{store: t.store} }
func (t *fakeTx) Inventory() shared.InventoryRepository      { return &fakeInventoryRepo{store: t.store} }
func (t *fakeTx) Redemptions() shared.RedemptionRepository   { return &fakeRedemptionRepo{store: t.store} }
func (t *fakeTx) Idempotency() shared.IdempotencyRepository  { return &fakeIdempotencyRepo{store: t.store} }
func (t *fakeTx) Notifications() shared.NotificationRepository {
	return &fakeNotificationRepo{store: t.store}
}
func (t *fakeTx) Reads() shared.CommandReads { return &fakeReads{store: t.store} }
func (t *fakeTx) DB() db.DBTX                { return nil }

type fakeReads struct {
	store *fakeStore
	lock  bool
}

func (r *fakeReads) acquire() func() {
	if !r.lock {
		return func() {}
	}
	r.store.mu.Lock()
	return r.store.mu.Unlock
}

func (r *fakeReads) EventByID(_ context.Context, id uuid.UUID) (*shared.EventSnapshot, error) {
	defer r.acquire()()
	e, ok := r.store.events[id]
	if !ok {
		return nil, infra.WrapRepoErr("event not found", nil, infra.KindNotFound)
	}
	cp := *e
	return &cp, nil
}

func (r *fakeReads) TicketTypeByID(_ context.Context, id uuid.UUID) (*shared.TicketTypeSnapshot, error) {
	defer r.acquire()()
	t, ok := r.store.types[id]
	if !ok {
		return nil, infra.WrapRepoErr("ticket type not found", nil, infra.KindNotFound)
	}
	cp := *t
	return &cp, nil
}

func (r *fakeReads) TicketByID(_ context.Context, id uuid.UUID) (*shared.TicketSnapshot, error) {
	defer r.acquire()()
	t, ok := r.store.tickets[id]
	if !ok {
		return nil, infra.WrapRepoErr("ticket not found", nil, infra.KindNotFound)
	}
	cp := *t
	return &cp, nil
}

func (r *fakeReads) TicketByCredential(_ context.Context, credential string) (*shared.TicketSnapshot, error) {
	defer r.acquire()()
	id, ok := r.store.byCredential[credential]
	if !ok {
		return nil, infra.WrapRepoErr("ticket not found", nil, infra.KindNotFound)
	}
	cp := *r.store.tickets[id]
	return &cp, nil
}

func (r *fakeReads) BuyerByID(_ context.Context, id uuid.UUID) (*shared.BuyerSnapshot, error) {
	defer r.acquire()()
	b, ok := r.store.buyers[id]
	if !ok {
		return nil, infra.WrapRepoErr("user not found", nil, infra.KindNotFound)
	}
	cp := *b
	return &cp, nil
}

func (r *fakeReads) IdempotencyByKey(_ context.Context, key, userID uuid.UUID) (*shared.IdempotencyRecord, error) {
	defer r.acquire()()
	rec, ok := r.store.idempotency[idempotencyKeyFor(key, userID)]
	if !ok {
		return nil, infra.WrapRepoErr("idempotency key not found", nil, infra.KindNotFound)
	}
	cp := *rec
	return &cp, nil
}

type fakeTicketRepo struct {
	store *fakeStore
}

func (r *fakeTicketRepo) Insert(_ context.Context, _ db.DBTX, t *ticket.Ticket) error {
	cred := t.Credential().String()
	if _, exists := r.store.byCredential[cred]; exists {
		return infra.WrapRepoErr("credential already exists", nil, infra.KindDuplicateKey)
	}
	r.store.addTicket(shared.TicketSnapshot{
		ID:           t.ID(),
		EventID:      t.EventID(),
		TicketTypeID: t.TicketTypeID(),
		UserID:       t.UserID(),
		Quantity:     t.Quantity().Value(),
		PriceCents:   t.UnitPrice().Cents(),
		Credential:   cred,
		Status:       t.Status().String(),
		PurchasedAt:  t.PurchasedAt(),
		ValidUntil:   t.ValidUntil(),
	})
	return nil
}

func (r *fakeTicketRepo) MarkUsed(_ context.Context, _ db.DBTX, credential string, at time.Time, validatorID uuid.UUID) (*shared.TicketSnapshot, error) {
	id, ok := r.store.byCredential[credential]
	if !ok {
		return nil, infra.WrapRepoErr("ticket not found", nil, infra.KindNotFound)
	}
	t := r.store.tickets[id]
	if ticket.Status(t.Status) != ticket.StatusValid || at.After(t.ValidUntil) {
		return nil, infra.WrapRepoErr("ticket not redeemable", nil, infra.KindConflict)
	}
	t.Status = ticket.StatusUsed.String()
	validatedAt := at
	t.ValidatedAt = &validatedAt
	t.ValidatedBy = &validatorID
	cp := *t
	return &cp, nil
}

func (r *fakeTicketRepo) MarkCancelled(_ context.Context, _ db.DBTX, ticketID uuid.UUID) error {
	t, ok := r.store.tickets[ticketID]
	if !ok || ticket.Status(t.Status) != ticket.StatusValid {
		return infra.WrapRepoErr("ticket not cancellable", nil, infra.KindConflict)
	}
	t.Status = ticket.StatusCancelled.String()
	return nil
}

func (r *fakeTicketRepo) UpdateOwner(_ context.Context, _ db.DBTX, ticketID, toUserID uuid.UUID) error {
	t, ok := r.store.tickets[ticketID]
	if !ok || ticket.Status(t.Status) != ticket.StatusValid {
		return infra.WrapRepoErr("ticket not transferable", nil, infra.KindConflict)
	}
	t.UserID = toUserID
	return nil
}

func (r *fakeTicketRepo) SetCalendarFlag(_ context.Context, _ db.DBTX, ticketID uuid.UUID) error {
	t, ok := r.store.tickets[ticketID]
	if !ok {
		return infra.WrapRepoErr("ticket not found", nil, infra.KindNotFound)
	}
	t.AddedToCalendar = true
	return nil
}

func (r *fakeTicketRepo) SetReminderFlag(_ context.Context, _ db.DBTX, ticketID uuid.UUID) error {
	t, ok := r.store.tickets[ticketID]
	if !ok {
		return infra.WrapRepoErr("ticket not found", nil, infra.KindNotFound)
	}
	t.ReminderSet = true
	return nil
}

type fakeInventoryRepo struct {
	store *fakeStore
}

func (r *fakeInventoryRepo) Reserve(_ context.Context, _ db.DBTX, ticketTypeID uuid.UUID, quantity int) error {
	t, ok := r.store.types[ticketTypeID]
	if !ok || t.Remaining < quantity {
		return infra.WrapRepoErr("insufficient inventory", nil, infra.KindConflict)
	}
	t.Remaining -= quantity
	return nil
}

func (r *fakeInventoryRepo) Release(_ context.Context, _ db.DBTX, ticketTypeID uuid.UUID, quantity int) error {
	t, ok := r.store.types[ticketTypeID]
	if !ok {
		return infra.WrapRepoErr("ticket type not found", nil, infra.KindNotFound)
	}
	t.Remaining += quantity
	if t.Remaining > t.TotalCapacity {
		t.Remaining = t.TotalCapacity
	}
	return nil
}

type fakeRedemptionRepo struct {
	store *fakeStore
}

func (r *fakeRedemptionRepo) Append(_ context.Context, _ db.DBTX, ticketID, validatorID uuid.UUID, at time.Time) error {
	r.store.redemptions = append(r.store.redemptions, redemptionRow{TicketID: ticketID, ValidatorID: validatorID, At: at})
	return nil
}

type fakeIdempotencyRepo struct {
	store *fakeStore
}

func (r *fakeIdempotencyRepo) TryInsert(_ context.Context, _ db.DBTX, key, userID uuid.UUID, endpoint, requestHash string, now, expiresAt time.Time) (bool, error) {
	k := idempotencyKeyFor(key, userID)
	if rec, exists := r.store.idempotency[k]; exists && rec.ExpiresAt.After(now) {
		return false, nil
	}
	r.store.idempotency[k] = &shared.IdempotencyRecord{
		Key:         key,
		UserID:      userID,
		Endpoint:    endpoint,
		RequestHash: requestHash,
		Status:      "processing",
		ExpiresAt:   expiresAt,
	}
	return true, nil
}

func (r *fakeIdempotencyRepo) MarkCompleted(_ context.Context, _ db.DBTX, key, userID uuid.UUID, responseBody []byte) error {
	rec, ok := r.store.idempotency[idempotencyKeyFor(key, userID)]
	if !ok {
		return infra.WrapRepoErr("idempotency key not found", nil, infra.KindNotFound)
	}
	rec.Status = "completed"
	rec.ResponseBody = responseBody
	return nil
}

type fakeNotificationRepo struct {
	store *fakeStore
}

func (r *fakeNotificationRepo) CreateJob(_ context.Context, _ db.DBTX, userID uuid.UUID, kind, topic string, payload []byte, runAt time.Time) error {
	r.store.jobs = append(r.store.jobs, notificationJob{UserID: userID, Kind: kind, Topic: topic, Payload: payload, RunAt: runAt})
	return nil
}

func (r *fakeNotificationRepo) ClaimDue(_ context.Context, _ db.DBTX, _ time.Time, _ int) ([]*shared.NotificationJob, error) {
	return nil, errs.New("not used in command tests")
}

func (r *fakeNotificationRepo) MarkSent(_ context.Context, _ db.DBTX, _ uuid.UUID, _ time.Time) error {
	return errs.New("not used in command tests")
}

func (r *fakeNotificationRepo) MarkFailed(_ context.Context, _ db.DBTX, _ uuid.UUID) error {
	return errs.New("not used in command tests")
}

// fakeTicketQueries serves the read-after-write lookups the commands perform,
// joining titles and type names the way the SQL read store does.
type fakeTicketQueries struct {
	store *fakeStore
}

func (q *fakeTicketQueries) GetByID(ctx context.Context, actorID, id uuid.UUID) (*queries.TicketView, error) {
	view, err := q.GetByIDSystem(ctx, id)
	if err != nil {
		return nil, err
	}
	if view.UserID != actorID {
		return nil, queries.ErrNotTicketOwner
	}
	return view, nil
}

func (q *fakeTicketQueries) GetByIDSystem(_ context.Context, id uuid.UUID) (*queries.TicketView, error) {
	q.store.mu.Lock()
	defer q.store.mu.Unlock()
	t, ok := q.store.tickets[id]
	if !ok {
		return nil, queries.ErrTicketViewNotFound
	}
	view := &queries.TicketView{
		ID:              t.ID,
		EventID:         t.EventID,
		TicketTypeID:    t.TicketTypeID,
		UserID:          t.UserID,
		Quantity:        t.Quantity,
		PriceCents:      t.PriceCents,
		Credential:      t.Credential,
		Status:          t.Status,
		PurchasedAt:     t.PurchasedAt,
		ValidUntil:      t.ValidUntil,
		ValidatedAt:     t.ValidatedAt,
		ValidatedBy:     t.ValidatedBy,
		AddedToCalendar: t.AddedToCalendar,
		ReminderSet:     t.ReminderSet,
	}
	if e, ok := q.store.events[t.EventID]; ok {
		view.EventTitle = e.Title
	}
	if tt, ok := q.store.types[t.TicketTypeID]; ok {
		view.TicketTypeName = tt.Name
	}
	return view, nil
}

func (q *fakeTicketQueries) ListByUser(context.Context, uuid.UUID, *queries.Cursor, int) ([]*queries.TicketListItem, *queries.Cursor, error) {
	return nil, nil, errs.New("not used in command tests")
}

func (q *fakeTicketQueries) WalletPass(context.Context, uuid.UUID, uuid.UUID, queries.WalletPlatform) (*queries.WalletPassView, error) {
	return nil, errs.New("not used in command tests")
}

type enqueuedNotification struct {
	UserID  uuid.UUID
	Kind    string
	Topic   string
	Payload map[string]any
}

type fakeNotifier struct {
	mu      sync.Mutex
	entries []enqueuedNotification
}

func (n *fakeNotifier) Enqueue(_ context.Context, userID uuid.UUID, kind, topic string, payload map[string]any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.entries = append(n.entries, enqueuedNotification{UserID: userID, Kind: kind, Topic: topic, Payload: payload})
	return nil
}

func (n *fakeNotifier) topics() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.entries))
	for i, e := range n.entries {
		out[i] = e.Topic
	}
	return out
}

// seqGenerator mints predictable credentials; prime forced values to simulate
// a collision with an existing row.
type seqGenerator struct {
	mu     sync.Mutex
	forced []string
	n      int
}

func (g *seqGenerator) Generate(_, _, _ uuid.UUID) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.forced) > 0 {
		v := g.forced[0]
		g.forced = g.forced[1:]
		return v, nil
	}
	g.n++
	return fmt.Sprintf("TIX-%08d-%08d-%024d", g.n, g.n, g.n), nil
}

// hashOf mirrors the request fingerprint the checkout flow stores with an
// idempotency key.
func hashOf(t *testing.T, lines []commands.CartLine) string {
	t.Helper()
	data, err := json.Marshal(lines)
	if err != nil {
		t.Fatalf("marshal cart lines: %v", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
