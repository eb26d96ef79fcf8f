package profit

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appledger "github.com/vestfolio/backend/internal/application/ledger"
	"github.com/vestfolio/backend/internal/application/notification"
	"github.com/vestfolio/backend/internal/domain/investment"
	"github.com/vestfolio/backend/internal/domain/ledger"
	"github.com/vestfolio/backend/internal/domain/profit"
	"github.com/vestfolio/backend/internal/domain/shared"
)

type noopTxManager struct{}

func (noopTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type nopNotifier struct {
	mu     sync.Mutex
	events []notification.Event
}

func (n *nopNotifier) Notify(_ context.Context, event notification.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

// fakePoster simulates the ledger write path with reference idempotency
type fakePoster struct {
	mu       sync.Mutex
	byRef    map[string]*ledger.Transaction
	postings []appledger.PostParams
	failWith error
}

func newFakePoster() *fakePoster {
	return &fakePoster{byRef: make(map[string]*ledger.Transaction)}
}

func (p *fakePoster) Post(_ context.Context, params appledger.PostParams) (*ledger.Transaction, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failWith != nil {
		return nil, p.failWith
	}
	if params.Reference != "" {
		if existing, ok := p.byRef[params.Reference]; ok {
			return existing, nil
		}
	}
	tx, err := ledger.NewTransaction(params.Type, params.Amount, params.UserID)
	if err != nil {
		return nil, err
	}
	tx.Complete()
	if params.Reference != "" {
		p.byRef[params.Reference] = tx
	}
	p.postings = append(p.postings, params)
	return tx, nil
}

// fakeAccounts hands out stable accounts per user and per system code
type fakeAccounts struct {
	mu     sync.Mutex
	byUser map[uuid.UUID]*ledger.Account
	byCode map[string]*ledger.Account
}

func newFakeAccounts() *fakeAccounts {
	f := &fakeAccounts{
		byUser: make(map[uuid.UUID]*ledger.Account),
		byCode: make(map[string]*ledger.Account),
	}
	walletID := uuid.New()
	for _, code := range ledger.SystemCodes() {
		account, _ := ledger.NewSystemAccount(walletID, "system "+code, code)
		f.byCode[code] = account
	}
	return f
}

func (f *fakeAccounts) GetOrCreateUserMainAccount(_ context.Context, userID uuid.UUID) (*ledger.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.byUser[userID]; ok {
		return a, nil
	}
	account, err := ledger.NewUserMainAccount(userID, uuid.New())
	if err != nil {
		return nil, err
	}
	f.byUser[userID] = account
	return account, nil
}

func (f *fakeAccounts) GetSystemAccountByCode(_ context.Context, code string) (*ledger.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.byCode[code]; ok {
		return a, nil
	}
	return nil, shared.ErrLedgerMisconfigured
}

type fakeCascade struct {
	mu       sync.Mutex
	calls    []uuid.UUID
	failWith error
}

func (f *fakeCascade) Distribute(_ context.Context, sourceID, _ uuid.UUID, _ decimal.Decimal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, sourceID)
	return f.failWith
}

type memBatches struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*profit.Batch
}

func newMemBatches() *memBatches {
	return &memBatches{byID: make(map[uuid.UUID]*profit.Batch)}
}

func (m *memBatches) FindByID(_ context.Context, id uuid.UUID) (*profit.Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.byID[id]; ok {
		return b, nil
	}
	return nil, shared.ErrNotFound
}

func (m *memBatches) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*profit.Batch, error) {
	return m.FindByID(ctx, id)
}

func (m *memBatches) List(_ context.Context, filter profit.BatchFilter) ([]profit.Batch, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []profit.Batch
	for _, b := range m.byID {
		if filter.Status != nil && b.Status != *filter.Status {
			continue
		}
		out = append(out, *b)
	}
	return out, int64(len(out)), nil
}

func (m *memBatches) Create(_ context.Context, batch *profit.Batch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[batch.ID] = batch
	return nil
}

func (m *memBatches) Save(_ context.Context, batch *profit.Batch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[batch.ID] = batch
	return nil
}

type allocationKey struct {
	batchID uuid.UUID
	userID  uuid.UUID
}

type memAllocations struct {
	mu    sync.Mutex
	byKey map[allocationKey]*profit.Allocation
}

func newMemAllocations() *memAllocations {
	return &memAllocations{byKey: make(map[allocationKey]*profit.Allocation)}
}

func (m *memAllocations) Upsert(_ context.Context, allocation *profit.Allocation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := allocationKey{allocation.BatchID, allocation.UserID}
	if existing, ok := m.byKey[key]; ok {
		if existing.Status == profit.AllocationCredited {
			return nil
		}
		existing.InvestmentSnapshot = allocation.InvestmentSnapshot
		existing.SharePercent = allocation.SharePercent
		existing.ProfitAmount = allocation.ProfitAmount
		return nil
	}
	m.byKey[key] = allocation
	return nil
}

func (m *memAllocations) FindByBatchID(_ context.Context, batchID uuid.UUID) ([]profit.Allocation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []profit.Allocation
	for key, a := range m.byKey {
		if key.batchID == batchID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *memAllocations) FindPendingByBatchID(_ context.Context, batchID uuid.UUID) ([]profit.Allocation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []profit.Allocation
	for key, a := range m.byKey {
		if key.batchID == batchID && a.Status == profit.AllocationPending {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *memAllocations) Save(_ context.Context, allocation *profit.Allocation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byKey[allocationKey{allocation.BatchID, allocation.UserID}] = allocation
	return nil
}

type memComments struct {
	mu   sync.Mutex
	rows []*profit.Comment
}

func (m *memComments) Create(_ context.Context, comment *profit.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, comment)
	return nil
}

func (m *memComments) FindByBatchID(_ context.Context, batchID uuid.UUID) ([]profit.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []profit.Comment
	for _, c := range m.rows {
		if c.BatchID == batchID {
			out = append(out, *c)
		}
	}
	return out, nil
}

type memPositions struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*investment.Position
}

func newMemPositions() *memPositions {
	return &memPositions{byID: make(map[uuid.UUID]*investment.Position)}
}

func (m *memPositions) add(p *investment.Position) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[p.ID] = p
}

func (m *memPositions) FindByID(_ context.Context, id uuid.UUID) (*investment.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.byID[id]; ok {
		return p, nil
	}
	return nil, shared.ErrNotFound
}

func (m *memPositions) FindByUserID(_ context.Context, userID uuid.UUID) ([]investment.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []investment.Position
	for _, p := range m.byID {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memPositions) FindActive(_ context.Context) ([]investment.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []investment.Position
	for _, p := range m.byID {
		if p.IsActive() {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memPositions) Create(_ context.Context, position *investment.Position) error {
	m.add(position)
	return nil
}

func (m *memPositions) Save(_ context.Context, position *investment.Position) error {
	m.add(position)
	return nil
}

var (
	_ shared.TxManager                = noopTxManager{}
	_ notification.Notifier           = (*nopNotifier)(nil)
	_ appledger.Poster                = (*fakePoster)(nil)
	_ appledger.Accounts              = (*fakeAccounts)(nil)
	_ Cascader                        = (*fakeCascade)(nil)
	_ profit.BatchRepository          = (*memBatches)(nil)
	_ profit.AllocationRepository     = (*memAllocations)(nil)
	_ profit.CommentRepository        = (*memComments)(nil)
	_ investment.PositionRepository   = (*memPositions)(nil)
)
