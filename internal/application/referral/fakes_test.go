package referral

import (
	"context"
	"sync"

	"github.com/google/uuid"

	appledger "github.com/vestfolio/backend/internal/application/ledger"
	"github.com/vestfolio/backend/internal/application/notification"
	"github.com/vestfolio/backend/internal/domain/ledger"
	"github.com/vestfolio/backend/internal/domain/referral"
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

type fakePoster struct {
	mu       sync.Mutex
	byRef    map[string]*ledger.Transaction
	postings []appledger.PostParams
}

func newFakePoster() *fakePoster {
	return &fakePoster{byRef: make(map[string]*ledger.Transaction)}
}

func (p *fakePoster) Post(_ context.Context, params appledger.PostParams) (*ledger.Transaction, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
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

type memReferrals struct {
	mu    sync.Mutex
	edges []referral.Referral
}

func (m *memReferrals) FindUplineChain(_ context.Context, userID uuid.UUID) ([]referral.Referral, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []referral.Referral
	for _, e := range m.edges {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Level < out[j-1].Level; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out, nil
}

func (m *memReferrals) CreateEdges(_ context.Context, edges []referral.Referral) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edges = append(m.edges, edges...)
	return nil
}

type eventKey struct {
	sourceType referral.CommissionSourceType
	sourceID   uuid.UUID
}

type memEvents struct {
	mu    sync.Mutex
	byKey map[eventKey]*referral.CommissionEvent
}

func newMemEvents() *memEvents {
	return &memEvents{byKey: make(map[eventKey]*referral.CommissionEvent)}
}

func (m *memEvents) CreateIfAbsent(_ context.Context, event *referral.CommissionEvent) (*referral.CommissionEvent, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := eventKey{event.SourceType, event.SourceID}
	if existing, ok := m.byKey[key]; ok {
		return existing, false, nil
	}
	m.byKey[key] = event
	return event, true, nil
}

func (m *memEvents) FindBySource(_ context.Context, sourceType referral.CommissionSourceType, sourceID uuid.UUID) (*referral.CommissionEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.byKey[eventKey{sourceType, sourceID}]; ok {
		return e, nil
	}
	return nil, shared.ErrNotFound
}

type commissionKey struct {
	eventID  uuid.UUID
	upline   uuid.UUID
	downline uuid.UUID
	level    int
}

type memCommissions struct {
	mu    sync.Mutex
	byKey map[commissionKey]*referral.Commission
}

func newMemCommissions() *memCommissions {
	return &memCommissions{byKey: make(map[commissionKey]*referral.Commission)}
}

func (m *memCommissions) UpsertGuard(_ context.Context, commission *referral.Commission) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := commissionKey{commission.EventID, commission.UplineUserID, commission.DownlineUserID, commission.Level}
	if _, ok := m.byKey[key]; ok {
		return false, nil
	}
	m.byKey[key] = commission
	return true, nil
}

func (m *memCommissions) FindByEventID(_ context.Context, eventID uuid.UUID) ([]referral.Commission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []referral.Commission
	for key, c := range m.byKey {
		if key.eventID == eventID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *memCommissions) FindByUplineUserID(_ context.Context, uplineUserID uuid.UUID) ([]referral.Commission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []referral.Commission
	for key, c := range m.byKey {
		if key.upline == uplineUserID {
			out = append(out, *c)
		}
	}
	return out, nil
}

type memLevelConfigs struct {
	mu     sync.Mutex
	stored referral.LevelConfig
}

func (m *memLevelConfigs) Find(_ context.Context) (referral.LevelConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stored == nil {
		return nil, shared.ErrNotFound
	}
	return m.stored, nil
}

func (m *memLevelConfigs) Save(_ context.Context, config referral.LevelConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stored = config
	return nil
}

var (
	_ shared.TxManager                   = noopTxManager{}
	_ notification.Notifier              = (*nopNotifier)(nil)
	_ appledger.Poster                   = (*fakePoster)(nil)
	_ appledger.Accounts                 = (*fakeAccounts)(nil)
	_ referral.ReferralRepository        = (*memReferrals)(nil)
	_ referral.CommissionEventRepository = (*memEvents)(nil)
	_ referral.CommissionRepository      = (*memCommissions)(nil)
	_ referral.LevelConfigRepository     = (*memLevelConfigs)(nil)
)
