package ledger

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vestfolio/backend/internal/domain/ledger"
	"github.com/vestfolio/backend/internal/domain/shared"
)

type memWallets struct {
	mu     sync.Mutex
	byUser map[uuid.UUID]*ledger.Wallet
}

func newMemWallets() *memWallets {
	return &memWallets{byUser: make(map[uuid.UUID]*ledger.Wallet)}
}

func (m *memWallets) CreateIfAbsent(_ context.Context, wallet *ledger.Wallet) (*ledger.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if wallet.UserID != nil {
		if existing, ok := m.byUser[*wallet.UserID]; ok {
			return existing, nil
		}
		m.byUser[*wallet.UserID] = wallet
	}
	return wallet, nil
}

func (m *memWallets) FindByUserID(_ context.Context, userID uuid.UUID) (*ledger.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w, ok := m.byUser[userID]; ok {
		return w, nil
	}
	return nil, shared.ErrNotFound
}

func (m *memWallets) Create(_ context.Context, wallet *ledger.Wallet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if wallet.UserID != nil {
		m.byUser[*wallet.UserID] = wallet
	}
	return nil
}

type memAccounts struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*ledger.Account
}

func newMemAccounts() *memAccounts {
	return &memAccounts{byID: make(map[uuid.UUID]*ledger.Account)}
}

func (m *memAccounts) add(account *ledger.Account) *ledger.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[account.ID] = account
	return account
}

func (m *memAccounts) FindByID(_ context.Context, id uuid.UUID) (*ledger.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.byID[id]; ok {
		return a, nil
	}
	return nil, shared.ErrAccountNotFound
}

func (m *memAccounts) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*ledger.Account, error) {
	return m.FindByID(ctx, id)
}

func (m *memAccounts) FindSystemByCode(_ context.Context, code string) (*ledger.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.byID {
		if a.Purpose == ledger.PurposeSystem && a.Code == code {
			return a, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *memAccounts) FindUserMain(_ context.Context, userID uuid.UUID) (*ledger.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.byID {
		if a.UserID != nil && *a.UserID == userID && a.Purpose == ledger.PurposeMain {
			return a, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *memAccounts) UpsertUserMain(ctx context.Context, account *ledger.Account) (*ledger.Account, error) {
	if account.UserID != nil {
		if existing, err := m.FindUserMain(ctx, *account.UserID); err == nil {
			return existing, nil
		}
	}
	return m.add(account), nil
}

func (m *memAccounts) Create(_ context.Context, account *ledger.Account) error {
	m.add(account)
	return nil
}

func (m *memAccounts) Save(_ context.Context, account *ledger.Account) error {
	m.add(account)
	return nil
}

type memEntries struct {
	mu   sync.Mutex
	rows []*ledger.Entry
}

func newMemEntries() *memEntries { return &memEntries{} }

func (m *memEntries) CreatePair(_ context.Context, debit, credit *ledger.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, debit, credit)
	return nil
}

func (m *memEntries) BalanceOf(_ context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	balance := decimal.Zero
	for _, e := range m.rows {
		if e.AccountID == accountID {
			balance = balance.Add(e.Signed())
		}
	}
	return balance, nil
}

func (m *memEntries) CountByTransactionID(_ context.Context, transactionID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, e := range m.rows {
		if e.TransactionID == transactionID {
			count++
		}
	}
	return count, nil
}

func (m *memEntries) FindByAccountID(_ context.Context, accountID uuid.UUID, filter ledger.EntryFilter) ([]ledger.Entry, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ledger.Entry
	for _, e := range m.rows {
		if e.AccountID == accountID {
			out = append(out, *e)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memEntries) Totals(_ context.Context) (decimal.Decimal, decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	debits, credits := decimal.Zero, decimal.Zero
	for _, e := range m.rows {
		if e.Direction == ledger.Debit {
			debits = debits.Add(e.Amount)
		} else {
			credits = credits.Add(e.Amount)
		}
	}
	return debits, credits, nil
}

type memTransactions struct {
	mu    sync.Mutex
	byID  map[uuid.UUID]*ledger.Transaction
	byRef map[string]*ledger.Transaction
}

func newMemTransactions() *memTransactions {
	return &memTransactions{
		byID:  make(map[uuid.UUID]*ledger.Transaction),
		byRef: make(map[string]*ledger.Transaction),
	}
}

func (m *memTransactions) Create(_ context.Context, tx *ledger.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[tx.ID] = tx
	if tx.Reference != nil {
		m.byRef[*tx.Reference] = tx
	}
	return nil
}

func (m *memTransactions) CreateIfAbsent(_ context.Context, tx *ledger.Transaction) (*ledger.Transaction, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if tx.Reference != nil {
		if existing, ok := m.byRef[*tx.Reference]; ok {
			return existing, false, nil
		}
		m.byRef[*tx.Reference] = tx
	}
	m.byID[tx.ID] = tx
	return tx, true, nil
}

func (m *memTransactions) FindByID(_ context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if tx, ok := m.byID[id]; ok {
		return tx, nil
	}
	return nil, shared.ErrNotFound
}

func (m *memTransactions) FindByReference(_ context.Context, reference string) (*ledger.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if tx, ok := m.byRef[reference]; ok {
		return tx, nil
	}
	return nil, shared.ErrNotFound
}

func (m *memTransactions) Save(_ context.Context, tx *ledger.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[tx.ID] = tx
	return nil
}

var (
	_ ledger.WalletRepository      = (*memWallets)(nil)
	_ ledger.AccountRepository     = (*memAccounts)(nil)
	_ ledger.EntryRepository       = (*memEntries)(nil)
	_ ledger.TransactionRepository = (*memTransactions)(nil)
)
