package funding

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appledger "github.com/vestfolio/backend/internal/application/ledger"
	"github.com/vestfolio/backend/internal/application/notification"
	"github.com/vestfolio/backend/internal/domain/funding"
	"github.com/vestfolio/backend/internal/domain/ledger"
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

// fakePoster tracks user balances so withdrawals hit the same balance
// check the real posting engine applies.
type fakePoster struct {
	mu       sync.Mutex
	balances map[uuid.UUID]decimal.Decimal
	postings []appledger.PostParams
	accounts *fakeAccounts
}

func (p *fakePoster) Post(_ context.Context, params appledger.PostParams) (*ledger.Transaction, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	creditCode := p.accounts.codeOf(params.CreditAccountID)
	if !ledger.IsSystemCode(creditCode) {
		balance := p.balances[params.CreditAccountID]
		if balance.LessThan(params.Amount) {
			return nil, shared.ErrInsufficientBalance
		}
	}
	p.balances[params.DebitAccountID] = p.balances[params.DebitAccountID].Add(params.Amount)
	p.balances[params.CreditAccountID] = p.balances[params.CreditAccountID].Sub(params.Amount)

	tx, err := ledger.NewTransaction(params.Type, params.Amount, params.UserID)
	if err != nil {
		return nil, err
	}
	tx.Complete()
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

func (f *fakeAccounts) codeOf(accountID uuid.UUID) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.byUser {
		if a.ID == accountID {
			return a.Code
		}
	}
	for _, a := range f.byCode {
		if a.ID == accountID {
			return a.Code
		}
	}
	return ""
}

type memRequests struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*funding.Request
}

func newMemRequests() *memRequests {
	return &memRequests{byID: make(map[uuid.UUID]*funding.Request)}
}

func (m *memRequests) FindByID(_ context.Context, id uuid.UUID) (*funding.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.byID[id]; ok {
		return r, nil
	}
	return nil, shared.ErrNotFound
}

func (m *memRequests) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*funding.Request, error) {
	return m.FindByID(ctx, id)
}

func (m *memRequests) List(_ context.Context, filter funding.RequestFilter) ([]funding.Request, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []funding.Request
	for _, r := range m.byID {
		if filter.Kind != nil && r.Kind != *filter.Kind {
			continue
		}
		if filter.Status != nil && r.Status != *filter.Status {
			continue
		}
		if filter.UserID != nil && r.UserID != *filter.UserID {
			continue
		}
		out = append(out, *r)
	}
	return out, int64(len(out)), nil
}

func (m *memRequests) Create(_ context.Context, request *funding.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[request.ID] = request
	return nil
}

func (m *memRequests) Save(_ context.Context, request *funding.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[request.ID] = request
	return nil
}

type fundingFixture struct {
	service  *RequestService
	requests *memRequests
	poster   *fakePoster
	accounts *fakeAccounts
	notifier *nopNotifier
}

func newFundingFixture(t *testing.T) *fundingFixture {
	t.Helper()
	accounts := newFakeAccounts()
	f := &fundingFixture{
		requests: newMemRequests(),
		accounts: accounts,
		poster:   &fakePoster{balances: make(map[uuid.UUID]decimal.Decimal), accounts: accounts},
		notifier: &nopNotifier{},
	}
	f.service = NewRequestService(f.requests, f.accounts, f.poster, noopTxManager{}, f.notifier, zap.NewNop())
	return f
}

// runDeposit pushes a deposit through both stages so the user has balance
func (f *fundingFixture) runDeposit(t *testing.T, userID uuid.UUID, amount int64) {
	t.Helper()
	request, err := f.service.Submit(context.Background(), SubmitParams{
		UserID: userID,
		Kind:   funding.KindDeposit,
		Amount: decimal.NewFromInt(amount),
	})
	require.NoError(t, err)
	_, err = f.service.AccountantReview(context.Background(), request.ID, uuid.New(), true, "")
	require.NoError(t, err)
	_, err = f.service.AdminFinalize(context.Background(), request.ID, uuid.New(), true, "")
	require.NoError(t, err)
}

func TestRequestService_DepositFlow(t *testing.T) {
	f := newFundingFixture(t)
	userID := uuid.New()

	request, err := f.service.Submit(context.Background(), SubmitParams{
		UserID:          userID,
		Kind:            funding.KindDeposit,
		Amount:          decimal.NewFromInt(300),
		Note:            "bank transfer",
		PaymentProofURL: "https://files.example.com/receipt.png",
	})
	require.NoError(t, err)
	assert.Equal(t, funding.RequestPendingAccountant, request.Status)

	// no posting until the admin approves
	reviewed, err := f.service.AccountantReview(context.Background(), request.ID, uuid.New(), true, "receipt checks out")
	require.NoError(t, err)
	assert.Equal(t, funding.RequestPendingAdminFinal, reviewed.Status)
	assert.Empty(t, f.poster.postings)

	approved, err := f.service.AdminFinalize(context.Background(), request.ID, uuid.New(), true, "")
	require.NoError(t, err)
	assert.Equal(t, funding.RequestApproved, approved.Status)
	require.NotNil(t, approved.TransactionID)

	require.Len(t, f.poster.postings, 1)
	posting := f.poster.postings[0]
	assert.Equal(t, ledger.TypeDeposit, posting.Type)

	userAccount, err := f.accounts.GetOrCreateUserMainAccount(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, f.poster.balances[userAccount.ID].Equal(decimal.NewFromInt(300)))
}

func TestRequestService_WithdrawalInsufficientBalance(t *testing.T) {
	f := newFundingFixture(t)
	userID := uuid.New()
	f.runDeposit(t, userID, 300)

	request, err := f.service.Submit(context.Background(), SubmitParams{
		UserID: userID,
		Kind:   funding.KindWithdrawal,
		Amount: decimal.NewFromInt(500),
	})
	require.NoError(t, err)
	_, err = f.service.AccountantReview(context.Background(), request.ID, uuid.New(), true, "")
	require.NoError(t, err)

	_, err = f.service.AdminFinalize(context.Background(), request.ID, uuid.New(), true, "")
	assert.ErrorIs(t, err, shared.ErrInsufficientBalance)

	// the request is still awaiting the admin, balance untouched
	stored, serr := f.service.Get(context.Background(), request.ID)
	require.NoError(t, serr)
	assert.Equal(t, funding.RequestPendingAdminFinal, stored.Status)
	assert.Nil(t, stored.TransactionID)

	userAccount, aerr := f.accounts.GetOrCreateUserMainAccount(context.Background(), userID)
	require.NoError(t, aerr)
	assert.True(t, f.poster.balances[userAccount.ID].Equal(decimal.NewFromInt(300)))
}

func TestRequestService_WithdrawalWithinBalance(t *testing.T) {
	f := newFundingFixture(t)
	userID := uuid.New()
	f.runDeposit(t, userID, 300)

	request, err := f.service.Submit(context.Background(), SubmitParams{
		UserID: userID,
		Kind:   funding.KindWithdrawal,
		Amount: decimal.NewFromInt(200),
	})
	require.NoError(t, err)
	_, err = f.service.AccountantReview(context.Background(), request.ID, uuid.New(), true, "")
	require.NoError(t, err)

	approved, err := f.service.AdminFinalize(context.Background(), request.ID, uuid.New(), true, "")
	require.NoError(t, err)
	assert.Equal(t, funding.RequestApproved, approved.Status)

	userAccount, aerr := f.accounts.GetOrCreateUserMainAccount(context.Background(), userID)
	require.NoError(t, aerr)
	assert.True(t, f.poster.balances[userAccount.ID].Equal(decimal.NewFromInt(100)))

	// payout confirmation closes the loop
	operator := uuid.New()
	confirmed, err := f.service.ConfirmPayout(context.Background(), request.ID, operator, "wire-771")
	require.NoError(t, err)
	assert.Equal(t, "wire-771", confirmed.PayoutRef)
}

func TestRequestService_AccountantReject(t *testing.T) {
	f := newFundingFixture(t)

	request, err := f.service.Submit(context.Background(), SubmitParams{
		UserID: uuid.New(),
		Kind:   funding.KindDeposit,
		Amount: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	rejected, err := f.service.AccountantReview(context.Background(), request.ID, uuid.New(), false, "proof missing")
	require.NoError(t, err)
	assert.Equal(t, funding.RequestRejected, rejected.Status)
	assert.Empty(t, f.poster.postings)

	// the rejection cannot be finalized afterwards
	_, err = f.service.AdminFinalize(context.Background(), request.ID, uuid.New(), true, "")
	assert.Error(t, err)
}

func TestRequestService_AdminReject(t *testing.T) {
	f := newFundingFixture(t)

	request, err := f.service.Submit(context.Background(), SubmitParams{
		UserID: uuid.New(),
		Kind:   funding.KindWithdrawal,
		Amount: decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	_, err = f.service.AccountantReview(context.Background(), request.ID, uuid.New(), true, "")
	require.NoError(t, err)

	rejected, err := f.service.AdminFinalize(context.Background(), request.ID, uuid.New(), false, "limit reached")
	require.NoError(t, err)
	assert.Equal(t, funding.RequestRejected, rejected.Status)
	assert.Empty(t, f.poster.postings)
	assert.Nil(t, rejected.TransactionID)
}

func TestRequestService_List(t *testing.T) {
	f := newFundingFixture(t)
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		_, err := f.service.Submit(context.Background(), SubmitParams{
			UserID: userID,
			Kind:   funding.KindDeposit,
			Amount: decimal.NewFromInt(int64(100 * (i + 1))),
		})
		require.NoError(t, err)
	}

	kind := funding.KindDeposit
	filter := funding.RequestFilter{Filter: shared.DefaultFilter(), Kind: &kind, UserID: &userID}
	page, err := f.service.List(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
}
