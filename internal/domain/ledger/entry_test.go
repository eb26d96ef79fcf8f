package ledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEntry_Validation(t *testing.T) {
	accountID := uuid.New()
	txID := uuid.New()
	userID := uuid.New()

	tests := []struct {
		name      string
		accountID uuid.UUID
		direction Direction
		amount    decimal.Decimal
		txID      uuid.UUID
		wantErr   bool
	}{
		{"valid debit", accountID, Debit, decimal.NewFromInt(100), txID, false},
		{"valid credit", accountID, Credit, decimal.NewFromInt(100), txID, false},
		{"zero amount allowed", accountID, Debit, decimal.Zero, txID, false},
		{"nil account", uuid.Nil, Debit, decimal.NewFromInt(100), txID, true},
		{"bad direction", accountID, Direction("BOTH"), decimal.NewFromInt(100), txID, true},
		{"negative amount", accountID, Debit, decimal.NewFromInt(-1), txID, true},
		{"nil transaction", accountID, Debit, decimal.NewFromInt(100), uuid.Nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := NewEntry(tt.accountID, tt.direction, tt.amount, tt.txID, &userID)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.direction, entry.Direction)
			assert.Equal(t, tt.txID, entry.TransactionID)
		})
	}
}

func TestEntry_Signed(t *testing.T) {
	debit, err := NewEntry(uuid.New(), Debit, decimal.NewFromInt(42), uuid.New(), nil)
	require.NoError(t, err)
	assert.True(t, debit.Signed().Equal(decimal.NewFromInt(42)))

	credit, err := NewEntry(uuid.New(), Credit, decimal.NewFromInt(42), uuid.New(), nil)
	require.NoError(t, err)
	assert.True(t, credit.Signed().Equal(decimal.NewFromInt(-42)))
}

func TestNewReferencedTransaction(t *testing.T) {
	userID := uuid.New()

	tx, err := NewReferencedTransaction(TypeDividend, decimal.NewFromInt(177), "profit_batch:b1:allocation:a1", &userID)
	require.NoError(t, err)
	assert.Equal(t, TxStatusPending, tx.Status)
	assert.Equal(t, "profit_batch:b1:allocation:a1", *tx.Reference)

	_, err = NewReferencedTransaction(TypeDividend, decimal.NewFromInt(177), "", &userID)
	assert.Error(t, err)

	_, err = NewReferencedTransaction(TransactionType("REFUND"), decimal.NewFromInt(1), "ref", &userID)
	assert.Error(t, err)

	_, err = NewReferencedTransaction(TypeDividend, decimal.Zero, "ref", &userID)
	assert.Error(t, err)
}

func TestTransaction_Complete(t *testing.T) {
	tx, err := NewTransaction(TypeDeposit, decimal.NewFromInt(500), nil)
	require.NoError(t, err)
	assert.False(t, tx.IsCompleted())

	tx.Complete()
	assert.True(t, tx.IsCompleted())
	assert.NotNil(t, tx.CompletedAt)
}
