package profit

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vestfolio/backend/internal/domain/shared"
)

func TestComputeShares_Proportional(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()

	shares, total, err := ComputeShares([]UserInvestment{
		{UserID: alice, Amount: decimal.NewFromInt(300)},
		{UserID: bob, Amount: decimal.NewFromInt(700)},
	}, decimal.NewFromInt(590))
	require.NoError(t, err)

	assert.True(t, total.Equal(decimal.NewFromInt(1000)))
	require.Len(t, shares, 2)

	// sorted desc by investment, bob first
	assert.Equal(t, bob, shares[0].UserID)
	assert.True(t, shares[0].ProfitAmount.Equal(decimal.NewFromInt(413)), "bob = %s", shares[0].ProfitAmount)
	assert.True(t, shares[0].SharePercent.Equal(decimal.NewFromInt(70)))

	assert.Equal(t, alice, shares[1].UserID)
	assert.True(t, shares[1].ProfitAmount.Equal(decimal.NewFromInt(177)), "alice = %s", shares[1].ProfitAmount)
	assert.True(t, shares[1].SharePercent.Equal(decimal.NewFromInt(30)))
}

func TestComputeShares_RemainderToLargestInvestor(t *testing.T) {
	investors := []UserInvestment{
		{UserID: uuid.New(), Amount: decimal.NewFromInt(100)},
		{UserID: uuid.New(), Amount: decimal.NewFromInt(100)},
		{UserID: uuid.New(), Amount: decimal.NewFromInt(100)},
	}
	pool := decimal.NewFromInt(100)

	shares, _, err := ComputeShares(investors, pool)
	require.NoError(t, err)
	require.Len(t, shares, 3)

	// each truncates to 33.33, the 0.01 remainder lands on the first share
	assert.True(t, shares[0].ProfitAmount.Equal(decimal.RequireFromString("33.34")))
	assert.True(t, shares[1].ProfitAmount.Equal(decimal.RequireFromString("33.33")))
	assert.True(t, shares[2].ProfitAmount.Equal(decimal.RequireFromString("33.33")))

	sum := decimal.Zero
	for _, s := range shares {
		sum = sum.Add(s.ProfitAmount)
	}
	assert.True(t, sum.Equal(pool), "shares must sum to the pool exactly, got %s", sum)
}

func TestComputeShares_ExcludesNonPositive(t *testing.T) {
	active := uuid.New()

	shares, total, err := ComputeShares([]UserInvestment{
		{UserID: uuid.New(), Amount: decimal.Zero},
		{UserID: uuid.New(), Amount: decimal.NewFromInt(-50)},
		{UserID: active, Amount: decimal.NewFromInt(250)},
	}, decimal.NewFromInt(100))
	require.NoError(t, err)

	assert.True(t, total.Equal(decimal.NewFromInt(250)))
	require.Len(t, shares, 1)
	assert.Equal(t, active, shares[0].UserID)
	assert.True(t, shares[0].ProfitAmount.Equal(decimal.NewFromInt(100)))
	assert.True(t, shares[0].SharePercent.Equal(decimal.NewFromInt(100)))
}

func TestComputeShares_NoEligibleInvestments(t *testing.T) {
	tests := []struct {
		name        string
		investments []UserInvestment
	}{
		{"empty input", nil},
		{"only zero sums", []UserInvestment{{UserID: uuid.New(), Amount: decimal.Zero}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ComputeShares(tt.investments, decimal.NewFromInt(100))
			assert.ErrorIs(t, err, shared.ErrNoEligibleInvestments)
		})
	}
}

func TestComputeShares_Deterministic(t *testing.T) {
	investments := []UserInvestment{
		{UserID: uuid.New(), Amount: decimal.NewFromInt(500)},
		{UserID: uuid.New(), Amount: decimal.NewFromInt(500)},
		{UserID: uuid.New(), Amount: decimal.NewFromInt(250)},
	}
	pool := decimal.RequireFromString("777.77")

	first, _, err := ComputeShares(investments, pool)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, _, err := ComputeShares(investments, pool)
		require.NoError(t, err)
		require.Len(t, again, len(first))
		for j := range first {
			assert.Equal(t, first[j].UserID, again[j].UserID)
			assert.True(t, first[j].ProfitAmount.Equal(again[j].ProfitAmount))
		}
	}
}

func TestAllocation_MarkCredited(t *testing.T) {
	alloc := NewAllocation(uuid.New(), Share{
		UserID:       uuid.New(),
		Investment:   decimal.NewFromInt(300),
		SharePercent: decimal.NewFromInt(30),
		ProfitAmount: decimal.NewFromInt(177),
	})
	assert.Equal(t, AllocationPending, alloc.Status)

	txID := uuid.New()
	require.NoError(t, alloc.MarkCredited(txID))
	assert.Equal(t, AllocationCredited, alloc.Status)
	assert.Equal(t, txID, *alloc.TransactionID)
	require.NotNil(t, alloc.CreditedAt)

	// crediting is one-shot
	assert.Error(t, alloc.MarkCredited(uuid.New()))
	assert.Equal(t, txID, *alloc.TransactionID)
}
