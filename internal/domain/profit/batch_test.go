package profit

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vestfolio/backend/internal/domain/shared"
)

func newTestBatch(t *testing.T, total string) *Batch {
	t.Helper()
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	batch, err := NewBatch(PeriodWeekly, start, start.AddDate(0, 0, 7), decimal.RequireFromString(total), uuid.New())
	require.NoError(t, err)
	return batch
}

func TestComputeBreakdown(t *testing.T) {
	tests := []struct {
		name         string
		total        string
		wantReserve  string
		wantInvestor string
		wantReferral string
	}{
		{"round figure", "1000", "400", "590", "10"},
		{"cents survive", "123.45", "49.38", "72.8355", "1.2345"},
		{"large batch", "1000000", "400000", "590000", "10000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := ComputeBreakdown(decimal.RequireFromString(tt.total))

			assert.True(t, b.Expenses.IsZero())
			assert.True(t, b.NetProfit.Equal(decimal.RequireFromString(tt.total)))
			assert.True(t, b.BusinessReserveAmount.Equal(decimal.RequireFromString(tt.wantReserve)),
				"reserve = %s", b.BusinessReserveAmount)
			assert.True(t, b.InvestorPoolAmount.Equal(decimal.RequireFromString(tt.wantInvestor)),
				"investor pool = %s", b.InvestorPoolAmount)
			assert.True(t, b.ReferralPoolAmount.Equal(decimal.RequireFromString(tt.wantReferral)),
				"referral pool = %s", b.ReferralPoolAmount)

			sum := b.BusinessReserveAmount.Add(b.InvestorPoolAmount).Add(b.ReferralPoolAmount)
			assert.True(t, sum.Equal(b.NetProfit), "split must sum to net profit, got %s", sum)
		})
	}
}

func TestNewBatch_Validation(t *testing.T) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)
	accountant := uuid.New()

	tests := []struct {
		name        string
		periodType  PeriodType
		start, end  time.Time
		total       decimal.Decimal
		submittedBy uuid.UUID
		wantErr     bool
	}{
		{"valid weekly", PeriodWeekly, start, end, decimal.NewFromInt(500), accountant, false},
		{"valid daily", PeriodDaily, start, start.AddDate(0, 0, 1), decimal.NewFromInt(500), accountant, false},
		{"unknown period type", PeriodType("MONTHLY"), start, end, decimal.NewFromInt(500), accountant, true},
		{"end before start", PeriodWeekly, end, start, decimal.NewFromInt(500), accountant, true},
		{"zero profit", PeriodWeekly, start, end, decimal.Zero, accountant, true},
		{"negative profit", PeriodWeekly, start, end, decimal.NewFromInt(-10), accountant, true},
		{"missing submitter", PeriodWeekly, start, end, decimal.NewFromInt(500), uuid.Nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch, err := NewBatch(tt.periodType, tt.start, tt.end, tt.total, tt.submittedBy)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, BatchPendingAdminFinal, batch.Status)
			assert.Equal(t, 0, batch.RevisionCount)
			assert.True(t, batch.InvestorPoolAmount.Equal(tt.total.Mul(decimal.NewFromInt(59)).Div(decimal.NewFromInt(100))))
		})
	}
}

func TestBatch_FinalApprove(t *testing.T) {
	batch := newTestBatch(t, "1000")
	admin := uuid.New()

	err := batch.FinalApprove(admin, decimal.NewFromInt(50000), 12)
	require.NoError(t, err)

	assert.Equal(t, BatchApproved, batch.Status)
	assert.Equal(t, admin, *batch.FinalizedBy)
	assert.Equal(t, 12, *batch.RecipientCount)
	assert.True(t, batch.TotalInvestmentAmount.Equal(decimal.NewFromInt(50000)))
	require.NotNil(t, batch.ApprovedAt)

	// terminal: neither decision applies anymore
	assert.Error(t, batch.FinalApprove(admin, decimal.Zero, 0))
	assert.Error(t, batch.FinalReject(admin, RejectFinal, nil))
	assert.Error(t, batch.Resubmit(batch.SubmittedBy, nil, "", ""))
}

func TestBatch_FinalReject(t *testing.T) {
	t.Run("request changes keeps figures", func(t *testing.T) {
		batch := newTestBatch(t, "1000")

		err := batch.FinalReject(uuid.New(), RejectRequestChanges, nil)
		require.NoError(t, err)

		assert.Equal(t, BatchRejected, batch.Status)
		assert.True(t, batch.TotalProfit.Equal(decimal.NewFromInt(1000)))
	})

	t.Run("adjusted total recomputes breakdown", func(t *testing.T) {
		batch := newTestBatch(t, "1000")
		adjusted := decimal.NewFromInt(800)

		err := batch.FinalReject(uuid.New(), RejectFinal, &adjusted)
		require.NoError(t, err)

		assert.True(t, batch.TotalProfit.Equal(adjusted))
		assert.True(t, batch.InvestorPoolAmount.Equal(decimal.NewFromInt(472)))
		assert.True(t, batch.BusinessReserveAmount.Equal(decimal.NewFromInt(320)))
	})

	t.Run("invalid mode", func(t *testing.T) {
		batch := newTestBatch(t, "1000")
		assert.Error(t, batch.FinalReject(uuid.New(), RejectMode("SOFT"), nil))
	})

	t.Run("negative adjustment rejected", func(t *testing.T) {
		batch := newTestBatch(t, "1000")
		bad := decimal.NewFromInt(-5)

		err := batch.FinalReject(uuid.New(), RejectFinal, &bad)
		assert.Error(t, err)
		assert.Equal(t, BatchPendingAdminFinal, batch.Status)
	})
}

func TestBatch_Resubmit(t *testing.T) {
	t.Run("submitter resubmits after rejection", func(t *testing.T) {
		batch := newTestBatch(t, "1000")
		require.NoError(t, batch.FinalReject(uuid.New(), RejectRequestChanges, nil))

		revised := decimal.NewFromInt(950)
		err := batch.Resubmit(batch.SubmittedBy, &revised, "corrected fx rates", "https://files.example.com/report-v2.pdf")
		require.NoError(t, err)

		assert.Equal(t, BatchPendingAdminFinal, batch.Status)
		assert.Equal(t, 1, batch.RevisionCount)
		assert.True(t, batch.TotalProfit.Equal(revised))
		assert.True(t, batch.InvestorPoolAmount.Equal(decimal.RequireFromString("560.5")))
		assert.Equal(t, "corrected fx rates", batch.SubmittedNote)
	})

	t.Run("only the original submitter may resubmit", func(t *testing.T) {
		batch := newTestBatch(t, "1000")
		require.NoError(t, batch.FinalReject(uuid.New(), RejectRequestChanges, nil))

		err := batch.Resubmit(uuid.New(), nil, "", "")
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "FORBIDDEN", domainErr.Code)
		assert.Equal(t, BatchRejected, batch.Status)
	})
}

func TestBatch_InvestorPool_Fallback(t *testing.T) {
	batch := newTestBatch(t, "590")
	assert.True(t, batch.InvestorPool().Equal(decimal.RequireFromString("348.1")))

	// rows predating the breakdown columns fall back to the full total
	batch.InvestorPoolAmount = decimal.Zero
	assert.True(t, batch.InvestorPool().Equal(decimal.NewFromInt(590)))
}
