package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys shared across ledger instruments.
const (
	AttrTransactionType = attribute.Key("transaction_type")
	AttrRequestKind     = attribute.Key("request_kind")
	AttrDecision        = attribute.Key("decision")
	AttrCommissionLevel = attribute.Key("commission_level")
)

// LedgerMetrics holds the business-level instruments for the ledger engine.
type LedgerMetrics struct {
	TransactionsPosted  *Counter
	TransactionAmount   *Histogram
	ProfitBatchDecided  *Counter
	AllocationsCredited *Counter
	CommissionsSettled  *Counter
	FundingDecisions    *Counter
	BalanceCheckFailed  *Counter
}

// NewLedgerMetrics creates the ledger instruments on the given meter.
func NewLedgerMetrics(meter metric.Meter) (*LedgerMetrics, error) {
	m := &LedgerMetrics{}
	var err error

	if m.TransactionsPosted, err = NewCounter(meter,
		"ledger.transactions.posted",
		"Number of balanced transactions posted to the ledger", "1"); err != nil {
		return nil, err
	}
	if m.TransactionAmount, err = NewHistogram(meter,
		"ledger.transactions.amount",
		"Amount distribution of posted transactions", "USD"); err != nil {
		return nil, err
	}
	if m.ProfitBatchDecided, err = NewCounter(meter,
		"profit.batches.decided",
		"Profit batches approved or rejected by the final admin", "1"); err != nil {
		return nil, err
	}
	if m.AllocationsCredited, err = NewCounter(meter,
		"profit.allocations.credited",
		"Profit allocations credited to investor accounts", "1"); err != nil {
		return nil, err
	}
	if m.CommissionsSettled, err = NewCounter(meter,
		"referral.commissions.settled",
		"Referral commissions settled to upline accounts", "1"); err != nil {
		return nil, err
	}
	if m.FundingDecisions, err = NewCounter(meter,
		"funding.requests.decided",
		"Funding requests decided at either review stage", "1"); err != nil {
		return nil, err
	}
	if m.BalanceCheckFailed, err = NewCounter(meter,
		"ledger.balance_check.failed",
		"Postings rejected because the source account lacked funds", "1"); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordPosting records a posted transaction of the given type and amount.
func (m *LedgerMetrics) RecordPosting(ctx context.Context, txType string, amount float64) {
	if m == nil {
		return
	}
	m.TransactionsPosted.Inc(ctx, AttrTransactionType.String(txType))
	m.TransactionAmount.Record(ctx, amount, AttrTransactionType.String(txType))
}

// RecordFundingDecision records an accountant or admin decision on a
// funding request.
func (m *LedgerMetrics) RecordFundingDecision(ctx context.Context, kind, decision string) {
	if m == nil {
		return
	}
	m.FundingDecisions.Inc(ctx,
		AttrRequestKind.String(kind),
		AttrDecision.String(decision),
	)
}

// RecordCommission records a settled commission at the given level.
func (m *LedgerMetrics) RecordCommission(ctx context.Context, level int) {
	if m == nil {
		return
	}
	m.CommissionsSettled.Inc(ctx, AttrCommissionLevel.String(fmt.Sprintf("%d", level)))
}
