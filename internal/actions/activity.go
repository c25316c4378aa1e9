package actions

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"solana-risk-engine/internal/address"
	"solana-risk-engine/internal/domain"
)

// RecentActivityLimit is the size of the recent transaction slice.
const RecentActivityLimit = 5

// AddressActivityResult is the address_activity payload.
type AddressActivityResult struct {
	Address            string                     `json:"address"`
	AccountKind        string                     `json:"accountKind"`
	TimeRange          string                     `json:"timeRange"`
	BalanceSOL         string                     `json:"balanceSol"`
	TransactionCount   int                        `json:"transactionCount"`
	CategoryCounts     map[domain.TxType]int      `json:"categoryCounts"`
	RecentTransactions []domain.LedgerTransaction `json:"recentTransactions"`
	Degraded           []string                   `json:"degraded,omitempty"`
}

// addressActivity fetches balance and transactions concurrently, keeps the
// transactions inside the time range and summarizes them. Both fetches are
// best-effort, so only invalid params fail.
func (e *Engine) addressActivity(ctx context.Context, p AddressActivityParams) (*AddressActivityResult, error) {
	window, err := p.validate()
	if err != nil {
		return nil, err
	}

	var wg sync.WaitGroup
	var balance domain.Result[decimal.Decimal]
	var txs domain.Result[[]domain.LedgerTransaction]

	wg.Add(2)
	go func() {
		defer wg.Done()
		balance = e.ledger.GetBalance(ctx, p.WalletAddress)
	}()
	go func() {
		defer wg.Done()
		txs = e.ledger.GetRecentTransactions(ctx, p.WalletAddress, e.txLimit)
	}()
	wg.Wait()

	cutoff := e.now().Add(-window).Unix()
	filtered := FilterSince(txs.Value, cutoff)

	result := &AddressActivityResult{
		Address:            p.WalletAddress,
		AccountKind:        address.Kind(p.WalletAddress),
		TimeRange:          p.TimeRange,
		BalanceSOL:         balance.Value.String(),
		TransactionCount:   len(filtered),
		CategoryCounts:     CountByType(filtered),
		RecentTransactions: filtered[:min(RecentActivityLimit, len(filtered))],
	}
	if balance.Degraded {
		result.Degraded = append(result.Degraded, "balance unavailable: "+balance.Reason)
	}
	if txs.Degraded {
		result.Degraded = append(result.Degraded, "transactions unavailable: "+txs.Reason)
	}
	return result, nil
}

// FilterSince keeps transactions with a timestamp at or after cutoff (unix
// seconds), preserving order. Transactions without a timestamp are excluded.
func FilterSince(txs []domain.LedgerTransaction, cutoff int64) []domain.LedgerTransaction {
	out := make([]domain.LedgerTransaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Timestamp != nil && *tx.Timestamp >= cutoff {
			out = append(out, tx)
		}
	}
	return out
}

// CountByType counts transactions per category. Every category is present.
func CountByType(txs []domain.LedgerTransaction) map[domain.TxType]int {
	counts := map[domain.TxType]int{
		domain.TxTypeDeFi:          0,
		domain.TxTypeNFT:           0,
		domain.TxTypeTokenTransfer: 0,
		domain.TxTypeUnknown:       0,
	}
	for _, tx := range txs {
		counts[tx.Type]++
	}
	return counts
}
