package actions

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"solana-risk-engine/internal/domain"
)

type fakeLedger struct {
	balance    domain.Result[decimal.Decimal]
	txs        domain.Result[[]domain.LedgerTransaction]
	meta       *domain.OnChainTokenMeta
	metaErr    error
	holders    []domain.TokenHolder
	holdersErr error
	slot       int64
	slotErr    error

	calls atomic.Int32
}

func (f *fakeLedger) GetBalance(context.Context, string) domain.Result[decimal.Decimal] {
	f.calls.Add(1)
	return f.balance
}

func (f *fakeLedger) GetRecentTransactions(context.Context, string, int) domain.Result[[]domain.LedgerTransaction] {
	f.calls.Add(1)
	return f.txs
}

func (f *fakeLedger) GetOnChainTokenMeta(context.Context, string) (*domain.OnChainTokenMeta, error) {
	f.calls.Add(1)
	return f.meta, f.metaErr
}

func (f *fakeLedger) GetTokenHolders(context.Context, string) ([]domain.TokenHolder, error) {
	f.calls.Add(1)
	return f.holders, f.holdersErr
}

func (f *fakeLedger) Slot(context.Context) (int64, error) {
	return f.slot, f.slotErr
}

type fakeMarket struct {
	snapshot *domain.PriceSnapshot
	err      error
	// block waits for ctx to be done before returning.
	block bool
}

func (f *fakeMarket) GetPriceSnapshot(ctx context.Context, _ string) (*domain.PriceSnapshot, error) {
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.snapshot, f.err
}

type fakeNews struct {
	digest *domain.NewsDigest
	err    error
}

func (f *fakeNews) GetAggregatedNews(context.Context) (*domain.NewsDigest, error) {
	return f.digest, f.err
}

type fakeCache struct {
	name string
	age  time.Duration
	ok   bool
}

func (c fakeCache) Name() string { return c.name }
func (c fakeCache) Age() (time.Duration, bool) { return c.age, c.ok }
