// Package ledger fetches and interprets Solana account data over JSON-RPC.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sort"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"solana-risk-engine/internal/address"
	"solana-risk-engine/internal/domain"
	"solana-risk-engine/internal/observability"
	"solana-risk-engine/internal/retry"
	"solana-risk-engine/internal/solana"
)

// Default configuration values.
const (
	DefaultTransactionLimit = 50
	DefaultFetchConcurrency = 8
)

// Options configures Client.
type Options struct {
	Retry            retry.Policy
	FetchConcurrency int
	Logger           *zerolog.Logger
}

// Client wraps a solana.RPCClient with retries, validation and decoding.
type Client struct {
	rpc         solana.RPCClient
	policy      retry.Policy
	concurrency int
	log         zerolog.Logger
}

// NewClient creates a ledger client.
func NewClient(rpc solana.RPCClient, opts Options) *Client {
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	log = log.With().Str("component", "ledger").Logger()

	concurrency := opts.FetchConcurrency
	if concurrency <= 0 {
		concurrency = DefaultFetchConcurrency
	}

	policy := opts.Retry
	policy.Retryable = isRetryable
	policy.OnRetry = func(attempt int, err error) {
		observability.RecordRetry("ledger")
		log.Debug().Err(err).Int("attempt", attempt).Msg("retrying rpc call")
	}

	return &Client{
		rpc:         rpc,
		policy:      policy,
		concurrency: concurrency,
		log:         log,
	}
}

// isRetryable treats node-reported RPC errors as final; transport failures are retried.
func isRetryable(err error) bool {
	if domain.IsPermanent(err) {
		return false
	}
	var rpcErr *solana.RPCError
	return !errors.As(err, &rpcErr)
}

func upstream(op string, err error) error {
	if domain.IsPermanent(err) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrUpstream, err)
}

func validate(addr string) error {
	if !address.IsValid(addr) {
		return fmt.Errorf("%w: %q is not a valid Solana address", domain.ErrInvalidInput, addr)
	}
	return nil
}

// GetBalance returns the SOL balance of an account.
// Any failure yields a degraded zero balance.
func (c *Client) GetBalance(ctx context.Context, addr string) domain.Result[decimal.Decimal] {
	if err := validate(addr); err != nil {
		return domain.Degraded(decimal.Zero, err.Error())
	}

	lamports, err := retry.Do(ctx, c.policy, func(ctx context.Context) (uint64, error) {
		return c.rpc.GetBalance(ctx, addr)
	})
	if err != nil {
		c.log.Warn().Err(err).Str("address", addr).Msg("balance unavailable, using 0")
		observability.RecordDegraded("balance")
		return domain.Degraded(decimal.Zero, upstream("get balance", err).Error())
	}

	return domain.Ok(LamportsToSOL(lamports))
}

// LamportsToSOL converts a lamport amount to SOL without rounding.
func LamportsToSOL(lamports uint64) decimal.Decimal {
	return decimal.NewFromBigInt(uint64ToBig(lamports), -9)
}

func uint64ToBig(v uint64) *big.Int {
	return new(big.Int).SetUint64(v)
}

// GetRecentTransactions returns up to limit of the newest transactions touching addr,
// in the order the ledger returned their signatures. Signatures that fail to resolve
// are dropped; if none resolve the result is degraded.
func (c *Client) GetRecentTransactions(ctx context.Context, addr string, limit int) domain.Result[[]domain.LedgerTransaction] {
	empty := []domain.LedgerTransaction{}
	if err := validate(addr); err != nil {
		return domain.Degraded(empty, err.Error())
	}
	if limit <= 0 {
		limit = DefaultTransactionLimit
	}

	sigs, err := retry.Do(ctx, c.policy, func(ctx context.Context) ([]solana.SignatureInfo, error) {
		return c.rpc.GetSignaturesForAddress(ctx, addr, &solana.SignaturesOpts{Limit: limit})
	})
	if err != nil {
		c.log.Warn().Err(err).Str("address", addr).Msg("signatures unavailable")
		observability.RecordDegraded("transactions")
		return domain.Degraded(empty, upstream("get signatures", err).Error())
	}
	if len(sigs) > limit {
		sigs = sigs[:limit]
	}
	if len(sigs) == 0 {
		return domain.Ok(empty)
	}

	slots := make([]*domain.LedgerTransaction, len(sigs))
	errs := make([]error, len(sigs))

	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i, sig := range sigs {
		g.Go(func() error {
			tx, err := retry.Do(ctx, c.policy, func(ctx context.Context) (*solana.Transaction, error) {
				return c.rpc.GetTransaction(ctx, sig.Signature)
			})
			if err != nil {
				errs[i] = err
				return nil
			}
			if tx == nil {
				return nil
			}
			parsed := toLedgerTransaction(addr, sig, tx)
			slots[i] = &parsed
			return nil
		})
	}
	_ = g.Wait()

	out := make([]domain.LedgerTransaction, 0, len(sigs))
	var failed int
	var lastErr error
	for i := range slots {
		if errs[i] != nil {
			failed++
			lastErr = errs[i]
			continue
		}
		if slots[i] != nil {
			out = append(out, *slots[i])
		}
	}

	if failed > 0 {
		c.log.Warn().Err(lastErr).Int("failed", failed).Int("total", len(sigs)).Msg("dropped unresolved transactions")
	}
	if failed == len(sigs) {
		observability.RecordDegraded("transactions")
		return domain.Degraded(empty, upstream(fmt.Sprintf("resolve %d transactions", failed), lastErr).Error())
	}

	return domain.Ok(out)
}

func toLedgerTransaction(addr string, sig solana.SignatureInfo, tx *solana.Transaction) domain.LedgerTransaction {
	lt := domain.LedgerTransaction{
		Signature:              sig.Signature,
		Timestamp:              tx.BlockTime,
		Type:                   domain.TxTypeUnknown,
		Status:                 domain.TxStatusSuccess,
		CounterpartyProgramIDs: []string{},
	}
	if lt.Timestamp == nil {
		lt.Timestamp = sig.BlockTime
	}

	errVal := sig.Err
	if tx.Meta != nil {
		errVal = tx.Meta.Err
		lt.Type = Classify(tx.Meta.LogMessages)
	}
	if errVal != nil {
		lt.Status = domain.TxStatusFailed
	}

	if tx.Message != nil {
		idx := -1
		for i, key := range tx.Message.AccountKeys {
			if key == addr {
				idx = i
				break
			}
		}
		if idx >= 0 && tx.Meta != nil && idx < len(tx.Meta.PreBalances) && idx < len(tx.Meta.PostBalances) {
			lt.LamportDelta = tx.Meta.PostBalances[idx] - tx.Meta.PreBalances[idx]
		}
		lt.CounterpartyProgramIDs = programIDs(tx)
	}
	if tx.Meta != nil {
		lt.LamportsMoved = largestDelta(tx.Meta.PreBalances, tx.Meta.PostBalances)
	}

	return lt
}

// largestDelta returns the largest absolute balance change across accounts.
// A passive account such as a mint sees none of the value a swap moves.
func largestDelta(pre, post []int64) int64 {
	var moved int64
	for i := 0; i < len(pre) && i < len(post); i++ {
		d := post[i] - pre[i]
		if d < 0 {
			d = -d
		}
		moved = max(moved, d)
	}
	return moved
}

// programIDs returns distinct invoked programs, outer instructions first.
func programIDs(tx *solana.Transaction) []string {
	seen := make(map[string]struct{})
	out := []string{}
	add := func(ixs []solana.Instruction) {
		for _, ix := range ixs {
			if ix.ProgramID == "" {
				continue
			}
			if _, ok := seen[ix.ProgramID]; ok {
				continue
			}
			seen[ix.ProgramID] = struct{}{}
			out = append(out, ix.ProgramID)
		}
	}

	add(tx.Message.Instructions)
	if tx.Meta != nil {
		for _, set := range tx.Meta.InnerInstructions {
			add(set.Instructions)
		}
	}
	return out
}

// GetOnChainTokenMeta reads and decodes the mint account. Errors propagate.
func (c *Client) GetOnChainTokenMeta(ctx context.Context, mint string) (*domain.OnChainTokenMeta, error) {
	if err := validate(mint); err != nil {
		return nil, err
	}

	info, err := retry.Do(ctx, c.policy, func(ctx context.Context) (*solana.AccountInfo, error) {
		return c.rpc.GetAccountInfo(ctx, mint)
	})
	if err != nil {
		return nil, upstream("get mint account", err)
	}
	if info == nil {
		return nil, fmt.Errorf("%w: mint account %s does not exist", domain.ErrNotFound, mint)
	}
	if info.Owner != "" && info.Owner != TokenProgramID && info.Owner != Token2022ProgramID {
		return nil, fmt.Errorf("%w: account %s is not an SPL token mint (owner %s)", domain.ErrNotFound, mint, info.Owner)
	}

	meta, err := DecodeMint(info.Data)
	if err != nil {
		return nil, fmt.Errorf("decode mint %s: %w", mint, err)
	}
	return meta, nil
}

// GetTokenHolders returns the largest holders of mint with their share of the
// enumerated set, largest first. Errors propagate.
func (c *Client) GetTokenHolders(ctx context.Context, mint string) ([]domain.TokenHolder, error) {
	if err := validate(mint); err != nil {
		return nil, err
	}

	accounts, err := retry.Do(ctx, c.policy, func(ctx context.Context) ([]solana.TokenAccountBalance, error) {
		return c.rpc.GetTokenLargestAccounts(ctx, mint)
	})
	if err != nil {
		return nil, upstream("get largest token accounts", err)
	}

	holders := make([]domain.TokenHolder, 0, len(accounts))
	total := decimal.Zero
	for _, acc := range accounts {
		bal, err := decimal.NewFromString(acc.Amount)
		if err != nil {
			c.log.Warn().Err(err).Str("account", acc.Address).Msg("skipping holder with unparseable amount")
			continue
		}
		holders = append(holders, domain.TokenHolder{Address: acc.Address, RawBalance: bal})
		total = total.Add(bal)
	}

	sort.SliceStable(holders, func(i, j int) bool {
		return holders[i].RawBalance.GreaterThan(holders[j].RawBalance)
	})

	if total.IsPositive() {
		hundred := decimal.NewFromInt(100)
		for i := range holders {
			holders[i].PercentageOfObservedSupply = holders[i].RawBalance.Div(total).Mul(hundred).InexactFloat64()
		}
	}

	return holders, nil
}

// Slot returns the current slot, used as a liveness probe.
func (c *Client) Slot(ctx context.Context) (int64, error) {
	return c.rpc.GetSlot(ctx)
}
