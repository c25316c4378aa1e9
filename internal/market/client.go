// Package market resolves tokens and fetches price snapshots from a
// CoinGecko-compatible API.
package market

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"solana-risk-engine/internal/cache"
	"solana-risk-engine/internal/domain"
	"solana-risk-engine/internal/httpclient"
	"solana-risk-engine/internal/observability"
	"solana-risk-engine/internal/retry"
)

// Default configuration values.
const (
	DefaultBaseURL      = "https://api.coingecko.com/api/v3"
	DefaultTokenListTTL = time.Hour
	DefaultVsCurrency   = "usd"

	priceChangeWindows = "1h,24h,7d,14d,30d"
)

// Options configures Client.
type Options struct {
	BaseURL string
	// APIKey is sent as x-cg-demo-api-key when set.
	APIKey  string
	Timeout time.Duration
	Retry   retry.Policy
	// TokenList caches the full token list. A fresh one-hour cache is created if nil.
	TokenList *cache.TTL[[]domain.TokenIdentity]
	Logger    *zerolog.Logger
	Now       func() time.Time
}

// Client is the market data client.
type Client struct {
	baseURL   string
	http      *httpclient.Client
	policy    retry.Policy
	tokenList *cache.TTL[[]domain.TokenIdentity]
	log       zerolog.Logger
	now       func() time.Time
}

// NewClient creates a market data client.
func NewClient(opts Options) *Client {
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	log = log.With().Str("component", "market").Logger()

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	var httpOpts []httpclient.Option
	if opts.APIKey != "" {
		httpOpts = append(httpOpts, httpclient.WithHeader("x-cg-demo-api-key", opts.APIKey))
	}

	tokenList := opts.TokenList
	if tokenList == nil {
		tokenList = cache.NewTTL[[]domain.TokenIdentity]("token_list", DefaultTokenListTTL)
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	policy := opts.Retry
	policy.Retryable = httpclient.Retryable
	policy.OnRetry = func(attempt int, err error) {
		observability.RecordRetry("market")
		log.Debug().Err(err).Int("attempt", attempt).Msg("retrying market request")
	}

	return &Client{
		baseURL:   baseURL,
		http:      httpclient.New("coingecko", opts.Timeout, httpOpts...),
		policy:    policy,
		tokenList: tokenList,
		log:       log,
		now:       now,
	}
}

type coinListEntry struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// TokenList returns the cached token list, refetching it when expired.
// A failed refetch leaves the existing cache entry untouched.
func (c *Client) TokenList(ctx context.Context) ([]domain.TokenIdentity, error) {
	if list, ok := c.tokenList.Get(); ok {
		return list, nil
	}

	entries, err := retry.Do(ctx, c.policy, func(ctx context.Context) ([]coinListEntry, error) {
		var out []coinListEntry
		err := c.http.GetJSON(ctx, "coins_list", c.baseURL+"/coins/list", &out)
		return out, err
	})
	if err != nil {
		return nil, fmt.Errorf("fetch token list: %w", err)
	}

	list := make([]domain.TokenIdentity, len(entries))
	for i, e := range entries {
		list[i] = domain.TokenIdentity{ID: e.ID, Symbol: e.Symbol, Name: e.Name}
	}
	c.tokenList.Set(list)
	c.log.Debug().Int("tokens", len(list)).Msg("token list refreshed")

	return list, nil
}

// ResolveIdentity maps a search term to a token. Matching is case-insensitive
// and exact, tried in tiers: id, then symbol, then name. The first match in
// list order wins within a tier.
func (c *Client) ResolveIdentity(ctx context.Context, term string) (domain.TokenIdentity, error) {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return domain.TokenIdentity{}, fmt.Errorf("%w: empty token identifier", domain.ErrInvalidInput)
	}

	list, err := c.TokenList(ctx)
	if err != nil {
		return domain.TokenIdentity{}, err
	}

	if id, ok := Match(list, needle); ok {
		return id, nil
	}
	return domain.TokenIdentity{}, fmt.Errorf("%w: no token matches %q", domain.ErrNotFound, term)
}

// Match searches list for term by id, then symbol, then name.
func Match(list []domain.TokenIdentity, term string) (domain.TokenIdentity, bool) {
	needle := strings.ToLower(strings.TrimSpace(term))
	fields := []func(domain.TokenIdentity) string{
		func(t domain.TokenIdentity) string { return t.ID },
		func(t domain.TokenIdentity) string { return t.Symbol },
		func(t domain.TokenIdentity) string { return t.Name },
	}
	for _, field := range fields {
		for _, tok := range list {
			if strings.ToLower(field(tok)) == needle {
				return tok, true
			}
		}
	}
	return domain.TokenIdentity{}, false
}

type marketEntry struct {
	ID           string   `json:"id"`
	Symbol       string   `json:"symbol"`
	Name         string   `json:"name"`
	CurrentPrice *float64 `json:"current_price"`
	MarketCap    *float64 `json:"market_cap"`
	TotalVolume  *float64 `json:"total_volume"`
	Change1h     *float64 `json:"price_change_percentage_1h_in_currency"`
	Change24h    *float64 `json:"price_change_percentage_24h_in_currency"`
	Change7d     *float64 `json:"price_change_percentage_7d_in_currency"`
	Change14d    *float64 `json:"price_change_percentage_14d_in_currency"`
	Change30d    *float64 `json:"price_change_percentage_30d_in_currency"`
}

// GetPriceSnapshot resolves term and fetches its current market data.
// Resolution failure returns ErrNotFound; a resolved token without a market
// entry returns ErrDataUnavailable.
func (c *Client) GetPriceSnapshot(ctx context.Context, term string) (*domain.PriceSnapshot, error) {
	identity, err := c.ResolveIdentity(ctx, term)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("vs_currency", DefaultVsCurrency)
	q.Set("ids", identity.ID)
	q.Set("price_change_percentage", priceChangeWindows)
	endpoint := c.baseURL + "/coins/markets?" + q.Encode()

	entries, err := retry.Do(ctx, c.policy, func(ctx context.Context) ([]marketEntry, error) {
		var out []marketEntry
		err := c.http.GetJSON(ctx, "coins_markets", endpoint, &out)
		return out, err
	})
	if err != nil {
		return nil, fmt.Errorf("fetch market data for %s: %w", identity.ID, err)
	}

	var entry *marketEntry
	for i := range entries {
		if entries[i].ID == identity.ID {
			entry = &entries[i]
			break
		}
	}
	if entry == nil || entry.CurrentPrice == nil {
		return nil, fmt.Errorf("%w: no price data for %s", domain.ErrDataUnavailable, identity.ID)
	}

	return &domain.PriceSnapshot{
		Identity:     identity,
		CurrentPrice: max(0, *entry.CurrentPrice),
		PriceChanges: domain.PriceChanges{
			H1:  val(entry.Change1h),
			H24: val(entry.Change24h),
			D7:  val(entry.Change7d),
			D14: val(entry.Change14d),
			D30: val(entry.Change30d),
		},
		Volume24h: val(entry.TotalVolume),
		MarketCap: val(entry.MarketCap),
		FetchedAt: c.now().UTC(),
	}, nil
}

func val(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
