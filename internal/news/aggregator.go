// Package news aggregates crypto news from several providers into one
// deduplicated, newest-first digest.
package news

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"solana-risk-engine/internal/cache"
	"solana-risk-engine/internal/domain"
	"solana-risk-engine/internal/httpclient"
	"solana-risk-engine/internal/observability"
	"solana-risk-engine/internal/retry"
)

// Default configuration values.
const (
	DefaultCacheTTL      = 5 * time.Minute
	DefaultTrendingCount = 5
)

// Options configures Aggregator.
type Options struct {
	// Providers are merged in this order; earlier providers win deduplication.
	Providers []Provider
	Retry     retry.Policy
	// Cache holds the last digest. A fresh five-minute cache is created if nil.
	Cache  *cache.TTL[*domain.NewsDigest]
	Logger *zerolog.Logger
	Now    func() time.Time
}

// Aggregator merges provider feeds behind a TTL cache.
type Aggregator struct {
	providers []Provider
	policy    retry.Policy
	cache     *cache.TTL[*domain.NewsDigest]
	log       zerolog.Logger
	now       func() time.Time
}

// NewAggregator creates a news aggregator.
func NewAggregator(opts Options) *Aggregator {
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	log = log.With().Str("component", "news").Logger()

	c := opts.Cache
	if c == nil {
		c = cache.NewTTL[*domain.NewsDigest]("news", DefaultCacheTTL)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	policy := opts.Retry
	policy.Retryable = httpclient.Retryable
	policy.OnRetry = func(attempt int, err error) {
		observability.RecordRetry("news")
		log.Debug().Err(err).Int("attempt", attempt).Msg("retrying news provider")
	}

	return &Aggregator{
		providers: opts.Providers,
		policy:    policy,
		cache:     c,
		log:       log,
		now:       now,
	}
}

// GetAggregatedNews returns the cached digest while fresh. Otherwise it fetches
// every provider concurrently, merges, deduplicates, sorts and caches the result.
// If every provider fails, the previous digest is returned marked Stale; with no
// previous digest the provider failures are returned.
func (a *Aggregator) GetAggregatedNews(ctx context.Context) (*domain.NewsDigest, error) {
	if digest, ok := a.cache.Get(); ok {
		return digest, nil
	}

	results, errs := a.fetchAll(ctx)

	var merged []domain.NewsArticle
	var failures []error
	for i, res := range results {
		if res.Degraded {
			failures = append(failures, fmt.Errorf("%s: %w", a.providers[i].Name(), errs[i]))
			continue
		}
		merged = append(merged, res.Value...)
	}

	if len(failures) == len(results) {
		if stale, ok := a.cache.Peek(); ok && stale != nil {
			a.log.Warn().Int("providers", len(results)).Msg("all news providers failed, serving stale digest")
			cp := *stale
			cp.Stale = true
			return &cp, nil
		}
		if len(failures) == 0 {
			return nil, fmt.Errorf("%w: no news providers configured", domain.ErrConfigurationMissing)
		}
		return nil, fmt.Errorf("all news providers failed: %w", errors.Join(failures...))
	}

	articles := Dedup(merged)
	SortNewestFirst(articles)

	digest := &domain.NewsDigest{
		Articles:       articles,
		TrendingTopics: TrendingTopics(articles, DefaultTrendingCount),
		FetchedAt:      a.now().UTC(),
	}
	a.cache.Set(digest)

	return digest, nil
}

// fetchAll queries every provider concurrently. A failing provider yields a
// degraded empty list instead of an error.
func (a *Aggregator) fetchAll(ctx context.Context) ([]domain.Result[[]domain.NewsArticle], []error) {
	results := make([]domain.Result[[]domain.NewsArticle], len(a.providers))
	errs := make([]error, len(a.providers))

	var g errgroup.Group
	for i, p := range a.providers {
		g.Go(func() error {
			articles, err := retry.Do(ctx, a.policy, p.Fetch)
			if err != nil {
				errs[i] = err
				a.log.Warn().Err(err).Str("provider", p.Name()).Msg("news provider failed, using empty list")
				observability.RecordNewsProviderFailure(p.Name(), domain.Kind(err))
				observability.RecordDegraded("news_" + p.Name())
				results[i] = domain.Degraded([]domain.NewsArticle{}, err.Error())
				return nil
			}
			results[i] = domain.Ok(articles)
			return nil
		})
	}
	_ = g.Wait()

	return results, errs
}
