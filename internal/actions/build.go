package actions

import (
	"github.com/rs/zerolog"

	"solana-risk-engine/internal/cache"
	"solana-risk-engine/internal/config"
	"solana-risk-engine/internal/domain"
	"solana-risk-engine/internal/ledger"
	"solana-risk-engine/internal/market"
	"solana-risk-engine/internal/news"
	"solana-risk-engine/internal/solana"
	"solana-risk-engine/internal/storage"
)

// FromConfig wires the production clients, the two caches and the risk model
// into an Engine. store may be nil.
func FromConfig(cfg *config.Config, store storage.InvocationStore, log *zerolog.Logger) *Engine {
	policy := cfg.RetryPolicy()

	tokenList := cache.NewTTL[[]domain.TokenIdentity]("token_list", cfg.Cache.TokenListTTL)
	newsCache := cache.NewTTL[*domain.NewsDigest]("news", cfg.Cache.NewsTTL)

	rpc := solana.NewHTTPClient(cfg.Ledger.RPCEndpoint,
		solana.WithTimeout(cfg.Ledger.Timeout),
		solana.WithCommitment(cfg.Ledger.Commitment),
	)

	ledgerClient := ledger.NewClient(rpc, ledger.Options{
		Retry:            policy,
		FetchConcurrency: cfg.Ledger.FetchConcurrency,
		Logger:           log,
	})

	marketClient := market.NewClient(market.Options{
		BaseURL:   cfg.Market.BaseURL,
		APIKey:    cfg.Market.APIKey,
		Timeout:   cfg.Market.Timeout,
		Retry:     policy,
		TokenList: tokenList,
		Logger:    log,
	})

	aggregator := news.NewAggregator(news.Options{
		Providers: []news.Provider{
			news.NewCryptoPanic(cfg.News.CryptoPanicURL, cfg.News.CryptoPanicToken, cfg.News.CryptoPanicCurrencies, cfg.News.Timeout),
			news.NewCryptoCompare(cfg.News.CryptoCompareURL, cfg.News.CryptoCompareKey, cfg.News.Timeout),
		},
		Retry:  policy,
		Cache:  newsCache,
		Logger: log,
	})

	return NewEngine(Options{
		Ledger:           ledgerClient,
		Market:           marketClient,
		News:             aggregator,
		Caches:           []AgedCache{tokenList, newsCache},
		Risk:             cfg.Risk,
		Store:            store,
		ActionTimeout:    cfg.Server.ActionTimeout,
		TransactionLimit: cfg.Ledger.TransactionLimit,
		Logger:           log,
	})
}
