package actions

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/sync/errgroup"

	"solana-risk-engine/internal/domain"
	"solana-risk-engine/internal/market"
	"solana-risk-engine/internal/observability"
)

const maxMentionHeadlines = 3

// MarketSentiment is the sentiment derived from price momentum.
type MarketSentiment struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// NewsMentions summarizes recent articles mentioning the token.
type NewsMentions struct {
	Count     int              `json:"count"`
	Positive  int              `json:"positive"`
	Negative  int              `json:"negative"`
	Neutral   int              `json:"neutral"`
	Sentiment domain.Sentiment `json:"sentiment"`
	Headlines []string         `json:"headlines"`
}

// PriceSentimentResult is the price_sentiment payload.
type PriceSentimentResult struct {
	Token           domain.TokenIdentity `json:"token"`
	CurrentPrice    float64              `json:"currentPrice"`
	PriceChanges    domain.PriceChanges  `json:"priceChanges"`
	Volume24h       float64              `json:"volume24h"`
	MarketCap       float64              `json:"marketCap"`
	MarketSentiment MarketSentiment      `json:"marketSentiment"`
	NewsMentions    *NewsMentions        `json:"newsMentions,omitempty"`
	FetchedAt       time.Time            `json:"fetchedAt"`
	Degraded        []string             `json:"degraded,omitempty"`
}

// priceSentiment fetches the price snapshot and the news digest concurrently.
// A news failure degrades the result; a price failure is returned.
func (e *Engine) priceSentiment(ctx context.Context, p PriceSentimentParams) (*PriceSentimentResult, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	if e.market == nil {
		return nil, fmt.Errorf("%w: market client", domain.ErrConfigurationMissing)
	}

	var (
		snapshot *domain.PriceSnapshot
		news     domain.Result[*domain.NewsDigest]
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snapshot, err = e.market.GetPriceSnapshot(gctx, p.TokenID)
		return err
	})
	if e.news != nil {
		g.Go(func() error {
			digest, err := e.news.GetAggregatedNews(gctx)
			if err != nil {
				news = domain.Degraded[*domain.NewsDigest](nil, "news unavailable: "+err.Error())
				return nil
			}
			news = domain.Ok(digest)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	label, score := market.Sentiment(snapshot.PriceChanges)
	result := &PriceSentimentResult{
		Token:           snapshot.Identity,
		CurrentPrice:    snapshot.CurrentPrice,
		PriceChanges:    snapshot.PriceChanges,
		Volume24h:       snapshot.Volume24h,
		MarketCap:       snapshot.MarketCap,
		MarketSentiment: MarketSentiment{Label: label, Score: score},
		FetchedAt:       snapshot.FetchedAt,
	}

	switch {
	case news.Degraded:
		observability.RecordDegraded("news")
		e.log.Warn().Str("token", snapshot.Identity.ID).Str("reason", news.Reason).Msg("news mentions degraded")
		result.Degraded = append(result.Degraded, news.Reason)
	case news.Value != nil:
		result.NewsMentions = mentions(news.Value.Articles, snapshot.Identity)
	}
	return result, nil
}

// mentions counts articles whose title or summary names the token by id,
// symbol (whole word) or full name.
func mentions(articles []domain.NewsArticle, id domain.TokenIdentity) *NewsMentions {
	m := &NewsMentions{Headlines: []string{}}

	terms := map[string]bool{}
	for _, t := range []string{id.ID, id.Symbol} {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			terms[t] = true
		}
	}
	name := strings.ToLower(strings.TrimSpace(id.Name))

	for _, a := range articles {
		text := strings.ToLower(a.Title + " " + a.Summary)
		if !mentionsToken(text, terms, name) {
			continue
		}
		m.Count++
		switch a.Sentiment {
		case domain.SentimentPositive:
			m.Positive++
		case domain.SentimentNegative:
			m.Negative++
		default:
			m.Neutral++
		}
		if len(m.Headlines) < maxMentionHeadlines {
			m.Headlines = append(m.Headlines, a.Title)
		}
	}

	switch {
	case m.Positive > m.Negative:
		m.Sentiment = domain.SentimentPositive
	case m.Negative > m.Positive:
		m.Sentiment = domain.SentimentNegative
	default:
		m.Sentiment = domain.SentimentNeutral
	}
	return m
}

func mentionsToken(text string, terms map[string]bool, name string) bool {
	if name != "" && strings.Contains(text, name) {
		return true
	}
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})
	for _, w := range words {
		if terms[w] {
			return true
		}
	}
	return false
}
