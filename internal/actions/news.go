package actions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"solana-risk-engine/internal/domain"
)

// NewsResult is the news payload.
type NewsResult struct {
	Category       string               `json:"category"`
	Articles       []domain.NewsArticle `json:"articles"`
	TotalMatched   int                  `json:"totalMatched"`
	TrendingTopics []string             `json:"trendingTopics"`
	FetchedAt      time.Time            `json:"fetchedAt"`
	Stale          bool                 `json:"stale,omitempty"`
}

// newsDigest filters the aggregated digest by category and truncates it.
func (e *Engine) newsDigest(ctx context.Context, p NewsParams) (*NewsResult, error) {
	category, limit, err := p.validate()
	if err != nil {
		return nil, err
	}

	if e.news == nil {
		return nil, fmt.Errorf("%w: news aggregator", domain.ErrConfigurationMissing)
	}
	digest, err := e.news.GetAggregatedNews(ctx)
	if err != nil {
		return nil, err
	}

	matched := FilterByCategory(digest.Articles, category)
	total := len(matched)
	if len(matched) > limit {
		matched = matched[:limit]
	}

	return &NewsResult{
		Category:       category,
		Articles:       matched,
		TotalMatched:   total,
		TrendingTopics: digest.TrendingTopics,
		FetchedAt:      digest.FetchedAt,
		Stale:          digest.Stale,
	}, nil
}

// FilterByCategory keeps articles with a category containing category,
// case-insensitively. "all" keeps everything. Order is preserved.
func FilterByCategory(articles []domain.NewsArticle, category string) []domain.NewsArticle {
	category = strings.ToLower(category)
	out := make([]domain.NewsArticle, 0, len(articles))
	for _, a := range articles {
		if category == CategoryAll || hasCategory(a.Categories, category) {
			out = append(out, a)
		}
	}
	return out
}

func hasCategory(cats []string, want string) bool {
	for _, c := range cats {
		if strings.Contains(strings.ToLower(c), want) {
			return true
		}
	}
	return false
}
