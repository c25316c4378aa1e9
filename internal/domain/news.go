package domain

import "time"

// Sentiment is the polarity assigned to a news article.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// NewsArticle is a provider-independent news item.
type NewsArticle struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	Source      string    `json:"source"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"publishedAt"`
	Categories  []string  `json:"categories"`
	Sentiment   Sentiment `json:"sentiment"`
}

// NewsDigest is the merged, deduplicated, newest-first article set with trending topics.
// Stale is set when every provider failed and a previous digest was served instead.
type NewsDigest struct {
	Articles       []NewsArticle `json:"articles"`
	TrendingTopics []string      `json:"trendingTopics"`
	FetchedAt      time.Time     `json:"fetchedAt"`
	Stale          bool          `json:"stale,omitempty"`
}
