package market

import "solana-risk-engine/internal/domain"

// Market sentiment labels.
const (
	SentimentBullish = "bullish"
	SentimentBearish = "bearish"
	SentimentNeutral = "neutral"
)

// Sentiment weighs the 24h and 7d changes (0.6/0.4). Above +5 is bullish,
// below -5 bearish.
func Sentiment(pc domain.PriceChanges) (label string, score float64) {
	score = 0.6*pc.H24 + 0.4*pc.D7
	switch {
	case score > 5:
		return SentimentBullish, score
	case score < -5:
		return SentimentBearish, score
	default:
		return SentimentNeutral, score
	}
}
