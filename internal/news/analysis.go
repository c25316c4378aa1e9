package news

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"solana-risk-engine/internal/domain"
)

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

func tokenize(text string) []string {
	parts := nonWord.Split(strings.ToLower(text), -1)
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

var stopWords = toSet(
	"the", "and", "for", "with", "that", "this", "from", "are", "was", "were", "has",
	"have", "had", "will", "would", "could", "should", "into", "over", "after", "before",
	"about", "than", "then", "them", "they", "their", "there", "what", "when", "where",
	"which", "while", "who", "why", "how", "its", "says", "said", "more", "most",
	"just", "also", "amid", "been", "being", "does", "here", "like", "week", "today",
	"news", "year", "years", "first", "new", "your", "you", "our", "out", "not", "but",
	"all", "can", "may", "these", "those", "some", "such", "very", "other",
)

func toSet(words ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

// Dedup drops articles whose lower-cased title or exact URL was already seen.
// The first occurrence in input order is kept.
func Dedup(articles []domain.NewsArticle) []domain.NewsArticle {
	titles := make(map[string]struct{}, len(articles))
	urls := make(map[string]struct{}, len(articles))
	out := make([]domain.NewsArticle, 0, len(articles))

	for _, a := range articles {
		title := strings.ToLower(strings.TrimSpace(a.Title))
		_, dupTitle := titles[title]
		_, dupURL := urls[a.URL]
		if (title != "" && dupTitle) || (a.URL != "" && dupURL) {
			continue
		}
		if title != "" {
			titles[title] = struct{}{}
		}
		if a.URL != "" {
			urls[a.URL] = struct{}{}
		}
		out = append(out, a)
	}
	return out
}

// SortNewestFirst orders articles by publish time, newest first. Ties keep input order.
func SortNewestFirst(articles []domain.NewsArticle) {
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
}

// TrendingTopics counts significant words across title and summary and returns
// the top n by count. Ties keep first-seen order.
func TrendingTopics(articles []domain.NewsArticle, n int) []string {
	counts := make(map[string]int)
	var order []string

	for _, a := range articles {
		for _, tok := range tokenize(a.Title + " " + a.Summary) {
			if utf8.RuneCountInString(tok) <= 3 {
				continue
			}
			if _, stop := stopWords[tok]; stop {
				continue
			}
			if _, seen := counts[tok]; !seen {
				order = append(order, tok)
			}
			counts[tok]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > n {
		order = order[:n]
	}
	if order == nil {
		order = []string{}
	}
	return order
}

var (
	positiveWords = toSet(
		"surge", "surges", "rally", "rallies", "bullish", "gain", "gains", "soar", "soars",
		"record", "breakout", "partnership", "adoption", "launch", "launches", "upgrade",
		"approval", "approved", "rise", "rises", "jump", "jumps", "growth", "profit", "wins",
	)
	negativeWords = toSet(
		"crash", "crashes", "plunge", "plunges", "bearish", "hack", "hacked", "exploit",
		"exploited", "scam", "rug", "rugpull", "lawsuit", "ban", "banned", "drop", "drops",
		"fall", "falls", "dump", "fraud", "vulnerability", "liquidation", "outage", "loss",
		"losses", "theft", "stolen",
	)
)

// LexiconSentiment scores text by counting positive and negative keywords.
func LexiconSentiment(text string) domain.Sentiment {
	score := 0
	for _, tok := range tokenize(text) {
		if _, ok := positiveWords[tok]; ok {
			score++
		}
		if _, ok := negativeWords[tok]; ok {
			score--
		}
	}
	switch {
	case score > 0:
		return domain.SentimentPositive
	case score < 0:
		return domain.SentimentNegative
	default:
		return domain.SentimentNeutral
	}
}

// Topical categories inferred from article text.
const (
	CategoryDeFi    = "defi"
	CategoryNFT     = "nft"
	CategoryWeb3    = "web3"
	CategoryTrading = "trading"
)

var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{CategoryDeFi, []string{"defi", "dex", "liquidity", "yield", "lending", "staking", "amm", "swap", "tvl", "stablecoin"}},
	{CategoryNFT, []string{"nft", "nfts", "collectible", "collectibles", "metaplex", "opensea", "magic eden", "ordinals"}},
	{CategoryWeb3, []string{"web3", "dapp", "dapps", "metaverse", "dao", "decentralized"}},
	{CategoryTrading, []string{"trading", "traders", "price", "market", "rally", "bullish", "bearish", "etf", "futures"}},
}

// InferCategories returns provider categories followed by inferred topical tags,
// lower-cased and without duplicates.
func InferCategories(provider []string, text string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	add := func(c string) {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" {
			return
		}
		if _, ok := seen[c]; ok {
			return
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}

	for _, c := range provider {
		add(c)
	}

	tokens := toSet(tokenize(text)...)
	joined := strings.Join(tokenize(text), " ")
	for _, ck := range categoryKeywords {
		for _, kw := range ck.keywords {
			if strings.Contains(kw, " ") {
				if strings.Contains(joined, kw) {
					add(ck.category)
					break
				}
				continue
			}
			if _, ok := tokens[kw]; ok {
				add(ck.category)
				break
			}
		}
	}
	return out
}
