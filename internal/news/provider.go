package news

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"solana-risk-engine/internal/domain"
	"solana-risk-engine/internal/httpclient"
	"solana-risk-engine/internal/idhash"
)

// Provider fetches and normalizes articles from one news source.
type Provider interface {
	Name() string
	Fetch(ctx context.Context) ([]domain.NewsArticle, error)
}

// Default provider endpoints.
const (
	DefaultCryptoPanicURL   = "https://cryptopanic.com/api/v1"
	DefaultCryptoCompareURL = "https://min-api.cryptocompare.com"
)

// CryptoPanic reads the CryptoPanic posts feed. Requires an auth token.
type CryptoPanic struct {
	baseURL    string
	authToken  string
	currencies string
	http       *httpclient.Client
}

// NewCryptoPanic creates the CryptoPanic provider. currencies filters posts
// (e.g. "SOL"); empty means all.
func NewCryptoPanic(baseURL, authToken, currencies string, timeout time.Duration) *CryptoPanic {
	if baseURL == "" {
		baseURL = DefaultCryptoPanicURL
	}
	return &CryptoPanic{
		baseURL:    strings.TrimRight(baseURL, "/"),
		authToken:  authToken,
		currencies: currencies,
		http:       httpclient.New("cryptopanic", timeout),
	}
}

// Name returns the provider label.
func (p *CryptoPanic) Name() string { return "cryptopanic" }

type cryptoPanicResponse struct {
	Results []struct {
		Title       string    `json:"title"`
		Description string    `json:"description"`
		URL         string    `json:"url"`
		Slug        string    `json:"slug"`
		Domain      string    `json:"domain"`
		PublishedAt time.Time `json:"published_at"`
		Source      struct {
			Title  string `json:"title"`
			Domain string `json:"domain"`
		} `json:"source"`
		Votes *struct {
			Positive int `json:"positive"`
			Negative int `json:"negative"`
			Toxic    int `json:"toxic"`
		} `json:"votes"`
		Currencies []struct {
			Code string `json:"code"`
		} `json:"currencies"`
	} `json:"results"`
}

// Fetch returns the latest public news posts.
func (p *CryptoPanic) Fetch(ctx context.Context) ([]domain.NewsArticle, error) {
	if p.authToken == "" {
		return nil, fmt.Errorf("%w: cryptopanic auth token", domain.ErrConfigurationMissing)
	}

	q := url.Values{}
	q.Set("auth_token", p.authToken)
	q.Set("public", "true")
	q.Set("kind", "news")
	if p.currencies != "" {
		q.Set("currencies", p.currencies)
	}

	var resp cryptoPanicResponse
	if err := p.http.GetJSON(ctx, "posts", p.baseURL+"/posts/?"+q.Encode(), &resp); err != nil {
		return nil, err
	}

	articles := make([]domain.NewsArticle, 0, len(resp.Results))
	for _, r := range resp.Results {
		source := r.Source.Title
		if source == "" {
			source = r.Domain
		}
		var providerCats []string
		for _, c := range r.Currencies {
			providerCats = append(providerCats, c.Code)
		}
		text := r.Title + " " + r.Description

		sentiment := domain.SentimentNeutral
		voted := false
		if r.Votes != nil {
			sentiment, voted = voteSentiment(r.Votes.Positive, r.Votes.Negative+r.Votes.Toxic)
		}
		if !voted {
			sentiment = LexiconSentiment(text)
		}

		articles = append(articles, domain.NewsArticle{
			ID:          idhash.ComputeArticleID(r.URL, r.Title),
			Title:       r.Title,
			Summary:     r.Description,
			Source:      source,
			URL:         r.URL,
			PublishedAt: r.PublishedAt.UTC(),
			Categories:  InferCategories(providerCats, text),
			Sentiment:   sentiment,
		})
	}
	return articles, nil
}

// voteSentiment compares community votes. ok is false when nobody voted.
func voteSentiment(positive, negative int) (s domain.Sentiment, ok bool) {
	switch {
	case positive == 0 && negative == 0:
		return domain.SentimentNeutral, false
	case positive > negative:
		return domain.SentimentPositive, true
	case negative > positive:
		return domain.SentimentNegative, true
	default:
		return domain.SentimentNeutral, true
	}
}

// CryptoCompare reads the CryptoCompare news feed. Requires an API key.
type CryptoCompare struct {
	baseURL string
	apiKey  string
	http    *httpclient.Client
}

// NewCryptoCompare creates the CryptoCompare provider.
func NewCryptoCompare(baseURL, apiKey string, timeout time.Duration) *CryptoCompare {
	if baseURL == "" {
		baseURL = DefaultCryptoCompareURL
	}
	var opts []httpclient.Option
	if apiKey != "" {
		opts = append(opts, httpclient.WithHeader("Authorization", "Apikey "+apiKey))
	}
	return &CryptoCompare{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    httpclient.New("cryptocompare", timeout, opts...),
	}
}

// Name returns the provider label.
func (p *CryptoCompare) Name() string { return "cryptocompare" }

type cryptoCompareResponse struct {
	Response string `json:"Response"`
	Message  string `json:"Message"`
	Data     []struct {
		Title       string `json:"title"`
		Body        string `json:"body"`
		URL         string `json:"url"`
		Source      string `json:"source"`
		PublishedOn int64  `json:"published_on"`
		Categories  string `json:"categories"`
		SourceInfo  struct {
			Name string `json:"name"`
		} `json:"source_info"`
	} `json:"Data"`
}

// Fetch returns the latest English news.
func (p *CryptoCompare) Fetch(ctx context.Context) ([]domain.NewsArticle, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("%w: cryptocompare api key", domain.ErrConfigurationMissing)
	}

	var resp cryptoCompareResponse
	if err := p.http.GetJSON(ctx, "news", p.baseURL+"/data/v2/news/?lang=EN", &resp); err != nil {
		return nil, err
	}
	if strings.EqualFold(resp.Response, "Error") {
		return nil, fmt.Errorf("cryptocompare: %w: %s", domain.ErrUpstream, resp.Message)
	}

	articles := make([]domain.NewsArticle, 0, len(resp.Data))
	for _, d := range resp.Data {
		source := d.SourceInfo.Name
		if source == "" {
			source = d.Source
		}
		var providerCats []string
		for _, c := range strings.Split(d.Categories, "|") {
			if c = strings.TrimSpace(c); c != "" {
				providerCats = append(providerCats, c)
			}
		}
		text := d.Title + " " + d.Body

		articles = append(articles, domain.NewsArticle{
			ID:          idhash.ComputeArticleID(d.URL, d.Title),
			Title:       d.Title,
			Summary:     d.Body,
			Source:      source,
			URL:         d.URL,
			PublishedAt: time.Unix(d.PublishedOn, 0).UTC(),
			Categories:  InferCategories(providerCats, text),
			Sentiment:   LexiconSentiment(text),
		})
	}
	return articles, nil
}
