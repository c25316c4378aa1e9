package news

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-risk-engine/internal/domain"
	"solana-risk-engine/internal/idhash"
)

func TestCryptoPanic_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/posts/", r.URL.Path)
		assert.Equal(t, "tok", r.URL.Query().Get("auth_token"))
		assert.Equal(t, "SOL", r.URL.Query().Get("currencies"))
		w.Write([]byte(`{"results": [
			{
				"title": "Solana DEX volume flips Ethereum",
				"url": "https://cryptopanic.com/news/1",
				"domain": "example.com",
				"published_at": "2026-01-02T10:00:00Z",
				"source": {"title": "Example News"},
				"votes": {"positive": 1, "negative": 4, "toxic": 1},
				"currencies": [{"code": "SOL"}]
			},
			{
				"title": "Rally continues",
				"url": "https://cryptopanic.com/news/2",
				"domain": "other.example",
				"published_at": "2026-01-02T09:00:00Z",
				"source": {}
			}
		]}`))
	}))
	defer server.Close()

	p := NewCryptoPanic(server.URL, "tok", "SOL", time.Second)
	articles, err := p.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, articles, 2)

	first := articles[0]
	assert.Equal(t, "Example News", first.Source)
	assert.Equal(t, domain.SentimentNegative, first.Sentiment, "votes decide sentiment")
	assert.Equal(t, []string{"sol", "defi"}, first.Categories)
	assert.Equal(t, time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC), first.PublishedAt)
	assert.Equal(t, idhash.ComputeArticleID(first.URL, first.Title), first.ID)

	second := articles[1]
	assert.Equal(t, "other.example", second.Source)
	assert.Equal(t, domain.SentimentPositive, second.Sentiment, "lexicon fallback without votes")
}

func TestCryptoPanic_MissingToken(t *testing.T) {
	_, err := NewCryptoPanic("", "", "", time.Second).Fetch(context.Background())
	assert.ErrorIs(t, err, domain.ErrConfigurationMissing)
}

func TestCryptoCompare_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/v2/news/", r.URL.Path)
		assert.Equal(t, "Apikey key", r.Header.Get("Authorization"))
		w.Write([]byte(`{"Type": 100, "Message": "News list successfully returned", "Data": [
			{
				"title": "NFT market crash deepens",
				"body": "Collectibles volumes drop again",
				"url": "https://cc.example/1",
				"source": "ccsource",
				"published_on": 1767348000,
				"categories": "NFT|Market",
				"source_info": {"name": "CC Source"}
			}
		]}`))
	}))
	defer server.Close()

	articles, err := NewCryptoCompare(server.URL, "key", time.Second).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, articles, 1)

	a := articles[0]
	assert.Equal(t, "CC Source", a.Source)
	assert.Equal(t, "Collectibles volumes drop again", a.Summary)
	assert.Equal(t, domain.SentimentNegative, a.Sentiment)
	assert.Equal(t, []string{"nft", "market", "trading"}, a.Categories)
	assert.Equal(t, time.Unix(1767348000, 0).UTC(), a.PublishedAt)
}

func TestCryptoCompare_ErrorResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Response": "Error", "Message": "rate limit", "Type": 99, "Data": []}`))
	}))
	defer server.Close()

	_, err := NewCryptoCompare(server.URL, "key", time.Second).Fetch(context.Background())
	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestCryptoCompare_MissingKey(t *testing.T) {
	_, err := NewCryptoCompare("", "", time.Second).Fetch(context.Background())
	assert.ErrorIs(t, err, domain.ErrConfigurationMissing)
}
