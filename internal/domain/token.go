package domain

import "time"

// TokenIdentity is the canonical token record resolved from a search term.
type TokenIdentity struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// PriceChanges holds signed percentage changes over fixed windows.
type PriceChanges struct {
	H1  float64 `json:"1h"`
	H24 float64 `json:"24h"`
	D7  float64 `json:"7d"`
	D14 float64 `json:"14d"`
	D30 float64 `json:"30d"`
}

// PriceSnapshot is a point-in-time market view of a token. Never cached.
type PriceSnapshot struct {
	Identity     TokenIdentity `json:"identity"`
	CurrentPrice float64       `json:"currentPrice"` // USD, always >= 0
	PriceChanges PriceChanges  `json:"priceChanges"`
	Volume24h    float64       `json:"volume24h"`
	MarketCap    float64       `json:"marketCap"`
	FetchedAt    time.Time     `json:"fetchedAt"`
}
