package actions

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"solana-risk-engine/internal/address"
	"solana-risk-engine/internal/domain"
)

// decodeStrict decodes a single JSON object into dst. Unknown fields, wrong
// types and trailing data are rejected as invalid input. Empty params decode
// as an empty object.
func decodeStrict(raw json.RawMessage, dst any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = json.RawMessage("{}")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: params: %v", domain.ErrInvalidInput, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: params: unexpected data after object", domain.ErrInvalidInput)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, fmt.Sprintf(format, args...))
}

func requireAddress(field, value string) error {
	if value == "" {
		return invalid("%s is required", field)
	}
	if !address.IsValid(value) {
		return invalid("%s %q is not a valid Solana address", field, value)
	}
	return nil
}

// PriceSentimentParams are the price_sentiment parameters.
type PriceSentimentParams struct {
	TokenID string `json:"tokenId"`
}

func (p *PriceSentimentParams) validate() error {
	p.TokenID = strings.TrimSpace(p.TokenID)
	if p.TokenID == "" {
		return invalid("tokenId is required")
	}
	return nil
}

// Time ranges accepted by address_activity.
var timeRanges = map[string]time.Duration{
	"24h": 24 * time.Hour,
	"7d":  7 * 24 * time.Hour,
	"30d": 30 * 24 * time.Hour,
}

// DefaultTimeRange applies when timeRange is omitted.
const DefaultTimeRange = "7d"

// AddressActivityParams are the address_activity parameters.
type AddressActivityParams struct {
	WalletAddress string `json:"walletAddress"`
	TimeRange     string `json:"timeRange,omitempty"`
}

func (p *AddressActivityParams) validate() (time.Duration, error) {
	if err := requireAddress("walletAddress", p.WalletAddress); err != nil {
		return 0, err
	}
	if p.TimeRange == "" {
		p.TimeRange = DefaultTimeRange
	}
	d, ok := timeRanges[p.TimeRange]
	if !ok {
		return 0, invalid("timeRange must be one of 24h, 7d, 30d, got %q", p.TimeRange)
	}
	return d, nil
}

// RiskAnalysisParams are the risk_analysis parameters.
type RiskAnalysisParams struct {
	TokenAddress string `json:"tokenAddress"`
}

func (p *RiskAnalysisParams) validate() error {
	return requireAddress("tokenAddress", p.TokenAddress)
}

// News categories accepted by the news action.
const (
	CategoryAll = "all"

	DefaultNewsLimit = 10
	MaxNewsLimit     = 20
)

var newsCategories = map[string]bool{
	CategoryAll: true,
	"defi":      true,
	"nft":       true,
	"web3":      true,
	"trading":   true,
}

// NewsParams are the news parameters.
type NewsParams struct {
	Category string `json:"category,omitempty"`
	Limit    *int   `json:"limit,omitempty"`
}

func (p *NewsParams) validate() (category string, limit int, err error) {
	category = strings.ToLower(strings.TrimSpace(p.Category))
	if category == "" {
		category = CategoryAll
	}
	if !newsCategories[category] {
		return "", 0, invalid("category must be one of all, defi, nft, web3, trading, got %q", p.Category)
	}

	limit = DefaultNewsLimit
	if p.Limit != nil {
		limit = *p.Limit
		if limit < 1 || limit > MaxNewsLimit {
			return "", 0, invalid("limit must be between 1 and %d, got %d", MaxNewsLimit, limit)
		}
	}
	return category, limit, nil
}
