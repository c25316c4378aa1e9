package risk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-risk-engine/internal/domain"
)

func holders(pcts ...float64) []domain.TokenHolder {
	out := make([]domain.TokenHolder, len(pcts))
	for i, p := range pcts {
		out[i] = domain.TokenHolder{Address: "h", PercentageOfObservedSupply: p}
	}
	return out
}

func at(ts int64) *int64 { return &ts }

func hasFactor(factors []string, substr string) bool {
	for _, f := range factors {
		if strings.Contains(f, substr) {
			return true
		}
	}
	return false
}

func TestHolderConcentrationScore(t *testing.T) {
	rules := DefaultConfig().Holder

	tests := []struct {
		name        string
		holders     []domain.TokenHolder
		wantScore   int
		wantFactors int
	}{
		{"empty", nil, 0, 1},
		{"extreme top holder", holders(60, 10), 70, 1},
		{"high top holder", holders(35, 20, 20), 65, 2},
		{"extreme top 10", holders(45, 25, 25), 55, 2},
		{"distributed", holders(10, 10, 10, 10, 10), 100, 0},
		{"extreme both", holders(95, 5), 45, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, factors := HolderConcentrationScore(rules, tt.holders)
			assert.Equal(t, tt.wantScore, score)
			assert.Len(t, factors, tt.wantFactors)
		})
	}
}

func TestHolderConcentrationScore_Examples(t *testing.T) {
	rules := DefaultConfig().Holder

	score, factors := HolderConcentrationScore(rules, holders(60, 10))
	assert.LessOrEqual(t, score, 70)
	assert.True(t, hasFactor(factors, "extreme"))

	score, factors = HolderConcentrationScore(rules, nil)
	assert.Equal(t, 0, score)
	assert.Equal(t, []string{"no holder data available"}, factors)
}

func TestOverall_BoundaryIsLow(t *testing.T) {
	cfg := DefaultConfig()

	overall := Overall(cfg.Weights, 80, 90, 70)

	assert.Equal(t, 80, overall)
	assert.Equal(t, domain.RiskLevelLow, Level(cfg.Levels, overall))
}

func TestLevel(t *testing.T) {
	bands := DefaultConfig().Levels

	tests := []struct {
		score int
		want  domain.RiskLevel
	}{
		{0, domain.RiskLevelExtremelyHigh},
		{39, domain.RiskLevelExtremelyHigh},
		{40, domain.RiskLevelHigh},
		{59, domain.RiskLevelHigh},
		{60, domain.RiskLevelMedium},
		{79, domain.RiskLevelMedium},
		{80, domain.RiskLevelLow},
		{100, domain.RiskLevelLow},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Level(bands, tt.score), "score %d", tt.score)
	}
}

func TestTransactionPatternScore(t *testing.T) {
	rules := DefaultConfig().Transaction

	t.Run("empty input skips ratios", func(t *testing.T) {
		score, factors := TransactionPatternScore(rules, nil)
		assert.Equal(t, 100, score)
		assert.Empty(t, factors)
	})

	t.Run("failed and transfer heavy", func(t *testing.T) {
		txs := []domain.LedgerTransaction{
			{Type: domain.TxTypeTokenTransfer, Status: domain.TxStatusFailed, Timestamp: at(0)},
			{Type: domain.TxTypeTokenTransfer, Status: domain.TxStatusSuccess, Timestamp: at(86400)},
			{Type: domain.TxTypeTokenTransfer, Status: domain.TxStatusSuccess, Timestamp: at(172800)},
		}
		score, factors := TransactionPatternScore(rules, txs)
		assert.Equal(t, 65, score)
		assert.Len(t, factors, 2)
	})

	t.Run("high rate", func(t *testing.T) {
		// 200 transactions within one hour
		var txs []domain.LedgerTransaction
		for i := 0; i < 200; i++ {
			txs = append(txs, domain.LedgerTransaction{Type: domain.TxTypeDeFi, Status: domain.TxStatusSuccess, Timestamp: at(int64(i * 18))})
		}
		score, factors := TransactionPatternScore(rules, txs)
		assert.Equal(t, 90, score)
		assert.True(t, hasFactor(factors, "tx/hour"))
	})

	t.Run("zero span skips rate", func(t *testing.T) {
		txs := []domain.LedgerTransaction{
			{Type: domain.TxTypeDeFi, Status: domain.TxStatusSuccess, Timestamp: at(5)},
			{Type: domain.TxTypeDeFi, Status: domain.TxStatusSuccess, Timestamp: at(5)},
		}
		score, _ := TransactionPatternScore(rules, txs)
		assert.Equal(t, 100, score)
	})
}

func TestLiquidityScore(t *testing.T) {
	rules := DefaultConfig().Liquidity
	authority := "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"

	t.Run("no data", func(t *testing.T) {
		score, factors := LiquidityScore(rules, nil, nil)
		// tx/day 0 (-15), no programs (-10)
		assert.Equal(t, 75, score)
		assert.Len(t, factors, 2)
	})

	t.Run("every deduction category", func(t *testing.T) {
		txs := []domain.LedgerTransaction{{LamportsMoved: 10, Timestamp: at(0)}}
		meta := &domain.OnChainTokenMeta{MintAuthority: &authority, FreezeAuthority: &authority}
		score, factors := LiquidityScore(rules, txs, meta)
		// -20 value, -5 activity, -25 mint, -15 freeze, -10 programs
		assert.Equal(t, 25, score)
		assert.Len(t, factors, 5)
		assert.True(t, hasFactor(factors, "mint authority"))
		assert.True(t, hasFactor(factors, "freeze authority"))
	})

	t.Run("healthy", func(t *testing.T) {
		var txs []domain.LedgerTransaction
		for i := 0; i < 48; i++ {
			txs = append(txs, domain.LedgerTransaction{
				LamportsMoved:          2_000_000_000,
				Timestamp:              at(int64(i * 1800)),
				CounterpartyProgramIDs: []string{"p1", "p2", "p3"},
			})
		}
		score, factors := LiquidityScore(rules, txs, &domain.OnChainTokenMeta{})
		assert.Equal(t, 100, score)
		assert.Empty(t, factors)
	})

	t.Run("mid value and mid activity", func(t *testing.T) {
		txs := []domain.LedgerTransaction{
			{LamportsMoved: 500_000_000, Timestamp: at(0), CounterpartyProgramIDs: []string{"a", "b"}},
			{LamportsMoved: 500_000_000, Timestamp: at(86400), CounterpartyProgramIDs: []string{"c"}},
		}
		score, _ := LiquidityScore(rules, txs, nil)
		// avg 0.5 SOL (-10), 2 tx/day (-5)
		assert.Equal(t, 85, score)
	})
}

func TestAssess_OrdersFactorsAndWarnings(t *testing.T) {
	cfg := DefaultConfig()

	got := Assess(cfg, Input{
		Holders:  holders(60, 10),
		Warnings: []string{"transaction data unavailable: timeout"},
	})

	require.NotEmpty(t, got.RiskFactors)
	assert.True(t, strings.HasPrefix(got.RiskFactors[0], "extreme holder concentration"))
	assert.Equal(t, "transaction data unavailable: timeout", got.RiskFactors[len(got.RiskFactors)-1])
	assert.Equal(t, 100, got.ContractRiskScore)
	assert.Equal(t, "v1", got.ConfigVersion)

	// 0.4*70 + 0.3*100 + 0.3*75 = 80.5
	assert.Equal(t, 81, got.OverallRiskScore)
	assert.Equal(t, domain.RiskLevelLow, got.RiskLevel)
}

func TestAssess_ContractRiskExcludedFromOverall(t *testing.T) {
	cfg := DefaultConfig()
	in := Input{Holders: holders(10, 10, 10)}

	base := Assess(cfg, in)
	cfg.ContractRisk = 0
	changed := Assess(cfg, in)

	assert.Equal(t, base.OverallRiskScore, changed.OverallRiskScore)
	assert.Equal(t, 0, changed.ContractRiskScore)
}

func TestGuarded_RecoversPanic(t *testing.T) {
	score, factors := guarded("liquidity", func() (int, []string) {
		var m map[string]int
		m["boom"] = 1
		return 100, nil
	})

	assert.Equal(t, 0, score)
	require.Len(t, factors, 1)
	assert.Contains(t, factors[0], "error computing liquidity score")
}

func TestScores_FloorAtZero(t *testing.T) {
	rules := DefaultConfig().Holder
	rules.TopExtremeDeduction = 90
	rules.Top10ExtremeDeduction = 90

	score, _ := HolderConcentrationScore(rules, holders(99, 1))
	assert.Equal(t, 0, score)
}
