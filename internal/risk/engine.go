// Package risk scores tokens for rug-pull and fraud signals.
//
// Every component score starts at 100 and loses fixed deductions when a
// heuristic fires. Higher scores mean lower risk.
package risk

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"solana-risk-engine/internal/domain"
)

// Input is everything the scoring model looks at.
type Input struct {
	Holders      []domain.TokenHolder
	Transactions []domain.LedgerTransaction
	Meta         *domain.OnChainTokenMeta
	// Warnings are appended to the risk factors after the score factors.
	Warnings []string
}

// Assess produces a deterministic risk assessment from in.
func Assess(cfg Config, in Input) domain.RiskAssessment {
	holder, holderFactors := guarded("holder concentration", func() (int, []string) {
		return HolderConcentrationScore(cfg.Holder, in.Holders)
	})
	tx, txFactors := guarded("transaction pattern", func() (int, []string) {
		return TransactionPatternScore(cfg.Transaction, in.Transactions)
	})
	liquidity, liquidityFactors := guarded("liquidity", func() (int, []string) {
		return LiquidityScore(cfg.Liquidity, in.Transactions, in.Meta)
	})

	overall := Overall(cfg.Weights, holder, tx, liquidity)

	factors := make([]string, 0, len(holderFactors)+len(txFactors)+len(liquidityFactors)+len(in.Warnings))
	factors = append(factors, holderFactors...)
	factors = append(factors, txFactors...)
	factors = append(factors, liquidityFactors...)
	factors = append(factors, in.Warnings...)

	return domain.RiskAssessment{
		LiquidityScore:           liquidity,
		HolderConcentrationScore: holder,
		TransactionPatternScore:  tx,
		ContractRiskScore:        clamp(cfg.ContractRisk),
		OverallRiskScore:         overall,
		RiskLevel:                Level(cfg.Levels, overall),
		RiskFactors:              factors,
		ConfigVersion:            cfg.Version,
	}
}

// Overall is the rounded weighted sum of the component scores.
func Overall(w Weights, holder, tx, liquidity int) int {
	return clamp(int(math.Round(
		w.Holder*float64(holder) +
			w.Transaction*float64(tx) +
			w.Liquidity*float64(liquidity),
	)))
}

// guarded runs a component scorer and turns a panic into a zero score.
func guarded(name string, fn func() (int, []string)) (score int, factors []string) {
	defer func() {
		if r := recover(); r != nil {
			score = 0
			factors = []string{fmt.Sprintf("error computing %s score: %v", name, r)}
		}
	}()
	return fn()
}

// Level maps an overall score to its band. Bounds are exclusive.
func Level(bands LevelBands, overall int) domain.RiskLevel {
	switch {
	case overall < bands.ExtremelyHigh:
		return domain.RiskLevelExtremelyHigh
	case overall < bands.High:
		return domain.RiskLevelHigh
	case overall < bands.Medium:
		return domain.RiskLevelMedium
	default:
		return domain.RiskLevelLow
	}
}

func clamp(score int) int {
	return max(0, min(100, score))
}

// HolderConcentrationScore penalizes supply concentrated in the largest holders.
// holders must be sorted largest first.
func HolderConcentrationScore(rules HolderRules, holders []domain.TokenHolder) (int, []string) {
	if len(holders) == 0 {
		return 0, []string{"no holder data available"}
	}

	score := 100
	var factors []string

	// 1. Largest single holder
	top := holders[0].PercentageOfObservedSupply
	switch {
	case top > rules.TopExtremePct:
		score -= rules.TopExtremeDeduction
		factors = append(factors, fmt.Sprintf("extreme holder concentration: top holder owns %.2f%%", top))
	case top > rules.TopHighPct:
		score -= rules.TopHighDeduction
		factors = append(factors, fmt.Sprintf("high holder concentration: top holder owns %.2f%%", top))
	}

	// 2. Top 10 combined
	var top10 float64
	for i := 0; i < len(holders) && i < 10; i++ {
		top10 += holders[i].PercentageOfObservedSupply
	}
	switch {
	case top10 > rules.Top10ExtremePct:
		score -= rules.Top10ExtremeDeduction
		factors = append(factors, fmt.Sprintf("top 10 holders own %.2f%% of observed supply", top10))
	case top10 > rules.Top10HighPct:
		score -= rules.Top10HighDeduction
		factors = append(factors, fmt.Sprintf("top 10 holders own %.2f%% of observed supply", top10))
	}

	return clamp(score), factors
}

// TransactionPatternScore penalizes failure-heavy, transfer-only or bursty activity.
func TransactionPatternScore(rules TransactionRules, txs []domain.LedgerTransaction) (int, []string) {
	score := 100
	var factors []string
	if len(txs) == 0 {
		return score, factors
	}

	var failed, transfers int
	for _, tx := range txs {
		if tx.Status == domain.TxStatusFailed {
			failed++
		}
		if tx.Type == domain.TxTypeTokenTransfer {
			transfers++
		}
	}
	total := float64(len(txs))

	// 1. Failed transaction ratio
	if ratio := float64(failed) / total; ratio > rules.FailedRatio {
		score -= rules.FailedDeduction
		factors = append(factors, fmt.Sprintf("high failed transaction ratio: %.1f%%", ratio*100))
	}

	// 2. Token transfer dominance
	if ratio := float64(transfers) / total; ratio > rules.TransferRatio {
		score -= rules.TransferDeduction
		factors = append(factors, fmt.Sprintf("transfer-dominated activity: %.1f%% token transfers", ratio*100))
	}

	// 3. Activity rate over the observed span
	if span, ok := observedSpanSeconds(txs); ok && span > 0 {
		perHour := total / (float64(span) / 3600)
		if perHour > rules.MaxTxPerHour {
			score -= rules.HighRateDeduction
			factors = append(factors, fmt.Sprintf("unusually high transaction rate: %.1f tx/hour", perHour))
		}
	}

	return clamp(score), factors
}

// LiquidityScore approximates liquidity from value moved, activity and mint controls.
func LiquidityScore(rules LiquidityRules, txs []domain.LedgerTransaction, meta *domain.OnChainTokenMeta) (int, []string) {
	score := 100
	var factors []string

	// 1. Average SOL moved per transaction
	if len(txs) > 0 {
		var sum int64
		for _, tx := range txs {
			sum += tx.LamportsMoved
		}
		avg := decimal.NewFromInt(sum).Div(decimal.NewFromInt(int64(len(txs)))).Shift(-9).InexactFloat64()
		switch {
		case avg < rules.AvgSOLLow:
			score -= rules.AvgSOLLowDeduction
			factors = append(factors, fmt.Sprintf("very low value per transaction: %.4f SOL", avg))
		case avg < rules.AvgSOLMid:
			score -= rules.AvgSOLMidDeduction
			factors = append(factors, fmt.Sprintf("low value per transaction: %.4f SOL", avg))
		}
	}

	// 2. Transactions per day over the observed span (at least one day)
	days := 1.0
	if span, ok := observedSpanSeconds(txs); ok && span > 0 {
		days = float64(span) / 86400
	}
	perDay := float64(len(txs)) / days
	switch {
	case perDay < rules.TxPerDayLow:
		score -= rules.TxPerDayLowDeduction
		factors = append(factors, fmt.Sprintf("very low activity: %.2f tx/day", perDay))
	case perDay < rules.TxPerDayMid:
		score -= rules.TxPerDayMidDeduction
		factors = append(factors, fmt.Sprintf("low activity: %.2f tx/day", perDay))
	}

	// 3. Mint controls
	if meta != nil && meta.MintAuthority != nil {
		score -= rules.MintAuthorityDeduction
		factors = append(factors, "mint authority is active: supply can be inflated")
	}
	if meta != nil && meta.FreezeAuthority != nil {
		score -= rules.FreezeAuthorityDeduction
		factors = append(factors, "freeze authority is active: holder accounts can be frozen")
	}

	// 4. Counterparty diversity
	programs := make(map[string]struct{})
	for _, tx := range txs {
		for _, p := range tx.CounterpartyProgramIDs {
			programs[p] = struct{}{}
		}
	}
	if len(programs) < rules.MinDistinctPrograms {
		score -= rules.FewProgramsDeduction
		factors = append(factors, fmt.Sprintf("limited counterparty diversity: %d distinct programs", len(programs)))
	}

	return clamp(score), factors
}

// observedSpanSeconds returns newest minus oldest timestamp. ok is false when
// no transaction carries a timestamp.
func observedSpanSeconds(txs []domain.LedgerTransaction) (int64, bool) {
	var lo, hi int64
	found := false
	for _, tx := range txs {
		if tx.Timestamp == nil {
			continue
		}
		ts := *tx.Timestamp
		if !found {
			lo, hi, found = ts, ts, true
			continue
		}
		lo = min(lo, ts)
		hi = max(hi, ts)
	}
	return hi - lo, found
}
