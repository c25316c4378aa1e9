package actions

import (
	"context"

	"golang.org/x/sync/errgroup"

	"solana-risk-engine/internal/domain"
	"solana-risk-engine/internal/observability"
	"solana-risk-engine/internal/risk"
)

// RiskAnalysisResult is the risk_analysis payload.
type RiskAnalysisResult struct {
	TokenAddress         string                  `json:"tokenAddress"`
	Assessment           domain.RiskAssessment   `json:"assessment"`
	Meta                 domain.OnChainTokenMeta `json:"meta"`
	HoldersAnalyzed      int                     `json:"holdersAnalyzed"`
	TransactionsAnalyzed int                     `json:"transactionsAnalyzed"`
}

// riskAnalysis fetches mint metadata, holders and transactions concurrently
// and scores them. Metadata failure fails the action; holder and transaction
// failures become warning factors.
func (e *Engine) riskAnalysis(ctx context.Context, p RiskAnalysisParams) (*RiskAnalysisResult, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	var (
		meta     *domain.OnChainTokenMeta
		holders  domain.Result[[]domain.TokenHolder]
		txs      domain.Result[[]domain.LedgerTransaction]
		warnings []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		meta, err = e.ledger.GetOnChainTokenMeta(gctx, p.TokenAddress)
		return err
	})
	g.Go(func() error {
		h, err := e.ledger.GetTokenHolders(gctx, p.TokenAddress)
		if err != nil {
			holders = domain.Degraded([]domain.TokenHolder{}, err.Error())
			return nil
		}
		holders = domain.Ok(h)
		return nil
	})
	g.Go(func() error {
		txs = e.ledger.GetRecentTransactions(gctx, p.TokenAddress, e.txLimit)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if holders.Degraded {
		observability.RecordDegraded("holders")
		warnings = append(warnings, "holder data unavailable: "+holders.Reason)
	}
	if txs.Degraded {
		warnings = append(warnings, "transaction data unavailable: "+txs.Reason)
	}
	if len(warnings) > 0 {
		e.log.Warn().Str("token", p.TokenAddress).Strs("warnings", warnings).Msg("risk analysis on partial data")
	}

	assessment := risk.Assess(e.riskCfg, risk.Input{
		Holders:      holders.Value,
		Transactions: txs.Value,
		Meta:         meta,
		Warnings:     warnings,
	})
	observability.RecordRiskScore(assessment.OverallRiskScore)

	return &RiskAnalysisResult{
		TokenAddress:         p.TokenAddress,
		Assessment:           assessment,
		Meta:                 *meta,
		HoldersAnalyzed:      len(holders.Value),
		TransactionsAnalyzed: len(txs.Value),
	}, nil
}
