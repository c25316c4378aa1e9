package risk

// ConfigVersion identifies DefaultConfig.
const ConfigVersion = "v1"

// Weights combine the component scores into the overall score.
type Weights struct {
	Holder      float64 `mapstructure:"holder" json:"holder"`
	Transaction float64 `mapstructure:"transaction" json:"transaction"`
	Liquidity   float64 `mapstructure:"liquidity" json:"liquidity"`
}

// HolderRules are the holder concentration thresholds (percent of observed supply).
type HolderRules struct {
	TopExtremePct         float64 `mapstructure:"top_extreme_pct" json:"topExtremePct"`
	TopExtremeDeduction   int     `mapstructure:"top_extreme_deduction" json:"topExtremeDeduction"`
	TopHighPct            float64 `mapstructure:"top_high_pct" json:"topHighPct"`
	TopHighDeduction      int     `mapstructure:"top_high_deduction" json:"topHighDeduction"`
	Top10ExtremePct       float64 `mapstructure:"top10_extreme_pct" json:"top10ExtremePct"`
	Top10ExtremeDeduction int     `mapstructure:"top10_extreme_deduction" json:"top10ExtremeDeduction"`
	Top10HighPct          float64 `mapstructure:"top10_high_pct" json:"top10HighPct"`
	Top10HighDeduction    int     `mapstructure:"top10_high_deduction" json:"top10HighDeduction"`
}

// TransactionRules are the transaction pattern thresholds.
type TransactionRules struct {
	FailedRatio       float64 `mapstructure:"failed_ratio" json:"failedRatio"`
	FailedDeduction   int     `mapstructure:"failed_deduction" json:"failedDeduction"`
	TransferRatio     float64 `mapstructure:"transfer_ratio" json:"transferRatio"`
	TransferDeduction int     `mapstructure:"transfer_deduction" json:"transferDeduction"`
	MaxTxPerHour      float64 `mapstructure:"max_tx_per_hour" json:"maxTxPerHour"`
	HighRateDeduction int     `mapstructure:"high_rate_deduction" json:"highRateDeduction"`
}

// LiquidityRules are the liquidity heuristic thresholds.
type LiquidityRules struct {
	AvgSOLLow                float64 `mapstructure:"avg_sol_low" json:"avgSolLow"`
	AvgSOLLowDeduction       int     `mapstructure:"avg_sol_low_deduction" json:"avgSolLowDeduction"`
	AvgSOLMid                float64 `mapstructure:"avg_sol_mid" json:"avgSolMid"`
	AvgSOLMidDeduction       int     `mapstructure:"avg_sol_mid_deduction" json:"avgSolMidDeduction"`
	TxPerDayLow              float64 `mapstructure:"tx_per_day_low" json:"txPerDayLow"`
	TxPerDayLowDeduction     int     `mapstructure:"tx_per_day_low_deduction" json:"txPerDayLowDeduction"`
	TxPerDayMid              float64 `mapstructure:"tx_per_day_mid" json:"txPerDayMid"`
	TxPerDayMidDeduction     int     `mapstructure:"tx_per_day_mid_deduction" json:"txPerDayMidDeduction"`
	MintAuthorityDeduction   int     `mapstructure:"mint_authority_deduction" json:"mintAuthorityDeduction"`
	FreezeAuthorityDeduction int     `mapstructure:"freeze_authority_deduction" json:"freezeAuthorityDeduction"`
	MinDistinctPrograms      int     `mapstructure:"min_distinct_programs" json:"minDistinctPrograms"`
	FewProgramsDeduction     int     `mapstructure:"few_programs_deduction" json:"fewProgramsDeduction"`
}

// LevelBands are exclusive upper bounds of the risk levels.
type LevelBands struct {
	ExtremelyHigh int `mapstructure:"extremely_high" json:"extremelyHigh"`
	High          int `mapstructure:"high" json:"high"`
	Medium        int `mapstructure:"medium" json:"medium"`
}

// Config holds every tunable of the scoring model under a version label.
type Config struct {
	Version      string           `mapstructure:"version" json:"version"`
	Weights      Weights          `mapstructure:"weights" json:"weights"`
	Holder       HolderRules      `mapstructure:"holder" json:"holder"`
	Transaction  TransactionRules `mapstructure:"transaction" json:"transaction"`
	Liquidity    LiquidityRules   `mapstructure:"liquidity" json:"liquidity"`
	Levels       LevelBands       `mapstructure:"levels" json:"levels"`
	ContractRisk int              `mapstructure:"contract_risk" json:"contractRisk"`
}

// DefaultConfig returns the v1 scoring model.
func DefaultConfig() Config {
	return Config{
		Version: ConfigVersion,
		Weights: Weights{Holder: 0.4, Transaction: 0.3, Liquidity: 0.3},
		Holder: HolderRules{
			TopExtremePct:         50,
			TopExtremeDeduction:   30,
			TopHighPct:            30,
			TopHighDeduction:      20,
			Top10ExtremePct:       90,
			Top10ExtremeDeduction: 25,
			Top10HighPct:          70,
			Top10HighDeduction:    15,
		},
		Transaction: TransactionRules{
			FailedRatio:       0.2,
			FailedDeduction:   20,
			TransferRatio:     0.8,
			TransferDeduction: 15,
			MaxTxPerHour:      100,
			HighRateDeduction: 10,
		},
		Liquidity: LiquidityRules{
			AvgSOLLow:                0.1,
			AvgSOLLowDeduction:       20,
			AvgSOLMid:                1,
			AvgSOLMidDeduction:       10,
			TxPerDayLow:              1,
			TxPerDayLowDeduction:     15,
			TxPerDayMid:              10,
			TxPerDayMidDeduction:     5,
			MintAuthorityDeduction:   25,
			FreezeAuthorityDeduction: 15,
			MinDistinctPrograms:      3,
			FewProgramsDeduction:     10,
		},
		Levels:       LevelBands{ExtremelyHigh: 40, High: 60, Medium: 80},
		ContractRisk: 100,
	}
}
