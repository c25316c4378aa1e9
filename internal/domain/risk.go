package domain

// RiskLevel is the band an overall risk score falls into.
type RiskLevel string

const (
	RiskLevelExtremelyHigh RiskLevel = "EXTREMELY HIGH"
	RiskLevelHigh          RiskLevel = "HIGH"
	RiskLevelMedium        RiskLevel = "MEDIUM"
	RiskLevelLow           RiskLevel = "LOW"
)

// RiskAssessment is the output of the risk scoring engine. Higher scores mean
// lower risk; every score is in [0, 100].
//
// ContractRiskScore is a constant placeholder and does not contribute to
// OverallRiskScore.
type RiskAssessment struct {
	LiquidityScore           int       `json:"liquidityScore"`
	HolderConcentrationScore int       `json:"holderConcentrationScore"`
	TransactionPatternScore  int       `json:"transactionPatternScore"`
	ContractRiskScore        int       `json:"contractRiskScore"`
	OverallRiskScore         int       `json:"overallRiskScore"`
	RiskLevel                RiskLevel `json:"riskLevel"`
	RiskFactors              []string  `json:"riskFactors"`
	ConfigVersion            string    `json:"configVersion"`
}
