package ledger

import (
	"strings"

	"solana-risk-engine/internal/domain"
)

// Program IDs recognised in transaction logs.
const (
	RaydiumAMMV4ProgramID  = "675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8"
	PumpFunProgramID       = "6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P"
	JupiterV6ProgramID     = "JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4"
	OrcaWhirlpoolProgramID = "whirLbMiicVdio4qvUfM5KAg6Ct8VwpYzGff3uctyCc"
	MetaplexProgramID      = "metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s"
	TokenProgramID         = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	Token2022ProgramID     = "TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb"
)

type classificationRule struct {
	txType   domain.TxType
	keywords []string
}

// classificationRules are evaluated in order; the first rule with a matching
// keyword wins.
var classificationRules = []classificationRule{
	{
		txType: domain.TxTypeDeFi,
		keywords: lower(
			"swap", "jupiter", "raydium", "orca", "whirlpool", "liquidity", "meteora",
			RaydiumAMMV4ProgramID, PumpFunProgramID, JupiterV6ProgramID, OrcaWhirlpoolProgramID,
		),
	},
	{
		txType: domain.TxTypeNFT,
		keywords: lower(
			"nft", "metaplex", "candy machine", "candymachine", "bubblegum",
			MetaplexProgramID,
		),
	},
	{
		txType: domain.TxTypeTokenTransfer,
		keywords: lower(
			"transfer", "mintto", "burn",
			TokenProgramID, Token2022ProgramID,
		),
	},
}

func lower(words ...string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = strings.ToLower(w)
	}
	return out
}

// Classify assigns a transaction type from its log messages.
func Classify(logs []string) domain.TxType {
	if len(logs) == 0 {
		return domain.TxTypeUnknown
	}
	text := strings.ToLower(strings.Join(logs, "\n"))

	for _, rule := range classificationRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.txType
			}
		}
	}
	return domain.TxTypeUnknown
}
