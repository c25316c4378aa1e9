package domain

import "github.com/shopspring/decimal"

// TxType is the coarse category assigned to a ledger transaction from its logs.
type TxType string

const (
	TxTypeDeFi          TxType = "DeFi"
	TxTypeNFT           TxType = "NFT"
	TxTypeTokenTransfer TxType = "TokenTransfer"
	TxTypeUnknown       TxType = "Unknown"
)

// TxStatus is the execution outcome of a ledger transaction.
type TxStatus string

const (
	TxStatusSuccess TxStatus = "Success"
	TxStatusFailed  TxStatus = "Failed"
)

// LedgerTransaction is a parsed, classified transaction touching an address.
type LedgerTransaction struct {
	Signature              string   `json:"signature"`
	Timestamp              *int64   `json:"timestamp"` // unix seconds, nil if the ledger has no block time
	Type                   TxType   `json:"type"`
	LamportDelta           int64    `json:"lamportDelta"` // balance change of the queried address
	LamportsMoved          int64    `json:"lamportsMoved"` // largest absolute balance change of any account
	CounterpartyProgramIDs []string `json:"counterpartyProgramIds"`
	Status                 TxStatus `json:"status"`
}

// TokenHolder is one entry of the enumerated largest-holder set.
//
// PercentageOfObservedSupply is relative to the sum of the enumerated set
// (typically the top 20 accounts the ledger returns), not to circulating supply.
// It overstates concentration for tokens with a long tail of small holders.
type TokenHolder struct {
	Address                    string          `json:"address"`
	RawBalance                 decimal.Decimal `json:"rawBalance"`
	PercentageOfObservedSupply float64         `json:"percentageOfObservedSupply"`
}

// OnChainTokenMeta is the decoded SPL mint account.
// Non-nil authorities are risk signals, not failures.
type OnChainTokenMeta struct {
	Supply          decimal.Decimal `json:"supply"` // UI units (raw / 10^decimals)
	Decimals        int             `json:"decimals"`
	MintAuthority   *string         `json:"mintAuthority"`
	FreezeAuthority *string         `json:"freezeAuthority"`
}
