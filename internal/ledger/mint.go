package ledger

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"

	"github.com/mr-tron/base58"
	"github.com/shopspring/decimal"

	"solana-risk-engine/internal/domain"
)

// MintAccountSize is the length of an SPL Token mint account.
const MintAccountSize = 82

// DecodeMint parses SPL Token Mint account data.
// SPL Token Mint layout (82 bytes):
// - mintAuthority: COption<Pubkey> (36 bytes: 4 + 32)
// - supply: u64 (8 bytes)
// - decimals: u8 (1 byte)
// - isInitialized: bool (1 byte)
// - freezeAuthority: COption<Pubkey> (36 bytes: 4 + 32)
//
// Token-2022 mints carry extensions after the base layout; only the base is read.
func DecodeMint(data string) (*domain.OnChainTokenMeta, error) {
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("decode mint data: %w", err)
	}

	if len(decoded) < MintAccountSize {
		return nil, fmt.Errorf("%w: not an SPL token mint (data length %d)", domain.ErrNotFound, len(decoded))
	}

	if decoded[45] == 0 {
		return nil, fmt.Errorf("%w: mint is not initialized", domain.ErrNotFound)
	}

	supply := binary.LittleEndian.Uint64(decoded[36:44])
	decimals := int(decoded[44])

	return &domain.OnChainTokenMeta{
		Supply:          decimal.NewFromBigInt(uint64ToBig(supply), -int32(decimals)),
		Decimals:        decimals,
		MintAuthority:   decodeCOptionPubkey(decoded[0:36]),
		FreezeAuthority: decodeCOptionPubkey(decoded[46:82]),
	}, nil
}

// decodeCOptionPubkey reads a 4-byte little-endian tag followed by a 32-byte key.
func decodeCOptionPubkey(b []byte) *string {
	if binary.LittleEndian.Uint32(b[0:4]) == 0 {
		return nil
	}
	key := base58.Encode(b[4:36])
	return &key
}
