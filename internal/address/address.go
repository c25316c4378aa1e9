// Package address validates Solana account identifiers.
package address

import (
	"regexp"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// PublicKeyLength is the decoded size of a Solana public key.
const PublicKeyLength = 32

// A 32-byte key encodes to 32..44 base58 characters (Bitcoin alphabet, no 0/O/I/l).
var syntax = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`)

// IsValid reports whether s is a syntactically valid Solana address.
// Pure: no I/O, no normalization (surrounding whitespace is rejected).
func IsValid(s string) bool {
	if !syntax.MatchString(s) {
		return false
	}
	decoded, err := base58.Decode(s)
	if err != nil {
		return false
	}
	return len(decoded) == PublicKeyLength
}

// IsOnCurve reports whether a valid address is a point on the ed25519 curve.
// Wallet keys are on-curve; program-derived addresses are not.
// Returns false for invalid addresses.
func IsOnCurve(s string) bool {
	if !IsValid(s) {
		return false
	}
	decoded, err := base58.Decode(s)
	if err != nil {
		return false
	}
	_, err = new(edwards25519.Point).SetBytes(decoded)
	return err == nil
}

// Kind classifies a valid address by curve membership.
func Kind(s string) string {
	if IsOnCurve(s) {
		return "wallet"
	}
	return "program-derived"
}
