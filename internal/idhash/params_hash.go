package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeParamsHash fingerprints an action invocation so identical requests
// group together in the audit log.
// Formula: SHA256(action|params)
func ComputeParamsHash(action string, params []byte) string {
	data := fmt.Sprintf("%s|%s", action, params)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
