package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// ComputeArticleID computes a deterministic article id using SHA256.
// Formula: SHA256(url|lower(trim(title)))
// Returns hex-encoded hash (64 characters).
func ComputeArticleID(url, title string) string {
	data := fmt.Sprintf("%s|%s",
		strings.TrimSpace(url),
		strings.ToLower(strings.TrimSpace(title)),
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
