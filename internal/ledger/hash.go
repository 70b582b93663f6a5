package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// TransactionID computes the content-addressed identifier of a
// transaction: the first 16 hex characters of the SHA-256 of
// "date|amount|lowercased-trimmed-description|source". Identical content
// always yields the identical id, which is what deduplication relies on.
// 64 bits is plenty for a per-user ledger; this is not a global
// cryptographic identifier.
func TransactionID(date string, amount int64, description, source string) string {
	input := fmt.Sprintf("%s|%d|%s|%s", date, amount, strings.ToLower(strings.TrimSpace(description)), source)
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])[:16]
}
