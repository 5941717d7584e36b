package nvd

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Signature returns the canonical digest of a request's query parameters.
// encoding/json marshals map keys in sorted order, so two logically identical
// parameter sets always hash to the same value regardless of insertion order.
// The hex digest doubles as the cache file name.
func Signature(params map[string]string) string {
	canonical, _ := json.Marshal(params)
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])
}
