// Package checksum fingerprints document content. The store attaches a
// digest to every read so callers can detect concurrent edits before
// writing back.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
