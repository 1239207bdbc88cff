package khqr

import (
	"crypto/md5" //nolint:gosec // correlation token per the Bakong check API, not a credential
	"encoding/hex"
)

// DeriveKey derives the verification key for a finalized payload. The Bakong
// status API correlates transactions by the MD5 of the scanned QR string, so
// the digest is a handle, not a security primitive.
func DeriveKey(payload string) string {
	sum := md5.Sum([]byte(payload))
	return hex.EncodeToString(sum[:])
}
