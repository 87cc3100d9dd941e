package hash

import (
	"crypto/sha256"
	"encoding/hex"
)

// SHA256Hex returns the hex-encoded SHA256 hash of the input string.
func SHA256Hex(input string) string {
	h := sha256.Sum256([]byte(input))
	return hex.EncodeToString(h[:])
}

// Fingerprint returns the first prefixLen characters of SHA256(input).
// Used to correlate submitted content and client IPs in logs without storing them.
func Fingerprint(input string, prefixLen int) string {
	full := SHA256Hex(input)
	if prefixLen <= 0 || prefixLen > len(full) {
		return full
	}
	return full[:prefixLen]
}

// CacheKey derives a stable cache key from a namespace and its parts.
func CacheKey(namespace string, parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return namespace + ":" + hex.EncodeToString(h.Sum(nil))[:16]
}
