// Package checksum fingerprints inventory source revisions. The service
// compares fingerprints to skip reparsing after its own writes and to
// reject edits made against a stale document revision.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// shortLen is the prefix length used for log-friendly fingerprints.
const shortLen = 12

// Sum returns the lowercase hex SHA-256 fingerprint of data.
func Sum(data []byte) string {
	digest := sha256.Sum256(data)
	return hex.EncodeToString(digest[:])
}

// Short truncates a fingerprint for logging. Full fingerprints stay on
// the API surface; only log lines use the short form.
func Short(sum string) string {
	if len(sum) <= shortLen {
		return sum
	}
	return sum[:shortLen]
}
