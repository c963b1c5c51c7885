package dataset

import (
	"crypto/md5"
	"encoding/hex"
)

// fingerprintSampleRows is how many leading rows the cache key is derived
// from. Datasets sharing their first rows share a fingerprint; the hash is a
// similarity proxy for repeated uploads, not a content identity.
const fingerprintSampleRows = 3

// Fingerprint derives the cache key for a frame: the md5 hex digest of its
// leading rows in stable text form. Identical leading rows always produce the
// identical key, which is what makes the insight cache correct.
func Fingerprint(f *Frame) string {
	sample := f.HeadString(fingerprintSampleRows)
	sum := md5.Sum([]byte(sample))
	return hex.EncodeToString(sum[:])
}
