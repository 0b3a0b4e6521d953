package repositories

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// keyDigest hashes a tab key so persistent stores never hold the raw key.
func keyDigest(key string) []byte {
	sum := blake2b.Sum256([]byte(key))
	return sum[:]
}

func keyDigestHex(key string) string {
	return hex.EncodeToString(keyDigest(key))
}
