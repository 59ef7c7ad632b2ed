package types

import (
	"crypto/sha256"
	"encoding/hex"
)

const HashLen = sha256.Size

// Hash is a SHA-256 digest, comparable so it can key maps and caches.
type Hash [HashLen]uint8

func SumHash(data []byte) Hash {
	return Hash(sha256.Sum256(data))
}

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}
