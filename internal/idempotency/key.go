package idempotency

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// Generator mints single-use opaque tokens for mutation attempts. One token
// represents one logical mutation attempt: the same token may be resubmitted
// verbatim with the same body, but a rebuilt body always gets a fresh token.
type Generator interface {
	NewKey() (string, error)
}

// keyBytes of entropy, hex-encoded; well above the 32-byte floor the ledger
// contract requires.
const keyBytes = 45

type randomGenerator struct{}

func NewGenerator() Generator {
	return randomGenerator{}
}

func (randomGenerator) NewKey() (string, error) {
	buf := make([]byte, keyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("rand.Read: %w", err)
	}

	return hex.EncodeToString(buf), nil
}
