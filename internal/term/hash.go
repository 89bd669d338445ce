package term

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainTerm = "strata/term/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Hash computes the content-addressed identity of t.
// Alpha-equivalent terms share a hash because terms carry no binder names.
func Hash(t Term) (string, error) {
	canonical, err := MarshalCanonical(t)
	if err != nil {
		return "", fmt.Errorf("hash term: %w", err)
	}
	return hashWithDomain(DomainTerm, canonical), nil
}

// MustHash is like Hash but panics on error.
// Use only in tests or when t is known to be well formed.
func MustHash(t Term) string {
	h, err := Hash(t)
	if err != nil {
		panic(err)
	}
	return h
}
