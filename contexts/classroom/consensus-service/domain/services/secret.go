package services

import (
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/sha3"
)

// SecretDigest is a keccak-256 digest of a TA registration code. It matches
// the digest format the classroom deploy tooling publishes.
type SecretDigest [32]byte

// DigestSecret hashes the UTF-8 bytes of code with legacy keccak-256.
func DigestSecret(code string) SecretDigest {
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write([]byte(code))
	var out SecretDigest
	copy(out[:], h.Sum(nil))
	return out
}

// ParseSecretDigest decodes a 0x-prefixed or bare 64-character hex digest.
func ParseSecretDigest(raw string) (SecretDigest, error) {
	value := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(raw), "0x"), "0X")
	decoded, err := hex.DecodeString(value)
	if err != nil {
		return SecretDigest{}, err
	}
	if len(decoded) != len(SecretDigest{}) {
		return SecretDigest{}, errors.New("secret digest must be 32 bytes")
	}
	var out SecretDigest
	copy(out[:], decoded)
	return out, nil
}

func (d SecretDigest) String() string {
	return "0x" + hex.EncodeToString(d[:])
}

func (d SecretDigest) IsZero() bool {
	return d == SecretDigest{}
}

// Matches reports whether code hashes to d, in constant time.
func (d SecretDigest) Matches(code string) bool {
	candidate := DigestSecret(code)
	return subtle.ConstantTimeCompare(candidate[:], d[:]) == 1
}
