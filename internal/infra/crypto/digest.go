package crypto

import (
	"crypto/sha512"
	"encoding/hex"
)

const (
	// HashAlgorithm names the digest behind every binding hash.
	HashAlgorithm = "SHA-384"
	// HashHexLength is the length of an encoded digest.
	HashHexLength = 96
)

// Digest returns the SHA-384 of data as lowercase hex.
func Digest(data []byte) string {
	sum := sha512.Sum384(data)
	return hex.EncodeToString(sum[:])
}

// ObjectDigest hashes a structured value over its canonical form, so
// logically equal objects digest identically regardless of field order
// in the serialized input.
func ObjectDigest(v any) (string, error) {
	canonical, err := CanonicalizeValue(v)
	if err != nil {
		return "", err
	}
	return Digest(canonical), nil
}
