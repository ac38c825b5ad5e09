// Package signature signs policy content and verifies policy
// signatures. Verification failures are reported inside the result;
// the error return is reserved for the verifier being unable to run.
package signature

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/base64"
	"errors"
	"fmt"

	"aegis/internal/domain"
	cryptoinfra "aegis/internal/infra/crypto"
)

// AlgorithmHS384 is the JOSE name for HMAC with SHA-384.
const AlgorithmHS384 = "HS384"

// HMAC signs policies with a shared secret and verifies signatures made
// by any peer holding the same secret. The MAC covers exactly the
// canonical bytes the policy hash covers.
type HMAC struct {
	key   []byte
	keyID string
}

func NewHMAC(key []byte, keyID string) (*HMAC, error) {
	if len(key) == 0 {
		return nil, errors.New("hmac key is required")
	}
	return &HMAC{key: append([]byte(nil), key...), keyID: keyID}, nil
}

// Sign computes the signature for the policy's current content.
func (h *HMAC) Sign(_ context.Context, policy domain.Policy) (*domain.PolicySignature, error) {
	mac, err := h.mac(policy)
	if err != nil {
		return nil, err
	}
	return &domain.PolicySignature{
		Algorithm: AlgorithmHS384,
		KeyID:     h.keyID,
		Value:     base64.StdEncoding.EncodeToString(mac),
	}, nil
}

func (h *HMAC) VerifyPolicySignature(_ context.Context, policy *domain.Policy) (domain.SignatureVerification, error) {
	sig := policy.PolicySignature
	if sig == nil {
		return domain.SignatureVerification{SignatureType: domain.SignatureTypeNone}, nil
	}
	result := domain.SignatureVerification{SignatureType: domain.SignatureTypeHMAC}
	if sig.Algorithm != AlgorithmHS384 {
		result.Error = fmt.Sprintf("unsupported algorithm %q", sig.Algorithm)
		return result, nil
	}
	if h.keyID != "" && sig.KeyID != "" && sig.KeyID != h.keyID {
		result.Error = fmt.Sprintf("unknown key id %q", sig.KeyID)
		return result, nil
	}
	claimed, err := base64.StdEncoding.DecodeString(sig.Value)
	if err != nil {
		result.Error = "signature is not valid base64"
		return result, nil
	}
	expected, err := h.mac(*policy)
	if err != nil {
		return domain.SignatureVerification{}, err
	}
	if !hmac.Equal(claimed, expected) {
		result.Error = "signature mismatch"
		return result, nil
	}
	result.Valid = true
	return result, nil
}

func (h *HMAC) mac(policy domain.Policy) ([]byte, error) {
	payload, err := cryptoinfra.PolicyHashBytes(policy)
	if err != nil {
		return nil, err
	}
	m := hmac.New(sha512.New384, h.key)
	m.Write(payload)
	return m.Sum(nil), nil
}
