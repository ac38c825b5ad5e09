package usecase

import (
	"context"

	"aegis/internal/domain"
)

// CryptoService covers hashing, canonicalization and authenticated
// encryption for the object format. Implemented by infra/crypto.
type CryptoService interface {
	Digest(data []byte) string
	ObjectDigest(v any) (string, error)
	PolicyDigest(p domain.Policy) (string, error)
	Encrypt(ctx context.Context, plaintext []byte, resourceID, communityID string) (domain.EncryptResult, error)
	Decrypt(enc domain.EncryptResult) ([]byte, error)
}

// PolicySigner produces policy signatures at build time. A nil signer
// builds unsigned policies.
type PolicySigner interface {
	Sign(ctx context.Context, policy domain.Policy) (*domain.PolicySignature, error)
}

// CommunityKeyStore is the subset of the key registry the rotation
// service needs. ActiveKey reports domain.ErrNotFound when a community
// has never been provisioned.
type CommunityKeyStore interface {
	ActiveKey(ctx context.Context, coiName string) (*domain.CommunityKeyRecord, error)
	Rotate(ctx context.Context, coiName string) (domain.CommunityKeyRecord, error)
}
