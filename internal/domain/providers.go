package domain

import "context"

// CommunityKeyProvider supplies the shared 32-byte symmetric key for a
// named community of interest.
type CommunityKeyProvider interface {
	GetCommunityKey(ctx context.Context, coiName string) ([]byte, error)
}

// PolicySignatureVerifier checks a detached policy signature. An
// unconfigured verifier reports SignatureTypeNone with Valid false and
// an empty Error rather than failing hard.
type PolicySignatureVerifier interface {
	VerifyPolicySignature(ctx context.Context, policy *Policy) (SignatureVerification, error)
}
