package signature

import (
	"context"

	"aegis/internal/domain"
)

// Unconfigured is the verifier used when no signature backend is set.
// It validates nothing; validation downgrades its result to a warning
// rather than rejecting signed objects it cannot check.
type Unconfigured struct{}

func (Unconfigured) VerifyPolicySignature(context.Context, *domain.Policy) (domain.SignatureVerification, error) {
	return domain.SignatureVerification{SignatureType: domain.SignatureTypeNone}, nil
}
