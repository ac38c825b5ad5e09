package crypto

import (
	"aegis/internal/domain"
)

// policyHashView is the slice of a policy covered by policyHash and
// policySignature. The hash never covers itself or the signature, and
// assertions hash under the short key regardless of the storage field
// name, so producers on either side of a rename agree.
type policyHashView struct {
	SecurityLabel domain.SecurityLabel `json:"securityLabel"`
	Assertions    []domain.Assertion   `json:"assertions"`
	PolicyVersion string               `json:"policyVersion"`
}

// policyView normalizes nil slices to empty ones for the fields that
// always serialize as arrays, so a decoded policy and a freshly built
// one canonicalize identically.
func policyView(p domain.Policy) policyHashView {
	label := p.SecurityLabel
	if label.ReleasabilityTo == nil {
		label.ReleasabilityTo = []string{}
	}
	assertions := p.PolicyAssertions
	if assertions == nil {
		assertions = []domain.Assertion{}
	}
	return policyHashView{
		SecurityLabel: label,
		Assertions:    assertions,
		PolicyVersion: p.PolicyVersion,
	}
}

// PolicyHashBytes returns the canonical bytes a policy hash and policy
// signature are computed over.
func PolicyHashBytes(p domain.Policy) ([]byte, error) {
	return CanonicalizeValue(policyView(p))
}

// PolicyDigest computes the policy binding hash.
func PolicyDigest(p domain.Policy) (string, error) {
	canonical, err := PolicyHashBytes(p)
	if err != nil {
		return "", err
	}
	return Digest(canonical), nil
}

// PolicyDigest satisfies the usecase crypto interface.
func (s *Service) PolicyDigest(p domain.Policy) (string, error) {
	return PolicyDigest(p)
}
