package signature

import (
	"context"
	"testing"

	"aegis/internal/domain"
)

func signedTestPolicy(t *testing.T, signer *HMAC) domain.Policy {
	t.Helper()
	policy := domain.Policy{
		SecurityLabel: domain.SecurityLabel{
			Classification:     domain.ClassificationSecret,
			ReleasabilityTo:    []string{"USA", "GBR"},
			OriginatingCountry: "USA",
			CreationDate:       "2026-08-21T10:00:00Z",
			DisplayMarking:     "SECRET//REL USA, GBR",
		},
		PolicyVersion: domain.PolicyVersionDefault,
	}
	sig, err := signer.Sign(context.Background(), policy)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	policy.PolicySignature = sig
	return policy
}

func TestHMACSignAndVerify(t *testing.T) {
	signer, err := NewHMAC([]byte("shared-policy-secret"), "policy-key-1")
	if err != nil {
		t.Fatalf("new hmac: %v", err)
	}
	policy := signedTestPolicy(t, signer)

	if policy.PolicySignature.Algorithm != AlgorithmHS384 {
		t.Errorf("algorithm = %q, want %q", policy.PolicySignature.Algorithm, AlgorithmHS384)
	}
	if policy.PolicySignature.KeyID != "policy-key-1" {
		t.Errorf("key id = %q", policy.PolicySignature.KeyID)
	}

	result, err := signer.VerifyPolicySignature(context.Background(), &policy)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !result.Valid {
		t.Errorf("verification failed: %s", result.Error)
	}
	if result.SignatureType != domain.SignatureTypeHMAC {
		t.Errorf("signature type = %q", result.SignatureType)
	}
}

func TestHMACVerifyDetectsPolicyTampering(t *testing.T) {
	signer, err := NewHMAC([]byte("shared-policy-secret"), "")
	if err != nil {
		t.Fatalf("new hmac: %v", err)
	}
	policy := signedTestPolicy(t, signer)
	policy.SecurityLabel.Classification = domain.ClassificationUnclassified

	result, err := signer.VerifyPolicySignature(context.Background(), &policy)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if result.Valid {
		t.Error("tampered policy passed verification")
	}
	if result.Error == "" {
		t.Error("expected a verification error message")
	}
}

func TestHMACVerifyDetectsSignatureTampering(t *testing.T) {
	signer, err := NewHMAC([]byte("shared-policy-secret"), "")
	if err != nil {
		t.Fatalf("new hmac: %v", err)
	}
	policy := signedTestPolicy(t, signer)
	policy.PolicySignature.Value = "AAAA" + policy.PolicySignature.Value[4:]

	result, err := signer.VerifyPolicySignature(context.Background(), &policy)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if result.Valid {
		t.Error("tampered signature passed verification")
	}
}

func TestHMACVerifyRejectsForeignKey(t *testing.T) {
	signer, err := NewHMAC([]byte("secret-a"), "")
	if err != nil {
		t.Fatalf("new hmac: %v", err)
	}
	policy := signedTestPolicy(t, signer)

	other, err := NewHMAC([]byte("secret-b"), "")
	if err != nil {
		t.Fatalf("new hmac: %v", err)
	}
	result, err := other.VerifyPolicySignature(context.Background(), &policy)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if result.Valid {
		t.Error("signature verified under a different secret")
	}
}

func TestHMACVerifyShapes(t *testing.T) {
	signer, err := NewHMAC([]byte("shared-policy-secret"), "policy-key-1")
	if err != nil {
		t.Fatalf("new hmac: %v", err)
	}

	t.Run("unsigned policy", func(t *testing.T) {
		policy := domain.Policy{PolicyVersion: domain.PolicyVersionDefault}
		result, err := signer.VerifyPolicySignature(context.Background(), &policy)
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if result.Valid || result.SignatureType != domain.SignatureTypeNone || result.Error != "" {
			t.Errorf("result = %+v, want unsigned shape", result)
		}
	})
	t.Run("unsupported algorithm", func(t *testing.T) {
		policy := signedTestPolicy(t, signer)
		policy.PolicySignature.Algorithm = "ES256"
		result, err := signer.VerifyPolicySignature(context.Background(), &policy)
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if result.Valid || result.Error == "" {
			t.Errorf("result = %+v, want algorithm rejection", result)
		}
	})
	t.Run("unknown key id", func(t *testing.T) {
		policy := signedTestPolicy(t, signer)
		policy.PolicySignature.KeyID = "policy-key-9"
		result, err := signer.VerifyPolicySignature(context.Background(), &policy)
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if result.Valid || result.Error == "" {
			t.Errorf("result = %+v, want key id rejection", result)
		}
	})
	t.Run("garbage signature value", func(t *testing.T) {
		policy := signedTestPolicy(t, signer)
		policy.PolicySignature.Value = "%%%"
		result, err := signer.VerifyPolicySignature(context.Background(), &policy)
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if result.Valid || result.Error == "" {
			t.Errorf("result = %+v, want base64 rejection", result)
		}
	})
}

func TestUnconfiguredVerifier(t *testing.T) {
	policy := domain.Policy{
		PolicySignature: &domain.PolicySignature{Algorithm: AlgorithmHS384, Value: "sig"},
	}
	result, err := Unconfigured{}.VerifyPolicySignature(context.Background(), &policy)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if result.Valid {
		t.Error("unconfigured verifier validated a signature")
	}
	if result.SignatureType != domain.SignatureTypeNone {
		t.Errorf("signature type = %q, want %q", result.SignatureType, domain.SignatureTypeNone)
	}
	if result.Error != "" {
		t.Errorf("error = %q, want empty", result.Error)
	}
}

func TestNewHMACRequiresKey(t *testing.T) {
	if _, err := NewHMAC(nil, "kid"); err == nil {
		t.Error("expected error for empty key")
	}
}
