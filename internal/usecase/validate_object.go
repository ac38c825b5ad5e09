package usecase

import (
	"context"
	"fmt"
	"time"

	"aegis/internal/domain"
)

// ValidatorOptions tune how strictly validation treats unverifiable
// objects. The zero value is the production default: missing hashes
// warn, the placeholder sentinel is not honored, and verifier calls are
// bounded only by the caller's context.
type ValidatorOptions struct {
	// StrictMode promotes missing binding hashes from warnings to errors.
	StrictMode bool
	// AllowTestBypass honors placeholder hashes in test fixtures. Never
	// enable outside tests.
	AllowTestBypass bool
	// VerifierTimeout bounds the signature verifier round-trip.
	VerifierTimeout time.Duration
}

// ValidateRequest carries one object through validation. ExternalChunks
// supplies ciphertext for chunks stored out of band, keyed by chunkIndex,
// as base64 text exactly as hashed at build time.
type ValidateRequest struct {
	Object         domain.ZTDFObject
	ExternalChunks map[int]string
}

// IntegrityValidator checks the cryptographic bindings of an object and
// reports every finding in one pass. It fails closed: binding breaks are
// errors, unverifiable bindings are warnings (errors under StrictMode),
// and the verdict is computed from the findings, never assumed.
// Malformed objects produce findings rather than Go errors.
type IntegrityValidator struct {
	Crypto   CryptoService
	Verifier domain.PolicySignatureVerifier
	Options  ValidatorOptions
}

func (v *IntegrityValidator) Execute(ctx context.Context, req ValidateRequest) domain.ValidationResult {
	obj := req.Object
	result := domain.ValidationResult{
		Errors:           []string{},
		Warnings:         []string{},
		Issues:           []string{},
		ChunkHashesValid: make([]bool, len(obj.Payload.EncryptedChunks)),
		AllChunksValid:   true,
	}

	v.checkRequiredFields(obj, &result)

	if v.Options.AllowTestBypass && isTestResource(obj) {
		result.Warnings = append(result.Warnings, "Test resource detected (placeholder hashes); integrity checks skipped")
		result.PolicyHashValid = true
		result.PayloadHashValid = true
		for i := range result.ChunkHashesValid {
			result.ChunkHashesValid[i] = true
		}
		v.checkSignature(ctx, obj, &result)
		result.Valid = len(result.Errors) == 0
		return result
	}

	v.checkPolicyHash(obj, &result)
	v.checkChunks(obj, req.ExternalChunks, &result)
	v.checkPayloadHash(obj, req.ExternalChunks, &result)
	v.checkSignature(ctx, obj, &result)

	result.Valid = len(result.Errors) == 0
	return result
}

func (v *IntegrityValidator) checkRequiredFields(obj domain.ZTDFObject, result *domain.ValidationResult) {
	if obj.Manifest.ObjectID == "" {
		result.Errors = append(result.Errors, "Missing objectId in manifest")
	}
	label := obj.Policy.SecurityLabel
	if label.Classification == "" {
		result.Errors = append(result.Errors, "Missing classification in security label")
	} else if !label.Classification.Known() {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Unknown classification %q", string(label.Classification)))
	}
	if len(label.ReleasabilityTo) == 0 {
		result.Errors = append(result.Errors, "Empty releasabilityTo list (deny all access)")
	}
	if len(obj.Payload.KeyAccessObjects) == 0 {
		result.Warnings = append(result.Warnings, "No key access objects present")
	}
}

func (v *IntegrityValidator) checkPolicyHash(obj domain.ZTDFObject, result *domain.ValidationResult) {
	stored := obj.Policy.PolicyHash
	if stored == "" {
		v.reportMissingHash(result, "Policy hash not present (integrity cannot be verified)", "policy hash")
		return
	}
	computed, err := v.Crypto.PolicyDigest(obj.Policy)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Policy hash could not be recomputed: %v", err))
		result.Issues = append(result.Issues, bindingIssue("policy hash"))
		return
	}
	if computed != stored {
		result.Errors = append(result.Errors, fmt.Sprintf("Policy hash mismatch: expected %s, got %s", stored, computed))
		result.Issues = append(result.Issues, bindingIssue("policy hash"))
		return
	}
	result.PolicyHashValid = true
}

func (v *IntegrityValidator) checkChunks(obj domain.ZTDFObject, external map[int]string, result *domain.ValidationResult) {
	for i, chunk := range obj.Payload.EncryptedChunks {
		text, ok := chunkText(chunk, external)
		switch {
		case chunk.IntegrityHash == "":
			v.reportMissingHash(result, fmt.Sprintf("Chunk %d integrity hash not present", chunk.ChunkIndex), fmt.Sprintf("chunk %d", chunk.ChunkIndex))
			result.AllChunksValid = false
		case !ok:
			result.Warnings = append(result.Warnings, fmt.Sprintf("Chunk %d ciphertext stored externally and not supplied", chunk.ChunkIndex))
			result.AllChunksValid = false
		default:
			computed := v.Crypto.Digest([]byte(text))
			if computed != chunk.IntegrityHash {
				result.Errors = append(result.Errors, fmt.Sprintf("Chunk %d hash mismatch: expected %s, got %s", chunk.ChunkIndex, chunk.IntegrityHash, computed))
				result.Issues = append(result.Issues, bindingIssue(fmt.Sprintf("chunk %d", chunk.ChunkIndex)))
				result.AllChunksValid = false
			} else {
				result.ChunkHashesValid[i] = true
			}
		}
	}
}

func (v *IntegrityValidator) checkPayloadHash(obj domain.ZTDFObject, external map[int]string, result *domain.ValidationResult) {
	stored := obj.Payload.PayloadHash
	if stored == "" {
		v.reportMissingHash(result, "Payload hash not present (integrity cannot be verified)", "payload hash")
		return
	}
	var text []byte
	for _, chunk := range obj.Payload.EncryptedChunks {
		part, ok := chunkText(chunk, external)
		if !ok {
			result.Warnings = append(result.Warnings, "Payload hash not verifiable (external chunk ciphertext missing)")
			return
		}
		text = append(text, part...)
	}
	computed := v.Crypto.Digest(text)
	if computed != stored {
		result.Errors = append(result.Errors, fmt.Sprintf("Payload hash mismatch: expected %s, got %s", stored, computed))
		result.Issues = append(result.Issues, bindingIssue("payload hash"))
		return
	}
	result.PayloadHashValid = true
}

func (v *IntegrityValidator) checkSignature(ctx context.Context, obj domain.ZTDFObject, result *domain.ValidationResult) {
	if obj.Policy.PolicySignature == nil {
		return
	}
	if v.Verifier == nil {
		result.Warnings = append(result.Warnings, "Policy signature present but no verifier configured")
		return
	}
	if v.Options.VerifierTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.Options.VerifierTimeout)
		defer cancel()
	}
	policy := obj.Policy
	verification, err := v.Verifier.VerifyPolicySignature(ctx, &policy)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Policy signature verification unavailable: %v", err))
		return
	}
	if verification.Valid {
		return
	}
	if verification.SignatureType == domain.SignatureTypeNone && verification.Error == "" {
		result.Warnings = append(result.Warnings, "Policy signature verification not configured")
		return
	}
	result.Errors = append(result.Errors, "Policy signature verification failed")
}

func (v *IntegrityValidator) reportMissingHash(result *domain.ValidationResult, message, subject string) {
	if v.Options.StrictMode {
		result.Errors = append(result.Errors, message)
	} else {
		result.Warnings = append(result.Warnings, message)
	}
	result.Issues = append(result.Issues, bindingIssue(subject))
}

func bindingIssue(subject string) string {
	return fmt.Sprintf("Cryptographic binding cannot be trusted (%s): deny access", subject)
}

func chunkText(chunk domain.EncryptedChunk, external map[int]string) (string, bool) {
	if chunk.StorageMode == domain.StorageModeExternal && chunk.Ciphertext == "" {
		text, ok := external[chunk.ChunkIndex]
		return text, ok
	}
	return chunk.Ciphertext, true
}

func isTestResource(obj domain.ZTDFObject) bool {
	return obj.Policy.PolicyHash == domain.PlaceholderHash || obj.Payload.PayloadHash == domain.PlaceholderHash
}
